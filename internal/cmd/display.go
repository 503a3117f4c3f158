package cmd

import (
	"fmt"
	"io"
	"sort"

	"github.com/jedib0t/go-pretty/v6/table"

	"labelsync/pkg/github"
)

var effectIcons = map[github.Effect]string{
	github.EffectCreated:  "✅",
	github.EffectUpdated:  "✅",
	github.EffectDeleted:  "🗑️",
	github.EffectConflict: "⚠️",
	github.EffectFailed:   "❌",
}

var changeSymbols = map[github.ChangeType]string{
	github.ChangeTypeCreate: "+",
	github.ChangeTypeUpdate: "~",
	github.ChangeTypeDelete: "-",
}

func newTable(w io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleRounded)
	return t
}

// renderOutcomes prints one row per label request
func renderOutcomes(w io.Writer, outcomes []github.Outcome) {
	if len(outcomes) == 0 {
		return
	}

	t := newTable(w)
	t.AppendHeader(table.Row{"Repository", "Label", "Status", "Result"})
	for _, outcome := range outcomes {
		effect := github.Classify(outcome)
		status := "-"
		if outcome.StatusCode != 0 {
			status = fmt.Sprint(outcome.StatusCode)
		}
		result := fmt.Sprintf("%s %s", effectIcons[effect], effect)
		if effect == github.EffectFailed && outcome.Body != "" {
			result += ": " + outcome.Body
		}
		t.AppendRow(table.Row{outcome.Repository(), outcome.LabelName(), status, result})
	}
	t.Render()
}

// renderSummary prints the run totals and the remaining API quota
func renderSummary(w io.Writer, summary github.RunSummary, stats github.RateLimiterStats) {
	fmt.Fprintf(w, "\n📊 Summary:\n")
	fmt.Fprintf(w, "  • Labels changed: %d\n", summary.UpdateCount)
	fmt.Fprintf(w, "  • Repositories affected: %d\n", summary.AffectedRepoCount)
	if conflicts := summary.Effects[github.EffectConflict]; conflicts > 0 {
		fmt.Fprintf(w, "  • Already present: %d\n", conflicts)
	}
	if failures := summary.Failures(); failures > 0 {
		fmt.Fprintf(w, "  • Failed requests: %d\n", failures)
	}
	if stats.QuotaKnown() {
		fmt.Fprintf(w, "  • API requests remaining: %d (resets %s)\n",
			stats.RemainingRequests, stats.ResetTime.Local().Format("15:04:05"))
	}
}

// renderPlans prints the planned operations of every repository with
// changes and returns the number of planned deletions
func renderPlans(w io.Writer, owner string, plans map[string]*github.ReconciliationPlan, dryRun bool) int {
	if dryRun {
		fmt.Fprintf(w, "\n🔍 Dry-run mode: Showing planned changes for %d repositories\n", len(plans))
	} else {
		fmt.Fprintf(w, "\n📋 Planned changes for %d repositories:\n", len(plans))
	}

	names := make([]string, 0, len(plans))
	for name := range plans {
		names = append(names, name)
	}
	sort.Strings(names)

	var creates, updates, deletes, changed int
	t := newTable(w)
	t.AppendHeader(table.Row{"Repository", "", "Change"})
	for _, name := range names {
		plan := plans[name]
		if !plan.HasChanges() {
			continue
		}
		changed++
		creates += plan.Count(github.ChangeTypeCreate)
		updates += plan.Count(github.ChangeTypeUpdate)
		deletes += plan.Count(github.ChangeTypeDelete)
		for _, op := range plan.Operations {
			t.AppendRow(table.Row{owner + "/" + name, changeSymbols[op.Kind], op.String()})
		}
	}

	if changed == 0 {
		fmt.Fprintf(w, "  No changes needed - labels are up to date\n")
		return 0
	}

	t.AppendFooter(table.Row{
		fmt.Sprintf("%d repositories", changed),
		"",
		fmt.Sprintf("%d create, %d update, %d delete", creates, updates, deletes),
	})
	t.Render()

	fmt.Fprintf(w, "  • Up to date: %d repositories\n", len(plans)-changed)
	if deletes > 0 && dryRun {
		fmt.Fprintf(w, "\n⚠️  WARNING: %d label(s) would be deleted and removed from their issues!\n", deletes)
	}
	return deletes
}

// renderResult prints per-repository results of an apply run
func renderResult(w io.Writer, owner string, result *github.MultiRepoResult) {
	if result.Summary.FailureCount > 0 {
		fmt.Fprintf(w, "\n⚠️  Partial success: %d repositories updated, %d with failures\n",
			result.Summary.SuccessCount, result.Summary.FailureCount)
	} else {
		fmt.Fprintf(w, "\n✅ Successfully applied changes to %d repositories\n", result.Summary.SuccessCount)
	}

	if len(result.Failed) > 0 {
		fmt.Fprintf(w, "\n❌ Failed repositories:\n")
		for _, name := range result.Failed {
			for _, outcome := range result.Outcomes[name] {
				if github.Classify(outcome) == github.EffectFailed {
					fmt.Fprintf(w, "  • %s/%s: %s (%s)\n", owner, name, outcome.LabelName(), failureReason(outcome))
				}
			}
		}
	}

	if len(result.Skipped) > 0 {
		fmt.Fprintf(w, "\n⏭️  Up to date: %d repositories\n", len(result.Skipped))
	}
}

func failureReason(outcome github.Outcome) string {
	switch {
	case outcome.Body != "" && outcome.StatusCode != 0:
		return fmt.Sprintf("%d %s", outcome.StatusCode, outcome.Body)
	case outcome.Body != "":
		return outcome.Body
	case outcome.Err != nil:
		return outcome.Err.Error()
	default:
		return fmt.Sprintf("status %d", outcome.StatusCode)
	}
}
