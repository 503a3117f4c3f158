package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"labelsync/pkg/github"
)

var (
	standardizeConfigRepo  string
	standardizeLabelsFile  string
	standardizeLocalFile   string
	standardizeDestructive bool
	standardizeDryRun      bool
	standardizeYes         bool
)

var standardizeCmd = &cobra.Command{
	Use:   "standardize [org[/repo]]",
	Short: "Make every repository's labels match the organization's label list",
	Long: `Make the labels of every repository in an organization, or of one repository,
match a desired label list.

The list is read from config/<labels-file> in the organization's configuration
repository (.github and labels.json by default), or from a local file with
--file. It is a YAML or JSON list of {name, color} entries:

  - name: bug
    color: d73a4a
  - name: needs triage
    color: ededed

Missing labels are created and labels with a different color are updated.
Labels that are not in the list are kept unless --destructive is given.

Examples:
  labelsync standardize acme --dry-run
  labelsync standardize acme/api --file labels.yaml
  labelsync standardize acme --destructive --yes`,
	Args: cobra.MaximumNArgs(1),
	RunE: runStandardize,
}

func init() {
	standardizeCmd.Flags().StringVar(&standardizeConfigRepo, "config-repo", "", "Repository holding the label list (overrides labels.config_repository)")
	standardizeCmd.Flags().StringVar(&standardizeLabelsFile, "labels-file", "", "Label list file under config/ in the configuration repository (overrides labels.file)")
	standardizeCmd.Flags().StringVarP(&standardizeLocalFile, "file", "f", "", "Read the label list from a local file instead of the configuration repository")
	standardizeCmd.Flags().BoolVar(&standardizeDestructive, "destructive", false, "Delete labels that are not in the label list")
	standardizeCmd.Flags().BoolVar(&standardizeDryRun, "dry-run", false, "Show planned changes without applying them")
	standardizeCmd.Flags().BoolVarP(&standardizeYes, "yes", "y", false, "Do not ask for confirmation before deleting labels")
}

func runStandardize(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if standardizeConfigRepo != "" {
		cfg.Labels.ConfigRepository = standardizeConfigRepo
	}
	if standardizeLabelsFile != "" {
		cfg.Labels.File = standardizeLabelsFile
	}

	var desired []github.Label
	if standardizeLocalFile != "" {
		desired, err = github.LoadDesiredLabelsFromFile(standardizeLocalFile)
		if err != nil {
			return fmt.Errorf("failed to load label list: %w", err)
		}
	}

	s, err := openSession(cmd, cfg, args)
	if err != nil {
		return err
	}
	defer s.close()

	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	if standardizeLocalFile == "" {
		desired, err = github.FetchDesiredLabels(ctx, s.client, s.target.Owner,
			cfg.Labels.ConfigRepository, cfg.Labels.File, s.logger)
		if err != nil {
			return fmt.Errorf("failed to load label list: %w", err)
		}
	}

	if len(desired) == 0 {
		if standardizeDestructive {
			return fmt.Errorf("refusing to run --destructive with an empty label list: every label would be deleted")
		}
		fmt.Fprintf(out, "⚠️  The label list is empty. Nothing to do.\n")
		return nil
	}
	fmt.Fprintf(out, "✓ Loaded %d labels\n", len(desired))

	repos, err := s.repositories(ctx)
	if err != nil {
		return err
	}

	plans := s.reconciler.PlanAll(ctx, repos, desired, standardizeDestructive)
	deletes := renderPlans(out, s.target.Owner, plans, standardizeDryRun)

	if standardizeDryRun {
		fmt.Fprintf(out, "\n✓ Dry-run completed. No changes were applied.\n")
		return nil
	}
	if countChanges(plans) == 0 {
		fmt.Fprintf(out, "\n✓ All repositories are already up to date. No changes needed.\n")
		return nil
	}

	if deletes > 0 && !standardizeYes {
		ok, err := confirm(cmd, fmt.Sprintf("\n⚠️  Delete %d label(s)?", deletes))
		if err != nil {
			return err
		}
		if !ok {
			fmt.Fprintf(out, "Standardization cancelled.\n")
			return nil
		}
	}

	fmt.Fprintf(out, "\nApplying changes...\n")
	result, err := s.reconciler.ApplyAll(ctx, plans)
	if err != nil {
		return fmt.Errorf("failed to apply changes: %w", err)
	}

	renderResult(out, s.target.Owner, result)
	summary := s.reconciler.Summary()
	renderSummary(out, summary, s.client.Limiter().GetStats())
	s.logger.Info("standardization finished",
		zap.Int("updates", summary.UpdateCount),
		zap.Int("affected_repositories", summary.AffectedRepoCount),
		zap.Int("failed_repositories", result.Summary.FailureCount))

	if result.Summary.FailureCount > 0 {
		return fmt.Errorf("partial failure: %d repositories succeeded, %d failed",
			result.Summary.SuccessCount, result.Summary.FailureCount)
	}
	return nil
}

func countChanges(plans map[string]*github.ReconciliationPlan) int {
	total := 0
	for _, plan := range plans {
		if plan.HasChanges() {
			total += len(plan.Operations)
		}
	}
	return total
}
