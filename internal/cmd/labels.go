package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"labelsync/pkg/github"
)

var addCmd = &cobra.Command{
	Use:   "add <org[/repo]> <label> <color>",
	Short: "Create a label in every repository",
	Long: `Create a label in every repository of an organization, or in one repository.

The color is a 3 or 6 digit hex code without a leading '#'. Repositories that
already have the label are reported and left unchanged.

Examples:
  labelsync add acme "needs triage" ededed
  labelsync add acme/api bug d73a4a`,
	Args: cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		targetArgs, rest := splitArgs(args)
		label := github.Label{Name: rest[0], Color: rest[1]}
		if err := github.ValidateLabel(label); err != nil {
			return err
		}
		return runSingleLabelCommand(cmd, targetArgs, github.CreateOperation(label))
	},
}

var removeCmd = &cobra.Command{
	Use:   "remove <org[/repo]> <label>",
	Short: "Delete a label from every repository",
	Long: `Delete a label from every repository of an organization, or from one repository.

Issues and pull requests lose the label. Repositories without the label report
a failed deletion.

Examples:
  labelsync remove acme wontfix`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		targetArgs, rest := splitArgs(args)
		if err := github.ValidateLabelName(rest[0]); err != nil {
			return err
		}
		return runSingleLabelCommand(cmd, targetArgs, github.DeleteOperation(rest[0]))
	},
}

var updateCmd = &cobra.Command{
	Use:   "update <org[/repo]> <label> <color>",
	Short: "Change the color of a label in every repository",
	Long: `Change the color of a label in every repository of an organization, or in one repository.

Examples:
  labelsync update acme bug b60205`,
	Args: cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		targetArgs, rest := splitArgs(args)
		if err := github.ValidateLabel(github.Label{Name: rest[0], Color: rest[1]}); err != nil {
			return err
		}
		return runSingleLabelCommand(cmd, targetArgs, github.UpdateOperation(rest[0], rest[1]))
	},
}

var renameCmd = &cobra.Command{
	Use:   "rename <org[/repo]> <old-label> <new-label>",
	Short: "Rename a label in every repository",
	Long: `Rename a label in every repository of an organization, or in one repository.

The label keeps its color, and issues carrying it keep it under the new name.

Examples:
  labelsync rename acme enhancement feature`,
	Args: cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		targetArgs, rest := splitArgs(args)
		for _, name := range rest {
			if err := github.ValidateLabelName(name); err != nil {
				return err
			}
		}
		return runSingleLabelCommand(cmd, targetArgs, github.RenameOperation(rest[0], rest[1]))
	},
}

// splitArgs separates the leading target from the label operands. Label
// commands always take an explicit target so that a label operand can never
// be read as an organization.
func splitArgs(args []string) (target, rest []string) {
	return args[:1], args[1:]
}

// runSingleLabelCommand applies op to every repository of the target
func runSingleLabelCommand(cmd *cobra.Command, targetArgs []string, op github.Operation) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	s, err := openSession(cmd, cfg, targetArgs)
	if err != nil {
		return err
	}
	defer s.close()

	ctx := cmd.Context()
	repos, err := s.repositories(ctx)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "🏷️  %s in %d repositories of %s\n", op, len(repos), s.target.Owner)

	outcomes := s.reconciler.ApplyOne(ctx, repos, op)
	renderOutcomes(out, outcomes)

	summary := s.reconciler.Summary()
	renderSummary(out, summary, s.client.Limiter().GetStats())
	s.logger.Info("label command finished",
		zap.String("operation", op.String()),
		zap.Int("updates", summary.UpdateCount),
		zap.Int("affected_repositories", summary.AffectedRepoCount))

	if failures := summary.Failures(); failures > 0 {
		return fmt.Errorf("%d of %d label operations failed", failures, len(outcomes))
	}
	return nil
}
