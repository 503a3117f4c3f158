package cmd

import (
	"fmt"
	"os"

	"labelsync/pkg/config"

	"github.com/spf13/cobra"
)

var initOrganization string

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize labelsync configuration",
	Long:  "Create a default configuration file for labelsync",
	Args:  cobra.NoArgs,
	RunE:  runInit,
}

func init() {
	initCmd.Flags().StringVar(&initOrganization, "org", "", "Default organization written to github.organization")
}

func runInit(cmd *cobra.Command, _ []string) error {
	path := configPath
	if path == "" {
		var err error
		path, err = config.GetConfigPath()
		if err != nil {
			return fmt.Errorf("failed to get config path: %w", err)
		}
	}

	out := cmd.OutOrStdout()
	if _, err := os.Stat(path); err == nil {
		fmt.Fprintf(out, "⚠️  Configuration file already exists at: %s\n", path)
		ok, err := confirm(cmd, "Do you want to overwrite it?")
		if err != nil {
			return err
		}
		if !ok {
			fmt.Fprintln(out, "Configuration initialization cancelled.")
			return nil
		}
	}

	defaultConfig := config.DefaultConfig()
	defaultConfig.GitHub.Organization = initOrganization

	if err := defaultConfig.SaveConfigToPath(path); err != nil {
		return fmt.Errorf("failed to save configuration: %w", err)
	}

	fmt.Fprintf(out, "✅ Configuration file created at: %s\n", path)
	fmt.Fprintln(out, "📝 Please edit the file to set your organization and label list location.")

	return nil
}
