package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// errNotInteractive is returned when a confirmation is needed but stdin is
// not a terminal
var errNotInteractive = errors.New("confirmation required but stdin is not a terminal: pass --yes to proceed")

// confirm asks a yes/no question on the command's input. Only "y" and "yes"
// confirm.
func confirm(cmd *cobra.Command, question string) (bool, error) {
	in := cmd.InOrStdin()
	if f, ok := in.(*os.File); ok && !term.IsTerminal(int(f.Fd())) {
		return false, errNotInteractive
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s (y/N): ", question)
	response, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && response == "" {
		return false, nil
	}

	switch strings.ToLower(strings.TrimSpace(response)) {
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}
