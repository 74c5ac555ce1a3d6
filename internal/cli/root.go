package cli

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/tgienger/doit/internal/ui"
)

// BuildInfo is stamped at link time.
type BuildInfo struct {
	Version string
	Commit  string
	Date    string
}

func (b BuildInfo) String() string {
	return fmt.Sprintf("%s (commit: %s, built: %s)", b.Version, b.Commit, b.Date)
}

func newRootCmd(info BuildInfo) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "doit",
		Short: "doit - projects and tasks in your terminal",
		Long: `doit keeps a local list of projects, each with its own tasks.

A project is completed once it has tasks and every one of them is done.
Data lives under $DOIT_DATA_DIR (default: $XDG_DATA_HOME/doit).`,
		RunE:          runTUI,
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       info.String(),
	}

	rootCmd.AddCommand(newAddCmd())
	rootCmd.AddCommand(newStatsCmd())
	rootCmd.AddCommand(newExportCmd())
	rootCmd.AddCommand(newVersionCmd(info))
	return rootCmd
}

// Execute runs the root command
func Execute(info BuildInfo) error {
	if err := newRootCmd(info).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return err
	}
	return nil
}

func runTUI(cmd *cobra.Command, args []string) error {
	s, err := openSession()
	if err != nil {
		return err
	}
	defer s.close()

	// The app loads the store itself so the first frame can show "Loading".
	app := ui.NewApp(s.store, s.storage, s.logger)
	defer app.Close()

	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithContext(cmd.Context()))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run application: %w", err)
	}
	return nil
}
