package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tgienger/doit/internal/models"
	"github.com/tgienger/doit/internal/stats"
	"github.com/tgienger/doit/internal/store"
	"github.com/tgienger/doit/internal/ui/styles"
	"github.com/tgienger/doit/internal/ui/views"
)

func newStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show completion statistics",
		Long: `Print totals for projects and tasks, completion rates and how
many projects sit at each priority.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession()
			if err != nil {
				return err
			}
			defer s.close()
			plain, _ := cmd.Flags().GetBool("plain")
			return runStats(cmd, s, plain)
		},
	}
	cmd.Flags().Bool("plain", false, "Print without colors or borders")
	return cmd
}

func runStats(cmd *cobra.Command, s *session, plain bool) error {
	s.load(cmd.Context())
	sum := stats.Compute(s.store.Snapshot().Projects)

	out := cmd.OutOrStdout()
	if !plain {
		fmt.Fprintln(out, views.RenderSummary(styles.NewStyles(), sum))
		return nil
	}

	fmt.Fprintf(out, "Projects:  %d (%d completed, %d active)\n",
		sum.TotalProjects, sum.CompletedProjects, sum.ActiveProjects())
	fmt.Fprintf(out, "Tasks:     %d (%d completed, %d pending)\n",
		sum.TotalTasks, sum.CompletedTasks, sum.PendingTasks())
	fmt.Fprintf(out, "Task completion:    %d%%\n", sum.TaskCompletionRate)
	fmt.Fprintf(out, "Project completion: %d%%\n", sum.ProjectCompletionRate)
	fmt.Fprintln(out, "Projects by priority:")
	for i := len(models.Priorities) - 1; i >= 0; i-- {
		p := models.Priorities[i]
		fmt.Fprintf(out, "  %-8s %d\n", p, sum.ByPriority[p])
	}
	return nil
}

func newAddCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add <title>",
		Short: "Create a project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession()
			if err != nil {
				return err
			}
			defer s.close()
			desc, _ := cmd.Flags().GetString("description")
			prio, _ := cmd.Flags().GetString("priority")
			return runAdd(cmd, s, args[0], desc, prio)
		},
	}
	cmd.Flags().StringP("description", "d", "", "Project description")
	cmd.Flags().StringP("priority", "p", "medium", "Priority: low, medium or high")
	return cmd
}

func runAdd(cmd *cobra.Command, s *session, title, description, priority string) error {
	prio, err := models.ParsePriority(priority)
	if err != nil {
		return err
	}
	title = strings.TrimSpace(title)
	if title == "" {
		return store.ErrEmptyTitle
	}

	s.load(cmd.Context())
	p, err := s.store.AddProject(title, strings.TrimSpace(description), prio)
	if err != nil {
		return err
	}
	if err := s.store.Flush(cmd.Context()); err != nil {
		return fmt.Errorf("save project: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Created project %q (%s)\n", p.Title, p.ID)
	return nil
}

func newExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Print all projects as JSON",
		Long:  `Print the whole collection in the same JSON form it is persisted in.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession()
			if err != nil {
				return err
			}
			defer s.close()
			pretty, _ := cmd.Flags().GetBool("pretty")
			return runExport(cmd, s, pretty)
		},
	}
	cmd.Flags().Bool("pretty", false, "Indent the output")
	return cmd
}

func runExport(cmd *cobra.Command, s *session, pretty bool) error {
	s.load(cmd.Context())
	blob, err := store.Encode(s.store.Snapshot().Projects)
	if err != nil {
		return err
	}

	if pretty {
		var buf bytes.Buffer
		if err := json.Indent(&buf, []byte(blob), "", "  "); err != nil {
			return err
		}
		blob = buf.String()
	}
	fmt.Fprintln(cmd.OutOrStdout(), blob)
	return nil
}

func newVersionCmd(info BuildInfo) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "doit %s\n", info)
		},
	}
}
