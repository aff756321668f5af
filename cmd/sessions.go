package cmd

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/charmbracelet/lipgloss"
	"github.com/shuindub/oracle-session/internal"
	"github.com/spf13/cobra"
)

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("62")).
			Padding(0, 1)

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("212"))

	nameStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("255"))

	countStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42")).
			Bold(true)

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			Italic(true)
)

var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "List stored sessions",
	Long:  `List all session folders under the project, newest first.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		store := openStore(cfg)
		if store == nil {
			return fmt.Errorf("no storage backend available")
		}

		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}

		resolver := internal.NewProjectResolver(store, cfg.RootFolder, cfg.ProjectName)
		projectID, err := resolver.Resolve(ctx)
		if err != nil {
			return fmt.Errorf("failed to resolve project: %w", err)
		}

		entries, err := store.ListChildren(ctx, projectID, internal.SortDescending)
		if err != nil {
			return fmt.Errorf("failed to list sessions: %w", err)
		}

		out := cmd.OutOrStdout()
		var sessions []internal.Entry
		for _, e := range entries {
			if e.Kind != internal.KindFile {
				sessions = append(sessions, e)
			}
		}

		if len(sessions) == 0 {
			fmt.Fprintln(out, headerStyle.Render("No sessions found"))
			return nil
		}

		fmt.Fprintln(out, headerStyle.Render(fmt.Sprintf("Found %d session(s)", len(sessions))))
		fmt.Fprintln(out)

		w := tabwriter.NewWriter(out, 0, 0, 3, ' ', 0)
		_, _ = fmt.Fprintln(w, titleStyle.Render("Session")+"\t"+titleStyle.Render("Steps")+"\t")

		for _, session := range sessions {
			count := sessionStepCount(ctx, store, session.ID)
			_, _ = fmt.Fprintf(w, "%s\t%s\t\n", nameStyle.Render(session.Name), countStyle.Render(fmt.Sprintf("%d", count)))
		}
		_ = w.Flush()

		fmt.Fprintln(out)
		fmt.Fprintln(out, dimStyle.Render("Tip: replay a session with `oracle-session show <session-name>`"))
		return nil
	},
}

// sessionStepCount counts a session folder's step files; listing failures
// degrade to zero rather than failing the whole table.
func sessionStepCount(ctx context.Context, store internal.ObjectStore, sessionID string) int {
	children, err := store.ListChildren(ctx, sessionID, internal.SortAscending)
	if err != nil {
		internal.LogWarn("Failed to list session %s: %v", sessionID, err)
		return 0
	}
	count := 0
	for _, c := range children {
		if internal.IsStepFile(c.Name) {
			count++
		}
	}
	return count
}

func init() {
	rootCmd.AddCommand(sessionsCmd)
}
