package cmd

import (
	"context"
	"fmt"

	"github.com/shuindub/oracle-session/internal"
	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Check storage connectivity and session state",
	Long: `Report the configured backend, whether the store is reachable, and the
most recent session with its next step number.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()

		fmt.Fprintf(out, "Backend:    %s\n", cfg.Backend)
		fmt.Fprintf(out, "Project:    %s/%s\n", cfg.RootFolder, cfg.ProjectName)
		fmt.Fprintf(out, "Window:     %d step(s)\n", cfg.RestoreWindow)

		store := openStore(cfg)
		if store == nil {
			fmt.Fprintln(out, "Storage:    unavailable (running without persistence)")
			return nil
		}

		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}

		resolver := internal.NewProjectResolver(store, cfg.RootFolder, cfg.ProjectName)
		projectID, err := resolver.Resolve(ctx)
		if err != nil {
			fmt.Fprintf(out, "Storage:    unreachable (%v)\n", err)
			return nil
		}
		fmt.Fprintln(out, "Storage:    connected")

		// Read-only peek at the latest session; unlike the engine this must
		// not create anything.
		entries, err := store.ListChildren(ctx, projectID, internal.SortDescending)
		if err != nil {
			fmt.Fprintf(out, "Session:    unavailable (%v)\n", err)
			return nil
		}
		var latest *internal.Entry
		for i := range entries {
			if entries[i].Kind != internal.KindFile {
				latest = &entries[i]
				break
			}
		}
		if latest == nil {
			fmt.Fprintln(out, "Session:    none (a new one will be created on next chat)")
			return nil
		}

		fmt.Fprintf(out, "Session:    %s\n", latest.Name)
		fmt.Fprintf(out, "Steps:      %d\n", sessionStepCount(ctx, store, latest.ID))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
