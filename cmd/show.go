package cmd

import (
	"context"
	"fmt"

	"github.com/shuindub/oracle-session/internal"
	"github.com/spf13/cobra"
)

var showCmd = &cobra.Command{
	Use:   "show <session-name>",
	Short: "Replay one session's steps",
	Long: `Print every step of the named session in chronological order.

Unreadable steps are skipped with a warning, matching the engine's
partial-restoration behavior.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sessionName := args[0]

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

		sessionID, err := store.FindChild(ctx, projectID, sessionName, internal.KindFolder)
		if err != nil {
			return fmt.Errorf("failed to look up session: %w", err)
		}
		if sessionID == "" {
			return fmt.Errorf("session %q not found", sessionName)
		}

		children, err := store.ListChildren(ctx, sessionID, internal.SortAscending)
		if err != nil {
			return fmt.Errorf("failed to list session steps: %w", err)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, headerStyle.Render("Session "+sessionName))
		fmt.Fprintln(out)

		shown := 0
		for _, child := range children {
			number, ok := internal.ParseStepNumber(child.Name)
			if !ok {
				continue
			}
			var step internal.Step
			if err := store.ReadFile(ctx, child.ID, &step); err != nil {
				internal.LogWarn("Skipping unreadable step %s: %v", child.Name, err)
				continue
			}
			fmt.Fprintln(out, dimStyle.Render(fmt.Sprintf("step %d · %s", number, step.Timestamp)))
			fmt.Fprintln(out, userStyle.Render("You: ")+step.UserInput)
			fmt.Fprintln(out, oracleStyle.Render("Oracle: ")+step.ModelOutput)
			fmt.Fprintln(out)
			shown++
		}

		if shown == 0 {
			fmt.Fprintln(out, dimStyle.Render("No steps recorded."))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(showCmd)
}
