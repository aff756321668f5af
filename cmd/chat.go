package cmd

import (
	"bufio"
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/shuindub/oracle-session/internal"
	"github.com/spf13/cobra"
)

var (
	userStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("39"))

	oracleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("212"))

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243")).
			Italic(true)
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start or resume a conversation",
	Long: `Start an interactive conversation with the Oracle analytics assistant.

The most recent stored session is restored and its trailing steps are shown
for context. Each completed exchange is persisted as the next step of the
session. Type /quit to exit.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		engine := internal.NewEngine(openStore(cfg), cfg)
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}

		result := engine.Initialize(ctx)
		out := cmd.OutOrStdout()

		switch {
		case !result.Persisting:
			fmt.Fprintln(out, statusStyle.Render("History will not be persisted this session."))
		case result.Restored:
			session := engine.ActiveSession()
			fmt.Fprintln(out, statusStyle.Render(fmt.Sprintf("Resumed session %s at step %d.", session.SessionName, session.CurrentStep)))
		default:
			session := engine.ActiveSession()
			fmt.Fprintln(out, statusStyle.Render(fmt.Sprintf("Started new session %s.", session.SessionName)))
		}
		if result.SkippedSteps > 0 {
			fmt.Fprintln(out, statusStyle.Render(fmt.Sprintf("Warning: %d earlier step(s) could not be restored.", result.SkippedSteps)))
		}

		for _, step := range result.RecentSteps {
			fmt.Fprintln(out, userStyle.Render("You: ")+step.UserInput)
			fmt.Fprintln(out, oracleStyle.Render("Oracle: ")+step.ModelOutput)
		}

		history := result.RecentSteps
		completer := internal.CannedCompleter{}

		scanner := bufio.NewScanner(cmd.InOrStdin())
		fmt.Fprint(out, userStyle.Render("You: "))
		for scanner.Scan() {
			input := strings.TrimSpace(scanner.Text())
			if input == "" {
				fmt.Fprint(out, userStyle.Render("You: "))
				continue
			}
			if input == "/quit" || input == "/exit" {
				break
			}

			reply, err := completer.Complete(ctx, input, history)
			if err != nil {
				internal.LogError("Completion failed: %v", err)
				reply = "The database is silent, boss. I couldn't retrieve the insight."
			}
			fmt.Fprintln(out, oracleStyle.Render("Oracle: ")+reply)

			// Best-effort persistence: log failures and keep going.
			if err := engine.AppendTurn(ctx, input, reply); err != nil {
				internal.LogWarn("Turn not persisted: %v", err)
			}
			history = append(history, internal.NewStep(engine.ActiveSession().CurrentStep-1, input, reply))

			fmt.Fprint(out, userStyle.Render("You: "))
		}

		fmt.Fprintln(out)
		return scanner.Err()
	},
}

func init() {
	rootCmd.AddCommand(chatCmd)
}
