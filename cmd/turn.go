package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/elilinden/Support-bot/internal/api"
	"github.com/elilinden/Support-bot/internal/prompts"
)

var (
	turnSession string
	turnTone    string
	turnMode    string
	turnJSON    bool
)

var turnCmd = &cobra.Command{
	Use:   "turn [message]",
	Short: "Send one message to a case session and print the coach's reply",
	Long: `Runs one coaching turn against a stored session. Without --session a new
session is created first and its id is printed to stderr.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		svc, b, err := loadService(ctx)
		if err != nil {
			return err
		}
		defer b.Close()

		id := turnSession
		if id == "" {
			cs, err := svc.CreateSession(ctx, "", "")
			if err != nil {
				return err
			}
			id = cs.ID
			fmt.Fprintf(os.Stderr, "Created session %s\n", id)
		}

		out, err := svc.Turn(ctx, id, api.TurnInput{
			Message: strings.Join(args, " "),
			Tone:    prompts.Tone(turnTone),
			Mode:    turnMode,
		})
		if err != nil {
			return err
		}

		if turnJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(out.Result)
		}

		fmt.Println(out.Result.AssistantMessage)
		if len(out.Result.NextQuestions) > 0 {
			fmt.Println("\nNext questions:")
			for _, q := range out.Result.NextQuestions {
				fmt.Printf("  - %s\n", q)
			}
		}
		for _, f := range out.Result.SafetyFlags {
			fmt.Fprintf(os.Stderr, "[%s/%s] %s\n", f.Severity, f.Category, f.Message)
		}
		fmt.Fprintf(os.Stderr, "Progress: %d%%\n", out.Session.ProgressPercent)
		return nil
	},
}

func init() {
	turnCmd.Flags().StringVarP(&turnSession, "session", "s", "", "session id (a new session is created when empty)")
	turnCmd.Flags().StringVar(&turnTone, "tone", "", "plain or formal (defaults to default_tone)")
	turnCmd.Flags().StringVar(&turnMode, "mode", "", "interview, roadmap_update or chat")
	turnCmd.Flags().BoolVar(&turnJSON, "json", false, "print the full turn result as JSON")
	rootCmd.AddCommand(turnCmd)
}
