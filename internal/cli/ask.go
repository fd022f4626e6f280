package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"gita/internal/usecase"
)

var (
	askQuery   string
	askSession string
	askJSON    bool
)

var askCmd = &cobra.Command{
	Use:   "ask",
	Short: "Ask a question and receive guidance grounded in the verses",
	Long: `Select the relevant verses and ask the configured answer provider for
guidance based on them. Set answer.provider: mock to run without a model.

Examples:
  gita ask -q "How can I find peace of mind?"
  gita ask -q "And how do I keep it?" --session 5b7c...`,
	RunE: runAsk,
}

func init() {
	rootCmd.AddCommand(askCmd)
	askCmd.Flags().StringVarP(&askQuery, "query", "q", "", "question (required)")
	askCmd.Flags().StringVar(&askSession, "session", "", "continue an existing session")
	askCmd.Flags().BoolVar(&askJSON, "json", false, "output as JSON")
	askCmd.MarkFlagRequired("query")
}

func runAsk(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	e, err := newEngine(ctx, engineOptions{})
	if err != nil {
		return err
	}
	defer e.Close()

	ask, err := e.newAsk()
	if err != nil {
		return err
	}

	res, err := ask.Ask(ctx, askSession, "cli", askQuery)
	if err != nil && !errors.Is(err, usecase.ErrSynthesisFailed) {
		return err
	}

	if askJSON {
		output, _ := json.MarshalIndent(res, "", "  ")
		fmt.Println(string(output))
		return nil
	}

	printSelection(os.Stdout, res.Selection)
	fmt.Println()
	printAnswer(os.Stdout, res.Answer)
	fmt.Println()
	fmt.Println(dimStyle.Render(fmt.Sprintf("session %s, %s", res.SessionID, formatDuration(res.Elapsed))))
	if err != nil {
		fmt.Fprintln(os.Stderr, warnStyle.Render(err.Error()))
	}
	return nil
}
