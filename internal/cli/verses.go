package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"gita/internal/domain"
	"gita/internal/usecase"
)

var (
	versesQuery   string
	versesTopN    int
	versesJSON    bool
	versesSession string
)

var versesCmd = &cobra.Command{
	Use:   "verses",
	Short: "Find the verses relevant to a question",
	Long: `Rank every verse against a question and print the selection.

Without --session every call starts from a fresh usage state. With --session
the selection is steered away from verses that session has already seen; use
session.store: bolt in the config to keep sessions between runs.

Examples:
  gita verses -q "I am feeling anxious about my duties at work"
  gita verses -q "What happens after death?" -n 3 --json`,
	RunE: runVerses,
}

func init() {
	rootCmd.AddCommand(versesCmd)
	versesCmd.Flags().StringVarP(&versesQuery, "query", "q", "", "question (required)")
	versesCmd.Flags().IntVarP(&versesTopN, "top-n", "n", 0, "number of verses (default from config)")
	versesCmd.Flags().BoolVar(&versesJSON, "json", false, "output as JSON")
	versesCmd.Flags().StringVar(&versesSession, "session", "", "session ID whose usage steers the ranking")
	versesCmd.MarkFlagRequired("query")
}

func runVerses(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	e, err := newEngine(ctx, engineOptions{})
	if err != nil {
		return err
	}
	defer e.Close()

	topN := e.cfg.Retrieve.TopN
	if versesTopN > 0 {
		topN = versesTopN
	}

	var sel domain.Selection
	if versesSession == "" {
		sel, _ = e.retrieve.FindRelevantVerses(ctx, versesQuery, topN, domain.NewUsageState())
	} else {
		err = e.sessions.WithSession(ctx, versesSession, func(sess *domain.Session) error {
			var next domain.UsageState
			sel, next = e.retrieve.FindRelevantVerses(usecase.ContextWithSession(ctx, versesSession), versesQuery, topN, sess.Usage)
			sess.Usage = next
			if !sel.Empty() {
				sess.Context = append(sess.Context, sel.IDs())
			}
			return nil
		})
		if err != nil {
			return fmt.Errorf("session %s: %w", versesSession, err)
		}
	}

	if versesJSON {
		output, _ := json.MarshalIndent(sel, "", "  ")
		fmt.Println(string(output))
		return nil
	}
	printSelection(os.Stdout, sel)
	return nil
}
