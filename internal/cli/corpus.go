package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"gita/internal/adapter/corpus"
)

var corpusCmd = &cobra.Command{
	Use:   "corpus",
	Short: "Inspect the verse corpus",
}

var corpusAuditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Report how much matchable text each verse field keeps",
	Long: `Load and normalize the corpus, then report per field how many verses
normalize to nothing or almost nothing. Transliterated Sanskrit in verse_text
loses most of its characters to normalization; if the configured match field
is degenerate, consider corpus.match_field: meaning.`,
	RunE: runCorpusAudit,
}

func init() {
	rootCmd.AddCommand(corpusCmd)
	corpusCmd.AddCommand(corpusAuditCmd)
}

func runCorpusAudit(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	fmt.Printf("Loading %s...\n", GetConfig().Corpus.Path)
	e, err := newEngine(ctx, engineOptions{progress: true, audit: true})
	if err != nil {
		return err
	}
	defer e.Close()

	idx := e.index
	fmt.Println(headingStyle.Render("Corpus"))
	fmt.Printf("  verses:      %s\n", humanize.Comma(int64(idx.Verses)))
	fmt.Printf("  chapters:    %d\n", idx.Chapters)
	fmt.Printf("  match field: %s\n", idx.Corpus.Field())
	fmt.Printf("  pipeline:    %s\n", strings.Join(e.normalizer.Stages(), " > "))
	fmt.Printf("  elapsed:     %s\n", formatDuration(idx.Elapsed))

	for _, r := range idx.Reports {
		printFieldReport(r, r.Field == idx.Corpus.Field())
	}
	return nil
}

func printFieldReport(r corpus.FieldReport, active bool) {
	title := r.Field
	if active {
		title += " (matched)"
	}
	fmt.Println()
	fmt.Println(headingStyle.Render(title))
	fmt.Printf("  empty:      %d (%.1f%%)\n", r.Empty, r.EmptyRatio()*100)
	fmt.Printf("  sparse:     %d\n", r.Sparse)
	fmt.Printf("  avg tokens: %.1f\n", r.AvgTokens)
	fmt.Printf("  vocabulary: %s\n", humanize.Comma(int64(r.Vocabulary)))
	if len(r.EmptySample) > 0 {
		ids := make([]string, len(r.EmptySample))
		for i, id := range r.EmptySample {
			ids[i] = string(id)
		}
		fmt.Println(dimStyle.Render("  e.g. " + strings.Join(ids, ", ")))
	}
	if r.Degenerate() {
		fmt.Println(warnStyle.Render("  most verses keep fewer than three tokens"))
	} else {
		fmt.Println(okStyle.Render("  ok"))
	}
}
