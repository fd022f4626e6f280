package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"gita/internal/domain"
)

var (
	headingStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("214"))
	refStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
	dimStyle     = lipgloss.NewStyle().Faint(true)
	answerStyle  = lipgloss.NewStyle().PaddingLeft(2)
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
	okStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("78"))
)

// printSelection writes the selected verses, or the no-guidance message.
func printSelection(w io.Writer, sel domain.Selection) {
	if sel.Empty() {
		fmt.Fprintln(w, warnStyle.Render("No verses found for this question. Try rephrasing it."))
		return
	}
	fmt.Fprintln(w, headingStyle.Render(fmt.Sprintf("Relevant verses (%d)", len(sel.Verses))))
	for _, v := range sel.Verses {
		ref := refStyle.Render(fmt.Sprintf("Chapter %d, Verse %d", v.Chapter, v.VerseNumber))
		meta := fmt.Sprintf("score %.3f, similarity %.3f", v.FinalScore, v.RawSimilarity)
		if v.DiversityPick {
			meta += ", new chapter"
		}
		fmt.Fprintf(w, "\n%d. %s %s\n", v.Rank, ref, dimStyle.Render("("+meta+")"))
		if t := strings.TrimSpace(v.VerseText); t != "" {
			fmt.Fprintln(w, answerStyle.Render(t))
		}
		if m := strings.TrimSpace(v.Meaning); m != "" {
			fmt.Fprintln(w, answerStyle.Render("Meaning: "+m))
		}
	}
}

// printAnswer writes a synthesized answer.
func printAnswer(w io.Writer, a domain.Answer) {
	fmt.Fprintln(w, headingStyle.Render("Guidance"))
	fmt.Fprintln(w, answerStyle.Render(a.ShortAnswer))
	if a.DetailedExplanation != "" {
		fmt.Fprintln(w)
		fmt.Fprintln(w, answerStyle.Render(a.DetailedExplanation))
	}
}
