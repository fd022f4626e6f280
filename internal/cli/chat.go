package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"maps"
	"os"
	"slices"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"gita/internal/adapter/monitor"
	"gita/internal/domain"
	"gita/internal/usecase"
)

var chatSession string

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Hold a conversation in one session",
	Long: `Start an interactive conversation. Every question is answered from verses the
conversation has not leaned on yet, and the last few exchanges are passed to
the answer provider for continuity.

Commands inside the chat:
  /health   service status
  /usage    verses and chapters served so far
  /quit     leave`,
	RunE: runChat,
}

func init() {
	rootCmd.AddCommand(chatCmd)
	chatCmd.Flags().StringVar(&chatSession, "session", "", "resume an existing session")
}

func runChat(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	e, err := newEngine(ctx, engineOptions{progress: true})
	if err != nil {
		return err
	}
	defer e.Close()

	ask, err := e.newAsk()
	if err != nil {
		return err
	}

	sessionID := chatSession
	if sessionID == "" {
		sessionID = ask.NewSessionID()
	}
	defer ask.EndSession(sessionID)

	out := os.Stdout
	fmt.Fprintln(out, headingStyle.Render("Bhagavad Gita guidance"))
	fmt.Fprintln(out, dimStyle.Render(fmt.Sprintf("%s verses across %d chapters, session %s. Type /quit to leave.",
		humanize.Comma(int64(e.index.Verses)), e.index.Chapters, sessionID)))

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Fprint(out, "\n> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		switch line {
		case "":
			continue
		case "/quit", "/exit":
			return nil
		case "/health":
			printHealth(out, ask.Health())
			continue
		case "/usage":
			sess, err := ask.Session(sessionID)
			if err != nil {
				fmt.Fprintln(out, dimStyle.Render("Nothing served yet."))
				continue
			}
			printUsage(out, sess)
			continue
		}

		res, err := ask.Ask(ctx, sessionID, "chat", line)
		switch {
		case errors.Is(err, usecase.ErrRateLimited):
			fmt.Fprintln(out, warnStyle.Render("Too many questions in a short time. Please wait a moment."))
			continue
		case err != nil && !errors.Is(err, usecase.ErrSynthesisFailed):
			return err
		}

		fmt.Fprintln(out)
		printSelection(out, res.Selection)
		if !res.Selection.Empty() {
			fmt.Fprintln(out)
			printAnswer(out, res.Answer)
		}
		if err != nil {
			fmt.Fprintln(out, warnStyle.Render(err.Error()))
		}
	}
	return scanner.Err()
}

func printHealth(w io.Writer, h monitor.Health) {
	status := okStyle.Render(h.Status)
	if h.Status != monitor.StatusHealthy {
		status = warnStyle.Render(h.Status)
	}
	fmt.Fprintf(w, "status:          %s\n", status)
	fmt.Fprintf(w, "interactions:    %s\n", humanize.Comma(int64(h.Metrics.TotalInteractions)))
	fmt.Fprintf(w, "responses:       %d ok, %d failed\n", h.Metrics.SuccessfulResponses, h.Metrics.FailedResponses)
	fmt.Fprintf(w, "error rate:      %.1f%%\n", h.ErrorRate*100)
	fmt.Fprintf(w, "avg response:    %s\n", formatDuration(h.Metrics.AvgResponseTime))
	fmt.Fprintf(w, "active sessions: %d\n", h.ActiveSessions)
	if h.Cache.MaxSize > 0 {
		fmt.Fprintf(w, "answer cache:    %d/%d entries, ttl %s\n", h.Cache.Size, h.Cache.MaxSize, h.Cache.TTL)
	}
}

func printUsage(w io.Writer, sess *domain.Session) {
	u := sess.Usage
	fmt.Fprintf(w, "session %s, started %s, %d requests\n",
		sess.ID, humanize.Time(sess.CreatedAt), sess.RequestCount)
	fmt.Fprintf(w, "%d selections over %d verses in %d chapters\n",
		u.TotalSelections(), len(u.VerseUsage), len(u.ChapterUsage))

	for _, ch := range slices.Sorted(maps.Keys(u.ChapterUsage)) {
		fmt.Fprintf(w, "  chapter %-3d %d\n", ch, u.ChapterUsage[ch])
	}
	if len(u.LastServed) > 0 {
		ids := make([]string, len(u.LastServed))
		for i, id := range u.LastServed {
			ids[i] = string(id)
		}
		fmt.Fprintln(w, dimStyle.Render("last served: "+strings.Join(ids, ", ")))
	}
}
