package cli

import (
	"fmt"
	"os"
	"sort"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"gita/config"
	"gita/internal/adapter/session"
)

var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "Inspect or drop persisted sessions",
	Long: `Manage sessions kept in the bolt session store (session.store: bolt).
With the in-memory store sessions end with the process and there is nothing to list.`,
}

var sessionsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored sessions",
	RunE:  runSessionsList,
}

var sessionsClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete every stored session",
	RunE:  runSessionsClear,
}

var sessionsPruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Delete sessions idle longer than session.timeout",
	RunE:  runSessionsPrune,
}

func init() {
	rootCmd.AddCommand(sessionsCmd)
	sessionsCmd.AddCommand(sessionsListCmd, sessionsClearCmd, sessionsPruneCmd)
}

// openSessions opens the session store without loading the corpus.
func openSessions() (*session.Manager, error) {
	c := GetConfig()
	if c.Session.Store != "bolt" {
		return nil, fmt.Errorf("session.store is %q; only the bolt store keeps sessions between runs", c.Session.Store)
	}
	if _, err := os.Stat(config.SessionDBPath(GetRootDir())); os.IsNotExist(err) {
		return nil, fmt.Errorf("no session store found at %s", config.SessionDBPath(GetRootDir()))
	}
	st, err := openSessionStore(c)
	if err != nil {
		return nil, err
	}
	return session.NewManager(st, c.Session), nil
}

func runSessionsList(cmd *cobra.Command, args []string) error {
	m, err := openSessions()
	if err != nil {
		return err
	}
	defer m.Close()

	sessions, err := m.List()
	if err != nil {
		return err
	}
	if len(sessions) == 0 {
		fmt.Println("No sessions.")
		return nil
	}
	sort.Slice(sessions, func(i, j int) bool {
		return sessions[i].LastActivity.After(sessions[j].LastActivity)
	})

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tREQUESTS\tTURNS\tVERSES SERVED\tLAST ACTIVE\tCREATED")
	for _, s := range sessions {
		fmt.Fprintf(w, "%s\t%d\t%d\t%d\t%s\t%s\n",
			s.ID, s.RequestCount, len(s.History), s.Usage.TotalSelections(),
			humanize.Time(s.LastActivity), humanize.Time(s.CreatedAt))
	}
	return w.Flush()
}

func runSessionsClear(cmd *cobra.Command, args []string) error {
	m, err := openSessions()
	if err != nil {
		return err
	}
	defer m.Close()

	sessions, err := m.List()
	if err != nil {
		return err
	}
	for _, s := range sessions {
		if err := m.Delete(s.ID); err != nil {
			return fmt.Errorf("failed to delete session %s: %w", s.ID, err)
		}
	}
	fmt.Printf("Deleted %s sessions.\n", humanize.Comma(int64(len(sessions))))
	return nil
}

func runSessionsPrune(cmd *cobra.Command, args []string) error {
	m, err := openSessions()
	if err != nil {
		return err
	}
	defer m.Close()

	removed, err := m.Sweep()
	if err != nil {
		return err
	}
	fmt.Printf("Removed %d expired sessions.\n", removed)
	return nil
}
