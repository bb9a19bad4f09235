package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/randalmurphal/taskdeck/internal/events"
)

func newHistoryCmd(opts *globalOptions) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent changes",
		Long: `Show the most recent project and task changes from the change journal.

Examples:
  taskdeck history
  taskdeck history --limit 50 --json`,
		Args: cobra.NoArgs,
		RunE: opts.run(func(s *session, _ []string) error {
			entries, err := events.ReadJournal(s.ctx, s.blob, s.cfg.Config.Storage.JournalKey, limit)
			if err != nil {
				return err
			}
			if s.json {
				return printJSON(s.out, entries)
			}
			if len(entries) == 0 {
				_, _ = fmt.Fprintln(s.out, "No changes recorded yet.")
				return nil
			}

			w := newTable(s.out)
			_, _ = fmt.Fprintln(w, "TIME\tEVENT\tID")
			for _, e := range entries {
				_, _ = fmt.Fprintf(w, "%s\t%s\t%s\n", e.Time.Local().Format("2006-01-02 15:04:05"), e.Type, e.EntityID)
			}
			return w.Flush()
		}),
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "number of entries to show (0 for all)")
	return cmd
}
