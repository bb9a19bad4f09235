package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/randalmurphal/taskdeck/internal/model"
	"github.com/randalmurphal/taskdeck/internal/view"
)

type homeReport struct {
	Route    view.Meta    `json:"route"`
	User     string       `json:"user,omitempty"`
	Stats    view.Stats   `json:"stats"`
	Upcoming []model.Task `json:"upcoming"`
}

func newHomeCmd(opts *globalOptions) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "home",
		Short: "Show the dashboard",
		Long: `Show project and task counts, the done rate and the nearest deadlines.

Examples:
  taskdeck home
  taskdeck home --limit 10
  taskdeck home --json`,
		Args: cobra.NoArgs,
		RunE: opts.run(func(s *session, _ []string) error {
			if limit <= 0 {
				limit = s.cfg.Config.View.UpcomingLimit
			}
			snap := s.store.Snapshot()

			report := homeReport{
				Route:    view.RouteMeta(view.RouteHome),
				Stats:    view.Aggregate(snap.Projects, snap.Tasks),
				Upcoming: view.Upcoming(snap.Tasks, limit),
			}
			if u := s.auth.User(); u != nil {
				report.User = u.Username
			}
			if s.json {
				return printJSON(s.out, report)
			}
			return s.printHome(report, view.ProjectNames(snap.Projects), time.Now())
		}),
	}

	cmd.Flags().IntVar(&limit, "limit", 0, "number of upcoming deadlines (default from view.upcoming_limit)")
	return cmd
}

func (s *session) printHome(r homeReport, names map[string]string, now time.Time) error {
	title := r.Route.Title
	if r.User != "" {
		title = fmt.Sprintf("%s, %s", title, r.User)
	}
	_, _ = fmt.Fprintln(s.out, s.styles.Title(title))
	_, _ = fmt.Fprintln(s.out)

	st := r.Stats
	w := newTable(s.out)
	_, _ = fmt.Fprintf(w, "Projects\t%d\n", st.Projects)
	_, _ = fmt.Fprintf(w, "Tasks\t%d\n", st.Tasks)
	_, _ = fmt.Fprintf(w, "Open\t%d\n", st.Open)
	_, _ = fmt.Fprintf(w, "Urgent\t%d\n", st.Urgent)
	_, _ = fmt.Fprintf(w, "Done\t%d%%\n", st.DoneRate)
	if err := w.Flush(); err != nil {
		return err
	}

	_, _ = fmt.Fprintln(s.out)
	_, _ = fmt.Fprintln(s.out, s.styles.Title("Upcoming deadlines"))
	if len(r.Upcoming) == 0 {
		_, _ = fmt.Fprintln(s.out, s.styles.Subtle("No upcoming deadlines."))
		return nil
	}
	for _, t := range r.Upcoming {
		_, _ = fmt.Fprintf(s.out, "  %s  %s\n", t.Title, s.styles.Status(t.Status))
		_, _ = fmt.Fprintf(s.out, "    %s\n", s.styles.Subtle(fmt.Sprintf("%s • %s • %s",
			view.ProjectName(names, t.ProjectID),
			view.FormatDate(t.Deadline),
			view.RelativeDeadline(t.Deadline, now))))
	}
	return nil
}
