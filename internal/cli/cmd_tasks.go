package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/randalmurphal/taskdeck/internal/model"
	"github.com/randalmurphal/taskdeck/internal/store"
	"github.com/randalmurphal/taskdeck/internal/view"
)

type taskRow struct {
	model.Task
	Project string `json:"project"`
}

func newTasksCmd(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "tasks",
		Aliases: []string{"task", "t"},
		Short:   "List and manage tasks",
		Long: `List tasks, or manage them with a subcommand.

Subcommands:
  list    List tasks with filters and sorting (default)
  add     Create a task
  edit    Change task fields
  status  Move a task to another status
  rm      Delete a task

Examples:
  taskdeck tasks --status done
  taskdeck tasks --project proj_abc --sort deadline --dir asc
  taskdeck tasks add "Draft copy" --project proj_abc --priority high --deadline 2025-03-01
  taskdeck tasks status task_xyz in_progress`,
	}

	listCmd := newTaskListCmd(opts)
	cmd.Args = cobra.NoArgs
	cmd.RunE = listCmd.RunE
	cmd.Flags().AddFlagSet(listCmd.Flags())

	cmd.AddCommand(
		listCmd,
		newTaskAddCmd(opts),
		newTaskEditCmd(opts),
		newTaskStatusCmd(opts),
		newTaskRmCmd(opts),
	)
	return cmd
}

func newTaskListCmd(opts *globalOptions) *cobra.Command {
	var projectID, status, priority, sortBy, direction string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tasks",
		Args:  cobra.NoArgs,
		RunE: opts.run(func(s *session, _ []string) error {
			spec, err := sortSpec(s, sortBy, direction)
			if err != nil {
				return err
			}
			if err := checkFilter(status, priority); err != nil {
				return err
			}

			snap := s.store.Snapshot()
			tasks := view.Filter(snap.Tasks, view.TaskFilter{ProjectID: projectID, Status: status, Priority: priority})
			tasks = view.Sort(tasks, spec)

			names := view.ProjectNames(snap.Projects)
			rows := make([]taskRow, 0, len(tasks))
			for _, t := range tasks {
				rows = append(rows, taskRow{Task: t, Project: view.ProjectName(names, t.ProjectID)})
			}
			if s.json {
				return printJSON(s.out, rows)
			}
			return s.printTasks(rows, time.Now())
		}),
	}

	f := cmd.Flags()
	f.StringVar(&projectID, "project", view.All, "filter by project id")
	f.StringVar(&status, "status", view.All, "filter by status: new, in_progress, blocked, done")
	f.StringVar(&priority, "priority", view.All, "filter by priority: low, medium, high, urgent")
	f.StringVar(&sortBy, "sort", "", "sort by createdAt, deadline or priority (default from view.sort_by)")
	f.StringVar(&direction, "dir", "", "sort direction asc or desc (default from view.sort_direction)")
	return cmd
}

func sortSpec(s *session, by, dir string) (view.SortSpec, error) {
	if by == "" {
		by = s.cfg.Config.View.SortBy
	}
	if dir == "" {
		dir = s.cfg.Config.View.SortDirection
	}
	key, err := view.ParseSortKey(by)
	if err != nil {
		return view.SortSpec{}, err
	}
	d, err := view.ParseDirection(dir)
	if err != nil {
		return view.SortSpec{}, err
	}
	return view.SortSpec{By: key, Direction: d}, nil
}

func checkFilter(status, priority string) error {
	if status != view.All {
		if _, err := model.ParseStatus(status); err != nil {
			return err
		}
	}
	if priority != view.All {
		if _, err := model.ParsePriority(priority); err != nil {
			return err
		}
	}
	return nil
}

func (s *session) printTasks(rows []taskRow, now time.Time) error {
	if len(rows) == 0 {
		_, _ = fmt.Fprintln(s.out, "No tasks match.")
		return nil
	}

	w := newTable(s.out)
	_, _ = fmt.Fprintln(w, "ID\tTITLE\tPROJECT\tSTATUS\tPRIORITY\tDEADLINE\tCREATED")
	for _, r := range rows {
		deadline := view.FormatDate(r.Deadline)
		if r.HasDeadline() && r.Status != model.StatusDone {
			deadline += " (" + view.RelativeDeadline(r.Deadline, now) + ")"
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			r.ID,
			truncate(r.Title, s.styles.column(40)),
			truncate(r.Project, s.styles.column(20)),
			r.Status.Label(),
			r.Priority.Label(),
			deadline,
			view.FormatTime(r.CreatedAt),
		)
	}
	return w.Flush()
}

func newTaskAddCmd(opts *globalOptions) *cobra.Command {
	var in store.TaskInput
	var priority, status string

	cmd := &cobra.Command{
		Use:   "add <title>",
		Short: "Create a task",
		Args:  cobra.ExactArgs(1),
		RunE: opts.run(func(s *session, args []string) error {
			if err := s.requireAuth(); err != nil {
				return err
			}
			in.Title = args[0]
			in.Priority = model.Priority(priority)
			in.Status = model.Status(status)

			res, err := s.store.CreateTask(s.ctx, in)
			if err != nil {
				return err
			}
			if err := res.Err("task", ""); err != nil {
				return err
			}
			return s.reportTask("Created", res)
		}),
	}

	f := cmd.Flags()
	f.StringVar(&in.ProjectID, "project", "", "project id (required)")
	f.StringVarP(&in.Description, "description", "d", "", "task description")
	f.StringVar(&priority, "priority", string(model.DefaultPriority), "low, medium, high or urgent")
	f.StringVar(&status, "status", string(model.DefaultStatus), "new, in_progress, blocked or done")
	f.StringVar(&in.Deadline, "deadline", "", "due date, e.g. 2025-03-01")
	_ = cmd.MarkFlagRequired("project")
	return cmd
}

func newTaskEditCmd(opts *globalOptions) *cobra.Command {
	var title, description, projectID, priority, status, deadline string

	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Change task fields",
		Long: `Change one or more fields of a task. Only the flags you pass are changed.
Pass --deadline "" to clear the deadline.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var patch store.TaskPatch
			changed := false
			set := func(flag string, apply func()) {
				if cmd.Flags().Changed(flag) {
					apply()
					changed = true
				}
			}
			set("title", func() { patch.Title = &title })
			set("description", func() { patch.Description = &description })
			set("project", func() { patch.ProjectID = &projectID })
			set("priority", func() { p := model.Priority(priority); patch.Priority = &p })
			set("status", func() { st := model.Status(status); patch.Status = &st })
			set("deadline", func() { patch.Deadline = &deadline })
			if !changed {
				return fmt.Errorf("nothing to change: pass at least one field flag")
			}

			return opts.run(func(s *session, args []string) error {
				if err := s.requireAuth(); err != nil {
					return err
				}
				res, err := s.store.UpdateTask(s.ctx, args[0], patch)
				if err != nil {
					return err
				}
				if err := res.Err("task", args[0]); err != nil {
					return err
				}
				return s.reportTask("Updated", res)
			})(cmd, args)
		},
	}

	f := cmd.Flags()
	f.StringVar(&title, "title", "", "new title")
	f.StringVarP(&description, "description", "d", "", "new description")
	f.StringVar(&projectID, "project", "", "move to another project")
	f.StringVar(&priority, "priority", "", "low, medium, high or urgent")
	f.StringVar(&status, "status", "", "new, in_progress, blocked or done")
	f.StringVar(&deadline, "deadline", "", "due date, or empty to clear")
	return cmd
}

func newTaskStatusCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "status <id> <status>",
		Short: "Move a task to another status",
		Long: `Move a task to another status.

Statuses: new, in_progress, blocked, done`,
		Args: cobra.ExactArgs(2),
		RunE: opts.run(func(s *session, args []string) error {
			if err := s.requireAuth(); err != nil {
				return err
			}
			res, err := s.store.SetTaskStatus(s.ctx, args[0], model.Status(args[1]))
			if err != nil {
				return err
			}
			if err := res.Err("task", args[0]); err != nil {
				return err
			}
			return s.reportTask("Updated", res)
		}),
	}
}

func newTaskRmCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "rm <id>",
		Aliases: []string{"delete"},
		Short:   "Delete a task",
		Args:    cobra.ExactArgs(1),
		RunE: opts.run(func(s *session, args []string) error {
			if err := s.requireAuth(); err != nil {
				return err
			}
			res, err := s.store.DeleteTask(s.ctx, args[0])
			if err != nil {
				return err
			}
			if err := res.Err("task", args[0]); err != nil {
				return err
			}
			return s.reportTask("Deleted", res)
		}),
	}
}

func (s *session) reportTask(verb string, res store.Result) error {
	if s.json {
		return printJSON(s.out, res.Task)
	}
	t := res.Task
	_, _ = fmt.Fprintf(s.out, "%s task %s: %s [%s, %s]\n", verb, t.ID, t.Title, t.Status.Label(), t.Priority.Label())
	return nil
}
