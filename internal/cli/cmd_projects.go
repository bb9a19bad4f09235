package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/randalmurphal/taskdeck/internal/model"
	"github.com/randalmurphal/taskdeck/internal/store"
	"github.com/randalmurphal/taskdeck/internal/view"
)

type projectRow struct {
	model.Project
	Tasks int `json:"tasks"`
}

func newProjectsCmd(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "projects",
		Aliases: []string{"project", "p"},
		Short:   "List and manage projects",
		Long: `List projects with their task counts, or manage them with a subcommand.

Subcommands:
  list   List projects (default)
  add    Create a project
  edit   Change a project's name or description
  rm     Delete a project and all of its tasks

Examples:
  taskdeck projects
  taskdeck projects add "Website" --description "Relaunch"
  taskdeck projects edit proj_abc --name "Website v2"
  taskdeck projects rm proj_abc`,
		Args: cobra.NoArgs,
		RunE: opts.run(listProjects),
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List projects",
			Args:  cobra.NoArgs,
			RunE:  opts.run(listProjects),
		},
		newProjectAddCmd(opts),
		newProjectEditCmd(opts),
		newProjectRmCmd(opts),
	)
	return cmd
}

func listProjects(s *session, _ []string) error {
	snap := s.store.Snapshot()
	counts := view.ProjectTaskCounts(snap.Tasks)

	rows := make([]projectRow, 0, len(snap.Projects))
	for _, p := range snap.Projects {
		rows = append(rows, projectRow{Project: p, Tasks: counts[p.ID]})
	}
	if s.json {
		return printJSON(s.out, rows)
	}

	if len(rows) == 0 {
		_, _ = fmt.Fprintln(s.out, "No projects yet. Create one with 'taskdeck projects add <name>'.")
		return nil
	}

	w := newTable(s.out)
	_, _ = fmt.Fprintln(w, "ID\tNAME\tTASKS\tDESCRIPTION")
	for _, r := range rows {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%d\t%s\n", r.ID, truncate(r.Name, s.styles.column(40)), r.Tasks, orDash(truncate(r.Description, s.styles.column(60))))
	}
	return w.Flush()
}

func newProjectAddCmd(opts *globalOptions) *cobra.Command {
	var description string

	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Create a project",
		Args:  cobra.ExactArgs(1),
		RunE: opts.run(func(s *session, args []string) error {
			if err := s.requireAuth(); err != nil {
				return err
			}
			res, err := s.store.CreateProject(s.ctx, store.ProjectInput{Name: args[0], Description: description})
			if err != nil {
				return err
			}
			if err := res.Err("project", ""); err != nil {
				return err
			}
			return s.reportProject("Created", res)
		}),
	}

	cmd.Flags().StringVarP(&description, "description", "d", "", "project description")
	return cmd
}

func newProjectEditCmd(opts *globalOptions) *cobra.Command {
	var name, description string

	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Change a project's name or description",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var patch store.ProjectPatch
			if cmd.Flags().Changed("name") {
				patch.Name = &name
			}
			if cmd.Flags().Changed("description") {
				patch.Description = &description
			}
			if patch.Name == nil && patch.Description == nil {
				return fmt.Errorf("nothing to change: pass --name or --description")
			}

			return opts.run(func(s *session, args []string) error {
				if err := s.requireAuth(); err != nil {
					return err
				}
				res, err := s.store.UpdateProject(s.ctx, args[0], patch)
				if err != nil {
					return err
				}
				if err := res.Err("project", args[0]); err != nil {
					return err
				}
				return s.reportProject("Updated", res)
			})(cmd, args)
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "new name")
	cmd.Flags().StringVarP(&description, "description", "d", "", "new description")
	return cmd
}

func newProjectRmCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "rm <id>",
		Aliases: []string{"delete"},
		Short:   "Delete a project and all of its tasks",
		Args:    cobra.ExactArgs(1),
		RunE: opts.run(func(s *session, args []string) error {
			if err := s.requireAuth(); err != nil {
				return err
			}
			res, err := s.store.DeleteProject(s.ctx, args[0])
			if err != nil {
				return err
			}
			if err := res.Err("project", args[0]); err != nil {
				return err
			}
			if s.json {
				return printJSON(s.out, map[string]any{"deleted": res.Project, "removedTasks": res.Removed})
			}
			_, _ = fmt.Fprintf(s.out, "Deleted project %s (%s) and %d task(s)\n", res.Project.ID, res.Project.Name, res.Removed)
			return nil
		}),
	}
}

func (s *session) reportProject(verb string, res store.Result) error {
	if s.json {
		return printJSON(s.out, res.Project)
	}
	_, _ = fmt.Fprintf(s.out, "%s project %s: %s\n", verb, res.Project.ID, res.Project.Name)
	return nil
}
