package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/chronolog/chronolog/internal/model"
)

// NewTaskCommand creates the task command group.
func NewTaskCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "task",
		Short: "Manage tasks",
	}

	cmd.AddCommand(newTaskCreateCommand(rootOpts))
	cmd.AddCommand(newTaskRenameCommand(rootOpts))
	cmd.AddCommand(newTaskListCommand(rootOpts))
	cmd.AddCommand(newTaskArchiveCommand(rootOpts))
	cmd.AddCommand(newTaskRestoreCommand(rootOpts))
	cmd.AddCommand(newTaskMoveCommand(rootOpts))
	cmd.AddCommand(newTaskHistoryCommand(rootOpts))

	return cmd
}

func newTaskCreateCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		at      string
		project string
	)

	cmd := &cobra.Command{
		Use:           "create <name>",
		Short:         "Create a task under a project",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			projectID, err := parseProjectID(project)
			if err != nil {
				return err
			}
			effectiveAt, err := parseTimeFlag(at)
			if err != nil {
				return WrapExitError(ExitCommandError, "parse --at", err)
			}

			a, err := openApp(rootOpts)
			if err != nil {
				return err
			}
			defer a.Close()

			tv, err := a.service.CreateTask(cmd.Context(), projectID, args[0], effectiveAt)
			if err != nil {
				return err
			}

			f := formatter(rootOpts, cmd)
			if f.Format == "json" {
				return f.Success(tv)
			}
			return f.Success(fmt.Sprintf("created task %d %q in project %d", tv.TaskID, tv.Name, tv.ProjectID))
		},
	}

	cmd.Flags().StringVarP(&project, "project", "p", "", "parent project id (required)")
	cmd.Flags().StringVar(&at, "at", "", "effective timestamp (RFC 3339, default now)")
	cmd.MarkFlagRequired("project")
	return cmd
}

func newTaskRenameCommand(rootOpts *RootOptions) *cobra.Command {
	var at string

	cmd := &cobra.Command{
		Use:           "rename <task-id> <name>",
		Short:         "Rename a task (appends a new version)",
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseTaskID(args[0])
			if err != nil {
				return err
			}
			effectiveAt, err := parseTimeFlag(at)
			if err != nil {
				return WrapExitError(ExitCommandError, "parse --at", err)
			}

			a, err := openApp(rootOpts)
			if err != nil {
				return err
			}
			defer a.Close()

			tv, err := a.service.RenameTask(cmd.Context(), id, args[1], effectiveAt)
			if err != nil {
				return err
			}

			f := formatter(rootOpts, cmd)
			if f.Format == "json" {
				return f.Success(tv)
			}
			return f.Success(fmt.Sprintf("task %d renamed to %q (v%d)", tv.TaskID, tv.Name, tv.Version))
		},
	}

	cmd.Flags().StringVar(&at, "at", "", "effective timestamp (RFC 3339, default now)")
	return cmd
}

func newTaskHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "history <task-id>",
		Short:         "Show every version of a task, oldest first",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseTaskID(args[0])
			if err != nil {
				return err
			}

			a, err := openApp(rootOpts)
			if err != nil {
				return err
			}
			defer a.Close()

			history, err := a.service.TaskHistory(cmd.Context(), id)
			if err != nil {
				return err
			}

			f := formatter(rootOpts, cmd)
			if f.Format == "json" {
				return f.Success(history)
			}
			var b strings.Builder
			for _, t := range history {
				fmt.Fprintf(&b, "v%d\t%s\t%s\tproject %d\t%s\n", t.Version, t.Name, t.Status, t.ProjectID, model.FormatTime(t.EffectiveAt))
			}
			return f.Success(strings.TrimRight(b.String(), "\n"))
		},
	}

	return cmd
}

func newTaskListCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		status  string
		project string
	)

	cmd := &cobra.Command{
		Use:           "list",
		Short:         "List current tasks",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			filter, err := parseStatusFlag(status)
			if err != nil {
				return WrapExitError(ExitCommandError, "parse --status", err)
			}
			var projectID model.ProjectID
			if project != "" {
				if projectID, err = parseProjectID(project); err != nil {
					return err
				}
			}

			a, err := openApp(rootOpts)
			if err != nil {
				return err
			}
			defer a.Close()

			tasks, err := a.service.Tasks(cmd.Context(), filter, projectID)
			if err != nil {
				return err
			}

			f := formatter(rootOpts, cmd)
			if f.Format == "json" {
				return f.Success(tasks)
			}
			var b strings.Builder
			for _, t := range tasks {
				fmt.Fprintf(&b, "%d\t%s\t%s\tproject %d\tv%d\n", t.TaskID, t.Name, t.Status, t.ProjectID, t.Version)
			}
			return f.Success(strings.TrimRight(b.String(), "\n"))
		},
	}

	cmd.Flags().StringVarP(&project, "project", "p", "", "filter by parent project id")
	cmd.Flags().StringVar(&status, "status", "active", "filter by status (active|archived|all)")
	return cmd
}

func newTaskArchiveCommand(rootOpts *RootOptions) *cobra.Command {
	var at string

	cmd := &cobra.Command{
		Use:           "archive <task-id>",
		Short:         "Archive a task (appends a new version; history is kept)",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return taskStatusChange(rootOpts, cmd, args[0], at, model.StatusArchived)
		},
	}

	cmd.Flags().StringVar(&at, "at", "", "effective timestamp (RFC 3339, default now)")
	return cmd
}

func newTaskRestoreCommand(rootOpts *RootOptions) *cobra.Command {
	var at string

	cmd := &cobra.Command{
		Use:           "restore <task-id>",
		Short:         "Restore an archived task",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return taskStatusChange(rootOpts, cmd, args[0], at, model.StatusActive)
		},
	}

	cmd.Flags().StringVar(&at, "at", "", "effective timestamp (RFC 3339, default now)")
	return cmd
}

func newTaskMoveCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		at      string
		project string
	)

	cmd := &cobra.Command{
		Use:           "move <task-id>",
		Short:         "Move a task to another project",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseTaskID(args[0])
			if err != nil {
				return err
			}
			projectID, err := parseProjectID(project)
			if err != nil {
				return err
			}
			effectiveAt, err := parseTimeFlag(at)
			if err != nil {
				return WrapExitError(ExitCommandError, "parse --at", err)
			}

			a, err := openApp(rootOpts)
			if err != nil {
				return err
			}
			defer a.Close()

			tv, err := a.service.MoveTask(cmd.Context(), id, projectID, effectiveAt)
			if err != nil {
				return err
			}

			f := formatter(rootOpts, cmd)
			if f.Format == "json" {
				return f.Success(tv)
			}
			return f.Success(fmt.Sprintf("task %d moved to project %d (v%d)", tv.TaskID, tv.ProjectID, tv.Version))
		},
	}

	cmd.Flags().StringVarP(&project, "project", "p", "", "target project id (required)")
	cmd.Flags().StringVar(&at, "at", "", "effective timestamp (RFC 3339, default now)")
	cmd.MarkFlagRequired("project")
	return cmd
}

func taskStatusChange(rootOpts *RootOptions, cmd *cobra.Command, rawID, at string, status model.Status) error {
	id, err := parseTaskID(rawID)
	if err != nil {
		return err
	}
	effectiveAt, err := parseTimeFlag(at)
	if err != nil {
		return WrapExitError(ExitCommandError, "parse --at", err)
	}

	a, err := openApp(rootOpts)
	if err != nil {
		return err
	}
	defer a.Close()

	var tv model.TaskVersion
	if status == model.StatusArchived {
		tv, err = a.service.ArchiveTask(cmd.Context(), id, effectiveAt)
	} else {
		tv, err = a.service.RestoreTask(cmd.Context(), id, effectiveAt)
	}
	if err != nil {
		return err
	}

	f := formatter(rootOpts, cmd)
	if f.Format == "json" {
		return f.Success(tv)
	}
	return f.Success(fmt.Sprintf("task %d is now %s (v%d)", tv.TaskID, tv.Status, tv.Version))
}
