package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/chronolog/chronolog/internal/model"
)

// NewProjectCommand creates the project command group.
func NewProjectCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "project",
		Short: "Manage projects",
	}

	cmd.AddCommand(newProjectCreateCommand(rootOpts))
	cmd.AddCommand(newProjectRenameCommand(rootOpts))
	cmd.AddCommand(newProjectListCommand(rootOpts))
	cmd.AddCommand(newProjectArchiveCommand(rootOpts))
	cmd.AddCommand(newProjectRestoreCommand(rootOpts))
	cmd.AddCommand(newProjectHistoryCommand(rootOpts))

	return cmd
}

func newProjectCreateCommand(rootOpts *RootOptions) *cobra.Command {
	var at string

	cmd := &cobra.Command{
		Use:           "create <name>",
		Short:         "Create a project",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			effectiveAt, err := parseTimeFlag(at)
			if err != nil {
				return WrapExitError(ExitCommandError, "parse --at", err)
			}

			a, err := openApp(rootOpts)
			if err != nil {
				return err
			}
			defer a.Close()

			pv, err := a.service.CreateProject(cmd.Context(), args[0], effectiveAt)
			if err != nil {
				return err
			}

			f := formatter(rootOpts, cmd)
			if f.Format == "json" {
				return f.Success(pv)
			}
			return f.Success(fmt.Sprintf("created project %d %q", pv.ProjectID, pv.Name))
		},
	}

	cmd.Flags().StringVar(&at, "at", "", "effective timestamp (RFC 3339, default now)")
	return cmd
}

func newProjectRenameCommand(rootOpts *RootOptions) *cobra.Command {
	var at string

	cmd := &cobra.Command{
		Use:           "rename <project-id> <name>",
		Short:         "Rename a project (appends a new version)",
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseProjectID(args[0])
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

			pv, err := a.service.RenameProject(cmd.Context(), id, args[1], effectiveAt)
			if err != nil {
				return err
			}

			f := formatter(rootOpts, cmd)
			if f.Format == "json" {
				return f.Success(pv)
			}
			return f.Success(fmt.Sprintf("project %d renamed to %q (v%d)", pv.ProjectID, pv.Name, pv.Version))
		},
	}

	cmd.Flags().StringVar(&at, "at", "", "effective timestamp (RFC 3339, default now)")
	return cmd
}

func newProjectListCommand(rootOpts *RootOptions) *cobra.Command {
	var status string

	cmd := &cobra.Command{
		Use:           "list",
		Short:         "List current projects",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			filter, err := parseStatusFlag(status)
			if err != nil {
				return WrapExitError(ExitCommandError, "parse --status", err)
			}

			a, err := openApp(rootOpts)
			if err != nil {
				return err
			}
			defer a.Close()

			projects, err := a.service.Projects(cmd.Context(), filter)
			if err != nil {
				return err
			}

			f := formatter(rootOpts, cmd)
			if f.Format == "json" {
				return f.Success(projects)
			}
			var b strings.Builder
			for _, p := range projects {
				fmt.Fprintf(&b, "%d\t%s\t%s\tv%d\n", p.ProjectID, p.Name, p.Status, p.Version)
			}
			return f.Success(strings.TrimRight(b.String(), "\n"))
		},
	}

	cmd.Flags().StringVar(&status, "status", "active", "filter by status (active|archived|all)")
	return cmd
}

func newProjectArchiveCommand(rootOpts *RootOptions) *cobra.Command {
	var at string

	cmd := &cobra.Command{
		Use:           "archive <project-id>",
		Short:         "Archive a project (appends a new version; history is kept)",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return projectStatusChange(rootOpts, cmd, args[0], at, model.StatusArchived)
		},
	}

	cmd.Flags().StringVar(&at, "at", "", "effective timestamp (RFC 3339, default now)")
	return cmd
}

func newProjectRestoreCommand(rootOpts *RootOptions) *cobra.Command {
	var at string

	cmd := &cobra.Command{
		Use:           "restore <project-id>",
		Short:         "Restore an archived project",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return projectStatusChange(rootOpts, cmd, args[0], at, model.StatusActive)
		},
	}

	cmd.Flags().StringVar(&at, "at", "", "effective timestamp (RFC 3339, default now)")
	return cmd
}

func newProjectHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "history <project-id>",
		Short:         "Show every version of a project, oldest first",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseProjectID(args[0])
			if err != nil {
				return err
			}

			a, err := openApp(rootOpts)
			if err != nil {
				return err
			}
			defer a.Close()

			history, err := a.service.ProjectHistory(cmd.Context(), id)
			if err != nil {
				return err
			}

			f := formatter(rootOpts, cmd)
			if f.Format == "json" {
				return f.Success(history)
			}
			var b strings.Builder
			for _, p := range history {
				fmt.Fprintf(&b, "v%d\t%s\t%s\t%s\n", p.Version, p.Name, p.Status, model.FormatTime(p.EffectiveAt))
			}
			return f.Success(strings.TrimRight(b.String(), "\n"))
		},
	}

	return cmd
}

func projectStatusChange(rootOpts *RootOptions, cmd *cobra.Command, rawID, at string, status model.Status) error {
	id, err := parseProjectID(rawID)
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

	var pv model.ProjectVersion
	if status == model.StatusArchived {
		pv, err = a.service.ArchiveProject(cmd.Context(), id, effectiveAt)
	} else {
		pv, err = a.service.RestoreProject(cmd.Context(), id, effectiveAt)
	}
	if err != nil {
		return err
	}

	f := formatter(rootOpts, cmd)
	if f.Format == "json" {
		return f.Success(pv)
	}
	return f.Success(fmt.Sprintf("project %d is now %s (v%d)", pv.ProjectID, pv.Status, pv.Version))
}

func parseProjectID(s string) (model.ProjectID, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, WrapExitError(ExitCommandError, fmt.Sprintf("invalid project id %q", s), err)
	}
	return model.ProjectID(id), nil
}

func parseTaskID(s string) (model.TaskID, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, WrapExitError(ExitCommandError, fmt.Sprintf("invalid task id %q", s), err)
	}
	return model.TaskID(id), nil
}

func parseStatusFlag(s string) (model.Status, error) {
	switch s {
	case "all", "":
		return "", nil
	case string(model.StatusActive):
		return model.StatusActive, nil
	case string(model.StatusArchived):
		return model.StatusArchived, nil
	}
	return "", fmt.Errorf("invalid status %q (want active, archived, or all)", s)
}

func formatter(rootOpts *RootOptions, cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:  rootOpts.Format,
		Writer:  cmd.OutOrStdout(),
		Verbose: rootOpts.Verbose,
	}
}
