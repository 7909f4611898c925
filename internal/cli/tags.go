package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// NewTagCommand creates the tag command group.
func NewTagCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tag",
		Short: "Manage task tags",
	}

	cmd.AddCommand(newTagAddCommand(rootOpts))
	cmd.AddCommand(newTagRemoveCommand(rootOpts))
	cmd.AddCommand(newTagListCommand(rootOpts))

	return cmd
}

func newTagAddCommand(rootOpts *RootOptions) *cobra.Command {
	var at string

	cmd := &cobra.Command{
		Use:           "add <task-id> <name>",
		Short:         "Tag a task",
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseTaskID(args[0])
			if err != nil {
				return err
			}
			eventAt, err := parseTimeFlag(at)
			if err != nil {
				return WrapExitError(ExitCommandError, "parse --at", err)
			}

			a, err := openApp(rootOpts)
			if err != nil {
				return err
			}
			defer a.Close()

			tag, err := a.service.Tag(cmd.Context(), id, args[1], eventAt)
			if err != nil {
				return err
			}

			f := formatter(rootOpts, cmd)
			if f.Format == "json" {
				return f.Success(tag)
			}
			return f.Success(fmt.Sprintf("tagged task %d with %q", id, tag.Name))
		},
	}

	cmd.Flags().StringVar(&at, "at", "", "event timestamp (RFC 3339, default now)")
	return cmd
}

func newTagRemoveCommand(rootOpts *RootOptions) *cobra.Command {
	var at string

	cmd := &cobra.Command{
		Use:           "rm <task-id> <name>",
		Short:         "Remove a tag from a task",
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseTaskID(args[0])
			if err != nil {
				return err
			}
			eventAt, err := parseTimeFlag(at)
			if err != nil {
				return WrapExitError(ExitCommandError, "parse --at", err)
			}

			a, err := openApp(rootOpts)
			if err != nil {
				return err
			}
			defer a.Close()

			tag, err := a.service.Untag(cmd.Context(), id, args[1], eventAt)
			if err != nil {
				return err
			}

			f := formatter(rootOpts, cmd)
			if f.Format == "json" {
				return f.Success(tag)
			}
			return f.Success(fmt.Sprintf("removed tag %q from task %d", tag.Name, id))
		},
	}

	cmd.Flags().StringVar(&at, "at", "", "event timestamp (RFC 3339, default now)")
	return cmd
}

func newTagListCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "list <task-id>",
		Short:         "List the current tags of a task",
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

			tags, err := a.service.CurrentTags(cmd.Context(), id)
			if err != nil {
				return err
			}

			f := formatter(rootOpts, cmd)
			if f.Format == "json" {
				return f.Success(tags)
			}
			names := make([]string, 0, len(tags))
			for _, t := range tags {
				names = append(names, t.Name)
			}
			return f.Success(strings.Join(names, "\n"))
		},
	}

	return cmd
}
