package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/chronolog/chronolog/internal/model"
)

// NewStartCommand creates the start command.
func NewStartCommand(rootOpts *RootOptions) *cobra.Command {
	var at string

	cmd := &cobra.Command{
		Use:           "start <task-id>",
		Short:         "Start the timer on a task (stops any other running timer)",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseTaskID(args[0])
			if err != nil {
				return err
			}
			startAt, err := parseTimeFlag(at)
			if err != nil {
				return WrapExitError(ExitCommandError, "parse --at", err)
			}

			a, err := openApp(rootOpts)
			if err != nil {
				return err
			}
			defer a.Close()

			result, err := a.service.Start(cmd.Context(), id, startAt)
			if err != nil {
				return err
			}

			f := formatter(rootOpts, cmd)
			if f.Format == "json" {
				return f.Success(result)
			}
			var b strings.Builder
			for _, ev := range result.Stopped {
				fmt.Fprintf(&b, "stopped task %d at %s\n", ev.TaskID, model.FormatTime(ev.At))
			}
			fmt.Fprintf(&b, "started task %d (event %d)", id, result.StartEventID)
			return f.Success(b.String())
		},
	}

	cmd.Flags().StringVar(&at, "at", "", "start timestamp (RFC 3339, default now)")
	return cmd
}

// NewStopCommand creates the stop command.
func NewStopCommand(rootOpts *RootOptions) *cobra.Command {
	var at string

	cmd := &cobra.Command{
		Use:           "stop [task-id]",
		Short:         "Stop the running timer (all running timers if no task is given)",
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			stopAt, err := parseTimeFlag(at)
			if err != nil {
				return WrapExitError(ExitCommandError, "parse --at", err)
			}

			a, err := openApp(rootOpts)
			if err != nil {
				return err
			}
			defer a.Close()

			f := formatter(rootOpts, cmd)

			if len(args) == 1 {
				id, err := parseTaskID(args[0])
				if err != nil {
					return err
				}
				ev, stopped, err := a.service.Stop(cmd.Context(), id, stopAt)
				if err != nil {
					return err
				}
				if !stopped {
					return f.Success(fmt.Sprintf("task %d is not running", id))
				}
				if f.Format == "json" {
					return f.Success(ev)
				}
				return f.Success(fmt.Sprintf("stopped task %d at %s", ev.TaskID, model.FormatTime(ev.At)))
			}

			events, err := a.service.StopAll(cmd.Context(), stopAt)
			if err != nil {
				return err
			}
			if f.Format == "json" {
				return f.Success(events)
			}
			if len(events) == 0 {
				return f.Success("nothing is running")
			}
			var b strings.Builder
			for _, ev := range events {
				fmt.Fprintf(&b, "stopped task %d at %s\n", ev.TaskID, model.FormatTime(ev.At))
			}
			return f.Success(strings.TrimRight(b.String(), "\n"))
		},
	}

	cmd.Flags().StringVar(&at, "at", "", "stop timestamp (RFC 3339, default now)")
	return cmd
}

// NewStatusCommand creates the status command.
func NewStatusCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "status",
		Short:         "Show the running timer, if any",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(rootOpts)
			if err != nil {
				return err
			}
			defer a.Close()

			f := formatter(rootOpts, cmd)

			taskID, running, err := a.service.RunningTask(cmd.Context())
			if err != nil {
				return err
			}
			if !running {
				if f.Format == "json" {
					return f.Success(map[string]any{"running": false})
				}
				return f.Success("nothing is running")
			}

			task, err := a.service.Task(cmd.Context(), taskID)
			if err != nil {
				return err
			}
			intervals, err := a.service.Intervals(cmd.Context(), taskID)
			if err != nil {
				return err
			}
			var current model.Interval
			for _, iv := range intervals {
				if iv.Running() {
					current = iv
				}
			}

			if f.Format == "json" {
				return f.Success(map[string]any{
					"running":  true,
					"task":     task,
					"interval": current,
				})
			}
			elapsed := time.Since(current.StartAt).Truncate(time.Second)
			return f.Success(fmt.Sprintf("task %d %q running since %s (%s)",
				task.TaskID, task.Name, model.FormatTime(current.StartAt), elapsed))
		},
	}

	return cmd
}

// NewLogCommand creates the log command.
func NewLogCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		task    string
		project string
		from    string
		to      string
		limit   int
	)

	cmd := &cobra.Command{
		Use:           "log",
		Short:         "Show tracked intervals, most recent first",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(rootOpts)
			if err != nil {
				return err
			}
			defer a.Close()

			var intervals []model.Interval
			switch {
			case task != "":
				id, err := parseTaskID(task)
				if err != nil {
					return err
				}
				intervals, err = a.service.Intervals(cmd.Context(), id)
				if err != nil {
					return err
				}
			case project != "":
				id, err := parseProjectID(project)
				if err != nil {
					return err
				}
				intervals, err = a.service.ProjectIntervals(cmd.Context(), id)
				if err != nil {
					return err
				}
			case from != "" || to != "":
				fromT, err := parseTimeFlag(from)
				if err != nil {
					return WrapExitError(ExitCommandError, "parse --from", err)
				}
				toT, err := parseTimeFlag(to)
				if err != nil {
					return WrapExitError(ExitCommandError, "parse --to", err)
				}
				if toT.IsZero() {
					toT = time.Now().UTC()
				}
				intervals, err = a.service.IntervalsInPeriod(cmd.Context(), fromT, toT)
				if err != nil {
					return err
				}
			default:
				intervals, err = a.service.RecentIntervals(cmd.Context(), limit)
				if err != nil {
					return err
				}
			}

			f := formatter(rootOpts, cmd)
			if f.Format == "json" {
				return f.Success(intervals)
			}
			var b strings.Builder
			for _, iv := range intervals {
				fmt.Fprintln(&b, formatInterval(iv))
			}
			return f.Success(strings.TrimRight(b.String(), "\n"))
		},
	}

	cmd.Flags().StringVarP(&task, "task", "t", "", "show intervals for one task")
	cmd.Flags().StringVarP(&project, "project", "p", "", "show intervals for all tasks of a project")
	cmd.Flags().StringVar(&from, "from", "", "period start (RFC 3339)")
	cmd.Flags().StringVar(&to, "to", "", "period end (RFC 3339, default now)")
	cmd.Flags().IntVar(&limit, "limit", 10, "maximum intervals without other filters")
	return cmd
}

// NewAddCommand creates the add command for manual entries.
func NewAddCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		from string
		to   string
		note string
	)

	cmd := &cobra.Command{
		Use:           "add <task-id>",
		Short:         "Record a finished interval after the fact",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseTaskID(args[0])
			if err != nil {
				return err
			}
			start, err := parseTimeFlag(from)
			if err != nil || start.IsZero() {
				return WrapExitError(ExitCommandError, "parse --from", err)
			}
			end, err := parseTimeFlag(to)
			if err != nil || end.IsZero() {
				return WrapExitError(ExitCommandError, "parse --to", err)
			}

			a, err := openApp(rootOpts)
			if err != nil {
				return err
			}
			defer a.Close()

			iv, err := a.service.AddManualEntry(cmd.Context(), id, start, end, note)
			if err != nil {
				return err
			}

			f := formatter(rootOpts, cmd)
			if f.Format == "json" {
				return f.Success(iv)
			}
			return f.Success("added " + formatInterval(iv))
		},
	}

	cmd.Flags().StringVar(&from, "from", "", "interval start (RFC 3339, required)")
	cmd.Flags().StringVar(&to, "to", "", "interval end (RFC 3339, required)")
	cmd.Flags().StringVar(&note, "note", "", "optional note for the interval")
	cmd.MarkFlagRequired("from")
	cmd.MarkFlagRequired("to")
	return cmd
}

func formatInterval(iv model.Interval) string {
	var b strings.Builder
	fmt.Fprintf(&b, "task %d\t%s", iv.TaskID, model.FormatTime(iv.StartAt))
	if iv.Running() {
		b.WriteString("\t(running)")
	} else {
		d := time.Duration(*iv.DurationSeconds) * time.Second
		fmt.Fprintf(&b, "\t%s\t%s", model.FormatTime(*iv.EndAt), d)
		if iv.EndReason != "" {
			fmt.Fprintf(&b, "\t[%s]", iv.EndReason)
		}
	}
	if len(iv.Notes) > 0 {
		fmt.Fprintf(&b, "\t%s", strings.Join(iv.Notes, "; "))
	}
	return b.String()
}
