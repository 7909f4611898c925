package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/chronolog/chronolog/internal/model"
)

// NewRepairCommand creates the repair command.
func NewRepairCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "repair",
		Short: "Detect event-log anomalies and append correction rows",
		Long: `repair scans every task's event log for anomalies (duplicate starts,
orphan stops, intervals running past the configured maximum) and
appends one synthetic correction row per anomaly. History is never
rewritten; all corrections from one run share a repair token.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(rootOpts)
			if err != nil {
				return err
			}
			defer a.Close()

			corrections, err := a.service.Repair(cmd.Context())
			if err != nil {
				return err
			}

			f := formatter(rootOpts, cmd)
			if f.Format == "json" {
				return f.Success(corrections)
			}
			if len(corrections) == 0 {
				return f.Success("no anomalies found")
			}
			var b strings.Builder
			for _, c := range corrections {
				fmt.Fprintf(&b, "%s\ttask %d\tevent %d\tat %s\ttoken %s\n",
					c.Anomaly.Kind, c.Anomaly.TaskID, c.EventID,
					model.FormatTime(c.Anomaly.At), c.RepairToken)
			}
			return f.Success(strings.TrimRight(b.String(), "\n"))
		},
	}

	return cmd
}
