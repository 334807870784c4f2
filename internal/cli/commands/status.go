package commands

import (
	"errors"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/pbnj-labs/pbnj/internal/cli/output"
	"github.com/pbnj-labs/pbnj/internal/state"
)

// NewStatusCommand creates the status command.
func NewStatusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the current documentation snapshot",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			eng, err := newEngine(cmd)
			if err != nil {
				return err
			}
			defer func() { _ = eng.Close() }()

			r := newRenderer(cmd)

			snap, err := eng.Status()
			if errors.Is(err, state.ErrNotFound) {
				r.Println("No documentation built yet. Run 'pbnj build' first.")
				return nil
			}
			if err != nil {
				return err
			}

			if r.Mode() == output.ModeJSON {
				return r.JSON(snap)
			}

			r.Table(
				[]string{"Field", "Value"},
				[][]string{
					{"Project", snap.Project},
					{"Source", snap.Model.SourceName},
					{"Build ID", snap.BuildID},
					{"Fingerprint", snap.Fingerprint},
					{"Last built", snap.LastBuiltAt.Format("2006-01-02 15:04:05 MST")},
					{"Tables", strconv.Itoa(len(snap.Model.Tables))},
					{"Measures", strconv.Itoa(len(snap.Model.Measures))},
					{"Relationships", strconv.Itoa(len(snap.Model.Relationships))},
					{"Transformations", strconv.Itoa(len(snap.Model.Queries))},
				},
			)
			return nil
		},
	}
}
