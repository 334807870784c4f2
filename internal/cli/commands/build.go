package commands

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/pbnj-labs/pbnj/internal/cli/output"
	"github.com/pbnj-labs/pbnj/internal/engine"
)

// NewBuildCommand creates the build command.
func NewBuildCommand() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Generate documentation from an extraction file",
		Long: `Generate markdown documentation from an extraction JSON file.

The extraction is normalized, analyzed, rendered into documents, and stored
as the project snapshot. An unchanged source skips the build unless --force
is given.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			eng, err := newEngine(cmd)
			if err != nil {
				return err
			}
			defer func() { _ = eng.Close() }()

			res, err := eng.Build(cmd.Context(), force)
			if err != nil {
				return err
			}
			return printBuildResult(newRenderer(cmd), res)
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Rebuild even if the source is unchanged")

	return cmd
}

func printBuildResult(r *output.Renderer, res *engine.BuildResult) error {
	if r.Mode() == output.ModeJSON {
		return r.JSON(res)
	}

	if res.Skipped {
		r.Printf("Source unchanged (%s), documentation is up to date.\n", res.Fingerprint)
		return nil
	}

	for _, f := range res.Failures {
		r.Warning(f.String())
	}

	r.Table(
		[]string{"Metric", "Count"},
		[][]string{
			{"Tables", strconv.Itoa(len(res.Model.Tables))},
			{"Columns", strconv.Itoa(res.Model.ColumnCount())},
			{"Measures", strconv.Itoa(len(res.Model.Measures))},
			{"Relationships", strconv.Itoa(len(res.Model.Relationships))},
			{"Transformations", strconv.Itoa(len(res.Model.Queries))},
			{"Findings", strconv.Itoa(len(res.Analysis.Findings))},
		},
	)

	for _, doc := range res.Documents.Documents {
		status := "success"
		detail := fmt.Sprintf("%d bytes", len(doc.Content))
		if doc.FallbackUsed {
			status = "warning"
			detail += ", default template used"
		}
		r.StatusLine(string(doc.Type)+".md", status, detail)
	}

	r.Println("")
	r.Success(fmt.Sprintf("Documentation generated for %s (%s)", res.Project, res.Fingerprint))
	return nil
}
