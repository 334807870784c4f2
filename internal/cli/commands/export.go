package commands

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pbnj-labs/pbnj/internal/analysis"
	"github.com/pbnj-labs/pbnj/internal/cli/output"
	"github.com/pbnj-labs/pbnj/internal/engine"
	"github.com/pbnj-labs/pbnj/internal/model"
)

// NewExportCommand creates the export command.
func NewExportCommand() *cobra.Command {
	var format string
	var outPath string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the documentation snapshot",
		Long: `Export the stored snapshot as a single artifact.

Formats:
  json      model and analysis as one JSON object
  markdown  all documents concatenated into one markdown file`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			eng, err := newEngine(cmd)
			if err != nil {
				return err
			}
			defer func() { _ = eng.Close() }()

			m, a, err := eng.Current()
			if err != nil {
				return err
			}

			var content []byte
			switch format {
			case "json":
				content, err = exportJSON(m, a)
			case "md", "markdown":
				content, err = exportMarkdown(eng)
			default:
				return fmt.Errorf("unknown export format: %s", format)
			}
			if err != nil {
				return err
			}

			if outPath == "" || outPath == "-" {
				_, err = cmd.OutOrStdout().Write(content)
				return err
			}
			if err := os.WriteFile(outPath, content, 0o600); err != nil {
				return fmt.Errorf("write export: %w", err)
			}
			newRenderer(cmd).Success(fmt.Sprintf("Exported %s (%d bytes)", outPath, len(content)))
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "json", "Export format (json|markdown)")
	cmd.Flags().StringVarP(&outPath, "out", "O", "", "Output file (default: stdout)")

	return cmd
}

func exportJSON(m *model.Model, a *analysis.Analysis) ([]byte, error) {
	var sb strings.Builder
	r := output.NewRenderer(&sb, &sb, output.ModeJSON)
	if err := r.JSON(map[string]any{"model": m, "analysis": a}); err != nil {
		return nil, err
	}
	return []byte(sb.String()), nil
}

func exportMarkdown(eng *engine.Engine) ([]byte, error) {
	snap, err := eng.Status()
	if err != nil {
		return nil, err
	}
	docs, err := eng.Store().ListDocuments(snap.Project)
	if err != nil {
		return nil, err
	}

	var sb strings.Builder
	for i, d := range docs {
		if i > 0 {
			sb.WriteString("\n---\n\n")
		}
		sb.WriteString(d.Content)
	}
	return []byte(sb.String()), nil
}
