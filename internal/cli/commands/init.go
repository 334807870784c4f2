package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/pbnj-labs/pbnj/internal/cli/config"
	"github.com/pbnj-labs/pbnj/internal/gitops"
)

const configTemplate = `# pbnj project configuration
project: %s
input: extraction.json
output_dir: docs
state_path: .pbnj/state.db
port: 8080

# Classification thresholds and rule overrides.
# analysis:
#   fact_fanout_threshold: 2
#   complex_function_threshold: 2
#   disabled_rules: []
#   severity:
#     RQ02: error
`

// NewInitCommand creates the init command.
func NewInitCommand() *cobra.Command {
	var force bool
	var withGit bool

	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Initialize a new documentation project",
		Long: `Initialize a new pbnj documentation project.

This creates:
  - pbnj.yaml configuration file
  - docs/ directory for generated documentation
  - .pbnj/ directory for the state database

Use --git to also initialize a git repository for the generated docs.`,
		Example: `  # Initialize in the current directory
  pbnj init

  # Initialize a new directory with git versioning
  pbnj init my-project --git`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}
			return runInit(cmd, dir, force, withGit)
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite existing configuration")
	cmd.Flags().BoolVar(&withGit, "git", false, "Initialize a git repository for the documentation")

	return cmd
}

func runInit(cmd *cobra.Command, dir string, force, withGit bool) error {
	r := newRenderer(cmd)

	if dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	configPath := filepath.Join(dir, "pbnj.yaml")
	if _, err := os.Stat(configPath); err == nil && !force {
		return fmt.Errorf("pbnj.yaml already exists. Use --force to overwrite")
	}

	project := filepath.Base(absOrClean(dir))
	content := fmt.Sprintf(configTemplate, project)
	if err := os.WriteFile(configPath, []byte(content), 0o600); err != nil {
		return fmt.Errorf("failed to write pbnj.yaml: %w", err)
	}
	r.StatusLine("pbnj.yaml", "success", "")

	for _, sub := range []string{"docs", ".pbnj"} {
		if err := os.MkdirAll(filepath.Join(dir, sub), 0o750); err != nil {
			return fmt.Errorf("failed to create %s: %w", sub, err)
		}
		r.StatusLine(sub+"/", "success", "")
	}

	if withGit {
		client := gitops.New(dir, config.GetLogger(cmd.Context()))
		if client.IsRepo() {
			r.StatusLine("git", "warning", "repository already exists")
		} else {
			if err := client.Init(); err != nil {
				return err
			}
			r.StatusLine("git", "success", "repository initialized")
		}
	}

	r.Println("")
	r.Success("Documentation project initialized!")
	r.Println("")
	r.Println("Next steps:")
	r.Println("  1. Place your extraction JSON at extraction.json")
	r.Println("  2. Run 'pbnj build' to generate documentation")
	r.Println("  3. Run 'pbnj serve' to browse it over HTTP")

	return nil
}

func absOrClean(dir string) string {
	if abs, err := filepath.Abs(dir); err == nil {
		return abs
	}
	return filepath.Clean(dir)
}
