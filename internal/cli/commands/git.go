package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pbnj-labs/pbnj/internal/cli/config"
	"github.com/pbnj-labs/pbnj/internal/gitops"
)

// NewGitCommand creates the git command group.
func NewGitCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "git",
		Short: "Version generated documentation with git",
	}

	cmd.AddCommand(newGitInitCommand())
	cmd.AddCommand(newGitCommitCommand())
	cmd.AddCommand(newGitStatusCommand())

	return cmd
}

// gitClient builds a client rooted at the documentation output directory.
func gitClient(cmd *cobra.Command) *gitops.Client {
	return gitops.New(getConfig().OutputDir, config.GetLogger(cmd.Context()))
}

func newGitInitCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Initialize a git repository for the documentation",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := gitClient(cmd).Init(); err != nil {
				return err
			}
			newRenderer(cmd).Success("Documentation repository initialized")
			return nil
		},
	}
}

func newGitCommitCommand() *cobra.Command {
	var message string

	cmd := &cobra.Command{
		Use:   "commit",
		Short: "Commit documentation changes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			r := newRenderer(cmd)

			hash, committed, err := gitClient(cmd).CommitAll(message)
			if err != nil {
				return err
			}
			if !committed {
				r.Println("Nothing to commit, documentation is unchanged.")
				return nil
			}
			r.Success(fmt.Sprintf("Committed documentation (%s)", hash[:8]))
			return nil
		},
	}

	cmd.Flags().StringVarP(&message, "message", "m", "Update documentation", "Commit message")

	return cmd
}

func newGitStatusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show documentation repository status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			r := newRenderer(cmd)

			clean, files, err := gitClient(cmd).Status()
			if err != nil {
				return err
			}
			if clean {
				r.Println("Documentation repository is clean.")
				return nil
			}
			r.Printf("%d changed files:\n", len(files))
			for _, f := range files {
				r.StatusLine(f, "warning", "modified")
			}
			return nil
		},
	}
}
