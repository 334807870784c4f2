package commands

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/pbnj-labs/pbnj/internal/cli/config"
	"github.com/pbnj-labs/pbnj/internal/state"
	"github.com/pbnj-labs/pbnj/internal/web"
)

// NewServeCommand creates the serve command.
func NewServeCommand() *cobra.Command {
	var port int
	var watch bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the documentation API over HTTP",
		Long: `Serve the documentation API over HTTP.

The server exposes the current snapshot, its analysis, and the rendered
documents as JSON. With --watch, changes to the extraction file trigger an
automatic rebuild.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := getConfig()
			if cmd.Flags().Changed("port") {
				cfg.Port = port
			}

			eng, err := newEngine(cmd)
			if err != nil {
				return err
			}
			defer func() { _ = eng.Close() }()

			// Build once up front so the API has something to serve; a
			// missing input is fine when a snapshot already exists.
			if _, err := eng.Build(cmd.Context(), false); err != nil {
				if _, serr := eng.Status(); errors.Is(serr, state.ErrNotFound) {
					return err
				}
				config.GetLogger(cmd.Context()).Warn("initial build failed, serving stored snapshot", "error", err)
			}

			srv := web.NewServer(web.Config{
				Engine:    eng,
				Port:      cfg.Port,
				Watch:     watch,
				InputPath: cfg.Input,
				Logger:    config.GetLogger(cmd.Context()),
			})
			return srv.Serve(cmd.Context())
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", config.DefaultPort, "Port to listen on")
	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "Rebuild when the extraction file changes")

	return cmd
}
