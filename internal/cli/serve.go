package cli

import (
	"context"

	"github.com/autonomax/registryx/internal/registry"
	"github.com/autonomax/registryx/internal/server"

	flag "github.com/spf13/pflag"
	"go.uber.org/zap"
)

// ServeCmd returns the serve command.
func ServeCmd(cfg *registry.Config, reg *registry.Registry, logger *zap.Logger) *Command {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	fs.String("addr", "", "Listen address (default: listen_addr from config)")

	return &Command{
		Flags: fs,
		Usage: "serve [flags]",
		Short: "Serve the registry over HTTP",
		Long: `Serve the registry HTTP API under /registryx until interrupted.
In-flight requests get a grace period on shutdown.`,
		Exec: func(ctx context.Context, _ *IO, _ []string) error {
			addr, _ := fs.GetString("addr")
			if addr == "" {
				addr = cfg.ListenAddr
			}

			return server.New(reg, logger).ListenAndServe(ctx, addr)
		},
	}
}
