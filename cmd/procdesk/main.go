// Command procdesk runs document processes and keeps a usage ledger.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/custodia-labs/procdesk/internal/adapters/driving/cli"
	"github.com/custodia-labs/procdesk/internal/app"
)

// version is overridden by ldflags.
var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	cli.SetVersion(version)
	cli.SetBootstrap(func(ctx context.Context, configDir string) (*cli.Services, error) {
		c, err := app.New(ctx, app.Options{
			ConfigDir: configDir,
			Getenv:    os.Getenv,
		})
		if err != nil {
			return nil, err
		}
		return &cli.Services{
			Process:  c.Processes,
			Ledger:   c.Ledger,
			Sessions: c.Sessions,
			Settings: c.SettingsService,
			Close:    c.Close,
		}, nil
	})

	err := cli.Execute(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}
