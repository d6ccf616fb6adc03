package app

import (
	"context"

	"github.com/yuimaru-ship/storefront/config"
	"github.com/yuimaru-ship/storefront/internal/server"
)

// Serve opens the session store and runs the HTTP server until ctx is
// cancelled or the process receives SIGINT or SIGTERM.
func (a *Application) Serve(ctx context.Context) error {
	release, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	defer release()

	return server.Run(ctx, ":"+config.AppPort(), a.Handler())
}
