package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"time"

	"homeguard/backend/app/importer"
	"homeguard/backend/global"
	"homeguard/backend/initialize"
)

func main() {
	var (
		configPath  = flag.String("config", "config.yaml", "Path to config file")
		syncTimeout = flag.Duration("sync-timeout", 60*time.Second, "Timeout for the startup sync")
	)
	flag.Parse()

	app, err := initialize.Build(*configPath)
	if err != nil {
		global.Logger.Error().Err(err).Msg("startup failed")
		os.Exit(1)
	}

	// Seed the registry from the legacy list before the first push.
	if app.Cfg.Importer.Enabled {
		w := importer.New(app.Cfg.Importer.Path, app.Registry, app.Toggle, global.Logger)
		if _, err := w.ImportOnce(context.Background()); err != nil && !os.IsNotExist(err) {
			global.Logger.Warn().Err(err).Msg("legacy import failed")
		}
		go func() {
			if err := w.Watch(context.Background()); err != nil && err != context.Canceled {
				global.Logger.Warn().Err(err).Msg("import watcher stopped")
			}
		}()
	}

	// A crash during a previous apply may have left the router out of step
	// with the persisted state. Reconcile before accepting any requests.
	ctx, cancel := context.WithTimeout(context.Background(), *syncTimeout)
	st, err := app.Toggle.Sync(ctx, "startup")
	cancel()
	if err != nil {
		global.Logger.Error().Err(err).Msg("startup sync failed, refusing to serve against unknown remote state")
		os.Exit(1)
	}
	global.Logger.Info().Bool("active", st.Active).Msg("startup sync complete")

	addr := fmt.Sprintf("%s:%d", app.Cfg.Server.Host, app.Cfg.Server.Port)
	global.Logger.Info().Str("addr", addr).Msg("homeguard listening")
	if err := http.ListenAndServe(addr, app.Router); err != nil {
		global.Logger.Error().Err(err).Msg("http server exited")
		os.Exit(1)
	}
}
