// Package app composes the conversation core: config, logging, bus,
// connectivity, notifications, gateway, directory cache, assembler and
// session store.
package app

import (
	"os"

	"github.com/emipmttt/sellia-challenge/internal/bus"
	"github.com/emipmttt/sellia-challenge/internal/config"
	"github.com/emipmttt/sellia-challenge/internal/connectivity"
	"github.com/emipmttt/sellia-challenge/internal/conversation"
	"github.com/emipmttt/sellia-challenge/internal/convstore"
	"github.com/emipmttt/sellia-challenge/internal/directory"
	"github.com/emipmttt/sellia-challenge/internal/gateway"
	"github.com/emipmttt/sellia-challenge/internal/logging"
	"github.com/emipmttt/sellia-challenge/internal/notify"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Params holds startup options passed to the fx module.
type Params struct {
	ConfigPath string // empty = defaults, no file read
}

// Module returns the fx module composing all providers.
func Module(p Params) fx.Option {
	return fx.Module("app",
		fx.Supply(p),
		fx.Provide(
			provideConfig,
			provideLogger,
			provideBus,
			provideConnectivity,
			provideNotify,
			provideGateway,
			provideDirectory,
			provideAssembler,
			provideStore,
		),
	)
}

func provideConfig(p Params) (*config.Config, error) {
	if p.ConfigPath == "" {
		return config.Default(), nil
	}
	cfg, err := config.Load(p.ConfigPath)
	if err != nil {
		if os.IsNotExist(err) {
			// First run: seed the file with defaults so the next run
			// has a real config to edit.
			cfg = config.Default()
			if saveErr := config.Save(p.ConfigPath, cfg); saveErr != nil {
				return nil, saveErr
			}
			return cfg, nil
		}
		return nil, err
	}
	return cfg, nil
}

func provideLogger(cfg *config.Config) (*zap.Logger, error) {
	return logging.New(cfg.LogPath)
}

func provideBus() *bus.Bus {
	return bus.New()
}

func provideConnectivity(b *bus.Bus) *connectivity.Monitor {
	return connectivity.NewMonitor(b)
}

func provideNotify(cfg *config.Config, b *bus.Bus) *notify.Center {
	return notify.NewCenter(cfg.NotifyDismiss(), b)
}

func provideGateway(cfg *config.Config, logger *zap.Logger) *gateway.Client {
	return gateway.New(cfg.BaseURL, logger)
}

func provideDirectory(gw *gateway.Client, cfg *config.Config, logger *zap.Logger) *directory.Cache {
	return directory.New(gw, cfg.CacheTTL(), logger)
}

func provideAssembler(dir *directory.Cache, gw *gateway.Client, mon *connectivity.Monitor, logger *zap.Logger) *conversation.Assembler {
	return conversation.NewAssembler(dir, gw, mon, logger)
}

func provideStore(a *conversation.Assembler, n *notify.Center, b *bus.Bus, logger *zap.Logger, cfg *config.Config) *convstore.Store {
	return convstore.New(a, n, b, logger, cfg.LoadConcurrency)
}
