package commands

import (
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"tableflip.dev/marklet/pkg/app"
	"tableflip.dev/marklet/pkg/engine"
	"tableflip.dev/marklet/pkg/engine/rodtab"
	"tableflip.dev/marklet/pkg/records"
	"tableflip.dev/marklet/pkg/settings"
	"tableflip.dev/marklet/pkg/store"
)

// env is everything a verb needs, built from the loaded configuration.
type env struct {
	Config      store.Config
	Persistence store.Persistence
	Service     *app.Service

	tabs *rodtab.Source
}

func loadEnv() (*env, error) {
	cfg, err := store.LoadConfig()
	if err != nil {
		return nil, err
	}
	p, err := store.Load(cfg)
	if err != nil {
		return nil, err
	}

	log := logger.Named("marklet")
	ss := settings.New(p)
	tabs := rodtab.New(rodtab.Config{
		DebuggerURL: viper.GetString("browser.debuggerURL"),
		Bin:         viper.GetString("browser.bin"),
		Headless:    viper.GetBool("browser.headless"),
	}, log.Named("rod"))

	return &env{
		Config:      cfg,
		Persistence: p,
		tabs:        tabs,
		Service: &app.Service{
			Records:  records.New(p, ss, records.WithLogger(log.Named("records"))),
			Settings: ss,
			Engine:   engine.New(tabs, engine.WithLogger(log.Named("engine"))),
			Surfaces: app.CommandSurfaces{
				Launcher: viper.GetString("surfaces.launcher"),
				Options:  viper.GetString("surfaces.options"),
			},
			Log: log,
		},
	}, nil
}

// Close releases the browser connection, if one was made.
func (e *env) Close() {
	if err := e.tabs.Close(); err != nil {
		logger.Debug("closing browser connection", zap.Error(err))
	}
}
