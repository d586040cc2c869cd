package commands

import (
	"errors"
	"io"
	"log/slog"

	"github.com/roasbeef/resumo/internal/build"
	"github.com/roasbeef/resumo/internal/cache"
	"github.com/roasbeef/resumo/internal/config"
	"github.com/roasbeef/resumo/internal/engine"
	"github.com/roasbeef/resumo/internal/gate"
	"github.com/roasbeef/resumo/internal/history"
	"github.com/roasbeef/resumo/internal/linguistic"
	"github.com/roasbeef/resumo/internal/model"
	"github.com/roasbeef/resumo/internal/web"
)

// app is a fully wired engine plus the resources it owns.
type app struct {
	cfg     config.Config
	logging *build.Logging
	log     *slog.Logger

	engine  *engine.Engine
	gate    *gate.Gate
	history *history.Store
}

// newApp builds every component from cfg. Logs go to console and, when a
// log directory is configured, to the rotating log file.
func newApp(cfg config.Config, console io.Writer) (*app, error) {
	logging, err := build.NewLogging(build.LogConfig{
		Level:   cfg.Log.Level,
		Dir:     cfg.Log.Dir,
		Console: console,
	})
	if err != nil {
		return nil, err
	}
	log := logging.Logger

	a := &app{
		cfg:     cfg,
		logging: logging,
		log:     log,
		gate:    gate.New(gateConfig(cfg)),
	}

	loader, err := model.NewLoader(backendConfig(cfg))
	if err != nil {
		a.Close()
		return nil, err
	}
	handle := model.NewHandle(modelConfig(cfg), loader, log)

	analyzer, err := linguistic.NewAnalyzer(cfg.Summarization.Language)
	if err != nil {
		a.Close()
		return nil, err
	}

	// A nil *history.Store must not reach the engine as a non-nil
	// Recorder.
	var recorder engine.Recorder
	if cfg.History.Enabled {
		a.history, err = history.Open(cfg.History.DBPath, log)
		if err != nil {
			a.Close()
			return nil, err
		}
		recorder = a.history
	}

	a.engine = engine.New(
		engineConfig(cfg), cache.New(cacheConfig(cfg)), handle,
		analyzer, recorder, log,
	)

	log.Debug("Engine ready", "backend", cfg.Model.Backend,
		"model", cfg.Model.Name, "language", cfg.Summarization.Language,
		"history", cfg.History.Enabled)

	return a, nil
}

// webHistory returns the history for the web server, or a nil interface
// when history is disabled.
func (a *app) webHistory() web.History {
	if a.history == nil {
		return nil
	}

	return a.history
}

// Close unloads the model and releases the history database and log file.
func (a *app) Close() error {
	var errs []error
	if a.engine != nil {
		errs = append(errs, a.engine.UnloadModel())
	}
	if a.history != nil {
		errs = append(errs, a.history.Close())
	}
	errs = append(errs, a.logging.Close())

	return errors.Join(errs...)
}

func engineConfig(cfg config.Config) engine.Config {
	c := engine.DefaultConfig()
	c.AbstractiveThreshold = cfg.Summarization.AbstractiveThreshold
	c.ExtractiveThreshold = cfg.Summarization.ExtractiveThreshold
	c.TieBreak = engine.Method(cfg.Summarization.TieBreak)
	c.RankWithStems = cfg.Summarization.RankWithStems

	return c
}

func gateConfig(cfg config.Config) gate.Config {
	return gate.Config{
		MaxTextLength:    cfg.Summarization.MaxTextLength,
		DefaultMaxLength: cfg.Summarization.DefaultMaxLength,
		DefaultMinLength: cfg.Summarization.DefaultMinLength,
	}
}

func cacheConfig(cfg config.Config) cache.Config {
	c := cache.DefaultConfig()
	c.MaxSize = cfg.Cache.MaxSize
	c.TTL = cfg.Cache.TTL

	return c
}

func modelConfig(cfg config.Config) model.Config {
	return model.Config{
		ModelIdentifier: cfg.Model.Backend + "/" + cfg.Model.Name,
		MaxInputLength:  cfg.Model.MaxInputLength,
	}
}

func backendConfig(cfg config.Config) model.BackendConfig {
	return model.BackendConfig{
		Backend:       cfg.Model.Backend,
		Name:          cfg.Model.Name,
		BaseURL:       cfg.Model.BaseURL,
		APIKey:        cfg.Model.APIKey,
		TokenizerFile: cfg.Model.TokenizerFile,
	}
}

func webConfig(cfg config.Config) *web.Config {
	return &web.Config{
		Addr:                  cfg.Server.Addr,
		RequestTimeout:        cfg.Server.RequestTimeout,
		MaxConcurrentRequests: cfg.Server.MaxConcurrentRequests,
		MaxTextLength:         cfg.Summarization.MaxTextLength,
		Version:               build.Version(),
	}
}
