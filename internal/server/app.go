// Package server initializes and runs the main application server.
// It rebuilds state from the last snapshot, starts the TCP endpoint, the
// follower-callback listener, the reward engine, and the persistence loop,
// and handles graceful shutdown.
package server

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"winsome/internal/logging"
	"winsome/internal/server/config"
	"winsome/internal/server/exchange"
	"winsome/internal/server/notify"
	"winsome/internal/server/persist"
	"winsome/internal/server/protocol"
	"winsome/internal/server/rewards"
	"winsome/internal/server/sessions"
	"winsome/internal/server/store"
)

type App struct {
	config *config.Config
	logger logging.Logger

	store     *store.Store
	handler   *protocol.Handler
	server    *protocol.Server
	listener  *notify.Listener
	engine    *rewards.Engine
	multicast *notify.Multicast
}

func NewApp(c *config.Config) (*App, error) {
	logger := logging.NewDefault()

	s := store.New(store.Limits{
		TitleMax:   c.TitleMaxLen,
		ContentMax: c.ContentMaxLen,
		MaxTags:    c.MaxTags,
	})
	if err := persist.Load(c.SnapshotPath, s); err != nil {
		return nil, fmt.Errorf("snapshot load error: %w", err)
	}

	registry := sessions.NewRegistry(s)
	subscribers := notify.NewRegistry()

	rates := &exchange.Fallback{
		Primary:   exchange.NewRandomOrg(),
		Secondary: exchange.NewLocalRand(),
	}

	handler := protocol.NewHandler(s, registry, subscribers, rates, protocol.Options{
		CurrencyDecimals: c.CurrencyDecimals,
		CurrencySingular: c.CurrencySingular,
		CurrencyPlural:   c.CurrencyPlural,
	}, logger)

	srv := protocol.NewServer(c.EndpointAddr, handler, logger)

	userExists := func(username string) bool {
		_, ok := s.GetUser(username)
		return ok
	}
	listener := notify.NewListener(c.CallbackAddr, subscribers, handler.RegisterUser, userExists, logger)

	multicast, err := notify.NewMulticast(c.MulticastAddr, logger)
	if err != nil {
		return nil, fmt.Errorf("multicast init error: %w", err)
	}

	engine := rewards.NewEngine(s, multicast, rewards.Config{
		Interval:         c.RewardInterval,
		AuthorPercent:    c.AuthorPercent,
		CuratorPercent:   c.CuratorPercent,
		CurrencyDecimals: c.CurrencyDecimals,
		CurrencySingular: c.CurrencySingular,
		CurrencyPlural:   c.CurrencyPlural,
	}, logger)

	return &App{
		config:    c,
		logger:    logger,
		store:     s,
		handler:   handler,
		server:    srv,
		listener:  listener,
		engine:    engine,
		multicast: multicast,
	}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startServer(ctx context.Context, cancelFunc context.CancelFunc) {
	if err := app.server.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) startCallbackListener(ctx context.Context, cancelFunc context.CancelFunc) {
	if err := app.listener.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startServer(ctx, cancelFunc)
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startCallbackListener(ctx, cancelFunc)
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.engine.Run(ctx)
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		persist.Loop(ctx, app.config.SnapshotPath, app.store, app.config.SnapshotInterval, app.logger)
	}()

	wg.Wait()

	if err := app.multicast.Close(); err != nil {
		app.logger.Warn(context.Background(), "multicast close error", "error", err.Error())
	}
	app.logger.Info(context.Background(), "app stopped")
}
