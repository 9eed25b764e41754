package cli

import (
	"bufio"
	"context"
	"os"

	"winsome/internal/client/client"
	"winsome/internal/client/config"
)

type App struct {
	config   *config.Config
	conn     *client.Conn
	cache    *client.Cache
	callback *client.Callback
	username string
}

func NewApp(c *config.Config) (*App, error) {
	conn, err := client.Dial(c.ServerAddr)
	if err != nil {
		return nil, err
	}
	return &App{config: c, conn: conn, cache: client.NewCache()}, nil
}

func (a *App) Run(ctx context.Context) {
	defer a.conn.Close()
	defer a.closeCallback()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	go func() {
		_ = client.ListenRewards(ctx, a.config.MulticastAddr, func(msg string) {
			printlnFn("reward distributed:", msg)
		})
	}()

	scanner := bufio.NewScanner(os.Stdin)
	runREPL(ctx, a, a.status, scanner)
}

func (a *App) isLoggedIn() bool {
	return a.username != ""
}

func (a *App) status() string {
	if a.username == "" {
		return "guest"
	}
	return a.username
}

func (a *App) closeCallback() {
	if a.callback != nil {
		a.callback.Close()
		a.callback = nil
	}
}
