package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"winsome/internal/client/client"
)

// dialCallback is a test seam for the follower-callback connection.
var dialCallback = client.DialCallback

// Register creates an account: "register <user> [tag ...]", password
// prompted without echo.
func (a *App) Register(ctx context.Context, args []string) error {
	if len(args) < 1 {
		printlnFn("usage: register <user> [tag ...]")
		return nil
	}
	pw, err := GetPassword(os.Stdout)
	if err != nil {
		printlnFn("error:", err)
		return err
	}

	cmd := fmt.Sprintf("register %s %s", args[0], pw)
	if len(args) > 1 {
		cmd += " " + strings.Join(args[1:], " ")
	}
	resp, err := a.conn.Do(cmd)
	if err != nil {
		printlnFn("connection error:", err)
		return err
	}
	printlnFn(resp)
	return nil
}

// Login authenticates: "login <user>", password prompted without echo. On
// success it seeds the follower cache from the reply and opens the callback
// subscription for live updates.
func (a *App) Login(ctx context.Context, args []string) error {
	if len(args) != 1 {
		printlnFn("usage: login <user>")
		return nil
	}
	pw, err := GetPassword(os.Stdout)
	if err != nil {
		printlnFn("error:", err)
		return err
	}

	resp, err := a.conn.Do(fmt.Sprintf("login %s %s", args[0], pw))
	if err != nil {
		printlnFn("connection error:", err)
		return err
	}

	lines := strings.Split(resp, "\n")
	printlnFn(lines[0])
	if lines[0] != "ok" {
		return nil
	}

	a.username = strings.ToLower(args[0])
	if len(lines) > 1 {
		a.cache.Seed(strings.Fields(strings.TrimPrefix(lines[1], "followers:")))
	}
	a.subscribe()
	return nil
}

// subscribe opens the callback connection for the logged-in user. Follower
// updates are a convenience; failure to get them never fails the login.
func (a *App) subscribe() {
	cb, err := dialCallback(a.config.CallbackAddr)
	if err != nil {
		printlnFn("follower updates unavailable:", err)
		return
	}
	if err := cb.Subscribe(a.username); err != nil {
		printlnFn("follower updates unavailable:", err)
		cb.Close()
		return
	}
	a.callback = cb
	go cb.Listen(a.cache, func(update string) {
		printlnFn("follower update:", update)
	})
}

// Logout ends the session and tears the callback subscription down.
func (a *App) Logout(ctx context.Context) error {
	resp, err := a.conn.Do("logout")
	if err != nil {
		printlnFn("connection error:", err)
		return err
	}
	printlnFn(resp)
	if resp == "ok" {
		a.username = ""
		a.cache.Seed(nil)
		a.closeCallback()
	}
	return nil
}

// ListFollowers prints the local follower cache; it never asks the server.
func (a *App) ListFollowers(ctx context.Context) error {
	if !a.isLoggedIn() {
		printlnFn("error: you are not logged in")
		return nil
	}
	followers := a.cache.List()
	if len(followers) == 0 {
		printlnFn("you have no followers")
		return nil
	}
	printlnFn(strings.Join(followers, "\n"))
	return nil
}

// Do forwards one raw command line to the server and prints the reply.
func (a *App) Do(ctx context.Context, line string) error {
	resp, err := a.conn.Do(line)
	if err != nil {
		printlnFn("connection error:", err)
		return err
	}
	printlnFn(resp)
	return nil
}
