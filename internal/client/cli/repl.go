package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	Register(ctx context.Context, args []string) error
	Login(ctx context.Context, args []string) error
	Logout(ctx context.Context) error
	ListFollowers(ctx context.Context) error
	Do(ctx context.Context, line string) error
}

// runREPL starts a simple read–eval–print loop for the winsome CLI.
//
// It reads a line from the provided scanner and dispatches on the first
// token. Commands the client resolves itself (register, login, logout,
// listfollowers) have their own handlers; every other non-empty line is
// forwarded to the server verbatim and the reply printed. The loop exits on
// scanner EOF or when the user types "exit" or "quit".
//
// Prompt & Commands
//
// The prompt shows the current status (from statusFn) and accepts commands:
//
//	Not logged in:
//	  - help             — show available commands
//	  - register <user> [tag ...]   — create an account (password prompted)
//	  - login <user>     — authenticate (password prompted)
//	  - exit | quit      — leave the program
//
//	Logged in:
//	  - help             — show available commands
//	  - listfollowers    — list followers from the local cache
//	  - logout           — log out
//	  - exit | quit      — leave the program
//	  - anything else    — sent to the server as-is (follow, post, blog,
//	    showfeed, rate, comment, rewin, wallet, ...)
//
// Any errors returned by command handlers are ignored here; handlers should
// report their own errors. This keeps the REPL loop resilient and focused on I/O.
func runREPL(ctx context.Context, a execIface, statusFn func() string, scanner *bufio.Scanner) {
	for {
		printlnFn(fmt.Sprintf("ws> %s > ", statusFn()))
		if !scanner.Scan() {
			return
		}
		line := scanner.Text()
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd := strings.ToLower(parts[0])

		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn("Available commands: listusers, listfollowers, listfollowing, follow, unfollow, post, blog, showfeed, showpost, rate, comment, rewin, delete, wallet, walletbtc, logout, exit")
			} else {
				printlnFn("Available commands: register, login, exit")
			}

		case "register":
			_ = a.Register(ctx, parts[1:])

		case "login":
			_ = a.Login(ctx, parts[1:])

		case "logout":
			_ = a.Logout(ctx)

		case "listfollowers":
			_ = a.ListFollowers(ctx)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			_ = a.Do(ctx, line)
		}
	}
}
