// Package protocol implements the request/response engine: verb parsing,
// dispatch against the store and the session registry, and the fixed
// user-facing response strings. The TCP accept loop in server.go feeds it
// one framed request at a time.
package protocol

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"winsome/internal/auth"
	"winsome/internal/logging"
	"winsome/internal/server/exchange"
	"winsome/internal/server/models"
	"winsome/internal/server/rewards"
	"winsome/internal/server/sessions"
	"winsome/internal/server/store"
)

// FollowerNotifier pushes a "+user"/"-user" frame to the target's
// subscriber after a successful follow/unfollow.
type FollowerNotifier interface {
	NotifyFollower(username, msg string)
}

// Options carries the display settings the handler needs.
type Options struct {
	CurrencyDecimals int
	CurrencySingular string
	CurrencyPlural   string
}

// Handler turns one request line into one response string. It is stateless
// apart from the injected collaborators and safe for concurrent use by all
// connection goroutines.
type Handler struct {
	store    *store.Store
	registry *sessions.Registry
	notifier FollowerNotifier
	rates    exchange.RateSource
	opts     Options
	logger   logging.Logger
}

func NewHandler(s *store.Store, r *sessions.Registry, n FollowerNotifier,
	rates exchange.RateSource, opts Options, logger logging.Logger) *Handler {
	return &Handler{
		store:    s,
		registry: r,
		notifier: n,
		rates:    rates,
		opts:     opts,
		logger:   logger.With("module", "protocol"),
	}
}

// sessionVerbs are the verbs that require an active session.
var sessionVerbs = map[string]struct{}{
	"logout": {}, "listusers": {}, "listfollowing": {}, "follow": {},
	"unfollow": {}, "post": {}, "blog": {}, "rewin": {}, "rate": {},
	"showfeed": {}, "showpost": {}, "comment": {}, "delete": {},
	"wallet": {}, "walletbtc": {},
}

// Handle dispatches one raw request received on connID and returns the
// response to frame back. Business failures come back as fixed strings;
// only transport errors (handled by the caller) end the connection.
func (h *Handler) Handle(ctx context.Context, connID, raw string) string {
	fields := strings.Fields(raw)
	if len(fields) == 0 {
		return msgUnknownCommand
	}
	verb := strings.ToLower(fields[0])
	args := fields[1:]

	switch verb {
	case "login":
		if len(args) != 2 {
			return "usage: login <user> <pass>"
		}
		return h.login(connID, args[0], args[1])
	case "register":
		if len(args) < 2 {
			return "usage: register <user> <pass> [tag ...]"
		}
		return h.RegisterUser(args[0], args[1], args[2:])
	}

	if _, known := sessionVerbs[verb]; !known {
		return msgUnknownCommand
	}
	username, ok := h.registry.Current(connID)
	if !ok {
		return msgNotLoggedIn
	}

	switch verb {
	case "logout":
		if err := h.registry.Logout(connID, username); err != nil {
			return translate(err)
		}
		return msgOK

	case "listusers":
		return h.listUsers(username)

	case "listfollowing":
		names := h.store.Following(username)
		if len(names) == 0 {
			return msgNotFollowing
		}
		return strings.Join(names, "\n")

	case "follow":
		if len(args) != 1 {
			return "usage: follow <user>"
		}
		target := strings.ToLower(args[0])
		if err := h.store.Follow(username, target); err != nil {
			return translate(err)
		}
		h.notifier.NotifyFollower(target, "+"+username)
		return msgOK

	case "unfollow":
		if len(args) != 1 {
			return "usage: unfollow <user>"
		}
		target := strings.ToLower(args[0])
		if err := h.store.Unfollow(username, target); err != nil {
			return translate(err)
		}
		h.notifier.NotifyFollower(target, "-"+username)
		return msgOK

	case "post":
		rest := strings.TrimSpace(strings.TrimPrefix(strings.TrimLeft(raw, " \t"), fields[0]))
		title, content, err := parsePostArgs(rest)
		if err != nil {
			return `usage: post "<title>" ["<content>"]`
		}
		id, err := h.store.CreatePost(username, title, content)
		if err != nil {
			return translate(err)
		}
		return fmt.Sprintf("ok post %d", id)

	case "blog":
		return formatPosts(h.store.Blog(username), msgEmptyBlog)

	case "showfeed":
		return formatPosts(h.store.Feed(username), msgEmptyFeed)

	case "showpost":
		id, ok := parseID(args)
		if !ok {
			return "usage: showpost <postId>"
		}
		p, found := h.store.GetPost(id)
		if !found {
			return msgPostNotFound
		}
		return formatPost(p)

	case "rate":
		if len(args) != 2 {
			return "usage: rate <postId> <+1|-1>"
		}
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return "usage: rate <postId> <+1|-1>"
		}
		value, err := strconv.Atoi(args[1])
		if err != nil {
			return msgInvalidVote
		}
		if err := h.store.Vote(username, id, value); err != nil {
			return translate(err)
		}
		return msgOK

	case "comment":
		if len(args) < 2 {
			return "usage: comment <postId> <text>"
		}
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return "usage: comment <postId> <text>"
		}
		text := strings.Join(args[1:], " ")
		if err := h.store.Comment(username, id, text); err != nil {
			return translate(err)
		}
		return msgOK

	case "rewin":
		id, ok := parseID(args)
		if !ok {
			return "usage: rewin <postId>"
		}
		if err := h.store.Rewin(username, id); err != nil {
			return translate(err)
		}
		return msgOK

	case "delete":
		id, ok := parseID(args)
		if !ok {
			return "usage: delete <postId>"
		}
		if err := h.store.DeletePost(username, id); err != nil {
			return translate(err)
		}
		return msgOK

	case "wallet":
		return h.wallet(username)

	case "walletbtc":
		return h.walletBTC(ctx, username)
	}

	return msgUnknownCommand
}

// RegisterUser creates an account and returns the user-facing reply. It is
// reachable both through the register verb and through the callback
// transport, which is the registration surface of the original design.
func (h *Handler) RegisterUser(username, password string, tags []string) string {
	if password == "" {
		return msgInvalidOperation
	}
	digest, err := auth.HashPassword(password)
	if err != nil {
		h.logger.Error(context.Background(), "password hashing failed", "error", err.Error())
		return msgOperationFailed
	}
	if err := h.store.Register(username, digest, tags); err != nil {
		return translate(err)
	}
	return msgOK
}

// Teardown destroys any session bound to connID. Called on EOF or I/O
// error, where no explicit logout arrives.
func (h *Handler) Teardown(connID string) (string, bool) {
	return h.registry.Drop(connID)
}

func (h *Handler) login(connID, username, password string) string {
	sess, err := h.registry.Login(connID, username, password)
	if err != nil {
		return translate(err)
	}
	// follower snapshot bootstraps the client-side cache
	line := "followers:"
	if followers := h.store.Followers(sess.Username); len(followers) > 0 {
		line += " " + strings.Join(followers, " ")
	}
	return msgOK + "\n" + line
}

func (h *Handler) listUsers(username string) string {
	caller, ok := h.store.GetUser(username)
	if !ok {
		return msgUserNotFound
	}
	if len(caller.Tags) == 0 {
		return msgNoTags
	}
	matches, err := h.store.UsersWithCommonTags(username)
	if err != nil {
		return translate(err)
	}
	if len(matches) == 0 {
		return msgNoCommonTags
	}
	lines := make([]string, 0, len(matches))
	for _, m := range matches {
		lines = append(lines, m.Username+": "+strings.Join(m.Tags, " "))
	}
	return strings.Join(lines, "\n")
}

func (h *Handler) wallet(username string) string {
	w := h.store.Wallet(username)
	balance := rewards.FormatAmount(w.Balance(), h.opts.CurrencyDecimals,
		h.opts.CurrencySingular, h.opts.CurrencyPlural)

	lines := []string{"balance: " + balance}
	for _, tx := range w.Transactions() {
		lines = append(lines, fmt.Sprintf("  %+.*f %s", h.opts.CurrencyDecimals, tx.Amount, tx.Reason))
	}
	return strings.Join(lines, "\n")
}

func (h *Handler) walletBTC(ctx context.Context, username string) string {
	rate, err := h.rates.Rate(ctx)
	if err != nil {
		h.logger.Warn(ctx, "conversion rate unavailable", "error", err.Error())
		return msgOperationFailed
	}
	return fmt.Sprintf("btc: %.8f", h.store.Wallet(username).Balance()*rate)
}

func parseID(args []string) (int64, bool) {
	if len(args) != 1 {
		return 0, false
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}

func formatPosts(posts []*models.Post, empty string) string {
	if len(posts) == 0 {
		return empty
	}
	lines := make([]string, 0, len(posts))
	for _, p := range posts {
		lines = append(lines, fmt.Sprintf("%d | %s | %s", p.ID, p.Author, p.Title))
	}
	return strings.Join(lines, "\n")
}

func formatPost(p *models.Post) string {
	up, down := p.VoteCounts()
	comments := p.Comments()

	var b strings.Builder
	fmt.Fprintf(&b, "title: %s\n", p.Title)
	fmt.Fprintf(&b, "content: %s\n", p.Content)
	fmt.Fprintf(&b, "votes: %d up, %d down\n", up, down)
	fmt.Fprintf(&b, "comments: %d", len(comments))
	for _, c := range comments {
		fmt.Fprintf(&b, "\n  %s: %s", c.Author, c.Text)
	}
	return b.String()
}
