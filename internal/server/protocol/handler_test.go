package protocol

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"winsome/internal/logging"
	"winsome/internal/server/sessions"
	"winsome/internal/server/store"
)

type recordingNotifier struct {
	pushes []string // "username<-msg"
}

func (n *recordingNotifier) NotifyFollower(username, msg string) {
	n.pushes = append(n.pushes, username+"<-"+msg)
}

type fixedRate struct{ v float64 }

func (f fixedRate) Rate(context.Context) (float64, error) { return f.v, nil }

func testLogger() logging.Logger {
	return logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func newTestHandler(t *testing.T) (*Handler, *store.Store, *recordingNotifier) {
	t.Helper()
	s := store.New(store.Limits{TitleMax: 20, ContentMax: 500, MaxTags: 5})
	reg := sessions.NewRegistry(s)
	n := &recordingNotifier{}
	opts := Options{CurrencyDecimals: 4, CurrencySingular: "wincoin", CurrencyPlural: "wincoins"}
	h := NewHandler(s, reg, n, fixedRate{0.5}, opts, testLogger())
	return h, s, n
}

func handle(h *Handler, connID, raw string) string {
	return h.Handle(context.Background(), connID, raw)
}

// registerAndLogin creates the user and logs it in on connID.
func registerAndLogin(t *testing.T, h *Handler, connID, user string, tags ...string) {
	t.Helper()
	cmd := "register " + user + " pw"
	if len(tags) > 0 {
		cmd += " " + strings.Join(tags, " ")
	}
	require.Equal(t, "ok", handle(h, connID, cmd))
	resp := handle(h, connID, "login "+user+" pw")
	require.True(t, strings.HasPrefix(resp, "ok"), "login reply: %q", resp)
}

func TestRegistrationLoginCycle(t *testing.T) {
	h, _, _ := newTestHandler(t)

	assert.Equal(t, "ok", handle(h, "c1", "register alice pw tech"))
	assert.Equal(t, msgUsernameTaken, handle(h, "c2", "register Alice other"))

	resp := handle(h, "c1", "login alice pw")
	assert.Equal(t, "ok\nfollowers:", resp)

	// second connection: rejected with the first session's timestamp
	resp = handle(h, "c2", "login alice pw")
	assert.True(t, strings.HasPrefix(resp, "error: user already logged in elsewhere since "), resp)

	assert.Equal(t, msgWrongPassword, handle(h, "c3", "login alice nope"))
	assert.Equal(t, msgUserNotFound, handle(h, "c3", "login ghost pw"))
	assert.Equal(t, "usage: login <user> <pass>", handle(h, "c3", "login alice"))
}

func TestSessionRequiredVerbs(t *testing.T) {
	h, _, _ := newTestHandler(t)

	for _, cmd := range []string{"logout", "listusers", "blog", "showfeed", "wallet", "follow bob"} {
		assert.Equal(t, msgNotLoggedIn, handle(h, "c1", cmd), "verb %q", cmd)
	}
	assert.Equal(t, msgUnknownCommand, handle(h, "c1", "frobnicate"))
	assert.Equal(t, msgUnknownCommand, handle(h, "c1", ""))
}

func TestFollowUnfollow_NotifiesTarget(t *testing.T) {
	h, _, n := newTestHandler(t)
	registerAndLogin(t, h, "c1", "alice")
	registerAndLogin(t, h, "c2", "bob")

	assert.Equal(t, "ok", handle(h, "c1", "follow bob"))
	assert.Equal(t, msgInvalidOperation, handle(h, "c1", "follow bob"))
	assert.Equal(t, msgSameUser, handle(h, "c1", "follow alice"))
	assert.Equal(t, msgUserNotFound, handle(h, "c1", "follow ghost"))

	assert.Equal(t, "ok", handle(h, "c1", "unfollow bob"))
	assert.Equal(t, msgInvalidOperation, handle(h, "c1", "unfollow bob"))

	assert.Equal(t, []string{"bob<-+alice", "bob<--alice"}, n.pushes)
}

func TestLogin_ReturnsFollowerSnapshot(t *testing.T) {
	h, _, _ := newTestHandler(t)
	registerAndLogin(t, h, "c1", "alice")
	registerAndLogin(t, h, "c2", "bob")
	require.Equal(t, "ok", handle(h, "c2", "follow alice"))

	require.Equal(t, "ok", handle(h, "c1", "logout"))
	resp := handle(h, "c1", "login alice pw")
	assert.Equal(t, "ok\nfollowers: bob", resp)
}

func TestPostLifecycleScenario(t *testing.T) {
	h, _, _ := newTestHandler(t)
	registerAndLogin(t, h, "c1", "alice")
	registerAndLogin(t, h, "c2", "bob")
	require.Equal(t, "ok", handle(h, "c2", "follow alice"))

	assert.Equal(t, "ok post 1", handle(h, "c1", `post "Hello" "World"`))

	resp := handle(h, "c2", "showpost 1")
	assert.Contains(t, resp, "title: Hello")
	assert.Contains(t, resp, "content: World")
	assert.Contains(t, resp, "votes: 0 up, 0 down")
	assert.Contains(t, resp, "comments: 0")

	// non-author cannot delete
	assert.Equal(t, msgInvalidOperation, handle(h, "c2", "delete 1"))
	assert.Equal(t, "ok", handle(h, "c1", "delete 1"))
	assert.Equal(t, msgPostNotFound, handle(h, "c2", "showpost 1"))
}

func TestPost_UsageErrors(t *testing.T) {
	h, _, _ := newTestHandler(t)
	registerAndLogin(t, h, "c1", "alice")

	usage := `usage: post "<title>" ["<content>"]`
	assert.Equal(t, usage, handle(h, "c1", `post Hello World`))
	assert.Equal(t, usage, handle(h, "c1", `post "Hello" "World`))
	assert.Equal(t, usage, handle(h, "c1", `post "a" "b" "c"`))
	assert.Equal(t, usage, handle(h, "c1", `post "  "`))

	// oversize title is a business failure, not a usage error
	assert.Equal(t, msgInvalidOperation,
		handle(h, "c1", `post "a title that is much too long" "x"`))
}

func TestRateCommentRewin(t *testing.T) {
	h, _, _ := newTestHandler(t)
	registerAndLogin(t, h, "c1", "alice")
	registerAndLogin(t, h, "c2", "bob")
	require.Equal(t, "ok post 1", handle(h, "c1", `post "Hello" "World"`))

	// not in bob's feed until he follows alice
	assert.Equal(t, msgNotInFeed, handle(h, "c2", "rate 1 +1"))
	require.Equal(t, "ok", handle(h, "c2", "follow alice"))

	assert.Equal(t, msgInvalidVote, handle(h, "c2", "rate 1 5"))
	assert.Equal(t, "ok", handle(h, "c2", "rate 1 +1"))
	assert.Equal(t, msgInvalidOperation, handle(h, "c2", "rate 1 -1"))

	assert.Equal(t, "ok", handle(h, "c2", "comment 1 nice one alice"))
	assert.Equal(t, "ok", handle(h, "c2", "rewin 1"))
	assert.Equal(t, msgInvalidOperation, handle(h, "c2", "rewin 1"))

	// the author can never rate its own post
	assert.Equal(t, msgSameUser, handle(h, "c1", "rate 1 +1"))

	resp := handle(h, "c2", "showpost 1")
	assert.Contains(t, resp, "votes: 1 up, 0 down")
	assert.Contains(t, resp, "comments: 1")
	assert.Contains(t, resp, "  bob: nice one alice")

	assert.Equal(t, msgPostNotFound, handle(h, "c2", "rate 99 +1"))
	assert.Equal(t, "usage: rate <postId> <+1|-1>", handle(h, "c2", "rate one +1"))
}

func TestBlogAndFeed(t *testing.T) {
	h, _, _ := newTestHandler(t)
	registerAndLogin(t, h, "c1", "alice")
	registerAndLogin(t, h, "c2", "bob")

	assert.Equal(t, msgEmptyBlog, handle(h, "c1", "blog"))
	assert.Equal(t, msgEmptyFeed, handle(h, "c2", "showfeed"))

	require.Equal(t, "ok post 1", handle(h, "c1", `post "First" "x"`))
	require.Equal(t, "ok post 2", handle(h, "c1", `post "Second" "y"`))
	require.Equal(t, "ok", handle(h, "c2", "follow alice"))

	assert.Equal(t, "2 | alice | Second\n1 | alice | First", handle(h, "c2", "showfeed"))
	assert.Equal(t, "alice", handle(h, "c2", "listfollowing"))
	assert.Equal(t, msgNotFollowing, handle(h, "c1", "listfollowing"))
}

func TestListUsers(t *testing.T) {
	h, _, _ := newTestHandler(t)
	registerAndLogin(t, h, "c1", "alice", "tech", "music")
	registerAndLogin(t, h, "c2", "bob", "music")
	registerAndLogin(t, h, "c3", "carol")

	assert.Equal(t, "bob: music", handle(h, "c1", "listusers"))
	assert.Equal(t, msgNoTags, handle(h, "c3", "listusers"))

	require.Equal(t, "ok", handle(h, "c2", "logout"))
	registerAndLogin(t, h, "c4", "dave", "sport")
	assert.Equal(t, msgNoCommonTags, handle(h, "c4", "listusers"))
}

func TestWalletAndBTC(t *testing.T) {
	h, s, _ := newTestHandler(t)
	registerAndLogin(t, h, "c1", "alice")

	assert.Equal(t, "balance: 0.0000 wincoins", handle(h, "c1", "wallet"))

	s.Wallet("alice").Credit(1.5, "reward for post 1")
	s.Wallet("alice").Credit(0.5, "reward for post 2")

	resp := handle(h, "c1", "wallet")
	assert.Contains(t, resp, "balance: 2.0000 wincoins")
	assert.Contains(t, resp, "  +1.5000 reward for post 1")
	assert.Contains(t, resp, "  +0.5000 reward for post 2")

	// fixed 0.5 rate: 2.0 wincoins -> 1 BTC
	assert.Equal(t, "btc: 1.00000000", handle(h, "c1", "walletbtc"))
}

func TestLogoutAndTeardown(t *testing.T) {
	h, _, _ := newTestHandler(t)
	registerAndLogin(t, h, "c1", "alice")

	assert.Equal(t, "ok", handle(h, "c1", "logout"))
	assert.Equal(t, msgNotLoggedIn, handle(h, "c1", "logout"))

	// implicit teardown frees the username for another connection
	registerAndLogin(t, h, "c2", "bob")
	username, had := h.Teardown("c2")
	assert.True(t, had)
	assert.Equal(t, "bob", username)
	resp := handle(h, "c3", "login bob pw")
	assert.True(t, strings.HasPrefix(resp, "ok"), resp)
}
