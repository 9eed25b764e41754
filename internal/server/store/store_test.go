package store

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T, users ...string) *Store {
	t.Helper()
	s := New(Limits{TitleMax: 20, ContentMax: 500, MaxTags: 5})
	for _, u := range users {
		require.NoError(t, s.Register(u, []byte("digest"), []string{"tech"}))
	}
	return s
}

func TestRegister_CaseInsensitiveKey(t *testing.T) {
	s := New(Limits{MaxTags: 5})

	require.NoError(t, s.Register("Alice", []byte("d"), []string{"Tech", "tech", "MUSIC", ""}))

	u, ok := s.GetUser("ALICE")
	require.True(t, ok)
	assert.Equal(t, "alice", u.Username)
	assert.Equal(t, []string{"tech", "music"}, u.Tags)

	assert.ErrorIs(t, s.Register("aliCE", []byte("d"), nil), ErrUsernameTaken)
}

func TestRegister_TooManyTags(t *testing.T) {
	s := New(Limits{MaxTags: 5})
	err := s.Register("bob", []byte("d"), []string{"a", "b", "c", "d", "e", "f"})
	assert.ErrorIs(t, err, ErrInvalidOperation)
}

func TestRegister_EmptyUsername(t *testing.T) {
	s := New(Limits{})
	assert.ErrorIs(t, s.Register("  ", []byte("d"), nil), ErrInvalidOperation)
}

func TestFollow_ErrorsAndMirror(t *testing.T) {
	s := newTestStore(t, "alice", "bob")

	assert.ErrorIs(t, s.Follow("alice", "alice"), ErrSameUser)
	assert.ErrorIs(t, s.Follow("alice", "ghost"), ErrUserNotFound)

	require.NoError(t, s.Follow("alice", "bob"))
	assert.ErrorIs(t, s.Follow("alice", "bob"), ErrAlreadyFollowing)

	assert.Equal(t, []string{"alice"}, s.Followers("bob"))
	assert.Equal(t, []string{"bob"}, s.Following("alice"))
	assert.Empty(t, s.Followers("alice"))

	assert.ErrorIs(t, s.Unfollow("alice", "alice"), ErrSameUser)
	assert.ErrorIs(t, s.Unfollow("bob", "alice"), ErrNotFollowing)

	require.NoError(t, s.Unfollow("alice", "bob"))
	assert.Empty(t, s.Followers("bob"))
	assert.Empty(t, s.Following("alice"))
	assert.ErrorIs(t, s.Unfollow("alice", "bob"), ErrNotFollowing)
}

func TestCreatePost_AssignsMonotonicIDs(t *testing.T) {
	s := newTestStore(t, "alice")

	id1, err := s.CreatePost("alice", "Hello", "World")
	require.NoError(t, err)
	id2, err := s.CreatePost("alice", "Second", "post")
	require.NoError(t, err)

	assert.Equal(t, int64(1), id1)
	assert.Equal(t, int64(2), id2)

	p, ok := s.GetPost(id1)
	require.True(t, ok)
	assert.Equal(t, "alice", p.Author)
	assert.Equal(t, "Hello", p.Title)
	assert.Equal(t, "World", p.Content)
}

func TestCreatePost_Bounds(t *testing.T) {
	s := newTestStore(t, "alice")

	_, err := s.CreatePost("alice", "", "content")
	assert.ErrorIs(t, err, ErrInvalidOperation)

	_, err = s.CreatePost("alice", "this title is way beyond twenty chars", "content")
	assert.ErrorIs(t, err, ErrInvalidOperation)

	long := make([]byte, 501)
	for i := range long {
		long[i] = 'x'
	}
	_, err = s.CreatePost("alice", "ok", string(long))
	assert.ErrorIs(t, err, ErrInvalidOperation)

	_, err = s.CreatePost("ghost", "ok", "content")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestVote_FeedGating(t *testing.T) {
	s := newTestStore(t, "alice", "bob", "carol")
	id, err := s.CreatePost("alice", "Hello", "World")
	require.NoError(t, err)

	// own post is never votable, even by the author
	assert.ErrorIs(t, s.Vote("alice", id, 1), ErrSameUser)

	// bob does not follow alice, so the post is not in bob's feed
	assert.ErrorIs(t, s.Vote("bob", id, 1), ErrNotInFeed)

	require.NoError(t, s.Follow("bob", "alice"))
	assert.ErrorIs(t, s.Vote("bob", id, 2), ErrInvalidVote)
	assert.ErrorIs(t, s.Vote("bob", id, 0), ErrInvalidVote)

	require.NoError(t, s.Vote("bob", id, 1))
	assert.ErrorIs(t, s.Vote("bob", id, -1), ErrAlreadyVoted)

	p, _ := s.GetPost(id)
	assert.Len(t, p.Votes(), 1)

	assert.ErrorIs(t, s.Vote("bob", 999, 1), ErrPostNotFound)
}

func TestVote_UnfollowRevokesEligibility(t *testing.T) {
	s := newTestStore(t, "alice", "bob")
	id, _ := s.CreatePost("alice", "Hello", "World")

	require.NoError(t, s.Follow("bob", "alice"))
	require.NoError(t, s.Unfollow("bob", "alice"))

	// eligibility is evaluated against the current follow graph
	assert.ErrorIs(t, s.Vote("bob", id, 1), ErrNotInFeed)
}

func TestComment_FeedGating(t *testing.T) {
	s := newTestStore(t, "alice", "bob")
	id, _ := s.CreatePost("alice", "Hello", "World")

	assert.ErrorIs(t, s.Comment("alice", id, "mine"), ErrSameUser)
	assert.ErrorIs(t, s.Comment("bob", id, "hi"), ErrNotInFeed)
	assert.ErrorIs(t, s.Comment("bob", 999, "hi"), ErrPostNotFound)

	require.NoError(t, s.Follow("bob", "alice"))
	require.NoError(t, s.Comment("bob", id, "first"))
	require.NoError(t, s.Comment("bob", id, "second"))

	p, _ := s.GetPost(id)
	comments := p.Comments()
	require.Len(t, comments, 2)
	assert.Equal(t, "first", comments[0].Text)
	assert.Equal(t, "second", comments[1].Text)
}

func TestRewin_ExtendsBlogAndFeed(t *testing.T) {
	s := newTestStore(t, "alice", "bob", "carol")
	id, _ := s.CreatePost("alice", "Hello", "World")

	require.NoError(t, s.Follow("bob", "alice"))
	assert.ErrorIs(t, s.Rewin("alice", id), ErrSameUser)

	require.NoError(t, s.Rewin("bob", id))
	assert.ErrorIs(t, s.Rewin("bob", id), ErrAlreadyRewound)

	// the rewound post now belongs to bob's blog
	blog := s.Blog("bob")
	require.Len(t, blog, 1)
	assert.Equal(t, id, blog[0].ID)

	// carol follows bob only; the rewin makes alice's post reach carol
	require.NoError(t, s.Follow("carol", "bob"))
	feed := s.Feed("carol")
	require.Len(t, feed, 1)
	assert.Equal(t, id, feed[0].ID)

	// and makes it eligible for carol's votes
	require.NoError(t, s.Vote("carol", id, 1))
}

func TestFeed_UnionOfBlogsDeduplicated(t *testing.T) {
	s := newTestStore(t, "alice", "bob", "carol")
	id1, _ := s.CreatePost("alice", "one", "1")
	id2, _ := s.CreatePost("bob", "two", "2")

	require.NoError(t, s.Follow("bob", "alice"))
	require.NoError(t, s.Rewin("bob", id1))

	// carol follows both: alice's post reachable twice, listed once
	require.NoError(t, s.Follow("carol", "alice"))
	require.NoError(t, s.Follow("carol", "bob"))

	feed := s.Feed("carol")
	require.Len(t, feed, 2)
	assert.Equal(t, id2, feed[0].ID) // newest first
	assert.Equal(t, id1, feed[1].ID)
}

func TestDeletePost(t *testing.T) {
	s := newTestStore(t, "alice", "bob")
	id, _ := s.CreatePost("alice", "Hello", "World")

	assert.ErrorIs(t, s.DeletePost("bob", id), ErrNotOwner)
	assert.ErrorIs(t, s.DeletePost("alice", 999), ErrPostNotFound)

	require.NoError(t, s.DeletePost("alice", id))
	_, ok := s.GetPost(id)
	assert.False(t, ok)
	assert.ErrorIs(t, s.DeletePost("alice", id), ErrPostNotFound)
}

func TestWallet_LazyCreationAndLedger(t *testing.T) {
	s := newTestStore(t, "alice")

	w := s.Wallet("ALICE")
	require.NotNil(t, w)
	assert.Equal(t, "alice", w.Owner)
	assert.Zero(t, w.Balance())

	// same wallet on every access
	assert.Same(t, w, s.Wallet("alice"))

	w.Credit(1.5, "reward for post 1")
	w.Credit(-0.5, "adjustment")
	assert.InDelta(t, 1.0, w.Balance(), 1e-9)
	assert.Len(t, w.Transactions(), 2)
}

func TestUsersWithCommonTags(t *testing.T) {
	s := New(Limits{MaxTags: 5})
	require.NoError(t, s.Register("alice", nil, []string{"tech", "music"}))
	require.NoError(t, s.Register("bob", nil, []string{"music", "sport"}))
	require.NoError(t, s.Register("carol", nil, []string{"cooking"}))
	require.NoError(t, s.Register("dave", nil, []string{"tech", "music"}))

	matches, err := s.UsersWithCommonTags("alice")
	require.NoError(t, err)
	require.Len(t, matches, 2)
	assert.Equal(t, "bob", matches[0].Username)
	assert.Equal(t, []string{"music"}, matches[0].Tags)
	assert.Equal(t, "dave", matches[1].Username)
	assert.Equal(t, []string{"tech", "music"}, matches[1].Tags)

	_, err = s.UsersWithCommonTags("ghost")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestPostLifecycleScenario(t *testing.T) {
	s := newTestStore(t, "alice", "bob")
	require.NoError(t, s.Follow("bob", "alice"))

	id, err := s.CreatePost("alice", "Hello", "World")
	require.NoError(t, err)
	assert.Equal(t, int64(1), id)

	p, ok := s.GetPost(id)
	require.True(t, ok)
	up, down := p.VoteCounts()
	assert.Zero(t, up)
	assert.Zero(t, down)

	assert.ErrorIs(t, s.DeletePost("bob", id), ErrNotOwner)
	require.NoError(t, s.DeletePost("alice", id))
	_, ok = s.GetPost(id)
	assert.False(t, ok)
}

func TestRestore_RoundTripCounters(t *testing.T) {
	s := newTestStore(t, "alice")
	for i := 0; i < 3; i++ {
		_, err := s.CreatePost("alice", fmt.Sprintf("t%d", i), "c")
		require.NoError(t, err)
	}

	fresh := New(Limits{})
	for _, p := range s.Posts() {
		fresh.RestorePost(p)
	}

	// ids continue after the highest restored one
	require.NoError(t, fresh.Register("alice", nil, nil))
	id, err := fresh.CreatePost("alice", "next", "c")
	require.NoError(t, err)
	assert.Equal(t, int64(4), id)
}
