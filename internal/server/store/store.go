// Package store implements the social graph: users, posts, mirrored
// follower/following adjacency, and wallets, with every structural mutation
// atomic under concurrent access from connection handlers, the reward
// engine, and the persistence loop.
package store

import (
	"sort"
	"strings"
	"sync"

	"winsome/internal/server/models"
)

// Limits bounds user-provided content. Zero values disable the bound.
type Limits struct {
	TitleMax   int
	ContentMax int
	MaxTags    int
}

// Store owns all shared mutable state. It is constructed once at startup
// and handed to every connection handler and to the reward engine; nothing
// in the system keeps graph state outside of it.
//
// The store mutex guards map membership and the follow adjacency; the
// collections inside a Post or Wallet are guarded by the entity itself, so
// votes, comments, and wallet credits do not serialize against graph
// mutations.
type Store struct {
	mu         sync.RWMutex
	users      map[string]*models.User
	posts      map[int64]*models.Post
	followers  map[string]map[string]struct{} // followee -> set of followers
	following  map[string]map[string]struct{} // follower -> set of followees
	wallets    map[string]*models.Wallet
	nextPostID int64

	limits Limits
}

func New(limits Limits) *Store {
	return &Store{
		users:     make(map[string]*models.User),
		posts:     make(map[int64]*models.Post),
		followers: make(map[string]map[string]struct{}),
		following: make(map[string]map[string]struct{}),
		wallets:   make(map[string]*models.Wallet),
		limits:    limits,
	}
}

// TagMatch pairs another user with the tags shared with the caller.
type TagMatch struct {
	Username string
	Tags     []string
}

// Register creates a user. The username is matched case-insensitively and
// stored lowercase. Tags beyond the configured maximum are rejected.
func (s *Store) Register(username string, digest []byte, tags []string) error {
	key := strings.ToLower(strings.TrimSpace(username))
	if key == "" {
		return ErrInvalidOperation
	}
	norm := models.NormalizeTags(tags)
	if s.limits.MaxTags > 0 && len(norm) > s.limits.MaxTags {
		return ErrInvalidOperation
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[key]; ok {
		return ErrUsernameTaken
	}
	u := models.NewUser(key, digest, norm)
	s.users[key] = u
	s.followers[key] = make(map[string]struct{})
	s.following[key] = make(map[string]struct{})
	return nil
}

// GetUser looks a user up by its case-insensitive key.
func (s *Store) GetUser(username string) (*models.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[strings.ToLower(username)]
	return u, ok
}

// UsersWithCommonTags returns, for the given caller, every other registered
// user sharing at least one tag, with the shared tags, sorted by username.
func (s *Store) UsersWithCommonTags(username string) ([]TagMatch, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	caller, ok := s.users[strings.ToLower(username)]
	if !ok {
		return nil, ErrUserNotFound
	}

	var matches []TagMatch
	for name, other := range s.users {
		if name == caller.Username {
			continue
		}
		if shared := caller.SharedTags(other); len(shared) > 0 {
			matches = append(matches, TagMatch{Username: name, Tags: shared})
		}
	}
	sort.Slice(matches, func(i, j int) bool { return matches[i].Username < matches[j].Username })
	return matches, nil
}

// Follow inserts the mirrored (actor -> target) edge. Both adjacency sides
// are updated inside one critical section, so the mirror invariant
// (follower of B iff B followed by A) holds at every observable point.
func (s *Store) Follow(actor, target string) error {
	actor, target = strings.ToLower(actor), strings.ToLower(target)
	if actor == target {
		return ErrSameUser
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[target]; !ok {
		return ErrUserNotFound
	}
	if _, ok := s.users[actor]; !ok {
		return ErrUserNotFound
	}
	if _, ok := s.following[actor][target]; ok {
		return ErrAlreadyFollowing
	}
	s.following[actor][target] = struct{}{}
	s.followers[target][actor] = struct{}{}
	return nil
}

// Unfollow removes the mirrored (actor -> target) edge.
func (s *Store) Unfollow(actor, target string) error {
	actor, target = strings.ToLower(actor), strings.ToLower(target)
	if actor == target {
		return ErrSameUser
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[target]; !ok {
		return ErrUserNotFound
	}
	if _, ok := s.users[actor]; !ok {
		return ErrUserNotFound
	}
	if _, ok := s.following[actor][target]; !ok {
		return ErrNotFollowing
	}
	delete(s.following[actor], target)
	delete(s.followers[target], actor)
	return nil
}

// Followers returns the usernames following username, sorted.
func (s *Store) Followers(username string) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return sortedKeys(s.followers[strings.ToLower(username)])
}

// Following returns the usernames username follows, sorted.
func (s *Store) Following(username string) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return sortedKeys(s.following[strings.ToLower(username)])
}

// CreatePost assigns the next id from the shared counter and inserts the
// post. Title and content must fit the configured bounds.
func (s *Store) CreatePost(author, title, content string) (int64, error) {
	if title == "" {
		return 0, ErrInvalidOperation
	}
	if s.limits.TitleMax > 0 && len(title) > s.limits.TitleMax {
		return 0, ErrInvalidOperation
	}
	if s.limits.ContentMax > 0 && len(content) > s.limits.ContentMax {
		return 0, ErrInvalidOperation
	}
	author = strings.ToLower(author)

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[author]; !ok {
		return 0, ErrUserNotFound
	}
	s.nextPostID++
	id := s.nextPostID
	s.posts[id] = models.NewPost(id, author, title, content)
	return id, nil
}

// GetPost looks a post up by id.
func (s *Store) GetPost(id int64) (*models.Post, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.posts[id]
	return p, ok
}

// Posts returns a snapshot of all current posts in unspecified order.
func (s *Store) Posts() []*models.Post {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.Post, 0, len(s.posts))
	for _, p := range s.posts {
		out = append(out, p)
	}
	return out
}

// DeletePost removes a post outright. Only the author may delete it; the
// reward engine tolerates the post vanishing mid-pass.
func (s *Store) DeletePost(actor string, id int64) error {
	actor = strings.ToLower(actor)

	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.posts[id]
	if !ok {
		return ErrPostNotFound
	}
	if p.Author != actor {
		return ErrNotOwner
	}
	delete(s.posts, id)
	return nil
}

// Vote records actor's rating of a post in its feed. value must be +1 or -1.
func (s *Store) Vote(actor string, id int64, value int) error {
	if value != 1 && value != -1 {
		return ErrInvalidVote
	}
	actor = strings.ToLower(actor)
	p, err := s.feedPost(actor, id)
	if err != nil {
		return err
	}
	if !p.AddVote(actor, value) {
		return ErrAlreadyVoted
	}
	return nil
}

// Comment appends actor's comment to a post in its feed.
func (s *Store) Comment(actor string, id int64, text string) error {
	actor = strings.ToLower(actor)
	p, err := s.feedPost(actor, id)
	if err != nil {
		return err
	}
	p.AddComment(actor, text)
	return nil
}

// Rewin adds actor to the rewin set of a post in its feed, republishing it
// into actor's own blog.
func (s *Store) Rewin(actor string, id int64) error {
	actor = strings.ToLower(actor)
	if _, ok := s.GetUser(actor); !ok {
		return ErrUserNotFound
	}
	p, err := s.feedPost(actor, id)
	if err != nil {
		return err
	}
	if !p.AddRewin(actor) {
		return ErrAlreadyRewound
	}
	return nil
}

// feedPost resolves a post and checks vote/comment/rewin eligibility: the
// post must not be the actor's own and must currently appear in the actor's
// feed. Eligibility is evaluated against the follow graph at call time;
// there is no cached feed to go stale.
func (s *Store) feedPost(actor string, id int64) (*models.Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.posts[id]
	if !ok {
		return nil, ErrPostNotFound
	}
	if p.Author == actor {
		return nil, ErrSameUser
	}
	if !s.inFeedLocked(actor, p) {
		return nil, ErrNotInFeed
	}
	return p, nil
}

// inFeedLocked reports whether p appears in actor's feed: authored or
// rewound by someone actor follows. Caller holds at least a read lock.
func (s *Store) inFeedLocked(actor string, p *models.Post) bool {
	followees := s.following[actor]
	if _, ok := followees[p.Author]; ok {
		return true
	}
	for f := range followees {
		if p.RewonBy(f) {
			return true
		}
	}
	return false
}

// Blog returns the posts authored by username plus the posts it has
// rewound, newest first.
func (s *Store) Blog(username string) []*models.Post {
	username = strings.ToLower(username)
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.blogLocked(username)
}

func (s *Store) blogLocked(username string) []*models.Post {
	var out []*models.Post
	for _, p := range s.posts {
		if p.Author == username || p.RewonBy(username) {
			out = append(out, p)
		}
	}
	sortPostsByID(out)
	return out
}

// Feed returns the union of the blogs of everyone username follows, newest
// first. It is computed on demand; the cost is bounded by total post count
// and the result is always consistent with the current follow graph.
func (s *Store) Feed(username string) []*models.Post {
	username = strings.ToLower(username)
	s.mu.RLock()
	defer s.mu.RUnlock()

	seen := make(map[int64]struct{})
	var out []*models.Post
	for f := range s.following[username] {
		for _, p := range s.blogLocked(f) {
			if _, dup := seen[p.ID]; dup {
				continue
			}
			seen[p.ID] = struct{}{}
			out = append(out, p)
		}
	}
	sortPostsByID(out)
	return out
}

// Wallet returns username's wallet, creating it lazily on first access.
func (s *Store) Wallet(username string) *models.Wallet {
	username = strings.ToLower(username)

	s.mu.RLock()
	w, ok := s.wallets[username]
	s.mu.RUnlock()
	if ok {
		return w
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if w, ok := s.wallets[username]; ok {
		return w
	}
	w = models.NewWallet(username)
	s.wallets[username] = w
	return w
}

// Wallets returns a snapshot of all wallets in unspecified order.
func (s *Store) Wallets() []*models.Wallet {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.Wallet, 0, len(s.wallets))
	for _, w := range s.wallets {
		out = append(out, w)
	}
	return out
}

// Users returns a snapshot of all registered users in unspecified order.
func (s *Store) Users() []*models.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.User, 0, len(s.users))
	for _, u := range s.users {
		out = append(out, u)
	}
	return out
}

// NextPostID exposes the shared counter for snapshots.
func (s *Store) NextPostID() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.nextPostID
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func sortPostsByID(posts []*models.Post) {
	sort.Slice(posts, func(i, j int) bool { return posts[i].ID > posts[j].ID })
}
