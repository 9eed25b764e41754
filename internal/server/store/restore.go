package store

import (
	"strings"

	"winsome/internal/server/models"
)

// Rehydration entry points used when loading a snapshot at startup, before
// any connection or engine goroutine runs. They insert persisted entities
// as-is and skip the business checks of the public operations.

func (s *Store) RestoreUser(u *models.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[u.Username] = u
	if s.followers[u.Username] == nil {
		s.followers[u.Username] = make(map[string]struct{})
	}
	if s.following[u.Username] == nil {
		s.following[u.Username] = make(map[string]struct{})
	}
}

func (s *Store) RestorePost(p *models.Post) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.posts[p.ID] = p
	if p.ID > s.nextPostID {
		s.nextPostID = p.ID
	}
}

func (s *Store) RestoreFollow(follower, followee string) {
	follower, followee = strings.ToLower(follower), strings.ToLower(followee)
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.following[follower] == nil {
		s.following[follower] = make(map[string]struct{})
	}
	if s.followers[followee] == nil {
		s.followers[followee] = make(map[string]struct{})
	}
	s.following[follower][followee] = struct{}{}
	s.followers[followee][follower] = struct{}{}
}

func (s *Store) RestoreWallet(w *models.Wallet) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.wallets[w.Owner] = w
}

// SetNextPostID raises the shared post-id counter to at least n.
func (s *Store) SetNextPostID(n int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if n > s.nextPostID {
		s.nextPostID = n
	}
}
