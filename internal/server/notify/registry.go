package notify

import "sync"

// Registry maps usernames to their follower-update subscriber. At most one
// subscriber per username; a re-subscribe replaces the previous one.
type Registry struct {
	mu   sync.Mutex
	subs map[string]Subscriber
}

func NewRegistry() *Registry {
	return &Registry{subs: make(map[string]Subscriber)}
}

// Subscribe binds sub as username's subscriber, replacing any previous one.
func (r *Registry) Subscribe(username string, sub Subscriber) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.subs[username] = sub
}

// Unsubscribe removes sub if it is still the current subscriber for
// username. A newer subscriber registered in the meantime stays.
func (r *Registry) Unsubscribe(username string, sub Subscriber) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.subs[username] == sub {
		delete(r.subs, username)
	}
}

// NotifyFollower pushes msg to username's subscriber, if any. A failing
// subscriber is dropped; the next subscribe replaces it anyway.
func (r *Registry) NotifyFollower(username, msg string) {
	r.mu.Lock()
	sub, ok := r.subs[username]
	r.mu.Unlock()
	if !ok {
		return
	}
	if err := sub.Push(msg); err != nil {
		r.Unsubscribe(username, sub)
	}
}

var _ FollowerNotifier = (*Registry)(nil)
