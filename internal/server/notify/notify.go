// Package notify implements the push side of the system: per-user follower
// update subscribers, the callback TCP listener clients subscribe through,
// and the UDP multicast broadcaster for reward announcements.
//
// The protocol engine and the reward engine depend only on the two push
// interfaces and never read anything back.
package notify

// FollowerNotifier pushes a follower-change message ("+user" / "-user") to
// the named user's subscriber, if one is registered. Push failures are
// swallowed: notifications are fire-and-forget.
type FollowerNotifier interface {
	NotifyFollower(username, msg string)
}

// Broadcaster pushes one message to every listening party.
type Broadcaster interface {
	Broadcast(msg string)
}

// Subscriber receives follower updates for a single user.
type Subscriber interface {
	Push(msg string) error
}

// NopNotifier discards follower notifications. Used when the callback
// listener is disabled and in tests.
type NopNotifier struct{}

func (NopNotifier) NotifyFollower(string, string) {}

// NopBroadcaster discards broadcasts.
type NopBroadcaster struct{}

func (NopBroadcaster) Broadcast(string) {}
