package store

import "errors"

// Closed set of business outcomes. Callers branch with errors.Is and map
// each to a fixed user-facing string; none of these cross a subsystem
// boundary as a panic.
var (
	ErrUsernameTaken    = errors.New("username already taken")
	ErrUserNotFound     = errors.New("user not found")
	ErrSameUser         = errors.New("operation refers to the acting user")
	ErrAlreadyFollowing = errors.New("already following")
	ErrNotFollowing     = errors.New("not following")
	ErrPostNotFound     = errors.New("post not found")
	ErrInvalidVote      = errors.New("invalid vote value")
	ErrAlreadyVoted     = errors.New("already voted")
	ErrAlreadyRewound   = errors.New("already rewound")
	ErrNotInFeed        = errors.New("post not in feed")
	ErrNotOwner         = errors.New("not the post owner")
	ErrInvalidOperation = errors.New("invalid operation")
)
