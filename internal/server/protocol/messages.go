package protocol

import (
	"errors"
	"fmt"
	"time"

	"winsome/internal/server/sessions"
	"winsome/internal/server/store"
)

// Fixed user-facing response strings. Every business outcome maps to one of
// these; internal errors never leak to the wire.
const (
	msgOK = "ok"

	msgUserNotFound     = "error: user not found"
	msgUsernameTaken    = "error: username already taken"
	msgSameUser         = "error: operation refers to yourself"
	msgInvalidOperation = "error: operation not allowed"
	msgInvalidVote      = "error: vote must be +1 or -1"
	msgPostNotFound     = "error: post not found"
	msgNotInFeed        = "error: post not in your feed"
	msgNotLoggedIn      = "error: you are not logged in"
	msgAlreadyLoggedIn  = "error: you are already logged in on this connection"
	msgWrongPassword    = "error: wrong password"
	msgUnknownCommand   = "error: unrecognized command"
	msgOperationFailed  = "error: operation failed"

	msgNoTags       = "you have no tags set"
	msgNoCommonTags = "no users share your tags"
	msgNotFollowing = "you are not following anyone"
	msgEmptyBlog    = "your blog is empty"
	msgEmptyFeed    = "your feed is empty"
)

// translate maps the closed store/session error sets onto the fixed strings.
// Unknown errors degrade to the generic failure message.
func translate(err error) string {
	var elsewhere *sessions.LoggedInElsewhereError
	if errors.As(err, &elsewhere) {
		return fmt.Sprintf("error: user already logged in elsewhere since %s",
			elsewhere.Since.Format(time.RFC3339))
	}

	switch {
	case errors.Is(err, store.ErrUserNotFound), errors.Is(err, sessions.ErrUserNotFound):
		return msgUserNotFound
	case errors.Is(err, store.ErrUsernameTaken):
		return msgUsernameTaken
	case errors.Is(err, store.ErrSameUser):
		return msgSameUser
	case errors.Is(err, store.ErrInvalidVote):
		return msgInvalidVote
	case errors.Is(err, store.ErrPostNotFound):
		return msgPostNotFound
	case errors.Is(err, store.ErrNotInFeed):
		return msgNotInFeed
	case errors.Is(err, store.ErrAlreadyFollowing),
		errors.Is(err, store.ErrNotFollowing),
		errors.Is(err, store.ErrAlreadyVoted),
		errors.Is(err, store.ErrAlreadyRewound),
		errors.Is(err, store.ErrNotOwner),
		errors.Is(err, store.ErrInvalidOperation):
		return msgInvalidOperation
	case errors.Is(err, sessions.ErrNotLoggedIn):
		return msgNotLoggedIn
	case errors.Is(err, sessions.ErrAlreadyLoggedIn):
		return msgAlreadyLoggedIn
	case errors.Is(err, sessions.ErrWrongPassword):
		return msgWrongPassword
	default:
		return msgOperationFailed
	}
}
