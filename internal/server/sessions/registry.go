// Package sessions tracks which username is logged in on which connection.
// It enforces at most one active session per user and at most one session
// per connection.
package sessions

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"winsome/internal/auth"
	"winsome/internal/server/models"
)

var (
	ErrNotLoggedIn     = errors.New("not logged in")
	ErrAlreadyLoggedIn = errors.New("connection already holds a session")
	ErrWrongPassword   = errors.New("wrong password")
	ErrUserNotFound    = errors.New("user not found")
)

// LoggedInElsewhereError reports that the username already has a session on
// another connection, carrying that session's login timestamp so the caller
// can surface it.
type LoggedInElsewhereError struct {
	Since time.Time
}

func (e *LoggedInElsewhereError) Error() string {
	return fmt.Sprintf("user already logged in elsewhere since %s", e.Since.Format(time.RFC3339))
}

// UserDirectory is the slice of the store the registry needs: credential
// lookup by case-insensitive username.
type UserDirectory interface {
	GetUser(username string) (*models.User, bool)
}

// Registry is the per-process session table. All methods are safe for
// concurrent use by connection handlers.
type Registry struct {
	users UserDirectory

	mu     sync.Mutex
	byUser map[string]*models.Session
	byConn map[string]string
}

func NewRegistry(users UserDirectory) *Registry {
	return &Registry{
		users:  users,
		byUser: make(map[string]*models.Session),
		byConn: make(map[string]string),
	}
}

// Login authenticates username/password and binds a session to connID.
//
// Credential verification happens before the registry lock is taken: bcrypt
// is deliberately slow and must not serialize unrelated logins. The race of
// two successful verifications for one user resolves under the lock, where
// the second caller observes the existing session.
func (r *Registry) Login(connID, username, password string) (*models.Session, error) {
	username = strings.ToLower(username)

	user, ok := r.users.GetUser(username)
	if !ok {
		return nil, ErrUserNotFound
	}
	if !auth.VerifyPassword(password, user.Digest) {
		return nil, ErrWrongPassword
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byConn[connID]; ok {
		return nil, ErrAlreadyLoggedIn
	}
	if existing, ok := r.byUser[username]; ok {
		return nil, &LoggedInElsewhereError{Since: existing.LoginTime}
	}

	sess := &models.Session{Username: username, ConnID: connID, LoginTime: time.Now()}
	r.byUser[username] = sess
	r.byConn[connID] = username
	return sess, nil
}

// Logout destroys username's session, but only when it is bound to connID:
// a second connection cannot log out someone else's session.
func (r *Registry) Logout(connID, username string) error {
	username = strings.ToLower(username)

	r.mu.Lock()
	defer r.mu.Unlock()
	sess, ok := r.byUser[username]
	if !ok || sess.ConnID != connID {
		return ErrNotLoggedIn
	}
	delete(r.byUser, username)
	delete(r.byConn, connID)
	return nil
}

// Drop destroys whatever session is bound to connID, if any. Called on
// connection teardown (EOF or I/O error), where no explicit logout arrives.
func (r *Registry) Drop(connID string) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	username, ok := r.byConn[connID]
	if !ok {
		return "", false
	}
	delete(r.byUser, username)
	delete(r.byConn, connID)
	return username, true
}

// Current returns the username logged in on connID, if any.
func (r *Registry) Current(connID string) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	username, ok := r.byConn[connID]
	return username, ok
}
