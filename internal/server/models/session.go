package models

import "time"

// Session binds a logged-in username to one connection. At most one session
// exists per username at a time, and a connection holds at most one session.
type Session struct {
	Username  string
	ConnID    string
	LoginTime time.Time
}
