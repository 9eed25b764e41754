// Package models holds the entity types shared by the store, the protocol
// engine, and the reward engine. Entities are created once and never mutated
// in place; the growing collections inside Post and Wallet are the only
// exception and guard themselves.
package models

import (
	"strings"
	"time"
)

// User is a registered account. Username is the case-insensitive unique key,
// stored lowercase. Tags are deduplicated and lowercased at creation and
// never change afterwards.
type User struct {
	Username string
	Digest   []byte
	Tags     []string
	Created  time.Time
}

func NewUser(username string, digest []byte, tags []string) *User {
	return &User{
		Username: strings.ToLower(username),
		Digest:   digest,
		Tags:     NormalizeTags(tags),
		Created:  time.Now(),
	}
}

// NormalizeTags lowercases tags and removes duplicates and blanks while
// preserving first-occurrence order.
func NormalizeTags(tags []string) []string {
	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}

// SharedTags returns the tags u has in common with other, in u's tag order.
func (u *User) SharedTags(other *User) []string {
	theirs := make(map[string]struct{}, len(other.Tags))
	for _, t := range other.Tags {
		theirs[t] = struct{}{}
	}
	var shared []string
	for _, t := range u.Tags {
		if _, ok := theirs[t]; ok {
			shared = append(shared, t)
		}
	}
	return shared
}
