package models

import (
	"sync"
	"time"
)

// Vote is one user's rating of a post. Value is +1 or -1.
type Vote struct {
	Author  string
	Value   int
	Created time.Time
}

// Comment is one entry of a post's append-only comment sequence.
type Comment struct {
	Author  string
	Text    string
	Created time.Time
}

// Post is a published entry. ID, Author, Title, Content and Created are
// immutable; the vote/comment/rewin collections and the reward-pass counter
// grow over the post's life and are guarded by the post's own mutex, so a
// post can be mutated concurrently with store-level map operations.
type Post struct {
	ID      int64
	Author  string
	Title   string
	Content string
	Created time.Time

	mu       sync.Mutex
	votes    map[string]Vote
	comments []Comment
	rewins   map[string]struct{}
	passes   int64
}

func NewPost(id int64, author, title, content string) *Post {
	return &Post{
		ID:      id,
		Author:  author,
		Title:   title,
		Content: content,
		Created: time.Now(),
		votes:   make(map[string]Vote),
		rewins:  make(map[string]struct{}),
	}
}

// RestorePost rebuilds a post from persisted state.
func RestorePost(id int64, author, title, content string, created time.Time,
	votes []Vote, comments []Comment, rewins []string, passes int64) *Post {
	p := &Post{
		ID:       id,
		Author:   author,
		Title:    title,
		Content:  content,
		Created:  created,
		votes:    make(map[string]Vote, len(votes)),
		comments: comments,
		rewins:   make(map[string]struct{}, len(rewins)),
		passes:   passes,
	}
	for _, v := range votes {
		p.votes[v.Author] = v
	}
	for _, u := range rewins {
		p.rewins[u] = struct{}{}
	}
	return p
}

// AddVote records author's vote. It returns false when author has already
// voted on this post; at most one vote per (post, author) is ever stored.
func (p *Post) AddVote(author string, value int) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.votes[author]; ok {
		return false
	}
	p.votes[author] = Vote{Author: author, Value: value, Created: time.Now()}
	return true
}

// AddComment appends a comment. Ordering is arrival order.
func (p *Post) AddComment(author, text string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.comments = append(p.comments, Comment{Author: author, Text: text, Created: time.Now()})
}

// AddRewin adds user to the rewin set, returning false if already present.
func (p *Post) AddRewin(user string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.rewins[user]; ok {
		return false
	}
	p.rewins[user] = struct{}{}
	return true
}

// RewonBy reports whether user has rewound this post.
func (p *Post) RewonBy(user string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, ok := p.rewins[user]
	return ok
}

// Votes returns a snapshot of the post's votes.
func (p *Post) Votes() []Vote {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]Vote, 0, len(p.votes))
	for _, v := range p.votes {
		out = append(out, v)
	}
	return out
}

// Comments returns a snapshot of the post's comment sequence.
func (p *Post) Comments() []Comment {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]Comment, len(p.comments))
	copy(out, p.comments)
	return out
}

// Rewins returns a snapshot of the usernames that rewound this post.
func (p *Post) Rewins() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.rewins))
	for u := range p.rewins {
		out = append(out, u)
	}
	return out
}

// VoteCounts returns the number of positive and negative votes.
func (p *Post) VoteCounts() (up, down int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, v := range p.votes {
		if v.Value > 0 {
			up++
		} else {
			down++
		}
	}
	return up, down
}

// NextPass increments the reward-pass counter and returns the new value.
// The counter advances exactly once per reward-engine pass over this post.
func (p *Post) NextPass() int64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.passes++
	return p.passes
}

// Passes returns the current reward-pass counter.
func (p *Post) Passes() int64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.passes
}
