// Package persist snapshots the store to a JSON file and rebuilds it at
// startup. Snapshots are written atomically (temp file in the target
// directory, then rename), so a crash mid-write leaves the previous snapshot
// intact.
package persist

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"time"

	"winsome/internal/logging"
	"winsome/internal/server/models"
	"winsome/internal/server/store"
)

type voteRecord struct {
	Author  string    `json:"author"`
	Value   int       `json:"value"`
	Created time.Time `json:"created"`
}

type commentRecord struct {
	Author  string    `json:"author"`
	Text    string    `json:"text"`
	Created time.Time `json:"created"`
}

type postRecord struct {
	ID       int64           `json:"id"`
	Author   string          `json:"author"`
	Title    string          `json:"title"`
	Content  string          `json:"content"`
	Created  time.Time       `json:"created"`
	Votes    []voteRecord    `json:"votes,omitempty"`
	Comments []commentRecord `json:"comments,omitempty"`
	Rewins   []string        `json:"rewins,omitempty"`
	Passes   int64           `json:"passes"`
}

type userRecord struct {
	Username string    `json:"username"`
	Digest   []byte    `json:"digest"`
	Tags     []string  `json:"tags,omitempty"`
	Created  time.Time `json:"created"`
}

type followRecord struct {
	Follower string `json:"follower"`
	Followee string `json:"followee"`
}

type txRecord struct {
	Amount  float64   `json:"amount"`
	Reason  string    `json:"reason"`
	Created time.Time `json:"created"`
}

type walletRecord struct {
	Owner        string     `json:"owner"`
	Transactions []txRecord `json:"transactions,omitempty"`
}

type snapshot struct {
	NextPostID int64          `json:"next_post_id"`
	Users      []userRecord   `json:"users,omitempty"`
	Follows    []followRecord `json:"follows,omitempty"`
	Posts      []postRecord   `json:"posts,omitempty"`
	Wallets    []walletRecord `json:"wallets,omitempty"`
}

// Save writes the current store state to path. Entities are snapshotted one
// at a time, so a save taken while the server is live is internally
// consistent per entity but not a global point-in-time cut; that is enough
// for a crash-recovery snapshot.
func Save(path string, s *store.Store) error {
	snap := capture(s)

	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding snapshot: %w", err)
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("creating temp snapshot: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("writing snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("closing snapshot: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replacing snapshot: %w", err)
	}
	return nil
}

// Load rebuilds the store from the snapshot at path. A missing file is a
// clean first boot, not an error.
func Load(path string, s *store.Store) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("reading snapshot: %w", err)
	}

	var snap snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return fmt.Errorf("decoding snapshot: %w", err)
	}

	for _, u := range snap.Users {
		s.RestoreUser(&models.User{
			Username: u.Username, Digest: u.Digest, Tags: u.Tags, Created: u.Created,
		})
	}
	for _, f := range snap.Follows {
		s.RestoreFollow(f.Follower, f.Followee)
	}
	for _, p := range snap.Posts {
		votes := make([]models.Vote, 0, len(p.Votes))
		for _, v := range p.Votes {
			votes = append(votes, models.Vote{Author: v.Author, Value: v.Value, Created: v.Created})
		}
		comments := make([]models.Comment, 0, len(p.Comments))
		for _, c := range p.Comments {
			comments = append(comments, models.Comment{Author: c.Author, Text: c.Text, Created: c.Created})
		}
		s.RestorePost(models.RestorePost(
			p.ID, p.Author, p.Title, p.Content, p.Created,
			votes, comments, p.Rewins, p.Passes,
		))
	}
	for _, w := range snap.Wallets {
		txs := make([]models.Transaction, 0, len(w.Transactions))
		for _, tx := range w.Transactions {
			txs = append(txs, models.Transaction{Amount: tx.Amount, Reason: tx.Reason, Created: tx.Created})
		}
		s.RestoreWallet(models.RestoreWallet(w.Owner, txs))
	}
	s.SetNextPostID(snap.NextPostID)
	return nil
}

// Loop saves every interval until ctx is cancelled, then takes one final
// snapshot so a clean shutdown never loses state.
func Loop(ctx context.Context, path string, s *store.Store, interval time.Duration, logger logging.Logger) {
	log := logger.With("module", "persist")
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := Save(path, s); err != nil {
				log.Error(ctx, "snapshot failed", "error", err.Error())
			}
		case <-ctx.Done():
			if err := Save(path, s); err != nil {
				log.Error(context.Background(), "final snapshot failed", "error", err.Error())
				return
			}
			log.Info(context.Background(), "final snapshot written", "path", path)
			return
		}
	}
}

// capture turns live state into snapshot records, sorted so consecutive
// snapshots of the same state are byte-identical.
func capture(s *store.Store) snapshot {
	var snap snapshot
	snap.NextPostID = s.NextPostID()

	for _, u := range s.Users() {
		snap.Users = append(snap.Users, userRecord{
			Username: u.Username, Digest: u.Digest, Tags: u.Tags, Created: u.Created,
		})
		for _, followee := range s.Following(u.Username) {
			snap.Follows = append(snap.Follows, followRecord{Follower: u.Username, Followee: followee})
		}
	}
	sort.Slice(snap.Users, func(i, j int) bool { return snap.Users[i].Username < snap.Users[j].Username })
	sort.Slice(snap.Follows, func(i, j int) bool {
		a, b := snap.Follows[i], snap.Follows[j]
		if a.Follower != b.Follower {
			return a.Follower < b.Follower
		}
		return a.Followee < b.Followee
	})

	for _, p := range s.Posts() {
		rec := postRecord{
			ID: p.ID, Author: p.Author, Title: p.Title, Content: p.Content,
			Created: p.Created, Passes: p.Passes(),
		}
		for _, v := range p.Votes() {
			rec.Votes = append(rec.Votes, voteRecord{Author: v.Author, Value: v.Value, Created: v.Created})
		}
		sort.Slice(rec.Votes, func(i, j int) bool { return rec.Votes[i].Author < rec.Votes[j].Author })
		for _, c := range p.Comments() {
			rec.Comments = append(rec.Comments, commentRecord{Author: c.Author, Text: c.Text, Created: c.Created})
		}
		rec.Rewins = p.Rewins()
		sort.Strings(rec.Rewins)
		snap.Posts = append(snap.Posts, rec)
	}
	sort.Slice(snap.Posts, func(i, j int) bool { return snap.Posts[i].ID < snap.Posts[j].ID })

	for _, w := range s.Wallets() {
		rec := walletRecord{Owner: w.Owner}
		for _, tx := range w.Transactions() {
			rec.Transactions = append(rec.Transactions, txRecord{Amount: tx.Amount, Reason: tx.Reason, Created: tx.Created})
		}
		snap.Wallets = append(snap.Wallets, rec)
	}
	sort.Slice(snap.Wallets, func(i, j int) bool { return snap.Wallets[i].Owner < snap.Wallets[j].Owner })

	return snap
}
