// Package rewards implements the periodic reward engine: every interval it
// scans all posts, turns engagement newer than the previous pass into a
// per-post gain, splits that gain between the author and the curators, and
// broadcasts the aggregate amount.
package rewards

import (
	"context"
	"fmt"
	"math"
	"time"

	"winsome/internal/logging"
	"winsome/internal/server/models"
)

// Graph is the slice of the store the engine needs: post enumeration, a
// liveness check, and lazy wallet access.
type Graph interface {
	Posts() []*models.Post
	GetPost(id int64) (*models.Post, bool)
	Wallet(username string) *models.Wallet
}

// Broadcaster pushes the formatted aggregate reward of a pass to every
// listening party.
type Broadcaster interface {
	Broadcast(msg string)
}

// Engine runs as a single background loop, independent of the connection
// handlers, serialized against them only by the store's own concurrency
// discipline.
type Engine struct {
	graph       Graph
	broadcaster Broadcaster
	logger      logging.Logger

	interval       time.Duration
	authorPercent  int
	curatorPercent int

	decimals int
	singular string
	plural   string

	lastCheck time.Time
}

// Config carries the engine's startup parameters. AuthorPercent and
// CuratorPercent must sum to 100; the caller validates that before the
// engine is built.
type Config struct {
	Interval         time.Duration
	AuthorPercent    int
	CuratorPercent   int
	CurrencyDecimals int
	CurrencySingular string
	CurrencyPlural   string
}

func NewEngine(graph Graph, broadcaster Broadcaster, cfg Config, logger logging.Logger) *Engine {
	return &Engine{
		graph:          graph,
		broadcaster:    broadcaster,
		logger:         logger.With("module", "rewards"),
		interval:       cfg.Interval,
		authorPercent:  cfg.AuthorPercent,
		curatorPercent: cfg.CuratorPercent,
		decimals:       cfg.CurrencyDecimals,
		singular:       cfg.CurrencySingular,
		plural:         cfg.CurrencyPlural,
		lastCheck:      time.Now(),
	}
}

// Run wakes every interval and executes one pass, until ctx is cancelled.
func (e *Engine) Run(ctx context.Context) {
	e.logger.Info(ctx, "reward engine started", "interval", e.interval.String())
	ticker := time.NewTicker(e.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			e.logger.Info(ctx, "reward engine stopped")
			return
		case now := <-ticker.C:
			total := e.runPass(now)
			if total != 0 {
				e.logger.Debug(ctx, "reward pass distributed", "total", total)
			}
		}
	}
}

// runPass evaluates every current post against the window [lastCheck, now),
// credits wallets, broadcasts the aggregate when nonzero, and advances the
// window. Exposed to tests through the now parameter.
func (e *Engine) runPass(now time.Time) float64 {
	since := e.lastCheck

	var total float64
	for _, p := range e.graph.Posts() {
		gain, curators := e.evaluate(p, since)
		total += gain
		if gain == 0 || len(curators) == 0 {
			continue
		}
		// the post may have been deleted since enumeration; skip silently
		if _, ok := e.graph.GetPost(p.ID); !ok {
			continue
		}
		e.distribute(p, gain, curators)
	}

	if total != 0 {
		e.broadcaster.Broadcast(FormatAmount(total, e.decimals, e.singular, e.plural))
	}
	e.lastCheck = now
	return total
}

// evaluate computes a post's gain for votes and comments at or after since.
//
//	voteTerm    = ln(max(sum of recent vote values, 0) + 1)
//	commentTerm = ln(sum over recent commenters of 2/(1+e^-(c-1)) + 1)
//	              with c the commenter's total comment count on the post
//	gain        = (voteTerm + commentTerm) / n
//
// n is the post's pass counter, incremented exactly once here, so repeat
// passes over the same engagement decay toward zero. Curators are the
// authors of the counted votes plus the counted commenters.
func (e *Engine) evaluate(p *models.Post, since time.Time) (float64, map[string]struct{}) {
	curators := make(map[string]struct{})

	voteSum := 0
	for _, v := range p.Votes() {
		if v.Created.Before(since) {
			continue
		}
		voteSum += v.Value
		curators[v.Author] = struct{}{}
	}
	if voteSum < 0 {
		voteSum = 0
	}
	voteTerm := math.Log(float64(voteSum) + 1)

	totalByAuthor := make(map[string]int)
	recent := make(map[string]struct{})
	for _, c := range p.Comments() {
		totalByAuthor[c.Author]++
		if !c.Created.Before(since) {
			recent[c.Author] = struct{}{}
		}
	}
	var acc float64
	for author := range recent {
		c := float64(totalByAuthor[author])
		acc += 2 / (1 + math.Exp(-(c - 1)))
		curators[author] = struct{}{}
	}
	commentTerm := math.Log(acc + 1)

	n := p.NextPass()
	return (voteTerm + commentTerm) / float64(n), curators
}

// distribute credits the author's and each curator's wallet with their share
// of gain, one transaction each.
func (e *Engine) distribute(p *models.Post, gain float64, curators map[string]struct{}) {
	reason := fmt.Sprintf("reward for post %d", p.ID)

	share := gain * float64(e.curatorPercent) / 100 / float64(len(curators))
	for curator := range curators {
		e.graph.Wallet(curator).Credit(share, reason)
	}
	e.graph.Wallet(p.Author).Credit(gain*float64(e.authorPercent)/100, reason)
}
