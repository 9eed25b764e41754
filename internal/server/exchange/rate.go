// Package exchange samples the wincoin -> BTC conversion rate used by the
// walletbtc display. The rate is a random decimal fraction, not a market
// price.
package exchange

import (
	"context"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"
)

// RateSource produces one conversion rate sample per call.
type RateSource interface {
	Rate(ctx context.Context) (float64, error)
}

const randomOrgURL = "https://www.random.org/decimal-fractions/?num=1&dec=10&col=1&format=plain&rnd=new"

// RandomOrg fetches a decimal fraction from random.org.
type RandomOrg struct {
	client *http.Client
	url    string
}

func NewRandomOrg() *RandomOrg {
	return &RandomOrg{
		client: &http.Client{Timeout: 5 * time.Second},
		url:    randomOrgURL,
	}
}

func (r *RandomOrg) Rate(ctx context.Context) (float64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.url, nil)
	if err != nil {
		return 0, err
	}
	resp, err := r.client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("exchange: unexpected status %s", resp.Status)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, 64))
	if err != nil {
		return 0, err
	}
	return strconv.ParseFloat(strings.TrimSpace(string(body)), 64)
}

// LocalRand draws the rate from a local PRNG. It backs RandomOrg up when
// the network source fails and stands in for it in tests.
type LocalRand struct {
	mu  sync.Mutex
	rng *rand.Rand
}

func NewLocalRand() *LocalRand {
	return &LocalRand{rng: rand.New(rand.NewSource(time.Now().UnixNano()))}
}

func (l *LocalRand) Rate(ctx context.Context) (float64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.rng.Float64(), nil
}

// Fallback tries the primary source and falls back to the secondary when
// the primary errors.
type Fallback struct {
	Primary   RateSource
	Secondary RateSource
}

func (f *Fallback) Rate(ctx context.Context) (float64, error) {
	if v, err := f.Primary.Rate(ctx); err == nil {
		return v, nil
	}
	return f.Secondary.Rate(ctx)
}
