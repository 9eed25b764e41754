package exchange

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRandomOrg_ParsesPlainBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("0.1234567890\n"))
	}))
	defer srv.Close()

	src := NewRandomOrg()
	src.url = srv.URL

	v, err := src.Rate(context.Background())
	require.NoError(t, err)
	assert.InDelta(t, 0.123456789, v, 1e-12)
}

func TestRandomOrg_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	src := NewRandomOrg()
	src.url = srv.URL

	_, err := src.Rate(context.Background())
	assert.Error(t, err)
}

func TestLocalRand_InUnitRange(t *testing.T) {
	src := NewLocalRand()
	for i := 0; i < 100; i++ {
		v, err := src.Rate(context.Background())
		require.NoError(t, err)
		assert.GreaterOrEqual(t, v, 0.0)
		assert.Less(t, v, 1.0)
	}
}

type failingSource struct{}

func (failingSource) Rate(context.Context) (float64, error) {
	return 0, errors.New("unreachable")
}

type fixedSource struct{ v float64 }

func (f fixedSource) Rate(context.Context) (float64, error) { return f.v, nil }

func TestFallback(t *testing.T) {
	f := &Fallback{Primary: fixedSource{0.5}, Secondary: fixedSource{0.9}}
	v, err := f.Rate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0.5, v)

	f = &Fallback{Primary: failingSource{}, Secondary: fixedSource{0.9}}
	v, err = f.Rate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0.9, v)
}
