package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/tickerpulse/internal/common"
	"github.com/ternarybob/tickerpulse/internal/models"
	storage "github.com/ternarybob/tickerpulse/internal/storage/badger"
)

func newTestCache(t *testing.T, ttl time.Duration) (*Service, func(time.Time)) {
	t.Helper()

	logger := common.GetLogger()
	db, err := storage.NewBadgerDB(logger, &common.BadgerConfig{InMemory: true})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	svc := NewService(db.DB(), ttl, logger)

	current := time.Now()
	svc.now = func() time.Time { return current }
	setNow := func(tm time.Time) { current = tm }

	return svc, setNow
}

func testResult(ticker string) *models.AnalysisResult {
	return &models.AnalysisResult{
		Ticker:  ticker,
		Summary: "Latest on " + ticker,
		Articles: []models.Article{
			{Title: ticker + " climbs", Link: "https://example.com/1", PublishedAt: time.Now().UTC()},
		},
	}
}

func TestService_PutThenGet(t *testing.T) {
	svc, _ := newTestCache(t, 5*time.Minute)

	want := testResult("AAPL")
	require.NoError(t, svc.Put("AAPL", want))

	got, ok := svc.Get("AAPL")
	require.True(t, ok, "expected cache hit immediately after put")
	assert.Equal(t, want.Ticker, got.Ticker)
	assert.Equal(t, want.Summary, got.Summary)
	assert.Len(t, got.Articles, 1)
}

func TestService_GetMiss(t *testing.T) {
	svc, _ := newTestCache(t, 5*time.Minute)

	_, ok := svc.Get("TSLA")
	assert.False(t, ok)
}

func TestService_TTLExpiry(t *testing.T) {
	svc, setNow := newTestCache(t, 5*time.Minute)

	start := time.Now()
	setNow(start)
	require.NoError(t, svc.Put("MSFT", testResult("MSFT")))

	// One tick short of the TTL is still a hit.
	setNow(start.Add(5*time.Minute - time.Second))
	_, ok := svc.Get("MSFT")
	assert.True(t, ok)

	// At exactly the TTL the entry is absent and lazily evicted.
	setNow(start.Add(5 * time.Minute))
	_, ok = svc.Get("MSFT")
	assert.False(t, ok)

	// Still absent after eviction.
	_, ok = svc.Get("MSFT")
	assert.False(t, ok)
}

func TestService_PutReplacesAndResetsAge(t *testing.T) {
	svc, setNow := newTestCache(t, 5*time.Minute)

	start := time.Now()
	setNow(start)
	require.NoError(t, svc.Put("NVDA", testResult("NVDA")))

	// Overwrite near the end of the first entry's life.
	setNow(start.Add(4 * time.Minute))
	replacement := testResult("NVDA")
	replacement.Summary = "Refreshed summary"
	require.NoError(t, svc.Put("NVDA", replacement))

	// Past the original entry's expiry, the replacement is still live.
	setNow(start.Add(6 * time.Minute))
	got, ok := svc.Get("NVDA")
	require.True(t, ok)
	assert.Equal(t, "Refreshed summary", got.Summary)
}

func TestService_EmptyArticleResultsAreCacheable(t *testing.T) {
	svc, _ := newTestCache(t, 5*time.Minute)

	empty := &models.AnalysisResult{Ticker: "ZZZZZ", Summary: "No recent news found.", Articles: []models.Article{}}
	require.NoError(t, svc.Put("ZZZZZ", empty))

	got, ok := svc.Get("ZZZZZ")
	require.True(t, ok)
	assert.Empty(t, got.Articles)
}

func TestService_Sweep(t *testing.T) {
	svc, setNow := newTestCache(t, 5*time.Minute)

	start := time.Now()
	setNow(start)
	require.NoError(t, svc.Put("AAPL", testResult("AAPL")))
	require.NoError(t, svc.Put("MSFT", testResult("MSFT")))

	setNow(start.Add(3 * time.Minute))
	require.NoError(t, svc.Put("GOOG", testResult("GOOG")))

	// AAPL and MSFT have expired, GOOG has not.
	setNow(start.Add(6 * time.Minute))
	deleted := svc.Sweep()
	assert.Equal(t, 2, deleted)

	_, ok := svc.Get("GOOG")
	assert.True(t, ok)
	_, ok = svc.Get("AAPL")
	assert.False(t, ok)
}
