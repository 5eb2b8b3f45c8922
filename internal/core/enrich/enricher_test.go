package enrich

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agenthands/cobalt/internal/core/model"
	"github.com/agenthands/cobalt/internal/places"
	"github.com/agenthands/cobalt/internal/retry"
)

// mockSearcher returns a canned tree after a configurable number of
// failures, recording every request it sees.
type mockSearcher struct {
	mu       sync.Mutex
	requests []places.SearchRequest
	failures int
	tree     map[string]any
}

func (m *mockSearcher) Search(ctx context.Context, req places.SearchRequest) (map[string]any, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests = append(m.requests, req)
	if m.failures > 0 {
		m.failures--
		return nil, fmt.Errorf("rate limited")
	}
	return m.tree, nil
}

func fastRetry(attempts int) retry.Policy {
	return retry.Policy{MaxAttempts: attempts, BaseDelay: time.Millisecond, Multiplier: 2}
}

func TestShouldEnrich(t *testing.T) {
	assert.True(t, ShouldEnrich(model.Record{"Id": "a1", "Name": "Chez Marcel"}))
	assert.False(t, ShouldEnrich(model.Record{"Id": "a1", "Google_Place_ID__c": "pid"}))
	assert.False(t, ShouldEnrich(model.Record{"Id": "a1", "Google_Data_ID__c": "did"}))
	assert.False(t, ShouldEnrich(model.Record{"Id": "a1", "Name": "Grand Hotel Brasserie"}))
	assert.False(t, ShouldEnrich(model.Record{"Id": "a1", "Name": "Chez Marcel", "Industry": "Hotels"}))
}

func TestBuildRequestPriority(t *testing.T) {
	req, ok := BuildRequest(model.Record{"Google_Place_ID__c": "pid", "Website": "x.example"})
	require.True(t, ok)
	assert.Equal(t, "pid", req.PlaceID)
	assert.Empty(t, req.Query)

	req, ok = BuildRequest(model.Record{"Website": "x.example", "Name": "X"})
	require.True(t, ok)
	assert.Equal(t, "x.example", req.Query)

	req, ok = BuildRequest(model.Record{"Name": "Chez Marcel", "BillingCity": "Lyon", "BillingCountry": "France"})
	require.True(t, ok)
	assert.Equal(t, "Chez Marcel Lyon France", req.Query)
	assert.Equal(t, "Lyon, France", req.Location)

	_, ok = BuildRequest(model.Record{"Id": "a1"})
	assert.False(t, ok)
}

func TestEnrichSkipsRecordsWithPlaceID(t *testing.T) {
	searcher := &mockSearcher{tree: map[string]any{"place_id": "new-pid"}}
	e := NewEnricher(searcher, nil)

	records := []model.Record{
		{"Id": "a1", "Name": "Chez Marcel", "Google_Place_ID__c": "existing-pid"},
		{"Id": "a2", "Name": "Cantina", "BillingCity": "Lyon"},
	}
	out := e.Enrich(context.Background(), records, Options{Policy: fastRetry(1)})

	require.Len(t, out, 2)
	// The record with an id must pass through untouched, with no lookup.
	assert.Equal(t, "existing-pid", out[0].GetString("Google_Place_ID__c"))
	require.Len(t, searcher.requests, 1)
	assert.Contains(t, searcher.requests[0].Query, "Cantina")
	assert.Equal(t, "new-pid", out[1].GetString("Google_Place_ID__c"))
}

func TestEnrichRetriesThenSucceeds(t *testing.T) {
	searcher := &mockSearcher{failures: 2, tree: map[string]any{"place_id": "pid-3", "rating": 4.2}}
	e := NewEnricher(searcher, nil)

	out := e.Enrich(context.Background(), []model.Record{{"Id": "a1", "Name": "Cantina"}}, Options{
		Policy: fastRetry(3),
	})

	require.Len(t, searcher.requests, 3)
	assert.Equal(t, "pid-3", out[0].GetString("Google_Place_ID__c"))
	assert.Equal(t, "4.2", out[0].GetString("Google_Rating__c"))
}

func TestEnrichExhaustedRetriesLeaveRecordUnchanged(t *testing.T) {
	searcher := &mockSearcher{failures: 99}
	e := NewEnricher(searcher, nil)

	records := []model.Record{{"Id": "a1", "Name": "Cantina", "Phone": "555"}}
	out := e.Enrich(context.Background(), records, Options{Policy: fastRetry(2)})

	require.Len(t, searcher.requests, 2)
	assert.False(t, out[0].Has("Google_Place_ID__c"))
	assert.Equal(t, "555", out[0].GetString("Phone"))
}

func TestEnrichDoesNotMutateOriginals(t *testing.T) {
	searcher := &mockSearcher{tree: map[string]any{"place_id": "pid"}}
	e := NewEnricher(searcher, nil)

	original := model.Record{"Id": "a1", "Name": "Cantina"}
	out := e.Enrich(context.Background(), []model.Record{original}, Options{Policy: fastRetry(1)})

	assert.False(t, original.Has("Google_Place_ID__c"))
	assert.True(t, out[0].Has("Google_Place_ID__c"))
}
