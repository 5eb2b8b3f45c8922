package fetch

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agenthands/cobalt/internal/core/model"
	"github.com/agenthands/cobalt/internal/crm"
)

// mockStore serves queries from an in-memory table by parsing the SOQL the
// fetcher builds, so chunking really restricts the returned columns.
type mockStore struct {
	mu       sync.Mutex
	order    []string
	table    map[string]model.Record
	schema   map[string]bool // nil means every field is valid
	queries  []string
	describe int
}

func newMockStore(rows ...model.Record) *mockStore {
	s := &mockStore{table: map[string]model.Record{}}
	for _, r := range rows {
		s.order = append(s.order, r.ID())
		s.table[r.ID()] = r
	}
	return s
}

func (s *mockStore) Query(ctx context.Context, soql string) ([]model.Record, error) {
	s.mu.Lock()
	s.queries = append(s.queries, soql)
	s.mu.Unlock()

	fields, idFilter, limit, err := parseSOQL(soql)
	if err != nil {
		return nil, err
	}
	if s.schema != nil {
		for _, f := range fields {
			if f != model.IDField && !s.schema[f] {
				return nil, fmt.Errorf("%w: no such column '%s'", crm.ErrMalformedQuery, f)
			}
		}
	}

	var out []model.Record
	for _, id := range s.order {
		if idFilter != nil && !idFilter[id] {
			continue
		}
		row := model.Record{model.IDField: id}
		for _, f := range fields {
			if v, ok := s.table[id][f]; ok {
				row[f] = v
			}
		}
		out = append(out, row)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

func (s *mockStore) Describe(ctx context.Context, object string) (map[string]bool, error) {
	s.mu.Lock()
	s.describe++
	s.mu.Unlock()
	return s.schema, nil
}

func (s *mockStore) Update(ctx context.Context, object, id string, fields map[string]any) error {
	return nil
}

func (s *mockStore) UpdateBatch(ctx context.Context, object string, records []map[string]any) error {
	return nil
}

func (s *mockStore) Delete(ctx context.Context, object, id string) error {
	return nil
}

func parseSOQL(soql string) (fields []string, idFilter map[string]bool, limit int, err error) {
	rest, ok := strings.CutPrefix(soql, "SELECT ")
	if !ok {
		return nil, nil, 0, fmt.Errorf("unexpected soql: %s", soql)
	}
	cols, rest, ok := strings.Cut(rest, " FROM ")
	if !ok {
		return nil, nil, 0, fmt.Errorf("unexpected soql: %s", soql)
	}
	fields = strings.Split(cols, ", ")

	if i := strings.Index(rest, "WHERE Id IN ("); i >= 0 {
		clause := rest[i+len("WHERE Id IN (") : strings.Index(rest, ")")]
		idFilter = map[string]bool{}
		for _, raw := range strings.Split(clause, ", ") {
			idFilter[strings.Trim(raw, "'")] = true
		}
	}
	if i := strings.Index(rest, "LIMIT "); i >= 0 {
		limit, _ = strconv.Atoi(strings.TrimSpace(rest[i+len("LIMIT "):]))
	}
	return fields, idFilter, limit, nil
}

func triples(records []model.Record) map[string]string {
	out := map[string]string{}
	for _, rec := range records {
		for k, v := range rec {
			if model.IsEmpty(v) {
				continue
			}
			out[rec.ID()+"/"+k] = model.ValueString(v)
		}
	}
	return out
}

var testFields = []string{"Name", "Website", "Phone", "Industry", "BillingCity"}

func testRows() []model.Record {
	var rows []model.Record
	for i := 1; i <= 7; i++ {
		rows = append(rows, model.Record{
			"Id":          fmt.Sprintf("a%d", i),
			"Name":        fmt.Sprintf("Place %d", i),
			"Website":     fmt.Sprintf("p%d.example", i),
			"Phone":       fmt.Sprintf("555-000%d", i),
			"Industry":    "Restaurants",
			"BillingCity": "Paris",
		})
	}
	return rows
}

func TestChunkedFetchMatchesUnchunked(t *testing.T) {
	ctx := context.Background()

	single := NewFetcher(newMockStore(testRows()...), "Account", testFields, nil)
	whole, err := single.Fetch(ctx, Options{ChunkSize: len(testFields)})
	require.NoError(t, err)

	for _, chunkSize := range []int{1, 2, 3} {
		chunked := NewFetcher(newMockStore(testRows()...), "Account", testFields, nil)
		got, err := chunked.Fetch(ctx, Options{ChunkSize: chunkSize, Workers: 3})
		require.NoError(t, err)
		assert.Equal(t, triples(whole), triples(got), "chunk size %d", chunkSize)
	}
}

func TestFetchWithLimitBatchesIDs(t *testing.T) {
	store := newMockStore(testRows()...)
	f := NewFetcher(store, "Account", testFields, nil)

	got, err := f.Fetch(context.Background(), Options{Limit: 3, ChunkSize: 2, IDBatchSize: 2})
	require.NoError(t, err)
	assert.Len(t, got, 3)
	for _, rec := range got {
		assert.NotEmpty(t, rec.ID())
		assert.NotEmpty(t, rec.GetString("Name"))
		assert.NotEmpty(t, rec.GetString("BillingCity"))
	}

	// The id resolution query runs first, then only id-filtered chunks.
	assert.Equal(t, "SELECT Id FROM Account LIMIT 3", store.queries[0])
	for _, q := range store.queries[1:] {
		assert.Contains(t, q, "WHERE Id IN (")
	}
}

func TestFetchRecoversFromUnknownFields(t *testing.T) {
	store := newMockStore(testRows()...)
	store.schema = map[string]bool{"Name": true, "Website": true, "Phone": true, "Industry": true, "BillingCity": true}

	fields := append([]string{"Legacy_Field__c"}, testFields...)
	f := NewFetcher(store, "Account", fields, nil)

	got, err := f.Fetch(context.Background(), Options{ChunkSize: len(fields)})
	require.NoError(t, err)
	require.Len(t, got, 7)
	assert.GreaterOrEqual(t, store.describe, 1)
	for _, rec := range got {
		assert.NotContains(t, rec, "Legacy_Field__c")
		assert.NotEmpty(t, rec.GetString("Name"))
	}
}

func TestFetchChunkWithNoValidFieldsYieldsEmpty(t *testing.T) {
	store := newMockStore(testRows()...)
	store.schema = map[string]bool{}

	f := NewFetcher(store, "Account", []string{"Legacy_Field__c"}, nil)
	got, err := f.Fetch(context.Background(), Options{})
	require.NoError(t, err)
	assert.Empty(t, got)
}
