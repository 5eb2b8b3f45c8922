// Package enrich fills missing place data onto fetched records by calling
// the external lookup service, with retry and a fixed inter-call pause.
package enrich

import (
	"context"
	"strings"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/agenthands/cobalt/internal/core/model"
	"github.com/agenthands/cobalt/internal/places"
	"github.com/agenthands/cobalt/internal/retry"
)

// hotelFields are scanned for hotel wording; hotel accounts are out of the
// product's market and never sent to the lookup service.
var hotelFields = []string{"Restaurant_Type__c", "Type", "Industry", "Account_Type__c", "Business_Type__c"}

// locationFields are assembled, in order, into the lookup's location hint.
var locationFields = []string{"location", "BillingCity", "BillingCountry", "City", "Country"}

// queryLocalityFields extend a name-based free-text query.
var queryLocalityFields = []string{"BillingCity", "BillingCountry", "City", "Country", "Phone"}

// Options bound one enrichment run.
type Options struct {
	Workers          int
	Policy           retry.Policy
	ProgressInterval int
}

type Enricher struct {
	searcher places.Searcher
	log      *zap.Logger
	now      func() time.Time
}

func NewEnricher(searcher places.Searcher, log *zap.Logger) *Enricher {
	if log == nil {
		log = zap.NewNop()
	}
	return &Enricher{searcher: searcher, log: log, now: time.Now}
}

// Enrich looks up place data for every eligible record and merges the
// results back onto clones of the originals. Ineligible records keep an
// empty result and pass through unchanged; lookup failures degrade to
// empty results after the retry budget is spent.
func (e *Enricher) Enrich(ctx context.Context, records []model.Record, opts Options) []model.Record {
	workers := opts.Workers
	if workers <= 0 {
		workers = 5
	}
	interval := opts.ProgressInterval
	if interval <= 0 {
		interval = 250
	}

	type job struct {
		index int
		rec   model.Record
	}
	var jobs []job
	results := make([]model.EnrichmentResult, len(records))
	for i, rec := range records {
		if ShouldEnrich(rec) {
			jobs = append(jobs, job{index: i, rec: rec})
		} else {
			results[i] = model.EnrichmentResult{}
		}
	}
	e.log.Info("starting enrichment run",
		zap.Int("rows", len(records)),
		zap.Int("eligible", len(jobs)),
		zap.Int("skipped", len(records)-len(jobs)),
		zap.Int("workers", workers))

	var completed atomic.Int64
	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for _, j := range jobs {
		j := j
		g.Go(func() error {
			results[j.index] = e.lookup(gCtx, j.rec, opts.Policy)
			if n := completed.Add(1); n%int64(interval) == 0 {
				e.log.Info("enrichment progress", zap.Int64("completed", n), zap.Int("total", len(jobs)))
			}
			return nil
		})
	}
	_ = g.Wait()

	out := make([]model.Record, len(records))
	for i, rec := range records {
		merged := rec.Clone()
		for k, v := range results[i] {
			if v == nil {
				continue
			}
			merged[k] = v
		}
		out[i] = merged
	}
	e.log.Info("enrichment complete", zap.Int("processed", len(jobs)))
	return out
}

// lookup runs one retried search. Exhausting the retry budget is not an
// error for the run; the record just stays unenriched.
func (e *Enricher) lookup(ctx context.Context, rec model.Record, policy retry.Policy) model.EnrichmentResult {
	req, ok := BuildRequest(rec)
	if !ok {
		return model.EnrichmentResult{}
	}
	log := e.log.With(zap.String("id", rec.ID()))

	var result model.EnrichmentResult
	err := policy.Do(ctx, log, func(ctx context.Context) error {
		tree, searchErr := e.searcher.Search(ctx, req)
		if searchErr != nil {
			return searchErr
		}
		result = ParseResult(tree, e.now())
		return nil
	})
	if err != nil {
		log.Warn("lookup failed after retries", zap.Error(err))
		return model.EnrichmentResult{}
	}
	return result
}

// ShouldEnrich reports whether a record belongs in the lookup workload:
// no known place identifier yet, and no hotel wording in the type-ish
// fields or the name.
func ShouldEnrich(rec model.Record) bool {
	for _, f := range model.PlaceIDFields {
		if rec.Has(f) {
			return false
		}
	}
	for _, f := range hotelFields {
		if strings.Contains(strings.ToLower(rec.GetString(f)), "hotel") {
			return false
		}
	}
	return !strings.Contains(strings.ToLower(rec.GetString("Name")), "hotel")
}

// BuildRequest derives the lookup key for a record: an explicit place id
// first, then the website, then name plus locality fields. Records with
// none of those are skipped.
func BuildRequest(rec model.Record) (places.SearchRequest, bool) {
	req := places.SearchRequest{Location: buildLocation(rec)}
	for _, f := range []string{"Google_Place_ID__c", "Google_Place_ID", "place_id"} {
		if v := rec.GetString(f); v != "" {
			req.PlaceID = v
			return req, true
		}
	}
	if site := rec.GetString("Website"); site != "" {
		req.Query = site
		return req, true
	}
	name := rec.GetString("Name")
	if name == "" {
		return places.SearchRequest{}, false
	}
	parts := []string{name}
	for _, f := range queryLocalityFields {
		if v := rec.GetString(f); v != "" {
			parts = append(parts, v)
		}
	}
	req.Query = strings.Join(parts, " ")
	return req, true
}

func buildLocation(rec model.Record) string {
	var parts []string
	for _, f := range locationFields {
		if v := rec.GetString(f); v != "" {
			parts = append(parts, v)
		}
	}
	return strings.Join(parts, ", ")
}
