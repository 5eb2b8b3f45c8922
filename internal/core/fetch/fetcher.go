// Package fetch pulls complete records out of the store by running one
// bounded query per (field chunk, id batch) pair and folding the partial
// rows back together by identifier.
package fetch

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/agenthands/cobalt/internal/core/model"
	"github.com/agenthands/cobalt/internal/crm"
)

const (
	DefaultChunkSize   = 40
	DefaultIDBatchSize = 200
	DefaultWorkers     = 5
)

// Options bound one fetch run. Limit 0 means unfiltered (only safe for
// small datasets). Zero values fall back to the defaults above.
type Options struct {
	Limit       int
	ChunkSize   int
	IDBatchSize int
	Workers     int
}

type Fetcher struct {
	store  crm.Store
	object string
	fields []string
	log    *zap.Logger
}

func NewFetcher(store crm.Store, object string, fields []string, log *zap.Logger) *Fetcher {
	if log == nil {
		log = zap.NewNop()
	}
	return &Fetcher{store: store, object: object, fields: fields, log: log}
}

// task is one remote query: a field chunk, optionally bounded to an id batch.
type task struct {
	fields  []string
	idBatch []string
}

// Fetch resolves the target identifiers (when limited), builds the chunk ×
// batch task set, runs it across a bounded pool, and merges the partial
// rows into one record per identifier. Task failures degrade to empty
// partials; the merge itself is a single-threaded fold over task results.
func (f *Fetcher) Fetch(ctx context.Context, opts Options) ([]model.Record, error) {
	chunkSize := opts.ChunkSize
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	idBatchSize := opts.IDBatchSize
	if idBatchSize <= 0 {
		idBatchSize = DefaultIDBatchSize
	}
	workers := opts.Workers
	if workers <= 0 {
		workers = DefaultWorkers
	}

	var idBatches [][]string
	if opts.Limit > 0 {
		ids, err := f.resolveIDs(ctx, opts.Limit)
		if err != nil {
			return nil, err
		}
		if len(ids) == 0 {
			return nil, nil
		}
		idBatches = chunk(ids, idBatchSize)
	}

	fieldsNoID := make([]string, 0, len(f.fields))
	for _, fld := range f.fields {
		if fld != model.IDField {
			fieldsNoID = append(fieldsNoID, fld)
		}
	}
	chunks := chunk(fieldsNoID, chunkSize)

	var tasks []task
	if len(idBatches) > 0 {
		for _, idb := range idBatches {
			for _, c := range chunks {
				tasks = append(tasks, task{fields: c, idBatch: idb})
			}
		}
	} else {
		for _, c := range chunks {
			tasks = append(tasks, task{fields: c})
		}
	}
	f.log.Info("fetching records",
		zap.Int("field_chunks", len(chunks)),
		zap.Int("id_batches", len(idBatches)),
		zap.Int("tasks", len(tasks)),
		zap.Int("workers", workers))

	partials := make([][]model.Record, len(tasks))
	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, t := range tasks {
		i, t := i, t
		g.Go(func() error {
			partials[i] = f.runTask(gCtx, t)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	merged := model.MergeSets(partials...)
	if opts.Limit > 0 && len(merged) > opts.Limit {
		merged = merged[:opts.Limit]
	}
	f.log.Info("fetch complete", zap.Int("records", len(merged)))
	return merged, nil
}

func (f *Fetcher) resolveIDs(ctx context.Context, limit int) ([]string, error) {
	recs, err := f.store.Query(ctx, crm.BuildIDSelect(f.object, limit))
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(recs))
	for _, r := range recs {
		if id := r.ID(); id != "" {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

// runTask issues one chunk query. A malformed-query response triggers one
// schema re-describe and a retry with the unrecognized names dropped; any
// other failure degrades to an empty partial so one bad chunk cannot sink
// the pool.
func (f *Fetcher) runTask(ctx context.Context, t task) []model.Record {
	recs, err := f.store.Query(ctx, crm.BuildSelect(f.object, t.fields, t.idBatch))
	if err == nil {
		return recs
	}
	if !errors.Is(err, crm.ErrMalformedQuery) {
		f.log.Warn("chunk query failed", zap.Error(err))
		return nil
	}

	valid, descErr := f.store.Describe(ctx, f.object)
	if descErr != nil {
		f.log.Warn("schema describe failed after malformed query", zap.Error(descErr))
		return nil
	}
	filtered := make([]string, 0, len(t.fields))
	for _, fld := range t.fields {
		if valid[fld] {
			filtered = append(filtered, fld)
		}
	}
	f.log.Info("retrying chunk with schema-filtered fields",
		zap.Int("requested", len(t.fields)),
		zap.Int("valid", len(filtered)))
	if len(filtered) == 0 {
		return nil
	}
	recs, err = f.store.Query(ctx, crm.BuildSelect(f.object, filtered, t.idBatch))
	if err != nil {
		f.log.Warn("filtered chunk query failed", zap.Error(err))
		return nil
	}
	return recs
}
