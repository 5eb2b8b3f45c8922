// Package crm is the record store layer: a thin SOQL/REST client for the
// CRM holding Account records, behind an interface the pipeline stages and
// their tests share.
package crm

import (
	"context"
	"errors"

	"github.com/agenthands/cobalt/internal/core/model"
)

// ErrMalformedQuery marks a query rejected by the store because of an
// unrecognized field or bad syntax. The fetcher recovers from it by
// re-describing the schema and filtering its field list.
var ErrMalformedQuery = errors.New("malformed query")

// ErrAuthFailed marks a rejected login. Fatal at startup; nothing retries it.
var ErrAuthFailed = errors.New("authentication failed")

// Store is the remote record store. Query runs a SOQL statement and returns
// all pages of results. Describe returns the set of valid field names for
// an object. Update/UpdateBatch/Delete are the write surface.
type Store interface {
	Query(ctx context.Context, soql string) ([]model.Record, error)
	Describe(ctx context.Context, object string) (map[string]bool, error)
	Update(ctx context.Context, object, id string, fields map[string]any) error
	UpdateBatch(ctx context.Context, object string, records []map[string]any) error
	Delete(ctx context.Context, object, id string) error
}
