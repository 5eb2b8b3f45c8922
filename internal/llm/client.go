package llm

import (
	"context"
)

// Client is a minimal text-generation surface. The label proposer is the
// only consumer and needs nothing beyond one prompt/response turn.
type Client interface {
	Generate(ctx context.Context, prompt string) (string, error)
}
