package activity

import (
	"context"

	"github.com/bizvet/bizvet/internal/domain"
)

// Completer produces chat completions.
type Completer interface {
	Complete(ctx context.Context, req domain.CompletionRequest) (string, error)
}
