package registry

import (
	"context"

	"github.com/bizvet/bizvet/internal/domain"
)

// Registry searches the corporate registry and resolves hit addresses.
type Registry interface {
	Search(ctx context.Context, name string) ([]domain.RegistryHit, error)
	Address(ctx context.Context, registrationIndex string) (string, error)
}
