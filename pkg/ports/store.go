package ports

import (
	"context"

	"github.com/avells/cadre/pkg/domain"
)

// RunStore persists finished run records. The engine itself only ever
// appends; pruning is an adapter concern (e.g. TTLs on the Redis store).
type RunStore interface {
	Save(ctx context.Context, rec domain.RunRecord) error
	Load(ctx context.Context, id string) (domain.RunRecord, error)
	List(ctx context.Context) ([]string, error)
	Delete(ctx context.Context, id string) error
}
