package bulk

import (
	"context"

	"github.com/mmcdole/sbx/internal/fanout"
)

// Strategy executes a confirmed batch over a list of entity ids
type Strategy interface {
	Execute(ctx context.Context, ids []int64) error
}

// StrategyFunc adapts a function to Strategy
type StrategyFunc func(ctx context.Context, ids []int64) error

func (f StrategyFunc) Execute(ctx context.Context, ids []int64) error { return f(ctx, ids) }

// PerEntity issues one call per id, all at once. The batch fails with the
// first failing call's error once every call has settled; calls that
// already succeeded are not undone.
func PerEntity(fn func(ctx context.Context, id int64) error) Strategy {
	return StrategyFunc(func(ctx context.Context, ids []int64) error {
		return fanout.Each(ctx, ids, fn)
	})
}

// SingleBatch hands the whole id list to one call
func SingleBatch(fn func(ctx context.Context, ids []int64) error) Strategy {
	return StrategyFunc(fn)
}
