// Package fanout runs one asynchronous request per input and joins the results.
//
// Every task is started immediately, in input order, without a concurrency
// limit. Joins wait for all tasks to settle: a failing task never cancels the
// others, and the aggregate error is the first one returned.
package fanout

import (
	"context"

	"github.com/sourcegraph/conc/pool"
)

// All calls fn once per input and returns the results in input order.
// If any call fails, All returns the first error to arrive and discards
// the results; the remaining calls still run to completion.
func All[S, T any](ctx context.Context, inputs []S, fn func(context.Context, S) (T, error)) ([]T, error) {
	results := make([]T, len(inputs))
	if len(inputs) == 0 {
		return results, nil
	}

	p := pool.New().WithErrors().WithFirstError()
	for i, in := range inputs {
		p.Go(func() error {
			out, err := fn(ctx, in)
			if err != nil {
				return err
			}
			results[i] = out
			return nil
		})
	}

	if err := p.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// Each calls fn once per input and reports the first error, after every
// call has settled.
func Each[S any](ctx context.Context, inputs []S, fn func(context.Context, S) error) error {
	_, err := All(ctx, inputs, func(ctx context.Context, in S) (struct{}, error) {
		return struct{}{}, fn(ctx, in)
	})
	return err
}

// FlattenAll is All for calls that return collections; the per-input
// collections are concatenated in input order.
func FlattenAll[S, T any](ctx context.Context, inputs []S, fn func(context.Context, S) ([]T, error)) ([]T, error) {
	nested, err := All(ctx, inputs, fn)
	if err != nil {
		return nil, err
	}
	return Flatten(nested), nil
}

// Flatten concatenates nested slices
func Flatten[T any](nested [][]T) []T {
	n := 0
	for _, inner := range nested {
		n += len(inner)
	}
	flat := make([]T, 0, n)
	for _, inner := range nested {
		flat = append(flat, inner...)
	}
	return flat
}

// Unique drops repeated values, keeping the first occurrence of each
func Unique[T comparable](values []T) []T {
	seen := make(map[T]struct{}, len(values))
	out := make([]T, 0, len(values))
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

// Product returns every (a, b) pair, iterating b fastest
func Product[A, B any](as []A, bs []B) []Pair[A, B] {
	pairs := make([]Pair[A, B], 0, len(as)*len(bs))
	for _, a := range as {
		for _, b := range bs {
			pairs = append(pairs, Pair[A, B]{First: a, Second: b})
		}
	}
	return pairs
}

// Pair is one element of a Cartesian product
type Pair[A, B any] struct {
	First  A
	Second B
}
