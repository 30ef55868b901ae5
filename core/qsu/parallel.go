package qsu

import "golang.org/x/sync/errgroup"

// ParallelRewrite runs fn over every symbol in syms concurrently and
// returns their results in the same order. Per spec.md §5, no pass may
// rely on this for correctness — independent subtree rewrites are safe
// to parallelize but never required to be — so ParallelRewrite is used
// only where a pass's own symbols are known not to interact (e.g.
// computing provenance independently for a Union's two branches).
func ParallelRewrite[T any](syms []Symbol, fn func(Symbol) (T, error)) ([]T, error) {
	results := make([]T, len(syms))
	var g errgroup.Group
	for i, sym := range syms {
		i, sym := i, sym
		g.Go(func() error {
			r, err := fn(sym)
			if err != nil {
				return err
			}
			results[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
