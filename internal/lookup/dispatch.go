package lookup

import (
	"context"
	"errors"

	"golang.org/x/sync/errgroup"
)

// chunkBounds splits n items into contiguous [start, end) ranges of
// max(1, n/capacity) items each. The last range may be shorter, and there may
// be more ranges than capacity; the pool bounds concurrency.
func chunkBounds(n, capacity int) [][2]int {
	if n <= 0 {
		return nil
	}
	size := max(1, n/max(1, capacity))
	bounds := make([][2]int, 0, (n+size-1)/size)
	for start := 0; start < n; start += size {
		bounds = append(bounds, [2]int{start, min(start+size, n)})
	}
	return bounds
}

var errChunkAborted = errors.New("lookup: chunk aborted")

// Dispatch runs queries through pool and returns one ResultSet per query in
// input order.
//
// Queries are split into contiguous chunks processed concurrently on separate
// workers. The first failing chunk cancels the others and fails the call; no
// partial results are returned.
func Dispatch(ctx context.Context, pool *Pool, queries []string) ([]ResultSet, error) {
	if len(queries) == 0 {
		return []ResultSet{}, nil
	}
	bounds := chunkBounds(len(queries), pool.Capacity())
	parts := make([][]ResultSet, len(bounds))

	g, gctx := errgroup.WithContext(ctx)
	for i, b := range bounds {
		i, chunk := i, queries[b[0]:b[1]]
		g.Go(func() error {
			lease, err := pool.Checkout(gctx)
			if err != nil {
				return err
			}
			// A panic leaves err at errChunkAborted, which discards the worker.
			res, perr := []ResultSet(nil), errChunkAborted
			defer func() { lease.Release(perr) }()

			res, perr = lease.Worker().ProcessBatch(gctx, chunk)
			if perr != nil {
				return perr
			}
			if len(res) != len(chunk) {
				perr = ioError("read", nil, "result count does not match query count")
				return perr
			}
			parts[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make([]ResultSet, 0, len(queries))
	for _, part := range parts {
		out = append(out, part...)
	}
	return out, nil
}
