// Package batch splits ordered identifier lists into fixed-size chunks.
package batch

import "iter"

// DefaultSize is the number of identifiers sent upstream in one device query.
const DefaultSize = 200

// Chunk is a contiguous slice of the input together with its position.
type Chunk[T any] struct {
	// Index is the zero-based chunk number.
	Index int

	// Start is the offset of the first element within the input.
	Start int

	// Items are the elements of this chunk. They alias the input slice.
	Items []T
}

// Chunks yields contiguous, non-overlapping chunks of at most size elements,
// preserving input order. An empty input yields nothing. A non-positive size
// falls back to DefaultSize.
func Chunks[T any](items []T, size int) iter.Seq[Chunk[T]] {
	if size <= 0 {
		size = DefaultSize
	}
	return func(yield func(Chunk[T]) bool) {
		for idx, start := 0, 0; start < len(items); idx, start = idx+1, start+size {
			end := min(start+size, len(items))
			if !yield(Chunk[T]{Index: idx, Start: start, Items: items[start:end:end]}) {
				return
			}
		}
	}
}

// Count returns the number of chunks Chunks would yield for n elements.
func Count(n, size int) int {
	if size <= 0 {
		size = DefaultSize
	}
	if n <= 0 {
		return 0
	}
	return (n + size - 1) / size
}
