package batch

import (
	"fmt"
	"slices"
	"testing"
)

func TestChunks_Coverage(t *testing.T) {
	tests := []struct {
		n    int
		size int
	}{
		{0, 200},
		{1, 200},
		{199, 200},
		{200, 200},
		{201, 200},
		{450, 200},
		{7, 3},
		{10, 1},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("n=%d/size=%d", tt.n, tt.size), func(t *testing.T) {
			input := make([]string, tt.n)
			for i := range input {
				input[i] = fmt.Sprintf("ID%04d", i)
			}

			var joined []string
			chunks := 0
			for c := range Chunks(input, tt.size) {
				if len(c.Items) == 0 {
					t.Fatalf("chunk %d is empty", c.Index)
				}
				if len(c.Items) > tt.size {
					t.Fatalf("chunk %d has %d items, max %d", c.Index, len(c.Items), tt.size)
				}
				if c.Index != chunks {
					t.Errorf("chunk index = %d, want %d", c.Index, chunks)
				}
				if c.Start != len(joined) {
					t.Errorf("chunk start = %d, want %d", c.Start, len(joined))
				}
				joined = append(joined, c.Items...)
				chunks++
			}

			if want := Count(tt.n, tt.size); chunks != want {
				t.Errorf("got %d chunks, want %d", chunks, want)
			}
			if !slices.Equal(joined, input) {
				t.Errorf("chunks do not concatenate back to the input")
			}
		})
	}
}

func TestChunks_EarlyStop(t *testing.T) {
	input := []int{1, 2, 3, 4, 5}
	seen := 0
	for range Chunks(input, 2) {
		seen++
		break
	}
	if seen != 1 {
		t.Errorf("expected iteration to stop after first chunk, saw %d", seen)
	}
}

func TestChunks_DefaultSize(t *testing.T) {
	input := make([]int, DefaultSize+1)
	var sizes []int
	for c := range Chunks(input, 0) {
		sizes = append(sizes, len(c.Items))
	}
	if !slices.Equal(sizes, []int{DefaultSize, 1}) {
		t.Errorf("sizes = %v, want [%d 1]", sizes, DefaultSize)
	}
}

func TestChunks_AppendDoesNotClobberInput(t *testing.T) {
	input := []string{"a", "b", "c", "d"}
	for c := range Chunks(input, 2) {
		_ = append(c.Items, "x")
	}
	if !slices.Equal(input, []string{"a", "b", "c", "d"}) {
		t.Errorf("input modified: %v", input)
	}
}
