package reconcile

import (
	"reflect"
	"testing"
)

func TestLongestIncreasing(t *testing.T) {
	tests := []struct {
		name string
		seq  []int
		want int
	}{
		{"empty", nil, 0},
		{"sorted", []int{0, 1, 2, 3}, 4},
		{"reversed", []int{3, 2, 1, 0}, 1},
		{"swap", []int{1, 0}, 1},
		{"mixed", []int{2, 0, 1, 4, 3, 5}, 4},
		{"new entries skipped", []int{-1, 0, -1, 1}, 2},
		{"all new", []int{-1, -1}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for name, fn := range map[string]func([]int) []int{
				"log":       longestIncreasing,
				"quadratic": longestIncreasingQuadratic,
			} {
				got := fn(tt.seq)
				if len(got) != tt.want {
					t.Fatalf("%s: expected length %d, got %v", name, tt.want, got)
				}
				for i := 1; i < len(got); i++ {
					if got[i] <= got[i-1] || tt.seq[got[i]] <= tt.seq[got[i-1]] {
						t.Errorf("%s: %v is not increasing in %v", name, got, tt.seq)
					}
				}
				for _, i := range got {
					if tt.seq[i] < 0 {
						t.Errorf("%s: picked new entry %d", name, i)
					}
				}
			}
		})
	}
}

func TestLongestIncreasingKnownResult(t *testing.T) {
	got := longestIncreasing([]int{4, 2, 3, 1, 5})
	if want := []int{1, 2, 4}; !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}
