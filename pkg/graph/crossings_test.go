package graph

import "testing"

func TestCountCrossings(t *testing.T) {
	tests := []struct {
		name  string
		pairs []Pair
		want  int
	}{
		{"empty", nil, 0},
		{"single", []Pair{{0, 0}}, 0},
		{"parallel", []Pair{{0, 0}, {1, 1}}, 0},
		{"cross", []Pair{{0, 1}, {1, 0}}, 1},
		{"shared upper", []Pair{{0, 0}, {0, 1}}, 0},
		{"shared lower", []Pair{{0, 1}, {1, 1}}, 0},
		{"k3", []Pair{{0, 2}, {1, 1}, {2, 0}}, 3},
		{"fan", []Pair{{0, 1}, {0, 2}, {1, 0}}, 2},
	}
	ws := &CrossingWorkspace{}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pairs := append([]Pair(nil), tt.pairs...)
			if got := CountCrossings(pairs, ws); got != tt.want {
				t.Errorf("CountCrossings() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestCountCrossingsMatchesNaive(t *testing.T) {
	pairs := []Pair{{0, 3}, {0, 1}, {1, 2}, {2, 0}, {2, 3}, {3, 1}, {4, 0}}
	naive := 0
	for i := range pairs {
		for j := i + 1; j < len(pairs); j++ {
			a, b := pairs[i], pairs[j]
			if (a.Upper < b.Upper && a.Lower > b.Lower) || (a.Upper > b.Upper && a.Lower < b.Lower) {
				naive++
			}
		}
	}
	if got := CountCrossings(pairs, nil); got != naive {
		t.Errorf("CountCrossings() = %d, naive = %d", got, naive)
	}
}

func TestCountPairCrossings(t *testing.T) {
	left, right := []int{2, 3}, []int{0, 3}

	if got := CountPairCrossings(left, right); got != 2 {
		t.Errorf("CountPairCrossings(left, right) = %d, want 2", got)
	}
	if got := CountPairCrossings(right, left); got != 1 {
		t.Errorf("CountPairCrossings(right, left) = %d, want 1", got)
	}
}
