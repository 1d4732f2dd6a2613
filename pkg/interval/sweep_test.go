package interval

import (
	"reflect"
	"testing"
)

func TestUnion(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		lists [][]Interval
		merge bool
		want  []Interval
	}{
		{
			name:  "disjoint lists, no merge",
			lists: [][]Interval{{{0, 10}}, {{20, 30}}},
			merge: false,
			want:  []Interval{{0, 10}, {20, 30}},
		},
		{
			name:  "overlapping lists combine into one run",
			lists: [][]Interval{{{0, 10}}, {{5, 15}}},
			merge: false,
			want:  []Interval{{0, 15}},
		},
		{
			name:  "touching runs without merge still combine into one run",
			lists: [][]Interval{{{0, 10}}, {{11, 20}}},
			merge: false,
			want:  []Interval{{0, 20}},
		},
		{
			name:  "touching runs with merge coalesce the same way",
			lists: [][]Interval{{{0, 10}}, {{11, 20}}},
			merge: true,
			want:  []Interval{{0, 20}},
		},
		{
			name:  "empty input",
			lists: nil,
			want:  nil,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := Union(tt.lists, tt.merge)
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIntersect(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		lists [][]Interval
		want  []Interval
	}{
		{
			name:  "two overlapping lists",
			lists: [][]Interval{{{0, 10}}, {{5, 15}}},
			want:  []Interval{{5, 10}},
		},
		{
			name:  "three-way overlap narrows further",
			lists: [][]Interval{{{0, 20}}, {{5, 15}}, {{8, 25}}},
			want:  []Interval{{8, 15}},
		},
		{
			name:  "disjoint lists yield nothing",
			lists: [][]Interval{{{0, 10}}, {{20, 30}}},
			want:  nil,
		},
		{
			name:  "one empty list makes the whole intersection empty",
			lists: [][]Interval{{{0, 10}}, {}},
			want:  nil,
		},
		{
			name:  "no lists",
			lists: nil,
			want:  nil,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := Intersect(tt.lists, false)
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestComplement(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		sorted []Interval
		lo, hi int64
		want   []Interval
	}{
		{
			name:   "gap in the middle",
			sorted: []Interval{{0, 10}, {20, 30}},
			lo:     0, hi: 30,
			want: []Interval{{11, 19}},
		},
		{
			name:   "leading and trailing gaps",
			sorted: []Interval{{10, 20}},
			lo:     0, hi: 30,
			want: []Interval{{0, 9}, {21, 30}},
		},
		{
			name:   "fully covered domain has no complement",
			sorted: []Interval{{0, 30}},
			lo:     0, hi: 30,
			want: nil,
		},
		{
			name:   "no intervals at all",
			sorted: nil,
			lo:     0, hi: 10,
			want: []Interval{{0, 10}},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := Complement(tt.sorted, tt.lo, tt.hi, false)
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestUnionIntersectDeMorgan(t *testing.T) {
	t.Parallel()

	domainStart, domainEnd := int64(0), int64(100)
	a := []Interval{{0, 20}, {50, 70}}
	b := []Interval{{10, 30}, {60, 90}}

	notA := Complement(a, domainStart, domainEnd, false)
	notB := Complement(b, domainStart, domainEnd, false)

	lhs := Complement(Union([][]Interval{a, b}, false), domainStart, domainEnd, false)
	rhs := Intersect([][]Interval{notA, notB}, false)

	if !reflect.DeepEqual(lhs, rhs) {
		t.Fatalf("De Morgan violated: complement(union) = %v, intersect(complements) = %v", lhs, rhs)
	}
}
