package perm

import (
	"slices"
	"testing"
)

func TestSeq(t *testing.T) {
	tests := []struct {
		n    int
		want []int
	}{
		{0, []int{}},
		{1, []int{0}},
		{5, []int{0, 1, 2, 3, 4}},
	}

	for _, tt := range tests {
		if got := Seq(tt.n); !slices.Equal(got, tt.want) {
			t.Errorf("Seq(%d) = %v, want %v", tt.n, got, tt.want)
		}
	}
}

func TestFactorial(t *testing.T) {
	tests := []struct {
		n    int
		want int
	}{
		{0, 1},
		{1, 1},
		{2, 2},
		{5, 120},
		{10, 3628800},
	}

	for _, tt := range tests {
		if got := Factorial(tt.n); got != tt.want {
			t.Errorf("Factorial(%d) = %d, want %d", tt.n, got, tt.want)
		}
	}
}

func TestGenerateCounts(t *testing.T) {
	for n := 0; n <= 6; n++ {
		got := Generate(n, 0)
		want := Factorial(n)
		if len(got) != want {
			t.Errorf("Generate(%d, 0) produced %d permutations, want %d", n, len(got), want)
		}
	}
}

func TestGenerateUnique(t *testing.T) {
	perms := Generate(4, 0)

	seen := make(map[string]bool, len(perms))
	for _, p := range perms {
		if len(p) != 4 {
			t.Fatalf("permutation %v has length %d", p, len(p))
		}
		key := ""
		for _, v := range p {
			key += string(rune('0' + v))
		}
		if seen[key] {
			t.Fatalf("permutation %v generated twice", p)
		}
		seen[key] = true
	}
}

func TestGenerateLimit(t *testing.T) {
	got := Generate(5, 10)
	if len(got) != 10 {
		t.Errorf("Generate(5, 10) produced %d permutations, want 10", len(got))
	}
}

func TestGenerateIndependentSlices(t *testing.T) {
	perms := Generate(3, 0)
	perms[0][0] = 99
	for _, p := range perms[1:] {
		if p[0] == 99 {
			t.Fatal("permutations share backing storage")
		}
	}
}
