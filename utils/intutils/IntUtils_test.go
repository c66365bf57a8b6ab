package intutils

import "testing"

func TestMin(t *testing.T) {
	if got := Min(4, 2, 9, 3); got != 2 {
		t.Errorf("Min = %d, want 2", got)
	}
}

func TestMod(t *testing.T) {
	tests := []struct{ x, m, want int }{
		{-1, 4, 3},
		{4, 4, 0},
		{5, 4, 1},
		{2, 4, 2},
	}
	for _, test := range tests {
		if got := Mod(test.x, test.m); got != test.want {
			t.Errorf("Mod(%d, %d) = %d, want %d", test.x, test.m, got,
				test.want)
		}
	}
}

func TestPow(t *testing.T) {
	if got := Pow(3, 4); got != 81 {
		t.Errorf("Pow(3, 4) = %d, want 81", got)
	}
	if got := Pow(5, 0); got != 1 {
		t.Errorf("Pow(5, 0) = %d, want 1", got)
	}
}
