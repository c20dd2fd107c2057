package repository

import (
	"math"
	"testing"
)

func TestAsInt64(t *testing.T) {
	id := int64(7)
	cases := []struct {
		in   any
		want int64
		ok   bool
	}{
		{int64(3), 3, true},
		{&id, 7, true},
		{(*int64)(nil), 0, false},
		{int(4), 4, true},
		{int32(5), 5, true},
		{uint64(math.MaxInt64), math.MaxInt64, true},
		{uint64(math.MaxInt64) + 1, 0, false},
		{uint(9), 9, true},
		{"12", 0, false},
	}
	for _, c := range cases {
		got, ok := asInt64(c.in)
		if ok != c.ok || (ok && got != c.want) {
			t.Fatalf("asInt64(%#v) = %d, %v; want %d, %v", c.in, got, ok, c.want, c.ok)
		}
	}
}
