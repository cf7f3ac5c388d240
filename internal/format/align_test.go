package format

import "testing"

func TestAlignPage(t *testing.T) {
	cases := []struct{ in, want int }{
		{0, 0}, {1, PageSize}, {PageSize, PageSize}, {PageSize + 1, 2 * PageSize},
	}
	for _, tc := range cases {
		if got := AlignPage(tc.in); got != tc.want {
			t.Fatalf("AlignPage(%d) = %d, want %d", tc.in, got, tc.want)
		}
	}
}

func TestUnits(t *testing.T) {
	cases := []struct{ in, want uint64 }{
		{0, 1}, {1, 2}, {15, 2}, {16, 2}, {17, 3}, {32, 3}, {64, 5}, {96, 7},
	}
	for _, tc := range cases {
		if got := Units(tc.in); got != tc.want {
			t.Fatalf("Units(%d) = %d, want %d", tc.in, got, tc.want)
		}
	}
	if UnitBytes(Units(100)) < 100+UnitSize {
		t.Fatalf("UnitBytes(Units(100)) must cover payload and header")
	}
}

func TestHeaderFieldsRoundTrip(t *testing.T) {
	b := make([]byte, 2*UnitSize)
	PutU64(b, UnitSize+NextOffset, 0x1234)
	PutU64(b, UnitSize+SizeOffset, 7)
	if got := ReadU64(b, UnitSize+NextOffset); got != 0x1234 {
		t.Fatalf("next = %#x, want 0x1234", got)
	}
	if got := ReadU64(b, UnitSize+SizeOffset); got != 7 {
		t.Fatalf("size = %d, want 7", got)
	}
	if ReadU64(b, 0) != 0 {
		t.Fatalf("writes leaked into the first header")
	}
}
