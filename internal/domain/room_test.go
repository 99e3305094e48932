package domain

import "testing"

func TestRoomKey_Symmetric(t *testing.T) {
	cases := [][2]int64{
		{1, 2},
		{2, 1},
		{42, 7},
		{1000, 999},
	}
	for _, c := range cases {
		a, b := c[0], c[1]
		if RoomKey(a, b) != RoomKey(b, a) {
			t.Fatalf("RoomKey(%d,%d)=%q != RoomKey(%d,%d)=%q", a, b, RoomKey(a, b), b, a, RoomKey(b, a))
		}
	}
}

func TestRoomKey_Format(t *testing.T) {
	if got := RoomKey(1, 2); got != "dm_1_2" {
		t.Fatalf("RoomKey(1,2) = %q, want dm_1_2", got)
	}
	if got := RoomKey(2, 1); got != "dm_1_2" {
		t.Fatalf("RoomKey(2,1) = %q, want dm_1_2", got)
	}
	// string comparison, not numeric: "10" < "9"
	if got := RoomKey(9, 10); got != "dm_10_9" {
		t.Fatalf("RoomKey(9,10) = %q, want dm_10_9", got)
	}
}

func TestRoomKey_SelfChat(t *testing.T) {
	// degenerate but must not differ per call or crash
	if got := RoomKey(5, 5); got != "dm_5_5" {
		t.Fatalf("RoomKey(5,5) = %q, want dm_5_5", got)
	}
}
