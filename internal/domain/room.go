package domain

import "strconv"

// RoomKey returns the broadcast group name for a direct-message pair.
// Ids are compared as strings so both participants compute the same key
// no matter who connects first: RoomKey(a, b) == RoomKey(b, a).
func RoomKey(a, b int64) string {
	x := strconv.FormatInt(a, 10)
	y := strconv.FormatInt(b, 10)
	if y < x {
		x, y = y, x
	}
	return "dm_" + x + "_" + y
}
