package util

import "time"

// FromUnixMilli converts exchange millisecond timestamps to UTC time.
func FromUnixMilli(ms int64) time.Time {
    return time.UnixMilli(ms).UTC()
}
