package keycodec

import (
	"errors"
	"fmt"
	"strconv"
	"time"
)

// farFutureMs is the inversion anchor: 9999-12-31T23:59:59.999Z in Unix
// milliseconds. Any realistic log timestamp subtracts to a non-negative
// value below 10^15, so keys stay fixed-width.
const farFutureMs int64 = 253402300799999

// width of the zero-padded inverted-millisecond prefix.
const width = 15

// ErrInvalidRange reports a query window whose start is after its end.
var ErrInvalidRange = errors.New("keycodec: range start is after range end")

// Encode builds the sort key for a record created at ts. The key is the
// zero-padded inverted millisecond count followed by a disambiguator token,
// so ascending lexical key order is descending creation time and two records
// sharing an instant still get distinct keys.
func Encode(ts time.Time, token string) string {
	return fmt.Sprintf("%0*d-%s", width, invert(ts), token)
}

// RangeBounds translates a chronological [from, until] window into inclusive
// sort-key bounds. The inversion swaps the ends: the window's chronological
// upper bound becomes the lexical lower bound and vice versa. The '~' suffix
// on the upper bound sorts after every token separator, keeping all keys at
// the boundary instant inside the window.
func RangeBounds(from, until time.Time) (lower, upper string, err error) {
	if from.After(until) {
		return "", "", ErrInvalidRange
	}
	lower = fmt.Sprintf("%0*d", width, invert(until))
	upper = fmt.Sprintf("%0*d~", width, invert(from))
	return lower, upper, nil
}

// Timestamp recovers the creation instant encoded in a sort key, truncated
// to millisecond precision.
func Timestamp(sortKey string) (time.Time, error) {
	if len(sortKey) < width {
		return time.Time{}, fmt.Errorf("keycodec: short sort key %q", sortKey)
	}
	v, err := strconv.ParseInt(sortKey[:width], 10, 64)
	if err != nil {
		return time.Time{}, fmt.Errorf("keycodec: bad sort key %q: %w", sortKey, err)
	}
	return time.UnixMilli(farFutureMs - v).UTC(), nil
}

func invert(ts time.Time) int64 {
	ms := ts.UnixMilli()
	if ms < 0 {
		ms = 0
	}
	if ms > farFutureMs {
		ms = farFutureMs
	}
	return farFutureMs - ms
}
