package rpcchan

import "github.com/tenzoki/rpcchan/internal/wire"

// Set is an ordered, duplicate-free collection — the enhanced dialect's
// analog of a JS Set. A *Set argument or result round-trips intact when
// the channel is using the enhanced dialect; under the plain dialect it
// degrades to an ordinary array.
type Set = wire.Set

// NewSet builds a Set from the given items, dropping duplicates.
func NewSet(items ...any) *Set {
	return wire.NewSet(items...)
}
