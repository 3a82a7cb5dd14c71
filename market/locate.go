package market

import "sort"

// Locate returns the index of the first trade whose timestamp is at or
// after ts. ok is false when the series is empty or every trade
// precedes ts. When several trades share a timestamp the lowest index
// wins, preserving recording order.
func (s *Series) Locate(ts int64) (int, bool) {
	i := sort.Search(len(s.Trades), func(i int) bool {
		return s.Trades[i].Timestamp >= ts
	})
	if i == len(s.Trades) {
		return 0, false
	}
	return i, true
}
