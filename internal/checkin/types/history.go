package types

import (
	"sort"
	"time"
)

// History maps every known sub-event to its check-in timestamps, newest first.
type History map[Subevent][]time.Time

// GroupCheckins partitions log entries into the fixed sub-event buckets.
// Every known bucket is present (possibly empty). Entries with a sub-event
// outside the known set are dropped. The input is not modified.
func GroupCheckins(entries []Checkin) History {
	h := make(History, len(Subevents))
	for _, s := range Subevents {
		h[s] = []time.Time{}
	}
	for _, e := range entries {
		bucket, ok := h[e.Subevent]
		if !ok {
			continue
		}
		h[e.Subevent] = append(bucket, e.CreatedAt)
	}
	for _, ts := range h {
		sort.SliceStable(ts, func(i, j int) bool { return ts[i].After(ts[j]) })
	}
	return h
}

// Count returns the number of entries in the bucket for s.
func (h History) Count(s Subevent) int { return len(h[s]) }
