package symbols

import (
	"sort"

	"github.com/funvibe/traitmap/internal/typesystem"
)

// Extend merges other into tm. Entries with equal keys have their items
// unioned, other's item winning on a name clash; the rest are inserted in
// key order. No coherence checks are made.
func (tm *TraitMap) Extend(te *typesystem.Engine, other *TraitMap) {
	for _, f := range other.sortedFilters() {
		bucket := tm.buckets[f]
		for _, oe := range other.buckets[f] {
			pos := sort.Search(len(bucket), func(i int) bool {
				return bucket[i].Key.compare(te, oe.Key) >= 0
			})
			if pos < len(bucket) && bucket[pos].Key.compare(te, oe.Key) == 0 {
				merged := bucket[pos].Value.Items.clone()
				for name, item := range oe.Value.Items {
					merged[name] = item
				}
				bucket[pos].Value.Items = merged
				continue
			}
			bucket = append(bucket, TraitEntry{})
			copy(bucket[pos+1:], bucket[pos:])
			bucket[pos] = oe.clone()
		}
		tm.buckets[f] = bucket
	}
	for id := range other.insertSeen {
		tm.insertSeen[id] = struct{}{}
	}
}
