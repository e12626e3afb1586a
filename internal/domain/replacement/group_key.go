package replacement

import (
	"sort"

	"github.com/andrescamacho/bob-go/internal/domain/prefab"
)

// GroupKey collapses physically distinct slots of one parent into a single
// logical item: slots group together when they share the original prefab,
// the original probability and the same record at every tier.
type GroupKey struct {
	Original            prefab.Ref
	OriginalProbability int
	Individual          string
	Grouped             string
	Pack                string
	All                 string
}

// GroupKeyFor derives the key of a slot from its baseline and handler.
// h may be nil for a slot that has never been touched.
func GroupKeyFor(original prefab.SlotState, h *Handler) GroupKey {
	key := GroupKey{
		Original:            original.Prefab,
		OriginalProbability: original.Probability,
	}
	if h == nil {
		return key
	}
	key.Individual = recordID(h.Replacement(TierIndividual))
	key.Grouped = recordID(h.Replacement(TierGrouped))
	key.Pack = recordID(h.Replacement(TierPack))
	key.All = recordID(h.Replacement(TierAll))
	return key
}

// SortGroupKeys orders keys for display: by original name, then by records
func SortGroupKeys(keys []GroupKey) {
	sort.Slice(keys, func(i, j int) bool {
		a, b := keys[i], keys[j]
		if a.Original.Name != b.Original.Name {
			return a.Original.Name < b.Original.Name
		}
		if a.OriginalProbability != b.OriginalProbability {
			return a.OriginalProbability < b.OriginalProbability
		}
		if a.Individual != b.Individual {
			return a.Individual < b.Individual
		}
		if a.Grouped != b.Grouped {
			return a.Grouped < b.Grouped
		}
		if a.Pack != b.Pack {
			return a.Pack < b.Pack
		}
		return a.All < b.All
	})
}

func recordID(r *Record) string {
	if r == nil {
		return ""
	}
	return r.ID
}
