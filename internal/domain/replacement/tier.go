package replacement

import (
	"fmt"
	"strings"
)

// Tier is a replacement priority level. Lower values win: a record at
// TierIndividual overrides TierGrouped, which overrides TierPack, which
// overrides TierAll. Buildings never use TierPack.
type Tier int

const (
	TierIndividual Tier = iota
	TierGrouped
	TierPack
	TierAll

	// TierAdded marks records describing user-added slots. They have no
	// original to override and never sit in a handler.
	TierAdded
)

// tierCount is the number of priority tiers a handler tracks
const tierCount = int(TierAll) + 1

// PriorityOrder lists the overriding tiers from highest to lowest priority
func PriorityOrder() []Tier {
	return []Tier{TierIndividual, TierGrouped, TierPack, TierAll}
}

func (t Tier) String() string {
	switch t {
	case TierIndividual:
		return "individual"
	case TierGrouped:
		return "grouped"
	case TierPack:
		return "pack"
	case TierAll:
		return "all"
	case TierAdded:
		return "added"
	default:
		return fmt.Sprintf("tier(%d)", int(t))
	}
}

// Overrides reports whether t takes priority over other
func (t Tier) Overrides(other Tier) bool {
	return t.isPriority() && other.isPriority() && t < other
}

func (t Tier) isPriority() bool {
	return t >= TierIndividual && t <= TierAll
}

// ParseTier converts a tier name to its Tier
func ParseTier(s string) (Tier, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "individual":
		return TierIndividual, nil
	case "grouped", "group":
		return TierGrouped, nil
	case "pack":
		return TierPack, nil
	case "all":
		return TierAll, nil
	case "added":
		return TierAdded, nil
	default:
		return 0, fmt.Errorf("unknown replacement tier: %s", s)
	}
}
