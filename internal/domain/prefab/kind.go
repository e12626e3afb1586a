package prefab

import (
	"fmt"
	"strings"
)

// Kind is the closed set of prefab categories the engine distinguishes.
// Building and Network are parent kinds (they carry prop/tree slots);
// Tree and Prop are slot content kinds.
type Kind int

const (
	KindBuilding Kind = iota
	KindNetwork
	KindTree
	KindProp
)

// String returns the lowercase kind name used in configuration and logs
func (k Kind) String() string {
	switch k {
	case KindBuilding:
		return "building"
	case KindNetwork:
		return "network"
	case KindTree:
		return "tree"
	case KindProp:
		return "prop"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// IsParent reports whether prefabs of this kind own prop/tree slots
func (k Kind) IsParent() bool {
	return k == KindBuilding || k == KindNetwork
}

// IsContent reports whether prefabs of this kind can occupy a slot
func (k Kind) IsContent() bool {
	return k == KindTree || k == KindProp
}

// ParseKind converts a kind name back to its Kind
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "building":
		return KindBuilding, nil
	case "network", "net":
		return KindNetwork, nil
	case "tree":
		return KindTree, nil
	case "prop":
		return KindProp, nil
	default:
		return 0, fmt.Errorf("unknown prefab kind: %s", s)
	}
}

// ParentKinds lists the kinds the engine keeps tier stores for
func ParentKinds() []Kind {
	return []Kind{KindBuilding, KindNetwork}
}
