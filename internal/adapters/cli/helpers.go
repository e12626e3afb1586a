package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/andrescamacho/bob-go/internal/domain/prefab"
	"github.com/andrescamacho/bob-go/internal/domain/replacement"
)

// parseParentKind accepts "building" or "network"
func parseParentKind(s string) (prefab.Kind, error) {
	kind, err := prefab.ParseKind(s)
	if err != nil {
		return 0, err
	}
	if !kind.IsParent() {
		return 0, fmt.Errorf("%s is not a building or network kind", s)
	}
	return kind, nil
}

// parseContentRef parses "tree:Name" or "prop:Name". A bare name is a prop.
func parseContentRef(s string) (prefab.Ref, error) {
	if s == "" {
		return prefab.Ref{}, nil
	}
	kindName, name, found := strings.Cut(s, ":")
	if !found {
		return prefab.NewRef(prefab.KindProp, s), nil
	}
	kind, err := prefab.ParseKind(kindName)
	if err != nil {
		return prefab.Ref{}, err
	}
	if !kind.IsContent() {
		return prefab.Ref{}, fmt.Errorf("%s is not a tree or prop reference", s)
	}
	if name == "" {
		return prefab.Ref{}, fmt.Errorf("missing prefab name in %q", s)
	}
	return prefab.NewRef(kind, name), nil
}

// parseVector parses "x,y,z"; an empty string is the zero vector
func parseVector(s string) (prefab.Vector3, error) {
	if s == "" {
		return prefab.Vector3{}, nil
	}
	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return prefab.Vector3{}, fmt.Errorf("vector %q must have three comma-separated components", s)
	}
	var v [3]float64
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return prefab.Vector3{}, fmt.Errorf("invalid vector component %q: %w", p, err)
		}
		v[i] = f
	}
	return prefab.Vector3{X: v[0], Y: v[1], Z: v[2]}, nil
}

func formatVector(v prefab.Vector3) string {
	return fmt.Sprintf("%g,%g,%g", v.X, v.Y, v.Z)
}

func formatState(s prefab.SlotState) string {
	return fmt.Sprintf("%s angle=%g pos=%s p=%d%%", s.Prefab, s.Angle, formatVector(s.Position), s.Probability)
}

func formatRecord(r *replacement.Record) string {
	if r == nil {
		return "-"
	}
	out := fmt.Sprintf("%s [%s] %s -> %s", r.ID, r.Tier, r.Target, r.Replacement)
	if r.Pack != "" {
		out += " pack=" + r.Pack
	}
	if r.Unresolved {
		out += " (unresolved)"
	}
	return out
}
