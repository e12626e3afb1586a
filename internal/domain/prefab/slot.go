package prefab

// Vector3 is a position or offset in parent-local coordinates
type Vector3 struct {
	X float64
	Y float64
	Z float64
}

func (v Vector3) Add(o Vector3) Vector3 {
	return Vector3{X: v.X + o.X, Y: v.Y + o.Y, Z: v.Z + o.Z}
}

func (v Vector3) Sub(o Vector3) Vector3 {
	return Vector3{X: v.X - o.X, Y: v.Y - o.Y, Z: v.Z - o.Z}
}

// SlotState is the live, renderable state of one slot
type SlotState struct {
	Prefab      Ref
	Angle       float64
	Position    Vector3
	Probability int

	// RepeatDistance applies to network lanes only (0 = not repeated)
	RepeatDistance float64

	// FixedHeight applies to building slots only
	FixedHeight bool
}

// IsEmpty reports whether the slot carries no prop or tree
func (s SlotState) IsEmpty() bool {
	return s.Prefab.IsZero()
}
