package replacement

import (
	"github.com/andrescamacho/bob-go/internal/domain/prefab"
)

// Handler carries the runtime replacement state of one original slot.
//
// Invariants:
//   - the baseline is captured once at creation and never changed
//   - at most one record per tier
//   - the effective record is the highest-priority active tier record
//   - a preview is a transient overlay, never visible through Effective
type Handler struct {
	ref      prefab.InstanceRef
	original prefab.SlotState
	tiers    [tierCount]*Record
	preview  *Record
}

// NewHandler creates a handler for ref with the given baseline
func NewHandler(ref prefab.InstanceRef, original prefab.SlotState) *Handler {
	return &Handler{ref: ref, original: original}
}

// Ref returns the slot this handler tracks
func (h *Handler) Ref() prefab.InstanceRef {
	return h.ref
}

// Original returns the pre-replacement baseline
func (h *Handler) Original() prefab.SlotState {
	return h.original
}

// Replacement returns the record at tier, or nil
func (h *Handler) Replacement(t Tier) *Record {
	if !t.isPriority() {
		return nil
	}
	return h.tiers[t]
}

// Set installs r at its tier, replacing any record already there
func (h *Handler) Set(r *Record) {
	if r == nil || !r.Tier.isPriority() {
		return
	}
	h.tiers[r.Tier] = r
}

// Clear removes r from its tier if it is the record installed there
func (h *Handler) Clear(r *Record) bool {
	if r == nil || !r.Tier.isPriority() || h.tiers[r.Tier] != r {
		return false
	}
	h.tiers[r.Tier] = nil
	return true
}

// References reports whether r is installed on this handler
func (h *Handler) References(r *Record) bool {
	return r != nil && r.Tier.isPriority() && h.tiers[r.Tier] == r
}

// Effective returns the record that decides what is rendered, or nil when
// the baseline applies
func (h *Handler) Effective() *Record {
	for _, t := range PriorityOrder() {
		if r := h.tiers[t]; r != nil && r.Active() {
			return r
		}
	}
	return nil
}

// Active lists every installed record in priority order
func (h *Handler) Active() []*Record {
	records := make([]*Record, 0, tierCount)
	for _, t := range PriorityOrder() {
		if r := h.tiers[t]; r != nil {
			records = append(records, r)
		}
	}
	return records
}

// HasReplacements reports whether any tier is occupied
func (h *Handler) HasReplacements() bool {
	for _, r := range h.tiers {
		if r != nil {
			return true
		}
	}
	return false
}

// EffectiveState is the committed state the slot should render
func (h *Handler) EffectiveState() prefab.SlotState {
	if r := h.Effective(); r != nil {
		return r.Apply(h.original)
	}
	return h.original
}

// Preview returns the candidate being previewed, or nil
func (h *Handler) Preview() *Record {
	return h.preview
}

// IsPreviewing reports whether a preview overlay is active
func (h *Handler) IsPreviewing() bool {
	return h.preview != nil
}

// BeginPreview installs candidate as the preview overlay and returns the
// state to render. A later call replaces the earlier candidate.
func (h *Handler) BeginPreview(candidate *Record) prefab.SlotState {
	h.preview = candidate
	return candidate.Apply(h.original)
}

// EndPreview drops the preview overlay. It reports whether one was active.
func (h *Handler) EndPreview() bool {
	had := h.preview != nil
	h.preview = nil
	return had
}

// rekey moves the handler to a new slot index after renumbering
func (h *Handler) rekey(slot int) {
	h.ref.Slot = slot
}
