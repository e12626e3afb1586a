package shared

import "fmt"

// DomainError is the base error type for all domain errors
type DomainError struct {
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

func NewDomainError(message string) *DomainError {
	return &DomainError{Message: message}
}

// Slot-related errors

// SlotError is the base for errors tied to one prop/tree slot of a parent prefab
type SlotError struct {
	*DomainError
	Parent string
	Lane   int
	Slot   int
}

func NewSlotError(message, parent string, lane, slot int) *SlotError {
	return &SlotError{
		DomainError: &DomainError{Message: message},
		Parent:      parent,
		Lane:        lane,
		Slot:        slot,
	}
}

// InvalidSlotReferenceError signals a stale or out-of-range slot index.
// Expected transiently after added props shift indices; never fatal.
type InvalidSlotReferenceError struct {
	*SlotError
	Count int
}

func NewInvalidSlotReferenceError(parent string, lane, slot, count int) *InvalidSlotReferenceError {
	msg := fmt.Sprintf("invalid slot reference: %s slot %d (slot count %d)", parent, slot, count)
	if lane >= 0 {
		msg = fmt.Sprintf("invalid slot reference: %s lane %d slot %d (slot count %d)", parent, lane, slot, count)
	}
	return &InvalidSlotReferenceError{
		SlotError: NewSlotError(msg, parent, lane, slot),
		Count:     count,
	}
}

// AddedSlotError is returned when a tier operation targets a user-added slot
// (or an added-slot operation targets an original slot)
type AddedSlotError struct {
	*SlotError
	Added bool
}

func NewAddedSlotError(parent string, lane, slot int, added bool) *AddedSlotError {
	msg := fmt.Sprintf("slot %d of %s is an added prop", slot, parent)
	if !added {
		msg = fmt.Sprintf("slot %d of %s is not an added prop", slot, parent)
	}
	return &AddedSlotError{
		SlotError: NewSlotError(msg, parent, lane, slot),
		Added:     added,
	}
}

// Prefab reference errors

type UnresolvedPrefabReferenceError struct {
	*DomainError
	Name string
	Kind string
}

func NewUnresolvedPrefabReferenceError(name, kind string) *UnresolvedPrefabReferenceError {
	return &UnresolvedPrefabReferenceError{
		DomainError: &DomainError{Message: fmt.Sprintf("%s prefab %q is not loaded", kind, name)},
		Name:        name,
		Kind:        kind,
	}
}

// Replacement record errors

// DuplicateActiveRecordError marks an attempt to insert a second record at an
// occupied key. The engine recovers by editing the occupant in place.
type DuplicateActiveRecordError struct {
	*DomainError
	Tier string
	Key  string
}

func NewDuplicateActiveRecordError(tier, key string) *DuplicateActiveRecordError {
	return &DuplicateActiveRecordError{
		DomainError: &DomainError{Message: fmt.Sprintf("%s replacement already active for %s", tier, key)},
		Tier:        tier,
		Key:         key,
	}
}

type UnknownRecordError struct {
	*DomainError
	RecordID string
}

func NewUnknownRecordError(recordID string) *UnknownRecordError {
	return &UnknownRecordError{
		DomainError: &DomainError{Message: fmt.Sprintf("replacement record %s is not stored", recordID)},
		RecordID:    recordID,
	}
}

// Pack errors

type UnknownPackError struct {
	*DomainError
	Name string
}

func NewUnknownPackError(name string) *UnknownPackError {
	return &UnknownPackError{
		DomainError: &DomainError{Message: fmt.Sprintf("unknown replacement pack %q", name)},
		Name:        name,
	}
}

// Validation error

type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}
