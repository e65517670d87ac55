package model

import (
	"errors"
	"strings"
)

type ReasonType string

const (
	ReasonNewShipment ReasonType = "new_shipment"
	ReasonReturns     ReasonType = "returns"
	ReasonOther       ReasonType = "other"
)

var (
	ErrInvalidReasonType = errors.New("invalid reason type")
	ErrReasonNoteMissing = errors.New("reason note is required for 'other' type")
)

// Reason explains a ledger movement. The zero value is not a valid reason;
// build one with NewShipment, Returns, Other or ParseReason.
type Reason struct {
	kind ReasonType
	note string
}

func NewShipment() Reason { return Reason{kind: ReasonNewShipment} }

func Returns() Reason { return Reason{kind: ReasonReturns} }

// Other requires a non-blank note.
func Other(note string) (Reason, error) {
	note = strings.TrimSpace(note)
	if note == "" {
		return Reason{}, ErrReasonNoteMissing
	}
	return Reason{kind: ReasonOther, note: note}, nil
}

// WithNote attaches an optional annotation to a shipment or returns reason.
func (r Reason) WithNote(note string) Reason {
	r.note = strings.TrimSpace(note)
	return r
}

// ParseReason builds a Reason from request fields.
func ParseReason(kind, note string) (Reason, error) {
	switch ReasonType(strings.TrimSpace(kind)) {
	case ReasonNewShipment:
		return NewShipment().WithNote(note), nil
	case ReasonReturns:
		return Returns().WithNote(note), nil
	case ReasonOther:
		return Other(note)
	default:
		return Reason{}, ErrInvalidReasonType
	}
}

func (r Reason) Type() ReasonType { return r.kind }

func (r Reason) IsZero() bool { return r.kind == "" }

// Note returns nil when no annotation was given.
func (r Reason) Note() *string {
	if r.note == "" {
		return nil
	}
	n := r.note
	return &n
}
