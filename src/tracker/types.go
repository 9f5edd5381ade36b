package tracker

import (
	"fmt"
	"strings"
)

// Kind is the category of a contribution.
type Kind uint8

const (
	BugFix Kind = iota
	Feature
	Documentation
	CodeReview
	Other
)

var kindNames = []string{"BugFix", "Feature", "Documentation", "CodeReview", "Other"}

// Valid reports whether k is a known Kind.
func (k Kind) Valid() bool {
	return int(k) < len(kindNames)
}

func (k Kind) String() string {
	if !k.Valid() {
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
	return kindNames[k]
}

// MarshalText encodes the kind by name.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText parses a kind name, case-insensitively.
func (k *Kind) UnmarshalText(text []byte) error {
	v, err := ParseKind(string(text))
	if err != nil {
		return err
	}
	*k = v
	return nil
}

// ParseKind parses a kind name.
func ParseKind(s string) (Kind, error) {
	for i, name := range kindNames {
		if strings.EqualFold(name, s) {
			return Kind(i), nil
		}
	}
	return 0, fmt.Errorf("unknown contribution kind %q", s)
}

// Impact scales the points of a contribution.
type Impact uint8

const (
	Minor Impact = iota
	Major
	Critical
)

var impactNames = []string{"Minor", "Major", "Critical"}

// Valid reports whether i is a known Impact.
func (i Impact) Valid() bool {
	return int(i) < len(impactNames)
}

func (i Impact) String() string {
	if !i.Valid() {
		return fmt.Sprintf("Impact(%d)", uint8(i))
	}
	return impactNames[i]
}

// MarshalText encodes the impact by name.
func (i Impact) MarshalText() ([]byte, error) {
	return []byte(i.String()), nil
}

// UnmarshalText parses an impact name, case-insensitively.
func (i *Impact) UnmarshalText(text []byte) error {
	v, err := ParseImpact(string(text))
	if err != nil {
		return err
	}
	*i = v
	return nil
}

// ParseImpact parses an impact name.
func ParseImpact(s string) (Impact, error) {
	for n, name := range impactNames {
		if strings.EqualFold(name, s) {
			return Impact(n), nil
		}
	}
	return 0, fmt.Errorf("unknown impact %q", s)
}

// Status is the review state of a contribution. Approved and Rejected are
// terminal.
type Status uint8

const (
	Pending Status = iota
	Approved
	Rejected
)

var statusNames = []string{"Pending", "Approved", "Rejected"}

// Valid reports whether s is a known Status.
func (s Status) Valid() bool {
	return int(s) < len(statusNames)
}

func (s Status) String() string {
	if !s.Valid() {
		return fmt.Sprintf("Status(%d)", uint8(s))
	}
	return statusNames[s]
}

// MarshalText encodes the status by name.
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText parses a status name.
func (s *Status) UnmarshalText(text []byte) error {
	for n, name := range statusNames {
		if strings.EqualFold(name, string(text)) {
			*s = Status(n)
			return nil
		}
	}
	return fmt.Errorf("unknown status %q", text)
}

// Points is the score of a contribution: base(kind) * (factor(impact) + 1).
func Points(kind Kind, impact Impact) (uint64, error) {
	var base, factor uint64

	switch kind {
	case BugFix:
		base = 3
	case Feature:
		base = 5
	case Documentation, CodeReview:
		base = 2
	case Other:
		base = 1
	default:
		return 0, newError(InvalidParameters, "unknown contribution kind %d", kind)
	}

	switch impact {
	case Minor:
		factor = 1
	case Major:
		factor = 2
	case Critical:
		factor = 3
	default:
		return 0, newError(InvalidParameters, "unknown impact %d", impact)
	}

	return base * (factor + 1), nil
}
