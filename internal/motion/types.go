package motion

import "github.com/danielpatrickdp/fieldstate/internal/field"

// #region selector

// Selector addresses a tier of a dimension's fractal hierarchy.
type Selector int

const (
	SelectCore Selector = iota
	SelectDomains
	SelectIndicators
	SelectAll
)

// String returns the canonical selector name.
func (s Selector) String() string {
	switch s {
	case SelectCore:
		return "core"
	case SelectDomains:
		return "domains"
	case SelectIndicators:
		return "indicators"
	case SelectAll:
		return "all"
	}
	return "unknown"
}

// #endregion selector

// #region motion

// Motion is a named, signed operation drawn from a fixed enumerated set.
// Each motion carries a sign, a default effect magnitude, and a selector
// for the nodes it perturbs within the target dimension.
type Motion int

const (
	Acquire Motion = iota
	Divest
	Study
	Lapse
	Recover
	Exert
	Connect
	Withdraw
	Practice
	Neglect
	Commit
	Waver
)

// MotionCount is the fixed cardinality of the motion enum.
const MotionCount = 12

type descriptor struct {
	name      string
	sign      float64
	magnitude float64
	selector  Selector
}

var descriptors = [MotionCount]descriptor{
	Acquire:  {"acquire", +1, 0.10, SelectCore},
	Divest:   {"divest", -1, 0.10, SelectCore},
	Study:    {"study", +1, 0.05, SelectDomains},
	Lapse:    {"lapse", -1, 0.05, SelectDomains},
	Recover:  {"recover", +1, 0.02, SelectAll},
	Exert:    {"exert", -1, 0.02, SelectAll},
	Connect:  {"connect", +1, 0.04, SelectIndicators},
	Withdraw: {"withdraw", -1, 0.04, SelectIndicators},
	Practice: {"practice", +1, 0.08, SelectDomains},
	Neglect:  {"neglect", -1, 0.08, SelectDomains},
	Commit:   {"commit", +1, 0.15, SelectCore},
	Waver:    {"waver", -1, 0.15, SelectCore},
}

// String returns the canonical lowercase name of the motion.
func (m Motion) String() string {
	if !m.Valid() {
		return "unknown"
	}
	return descriptors[m].name
}

// Valid reports whether m is a member of the enum.
func (m Motion) Valid() bool {
	return m >= 0 && m < MotionCount
}

// Sign returns +1 or -1.
func (m Motion) Sign() float64 {
	if !m.Valid() {
		return 0
	}
	return descriptors[m].sign
}

// DefaultMagnitude returns the motion's default effect magnitude, used by
// callers that do not supply an explicit delta.
func (m Motion) DefaultMagnitude() float64 {
	if !m.Valid() {
		return 0
	}
	return descriptors[m].magnitude
}

// TargetSelector returns the tier of nodes the motion perturbs.
func (m Motion) TargetSelector() Selector {
	if !m.Valid() {
		return SelectCore
	}
	return descriptors[m].selector
}

// Motions returns every motion in enumeration order.
func Motions() []Motion {
	out := make([]Motion, MotionCount)
	for i := range out {
		out[i] = Motion(i)
	}
	return out
}

// ParseMotion resolves a canonical name to its enum member.
func ParseMotion(name string) (Motion, error) {
	for i := range descriptors {
		if descriptors[i].name == name {
			return Motion(i), nil
		}
	}
	return 0, &field.NotFoundError{Kind: "motion", Name: name}
}

// #endregion motion
