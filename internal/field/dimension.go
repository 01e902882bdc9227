package field

// #region dimension

// Dimension is one of the fixed scalar resource categories tracked by the
// engine. The set is closed; unknown names fail parsing with NotFoundError.
type Dimension int

const (
	Capital Dimension = iota
	Knowledge
	Energy
	Social
	Craft
	Resolve
)

// DimensionCount is the fixed cardinality of the dimension enum.
const DimensionCount = 6

var dimensionNames = [DimensionCount]string{
	"capital",
	"knowledge",
	"energy",
	"social",
	"craft",
	"resolve",
}

// String returns the canonical lowercase name of the dimension.
func (d Dimension) String() string {
	if !d.Valid() {
		return "unknown"
	}
	return dimensionNames[d]
}

// Valid reports whether d is a member of the enum.
func (d Dimension) Valid() bool {
	return d >= 0 && d < DimensionCount
}

// Dimensions returns every dimension in enumeration order.
func Dimensions() []Dimension {
	out := make([]Dimension, DimensionCount)
	for i := range out {
		out[i] = Dimension(i)
	}
	return out
}

// ParseDimension resolves a canonical name to its enum member.
func ParseDimension(name string) (Dimension, error) {
	for i, n := range dimensionNames {
		if n == name {
			return Dimension(i), nil
		}
	}
	return 0, &NotFoundError{Kind: "dimension", Name: name}
}

// #endregion dimension
