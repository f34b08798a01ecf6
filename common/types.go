package common

// Side (方向) LONG or SHORT
type Side int

const (
	LONG  Side = 1
	SHORT Side = -1
)

func (s Side) String() string {
	switch s {
	case LONG:
		return "long"
	case SHORT:
		return "short"
	default:
		return "unknown"
	}
}

// IsLong reports whether the side is LONG.
func (s Side) IsLong() bool {
	return s == LONG
}
