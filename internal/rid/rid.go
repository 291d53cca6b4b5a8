// Package rid defines the index type shared by equations and variables.
//
// ReSHOP names both equations and variables out of the same unsigned
// space; a handful of reserved values above MaxValid partition that space
// into sentinels (not-found, deleted, ...). valid/inbounds are the only
// gates client code should use before indexing into a container.
package rid

import "math"

// Idx names a variable or an equation. The two spaces are disjoint in
// meaning but share a representation and its sentinels.
type Idx uint32

// MaxValid is one past the largest index ReSHOP will ever hand out.
// Everything at or above it is not a real entity; the named sentinels
// start just above it.
const MaxValid Idx = math.MaxUint32 - 16

const (
	// NA marks "no index was ever assigned here".
	NA Idx = MaxValid + 1 + iota
	// NotFound is returned by a lookup that completed without a match.
	NotFound
	// Invalid marks an index that failed validation on entry.
	Invalid
	// Deleted marks an index whose entity existed but was removed.
	Deleted
	// Duplicate is returned by a name lookup that matched more than once.
	Duplicate
	// OutOfRange marks an index beyond the container's current bounds.
	OutOfRange
	// Error is a catch-all sentinel for "an index could not be produced".
	Error
)

// Valid reports whether i names a real entity (as opposed to a sentinel).
func Valid(i Idx) bool { return i < MaxValid }

// Inbounds reports whether i is a valid index strictly less than n, the
// container's current high-water mark for that space.
func Inbounds(i Idx, n Idx) bool { return Valid(i) && i < n }

// String renders a sentinel by name, or the bare index when it is valid.
func (i Idx) String() string {
	switch i {
	case NA:
		return "NA"
	case NotFound:
		return "NotFound"
	case Invalid:
		return "Invalid"
	case Deleted:
		return "Deleted"
	case Duplicate:
		return "Duplicate"
	case OutOfRange:
		return "OutOfRange"
	case Error:
		return "Error"
	default:
		if Valid(i) {
			return uitoa(uint32(i))
		}
		return "Sentinel(" + uitoa(uint32(i)) + ")"
	}
}

func uitoa(v uint32) string {
	if v == 0 {
		return "0"
	}
	var buf [10]byte
	i := len(buf)
	for v > 0 {
		i--
		buf[i] = byte('0' + v%10)
		v /= 10
	}
	return string(buf[i:])
}
