package numbering

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// SequencePadWidth is the minimum zero-padded width of the sequence suffix.
// Values needing more digits widen the field; they are never truncated.
const SequencePadWidth = 4

// DayKey returns the 8-digit calendar day key (yyyymmdd) for t
func DayKey(t time.Time) string {
	return t.Format("20060102")
}

// MonthKey returns the 6-digit calendar month key (yyyymm) for t
func MonthKey(t time.Time) string {
	return t.Format("200601")
}

// Build formats a complaint number from its components:
//
//	ORG/LOCATION/DAYKEY/DEPARTMENT/SEQ
//
// e.g. JIPL/DELHINORTH/20250115/SERVICE/0001. The fixed token order and
// zero-padded sequence must be preserved byte-for-byte: resequencing after a
// restore relies on the maximum sequence for a scope+day being discoverable
// by lexicographic prefix match on the stored numbers.
func Build(orgPrefix, locationCode, departmentCode, dayKey string, seq int, padWidth int) string {
	if padWidth <= 0 {
		padWidth = SequencePadWidth
	}
	return fmt.Sprintf("%s/%s/%s/%s/%0*d", orgPrefix, locationCode, dayKey, departmentCode, padWidth, seq)
}

// ScopePrefix returns the slash-terminated prefix shared by every complaint
// number in the same (location, department, day) scope. A range scan over
// this prefix finds the current maximum sequence for the scope.
func ScopePrefix(orgPrefix, locationCode, departmentCode, dayKey string) string {
	return fmt.Sprintf("%s/%s/%s/%s/", orgPrefix, locationCode, dayKey, departmentCode)
}

// Parts holds the components recovered from a complaint number
type Parts struct {
	OrgPrefix      string
	LocationCode   string
	DepartmentCode string
	DayKey         string
	Sequence       int
}

// Parse splits a complaint number back into its components. The trailing
// sequence and the day key are read from fixed positions, so numbers with a
// widened (>4 digit) sequence parse the same as padded ones.
func Parse(number string) (Parts, error) {
	fields := strings.Split(number, "/")
	if len(fields) != 5 {
		return Parts{}, fmt.Errorf("malformed complaint number %q: want 5 fields, got %d", number, len(fields))
	}

	seq, err := strconv.Atoi(fields[4])
	if err != nil || seq < 1 {
		return Parts{}, fmt.Errorf("malformed complaint number %q: bad sequence %q", number, fields[4])
	}
	if len(fields[2]) != 8 {
		return Parts{}, fmt.Errorf("malformed complaint number %q: bad day key %q", number, fields[2])
	}

	return Parts{
		OrgPrefix:      fields[0],
		LocationCode:   fields[1],
		DayKey:         fields[2],
		DepartmentCode: fields[3],
		Sequence:       seq,
	}, nil
}
