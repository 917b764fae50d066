package catalog

import (
	"fmt"
	"regexp"
)

var (
	specIDPattern = regexp.MustCompile(`^[a-z][a-z0-9]*$`)
	keyPattern    = regexp.MustCompile(`^([1-3])([a-z][a-z0-9]*)([12])$`)
)

// Key identifies one semester of one program.
type Key struct {
	Year           string
	Specialization string
	Semester       string
}

// NewKey validates and assembles a key.
func NewKey(year, specialization, semester string) (Key, error) {
	if year != "1" && year != "2" && year != "3" {
		return Key{}, fmt.Errorf("invalid year %q: must be 1, 2 or 3", year)
	}
	if !specIDPattern.MatchString(specialization) {
		return Key{}, fmt.Errorf("invalid specialization %q", specialization)
	}
	if semester != "1" && semester != "2" {
		return Key{}, fmt.Errorf("invalid semester %q: must be 1 or 2", semester)
	}
	return Key{Year: year, Specialization: specialization, Semester: semester}, nil
}

// ParseKey splits a semester key such as "3lfin2".
func ParseKey(s string) (Key, error) {
	m := keyPattern.FindStringSubmatch(s)
	if m == nil {
		return Key{}, fmt.Errorf("invalid semester key %q", s)
	}
	return Key{Year: m[1], Specialization: m[2], Semester: m[3]}, nil
}

// String returns the catalog key, year then specialization then semester.
func (k Key) String() string {
	return k.Year + k.Specialization + k.Semester
}
