package grades

import "github.com/dotcommander/moyenne/internal/logging"

// IsActive reports whether the student has started filling s: at least one
// component is present. Zero is a real grade and makes a subject active.
func IsActive(s Subject) bool {
	return s.Inputs.Any()
}

// winners maps each optional group to the index of the subject that counts
// for it. Only groups with an active member appear. When several members are
// active, the first one in list order wins.
func winners(subjects []Subject) map[string]int {
	out := make(map[string]int)
	for i, s := range subjects {
		if s.OptionalGroup == "" || !IsActive(s) {
			continue
		}
		if first, ok := out[s.OptionalGroup]; ok {
			logging.Logf("grades: optional group %q has several filled subjects; keeping %q, ignoring %q",
				s.OptionalGroup, subjects[first].Name, s.Name)
			continue
		}
		out[s.OptionalGroup] = i
	}
	return out
}

// Resolve returns, for each subject, whether it takes part in aggregation.
//
// Ungrouped subjects always take part. In an optional group with an active
// member only that member takes part; a group where nobody is active keeps
// every member so the student still sees them as pending.
func Resolve(subjects []Subject) []bool {
	won := winners(subjects)
	included := make([]bool, len(subjects))
	for i, s := range subjects {
		if s.OptionalGroup == "" {
			included[i] = true
			continue
		}
		w, ok := won[s.OptionalGroup]
		included[i] = !ok || w == i
	}
	return included
}

// Locked reports whether subject i is set aside because another member of
// its optional group is being filled. Entry screens disable locked subjects.
func Locked(subjects []Subject, i int) bool {
	if i < 0 || i >= len(subjects) {
		return false
	}
	return !Resolve(subjects)[i]
}

// ActiveGroups maps each optional group that has a chosen subject to that
// subject's name.
func ActiveGroups(subjects []Subject) map[string]string {
	out := make(map[string]string)
	for group, i := range winners(subjects) {
		out[group] = subjects[i].Name
	}
	return out
}
