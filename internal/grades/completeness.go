package grades

// IsComplete reports whether every component required by the subject's
// formula has been entered. A zero grade counts as entered. Subjects with an
// unknown formula are never complete.
func IsComplete(s Subject) bool {
	f, ok := lookup(s.Formula)
	if !ok {
		return false
	}
	for _, field := range f.Fields() {
		if !s.Inputs.Has(field) {
			return false
		}
	}
	return true
}

// Missing lists the required components that are still absent.
func Missing(s Subject) []Field {
	var out []Field
	for _, field := range RequiredInputs(s.Formula) {
		if !s.Inputs.Has(field) {
			out = append(out, field)
		}
	}
	return out
}

// Progress counts complete subjects among those that take part in the
// average. Subjects set aside by their optional group are not counted.
func Progress(subjects []Subject) (completed, total int) {
	included := Resolve(subjects)
	for i, s := range subjects {
		if !included[i] {
			continue
		}
		total++
		if IsComplete(s) {
			completed++
		}
	}
	return completed, total
}

// Ready reports whether a final calculation would count every participating
// subject, i.e. whether the caller may ask for CalculateFinal.
func Ready(subjects []Subject) bool {
	completed, total := Progress(subjects)
	return total > 0 && completed == total
}
