package periods

// ResolvePatch merges a partial schedule patch into an existing schedule and
// returns the fields that should be written. The empty Triple means there is
// nothing to apply.
//
// A field resent with its original value still counts as supplied: a patch
// carrying more than one field expresses a full replacement of the schedule,
// while a lone field is merged with the other two original fields so exactly
// one of them can be recomputed.
func ResolvePatch(original, patch Triple) (Triple, error) {
	changed := diff(original, patch)
	if changed.Empty() {
		return Triple{}, nil
	}

	if patch.fieldCount() == 1 {
		resolved, ok, err := Resolve(overlay(original, patch))
		if err != nil {
			return Triple{}, err
		}
		if !ok {
			// The original is itself underspecified; the lone field
			// applies verbatim and the period stays partial.
			return changed, nil
		}
		return diff(original, resolved), nil
	}

	resolved, ok, err := Resolve(patch)
	if err != nil {
		return Triple{}, err
	}
	if !ok {
		return Triple{}, ErrUnderspecified
	}
	return diff(original, resolved), nil
}

// overlay returns base with any present field of top replacing it.
func overlay(base, top Triple) Triple {
	out := base
	if top.StartDate != nil {
		out.StartDate = top.StartDate
	}
	if top.EndDate != nil {
		out.EndDate = top.EndDate
	}
	if top.DurationWeeks != nil {
		out.DurationWeeks = top.DurationWeeks
	}
	return out
}

// diff returns the fields of next that are present and differ by value from
// original.
func diff(original, next Triple) Triple {
	var out Triple
	if next.StartDate != nil && !equalDate(original.StartDate, next.StartDate) {
		out.StartDate = next.StartDate
	}
	if next.EndDate != nil && !equalDate(original.EndDate, next.EndDate) {
		out.EndDate = next.EndDate
	}
	if next.DurationWeeks != nil && !equalInt(original.DurationWeeks, next.DurationWeeks) {
		out.DurationWeeks = next.DurationWeeks
	}
	return out
}
