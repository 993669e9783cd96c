package slotdate

import "errors"

// IsBeforeCutoff decides whether a slot starting on startDate is early enough
// to alert on.
//
// The two failure branches are asymmetric on purpose:
//   - no date at all (nil or blank) returns false, nothing confirms the slot matters;
//   - a date that is present but unparseable returns true, so a format change on
//     the provider side over-notifies instead of silently dropping a real opening.
func IsBeforeCutoff(startDate *string, cutoff Date) bool {
	verdict, _ := CheckCutoff(startDate, cutoff)
	return verdict
}

// CheckCutoff is IsBeforeCutoff that also returns the parse error behind a
// fail-open verdict, so callers can log it.
func CheckCutoff(startDate *string, cutoff Date) (bool, error) {
	if startDate == nil {
		return false, nil
	}

	d, err := Parse(*startDate)
	switch {
	case errors.Is(err, ErrEmptyDate):
		return false, nil
	case err != nil:
		return true, err
	}
	return d.Before(cutoff), nil
}
