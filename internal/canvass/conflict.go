package canvass

import "time"

// Supersession instructs the engine to close a prior assignment at the new
// one's start as part of creating the new one. NewStatus is COMPLETED when
// real work could have occurred in the prior window, CANCELLED when the
// window would be zero-width or had never started.
type Supersession struct {
	Prior     *AssignmentRecord
	CloseAt   time.Time
	NewStatus AssignmentStatus
}

// windowsOverlap reports whether [aFrom, aTo) and [bFrom, bTo) intersect,
// treating a nil end as open-ended.
func windowsOverlap(aFrom time.Time, aTo *time.Time, bFrom time.Time, bTo *time.Time) bool {
	if aTo != nil && !bFrom.Before(*aTo) {
		return false
	}
	if bTo != nil && !aFrom.Before(*bTo) {
		return false
	}
	return true
}

// CheckAndReserve validates a candidate window [from, to) against the zone's
// non-terminal assignments. It returns (nil, nil) when nothing overlaps, a
// supersession instruction when the candidate is a forward-dated replacement
// of exactly one record, and OverlapConflictError otherwise. When the two
// effective-from instants are exactly equal the newer request wins and the
// prior record is cancelled rather than completed.
func CheckAndReserve(existing []AssignmentRecord, from time.Time, to *time.Time) (*Supersession, error) {
	var overlapping []*AssignmentRecord
	for i := range existing {
		rec := &existing[i]
		if rec.Status.terminal() {
			continue
		}
		if windowsOverlap(rec.EffectiveFrom, rec.EffectiveTo, from, to) {
			overlapping = append(overlapping, rec)
		}
	}

	switch len(overlapping) {
	case 0:
		return nil, nil
	case 1:
		prior := overlapping[0]
		if from.Before(prior.EffectiveFrom) {
			// Historical backfill under an existing window is a true overlap.
			return nil, &OverlapConflictError{ZoneID: prior.ZoneID, ConflictingID: prior.ID}
		}
		status := AssignmentCompleted
		if from.Equal(prior.EffectiveFrom) || prior.Status == AssignmentPending {
			// No work can have occurred in a zero-width or unstarted window.
			status = AssignmentCancelled
		}
		return &Supersession{Prior: prior, CloseAt: from, NewStatus: status}, nil
	default:
		return nil, &OverlapConflictError{ZoneID: overlapping[0].ZoneID, ConflictingID: overlapping[0].ID}
	}
}
