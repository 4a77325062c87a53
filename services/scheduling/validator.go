package scheduling

import (
	"time"

	"counselkit_go/models"
)

// Deps supplies the lookups the validator needs. Implementations are
// injected by the caller; the validator itself never touches storage
// globals and performs no writes.
type Deps interface {
	CounselorExists(id uint) (bool, error)
	// HasOverlap reports whether another session for the same counselor
	// on the same date overlaps [start, end). excludeID skips the
	// session's own row on update (0 on create).
	HasOverlap(counselorID uint, date time.Time, start, end time.Time, excludeID uint) (bool, error)
	BranchActive(code string) (bool, error)
	TeamActive(code string) (bool, error)
	// SubjectByID returns nil, nil when the subject does not exist.
	SubjectByID(id uint) (*models.Subject, error)
}

// OnGrid reports whether t lies on the 30-minute scheduling grid:
// minute 0 or 30, no seconds or sub-second component.
func OnGrid(t time.Time) bool {
	return (t.Minute() == 0 || t.Minute() == 30) && t.Second() == 0 && t.Nanosecond() == 0
}

// Overlaps is the half-open interval test used for counselor slots:
// [aStart, aEnd) and [bStart, bEnd) overlap iff each starts before the
// other ends. Boundary-touching slots do not overlap.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && bStart.Before(aEnd)
}

// Validate runs the full rule set against a candidate session record,
// fail-fast in a fixed order; the first failing check wins. On update
// the candidate's own ID is excluded from the overlap comparison.
func Validate(s *models.Session, deps Deps) error {
	if !s.Status.Valid() {
		return Errorf(KindInvalidEnumValue, "invalid session status %q", s.Status)
	}
	if !s.Mode.Valid() {
		return Errorf(KindInvalidEnumValue, "invalid session mode %q", s.Mode)
	}
	if s.CancelReason != nil && !s.CancelReason.Valid() {
		return Errorf(KindInvalidEnumValue, "invalid cancel reason %q", *s.CancelReason)
	}

	if !OnGrid(s.StartTime) || !OnGrid(s.EndTime) {
		return Errorf(KindInvalidTimeGrid, "start and end times must be on the 30-minute grid")
	}
	if !s.EndTime.After(s.StartTime) {
		return Errorf(KindInvalidTimeRange, "end time must be after start time")
	}

	exists, err := deps.CounselorExists(s.CounselorID)
	if err != nil {
		return err
	}
	if !exists {
		return NotFound("counselor")
	}

	overlap, err := deps.HasOverlap(s.CounselorID, s.Date, s.StartTime, s.EndTime, s.ID)
	if err != nil {
		return err
	}
	if overlap {
		return Errorf(KindOverlapConflict, "counselor already has a session in this time slot")
	}

	if err := checkBranchTeam(s.BranchCode, s.TeamCode, deps); err != nil {
		return err
	}

	if err := ConditionalFields(s.Status, s.RegisteredSubjectID, s.CancelReason); err != nil {
		return err
	}

	return SubjectBranchGuard(s.BranchCode, s.RequestedSubjectID, s.RegisteredSubjectID, deps)
}

func checkBranchTeam(branchCode, teamCode string, deps Deps) error {
	active, err := deps.BranchActive(branchCode)
	if err != nil {
		return err
	}
	if !active {
		return Errorf(KindInactiveOrUnknownReference, "unknown or inactive branch code %q", branchCode)
	}
	active, err = deps.TeamActive(teamCode)
	if err != nil {
		return err
	}
	if !active {
		return Errorf(KindInactiveOrUnknownReference, "unknown or inactive team code %q", teamCode)
	}
	return nil
}

// ConditionalFields enforces the status-dependent field requirements:
// REGISTERED needs a registered subject, CANCELED needs a cancel reason.
// The batch status update runs this check on its own, outside Validate.
func ConditionalFields(status models.SessionStatus, registeredSubjectID *uint, cancelReason *models.CancelReason) error {
	if status == models.StatusRegistered && registeredSubjectID == nil {
		return Errorf(KindMissingConditionalField, "a registered subject is required when status is REGISTERED")
	}
	if status == models.StatusCanceled && cancelReason == nil {
		return Errorf(KindMissingConditionalField, "a cancel reason is required when status is CANCELED")
	}
	return nil
}

// SubjectBranchGuard verifies that every non-nil subject reference
// belongs to the session's branch.
func SubjectBranchGuard(branchCode string, requestedID, registeredID *uint, deps Deps) error {
	for _, id := range []*uint{requestedID, registeredID} {
		if id == nil {
			continue
		}
		subj, err := deps.SubjectByID(*id)
		if err != nil {
			return err
		}
		if subj == nil || subj.BranchCode != branchCode {
			return Errorf(KindSubjectBranchMismatch, "subjects must be chosen from the session's branch")
		}
	}
	return nil
}
