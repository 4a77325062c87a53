package services

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"gorm.io/gorm"

	"counselkit_go/models"
	"counselkit_go/services/scheduling"
)

// SessionService owns the session records: every write goes through the
// validator inside a single transaction, so a validation failure never
// leaves a partial write.
type SessionService struct {
	db *gorm.DB
	// mu serializes write paths so two concurrent requests cannot both
	// pass the overlap check and then both commit overlapping slots.
	mu sync.Mutex
}

func NewSessionService(db *gorm.DB) *SessionService {
	return &SessionService{db: db}
}

// gormDeps adapts a gorm handle (transaction or plain connection) to the
// validator's lookup interface.
type gormDeps struct {
	db *gorm.DB
}

func (d *gormDeps) CounselorExists(id uint) (bool, error) {
	var count int64
	if err := d.db.Model(&models.Counselor{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, fmt.Errorf("counselor lookup: %w", err)
	}
	return count > 0, nil
}

func (d *gormDeps) HasOverlap(counselorID uint, date time.Time, start, end time.Time, excludeID uint) (bool, error) {
	query := d.db.Model(&models.Session{}).
		Where("counselor_id = ? AND date = ?", counselorID, date).
		Where("start_time < ? AND end_time > ?", end, start)
	if excludeID != 0 {
		query = query.Where("id <> ?", excludeID)
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, fmt.Errorf("overlap lookup: %w", err)
	}
	return count > 0, nil
}

func (d *gormDeps) BranchActive(code string) (bool, error) {
	var count int64
	if err := d.db.Model(&models.Branch{}).Where("code = ? AND active = ?", code, true).Count(&count).Error; err != nil {
		return false, fmt.Errorf("branch lookup: %w", err)
	}
	return count > 0, nil
}

func (d *gormDeps) TeamActive(code string) (bool, error) {
	var count int64
	if err := d.db.Model(&models.Team{}).Where("code = ? AND active = ?", code, true).Count(&count).Error; err != nil {
		return false, fmt.Errorf("team lookup: %w", err)
	}
	return count > 0, nil
}

func (d *gormDeps) SubjectByID(id uint) (*models.Subject, error) {
	var subject models.Subject
	if err := d.db.First(&subject, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("subject lookup: %w", err)
	}
	return &subject, nil
}

// SessionPatch is a partial update: nil fields keep the current value.
type SessionPatch struct {
	Date                *time.Time
	StartTime           *time.Time
	EndTime             *time.Time
	CounselorID         *uint
	BranchCode          *string
	TeamCode            *string
	StudentName         *string
	RequestedSubjectID  *uint
	RegisteredSubjectID *uint
	Mode                *models.SessionMode
	Status              *models.SessionStatus
	CancelReason        *models.CancelReason
	Comment             *string
}

func applyPatch(s *models.Session, p SessionPatch) {
	if p.Date != nil {
		s.Date = *p.Date
	}
	if p.StartTime != nil {
		s.StartTime = *p.StartTime
	}
	if p.EndTime != nil {
		s.EndTime = *p.EndTime
	}
	if p.CounselorID != nil {
		s.CounselorID = *p.CounselorID
	}
	if p.BranchCode != nil {
		s.BranchCode = *p.BranchCode
	}
	if p.TeamCode != nil {
		s.TeamCode = *p.TeamCode
	}
	if p.StudentName != nil {
		s.StudentName = p.StudentName
	}
	if p.RequestedSubjectID != nil {
		s.RequestedSubjectID = p.RequestedSubjectID
	}
	if p.RegisteredSubjectID != nil {
		s.RegisteredSubjectID = p.RegisteredSubjectID
	}
	if p.Mode != nil {
		s.Mode = *p.Mode
	}
	if p.Status != nil {
		s.Status = *p.Status
	}
	if p.CancelReason != nil {
		s.CancelReason = p.CancelReason
	}
	if p.Comment != nil {
		s.Comment = p.Comment
	}
}

// anchorTimes pins the wall-clock times onto the session's date so
// datetime comparisons between sessions on the same date stay valid
// even after the date is patched on its own.
func anchorTimes(s *models.Session) {
	s.StartTime = time.Date(s.Date.Year(), s.Date.Month(), s.Date.Day(),
		s.StartTime.Hour(), s.StartTime.Minute(), s.StartTime.Second(), s.StartTime.Nanosecond(), time.UTC)
	s.EndTime = time.Date(s.Date.Year(), s.Date.Month(), s.Date.Day(),
		s.EndTime.Hour(), s.EndTime.Minute(), s.EndTime.Second(), s.EndTime.Nanosecond(), time.UTC)
}

// Create validates the candidate session and persists it, returning the
// new id.
func (s *SessionService) Create(session *models.Session) (uint, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	anchorTimes(session)
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := scheduling.Validate(session, &gormDeps{db: tx}); err != nil {
			return err
		}
		if err := tx.Create(session).Error; err != nil {
			return fmt.Errorf("create session: %w", err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return session.ID, nil
}

// Update merges the patch over the stored record and re-runs the full
// validation, with the session's own id excluded from the overlap check.
func (s *SessionService) Update(id uint, patch SessionPatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.db.Transaction(func(tx *gorm.DB) error {
		var session models.Session
		if err := tx.First(&session, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return scheduling.NotFound("session")
			}
			return fmt.Errorf("load session: %w", err)
		}

		applyPatch(&session, patch)
		anchorTimes(&session)

		if err := scheduling.Validate(&session, &gormDeps{db: tx}); err != nil {
			return err
		}
		if err := tx.Save(&session).Error; err != nil {
			return fmt.Errorf("update session: %w", err)
		}
		return nil
	})
}

// Delete removes a session permanently. No cascade side effects.
func (s *SessionService) Delete(id uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	result := s.db.Unscoped().Delete(&models.Session{}, id)
	if result.Error != nil {
		return fmt.Errorf("delete session: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return scheduling.NotFound("session")
	}
	return nil
}

// Get loads a single session by id.
func (s *SessionService) Get(id uint) (*models.Session, error) {
	var session models.Session
	if err := s.db.First(&session, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, scheduling.NotFound("session")
		}
		return nil, fmt.Errorf("load session: %w", err)
	}
	return &session, nil
}

// SessionFilter narrows List results. Zero values mean "no filter";
// the date bounds are inclusive.
type SessionFilter struct {
	From        *time.Time
	To          *time.Time
	BranchCode  string
	TeamCode    string
	CounselorID uint
	Status      models.SessionStatus
	Mode        models.SessionMode
}

func (f SessionFilter) apply(query *gorm.DB) *gorm.DB {
	if f.From != nil {
		query = query.Where("date >= ?", *f.From)
	}
	if f.To != nil {
		query = query.Where("date <= ?", *f.To)
	}
	if f.BranchCode != "" {
		query = query.Where("branch_code = ?", f.BranchCode)
	}
	if f.TeamCode != "" {
		query = query.Where("team_code = ?", f.TeamCode)
	}
	if f.CounselorID != 0 {
		query = query.Where("counselor_id = ?", f.CounselorID)
	}
	if f.Status != "" {
		query = query.Where("status = ?", f.Status)
	}
	if f.Mode != "" {
		query = query.Where("mode = ?", f.Mode)
	}
	return query
}

// List returns sessions matching the filter, ordered by date then start
// time, both ascending.
func (s *SessionService) List(filter SessionFilter) ([]models.Session, error) {
	var sessions []models.Session
	query := filter.apply(s.db.Model(&models.Session{}))
	if err := query.Order("date ASC, start_time ASC").Find(&sessions).Error; err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	return sessions, nil
}

// ListMismatches returns REGISTERED sessions whose requested and
// registered subjects differ, newest date first.
func (s *SessionService) ListMismatches(filter SessionFilter) ([]models.Session, error) {
	var sessions []models.Session
	query := filter.apply(s.db.Model(&models.Session{})).
		Where("status = ?", models.StatusRegistered).
		Where("requested_subject_id IS NOT NULL AND registered_subject_id IS NOT NULL").
		Where("requested_subject_id <> registered_subject_id")
	if err := query.Order("date DESC, start_time ASC").Find(&sessions).Error; err != nil {
		return nil, fmt.Errorf("list mismatches: %w", err)
	}
	return sessions, nil
}

// BatchStatusFields are the prospective values a batch update applies to
// every selected session. Nil fields keep each session's current value.
type BatchStatusFields struct {
	Status              *models.SessionStatus
	CancelReason        *models.CancelReason
	Comment             *string
	RegisteredSubjectID *uint
}

// BatchUpdateStatus applies the fields to each id inside one
// transaction. The conditional-field rule and the subject-branch guard
// are checked per session against its existing branch and requested
// subject with the prospective new values; the first failure rolls the
// whole batch back and the returned error names the failing id.
func (s *SessionService) BatchUpdateStatus(ids []uint, fields BatchStatusFields) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	updated := 0
	err := s.db.Transaction(func(tx *gorm.DB) error {
		deps := &gormDeps{db: tx}
		for _, id := range ids {
			var session models.Session
			if err := tx.First(&session, id).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return fmt.Errorf("session %d: %w", id, scheduling.NotFound("session"))
				}
				return fmt.Errorf("session %d: %w", id, err)
			}

			status := session.Status
			if fields.Status != nil {
				status = *fields.Status
			}
			registeredID := session.RegisteredSubjectID
			if fields.RegisteredSubjectID != nil {
				registeredID = fields.RegisteredSubjectID
			}
			cancelReason := session.CancelReason
			if fields.CancelReason != nil {
				cancelReason = fields.CancelReason
			}

			if !status.Valid() {
				return fmt.Errorf("session %d: %w", id,
					scheduling.Errorf(scheduling.KindInvalidEnumValue, "invalid session status %q", status))
			}
			if cancelReason != nil && !cancelReason.Valid() {
				return fmt.Errorf("session %d: %w", id,
					scheduling.Errorf(scheduling.KindInvalidEnumValue, "invalid cancel reason %q", *cancelReason))
			}
			if err := scheduling.ConditionalFields(status, registeredID, cancelReason); err != nil {
				return fmt.Errorf("session %d: %w", id, err)
			}
			if err := scheduling.SubjectBranchGuard(session.BranchCode, session.RequestedSubjectID, registeredID, deps); err != nil {
				return fmt.Errorf("session %d: %w", id, err)
			}

			session.Status = status
			session.RegisteredSubjectID = registeredID
			session.CancelReason = cancelReason
			if fields.Comment != nil {
				session.Comment = fields.Comment
			}

			if err := tx.Save(&session).Error; err != nil {
				return fmt.Errorf("session %d: %w", id, err)
			}
			updated++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return updated, nil
}
