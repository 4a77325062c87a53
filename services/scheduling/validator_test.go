package scheduling

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"counselkit_go/models"
)

type fakeDeps struct {
	counselors map[uint]bool
	sessions   []models.Session
	branches   map[string]bool
	teams      map[string]bool
	subjects   map[uint]*models.Subject
}

func newFakeDeps() *fakeDeps {
	return &fakeDeps{
		counselors: map[uint]bool{1: true},
		branches:   map[string]bool{"KH": true, "ATENZ": true},
		teams:      map[string]bool{"JONGNO": true},
		subjects: map[uint]*models.Subject{
			10: {BaseModel: models.BaseModel{ID: 10}, Name: "Math", BranchCode: "KH", Active: true},
			20: {BaseModel: models.BaseModel{ID: 20}, Name: "English", BranchCode: "ATENZ", Active: true},
		},
	}
}

func (f *fakeDeps) CounselorExists(id uint) (bool, error) { return f.counselors[id], nil }

func (f *fakeDeps) HasOverlap(counselorID uint, date time.Time, start, end time.Time, excludeID uint) (bool, error) {
	for _, s := range f.sessions {
		if s.CounselorID != counselorID || !s.Date.Equal(date) {
			continue
		}
		if excludeID != 0 && s.ID == excludeID {
			continue
		}
		if Overlaps(s.StartTime, s.EndTime, start, end) {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeDeps) BranchActive(code string) (bool, error) { return f.branches[code], nil }
func (f *fakeDeps) TeamActive(code string) (bool, error)   { return f.teams[code], nil }
func (f *fakeDeps) SubjectByID(id uint) (*models.Subject, error) {
	return f.subjects[id], nil
}

func clock(hour, min int) time.Time {
	return time.Date(2026, 3, 2, hour, min, 0, 0, time.UTC)
}

func validSession() *models.Session {
	return &models.Session{
		Date:        time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC),
		StartTime:   clock(9, 0),
		EndTime:     clock(10, 0),
		CounselorID: 1,
		BranchCode:  "KH",
		TeamCode:    "JONGNO",
		Mode:        models.ModeOffline,
		Status:      models.StatusPending,
	}
}

func TestOnGrid(t *testing.T) {
	tests := []struct {
		name string
		t    time.Time
		want bool
	}{
		{"on the hour", clock(9, 0), true},
		{"on the half hour", clock(14, 30), true},
		{"quarter past", clock(9, 15), false},
		{"stray seconds", time.Date(2026, 3, 2, 9, 30, 1, 0, time.UTC), false},
		{"stray nanoseconds", time.Date(2026, 3, 2, 9, 0, 0, 500, time.UTC), false},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, OnGrid(tc.t))
		})
	}
}

func TestOverlaps(t *testing.T) {
	a1, a2 := clock(9, 0), clock(10, 0)
	b1, b2 := clock(9, 30), clock(10, 30)

	assert.True(t, Overlaps(a1, a2, b1, b2))
	// symmetric
	assert.Equal(t, Overlaps(a1, a2, b1, b2), Overlaps(b1, b2, a1, a2))
	// an interval overlaps itself
	assert.True(t, Overlaps(a1, a2, a1, a2))
	// boundary-touching slots do not overlap
	assert.False(t, Overlaps(a1, a2, clock(10, 0), clock(11, 0)))
	assert.False(t, Overlaps(clock(10, 0), clock(11, 0), a1, a2))
}

func TestValidateOK(t *testing.T) {
	require.NoError(t, Validate(validSession(), newFakeDeps()))
}

func TestValidateFailures(t *testing.T) {
	reason := models.CancelReason("WEATHER")
	tests := []struct {
		name   string
		mutate func(s *models.Session)
		deps   func(f *fakeDeps)
		want   Kind
	}{
		{
			name:   "unknown status",
			mutate: func(s *models.Session) { s.Status = "MAYBE" },
			want:   KindInvalidEnumValue,
		},
		{
			name:   "unknown mode",
			mutate: func(s *models.Session) { s.Mode = "HYBRID" },
			want:   KindInvalidEnumValue,
		},
		{
			name:   "unknown cancel reason",
			mutate: func(s *models.Session) { s.CancelReason = &reason },
			want:   KindInvalidEnumValue,
		},
		{
			name:   "off-grid start",
			mutate: func(s *models.Session) { s.StartTime = clock(9, 10) },
			want:   KindInvalidTimeGrid,
		},
		{
			name: "end before start",
			mutate: func(s *models.Session) {
				s.StartTime = clock(10, 0)
				s.EndTime = clock(9, 0)
			},
			want: KindInvalidTimeRange,
		},
		{
			name:   "zero-length slot",
			mutate: func(s *models.Session) { s.EndTime = s.StartTime },
			want:   KindInvalidTimeRange,
		},
		{
			name:   "missing counselor",
			mutate: func(s *models.Session) { s.CounselorID = 99 },
			want:   KindNotFound,
		},
		{
			name:   "overlapping slot",
			mutate: func(s *models.Session) {},
			deps: func(f *fakeDeps) {
				f.sessions = append(f.sessions, models.Session{
					BaseModel:   models.BaseModel{ID: 5},
					Date:        time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC),
					StartTime:   clock(9, 30),
					EndTime:     clock(10, 30),
					CounselorID: 1,
				})
			},
			want: KindOverlapConflict,
		},
		{
			name:   "unknown branch",
			mutate: func(s *models.Session) { s.BranchCode = "NOPE" },
			want:   KindInactiveOrUnknownReference,
		},
		{
			name:   "inactive team",
			mutate: func(s *models.Session) { s.TeamCode = "GANGNAM1" },
			want:   KindInactiveOrUnknownReference,
		},
		{
			name:   "registered without subject",
			mutate: func(s *models.Session) { s.Status = models.StatusRegistered },
			want:   KindMissingConditionalField,
		},
		{
			name:   "canceled without reason",
			mutate: func(s *models.Session) { s.Status = models.StatusCanceled },
			want:   KindMissingConditionalField,
		},
		{
			name: "requested subject from another branch",
			mutate: func(s *models.Session) {
				id := uint(20)
				s.RequestedSubjectID = &id
			},
			want: KindSubjectBranchMismatch,
		},
		{
			name: "registered subject does not exist",
			mutate: func(s *models.Session) {
				id := uint(999)
				s.Status = models.StatusRegistered
				s.RegisteredSubjectID = &id
			},
			want: KindSubjectBranchMismatch,
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			deps := newFakeDeps()
			if tc.deps != nil {
				tc.deps(deps)
			}
			s := validSession()
			tc.mutate(s)

			err := Validate(s, deps)
			require.Error(t, err)
			assert.Equal(t, tc.want, KindOf(err))
		})
	}
}

func TestValidateExcludesOwnIDOnUpdate(t *testing.T) {
	deps := newFakeDeps()
	deps.sessions = append(deps.sessions, models.Session{
		BaseModel:   models.BaseModel{ID: 7},
		Date:        time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC),
		StartTime:   clock(9, 0),
		EndTime:     clock(10, 0),
		CounselorID: 1,
	})

	s := validSession()
	s.ID = 7
	require.NoError(t, Validate(s, deps))
}

func TestValidateOrderFirstFailureWins(t *testing.T) {
	// A draft broken in several ways reports the enum failure, which
	// runs before the time checks.
	s := validSession()
	s.Status = "MAYBE"
	s.StartTime = clock(9, 10)
	s.CounselorID = 99

	err := Validate(s, newFakeDeps())
	require.Error(t, err)
	assert.Equal(t, KindInvalidEnumValue, KindOf(err))
}

func TestRegisteredWithValidSubjectSucceeds(t *testing.T) {
	s := validSession()
	id := uint(10)
	s.Status = models.StatusRegistered
	s.RegisteredSubjectID = &id
	require.NoError(t, Validate(s, newFakeDeps()))
}
