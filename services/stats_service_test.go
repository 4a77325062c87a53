package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"counselkit_go/models"
)

func seedStatsSession(t *testing.T, db *gorm.DB, d int, branch, team string, status models.SessionStatus, requested, registered *uint) {
	t.Helper()
	date := day(2026, 3, d)
	var reason *models.CancelReason
	if status == models.StatusCanceled {
		reason = reasonPtr(models.CancelPersonal)
	}
	require.NoError(t, db.Create(&models.Session{
		Date:                date,
		StartTime:           at(date, 9, 0),
		EndTime:             at(date, 10, 0),
		CounselorID:         1,
		BranchCode:          branch,
		TeamCode:            team,
		Mode:                models.ModeOffline,
		Status:              status,
		RequestedSubjectID:  requested,
		RegisteredSubjectID: registered,
		CancelReason:        reason,
	}).Error)
}

func rangeFor(t *testing.T) (*time.Time, *time.Time) {
	t.Helper()
	from, to := day(2026, 3, 1), day(2026, 3, 31)
	return &from, &to
}

func branchStat(t *testing.T, report *Report, code string) BranchStat {
	t.Helper()
	for _, bs := range report.BranchStats {
		if bs.Branch == code {
			return bs
		}
	}
	t.Fatalf("branch %s missing from report", code)
	return BranchStat{}
}

func TestOverviewBranchStats(t *testing.T) {
	db := newTestDB(t)
	seedReferenceData(t, db)
	svc := NewStatsService(db)

	// KH: 4 counseling sessions, 3 of them registered.
	for i := 0; i < 3; i++ {
		seedStatsSession(t, db, 2+i, "KH", "JONGNO", models.StatusRegistered, nil, uintPtr(10))
	}
	seedStatsSession(t, db, 5, "KH", "JONGNO", models.StatusDone, nil, nil)
	// PENDING and CANCELED do not count as counseling.
	seedStatsSession(t, db, 6, "KH", "JONGNO", models.StatusPending, nil, nil)
	seedStatsSession(t, db, 7, "KH", "JONGNO", models.StatusCanceled, nil, nil)

	require.NoError(t, db.Create(&models.DailyDB{Date: day(2026, 3, 2), BranchCode: "KH", DBCount: 6}).Error)
	require.NoError(t, db.Create(&models.DailyDB{Date: day(2026, 3, 3), BranchCode: "KH", DBCount: 2}).Error)

	from, to := rangeFor(t)
	report, err := svc.Overview(from, to, "", "")
	require.NoError(t, err)

	kh := branchStat(t, report, "KH")
	assert.Equal(t, 4, kh.Counseling)
	assert.Equal(t, 3, kh.Registered)
	assert.Equal(t, 8, kh.TotalDB)
	require.NotNil(t, kh.RegistrationRate)
	assert.InDelta(t, 0.75, *kh.RegistrationRate, 1e-9)
	require.NotNil(t, kh.CounselingRate)
	assert.InDelta(t, 0.5, *kh.CounselingRate, 1e-9)

	// ATENZ had no sessions and no DB rows: counts zero, rates null.
	atenz := branchStat(t, report, "ATENZ")
	assert.Zero(t, atenz.Counseling)
	assert.Nil(t, atenz.RegistrationRate)
	assert.Nil(t, atenz.CounselingRate)

	// VIDEO is inactive and must not appear at all.
	for _, bs := range report.BranchStats {
		assert.NotEqual(t, "VIDEO", bs.Branch)
	}
}

func TestOverviewCardsUseSummedCountsNotAveragedRates(t *testing.T) {
	db := newTestDB(t)
	seedReferenceData(t, db)
	svc := NewStatsService(db)

	// KH: 1 registered of 2 counseling (0.5).
	seedStatsSession(t, db, 2, "KH", "JONGNO", models.StatusRegistered, nil, uintPtr(10))
	seedStatsSession(t, db, 3, "KH", "JONGNO", models.StatusDone, nil, nil)
	// ATENZ: 1 registered of 10 counseling (0.1).
	seedStatsSession(t, db, 2, "ATENZ", "JONGNO", models.StatusRegistered, nil, uintPtr(20))
	for i := 0; i < 9; i++ {
		seedStatsSession(t, db, 4+i, "ATENZ", "JONGNO", models.StatusDone, nil, nil)
	}

	from, to := rangeFor(t)
	report, err := svc.Overview(from, to, "", "")
	require.NoError(t, err)

	// Averaging the per-branch rates would give 0.3; the card must be
	// the ratio of the summed counts, 2/12.
	require.NotNil(t, report.Cards.BranchRegistrationRate)
	assert.InDelta(t, 2.0/12.0, *report.Cards.BranchRegistrationRate, 1e-9)
}

func TestOverviewTeamDenominatorSubstitution(t *testing.T) {
	db := newTestDB(t)
	seedReferenceData(t, db)
	svc := NewStatsService(db)

	seedStatsSession(t, db, 2, "KH", "JONGNO", models.StatusDone, nil, nil)
	seedStatsSession(t, db, 2, "KH", "DANGSAN", models.StatusDone, nil, nil)

	require.NoError(t, db.Create(&models.DailyDB{Date: day(2026, 3, 2), BranchCode: "KH", DBCount: 10}).Error)
	require.NoError(t, db.Create(&models.DailyDBTeam{Date: day(2026, 3, 2), TeamCode: "JONGNO", DBCount: 4}).Error)

	from, to := rangeFor(t)

	// Team filter: only JONGNO's session counts and the denominator is
	// the team-scoped sum.
	report, err := svc.Overview(from, to, "", "JONGNO")
	require.NoError(t, err)
	kh := branchStat(t, report, "KH")
	assert.Equal(t, 1, kh.Counseling)
	assert.Equal(t, 4, kh.TotalDB)
	require.NotNil(t, kh.CounselingRate)
	assert.InDelta(t, 0.25, *kh.CounselingRate, 1e-9)

	// A team without its own DB rows falls back to the branch counts.
	report, err = svc.Overview(from, to, "", "DANGSAN")
	require.NoError(t, err)
	kh = branchStat(t, report, "KH")
	assert.Equal(t, 1, kh.Counseling)
	assert.Equal(t, 10, kh.TotalDB)

	// No team filter: branch denominator.
	report, err = svc.Overview(from, to, "", "")
	require.NoError(t, err)
	kh = branchStat(t, report, "KH")
	assert.Equal(t, 2, kh.Counseling)
	assert.Equal(t, 10, kh.TotalDB)
}

func TestOverviewSubjectStats(t *testing.T) {
	db := newTestDB(t)
	seedReferenceData(t, db)
	svc := NewStatsService(db)

	// Three sessions requested subject 10: one registered under 10,
	// one registered under 11, one done without registration.
	seedStatsSession(t, db, 2, "KH", "JONGNO", models.StatusRegistered, uintPtr(10), uintPtr(10))
	seedStatsSession(t, db, 3, "KH", "JONGNO", models.StatusRegistered, uintPtr(10), uintPtr(11))
	seedStatsSession(t, db, 4, "KH", "JONGNO", models.StatusDone, uintPtr(10), nil)

	from, to := rangeFor(t)
	report, err := svc.Overview(from, to, "", "")
	require.NoError(t, err)

	var req10 *SubjectRequestStat
	for i := range report.SubjectStatsRequest {
		if report.SubjectStatsRequest[i].SubjectID == 10 {
			req10 = &report.SubjectStatsRequest[i]
		}
	}
	require.NotNil(t, req10)
	assert.Equal(t, 3, req10.Counseling)
	assert.Equal(t, 2, req10.Registered)
	require.NotNil(t, req10.RegistrationRate)
	assert.InDelta(t, 2.0/3.0, *req10.RegistrationRate, 1e-9)

	// Registered basis: subject 10's numerator counts registrations
	// recorded under 10 (one), over the 3 requests for 10. Subject 11
	// has one registration but zero requests, so its rate stays null.
	var reg10, reg11 *SubjectRegisteredStat
	for i := range report.SubjectStatsRegister {
		switch report.SubjectStatsRegister[i].SubjectID {
		case 10:
			reg10 = &report.SubjectStatsRegister[i]
		case 11:
			reg11 = &report.SubjectStatsRegister[i]
		}
	}
	require.NotNil(t, reg10)
	assert.Equal(t, 3, reg10.CounselingByRequest)
	assert.Equal(t, 1, reg10.RegisteredByRegistered)
	require.NotNil(t, reg10.RegistrationRate)
	assert.InDelta(t, 1.0/3.0, *reg10.RegistrationRate, 1e-9)

	require.NotNil(t, reg11)
	assert.Equal(t, 0, reg11.CounselingByRequest)
	assert.Equal(t, 1, reg11.RegisteredByRegistered)
	assert.Nil(t, reg11.RegistrationRate)
}

func TestOverviewBranchFilterScopesSubjects(t *testing.T) {
	db := newTestDB(t)
	seedReferenceData(t, db)
	svc := NewStatsService(db)

	from, to := rangeFor(t)
	report, err := svc.Overview(from, to, "ATENZ", "")
	require.NoError(t, err)

	require.Len(t, report.BranchStats, 1)
	assert.Equal(t, "ATENZ", report.BranchStats[0].Branch)
	for _, ss := range report.SubjectStatsRequest {
		assert.Equal(t, "ATENZ", ss.Branch)
	}
}

func TestOverviewUnknownBranchFilterYieldsEmptyStats(t *testing.T) {
	db := newTestDB(t)
	seedReferenceData(t, db)
	svc := NewStatsService(db)

	from, to := rangeFor(t)
	report, err := svc.Overview(from, to, "NOPE", "")
	require.NoError(t, err)
	assert.Empty(t, report.BranchStats)
	assert.Nil(t, report.Cards.BranchRegistrationRate)
}

func TestDefaultRange(t *testing.T) {
	from, to := DefaultRange(nil, nil)
	assert.Equal(t, 30*24*time.Hour, to.Sub(from))

	explicitFrom, explicitTo := day(2026, 1, 1), day(2026, 1, 31)
	from, to = DefaultRange(&explicitFrom, &explicitTo)
	assert.True(t, from.Equal(explicitFrom))
	assert.True(t, to.Equal(explicitTo))
}

func TestRatio(t *testing.T) {
	assert.Nil(t, Ratio(3, 0))
	assert.Nil(t, Ratio(0, 0))
	r := Ratio(3, 4)
	require.NotNil(t, r)
	assert.InDelta(t, 0.75, *r, 1e-9)
	zero := Ratio(0, 5)
	require.NotNil(t, zero)
	assert.Zero(t, *zero)
}
