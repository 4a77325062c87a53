package services

import (
	"fmt"
	"time"

	"gorm.io/gorm"

	"counselkit_go/models"
)

// StatsService computes the dashboard KPI report: per-branch and
// per-subject counseling/registration rates over a date range, with the
// daily lead counts (DailyDB / DailyDBTeam) as counseling-rate
// denominators.
type StatsService struct {
	db *gorm.DB
}

func NewStatsService(db *gorm.DB) *StatsService {
	return &StatsService{db: db}
}

type ReportRange struct {
	From string `json:"from"`
	To   string `json:"to"`
}

type BranchStat struct {
	Branch           string   `json:"branch"`
	BranchLabel      string   `json:"branch_label"`
	Counseling       int      `json:"counseling"`
	Registered       int      `json:"registered"`
	TotalDB          int      `json:"total_db"`
	RegistrationRate *float64 `json:"registration_rate"`
	CounselingRate   *float64 `json:"counseling_rate"`
}

type SubjectRequestStat struct {
	SubjectID        uint     `json:"subject_id"`
	SubjectName      string   `json:"subject_name"`
	Branch           string   `json:"branch"`
	Counseling       int      `json:"counseling"`
	Registered       int      `json:"registered"`
	RegistrationRate *float64 `json:"registration_rate"`
}

type SubjectRegisteredStat struct {
	SubjectID              uint     `json:"subject_id"`
	SubjectName            string   `json:"subject_name"`
	Branch                 string   `json:"branch"`
	CounselingByRequest    int      `json:"counseling_by_request"`
	RegisteredByRegistered int      `json:"registered_by_registered"`
	RegistrationRate       *float64 `json:"registration_rate_registered_basis"`
}

type ReportCards struct {
	BranchRegistrationRate          *float64 `json:"branch_registration_rate"`
	BranchCounselingRate            *float64 `json:"branch_counseling_rate"`
	SubjectRegistrationRateRequest  *float64 `json:"subject_registration_rate_request_basis"`
	SubjectRegistrationRateRegister *float64 `json:"subject_registration_rate_registered_basis"`
}

type Report struct {
	Range                ReportRange             `json:"range"`
	BranchStats          []BranchStat            `json:"branch_stats"`
	SubjectStatsRequest  []SubjectRequestStat    `json:"subject_stats_request"`
	SubjectStatsRegister []SubjectRegisteredStat `json:"subject_stats_registered"`
	Cards                ReportCards             `json:"cards"`
}

// Ratio guards every rate computation: a zero or negative denominator
// yields nil ("no data"), never NaN, zero or a panic.
func Ratio(numerator, denominator int) *float64 {
	if denominator <= 0 {
		return nil
	}
	v := float64(numerator) / float64(denominator)
	return &v
}

// DefaultRange fills missing bounds with the 30 days ending today.
func DefaultRange(from, to *time.Time) (time.Time, time.Time) {
	if from == nil || to == nil {
		now := time.Now().UTC()
		end := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
		return end.AddDate(0, 0, -30), end
	}
	return *from, *to
}

// overviewInputs carries the fetched counts so the rate and card math is
// a pure function of them.
type overviewInputs struct {
	branches  []models.Branch
	subjects  []models.Subject
	teamScope bool

	counselingByBranch map[string]int
	registeredByBranch map[string]int
	branchDB           map[string]int
	teamDBSum          int

	subjectReqCounseling map[uint]int
	subjectReqRegistered map[uint]int
	subjectRegRegistered map[uint]int
}

// Overview builds the KPI report for the range and optional branch/team
// filters. A team filter swaps the counseling-rate denominator to the
// team-scoped daily counts, falling back to the branch counts when the
// team sum is zero.
func (ss *StatsService) Overview(from, to *time.Time, branchCode, teamCode string) (*Report, error) {
	fromDate, toDate := DefaultRange(from, to)

	inputs, err := ss.fetchOverviewInputs(fromDate, toDate, branchCode, teamCode)
	if err != nil {
		return nil, err
	}

	report := buildReport(inputs)
	report.Range = ReportRange{
		From: fromDate.Format("2006-01-02"),
		To:   toDate.Format("2006-01-02"),
	}
	return report, nil
}

type codeCount struct {
	Code  string
	Count int
}

type subjectCount struct {
	SubjectID uint
	Count     int
}

func (ss *StatsService) fetchOverviewInputs(fromDate, toDate time.Time, branchCode, teamCode string) (*overviewInputs, error) {
	inputs := &overviewInputs{teamScope: teamCode != ""}

	branchQuery := ss.db.Where("active = ?", true)
	if err := branchQuery.Order("code").Find(&inputs.branches).Error; err != nil {
		return nil, fmt.Errorf("load branches: %w", err)
	}
	if branchCode != "" {
		scoped := inputs.branches[:0:0]
		for _, b := range inputs.branches {
			if b.Code == branchCode {
				scoped = append(scoped, b)
			}
		}
		inputs.branches = scoped
	}

	sessionScope := func() *gorm.DB {
		q := ss.db.Model(&models.Session{}).
			Where("date >= ? AND date <= ?", fromDate, toDate)
		if branchCode != "" {
			q = q.Where("branch_code = ?", branchCode)
		}
		if teamCode != "" {
			q = q.Where("team_code = ?", teamCode)
		}
		return q
	}

	var err error
	inputs.counselingByBranch, err = branchCounts(sessionScope().
		Where("status IN ?", models.CounselingStatuses))
	if err != nil {
		return nil, fmt.Errorf("counseling counts: %w", err)
	}
	inputs.registeredByBranch, err = branchCounts(sessionScope().
		Where("status = ?", models.StatusRegistered))
	if err != nil {
		return nil, fmt.Errorf("registered counts: %w", err)
	}

	if teamCode != "" {
		var sum int
		err = ss.db.Model(&models.DailyDBTeam{}).
			Select("COALESCE(SUM(db_count), 0)").
			Where("date >= ? AND date <= ? AND team_code = ?", fromDate, toDate, teamCode).
			Scan(&sum).Error
		if err != nil {
			return nil, fmt.Errorf("team db sum: %w", err)
		}
		inputs.teamDBSum = sum
	}

	branchDBQuery := ss.db.Model(&models.DailyDB{}).
		Select("branch_code AS code, COALESCE(SUM(db_count), 0) AS count").
		Where("date >= ? AND date <= ?", fromDate, toDate)
	if branchCode != "" {
		branchDBQuery = branchDBQuery.Where("branch_code = ?", branchCode)
	}
	inputs.branchDB, err = scanCodeCounts(branchDBQuery.Group("branch_code"))
	if err != nil {
		return nil, fmt.Errorf("branch db sums: %w", err)
	}

	subjectQuery := ss.db.Where("active = ?", true)
	if branchCode != "" {
		subjectQuery = subjectQuery.Where("branch_code = ?", branchCode)
	}
	if err := subjectQuery.Order("name").Find(&inputs.subjects).Error; err != nil {
		return nil, fmt.Errorf("load subjects: %w", err)
	}
	known := make(map[uint]bool, len(inputs.subjects))
	for _, s := range inputs.subjects {
		known[s.ID] = true
	}

	inputs.subjectReqCounseling, err = subjectCounts(sessionScope().
		Where("status IN ?", models.CounselingStatuses).
		Where("requested_subject_id IS NOT NULL"), "requested_subject_id", known)
	if err != nil {
		return nil, fmt.Errorf("subject request counseling counts: %w", err)
	}
	inputs.subjectReqRegistered, err = subjectCounts(sessionScope().
		Where("status = ?", models.StatusRegistered).
		Where("requested_subject_id IS NOT NULL"), "requested_subject_id", known)
	if err != nil {
		return nil, fmt.Errorf("subject request registered counts: %w", err)
	}
	inputs.subjectRegRegistered, err = subjectCounts(sessionScope().
		Where("status = ?", models.StatusRegistered).
		Where("registered_subject_id IS NOT NULL"), "registered_subject_id", known)
	if err != nil {
		return nil, fmt.Errorf("subject registered counts: %w", err)
	}

	return inputs, nil
}

func branchCounts(query *gorm.DB) (map[string]int, error) {
	return scanCodeCounts(query.
		Select("branch_code AS code, COUNT(*) AS count").
		Group("branch_code"))
}

func scanCodeCounts(query *gorm.DB) (map[string]int, error) {
	var rows []codeCount
	if err := query.Scan(&rows).Error; err != nil {
		return nil, err
	}
	out := make(map[string]int, len(rows))
	for _, r := range rows {
		out[r.Code] = r.Count
	}
	return out, nil
}

func subjectCounts(query *gorm.DB, column string, known map[uint]bool) (map[uint]int, error) {
	var rows []subjectCount
	err := query.
		Select(column + " AS subject_id, COUNT(*) AS count").
		Group(column).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make(map[uint]int, len(rows))
	for _, r := range rows {
		if known[r.SubjectID] {
			out[r.SubjectID] = r.Count
		}
	}
	return out, nil
}

// buildReport is the pure aggregation step over the fetched counts.
// Card rates are recomputed from summed counts, never averaged from the
// per-row rates.
func buildReport(in *overviewInputs) *Report {
	report := &Report{
		BranchStats:          make([]BranchStat, 0, len(in.branches)),
		SubjectStatsRequest:  make([]SubjectRequestStat, 0, len(in.subjects)),
		SubjectStatsRegister: make([]SubjectRegisteredStat, 0, len(in.subjects)),
	}

	totalCounseling, totalRegistered, totalDBSum := 0, 0, 0
	for _, branch := range in.branches {
		counseling := in.counselingByBranch[branch.Code]
		registered := in.registeredByBranch[branch.Code]

		totalDB := in.branchDB[branch.Code]
		if in.teamScope && in.teamDBSum > 0 {
			totalDB = in.teamDBSum
		}

		report.BranchStats = append(report.BranchStats, BranchStat{
			Branch:           branch.Code,
			BranchLabel:      branch.Label,
			Counseling:       counseling,
			Registered:       registered,
			TotalDB:          totalDB,
			RegistrationRate: Ratio(registered, counseling),
			CounselingRate:   Ratio(counseling, totalDB),
		})

		totalCounseling += counseling
		totalRegistered += registered
		totalDBSum += totalDB
	}
	// With a team filter the card denominator is the team sum itself,
	// not the per-branch substituted values added up.
	if in.teamScope {
		totalDBSum = in.teamDBSum
	}

	subjReqCounselingSum, subjReqRegisteredSum, subjRegRegisteredSum := 0, 0, 0
	for _, subject := range in.subjects {
		reqCounseling := in.subjectReqCounseling[subject.ID]
		reqRegistered := in.subjectReqRegistered[subject.ID]
		regRegistered := in.subjectRegRegistered[subject.ID]

		report.SubjectStatsRequest = append(report.SubjectStatsRequest, SubjectRequestStat{
			SubjectID:        subject.ID,
			SubjectName:      subject.Name,
			Branch:           subject.BranchCode,
			Counseling:       reqCounseling,
			Registered:       reqRegistered,
			RegistrationRate: Ratio(reqRegistered, reqCounseling),
		})

		// Registered basis: the numerator counts sessions registered
		// under this subject, the denominator stays the request count
		// for the same subject. Not bounded to [0,1] by construction;
		// this mirrors how the business reads the two views together.
		report.SubjectStatsRegister = append(report.SubjectStatsRegister, SubjectRegisteredStat{
			SubjectID:              subject.ID,
			SubjectName:            subject.Name,
			Branch:                 subject.BranchCode,
			CounselingByRequest:    reqCounseling,
			RegisteredByRegistered: regRegistered,
			RegistrationRate:       Ratio(regRegistered, reqCounseling),
		})

		subjReqCounselingSum += reqCounseling
		subjReqRegisteredSum += reqRegistered
		subjRegRegisteredSum += regRegistered
	}

	report.Cards = ReportCards{
		BranchRegistrationRate:          Ratio(totalRegistered, totalCounseling),
		BranchCounselingRate:            Ratio(totalCounseling, totalDBSum),
		SubjectRegistrationRateRequest:  Ratio(subjReqRegisteredSum, subjReqCounselingSum),
		SubjectRegistrationRateRegister: Ratio(subjRegRegisteredSum, subjReqCounselingSum),
	}
	return report
}
