package controllers

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/xuri/excelize/v2"

	"counselkit_go/services"
	"counselkit_go/utils"
)

type StatsController struct {
	svc      *services.StatsService
	cache    *services.ReportCache
	sessions *services.SessionService
	meta     *services.MetaService
}

func NewStatsController(svc *services.StatsService, cache *services.ReportCache,
	sessions *services.SessionService, meta *services.MetaService) *StatsController {
	return &StatsController{svc: svc, cache: cache, sessions: sessions, meta: meta}
}

func parseRangeParams(c *fiber.Ctx) (*time.Time, *time.Time, error) {
	var from, to *time.Time
	if v := c.Query("from_date"); v != "" {
		t, err := utils.ParseDate(v)
		if err != nil {
			return nil, nil, err
		}
		from = &t
	}
	if v := c.Query("to_date"); v != "" {
		t, err := utils.ParseDate(v)
		if err != nil {
			return nil, nil, err
		}
		to = &t
	}
	return from, to, nil
}

// GetOverview returns the KPI report for the range and optional
// branch/team filters. Recent identical requests are served from the
// report cache.
func (st *StatsController) GetOverview(c *fiber.Ctx) error {
	from, to, err := parseRangeParams(c)
	if err != nil {
		return badRequest(c, "Invalid date range, expected YYYY-MM-DD")
	}
	branch := c.Query("branch")
	team := c.Query("team")

	if cached := st.cache.Get(c.Context(), c.Query("from_date"), c.Query("to_date"), branch, team); cached != nil {
		return c.JSON(cached)
	}

	report, err := st.svc.Overview(from, to, branch, team)
	if err != nil {
		return respondError(c, err)
	}

	st.cache.Set(c.Context(), c.Query("from_date"), c.Query("to_date"), branch, team, report)
	return c.JSON(report)
}

func subjectName(labels *services.DisplayLabels, id *uint) string {
	if id == nil {
		return ""
	}
	return labels.Subjects[*id]
}

func strOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// ExportResults writes the filtered session list as an xlsx results
// table, with codes and ids resolved to display labels.
func (st *StatsController) ExportResults(c *fiber.Ctx) error {
	filter, err := parseSessionFilter(c)
	if err != nil {
		return badRequest(c, "Invalid filter parameters")
	}

	sessions, err := st.sessions.List(filter)
	if err != nil {
		return respondError(c, err)
	}
	labels, err := st.meta.LoadDisplayLabels()
	if err != nil {
		return respondError(c, err)
	}

	f := excelize.NewFile()
	defer f.Close()

	sheet := "상담결과"
	f.SetSheetName("Sheet1", sheet)
	writeRow(f, sheet, 1,
		"날짜", "시간", "지점", "팀", "상담사", "학생",
		"신청과목", "등록과목", "방식", "상태", "취소사유", "코멘트")

	for i, s := range sessions {
		cancelReason := ""
		if s.CancelReason != nil {
			cancelReason = string(*s.CancelReason)
		}
		writeRow(f, sheet, i+2,
			utils.FormatDate(s.Date),
			utils.FormatClock(s.StartTime)+"~"+utils.FormatClock(s.EndTime),
			utils.LabelOrCode(labels.Branches, s.BranchCode),
			utils.LabelOrCode(labels.Teams, s.TeamCode),
			labels.Counselors[s.CounselorID],
			strOrEmpty(s.StudentName),
			subjectName(labels, s.RequestedSubjectID),
			subjectName(labels, s.RegisteredSubjectID),
			utils.ModeLabel(s.Mode),
			string(s.Status),
			cancelReason,
			strOrEmpty(s.Comment),
		)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return respondError(c, fmt.Errorf("write workbook: %w", err))
	}

	filename := fmt.Sprintf("counseling_results_%s.xlsx", time.Now().UTC().Format("20060102"))
	c.Set(fiber.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s"`, filename))
	return c.Send(buf.Bytes())
}

func writeRow(f *excelize.File, sheet string, row int, values ...interface{}) {
	for i, v := range values {
		cell, err := excelize.CoordinatesToCellName(i+1, row)
		if err != nil {
			continue
		}
		// SetCellValue only fails on an invalid sheet or cell name,
		// both fixed at the call sites above.
		_ = f.SetCellValue(sheet, cell, v)
	}
}
