package controllers

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"counselkit_go/middleware"
	"counselkit_go/models"
	"counselkit_go/services"
	"counselkit_go/utils"
)

type SessionController struct {
	svc *services.SessionService
}

func NewSessionController(svc *services.SessionService) *SessionController {
	return &SessionController{svc: svc}
}

// sessionCreateRequest is the wire shape of a new session. Dates come as
// "YYYY-MM-DD", times as "HH:MM" or "HH:MM:SS".
type sessionCreateRequest struct {
	Date                string  `json:"date" validate:"required"`
	StartTime           string  `json:"start_time" validate:"required"`
	EndTime             string  `json:"end_time" validate:"required"`
	CounselorID         uint    `json:"counselor_id" validate:"required"`
	Branch              string  `json:"branch" validate:"required"`
	Team                string  `json:"team" validate:"required"`
	StudentName         *string `json:"student_name"`
	RequestedSubjectID  *uint   `json:"requested_subject_id"`
	RegisteredSubjectID *uint   `json:"registered_subject_id"`
	Mode                string  `json:"mode"`
	Status              string  `json:"status"`
	CancelReason        *string `json:"cancel_reason"`
	Comment             *string `json:"comment"`
}

// sessionPatchRequest carries a partial update. Absent fields keep the
// stored value, so every field is a pointer.
type sessionPatchRequest struct {
	Date                *string `json:"date"`
	StartTime           *string `json:"start_time"`
	EndTime             *string `json:"end_time"`
	CounselorID         *uint   `json:"counselor_id"`
	Branch              *string `json:"branch"`
	Team                *string `json:"team"`
	StudentName         *string `json:"student_name"`
	RequestedSubjectID  *uint   `json:"requested_subject_id"`
	RegisteredSubjectID *uint   `json:"registered_subject_id"`
	Mode                *string `json:"mode"`
	Status              *string `json:"status"`
	CancelReason        *string `json:"cancel_reason"`
	Comment             *string `json:"comment"`
}

type batchStatusRequest struct {
	IDs                 []uint  `json:"ids" validate:"required,min=1"`
	Status              *string `json:"status"`
	CancelReason        *string `json:"cancel_reason"`
	Comment             *string `json:"comment"`
	RegisteredSubjectID *uint   `json:"registered_subject_id"`
}

func sessionResponse(s models.Session) fiber.Map {
	return fiber.Map{
		"id":                    s.ID,
		"date":                  utils.FormatDate(s.Date),
		"start_time":            utils.FormatClock(s.StartTime),
		"end_time":              utils.FormatClock(s.EndTime),
		"counselor_id":          s.CounselorID,
		"branch":                s.BranchCode,
		"team":                  s.TeamCode,
		"student_name":          s.StudentName,
		"requested_subject_id":  s.RequestedSubjectID,
		"registered_subject_id": s.RegisteredSubjectID,
		"mode":                  s.Mode,
		"mode_label":            utils.ModeLabel(s.Mode),
		"status":                s.Status,
		"cancel_reason":         s.CancelReason,
		"comment":               s.Comment,
		"created_at":            s.CreatedAt,
		"updated_at":            s.UpdatedAt,
	}
}

func sessionListResponse(sessions []models.Session) []fiber.Map {
	out := make([]fiber.Map, 0, len(sessions))
	for _, s := range sessions {
		out = append(out, sessionResponse(s))
	}
	return out
}

func parseSessionFilter(c *fiber.Ctx) (services.SessionFilter, error) {
	var filter services.SessionFilter

	if from := c.Query("from_date"); from != "" {
		t, err := utils.ParseDate(from)
		if err != nil {
			return filter, err
		}
		filter.From = &t
	}
	if to := c.Query("to_date"); to != "" {
		t, err := utils.ParseDate(to)
		if err != nil {
			return filter, err
		}
		filter.To = &t
	}
	filter.BranchCode = c.Query("branch")
	filter.TeamCode = c.Query("team")
	if counselor := c.Query("counselor_id"); counselor != "" {
		id, err := strconv.ParseUint(counselor, 10, 32)
		if err != nil {
			return filter, err
		}
		filter.CounselorID = uint(id)
	}
	filter.Status = models.SessionStatus(c.Query("status"))
	filter.Mode = models.SessionMode(c.Query("mode"))
	return filter, nil
}

func sessionIDParam(c *fiber.Ctx) (uint, error) {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return 0, err
	}
	return uint(id), nil
}

// GetSessions lists sessions matching the query filters, ordered by
// date then start time.
func (sc *SessionController) GetSessions(c *fiber.Ctx) error {
	filter, err := parseSessionFilter(c)
	if err != nil {
		return badRequest(c, "Invalid filter parameters")
	}

	sessions, err := sc.svc.List(filter)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"sessions": sessionListResponse(sessions),
		"total":    len(sessions),
	})
}

// GetSession returns one session by id.
func (sc *SessionController) GetSession(c *fiber.Ctx) error {
	id, err := sessionIDParam(c)
	if err != nil {
		return badRequest(c, "Invalid session ID")
	}

	session, err := sc.svc.Get(id)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{"session": sessionResponse(*session)})
}

// CreateSession validates and persists a new session. Mode defaults to
// OFFLINE, status to PENDING.
func (sc *SessionController) CreateSession(c *fiber.Ctx) error {
	var req sessionCreateRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if err := validate.Struct(&req); err != nil {
		return badRequest(c, "Date, start time, end time, counselor, branch and team are required")
	}

	date, err := utils.ParseDate(req.Date)
	if err != nil {
		return badRequest(c, "Invalid date, expected YYYY-MM-DD")
	}
	start, err := utils.ParseClock(date, req.StartTime)
	if err != nil {
		return badRequest(c, "Invalid start time, expected HH:MM")
	}
	end, err := utils.ParseClock(date, req.EndTime)
	if err != nil {
		return badRequest(c, "Invalid end time, expected HH:MM")
	}

	session := models.Session{
		Date:                date,
		StartTime:           start,
		EndTime:             end,
		CounselorID:         req.CounselorID,
		BranchCode:          req.Branch,
		TeamCode:            req.Team,
		StudentName:         req.StudentName,
		RequestedSubjectID:  req.RequestedSubjectID,
		RegisteredSubjectID: req.RegisteredSubjectID,
		Mode:                models.ModeOffline,
		Status:              models.StatusPending,
		Comment:             req.Comment,
	}
	if req.Mode != "" {
		session.Mode = models.SessionMode(req.Mode)
	}
	if req.Status != "" {
		session.Status = models.SessionStatus(req.Status)
	}
	if req.CancelReason != nil {
		reason := models.CancelReason(*req.CancelReason)
		session.CancelReason = &reason
	}

	id, err := sc.svc.Create(&session)
	if err != nil {
		return respondError(c, err)
	}

	middleware.LogActivity(c, "create", "session", id, fiber.Map{
		"date":         req.Date,
		"counselor_id": req.CounselorID,
		"branch":       req.Branch,
	})

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Session created successfully",
		"session": sessionResponse(session),
	})
}

// UpdateSession applies a partial update and re-validates the merged
// record.
func (sc *SessionController) UpdateSession(c *fiber.Ctx) error {
	id, err := sessionIDParam(c)
	if err != nil {
		return badRequest(c, "Invalid session ID")
	}

	var req sessionPatchRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	patch, err := buildSessionPatch(req)
	if err != nil {
		return badRequest(c, err.Error())
	}

	if err := sc.svc.Update(id, patch); err != nil {
		return respondError(c, err)
	}

	session, err := sc.svc.Get(id)
	if err != nil {
		return respondError(c, err)
	}

	middleware.LogActivity(c, "update", "session", id, req)

	return c.JSON(fiber.Map{
		"message": "Session updated successfully",
		"session": sessionResponse(*session),
	})
}

func buildSessionPatch(req sessionPatchRequest) (services.SessionPatch, error) {
	var patch services.SessionPatch

	if req.Date != nil {
		date, err := utils.ParseDate(*req.Date)
		if err != nil {
			return patch, err
		}
		patch.Date = &date
	}
	// Clock values are parsed on a zero date; the service re-anchors
	// them onto the session's final date.
	if req.StartTime != nil {
		start, err := utils.ParseClock(time.Time{}, *req.StartTime)
		if err != nil {
			return patch, err
		}
		patch.StartTime = &start
	}
	if req.EndTime != nil {
		end, err := utils.ParseClock(time.Time{}, *req.EndTime)
		if err != nil {
			return patch, err
		}
		patch.EndTime = &end
	}
	patch.CounselorID = req.CounselorID
	patch.BranchCode = req.Branch
	patch.TeamCode = req.Team
	patch.StudentName = req.StudentName
	patch.RequestedSubjectID = req.RequestedSubjectID
	patch.RegisteredSubjectID = req.RegisteredSubjectID
	if req.Mode != nil {
		mode := models.SessionMode(*req.Mode)
		patch.Mode = &mode
	}
	if req.Status != nil {
		status := models.SessionStatus(*req.Status)
		patch.Status = &status
	}
	if req.CancelReason != nil {
		reason := models.CancelReason(*req.CancelReason)
		patch.CancelReason = &reason
	}
	patch.Comment = req.Comment
	return patch, nil
}

// DeleteSession removes a session permanently.
func (sc *SessionController) DeleteSession(c *fiber.Ctx) error {
	id, err := sessionIDParam(c)
	if err != nil {
		return badRequest(c, "Invalid session ID")
	}

	if err := sc.svc.Delete(id); err != nil {
		return respondError(c, err)
	}

	middleware.LogActivity(c, "delete", "session", id, nil)

	return c.JSON(fiber.Map{"message": "Session deleted successfully"})
}

// BatchUpdateStatus applies status fields to many sessions atomically:
// one invalid session rolls back the whole batch.
func (sc *SessionController) BatchUpdateStatus(c *fiber.Ctx) error {
	var req batchStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if err := validate.Struct(&req); err != nil {
		return badRequest(c, "At least one session ID is required")
	}

	fields := services.BatchStatusFields{
		Comment:             req.Comment,
		RegisteredSubjectID: req.RegisteredSubjectID,
	}
	if req.Status != nil {
		status := models.SessionStatus(*req.Status)
		fields.Status = &status
	}
	if req.CancelReason != nil {
		reason := models.CancelReason(*req.CancelReason)
		fields.CancelReason = &reason
	}

	updated, err := sc.svc.BatchUpdateStatus(req.IDs, fields)
	if err != nil {
		return respondError(c, err)
	}

	middleware.LogActivity(c, "batch_update_status", "session", 0, fiber.Map{
		"ids":    req.IDs,
		"status": req.Status,
	})

	return c.JSON(fiber.Map{
		"message": "Sessions updated successfully",
		"updated": updated,
	})
}

// GetMismatches lists REGISTERED sessions whose registered subject
// differs from the requested one.
func (sc *SessionController) GetMismatches(c *fiber.Ctx) error {
	filter, err := parseSessionFilter(c)
	if err != nil {
		return badRequest(c, "Invalid filter parameters")
	}

	sessions, err := sc.svc.ListMismatches(filter)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"sessions": sessionListResponse(sessions),
		"total":    len(sessions),
	})
}
