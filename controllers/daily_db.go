package controllers

import (
	"github.com/gofiber/fiber/v2"

	"counselkit_go/middleware"
	"counselkit_go/services"
	"counselkit_go/utils"
)

type DailyDBController struct {
	svc *services.MetaService
}

func NewDailyDBController(svc *services.MetaService) *DailyDBController {
	return &DailyDBController{svc: svc}
}

type dailyDBRequest struct {
	Date    string `json:"date" validate:"required"`
	Branch  string `json:"branch" validate:"required"`
	DBCount int    `json:"db_count" validate:"min=0"`
}

type dailyDBTeamRequest struct {
	Date    string `json:"date" validate:"required"`
	Team    string `json:"team" validate:"required"`
	DBCount int    `json:"db_count" validate:"min=0"`
}

// GetDailyDB lists branch-level daily lead counts, newest first.
func (dc *DailyDBController) GetDailyDB(c *fiber.Ctx) error {
	entries, err := dc.svc.ListDailyDB()
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"entries": entries,
		"total":   len(entries),
	})
}

// UpsertDailyDB records the lead count for one branch and day,
// overwriting any existing entry for the same pair.
func (dc *DailyDBController) UpsertDailyDB(c *fiber.Ctx) error {
	var req dailyDBRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if err := validate.Struct(&req); err != nil {
		return badRequest(c, "Date, branch and a non-negative db_count are required")
	}

	date, err := utils.ParseDate(req.Date)
	if err != nil {
		return badRequest(c, "Invalid date, expected YYYY-MM-DD")
	}

	if err := dc.svc.UpsertDailyDB(date, req.Branch, req.DBCount); err != nil {
		return respondError(c, err)
	}

	middleware.LogActivity(c, "upsert", "daily_db", 0, req)

	return c.JSON(fiber.Map{"message": "Daily DB count saved successfully"})
}

// GetDailyDBTeam lists team-level daily lead counts, newest first.
func (dc *DailyDBController) GetDailyDBTeam(c *fiber.Ctx) error {
	entries, err := dc.svc.ListDailyDBTeam()
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"entries": entries,
		"total":   len(entries),
	})
}

// UpsertDailyDBTeam records the lead count for one team and day.
func (dc *DailyDBController) UpsertDailyDBTeam(c *fiber.Ctx) error {
	var req dailyDBTeamRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if err := validate.Struct(&req); err != nil {
		return badRequest(c, "Date, team and a non-negative db_count are required")
	}

	date, err := utils.ParseDate(req.Date)
	if err != nil {
		return badRequest(c, "Invalid date, expected YYYY-MM-DD")
	}

	if err := dc.svc.UpsertDailyDBTeam(date, req.Team, req.DBCount); err != nil {
		return respondError(c, err)
	}

	middleware.LogActivity(c, "upsert", "daily_db_team", 0, req)

	return c.JSON(fiber.Map{"message": "Daily team DB count saved successfully"})
}
