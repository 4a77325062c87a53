package controllers

import (
	"github.com/gofiber/fiber/v2"

	"counselkit_go/middleware"
	"counselkit_go/services"
)

type MetaController struct {
	svc *services.MetaService
}

func NewMetaController(svc *services.MetaService) *MetaController {
	return &MetaController{svc: svc}
}

type codeLabelRequest struct {
	Code   string `json:"code" validate:"required"`
	Label  string `json:"label" validate:"required"`
	Active *bool  `json:"active"`
}

func parseActiveQuery(c *fiber.Ctx) *bool {
	switch c.Query("active") {
	case "true":
		v := true
		return &v
	case "false":
		v := false
		return &v
	}
	return nil
}

// GetBranches returns branches, optionally filtered by active status.
func (mc *MetaController) GetBranches(c *fiber.Ctx) error {
	branches, err := mc.svc.ListBranches(parseActiveQuery(c))
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"branches": branches,
		"total":    len(branches),
	})
}

// UpsertBranch creates a branch or updates its label and active flag,
// keyed by code.
func (mc *MetaController) UpsertBranch(c *fiber.Ctx) error {
	var req codeLabelRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if err := validate.Struct(&req); err != nil {
		return badRequest(c, "Code and label are required")
	}

	active := true
	if req.Active != nil {
		active = *req.Active
	}

	branch, err := mc.svc.UpsertBranch(req.Code, req.Label, active)
	if err != nil {
		return respondError(c, err)
	}

	middleware.LogActivity(c, "upsert", "branch", branch.ID, req)

	return c.JSON(fiber.Map{
		"message": "Branch saved successfully",
		"branch":  branch,
	})
}

// ToggleBranch flips a branch's active flag. Branches are never
// deleted, only deactivated.
func (mc *MetaController) ToggleBranch(c *fiber.Ctx) error {
	branch, err := mc.svc.ToggleBranch(c.Params("code"))
	if err != nil {
		return respondError(c, err)
	}

	middleware.LogActivity(c, "toggle", "branch", branch.ID, fiber.Map{"active": branch.Active})

	return c.JSON(fiber.Map{
		"message": "Branch updated successfully",
		"branch":  branch,
	})
}

// GetTeams returns teams, optionally filtered by active status.
func (mc *MetaController) GetTeams(c *fiber.Ctx) error {
	teams, err := mc.svc.ListTeams(parseActiveQuery(c))
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"teams": teams,
		"total": len(teams),
	})
}

// UpsertTeam creates or updates a team keyed by code.
func (mc *MetaController) UpsertTeam(c *fiber.Ctx) error {
	var req codeLabelRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if err := validate.Struct(&req); err != nil {
		return badRequest(c, "Code and label are required")
	}

	active := true
	if req.Active != nil {
		active = *req.Active
	}

	team, err := mc.svc.UpsertTeam(req.Code, req.Label, active)
	if err != nil {
		return respondError(c, err)
	}

	middleware.LogActivity(c, "upsert", "team", team.ID, req)

	return c.JSON(fiber.Map{
		"message": "Team saved successfully",
		"team":    team,
	})
}

// ToggleTeam flips a team's active flag.
func (mc *MetaController) ToggleTeam(c *fiber.Ctx) error {
	team, err := mc.svc.ToggleTeam(c.Params("code"))
	if err != nil {
		return respondError(c, err)
	}

	middleware.LogActivity(c, "toggle", "team", team.ID, fiber.Map{"active": team.Active})

	return c.JSON(fiber.Map{
		"message": "Team updated successfully",
		"team":    team,
	})
}
