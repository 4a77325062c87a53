package controllers

import (
	"github.com/gofiber/fiber/v2"

	"counselkit_go/services"
)

type SubjectController struct {
	svc *services.MetaService
}

func NewSubjectController(svc *services.MetaService) *SubjectController {
	return &SubjectController{svc: svc}
}

// GetSubjects returns active subjects, optionally scoped to one branch.
func (sc *SubjectController) GetSubjects(c *fiber.Ctx) error {
	subjects, err := sc.svc.ListSubjects(c.Query("branch"))
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"subjects": subjects,
		"total":    len(subjects),
	})
}
