package controllers

import (
	"github.com/gofiber/fiber/v2"

	"counselkit_go/services"
)

type CounselorController struct {
	svc *services.MetaService
}

func NewCounselorController(svc *services.MetaService) *CounselorController {
	return &CounselorController{svc: svc}
}

// GetCounselors returns all counselors ordered by name.
func (cc *CounselorController) GetCounselors(c *fiber.Ctx) error {
	counselors, err := cc.svc.ListCounselors()
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"counselors": counselors,
		"total":      len(counselors),
	})
}
