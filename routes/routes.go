package routes

import (
	"github.com/gofiber/fiber/v2"

	"counselkit_go/controllers"
	"counselkit_go/database"
	"counselkit_go/services"
)

// SetupRoutes configures all application routes
func SetupRoutes(app *fiber.App) {
	db := database.GetDB()

	sessionService := services.NewSessionService(db)
	statsService := services.NewStatsService(db)
	metaService := services.NewMetaService(db)
	reportCache := services.NewReportCache(database.GetRedisClient())

	sessionController := controllers.NewSessionController(sessionService)
	statsController := controllers.NewStatsController(statsService, reportCache, sessionService, metaService)
	metaController := controllers.NewMetaController(metaService)
	subjectController := controllers.NewSubjectController(metaService)
	counselorController := controllers.NewCounselorController(metaService)
	dailyDBController := controllers.NewDailyDBController(metaService)

	// API group
	api := app.Group("/api")

	// Session scheduling
	sessions := api.Group("/sessions")
	sessions.Get("/", sessionController.GetSessions)
	sessions.Get("/mismatch", sessionController.GetMismatches)
	sessions.Patch("/batch-status", sessionController.BatchUpdateStatus)
	sessions.Get("/:id", sessionController.GetSession)
	sessions.Post("/", sessionController.CreateSession)
	sessions.Put("/:id", sessionController.UpdateSession)
	sessions.Delete("/:id", sessionController.DeleteSession)

	// KPI reporting
	stats := api.Group("/stats")
	stats.Get("/overview", statsController.GetOverview)
	stats.Get("/export", statsController.ExportResults)

	// Reference data
	meta := api.Group("/meta")

	branches := meta.Group("/branches")
	branches.Get("/", metaController.GetBranches)
	branches.Post("/", metaController.UpsertBranch)
	branches.Patch("/:code/toggle", metaController.ToggleBranch)

	teams := meta.Group("/teams")
	teams.Get("/", metaController.GetTeams)
	teams.Post("/", metaController.UpsertTeam)
	teams.Patch("/:code/toggle", metaController.ToggleTeam)

	api.Get("/subjects", subjectController.GetSubjects)
	api.Get("/counselors", counselorController.GetCounselors)

	// Daily lead counts
	dailyDB := api.Group("/daily-db")
	dailyDB.Get("/", dailyDBController.GetDailyDB)
	dailyDB.Post("/", dailyDBController.UpsertDailyDB)

	dailyDBTeam := api.Group("/daily-db-team")
	dailyDBTeam.Get("/", dailyDBController.GetDailyDBTeam)
	dailyDBTeam.Post("/", dailyDBController.UpsertDailyDBTeam)
}
