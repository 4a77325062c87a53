package services

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"counselkit_go/models"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "counselkit.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&models.Branch{},
		&models.Team{},
		&models.Subject{},
		&models.Counselor{},
		&models.Session{},
		&models.DailyDB{},
		&models.DailyDBTeam{},
		&models.ActivityLog{},
	))
	return db
}

func seedReferenceData(t *testing.T, db *gorm.DB) {
	t.Helper()

	require.NoError(t, db.Create(&[]models.Branch{
		{Code: "KH", Label: "강남본원", Active: true},
		{Code: "ATENZ", Label: "아텐츠", Active: true},
		{Code: "VIDEO", Label: "영상", Active: false},
	}).Error)
	require.NoError(t, db.Create(&[]models.Team{
		{Code: "JONGNO", Label: "종로", Active: true},
		{Code: "DANGSAN", Label: "당산", Active: true},
	}).Error)
	require.NoError(t, db.Create(&[]models.Subject{
		{BaseModel: models.BaseModel{ID: 10}, Name: "게임기획", BranchCode: "KH", Active: true},
		{BaseModel: models.BaseModel{ID: 11}, Name: "게임아트", BranchCode: "KH", Active: true},
		{BaseModel: models.BaseModel{ID: 20}, Name: "웹툰", BranchCode: "ATENZ", Active: true},
	}).Error)
	require.NoError(t, db.Create(&[]models.Counselor{
		{BaseModel: models.BaseModel{ID: 1}, Name: "김상담", BranchCode: "KH", TeamCode: "JONGNO", Status: models.CounselorActive},
		{BaseModel: models.BaseModel{ID: 2}, Name: "박상담", BranchCode: "KH", TeamCode: "DANGSAN", Status: models.CounselorActive},
	}).Error)
}

func day(year int, month time.Month, d int) time.Time {
	return time.Date(year, month, d, 0, 0, 0, 0, time.UTC)
}

func at(date time.Time, hour, min int) time.Time {
	return time.Date(date.Year(), date.Month(), date.Day(), hour, min, 0, 0, time.UTC)
}

func strPtr(s string) *string                          { return &s }
func uintPtr(u uint) *uint                             { return &u }
func timePtr(t time.Time) *time.Time                   { return &t }
func statusPtr(s models.SessionStatus) *models.SessionStatus { return &s }
func reasonPtr(r models.CancelReason) *models.CancelReason   { return &r }
