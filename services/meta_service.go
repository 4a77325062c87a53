package services

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"counselkit_go/models"
	"counselkit_go/services/scheduling"
)

// MetaService manages the shared reference data (branches, teams,
// subjects, counselors) and the daily lead counts. Branches and teams
// are upserted by code and only ever deactivated, never deleted.
type MetaService struct {
	db *gorm.DB
}

func NewMetaService(db *gorm.DB) *MetaService {
	return &MetaService{db: db}
}

func (ms *MetaService) ListBranches(active *bool) ([]models.Branch, error) {
	var branches []models.Branch
	query := ms.db.Model(&models.Branch{})
	if active != nil {
		query = query.Where("active = ?", *active)
	}
	if err := query.Order("code").Find(&branches).Error; err != nil {
		return nil, fmt.Errorf("list branches: %w", err)
	}
	return branches, nil
}

func (ms *MetaService) UpsertBranch(code, label string, active bool) (*models.Branch, error) {
	var branch models.Branch
	err := ms.db.Transaction(func(tx *gorm.DB) error {
		err := tx.Where("code = ?", code).First(&branch).Error
		switch {
		case err == nil:
			branch.Label = label
			branch.Active = active
			return tx.Save(&branch).Error
		case errors.Is(err, gorm.ErrRecordNotFound):
			branch = models.Branch{Code: code, Label: label, Active: active}
			return tx.Create(&branch).Error
		default:
			return err
		}
	})
	if err != nil {
		return nil, fmt.Errorf("upsert branch: %w", err)
	}
	return &branch, nil
}

func (ms *MetaService) ToggleBranch(code string) (*models.Branch, error) {
	var branch models.Branch
	if err := ms.db.Where("code = ?", code).First(&branch).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, scheduling.NotFound("branch")
		}
		return nil, fmt.Errorf("load branch: %w", err)
	}
	branch.Active = !branch.Active
	if err := ms.db.Save(&branch).Error; err != nil {
		return nil, fmt.Errorf("toggle branch: %w", err)
	}
	return &branch, nil
}

func (ms *MetaService) ListTeams(active *bool) ([]models.Team, error) {
	var teams []models.Team
	query := ms.db.Model(&models.Team{})
	if active != nil {
		query = query.Where("active = ?", *active)
	}
	if err := query.Order("code").Find(&teams).Error; err != nil {
		return nil, fmt.Errorf("list teams: %w", err)
	}
	return teams, nil
}

func (ms *MetaService) UpsertTeam(code, label string, active bool) (*models.Team, error) {
	var team models.Team
	err := ms.db.Transaction(func(tx *gorm.DB) error {
		err := tx.Where("code = ?", code).First(&team).Error
		switch {
		case err == nil:
			team.Label = label
			team.Active = active
			return tx.Save(&team).Error
		case errors.Is(err, gorm.ErrRecordNotFound):
			team = models.Team{Code: code, Label: label, Active: active}
			return tx.Create(&team).Error
		default:
			return err
		}
	})
	if err != nil {
		return nil, fmt.Errorf("upsert team: %w", err)
	}
	return &team, nil
}

func (ms *MetaService) ToggleTeam(code string) (*models.Team, error) {
	var team models.Team
	if err := ms.db.Where("code = ?", code).First(&team).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, scheduling.NotFound("team")
		}
		return nil, fmt.Errorf("load team: %w", err)
	}
	team.Active = !team.Active
	if err := ms.db.Save(&team).Error; err != nil {
		return nil, fmt.Errorf("toggle team: %w", err)
	}
	return &team, nil
}

// ListSubjects returns active subjects, optionally branch-scoped,
// ordered by name.
func (ms *MetaService) ListSubjects(branchCode string) ([]models.Subject, error) {
	var subjects []models.Subject
	query := ms.db.Where("active = ?", true)
	if branchCode != "" {
		query = query.Where("branch_code = ?", branchCode)
	}
	if err := query.Order("name").Find(&subjects).Error; err != nil {
		return nil, fmt.Errorf("list subjects: %w", err)
	}
	return subjects, nil
}

func (ms *MetaService) ListCounselors() ([]models.Counselor, error) {
	var counselors []models.Counselor
	if err := ms.db.Order("name").Find(&counselors).Error; err != nil {
		return nil, fmt.Errorf("list counselors: %w", err)
	}
	return counselors, nil
}

// UpsertDailyDB records the incoming-lead count for one branch and day,
// keyed on the unique (date, branch) pair. Idempotent.
func (ms *MetaService) UpsertDailyDB(date time.Time, branchCode string, count int) error {
	err := ms.db.Transaction(func(tx *gorm.DB) error {
		var row models.DailyDB
		err := tx.Where("date = ? AND branch_code = ?", date, branchCode).First(&row).Error
		switch {
		case err == nil:
			row.DBCount = count
			return tx.Save(&row).Error
		case errors.Is(err, gorm.ErrRecordNotFound):
			return tx.Create(&models.DailyDB{Date: date, BranchCode: branchCode, DBCount: count}).Error
		default:
			return err
		}
	})
	if err != nil {
		return fmt.Errorf("upsert daily db: %w", err)
	}
	return nil
}

func (ms *MetaService) ListDailyDB() ([]models.DailyDB, error) {
	var rows []models.DailyDB
	if err := ms.db.Order("date DESC, branch_code ASC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list daily db: %w", err)
	}
	return rows, nil
}

// UpsertDailyDBTeam is the team-scoped parallel of UpsertDailyDB.
func (ms *MetaService) UpsertDailyDBTeam(date time.Time, teamCode string, count int) error {
	err := ms.db.Transaction(func(tx *gorm.DB) error {
		var row models.DailyDBTeam
		err := tx.Where("date = ? AND team_code = ?", date, teamCode).First(&row).Error
		switch {
		case err == nil:
			row.DBCount = count
			return tx.Save(&row).Error
		case errors.Is(err, gorm.ErrRecordNotFound):
			return tx.Create(&models.DailyDBTeam{Date: date, TeamCode: teamCode, DBCount: count}).Error
		default:
			return err
		}
	})
	if err != nil {
		return fmt.Errorf("upsert daily db team: %w", err)
	}
	return nil
}

func (ms *MetaService) ListDailyDBTeam() ([]models.DailyDBTeam, error) {
	var rows []models.DailyDBTeam
	if err := ms.db.Order("date DESC, team_code ASC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list daily db team: %w", err)
	}
	return rows, nil
}

// DisplayLabels bundles the lookup maps the results-table export needs
// to render codes and ids as names. Inactive rows are included so stale
// references on old sessions still resolve.
type DisplayLabels struct {
	Branches   map[string]string
	Teams      map[string]string
	Subjects   map[uint]string
	Counselors map[uint]string
}

func (ms *MetaService) LoadDisplayLabels() (*DisplayLabels, error) {
	labels := &DisplayLabels{
		Branches:   make(map[string]string),
		Teams:      make(map[string]string),
		Subjects:   make(map[uint]string),
		Counselors: make(map[uint]string),
	}

	var branches []models.Branch
	if err := ms.db.Find(&branches).Error; err != nil {
		return nil, fmt.Errorf("load branch labels: %w", err)
	}
	for _, b := range branches {
		labels.Branches[b.Code] = b.Label
	}

	var teams []models.Team
	if err := ms.db.Find(&teams).Error; err != nil {
		return nil, fmt.Errorf("load team labels: %w", err)
	}
	for _, t := range teams {
		labels.Teams[t.Code] = t.Label
	}

	var subjects []models.Subject
	if err := ms.db.Find(&subjects).Error; err != nil {
		return nil, fmt.Errorf("load subject names: %w", err)
	}
	for _, s := range subjects {
		labels.Subjects[s.ID] = s.Name
	}

	var counselors []models.Counselor
	if err := ms.db.Find(&counselors).Error; err != nil {
		return nil, fmt.Errorf("load counselor names: %w", err)
	}
	for _, c := range counselors {
		labels.Counselors[c.ID] = c.Name
	}

	return labels, nil
}
