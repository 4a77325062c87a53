package models

import (
	"database/sql/driver"
	"time"

	"gorm.io/gorm"
)

// Base model with common fields
type BaseModel struct {
	ID        uint           `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
}

// JSON field type for GORM
type JSON []byte

func (j JSON) Value() (driver.Value, error) {
	if j.IsNull() {
		return nil, nil
	}
	return string(j), nil
}

func (j *JSON) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}
	s, ok := value.([]byte)
	if !ok {
		return nil
	}
	*j = append((*j)[0:0], s...)
	return nil
}

func (j JSON) MarshalJSON() ([]byte, error) {
	if j == nil {
		return []byte("null"), nil
	}
	return j, nil
}

func (j *JSON) UnmarshalJSON(data []byte) error {
	if j == nil {
		return nil
	}
	*j = append((*j)[0:0], data...)
	return nil
}

func (j JSON) IsNull() bool {
	return len(j) == 0 || string(j) == "null"
}

// SessionStatus is the outcome state of a counseling session.
type SessionStatus string

const (
	StatusPending       SessionStatus = "PENDING"
	StatusDone          SessionStatus = "DONE"
	StatusRegistered    SessionStatus = "REGISTERED"
	StatusNotRegistered SessionStatus = "NOT_REGISTERED"
	StatusCanceled      SessionStatus = "CANCELED"
)

func (s SessionStatus) Valid() bool {
	switch s {
	case StatusPending, StatusDone, StatusRegistered, StatusNotRegistered, StatusCanceled:
		return true
	}
	return false
}

// CounselingStatuses are the statuses that count as a held counseling
// session for reporting purposes.
var CounselingStatuses = []SessionStatus{StatusDone, StatusRegistered, StatusNotRegistered}

// SessionMode distinguishes remote from in-person counseling.
type SessionMode string

const (
	ModeRemote  SessionMode = "REMOTE"
	ModeOffline SessionMode = "OFFLINE"
)

func (m SessionMode) Valid() bool {
	return m == ModeRemote || m == ModeOffline
}

// CancelReason is required whenever a session is CANCELED.
type CancelReason string

const (
	CancelPersonal       CancelReason = "PERSONAL"
	CancelOtherInstitute CancelReason = "OTHER_INSTITUTE"
	CancelNoAnswer       CancelReason = "NO_ANSWER"
	CancelReschedule     CancelReason = "RESCHEDULE"
)

func (r CancelReason) Valid() bool {
	switch r {
	case CancelPersonal, CancelOtherInstitute, CancelNoAnswer, CancelReschedule:
		return true
	}
	return false
}

// CounselorStatus marks whether a counselor currently takes sessions.
type CounselorStatus string

const (
	CounselorActive   CounselorStatus = "ACTIVE"
	CounselorInactive CounselorStatus = "INACTIVE"
)

// Branch model. Branches are never hard-deleted, only deactivated.
type Branch struct {
	BaseModel
	Code   string `json:"code" gorm:"size:50;not null;uniqueIndex"`
	Label  string `json:"label" gorm:"size:255;not null"`
	Active bool   `json:"active" gorm:"default:true"`
}

// Team model. Same lifecycle shape as Branch.
type Team struct {
	BaseModel
	Code   string `json:"code" gorm:"size:50;not null;uniqueIndex"`
	Label  string `json:"label" gorm:"size:255;not null"`
	Active bool   `json:"active" gorm:"default:true"`
}

// Subject model. A subject belongs to exactly one branch.
type Subject struct {
	BaseModel
	Name       string `json:"name" gorm:"size:255;not null"`
	BranchCode string `json:"branch" gorm:"size:50;not null;index"`
	Active     bool   `json:"active" gorm:"default:true"`
}

// Counselor model
type Counselor struct {
	BaseModel
	Name       string          `json:"name" gorm:"size:255;not null"`
	BranchCode string          `json:"branch" gorm:"size:50;not null"`
	TeamCode   string          `json:"team" gorm:"size:50;not null"`
	HiredAt    *time.Time      `json:"hired_at"`
	LeftAt     *time.Time      `json:"left_at"`
	Status     CounselorStatus `json:"status" gorm:"size:50;not null;default:'ACTIVE'"`

	// Relationships
	Sessions []Session `json:"sessions,omitempty" gorm:"foreignKey:CounselorID"`
}

// Session is the central entity: one scheduled counseling slot for one
// counselor and (optionally) one prospective student. Date carries the
// calendar day, StartTime/EndTime carry the wall-clock slot on that day.
type Session struct {
	BaseModel
	Date        time.Time `json:"date" gorm:"not null;index:idx_sessions_counselor_date"`
	StartTime   time.Time `json:"start_time" gorm:"not null"`
	EndTime     time.Time `json:"end_time" gorm:"not null"`
	CounselorID uint      `json:"counselor_id" gorm:"not null;index:idx_sessions_counselor_date"`
	BranchCode  string    `json:"branch" gorm:"size:50;not null;index"`
	TeamCode    string    `json:"team" gorm:"size:50;not null;index"`

	StudentName         *string `json:"student_name" gorm:"size:255"`
	RequestedSubjectID  *uint   `json:"requested_subject_id"`
	RegisteredSubjectID *uint   `json:"registered_subject_id"`

	Mode         SessionMode   `json:"mode" gorm:"size:50;not null;default:'OFFLINE'"`
	Status       SessionStatus `json:"status" gorm:"size:50;not null;default:'PENDING'"`
	CancelReason *CancelReason `json:"cancel_reason" gorm:"size:50"`
	Comment      *string       `json:"comment" gorm:"type:text"`

	// Relationships
	Counselor         Counselor `json:"counselor,omitempty" gorm:"foreignKey:CounselorID"`
	RequestedSubject  *Subject  `json:"requested_subject,omitempty" gorm:"foreignKey:RequestedSubjectID"`
	RegisteredSubject *Subject  `json:"registered_subject,omitempty" gorm:"foreignKey:RegisteredSubjectID"`
}

// DailyDB is the branch-scoped daily incoming-lead count, the denominator
// for the counseling rate. Unique per (date, branch).
type DailyDB struct {
	BaseModel
	Date       time.Time `json:"date" gorm:"not null;uniqueIndex:idx_daily_db_date_branch"`
	BranchCode string    `json:"branch" gorm:"size:50;not null;uniqueIndex:idx_daily_db_date_branch"`
	DBCount    int       `json:"db_count" gorm:"not null;default:0"`
}

// DailyDBTeam is the team-scoped parallel of DailyDB, used as the
// denominator only when a report is team-filtered. Unique per (date, team).
type DailyDBTeam struct {
	BaseModel
	Date     time.Time `json:"date" gorm:"not null;uniqueIndex:idx_daily_db_team_date_team"`
	TeamCode string    `json:"team" gorm:"size:50;not null;uniqueIndex:idx_daily_db_team_date_team"`
	DBCount  int       `json:"db_count" gorm:"not null;default:0"`
}

// Log model for activity tracking
type ActivityLog struct {
	BaseModel
	Action     string `json:"action" gorm:"size:100;not null"`
	Resource   string `json:"resource" gorm:"size:100;not null"`
	ResourceID uint   `json:"resource_id"`
	Details    JSON   `json:"details" gorm:"type:json"`
	IPAddress  string `json:"ip_address" gorm:"size:45"`
	UserAgent  string `json:"user_agent" gorm:"size:500"`
}
