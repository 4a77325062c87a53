package services

import (
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// KPISnapshotScheduler logs a daily summary of the dashboard card rates
// so the trend survives in the application logs even when nobody opens
// the dashboard.
type KPISnapshotScheduler struct {
	stats *StatsService
}

func NewKPISnapshotScheduler(db *gorm.DB) *KPISnapshotScheduler {
	return &KPISnapshotScheduler{stats: NewStatsService(db)}
}

// StartScheduler emits one snapshot immediately and then every 24 hours.
// Run it on its own goroutine.
func (ks *KPISnapshotScheduler) StartScheduler() {
	ticker := time.NewTicker(24 * time.Hour)
	defer ticker.Stop()

	logrus.Info("KPI snapshot scheduler started")

	ks.LogSnapshot()
	for range ticker.C {
		ks.LogSnapshot()
	}
}

// LogSnapshot computes the default-range overview and logs the card
// rates. Failures are logged, never fatal.
func (ks *KPISnapshotScheduler) LogSnapshot() {
	report, err := ks.stats.Overview(nil, nil, "", "")
	if err != nil {
		logrus.WithError(err).Error("Failed to compute KPI snapshot")
		return
	}

	fields := logrus.Fields{
		"from": report.Range.From,
		"to":   report.Range.To,
	}
	if r := report.Cards.BranchRegistrationRate; r != nil {
		fields["branch_registration_rate"] = *r
	}
	if r := report.Cards.BranchCounselingRate; r != nil {
		fields["branch_counseling_rate"] = *r
	}
	if r := report.Cards.SubjectRegistrationRateRequest; r != nil {
		fields["subject_registration_rate_request_basis"] = *r
	}
	if r := report.Cards.SubjectRegistrationRateRegister; r != nil {
		fields["subject_registration_rate_registered_basis"] = *r
	}
	logrus.WithFields(fields).Info("Daily KPI snapshot")
}
