package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"
)

// ReportCache keeps recently computed overview reports in Redis for a
// short TTL. Reports are a read-only view, so serving a slightly stale
// copy while writes land is acceptable. The cache is entirely optional:
// a nil client turns every call into a no-op.
type ReportCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewReportCache(client *redis.Client) *ReportCache {
	return &ReportCache{client: client, ttl: 60 * time.Second}
}

func overviewKey(from, to, branch, team string) string {
	return fmt.Sprintf("stats:overview:%s:%s:%s:%s", from, to, branch, team)
}

// Get returns the cached report for the key, or nil on miss or when the
// cache is unavailable.
func (rc *ReportCache) Get(ctx context.Context, from, to, branch, team string) *Report {
	if rc == nil || rc.client == nil {
		return nil
	}

	data, err := rc.client.Get(ctx, overviewKey(from, to, branch, team)).Bytes()
	if err != nil {
		if err != redis.Nil {
			logrus.WithError(err).Warn("Failed to read overview report from cache")
		}
		return nil
	}

	var report Report
	if err := json.Unmarshal(data, &report); err != nil {
		logrus.WithError(err).Warn("Discarding unreadable cached overview report")
		return nil
	}
	return &report
}

// Set stores the report; cache failures are logged and swallowed.
func (rc *ReportCache) Set(ctx context.Context, from, to, branch, team string, report *Report) {
	if rc == nil || rc.client == nil || report == nil {
		return
	}

	data, err := json.Marshal(report)
	if err != nil {
		logrus.WithError(err).Warn("Failed to marshal overview report for cache")
		return
	}
	if err := rc.client.Set(ctx, overviewKey(from, to, branch, team), data, rc.ttl).Err(); err != nil {
		logrus.WithError(err).Warn("Failed to cache overview report")
	}
}
