package jobs

import (
	"time"

	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"

	"lootlink/internal/services"
)

// StatsJob snapshots platform totals on a cron schedule so the admin
// dashboard can chart history without scanning the live tables.
type StatsJob struct {
	reports *services.ReportService
	cron    *cron.Cron
	spec    string
}

func NewStatsJob(reports *services.ReportService, spec string) *StatsJob {
	return &StatsJob{
		reports: reports,
		cron:    cron.New(),
		spec:    spec,
	}
}

// Start schedules the snapshot and takes one immediately so a fresh deploy
// has a row for today.
func (j *StatsJob) Start() error {
	if _, err := j.cron.AddFunc(j.spec, j.run); err != nil {
		return err
	}
	j.cron.Start()
	go j.run()
	log.Printf("Platform stats job scheduled (%s)", j.spec)
	return nil
}

// Stop halts the scheduler, letting a running snapshot finish.
func (j *StatsJob) Stop() {
	ctx := j.cron.Stop()
	<-ctx.Done()
}

func (j *StatsJob) run() {
	if _, err := j.reports.SnapshotPlatformStats(time.Now()); err != nil {
		log.Printf("Platform stats snapshot failed: %v", err)
	}
}
