package background

import (
	"context"
	"log"
	"time"

	"adminportal/internal/repositories"
	"adminportal/internal/services"

	"github.com/go-co-op/gocron/v2"
)

// JobScheduler runs the portal's periodic maintenance: purging dead refresh
// tokens and archiving the previous day's audit trail.
type JobScheduler struct {
	scheduler gocron.Scheduler
	tokenRepo repositories.RefreshTokenRepository
	archive   services.ArchiveService
	retention time.Duration
}

func NewJobScheduler(tokenRepo repositories.RefreshTokenRepository, archive services.ArchiveService, retention time.Duration) (*JobScheduler, error) {
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return nil, err
	}
	if retention <= 0 {
		retention = 30 * 24 * time.Hour
	}

	js := &JobScheduler{
		scheduler: scheduler,
		tokenRepo: tokenRepo,
		archive:   archive,
		retention: retention,
	}
	if err := js.registerJobs(); err != nil {
		return nil, err
	}
	return js, nil
}

func (js *JobScheduler) Start() {
	log.Printf("Starting background job scheduler")
	js.scheduler.Start()
}

func (js *JobScheduler) Stop() error {
	log.Printf("Stopping background job scheduler")
	return js.scheduler.Shutdown()
}

func (js *JobScheduler) registerJobs() error {
	_, err := js.scheduler.NewJob(
		gocron.DurationJob(1*time.Hour),
		gocron.NewTask(js.purgeDeadTokens),
		gocron.WithName("refresh-token-purge"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return err
	}

	if js.archive != nil {
		_, err = js.scheduler.NewJob(
			gocron.DailyJob(1, gocron.NewAtTimes(gocron.NewAtTime(2, 30, 0))),
			gocron.NewTask(js.archiveYesterday),
			gocron.WithName("audit-archive"),
			gocron.WithSingletonMode(gocron.LimitModeReschedule),
		)
		if err != nil {
			return err
		}
	}
	return nil
}

// purgeDeadTokens deletes revoked and expired refresh tokens older than the
// retention window. Active tokens are never touched.
func (js *JobScheduler) purgeDeadTokens() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	cutoff := time.Now().UTC().Add(-js.retention)
	deleted, err := js.tokenRepo.DeleteDead(ctx, cutoff)
	if err != nil {
		log.Printf("ERROR: refresh token purge failed: %v", err)
		return
	}
	if deleted > 0 {
		log.Printf("Purged %d dead refresh tokens older than %s", deleted, cutoff.Format(time.RFC3339))
	}
}

// archiveYesterday exports the previous UTC day's audit entries to object
// storage.
func (js *JobScheduler) archiveYesterday() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	day := time.Now().UTC().AddDate(0, 0, -1)
	count, err := js.archive.ExportDay(ctx, day)
	if err != nil {
		log.Printf("ERROR: audit archive for %s failed: %v", day.Format("2006-01-02"), err)
		return
	}
	log.Printf("Archived %d audit entries for %s", count, day.Format("2006-01-02"))
}
