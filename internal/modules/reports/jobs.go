package reports

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/fund-sentry/internal/events"
	"github.com/aristath/fund-sentry/internal/modules/notify"
)

// jobTimeout bounds a full batch run, pacing included
const jobTimeout = 30 * time.Minute

// DailyReportJob runs the report batch on schedule, renders the output and
// pushes the summary to the configured notification channels.
type DailyReportJob struct {
	service   *Service
	formatter *Formatter
	renderer  *Renderer
	sender    *notify.Sender
	events    *events.Manager
	log       zerolog.Logger
}

// NewDailyReportJob creates the scheduled report job
func NewDailyReportJob(service *Service, formatter *Formatter, renderer *Renderer, sender *notify.Sender, eventManager *events.Manager, log zerolog.Logger) *DailyReportJob {
	return &DailyReportJob{
		service:   service,
		formatter: formatter,
		renderer:  renderer,
		sender:    sender,
		events:    eventManager,
		log:       log.With().Str("job", "daily_report").Logger(),
	}
}

// Name implements scheduler.Job
func (j *DailyReportJob) Name() string {
	return "daily_report"
}

// Run implements scheduler.Job
func (j *DailyReportJob) Run() error {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	batch, err := j.service.Run(ctx)
	if err != nil {
		return err
	}

	title := j.formatter.Title(batch)
	body := j.formatter.Format(batch)

	if _, err := j.renderer.Render(batch, title, body); err != nil {
		return err
	}

	if !j.sender.Configured() {
		j.log.Info().Msg("No notification channel configured, report rendered only")
		return nil
	}

	if err := j.sender.SendAll(ctx, title, body); err != nil {
		// The report is already on disk; a failed push is not a job failure
		j.log.Warn().Err(err).Msg("Report notification failed")
		return nil
	}

	j.events.Emit(events.NotificationSent, "reports", map[string]interface{}{"title": title})
	return nil
}
