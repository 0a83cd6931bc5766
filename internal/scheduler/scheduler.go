package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/milkbook/milkbook/internal/config"
	"github.com/milkbook/milkbook/internal/repository/sheets"
	"github.com/milkbook/milkbook/internal/service/identity"
	"github.com/milkbook/milkbook/internal/service/reporting"
	smsclient "github.com/milkbook/milkbook/pkg/clients/sms"
)

// Scheduler runs the end-of-day summary job: compute the day's totals,
// append them to the spreadsheet when an exporter is configured, and text
// the operator when a gateway is configured.
type Scheduler struct {
	cron         *cron.Cron
	cfg          config.Config
	identitySvc  *identity.Service
	reportingSvc *reporting.Service
	smsClient    smsclient.Client // nil when no gateway is configured
	exporter     sheets.Exporter  // nil when no spreadsheet is configured
	logger       *zap.Logger
}

// New creates a scheduler instance. smsClient and exporter may be nil.
func New(cfg config.Config, identitySvc *identity.Service, reportingSvc *reporting.Service, smsClient smsclient.Client, exporter sheets.Exporter, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Scheduler{
		cron:         cron.New(cron.WithLocation(mustLocation(cfg.Reporting.Timezone))),
		cfg:          cfg,
		identitySvc:  identitySvc,
		reportingSvc: reportingSvc,
		smsClient:    smsClient,
		exporter:     exporter,
		logger:       logger,
	}
}

// Start registers the daily summary job and starts the cron loop.
func (s *Scheduler) Start() {
	s.logger.Info("starting scheduler", zap.String("schedule", s.cfg.Reporting.CronSchedule))

	if _, err := s.cron.AddFunc(s.cfg.Reporting.CronSchedule, s.runDailySummary); err != nil {
		s.logger.Error("failed to schedule daily summary", zap.Error(err))
		return
	}

	s.cron.Start()
}

// Stop stops the scheduler.
func (s *Scheduler) Stop() {
	s.logger.Info("stopping scheduler")
	s.cron.Stop()
}

func (s *Scheduler) runDailySummary() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	operator, err := s.identitySvc.Current(ctx)
	if err != nil {
		s.logger.Info("no operator logged in, skipping daily summary")
		return
	}

	totals, err := s.reportingSvc.DailyTotals(ctx, operator.ID, time.Now())
	if err != nil {
		s.logger.Error("failed to compute daily totals", zap.Error(err))
		return
	}

	if s.exporter != nil {
		if err := s.exporter.AppendDailyTotals(ctx, totals); err != nil {
			s.logger.Error("failed to export daily totals", zap.Error(err))
		}
	}

	if s.smsClient == nil || s.cfg.Reporting.OperatorPhone == "" {
		s.logger.Debug("sms dispatch not configured, daily summary computed only")
		return
	}

	body := s.reportingSvc.FormatDailySummary(totals)
	if _, err := s.smsClient.SendText(ctx, smsclient.SendTextRequest{
		To:   s.cfg.Reporting.OperatorPhone,
		Body: body,
	}); err != nil {
		s.logger.Error("failed to send daily summary", zap.Error(err))
		return
	}

	s.logger.Info("daily summary sent", zap.String("date", totals.Date.Format("2006-01-02")))
}

func mustLocation(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.Local
	}
	return loc
}
