package scheduler

import (
	"context"

	"github.com/jimlawless/whereami"
	"github.com/robfig/cron/v3"
	"github.com/stockwatch-tech/go-backend/internal/cfg"
	"github.com/stockwatch-tech/go-backend/internal/usecase"
	"github.com/stockwatch-tech/go-backend/pkg/e"
	"github.com/stockwatch-tech/go-backend/pkg/logger"
)

// Scheduler запускает периодическую сверку каталога по cron-расписанию
// (с секундным полем).
type Scheduler struct {
	cron   *cron.Cron
	logger logger.Logger
}

// cronLogger адаптирует pkg/logger под контракт cron.Logger.
type cronLogger struct {
	logger logger.Logger
}

func (c *cronLogger) Info(msg string, keysAndValues ...interface{}) {
	c.logger.Debugf("cron: %s %v", msg, keysAndValues)
}

func (c *cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	c.logger.Errorf(err, "cron: %s %v", msg, keysAndValues)
}

func NewScheduler(syncUC usecase.SyncUC, syncCfg *cfg.SyncCfg, logger logger.Logger) (*Scheduler, error) {
	adapter := &cronLogger{logger: logger}

	c := cron.New(
		cron.WithSeconds(),
		cron.WithChain(
			cron.Recover(adapter),
			cron.SkipIfStillRunning(adapter),
		),
	)

	_, err := c.AddFunc(syncCfg.CronSpec, func() {
		logger.Infof("scheduled catalog sync triggered")
		syncUC.RunWithRetry(context.Background())
	})
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return &Scheduler{cron: c, logger: logger}, nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Infof("sync scheduler started")
}

// Stop останавливает планировщик и дожидается уже запущенных заданий.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}
