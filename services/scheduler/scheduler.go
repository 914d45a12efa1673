// Package schedsvc drives the reminder engine on a fixed interval.
package schedsvc

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/collegia/collegia/core"
	"github.com/collegia/collegia/core/reminder"
)

// Service owns the background timer. It is explicitly started and stopped
// by the process that hosts it; nothing runs at construction time.
type Service struct {
	engine *reminder.Engine
	conf   *core.Config
	logger core.Logger

	mu      sync.Mutex
	cron    *cron.Cron
	oneShot *time.Timer
	started bool
}

func NewService(engine *reminder.Engine, conf *core.Config, logger core.Logger) *Service {
	return &Service{
		engine: engine,
		conf:   conf,
		logger: logger,
	}
}

// Start schedules the periodic scan plus one scan shortly after startup,
// so a fresh deploy does not wait a full interval before catching up.
// Only the leader process runs scans; Start is a no-op everywhere else so
// horizontally scaled replicas do not double-send.
func (svc *Service) Start() error {
	svc.mu.Lock()
	defer svc.mu.Unlock()

	if !svc.conf.Scheduler.Leader {
		svc.logger.Info("reminder scheduler disabled: not the leader process")
		return nil
	}
	if svc.started {
		return nil
	}

	svc.cron = cron.New()
	spec := fmt.Sprintf("@every %s", svc.conf.Scheduler.Interval)
	if _, err := svc.cron.AddFunc(spec, svc.runScan); err != nil {
		return err
	}
	svc.cron.Start()

	svc.oneShot = time.AfterFunc(svc.conf.Scheduler.StartupDelay, svc.runScan)
	svc.started = true
	svc.logger.Info(fmt.Sprintf("reminder scheduler started: scanning every %s", svc.conf.Scheduler.Interval))
	return nil
}

// Stop halts the timer and waits for a running scan to finish.
func (svc *Service) Stop() {
	svc.mu.Lock()
	defer svc.mu.Unlock()

	if !svc.started {
		return
	}
	svc.oneShot.Stop()
	<-svc.cron.Stop().Done()
	svc.started = false
	svc.logger.Info("reminder scheduler stopped")
}

// runScan logs and swallows scan errors so a bad tick never kills the
// timer; the next tick retries.
func (svc *Service) runScan() {
	if err := svc.engine.CheckUpcomingMeetings(context.Background()); err != nil {
		svc.logger.Error("reminder scan failed", err)
	}
}
