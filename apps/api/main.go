package main

import (
	"context"
	"expvar"
	"fmt"
	"log"
	"net/http"
	_ "net/http/pprof"
	"os"

	echoapi "github.com/collegia/collegia/apps/api/echo"
	"github.com/collegia/collegia/core"
	"github.com/collegia/collegia/core/meeting"
	"github.com/collegia/collegia/core/notification"
	"github.com/collegia/collegia/core/reminder"
	"github.com/collegia/collegia/core/schedule"
	"github.com/collegia/collegia/core/user"
	emailsvc "github.com/collegia/collegia/services/email"
	logsvc "github.com/collegia/collegia/services/logger"
	schedsvc "github.com/collegia/collegia/services/scheduler"
	"github.com/collegia/collegia/storage/database"
	sqlxrepos "github.com/collegia/collegia/storage/database/sqlx"
)

func main() {
	// =========================================================================
	// Set up Dependencies

	conf, err := core.NewConfig()
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	logger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "API : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)
	logger.Enable(!conf.Debug)

	// set up DB
	db, err := setUpDB(conf)
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up database: %v", err), err)
	}
	defer func() {
		if err = db.Close(); err != nil {
			logger.Error("closing database", err)
		}
	}()

	// set up services
	var mailSvc core.EmailService
	if conf.Debug {
		mailSvc = emailsvc.NewConsoleService(conf)
	} else {
		mailSvc = emailsvc.NewSendgridService(conf, logger)
	}

	usrRepo := sqlxrepos.NewUserRepository(db)
	slotRepo := sqlxrepos.NewScheduleRepository(db)
	mtgRepo := sqlxrepos.NewMeetingRepository(db)
	notifRepo := sqlxrepos.NewNotificationRepository(db)

	usrSvc := user.NewService(usrRepo, mailSvc, conf)
	slotSvc := schedule.NewService(slotRepo)
	mtgSvc := meeting.NewService(db, mtgRepo, slotRepo, usrRepo, notifRepo, mailSvc, conf)
	notifSvc := notification.NewService(notifRepo)

	// =========================================================================
	// Initialize App

	logger.Info(fmt.Sprintf("Application initializing : version %q", conf.Build))
	defer logger.Info("Application stopped")

	validate, translator := core.NewValidator()
	user.RegisterValidators(validate, translator)

	// =========================================================================
	// Start Reminder Scheduler

	engine := reminder.NewEngine(db, mtgRepo, usrRepo, notifRepo, mailSvc, core.RealClock(), logger)
	scheduler := schedsvc.NewService(engine, conf, logger)
	if err = scheduler.Start(); err != nil {
		logger.Fatal(fmt.Sprintf("starting reminder scheduler: %v", err), err)
	}
	defer scheduler.Stop()

	// =========================================================================
	// Start Debug Service
	//
	// /debug/pprof - Added to the default mux by importing the net/http/pprof package.
	// /debug/vars - Added to the default mux by importing the expvar package.

	expvar.NewString("build").Set(conf.Build)
	expvar.NewString("env").Set(conf.Env)

	go func() {
		if err := http.ListenAndServe(conf.Server.DebugAddr, http.DefaultServeMux); err != nil {
			logger.Error(fmt.Sprintf("debug server closed: %v", err), err)
		}
	}()

	// =========================================================================
	// Start API Service

	server := echoapi.NewServer(
		echoapi.ServerDeps{
			Conf:        conf,
			Logger:      logger,
			UserSvc:     usrSvc,
			ScheduleSvc: slotSvc,
			MeetingSvc:  mtgSvc,
			NotifSvc:    notifSvc,
			Validate:    validate,
			Translator:  translator,
		},
	)

	go func() {
		server.Start()
	}()

	// =========================================================================
	// Shutdown

	select {
	case err = <-server.Errors():
		logger.Fatal(fmt.Sprintf("server error: %v", err), err)

	case sig := <-server.ShutdownSignal():
		logger.Info(fmt.Sprintf("%v: Start shutdown...", sig))

		// give outstanding requests a deadline for completion
		ctx, cancel := context.WithTimeout(context.Background(), conf.Server.ShutdownTimeout)
		defer cancel()

		// asking listener to shutdown and shed load
		if err = server.Shutdown(ctx); err != nil {
			logger.Error(fmt.Sprintf("could not stop server gracefully: %v", err), err)

			if err = server.Close(); err != nil {
				logger.Fatal(fmt.Sprintf("could not force stop server: %v", err), err)
			}
		}
	}
}

func setUpDB(conf *core.Config) (*database.DB, error) {
	if err := database.CreateIfNotExist(conf); err != nil {
		return nil, err
	}

	db, err := database.Open(conf)
	if err != nil {
		return nil, err
	}

	if err = database.Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}
