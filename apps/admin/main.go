package main

import (
	"log"
	"os"

	"github.com/collegia/collegia/core"
	"github.com/collegia/collegia/core/reminder"
	emailsvc "github.com/collegia/collegia/services/email"
	logsvc "github.com/collegia/collegia/services/logger"
	"github.com/collegia/collegia/storage/database"
	sqlxrepos "github.com/collegia/collegia/storage/database/sqlx"
)

var logger *log.Logger

func main() {
	defer os.Exit(0)

	logger = log.New(os.Stdout, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)

	conf, err := core.NewConfig()
	errAndDie(err)

	// set up DB
	db, err := database.Open(conf)
	errAndDie(err)
	defer db.Close()
	errAndDie(db.Ping())

	usrRepo := sqlxrepos.NewUserRepository(db)
	mtgRepo := sqlxrepos.NewMeetingRepository(db)
	notifRepo := sqlxrepos.NewNotificationRepository(db)

	var mailSvc core.EmailService
	if conf.Debug {
		mailSvc = emailsvc.NewConsoleService(conf)
	} else {
		mailSvc = emailsvc.NewSendgridService(conf, logsvc.NewStdLogger(logger))
	}

	// start CLI
	cli := commandLine{
		sqlDB:   db.DB.DB,
		usrRepo: usrRepo,
		engine: reminder.NewEngine(
			db, mtgRepo, usrRepo, notifRepo, mailSvc,
			core.RealClock(), logsvc.NewStdLogger(logger),
		),
	}
	if err := cli.run(os.Args); err != nil {
		if err != errHelp {
			logger.Printf("\nerror: %s\n", err)
		}
		os.Exit(1)
	}
}

func errAndDie(err error) {
	if err != nil {
		logger.Fatal(err)
	}
}
