package main

import (
	"log"
	"os"

	"github.com/campuskit/seguimiento/core"
	"github.com/campuskit/seguimiento/core/notify"
	"github.com/campuskit/seguimiento/core/report"
	emailsvc "github.com/campuskit/seguimiento/services/email"
	logsvc "github.com/campuskit/seguimiento/services/logger"
	"github.com/campuskit/seguimiento/storage/redisstore"
)

func main() {
	conf := core.NewConfig()
	std := log.New(os.Stdout, conf.AppName+" : ", log.LstdFlags|log.Lshortfile)

	var logger core.Logger
	if conf.RollbarToken != "" {
		logger = logsvc.NewRollbarLogger(std, conf)
	} else {
		logger = core.NewStdLogger(std)
	}

	store, err := redisstore.New(conf, logger)
	if err != nil {
		logger.Fatal("connecting to the extract cache: "+err.Error(), err)
	}
	defer store.Close()

	var email core.EmailService
	if conf.SendgridApiKey != "" {
		email = emailsvc.NewSendgridService(conf, logger)
	} else {
		logger.Info("no sendgrid key configured, printing messages to console")
		email = emailsvc.NewConsoleService(conf)
	}

	cli := &commandLine{
		conf:     conf,
		log:      logger,
		reports:  report.NewService(store, logger),
		notifier: notify.NewService(conf, store, email, logger),
		out:      os.Stdout,
	}
	if err := cli.run(os.Args); err != nil && err != errHelp {
		logger.Fatal(err.Error(), err)
	}
}
