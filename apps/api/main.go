package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/jmoiron/sqlx"

	echoapi "github.com/littleoaks/backend/apps/api/echo"
	"github.com/littleoaks/backend/core"
	"github.com/littleoaks/backend/core/account"
	"github.com/littleoaks/backend/core/attendance"
	"github.com/littleoaks/backend/core/billing"
	"github.com/littleoaks/backend/core/child"
	"github.com/littleoaks/backend/core/health"
	"github.com/littleoaks/backend/core/notification"
	"github.com/littleoaks/backend/core/schedule"
	emailsvc "github.com/littleoaks/backend/services/email"
	identitysvc "github.com/littleoaks/backend/services/identity"
	logsvc "github.com/littleoaks/backend/services/logger"
	pushsvc "github.com/littleoaks/backend/services/push"
	"github.com/littleoaks/backend/storage/docstore"
	pgstore "github.com/littleoaks/backend/storage/docstore/postgres"
)

const shutdownTimeout = 20 * time.Second

func main() {
	// =========================================================================
	// Set up Dependencies

	core.Conf = core.NewConfig(core.Getwd())
	conf := core.Conf

	var logger core.Logger
	if conf.Debug {
		logger = logsvc.NewStdLogger(log.New(os.Stdout, "API : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile))
	} else {
		rollbarLogger := logsvc.NewRollbarLogger(
			log.New(os.Stdout, "API : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
			conf,
		)
		rollbarLogger.Enable(true)
		logger = rollbarLogger
	}

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
	store := pgstore.NewStore(db, docstore.ConnInfo(conf.Database.Name, false, conf), logger)

	// set up services
	var mailSvc core.EmailService
	if conf.Debug {
		mailSvc = emailsvc.NewConsoleService(conf)
	} else {
		mailSvc = emailsvc.NewSendgridService(conf, logger)
	}

	var push core.PushService
	if conf.FCMServerKey != "" {
		if push, err = pushsvc.NewFCMService(conf, logger); err != nil {
			logger.Fatal(fmt.Sprintf("setting up FCM: %v", err), err)
		}
	} else {
		push = pushsvc.NewDummyService()
	}

	identity := identitysvc.NewService(store, mailSvc, conf, logger)
	accountSvc := account.NewService(store, identity, nil /* tokens */, logger)
	childSvc := child.NewService(store, logger)
	notifSvc := notification.NewService(store, childSvc, mailSvc, push, logger)
	attendanceSvc := attendance.NewService(store, notifSvc, logger)
	healthSvc := health.NewService(store, notifSvc, logger)
	billingSvc := billing.NewService(store, logger)
	scheduleSvc := schedule.NewService(store, logger)

	// =========================================================================
	// Start API Service

	logger.Info(fmt.Sprintf("Application initializing : version %q", conf.Build))
	defer logger.Info("Application stopped")

	server := echoapi.NewServer(
		conf.Server.Address(),
		&echoapi.Deps{
			Conf:          conf,
			Logger:        logger,
			Identity:      identity,
			AccountSvc:    accountSvc,
			ChildSvc:      childSvc,
			AttendanceSvc: attendanceSvc,
			HealthSvc:     healthSvc,
			BillingSvc:    billingSvc,
			ScheduleSvc:   scheduleSvc,
			NotifSvc:      notifSvc,
		},
	)

	go server.Start()

	// =========================================================================
	// Shutdown

	select {
	case err = <-server.Errors():
		logger.Fatal(fmt.Sprintf("server error: %v", err), err)

	case sig := <-server.ShutdownSignal():
		logger.Info(fmt.Sprintf("%v: Start shutdown...", sig))

		// give outstanding requests a deadline for completion
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err = server.Shutdown(ctx); err != nil {
			logger.Error(fmt.Sprintf("could not stop server gracefully: %v", err), err)

			if err = server.Close(); err != nil {
				logger.Fatal(fmt.Sprintf("could not force stop server: %v", err), err)
			}
		}
	}
}

func setUpDB(conf *core.Config) (*sqlx.DB, error) {
	if err := docstore.CreateIfNotExist(conf); err != nil {
		return nil, err
	}

	db, err := docstore.Open(conf)
	if err != nil {
		return nil, err
	}

	if err = docstore.Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}
