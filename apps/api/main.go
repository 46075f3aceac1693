package main

import (
	"context"
	"fmt"
	"log"
	"os"

	echoapi "github.com/tsongo/darasa/apps/api/echo"
	"github.com/tsongo/darasa/core"
	"github.com/tsongo/darasa/core/account"
	"github.com/tsongo/darasa/core/assignment"
	"github.com/tsongo/darasa/core/catalog"
	"github.com/tsongo/darasa/core/resource"
	logsvc "github.com/tsongo/darasa/services/logger"
	"github.com/tsongo/darasa/storage/kvdb"
)

func main() {
	// =========================================================================
	// Set up Dependencies

	conf := core.NewConfig()

	logger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "API : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)
	logger.Enable(!conf.Debug)

	db, err := kvdb.Open(conf.Database.Path)
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up database: %v", err), err)
	}
	defer func() {
		if err = db.Close(); err != nil {
			logger.Error("failed to close database", err)
		}
	}()

	// all services share one lock; every multi-write operation runs as a
	// single critical section on the lock-free substrate
	lock := core.NewLockManager()

	acctRepo := kvdb.NewAccountRepository(db)
	catRepo := kvdb.NewCatalogRepository(db)
	asgRepo := kvdb.NewAssignmentRepository(db)
	resRepo := kvdb.NewResourceRepository(db)

	acctSvc := account.NewService(conf, acctRepo, lock)
	catSvc := catalog.NewService(catRepo, acctRepo, asgRepo, resRepo, lock)
	asgSvc := assignment.NewService(asgRepo, catRepo, acctRepo, lock)
	resSvc := resource.NewService(resRepo, catRepo, lock)

	// =========================================================================
	// Start API Service

	logger.Info(fmt.Sprintf("Application initializing : version %q", conf.Build))
	defer logger.Info("Application stopped")

	server := echoapi.NewServer(
		echoapi.ServerDeps{
			Conf:          conf,
			Logger:        logger,
			AccountSvc:    acctSvc,
			CatalogSvc:    catSvc,
			AssignmentSvc: asgSvc,
			ResourceSvc:   resSvc,
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

		if err = server.Shutdown(ctx); err != nil {
			logger.Error(fmt.Sprintf("could not stop server gracefully: %v", err), err)

			if err = server.Close(); err != nil {
				logger.Fatal(fmt.Sprintf("could not force stop server: %v", err), err)
			}
		}
	}
}
