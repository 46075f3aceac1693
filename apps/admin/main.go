package main

import (
	"log"
	"os"

	"github.com/tsongo/darasa/core"
	"github.com/tsongo/darasa/core/account"
	"github.com/tsongo/darasa/core/assignment"
	"github.com/tsongo/darasa/core/catalog"
	"github.com/tsongo/darasa/storage/kvdb"
)

var logger *log.Logger

func main() {
	defer os.Exit(0)

	logger = log.New(os.Stdout, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)

	conf := core.NewConfig()

	// set up DB
	db, err := kvdb.Open(conf.Database.Path)
	errAndDie(err)
	defer db.Close()

	lock := core.NewLockManager()

	acctRepo := kvdb.NewAccountRepository(db)
	catRepo := kvdb.NewCatalogRepository(db)
	asgRepo := kvdb.NewAssignmentRepository(db)
	resRepo := kvdb.NewResourceRepository(db)

	// start CLI
	cli := commandLine{
		acctRepo: acctRepo,
		acctSvc:  account.NewService(conf, acctRepo, lock),
		catSvc:   catalog.NewService(catRepo, acctRepo, asgRepo, resRepo, lock),
		asgSvc:   assignment.NewService(asgRepo, catRepo, acctRepo, lock),
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
