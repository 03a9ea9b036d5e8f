package main

import (
	"log"
	"os"

	"github.com/littleoaks/backend/core"
	"github.com/littleoaks/backend/core/account"
	"github.com/littleoaks/backend/core/child"
	identitysvc "github.com/littleoaks/backend/services/identity"
	logsvc "github.com/littleoaks/backend/services/logger"
	"github.com/littleoaks/backend/storage/docstore"
	pgstore "github.com/littleoaks/backend/storage/docstore/postgres"
)

func main() {
	defer os.Exit(0)

	std := log.New(os.Stdout, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)
	logger := logsvc.NewStdLogger(std)

	core.Conf = core.NewConfig(core.Getwd())
	conf := core.Conf

	// set up DB
	db, err := docstore.Open(conf)
	if err != nil {
		logger.Fatal("opening database", err)
	}
	defer func() { _ = db.Close() }()
	if err = docstore.Ping(db); err != nil {
		logger.Fatal("pinging database", err)
	}

	store := pgstore.NewStore(db, docstore.ConnInfo(conf.Database.Name, false, conf), logger)
	identity := identitysvc.NewService(store, nil /* email */, conf, logger)

	// start CLI
	cli := commandLine{
		db:         db,
		store:      store,
		accountSvc: account.NewService(store, identity, nil /* tokens */, logger),
		childSvc:   child.NewService(store, logger),
	}
	if err := cli.run(os.Args); err != nil {
		if err != errHelp {
			std.Printf("\nerror: %s\n", err)
		}
		os.Exit(1)
	}
}
