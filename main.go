package main

import (
	"fmt"
	"os"

	"github.com/strandnet/strandd/config"
	"github.com/strandnet/strandd/dbaccess"
	"github.com/strandnet/strandd/ledger"
	"github.com/strandnet/strandd/logger"
	"github.com/strandnet/strandd/stats"
	"github.com/strandnet/strandd/util"
	"github.com/strandnet/strandd/version"
)

func main() {
	if err := strandMain(); err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", err)
		os.Exit(1)
	}
}

func strandMain() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}
	defer func() {
		if logger.BackendLog.IsRunning() {
			logger.BackendLog.Close()
		}
	}()

	log.Infof("Version %s", version.Version())

	dbContext, err := dbaccess.New(cfg.DBPath())
	if err != nil {
		return err
	}
	defer func() {
		log.Infof("Gracefully shutting down the database...")
		err := dbContext.Close()
		if err != nil {
			log.Errorf("Error shutting down the database: %s", err)
		}
	}()

	collector := stats.NewCollector()
	ldgr := ledger.New(dbContext, collector, cfg.ActiveParams)
	err = ldgr.Initialize()
	if err != nil {
		return err
	}

	counts, err := dbaccess.BlockCount(dbContext)
	if err != nil {
		return err
	}
	checksum, err := ldgr.Checksum(dbContext)
	if err != nil {
		return err
	}
	log.Infof("Ledger holds %d blocks (%d send, %d receive, %d open, %d change, %d state), checksum %s",
		counts.Sum(), counts.Send, counts.Receive, counts.Open, counts.Change,
		counts.State, checksum)

	if cfg.DumpAccount != "" {
		account, err := util.DecodeAccount(cfg.DumpAccount)
		if err != nil {
			return err
		}
		chain, err := ldgr.DumpAccountChain(account)
		if err != nil {
			return err
		}
		for _, hash := range chain {
			fmt.Println(hash)
		}
	}

	return nil
}
