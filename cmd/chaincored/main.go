// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Command chaincored runs the chain controller as a standalone node:
// it loads a Lua configuration file, opens the on-disk state, token
// and block-log stores, replays or seeds the fork database, and then
// blocks the transaction and block acceptance surface until asked to
// stop.
package main

import (
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/urfave/cli"

	"github.com/bitmark-inc/chaincore/account"
	"github.com/bitmark-inc/chaincore/applyhandler"
	"github.com/bitmark-inc/chaincore/blocklog"
	"github.com/bitmark-inc/chaincore/configuration"
	"github.com/bitmark-inc/chaincore/controller"
	"github.com/bitmark-inc/chaincore/fault"
	"github.com/bitmark-inc/chaincore/forkdb"
	"github.com/bitmark-inc/chaincore/genesis"
	"github.com/bitmark-inc/chaincore/mode"
	chainsignal "github.com/bitmark-inc/chaincore/signal"
	"github.com/bitmark-inc/chaincore/statestore"
	"github.com/bitmark-inc/chaincore/tokendb"
	"github.com/bitmark-inc/chaincore/unapplied"
	"github.com/bitmark-inc/chaincore/version"
	"github.com/bitmark-inc/logger"
)

func main() {
	app := cli.NewApp()
	app.Name = "chaincored"
	app.Usage = "chain controller node"
	app.Version = version.Version
	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:  "conf, c",
			Usage: "load configuration from `FILE`",
			Value: "chaincored.conf",
		},
	}
	app.Action = runNode

	if err := app.Run(os.Args); nil != err {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runNode(c *cli.Context) error {
	configurationFileName := c.String("conf")
	options, err := configuration.GetConfiguration(configurationFileName)
	if nil != err {
		return cli.NewExitError(err.Error(), 1)
	}

	if err := lockPidFile(options.PidFile); nil != err {
		return cli.NewExitError(err.Error(), 1)
	}
	defer os.Remove(options.PidFile)

	if err := logger.Initialise(logger.Configuration{
		Directory: options.Logging.Directory,
		File:      options.Logging.File,
		Size:      options.Logging.Size,
		Count:     options.Logging.Count,
		Levels:    options.Logging.Levels,
	}); nil != err {
		return cli.NewExitError(err.Error(), 1)
	}
	defer logger.Finalise()

	log := logger.New("main")
	log.Infof("starting chaincored version %s", version.Version)

	if err := fault.Initialise(); nil != err {
		return cli.NewExitError(err.Error(), 1)
	}
	defer fault.Finalise()

	if err := mode.Initialise(options.Genesis.Chain); nil != err {
		return cli.NewExitError(err.Error(), 1)
	}
	defer mode.Finalise()

	stopWatch, err := configuration.WatchForChanges(configurationFileName, func() {})
	if nil != err {
		log.Warnf("configuration watch disabled: %s", err)
	} else {
		defer stopWatch()
	}

	node, err := bootNode(log, options)
	if nil != err {
		return cli.NewExitError(err.Error(), 1)
	}
	defer node.shutdown(log)

	log.Info("chaincored started, waiting for termination signal")
	waitForSignal(log)

	return nil
}

// node - every long-lived resource this process owns, so shutdown can
// unwind them in reverse acquisition order.
type node struct {
	state    *statestore.Store
	token    *tokendb.Store
	blockLog *blocklog.Store
	pool     *unapplied.Pool
	ctrl     *controller.Controller
	metricsL *http.Server
}

func bootNode(log *logger.L, options *configuration.Configuration) (*node, error) {
	var stateFields stateSchema
	state, err := statestore.Open(options.StateDBDir, options.ReadOnly, &stateFields)
	if nil != err {
		return nil, err
	}

	var tokenFields tokenSchema
	token, err := tokendb.Open(options.TokenDBDir, options.ReadOnly, &tokenFields)
	if nil != err {
		return nil, err
	}

	blockLog, err := blocklog.Open(options.BlockLogDir, options.ReadOnly)
	if nil != err {
		return nil, err
	}

	initialProducer, err := account.AccountFromBase58(options.Genesis.InitialProducer)
	if nil != err {
		return nil, err
	}
	genesisData, err := genesis.For(options.Genesis.Chain, initialProducer)
	if nil != err {
		return nil, err
	}

	genesisBlockState := buildGenesisBlockState(genesisData)

	forks := forkdb.New(nil)
	forks.Init(genesisBlockState)

	if _, ok := blockLog.Height(); !ok {
		if err := blockLog.Append(genesisBlockState); nil != err {
			return nil, err
		}
	}

	pool := unapplied.New()

	domains := tokendb.NewDomainIndex(tokenFields.Domains)
	groups := tokendb.NewGroupIndex(tokenFields.Groups)
	tokens := tokendb.NewTokenIndex(tokenFields.Tokens)
	accounts := tokendb.NewAccountIndex(tokenFields.Accounts)

	bus := chainsignal.New()
	metrics := controller.NewMetrics("chaincore")
	metrics.MustRegister(prometheus.DefaultRegisterer)

	ctrl, err := controller.New(controller.Config{
		State:           state,
		Token:           token,
		Forks:           forks,
		BlockLog:        blockLog,
		Pool:            pool,
		Handlers:        applyhandler.NewBuilder().Build(),
		Bus:             bus,
		Metrics:         metrics,
		Properties:      controller.NewPropertiesStore(stateFields.Properties),
		DomainAuthority: domainAuthorityResolver(domains),
		Group:           groupResolver(groups),
		Owner:           ownerResolver(accounts, tokens),
		Genesis:         genesisData.Configuration,
	})
	if nil != err {
		return nil, err
	}

	if err := replayBlockLog(ctrl, blockLog, forks); nil != err {
		return nil, err
	}

	pool.Start()

	var metricsServer *http.Server
	if addr := os.Getenv("CHAINCORED_METRICS_ADDR"); "" != addr {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		metricsServer = &http.Server{Addr: addr, Handler: mux}
		go func() {
			if err := metricsServer.ListenAndServe(); nil != err && http.ErrServerClosed != err {
				log.Errorf("metrics listener stopped: %s", err)
			}
		}()
	}

	return &node{
		state:    state,
		token:    token,
		blockLog: blockLog,
		pool:     pool,
		ctrl:     ctrl,
		metricsL: metricsServer,
	}, nil
}

func (n *node) shutdown(log *logger.L) {
	log.Info("shutting down")
	if nil != n.metricsL {
		n.metricsL.Close()
	}
	n.pool.Stop()
	if err := n.blockLog.Close(); nil != err {
		log.Errorf("block log close: %s", err)
	}
	if err := n.token.Close(); nil != err {
		log.Errorf("token store close: %s", err)
	}
	if err := n.state.Close(); nil != err {
		log.Errorf("state store close: %s", err)
	}
}

func lockPidFile(pidFile string) error {
	f, err := os.OpenFile(pidFile, os.O_WRONLY|os.O_EXCL|os.O_CREATE, os.ModeExclusive|0600)
	if nil != err {
		return err
	}
	defer f.Close()
	_, err = f.WriteString(strconv.Itoa(os.Getpid()))
	return err
}

func waitForSignal(log *logger.L) {
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	sig := <-ch
	log.Infof("received signal: %s", sig)
}
