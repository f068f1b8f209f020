// SPDX-License-Identifier: GPL-3.0-or-later
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/CrawX/go-syncml/log"
	"github.com/CrawX/go-syncml/server"
	"github.com/CrawX/go-syncml/syncml"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve SyncML over HTTP",
	Run: func(cmd *cobra.Command, args []string) {
		conf, logFile, logger := setup()
		defer logFile.Close()

		p := openPersistence(conf, logger)
		defer p.Close()

		b := openBackend(conf, p)
		defer b.Close()

		metrics := server.NewMetrics()
		engineConfigs := []syncml.ConfigFunc{
			syncml.MaxMsgSize(conf.MaxMsgSize),
			syncml.MaxObjSize(conf.MaxObjSize),
			syncml.ServerName(conf.ServerName),
			syncml.WithMetrics(metrics),
		}
		if len(conf.DebugDir) > 0 {
			packets, err := log.NewPacketLogger(conf.DebugDir)
			if err != nil {
				logger.WithField("error", err).Fatal("Could not start packet logger")
			}
			logger.WithField("dir", conf.DebugDir).Warn("Logging all SyncML packets, do not use in production")
			engineConfigs = append(engineConfigs, syncml.PacketLog(packets))
		}

		engine, err := syncml.NewEngine(b, p, engineConfigs...)
		if err != nil {
			logger.WithField("error", err).Fatal("Could not start SyncML engine")
		}

		serverConfigs := []server.ConfigFunc{
			server.Path(conf.Path),
			server.MetricsPath(conf.MetricsPath),
			server.SessionTimeout(conf.SessionTimeout.Duration),
		}
		if len(conf.PublicURL) > 0 {
			serverConfigs = append(serverConfigs, server.PublicURL(conf.PublicURL))
		}

		srv, err := server.NewServer(engine, p, metrics, serverConfigs...)
		if err != nil {
			logger.WithField("error", err).Fatal("Could not create server")
		}

		err = srv.Start(conf.Listen)
		if err != nil {
			logger.WithField("error", err).Fatal("Could not start server")
		}
		logger.WithFields(logrus.Fields{"listen": conf.Listen, "backend": conf.Backend}).Info("SyncML server started")

		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer cancel()
		<-ctx.Done()

		logger.Info("Shutting down")
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		err = srv.Stop(shutdownCtx)
		if err != nil {
			logger.WithField("error", err).Error("Shutdown failed")
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
