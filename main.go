// SPDX-License-Identifier: GPL-3.0-or-later
package main

import (
	"io"
	"os"

	"github.com/CrawX/go-syncml/backend"
	"github.com/CrawX/go-syncml/config"
	"github.com/CrawX/go-syncml/domain"
	"github.com/CrawX/go-syncml/imapconnection"
	"github.com/CrawX/go-syncml/log"
	"github.com/CrawX/go-syncml/persistence"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var configFile string

var rootCmd = &cobra.Command{
	Use:   "go-syncml",
	Short: "SyncML server for contacts, calendars, tasks and notes",
	Long: `go-syncml synchronizes contacts, calendars, tasks and notes with SyncML
1.0, 1.1 and 1.2 clients like phones and Outlook connectors.

Entries are stored in a sqlite database or as messages on an IMAP server.`,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "config.toml", "config file")
}

func main() {
	log.InitLogging("info")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// setup reads the config and applies its logging settings. The returned
// closer flushes the log file, if any.
func setup() (*config.Config, io.Closer, *logrus.Logger) {
	logger := log.Logger(log.LOG_MAIN)

	conf, err := config.ReadConfig(configFile)
	if err != nil {
		logger.WithField("error", err).Fatal("Could not load config")
	}

	if conf.Loglevel != nil {
		log.SetLogLevel(*conf.Loglevel)
	}

	var closer io.Closer = nopCloser{}
	if len(conf.LogFile) > 0 {
		closer = log.SetLogFile(conf.LogFile, 10, 5, 30)
	}

	return conf, closer, logger
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

func openPersistence(conf *config.Config, logger *logrus.Logger) *persistence.Persistence {
	p, err := persistence.NewPersistence(conf.Database)
	if err != nil {
		logger.WithField("error", err).Fatal("Could not connect to database")
	}
	return p
}

func openBackend(conf *config.Config, p domain.Persistence) *backend.Backend {
	if conf.Backend == config.BackendImap {
		return backend.NewImapBackend(p, func() (domain.ImapConnector, error) {
			return imapconnection.NewImapConnection(conf.ImapHost, conf.ImapUser, conf.ImapPassword)
		}, conf.ImapFolderPrefix, conf.ImapTrashFolder)
	}

	return backend.NewSQLBackend(p)
}
