// SPDX-License-Identifier: GPL-3.0-or-later
package main

import (
	"context"
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"

	"github.com/CrawX/go-syncml/backend"
	"github.com/CrawX/go-syncml/domain"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var exportCmd = &cobra.Command{
	Use:   "export <user> <database>",
	Short: "Write all entries of a user's database to files",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		conf, logFile, logger := setup()
		defer logFile.Close()

		dir, _ := cmd.Flags().GetString("dir")
		concurrency, _ := cmd.Flags().GetInt("concurrency")
		if concurrency < 1 {
			concurrency = 1
		}
		user, database := args[0], backend.Normalize(args[1])

		p := openPersistence(conf, logger)
		defer p.Close()

		b := openBackend(conf, p)
		defer b.Close()

		ctx := context.Background()
		suids, err := b.SUIDs(ctx, user, database)
		if err != nil {
			logger.WithField("error", err).Fatal("Could not list entries")
		}

		err = os.MkdirAll(dir, 0700)
		if err != nil {
			logger.WithField("error", err).Fatal("Could not create export directory")
		}

		retriever := &backend.ConcurrentRetriever{Backend: b}
		results := retriever.RetrieveAll(ctx, domain.Partner{User: user}, database, suids, "", concurrency)

		failed := 0
		for _, r := range results {
			l := logger.WithField("suid", r.SUID)
			if r.Error != nil {
				l.WithField("error", r.Error).Error("Could not retrieve entry")
				failed++
				continue
			}

			filename := filepath.Join(dir, r.SUID+extension(r.Entry.ContentType))
			err = ioutil.WriteFile(filename, []byte(r.Entry.Content), 0600)
			if err != nil {
				l.WithField("error", err).Error("Could not write entry")
				failed++
			}
		}

		logger.WithFields(logrus.Fields{"user": user, "db": database, "entries": len(results), "failed": failed}).Info("Export finished")
		if failed > 0 {
			os.Exit(1)
		}
	},
}

func extension(contentType string) string {
	switch strings.ToLower(contentType) {
	case "text/x-vcard", "text/vcard", "text/directory":
		return ".vcf"
	case "text/calendar", "text/x-vcalendar":
		return ".ics"
	case "text/x-vnote":
		return ".vnt"
	}
	return ".txt"
}

func init() {
	exportCmd.Flags().StringP("dir", "d", ".", "directory to write the entries to")
	exportCmd.Flags().IntP("concurrency", "n", 4, "entries retrieved in parallel")

	rootCmd.AddCommand(exportCmd)
}
