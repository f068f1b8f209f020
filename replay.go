// SPDX-License-Identifier: GPL-3.0-or-later
package main

import (
	"context"
	"errors"
	"fmt"
	"io/ioutil"
	"os"
	"path/filepath"

	"github.com/CrawX/go-syncml/backend"
	"github.com/CrawX/go-syncml/domain"
	"github.com/CrawX/go-syncml/log"
	"github.com/CrawX/go-syncml/persistence"
	"github.com/CrawX/go-syncml/replay"
	"github.com/CrawX/go-syncml/syncml"

	"github.com/spf13/cobra"
)

const (
	replayUser     = "syncmltest"
	replayPassword = "syncmltest"
)

var replayCmd = &cobra.Command{
	Use:   "replay <testcase dir>...",
	Short: "Replay recorded SyncML sessions and compare the answers",
	Long: `Replay the client packets of recorded test cases and compare the server's
answers with the recorded ones. Test cases are directories written by the
packet logger (DebugDir), recorded with a fresh user syncmltest/syncmltest.

Without --url every test case runs against a new in-process server with an
empty database. Entries the recorded server sent to the client are created
before each session.`,
	Args: cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		log.InitLogging("warn")
		logger := log.Logger(log.LOG_MAIN)
		if debug, _ := cmd.Flags().GetBool("debug"); debug {
			log.SetLogLevel("debug")
		}
		url, _ := cmd.Flags().GetString("url")

		failed := 0
		for _, dir := range args {
			err := replayTestCase(cmd.Context(), dir, url)
			var d *replay.Difference
			if errors.As(err, &d) {
				fmt.Printf("testcase %s: packet %d differs\nReference:\n%s\nResult:\n%s\n", dir, d.Packet, d.Expected, d.Got)
			}
			if err != nil {
				logger.WithField("error", err).Errorf("testcase %s failed", dir)
				failed++
				continue
			}
			fmt.Printf("testcase %s: passed\n", dir)
		}

		if failed > 0 {
			os.Exit(1)
		}
	},
}

func replayTestCase(ctx context.Context, dir, url string) error {
	if ctx == nil {
		ctx = context.Background()
	}

	if len(url) > 0 {
		_, err := replay.NewReplayer(&replay.HTTPSender{URL: url}, nil).Run(ctx, dir)
		return err
	}

	tmp, err := ioutil.TempDir("", "syncml-replay")
	if err != nil {
		return fmt.Errorf("could not create temp dir: %w", err)
	}
	defer os.RemoveAll(tmp)

	p, err := persistence.NewPersistence(filepath.Join(tmp, "replay.db"))
	if err != nil {
		return err
	}
	defer p.Close()

	b := backend.NewSQLBackend(p)
	err = b.AddUser(ctx, replayUser, replayPassword)
	if err != nil {
		return err
	}

	engine, err := syncml.NewEngine(b, p)
	if err != nil {
		return err
	}

	sender := &replay.EngineSender{Engine: engine, RespURI: "http://localhost/syncml"}
	seeder := &replay.BackendSeeder{Backend: b, Partner: domain.Partner{User: replayUser}}
	_, err = replay.NewReplayer(sender, seeder).Run(ctx, dir)
	return err
}

func init() {
	replayCmd.Flags().String("url", "", "replay against a running server instead of in process")
	replayCmd.Flags().Bool("debug", false, "log every packet")

	rootCmd.AddCommand(replayCmd)
}
