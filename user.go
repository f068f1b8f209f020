// SPDX-License-Identifier: GPL-3.0-or-later
package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Manage SyncML users",
}

var userAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Add a user or change its password",
	Long: `Add a user or change its password. The password is read from stdin
unless given with --password.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		conf, logFile, logger := setup()
		defer logFile.Close()

		password, _ := cmd.Flags().GetString("password")
		if len(password) == 0 {
			fmt.Fprint(os.Stderr, "Password: ")
			line, err := bufio.NewReader(os.Stdin).ReadString('\n')
			if err != nil && len(line) == 0 {
				logger.WithField("error", err).Fatal("Could not read password")
			}
			password = strings.TrimRight(line, "\r\n")
		}

		p := openPersistence(conf, logger)
		defer p.Close()

		err := openBackend(conf, p).AddUser(context.Background(), args[0], password)
		if err != nil {
			logger.WithField("error", err).Fatal("Could not add user")
		}
		logger.WithField("user", args[0]).Info("User saved")
	},
}

var userDeleteCmd = &cobra.Command{
	Use:   "delete <name>",
	Short: "Delete a user with all of its entries and sync state",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		conf, logFile, logger := setup()
		defer logFile.Close()

		p := openPersistence(conf, logger)
		defer p.Close()

		err := openBackend(conf, p).DeleteUser(context.Background(), args[0])
		if err != nil {
			logger.WithField("error", err).Fatal("Could not delete user")
		}
		logger.WithField("user", args[0]).Info("User deleted")
	},
}

func init() {
	userAddCmd.Flags().StringP("password", "p", "", "password of the user")

	userCmd.AddCommand(userAddCmd)
	userCmd.AddCommand(userDeleteCmd)
	rootCmd.AddCommand(userCmd)
}
