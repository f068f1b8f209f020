// SPDX-License-Identifier: GPL-3.0-or-later
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

const (
	BackendSQL  = "sql"
	BackendImap = "imap"
)

type Config struct {
	Listen      string
	Path        string
	PublicURL   string
	MetricsPath string
	ServerName  string

	Database string
	Backend  string

	ImapHost         string
	ImapUser         string
	ImapPassword     string
	ImapFolderPrefix string
	ImapTrashFolder  string

	MaxMsgSize     int
	MaxObjSize     int
	SessionTimeout duration

	DebugDir string

	Loglevel *string
	LogFile  string
}

type duration struct {
	time.Duration
}

func (d *duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

func ReadConfig(filename string) (*Config, error) {
	config := defaults()

	_, err := toml.DecodeFile(filename, config)
	if err != nil {
		return nil, fmt.Errorf("could not read config file: %w", err)
	}

	err = config.validate()
	if err != nil {
		return nil, err
	}

	return config, nil
}

func defaults() *Config {
	return &Config{
		Listen:           ":8080",
		Path:             "/syncml",
		MetricsPath:      "/metrics",
		ServerName:       "go-syncml",
		Database:         "syncml.db",
		Backend:          BackendSQL,
		ImapFolderPrefix: "SyncML",
		MaxMsgSize:       1000000,
		MaxObjSize:       4000000,
		SessionTimeout:   duration{30 * time.Minute},
	}
}

func (c *Config) validate() error {
	if err := validateNonEmptyStringField(c.Database, "Database name must not be empty, set to a filename for the sqlite database"); err != nil {
		return err
	}

	if err := validateNonEmptyStringField(c.Listen, "Listen must not be empty, set to host:port to serve SyncML on"); err != nil {
		return err
	}

	if !strings.HasPrefix(c.Path, "/") {
		return fmt.Errorf("Path must start with /")
	}

	switch c.Backend {
	case BackendSQL:
	case BackendImap:
		if err := validateNonEmptyStringField(c.ImapHost, "ImapHost must not be empty, set to host:port of the imap server"); err != nil {
			return err
		}

		if err := validateNonEmptyStringField(c.ImapUser, "ImapUser must not be empty, set to username on the imap server"); err != nil {
			return err
		}

		if err := validateNonEmptyStringField(c.ImapPassword, "ImapPassword must not be empty, set to password of ImapUser on the imap server"); err != nil {
			return err
		}

		if err := validateNonEmptyStringField(c.ImapFolderPrefix, "ImapFolderPrefix must not be empty"); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unknown Backend %q, use %q or %q", c.Backend, BackendSQL, BackendImap)
	}

	if c.MaxMsgSize <= 0 || c.MaxObjSize <= 0 {
		return fmt.Errorf("MaxMsgSize and MaxObjSize must be positive")
	}

	if c.SessionTimeout.Duration <= 0 {
		return fmt.Errorf("SessionTimeout must be positive")
	}

	return nil
}

func validateNonEmptyStringField(field string, err string) error {
	if len(strings.TrimSpace(field)) == 0 {
		return errors.New(err)
	}

	return nil
}
