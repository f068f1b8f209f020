// SPDX-License-Identifier: GPL-3.0-or-later
package config

import (
	"io/ioutil"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	filename := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, ioutil.WriteFile(filename, []byte(content), 0600))
	return filename
}

func TestReadConfig_Defaults(t *testing.T) {
	c, err := ReadConfig(writeConfig(t, ``))
	assert.NoError(t, err)
	assert.Equal(t, defaults(), c)
}

func TestReadConfig_Imap(t *testing.T) {
	c, err := ReadConfig(writeConfig(t, `
Backend = "imap"
ImapHost = "imap.example.com:993"
ImapUser = "sync"
ImapPassword = "secret"
ImapTrashFolder = "Trash"
SessionTimeout = "5m"
Loglevel = "debug"
`))
	assert.NoError(t, err)
	assert.Equal(t, BackendImap, c.Backend)
	assert.Equal(t, "Trash", c.ImapTrashFolder)
	assert.Equal(t, 5*time.Minute, c.SessionTimeout.Duration)
	assert.Equal(t, "debug", *c.Loglevel)
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(c *Config)
		err    string
	}{
		{"ok", func(c *Config) {}, ""},
		{"nodatabase", func(c *Config) { c.Database = " " }, "Database name must not be empty, set to a filename for the sqlite database"},
		{"nolisten", func(c *Config) { c.Listen = "" }, "Listen must not be empty, set to host:port to serve SyncML on"},
		{"badpath", func(c *Config) { c.Path = "syncml" }, "Path must start with /"},
		{"unknownbackend", func(c *Config) { c.Backend = "ldap" }, `unknown Backend "ldap", use "sql" or "imap"`},
		{"imapnohost", func(c *Config) { c.Backend = BackendImap }, "ImapHost must not be empty, set to host:port of the imap server"},
		{"imapnouser", func(c *Config) { c.Backend = BackendImap; c.ImapHost = "h:993" }, "ImapUser must not be empty, set to username on the imap server"},
		{"sizes", func(c *Config) { c.MaxMsgSize = 0 }, "MaxMsgSize and MaxObjSize must be positive"},
		{"timeout", func(c *Config) { c.SessionTimeout.Duration = 0 }, "SessionTimeout must be positive"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			c := defaults()
			tc.modify(c)
			err := c.validate()
			if len(tc.err) == 0 {
				assert.NoError(t, err)
			} else {
				assert.EqualError(t, err, tc.err)
			}
		})
	}
}
