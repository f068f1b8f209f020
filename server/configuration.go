// SPDX-License-Identifier: GPL-3.0-or-later
package server

import (
	"fmt"
	"strings"
	"time"
)

type ConfigFunc func(c *configuration) error

// PublicURL is sent to clients as RespURI. Without it the address is taken
// from the request, which is wrong behind a reverse proxy.
func PublicURL(url string) ConfigFunc {
	return func(c *configuration) error {
		if len(url) == 0 {
			return fmt.Errorf("PublicURL cannot be null")
		}

		c.PublicURL = url
		return nil
	}
}

func Path(path string) ConfigFunc {
	return func(c *configuration) error {
		if !strings.HasPrefix(path, "/") {
			return fmt.Errorf("Path must start with /")
		}

		c.Path = path
		return nil
	}
}

// MetricsPath serves the prometheus metrics, an empty path disables them.
func MetricsPath(path string) ConfigFunc {
	return func(c *configuration) error {
		if len(path) > 0 && !strings.HasPrefix(path, "/") {
			return fmt.Errorf("MetricsPath must start with /")
		}

		c.MetricsPath = path
		return nil
	}
}

func SessionTimeout(timeout time.Duration) ConfigFunc {
	return func(c *configuration) error {
		if timeout <= 0 {
			return fmt.Errorf("SessionTimeout must be positive")
		}

		c.SessionTimeout = timeout
		return nil
	}
}

// MaxBodySize limits the size of client messages read.
func MaxBodySize(size int64) ConfigFunc {
	return func(c *configuration) error {
		if size <= 0 {
			return fmt.Errorf("MaxBodySize must be positive")
		}

		c.MaxBodySize = size
		return nil
	}
}

type configuration struct {
	PublicURL      string
	Path           string
	MetricsPath    string
	SessionTimeout time.Duration
	MaxBodySize    int64
}

func defaultConfiguration() configuration {
	return configuration{
		Path:           "/syncml",
		MetricsPath:    "/metrics",
		SessionTimeout: 30 * time.Minute,
		MaxBodySize:    8 << 20,
	}
}
