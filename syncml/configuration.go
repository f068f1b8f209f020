// SPDX-License-Identifier: GPL-3.0-or-later
package syncml

import (
	"fmt"

	"github.com/CrawX/go-syncml/log"
)

type ConfigFunc func(c *configuration) error

// MaxMsgSize limits the messages sent to clients further than the clients
// themselves do.
func MaxMsgSize(size int) ConfigFunc {
	return func(c *configuration) error {
		if size < MsgDefaultLen {
			return fmt.Errorf("MaxMsgSize must be at least %d", MsgDefaultLen)
		}

		c.MaxMsgSize = size
		return nil
	}
}

func MaxObjSize(size int) ConfigFunc {
	return func(c *configuration) error {
		if size <= 0 {
			return fmt.Errorf("MaxObjSize must be positive")
		}

		c.MaxObjSize = size
		return nil
	}
}

// ServerName is announced as DevID in the server's device information.
func ServerName(name string) ConfigFunc {
	return func(c *configuration) error {
		if len(name) == 0 {
			return fmt.Errorf("ServerName cannot be null")
		}

		c.ServerName = name
		return nil
	}
}

func PacketLog(packets *log.PacketLogger) ConfigFunc {
	return func(c *configuration) error {
		c.Packets = packets
		return nil
	}
}

func WithMetrics(metrics Metrics) ConfigFunc {
	return func(c *configuration) error {
		if metrics == nil {
			return fmt.Errorf("Metrics cannot be null")
		}

		c.Metrics = metrics
		return nil
	}
}

type configuration struct {
	MaxMsgSize int
	MaxObjSize int
	ServerName string

	Packets *log.PacketLogger
	Metrics Metrics
}

func defaultConfiguration() configuration {
	return configuration{
		MaxMsgSize: ServerMaxMsgSize,
		MaxObjSize: ServerMaxObjSize,
		ServerName: Manufacturer,
		Metrics:    noopMetrics{},
	}
}

// Metrics receives protocol events for monitoring.
type Metrics interface {
	CommandHandled(command string)
	SyncCompleted(database string, syncType int)
}

type noopMetrics struct{}

func (noopMetrics) CommandHandled(string) {}

func (noopMetrics) SyncCompleted(string, int) {}
