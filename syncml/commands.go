// SPDX-License-Identifier: GPL-3.0-or-later
package syncml

import (
	"strconv"
	"strings"

	"github.com/CrawX/go-syncml/devinf"
	"github.com/CrawX/go-syncml/log"
	"github.com/sirupsen/logrus"
)

type mapItem struct {
	suid string
	cuid string
}

// mapCommand carries the client ids of entries the server added.
type mapCommand struct {
	command

	targetURI string
	sourceURI string
	cur       mapItem
	items     []mapItem
}

func (c *mapCommand) EndElement(uri, element string) {
	switch c.path() {
	case "Target/LocURI":
		c.targetURI = c.text()
	case "Source/LocURI":
		c.sourceURI = c.text()
	case "MapItem/Target/LocURI":
		c.cur.suid = c.text()
	case "MapItem/Source/LocURI":
		c.cur.cuid = c.text()
	case "MapItem":
		c.items = append(c.items, c.cur)
		c.cur = mapItem{}
	}

	c.command.EndElement(uri, element)
}

func (c *mapCommand) Handle(m *message) error {
	sync := m.state.Sync(c.targetURI)
	if sync == nil {
		m.l.WithField("target", c.targetURI).Error("Map for unknown sync")
		m.out.Status(c.cmdID, c.name, ResponseNotFound, c.targetURI, c.sourceURI)
		return nil
	}

	code := ResponseOK
	for _, item := range c.items {
		err := sync.CreateUidMap(m, c.targetURI, item.cuid, item.suid)
		if err != nil {
			m.l.WithError(err).Error("Could not create map")
			code = ResponseCommandFailed
		}
	}

	m.out.Status(c.cmdID, c.name, code, c.targetURI, c.sourceURI)
	return nil
}

// status is the client's answer to a command the server sent.
type status struct {
	command

	msgRef    string
	cmdRef    int
	cmd       string
	code      int
	targetRef string
	sourceRef string
}

func (c *status) EndElement(uri, element string) {
	switch c.path() {
	case "MsgRef":
		c.msgRef = c.text()
	case "CmdRef":
		c.cmdRef, _ = strconv.Atoi(c.text())
	case "Cmd":
		c.cmd = c.text()
	case "Data":
		c.code, _ = strconv.Atoi(c.text())
	case "TargetRef":
		c.targetRef = c.text()
	case "SourceRef":
		c.sourceRef = c.text()
	}

	c.command.EndElement(uri, element)
}

func statusSuccess(code int) bool {
	return code >= 200 && code < 300
}

func (c *status) Handle(m *message) error {
	if !isSyncElement(c.cmd) {
		return nil
	}

	target, ref, ok := m.state.TakeServerChange(c.msgRef, c.cmdRef)
	if !ok {
		m.l.WithFields(logrus.Fields{"msgRef": c.msgRef, "cmdRef": c.cmdRef}).Debug("Status for unknown server change")
		return nil
	}

	l := m.l.WithFields(logrus.Fields{"cmd": c.cmd, "code": c.code, "suid": ref.SUID, "db": target})
	switch {
	case statusSuccess(c.code):
		l.Debug("Client accepted server change")
	case c.cmd == "Replace" && (c.code == ResponseNotFound || c.code == ResponseGone):
		// The client lost the entry, send it again.
		sync := m.state.Sync(target)
		if sync != nil {
			l.Info("Client does not know replaced entry, adding it again")
			sync.SetServerChange(changeAdd, ref.SUID, "")
		}
	case c.cmd == "Delete" && c.code == ResponseItemNotDeleted:
		l.Debug("Client did not have deleted entry")
	default:
		l.Warn("Client rejected server change")
	}
	return nil
}

type final struct {
	command
}

func (c *final) Handle(m *message) error {
	m.gotFinal = true
	m.state.HandleFinal(m)
	return nil
}

type get struct {
	command

	targetURI string
}

func (c *get) EndElement(uri, element string) {
	if c.path() == "Item/Target/LocURI" {
		c.targetURI = c.text()
	}

	c.command.EndElement(uri, element)
}

func isDevInfURI(uri string) bool {
	return strings.Contains(strings.ToLower(uri), "devinf")
}

func (c *get) Handle(m *message) error {
	if !isDevInfURI(c.targetURI) {
		m.out.Status(c.cmdID, c.name, ResponseNotFound, c.targetURI, "")
		return nil
	}

	m.out.Status(c.cmdID, c.name, ResponseOK, c.targetURI, "")
	m.out.DevInf(c.cmdID)
	return nil
}

// devInfCommand is a Put or Results with the client's device
// information.
type devInfCommand struct {
	command

	sourceURI string
	parser    *devinf.Parser
	elements  int
	escaped   strings.Builder
}

func newDevInfCommand(base command) *devInfCommand {
	return &devInfCommand{command: base, parser: devinf.NewParser()}
}

func (c *devInfCommand) inData() bool {
	return len(c.stack) > 3 && c.stack[1] == "Item" && c.stack[2] == "Data"
}

func (c *devInfCommand) StartElement(uri, element string) {
	c.command.StartElement(uri, element)
	if c.inData() {
		c.elements++
		c.parser.StartElement(uri, element)
	}
}

func (c *devInfCommand) Characters(chars string) {
	c.command.Characters(chars)
	if c.inData() {
		c.parser.Characters(chars)
	} else if c.path() == "Item/Data" {
		c.escaped.WriteString(chars)
	}
}

func (c *devInfCommand) EndElement(uri, element string) {
	if c.inData() {
		c.parser.EndElement(uri, element)
	}

	switch c.path() {
	case "Item/Source/LocURI":
		c.sourceURI = c.text()
	case "Item/Data":
		// Some clients send the document as escaped text.
		raw := strings.TrimSpace(c.escaped.String())
		if c.elements == 0 && raw != "" {
			err := parseXML(strings.NewReader(raw), c.parser, nil)
			if err != nil {
				log.Logger(log.LOG_SYNCML).WithError(err).Warn("Could not parse device information")
			}
		}
	}

	c.command.EndElement(uri, element)
}

func (c *devInfCommand) Handle(m *message) error {
	di := c.parser.DeviceInfo()
	if !di.Empty() {
		m.state.DeviceInfo = di
		m.logDevInf(di)
		m.l.WithFields(logrus.Fields{
			"man":    di.Man,
			"mod":    di.Mod,
			"devID":  di.DevID,
			"driver": m.state.Device().Name(),
		}).Debug("Received device information")
	}

	m.out.Status(c.cmdID, c.name, ResponseOK, "", c.sourceURI)
	return nil
}

// unsupported answers SyncML commands the server does not implement.
type unsupported struct {
	command
}

func (c *unsupported) Handle(m *message) error {
	m.l.WithField("cmd", c.name).Warn("Unsupported command")
	m.out.Status(c.cmdID, c.name, ResponseOptionalFeatureNotSupported, "", "")
	return nil
}
