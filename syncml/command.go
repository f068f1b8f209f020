// SPDX-License-Identifier: GPL-3.0-or-later
package syncml

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var ErrUnknownCommand = errors.New("unknown command")

// Command is a SyncML command of the message body. It receives the element
// events from its own element down and is handled once its element ends.
type Command interface {
	Name() string
	CmdID() int
	StartElement(uri, element string)
	EndElement(uri, element string)
	Characters(chars string)
	Handle(m *message) error
}

// command collects the element stack and character data of a command.
// stack[0] is the command element itself.
type command struct {
	name  string
	cmdID int
	stack []string
	chars strings.Builder
}

func (c *command) Name() string {
	return c.name
}

func (c *command) CmdID() int {
	return c.cmdID
}

func (c *command) StartElement(uri, element string) {
	c.stack = append(c.stack, element)
	c.chars.Reset()
}

// EndElement pops the stack. Commands read path() and text() before
// calling it.
func (c *command) EndElement(uri, element string) {
	if len(c.stack) == 2 && element == "CmdID" {
		c.cmdID, _ = strconv.Atoi(c.text())
	}
	if len(c.stack) > 0 {
		c.stack = c.stack[:len(c.stack)-1]
	}
	c.chars.Reset()
}

func (c *command) Characters(chars string) {
	c.chars.WriteString(chars)
}

// path is the position below the command element, e.g. Item/Source/LocURI.
func (c *command) path() string {
	if len(c.stack) < 2 {
		return ""
	}
	return strings.Join(c.stack[1:], "/")
}

func (c *command) text() string {
	return strings.TrimSpace(c.chars.String())
}

func (c *command) rawText() string {
	return c.chars.String()
}

func (c *command) depth() int {
	return len(c.stack)
}

func newCommand(element string) (Command, error) {
	base := command{name: element}

	switch element {
	case "Alert":
		return &alert{command: base}, nil
	case "Sync":
		return &syncCommand{command: base}, nil
	case "Map":
		return &mapCommand{command: base}, nil
	case "Status":
		return &status{command: base}, nil
	case "Final":
		return &final{command: base}, nil
	case "Put", "Results":
		return newDevInfCommand(base), nil
	case "Get":
		return &get{command: base}, nil
	case "Atomic", "Copy", "Exec", "Search", "Sequence", "Move":
		return &unsupported{command: base}, nil
	}

	return nil, fmt.Errorf("%w: %s", ErrUnknownCommand, element)
}

// syncHdr is the message header. It is not a command of the body but is
// parsed the same way.
type syncHdr struct {
	command

	verDTD     string
	sessionID  string
	msgID      string
	targetURI  string
	sourceURI  string
	locName    string
	respURI    string
	credData   string
	credFormat string
	credType   string
	maxMsgSize int
	maxObjSize int
}

func (h *syncHdr) EndElement(uri, element string) {
	switch h.path() {
	case "VerDTD":
		h.verDTD = h.text()
	case "SessionID":
		h.sessionID = h.text()
	case "MsgID":
		h.msgID = h.text()
	case "Target/LocURI":
		h.targetURI = h.text()
	case "Source/LocURI":
		h.sourceURI = h.text()
	case "Source/LocName":
		h.locName = h.text()
	case "RespURI":
		h.respURI = h.text()
	case "Cred/Data":
		h.credData = h.text()
	case "Cred/Meta/Format":
		h.credFormat = h.text()
	case "Cred/Meta/Type":
		h.credType = h.text()
	case "Meta/MaxMsgSize":
		h.maxMsgSize, _ = strconv.Atoi(h.text())
	case "Meta/MaxObjSize":
		h.maxObjSize, _ = strconv.Atoi(h.text())
	}

	h.command.EndElement(uri, element)
}
