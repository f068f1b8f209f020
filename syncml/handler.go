// SPDX-License-Identifier: GPL-3.0-or-later
package syncml

import (
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/CrawX/go-syncml/devinf"
	"github.com/CrawX/go-syncml/domain"
	"github.com/CrawX/go-syncml/log"
	"github.com/CrawX/go-syncml/wbxml"
	"github.com/emersion/go-message/charset"
	"github.com/sirupsen/logrus"
)

var ErrNoHeader = errors.New("message has no SyncHdr")

// message is everything needed while handling one client message.
type message struct {
	ctx     context.Context
	backend domain.Backend
	state   *State
	out     *Output
	l       *logrus.Logger
	packets *log.PacketLogger
	metrics Metrics

	// full is set once no more server changes fit into the message.
	full           bool
	expectResponse bool
	gotFinal       bool
}

func (m *message) logData(data string) {
	err := m.packets.Log(log.PacketData, []byte(data), false, false)
	if err != nil {
		m.l.WithError(err).Warn("Could not write data log")
	}
}

func (m *message) logDevInf(di *devinf.DeviceInfo) {
	var b strings.Builder
	fmt.Fprintf(&b, "Received device information:\n%+v\n", *di)
	for _, ds := range di.DataStores {
		fmt.Fprintf(&b, "DataStore: %+v\n", ds)
	}
	err := m.packets.Log(log.PacketDevInf, []byte(b.String()), false, false)
	if err != nil {
		m.l.WithError(err).Warn("Could not write device information log")
	}
}

// contentHandler turns the element events of a client message into
// commands and builds the answer.
//
// The SyncHdr element is at depth 2, commands at depth 3 below SyncBody.
type contentHandler struct {
	ctx     context.Context
	engine  *Engine
	wbxml   bool
	respURI string
	charset string

	stack  []string
	header *syncHdr
	cmd    Command
	m      *message
	err    error

	sessionKey string
	unlock     func()
	closed     bool
}

func newContentHandler(ctx context.Context, engine *Engine, isWBXML bool, respURI string) *contentHandler {
	return &contentHandler{
		ctx:     ctx,
		engine:  engine,
		wbxml:   isWBXML,
		respURI: respURI,
		charset: "UTF-8",
	}
}

// release frees the session lock taken while handling the header.
func (h *contentHandler) release() {
	if h.unlock != nil {
		h.unlock()
		h.unlock = nil
	}
}

func (h *contentHandler) inHeader() bool {
	return len(h.stack) >= 2 && h.stack[1] == "SyncHdr"
}

func (h *contentHandler) inCommand() bool {
	return len(h.stack) >= 3 && h.stack[1] == "SyncBody" && h.cmd != nil
}

func (h *contentHandler) StartElement(uri, element string) {
	if h.err != nil {
		return
	}
	h.stack = append(h.stack, element)

	switch {
	case len(h.stack) == 2 && element == "SyncHdr":
		h.header = &syncHdr{command: command{name: element}}
		h.header.StartElement(uri, element)
	case h.inHeader():
		h.header.StartElement(uri, element)
	case len(h.stack) == 3 && h.stack[1] == "SyncBody":
		if h.m == nil {
			h.err = ErrNoHeader
			return
		}
		h.cmd, h.err = newCommand(element)
		if h.err != nil {
			h.m.l.WithError(h.err).Error("Could not handle command")
			return
		}
		h.cmd.StartElement(uri, element)
	case h.inCommand():
		h.cmd.StartElement(uri, element)
	}
}

func (h *contentHandler) Characters(chars string) {
	if h.err != nil {
		return
	}

	switch {
	case h.inHeader():
		h.header.Characters(chars)
	case h.inCommand():
		h.cmd.Characters(chars)
	}
}

func (h *contentHandler) EndElement(uri, element string) {
	if h.err != nil || len(h.stack) == 0 {
		return
	}

	switch {
	case h.inHeader():
		h.header.EndElement(uri, element)
		if len(h.stack) == 2 {
			h.err = h.handleHeader()
		}
	case h.inCommand():
		h.cmd.EndElement(uri, element)
		if len(h.stack) == 3 {
			h.err = h.handleCommand()
			h.cmd = nil
		}
	case len(h.stack) == 2 && element == "SyncBody":
		h.err = h.handleEnd()
	}

	h.stack = h.stack[:len(h.stack)-1]
}

// handleHeader loads the session and authenticates the client. The
// session stays locked until the message is answered.
func (h *contentHandler) handleHeader() error {
	e := h.engine
	hdr := h.header

	h.sessionKey = sessionKey(hdr.sourceURI, hdr.sessionID)
	h.unlock = e.locks.lock(h.sessionKey)

	state, err := e.loadState(h.ctx, h.sessionKey)
	if err != nil {
		return err
	}
	if state == nil {
		state = NewState(hdr.sessionID, hdr.sourceURI)
	}

	state.SetVersion(hdr.verDTD)
	state.MessageID = hdr.msgID
	state.TargetURI = hdr.targetURI
	state.SourceURI = hdr.sourceURI
	state.WBXML = h.wbxml
	state.Charset = h.charset
	state.MaxMsgSize = e.config.MaxMsgSize
	if hdr.maxMsgSize > 0 && hdr.maxMsgSize < state.MaxMsgSize {
		state.MaxMsgSize = hdr.maxMsgSize
	}
	state.MaxObjSize = e.config.MaxObjSize
	if hdr.maxObjSize > 0 && hdr.maxObjSize < state.MaxObjSize {
		state.MaxObjSize = hdr.maxObjSize
	}

	var w ContentWriter = newXMLWriter()
	if h.wbxml {
		w = newWBXMLWriter(state.Version)
	}

	out := NewOutput(w, state, e.config.ServerName)
	out.SetLimits(e.config.MaxMsgSize, e.config.MaxObjSize)

	m := &message{
		ctx:     h.ctx,
		backend: e.backend,
		state:   state,
		out:     out,
		l:       e.l,
		packets: e.config.Packets,
		metrics: e.config.Metrics,
	}
	h.m = m

	code := ResponseOK
	if !state.Authenticated {
		code, err = h.authenticate(state)
		if err != nil {
			return err
		}
	}

	m.out.Init()
	m.out.Header(h.respURI)
	m.out.BodyStart()
	m.out.Status(0, "SyncHdr", code, hdr.targetURI, hdr.sourceURI)

	m.l.WithFields(logrus.Fields{
		"authenticated": state.Authenticated,
		"version":       state.VerDTD(),
		"msgID":         state.MessageID,
		"source":        state.SourceURI,
		"target":        state.TargetURI,
		"user":          state.User,
		"charset":       state.Charset,
		"wbxml":         state.WBXML,
	}).Debug("SyncML message header")

	return nil
}

func (h *contentHandler) authenticate(state *State) (int, error) {
	hdr := h.header
	if hdr.credData == "" {
		return ResponseCredentialsMissing, nil
	}

	credType := hdr.credType
	if credType == "" {
		credType = AuthTypeBasic
	}
	user, ok, err := h.engine.backend.CheckAuthentication(h.ctx, domain.Credentials{
		User:   hdr.locName,
		Data:   hdr.credData,
		Format: hdr.credFormat,
		Type:   credType,
	})
	if err != nil {
		return 0, fmt.Errorf("could not check authentication: %w", err)
	}
	if !ok {
		h.engine.l.WithField("source", hdr.sourceURI).Warn("Authentication failed")
		return ResponseInvalidCredentials, nil
	}

	state.Authenticated = true
	state.User = user
	return ResponseAuthenticationAccepted, nil
}

func requiresAuthentication(command string) bool {
	return command == "Alert" || command == "Sync" || command == "Map"
}

func (h *contentHandler) handleCommand() error {
	m := h.m
	cmd := h.cmd
	name := cmd.Name()

	switch name {
	case "Status", "Map", "Final", "Sync", "Results":
	default:
		m.expectResponse = true
	}
	m.metrics.CommandHandled(name)

	if !m.state.Authenticated && requiresAuthentication(name) {
		m.l.WithField("cmd", name).Warn("Command requires authentication")
		m.out.Status(cmd.CmdID(), name, ResponseInvalidCredentials, "", "")
		return nil
	}

	err := cmd.Handle(m)
	if err != nil {
		return fmt.Errorf("could not handle %s: %w", name, err)
	}
	return nil
}

// handleEnd continues pending server changes, finishes the message and
// closes or saves the session.
func (h *contentHandler) handleEnd() error {
	m := h.m
	st := m.state

	if m.full || st.HasPendingSyncs() {
		m.expectResponse = true
	}

	if !m.full {
		for _, target := range st.PendingSyncs() {
			st.Sync(target).CreateSyncOutput(m)
			if m.full {
				break
			}
		}
	}

	if st.CurSyncItem != nil {
		sync := st.Sync(st.CurSyncItem.Target)
		if sync != nil {
			m.out.Alert(AlertNextMessage, sync.ClientLocURI(), sync.ServerLocURI(), sync.ServerAnchorLast(), sync.ServerAnchorNext())
			m.expectResponse = true
		}
	}

	finalAllowed := !m.full && !st.HasPendingSyncs()
	if m.gotFinal || st.DelayedFinal {
		if finalAllowed {
			m.out.Final()
			st.DelayedFinal = false
		} else {
			m.expectResponse = true
			st.DelayedFinal = true
		}
	}

	m.out.End()

	if m.gotFinal && !m.expectResponse && st.IsAllSyncsComplete() {
		for _, sync := range st.Syncs() {
			err := sync.CloseSync(m)
			if err != nil {
				return err
			}
			m.metrics.SyncCompleted(m.backend.Normalize(sync.ServerLocURI()), sync.SyncType())
		}

		m.l.WithField("source", st.SourceURI).Debug("Closing session")
		h.closed = true
		return h.engine.deleteState(h.ctx, h.sessionKey)
	}

	return h.engine.saveState(h.ctx, h.sessionKey, st)
}

var xmlEncoding = regexp.MustCompile(`encoding=["']([^"']+)["']`)

// parseXML feeds the elements of an XML document to handler. The charset
// of the XML declaration is stored in enc.
func parseXML(r io.Reader, handler wbxml.Handler, enc *string) error {
	d := xml.NewDecoder(r)
	d.CharsetReader = charset.Reader

	for {
		tok, err := d.Token()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("could not parse XML: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			handler.StartElement(t.Name.Space, t.Name.Local)
		case xml.EndElement:
			handler.EndElement(t.Name.Space, t.Name.Local)
		case xml.CharData:
			handler.Characters(string(t))
		case xml.ProcInst:
			if t.Target == "xml" && enc != nil {
				match := xmlEncoding.FindSubmatch(t.Inst)
				if match != nil {
					*enc = strings.ToUpper(string(match[1]))
				}
			}
		}
	}
}
