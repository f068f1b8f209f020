// SPDX-License-Identifier: GPL-3.0-or-later
package syncml

import (
	"bytes"
	"context"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"strings"
	"sync"

	"github.com/CrawX/go-syncml/domain"
	"github.com/CrawX/go-syncml/log"
	"github.com/CrawX/go-syncml/wbxml"
	"github.com/sirupsen/logrus"
)

const xmlHeader = `<?xml version="1.0" encoding="UTF-8"?>`

// Response is the answer to one client message.
type Response struct {
	Body          []byte
	ContentType   string
	SessionClosed bool
}

// Engine answers SyncML messages. Messages of different sessions are
// handled concurrently, messages of one session one after another.
type Engine struct {
	backend  domain.Backend
	sessions domain.SessionStore

	config configuration
	locks  *sessionLocks

	l *logrus.Logger
}

func NewEngine(backend domain.Backend, sessions domain.SessionStore, configFunc ...ConfigFunc) (*Engine, error) {
	config := defaultConfiguration()
	for _, f := range configFunc {
		err := f(&config)
		if err != nil {
			return nil, fmt.Errorf("error applying configuration: %w", err)
		}
	}

	return &Engine{
		backend:  backend,
		sessions: sessions,
		config:   config,
		locks:    newSessionLocks(),
		l:        log.Logger(log.LOG_SYNCML),
	}, nil
}

// IsWBXML reports whether a content type is the binary SyncML flavor.
func IsWBXML(contentType string) bool {
	return strings.Contains(strings.ToLower(contentType), "wbxml")
}

// Process handles a client message and returns the server's answer.
// respURI is sent to the client as the address for its next message.
func (e *Engine) Process(ctx context.Context, body []byte, contentType, respURI string) (*Response, error) {
	isWBXML := IsWBXML(contentType)

	err := e.config.Packets.Log(log.PacketClient, body, isWBXML, false)
	if err != nil {
		e.l.WithError(err).Warn("Could not log client packet")
	}

	h := newContentHandler(ctx, e, isWBXML, respURI)
	defer h.release()

	if isWBXML {
		_, err = wbxml.Decode(body, h)
	} else {
		err = parseXML(bytes.NewReader(body), h, &h.charset)
	}
	if err == nil {
		err = h.err
	}
	if err != nil {
		return nil, fmt.Errorf("could not process message: %w", err)
	}
	if h.m == nil {
		return nil, ErrNoHeader
	}

	out, err := h.m.out.Bytes()
	if err != nil {
		return nil, fmt.Errorf("could not create response: %w", err)
	}

	resp := &Response{
		ContentType:   MimeSyncMLXML,
		SessionClosed: h.closed,
	}
	if isWBXML {
		resp.ContentType = MimeSyncMLWBXML
		resp.Body = out
	} else {
		resp.Body = append([]byte(xmlHeader), out...)
	}

	err = e.config.Packets.Log(log.PacketServer, resp.Body, isWBXML, h.closed)
	if err != nil {
		e.l.WithError(err).Warn("Could not log server packet")
	}

	return resp, nil
}

// sessionKey identifies a session across messages. Session ids are only
// unique per device.
func sessionKey(sourceURI, sessionID string) string {
	sum := md5.Sum([]byte(sourceURI + sessionID))
	return hex.EncodeToString(sum[:])
}

func (e *Engine) loadState(ctx context.Context, key string) (*State, error) {
	data, err := e.sessions.LoadSession(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("could not load session: %w", err)
	}
	if data == nil {
		return nil, nil
	}

	state := &State{}
	err = state.UnmarshalBinary(data)
	if err != nil {
		// A session that cannot be read is started over.
		e.l.WithError(err).Warn("Discarding unreadable session")
		return nil, nil
	}
	return state, nil
}

func (e *Engine) saveState(ctx context.Context, key string, state *State) error {
	data, err := state.MarshalBinary()
	if err != nil {
		return err
	}

	err = e.sessions.SaveSession(ctx, key, data)
	if err != nil {
		return fmt.Errorf("could not save session: %w", err)
	}
	return nil
}

func (e *Engine) deleteState(ctx context.Context, key string) error {
	err := e.sessions.DeleteSession(ctx, key)
	if err != nil {
		return fmt.Errorf("could not delete session: %w", err)
	}
	return nil
}

type sessionLock struct {
	sync.Mutex
	refs int
}

// sessionLocks hands out one mutex per session key.
type sessionLocks struct {
	mu    sync.Mutex
	locks map[string]*sessionLock
}

func newSessionLocks() *sessionLocks {
	return &sessionLocks{locks: map[string]*sessionLock{}}
}

// lock blocks until the session is free and returns the unlock function.
func (s *sessionLocks) lock(key string) func() {
	s.mu.Lock()
	l, ok := s.locks[key]
	if !ok {
		l = &sessionLock{}
		s.locks[key] = l
	}
	l.refs++
	s.mu.Unlock()

	l.Lock()
	return func() {
		l.Unlock()

		s.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(s.locks, key)
		}
		s.mu.Unlock()
	}
}
