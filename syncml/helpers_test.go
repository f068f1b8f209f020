// SPDX-License-Identifier: GPL-3.0-or-later
package syncml

import (
	"context"
	"io/ioutil"
	"strings"
	"sync"
	"testing"

	"github.com/CrawX/go-syncml/domain"
	"github.com/CrawX/go-syncml/domain/mocks"
	"github.com/golang/mock/gomock"
	"github.com/sirupsen/logrus"
)

var testPartner = domain.Partner{User: "alice", DeviceID: "IMEI:1234"}

func nullLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(ioutil.Discard)
	return logger
}

// memSessions is a SessionStore kept in memory.
type memSessions struct {
	mu       sync.Mutex
	sessions map[string][]byte
}

func newMemSessions() *memSessions {
	return &memSessions{sessions: map[string][]byte{}}
}

func (s *memSessions) LoadSession(ctx context.Context, id string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sessions[id], nil
}

func (s *memSessions) SaveSession(ctx context.Context, id string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[id] = data
	return nil
}

func (s *memSessions) DeleteSession(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
	return nil
}

func (s *memSessions) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// normalize mirrors the backend's database names for the databases used in
// tests.
func normalize(uri string) string {
	uri = strings.TrimPrefix(uri, "./")
	if i := strings.IndexByte(uri, '?'); i >= 0 {
		uri = uri[:i]
	}
	switch uri {
	case "card", "contact":
		return "contacts"
	case "cal", "event":
		return "calendar"
	}
	return uri
}

// expectBackendBasics allows the calls every message may make.
func expectBackendBasics(backend *mocks.MockBackend) {
	backend.EXPECT().Normalize(gomock.Any()).DoAndReturn(normalize).AnyTimes()
	backend.EXPECT().IsValidDatabaseURI(gomock.Any()).DoAndReturn(func(uri string) bool {
		switch normalize(uri) {
		case "contacts", "calendar", "notes", "tasks", "configuration":
			return true
		}
		return false
	}).AnyTimes()
	backend.EXPECT().CurrentTimestamp().Return(int64(1600000000)).AnyTimes()
}

// newTestMessage creates a message for an authenticated session writing
// plain XML.
func newTestMessage(t *testing.T, backend domain.Backend) *message {
	state := NewState("1", "IMEI:1234")
	state.User = "alice"
	state.Authenticated = true
	state.MessageID = "2"
	state.Version = Version11

	out := NewOutput(newXMLWriter(), state, Manufacturer)
	out.Init()
	out.Header("")
	out.BodyStart()

	return &message{
		ctx:     context.Background(),
		backend: backend,
		state:   state,
		out:     out,
		l:       nullLogger(),
		metrics: noopMetrics{},
	}
}

// finish closes the message and returns the XML written so far.
func finish(t *testing.T, m *message) string {
	m.out.End()
	data, err := m.out.Bytes()
	if err != nil {
		t.Fatalf("could not create output: %v", err)
	}
	return string(data)
}
