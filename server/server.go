// SPDX-License-Identifier: GPL-3.0-or-later
package server

import (
	"context"
	"errors"
	"fmt"
	"io/ioutil"
	"mime"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/CrawX/go-syncml/log"
	"github.com/CrawX/go-syncml/syncml"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

// Processor answers SyncML messages, usually a *syncml.Engine.
type Processor interface {
	Process(ctx context.Context, body []byte, contentType, respURI string) (*syncml.Response, error)
}

// SessionExpirer drops sessions not used since before.
type SessionExpirer interface {
	ExpireSessions(ctx context.Context, before time.Time) (int64, error)
}

type Server struct {
	engine   Processor
	sessions SessionExpirer
	metrics  *Metrics
	config   configuration

	httpServer *http.Server
	cancel     context.CancelFunc
	wg         sync.WaitGroup

	l *logrus.Logger
}

func NewServer(engine Processor, sessions SessionExpirer, metrics *Metrics, configFunc ...ConfigFunc) (*Server, error) {
	config := defaultConfiguration()
	for _, cf := range configFunc {
		err := cf(&config)
		if err != nil {
			return nil, fmt.Errorf("error applying configuration: %w", err)
		}
	}

	if metrics == nil {
		metrics = NewMetrics()
	}

	return &Server{
		engine:   engine,
		sessions: sessions,
		metrics:  metrics,
		config:   config,
		l:        log.Logger(log.LOG_SERVER),
	}, nil
}

// Handler routes SyncML messages and metrics.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc(s.config.Path, s.handleSyncML)
	if len(s.config.MetricsPath) > 0 {
		mux.Handle(s.config.MetricsPath, promhttp.HandlerFor(s.metrics.registry, promhttp.HandlerOpts{}))
	}
	return mux
}

// Start listens on addr and serves until Stop is called. Idle sessions are
// expired in the background.
func (s *Server) Start(addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("could not listen on %s: %w", addr, err)
	}

	s.httpServer = &http.Server{
		Handler:      s.Handler(),
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 60 * time.Second,
	}

	var ctx context.Context
	ctx, s.cancel = context.WithCancel(context.Background())

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.ExpireSessions(ctx, s.expiryInterval())
	}()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.l.WithFields(logrus.Fields{"listen": ln.Addr().String(), "path": s.config.Path}).Info("Serving SyncML")
		err := s.httpServer.Serve(ln)
		if err != nil && err != http.ErrServerClosed {
			s.l.WithError(err).Error("Server failed")
		}
	}()

	return nil
}

// Stop shuts the server down gracefully, waiting for running requests.
func (s *Server) Stop(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}

	s.cancel()
	err := s.httpServer.Shutdown(ctx)
	if err != nil {
		return fmt.Errorf("could not shut down server: %w", err)
	}

	s.wg.Wait()
	s.l.Info("Server stopped")
	return nil
}

const minExpiryInterval = time.Second

// expiryInterval checks for idle sessions twice per timeout, at most once a
// second.
func (s *Server) expiryInterval() time.Duration {
	interval := s.config.SessionTimeout / 2
	if interval < minExpiryInterval {
		return minExpiryInterval
	}
	return interval
}

// ExpireSessions deletes idle sessions every interval until ctx is done.
func (s *Server) ExpireSessions(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.expire(ctx)
		}
	}
}

func (s *Server) expire(ctx context.Context) {
	n, err := s.sessions.ExpireSessions(ctx, time.Now().Add(-s.config.SessionTimeout))
	if err != nil {
		s.l.WithError(err).Warn("Could not expire sessions")
		return
	}

	if n > 0 {
		s.l.WithField("count", n).Info("Expired idle sessions")
		s.metrics.expiredSessions.Add(float64(n))
	}
}

func flavor(mediaType string) string {
	switch mediaType {
	case syncml.MimeSyncMLXML:
		return "xml"
	case syncml.MimeSyncMLWBXML:
		return "wbxml"
	}
	return "none"
}

func (s *Server) respURI(r *http.Request) string {
	if len(s.config.PublicURL) > 0 {
		return s.config.PublicURL
	}

	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	return scheme + "://" + r.Host + r.URL.Path
}

func (s *Server) handleSyncML(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	l := s.l.WithField("remote", r.RemoteAddr)

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	f := flavor(mediaType)

	respond := func(code int, msg string) {
		s.metrics.requests.WithLabelValues(strconv.Itoa(code), f).Inc()
		http.Error(w, msg, code)
	}

	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		respond(http.StatusMethodNotAllowed, "SyncML messages must be POSTed")
		return
	}

	if f == "none" {
		l.WithField("contenttype", r.Header.Get("Content-Type")).Warn("Unsupported content type")
		respond(http.StatusUnsupportedMediaType, fmt.Sprintf("content type must be %s or %s", syncml.MimeSyncMLXML, syncml.MimeSyncMLWBXML))
		return
	}

	body, err := ioutil.ReadAll(http.MaxBytesReader(w, r.Body, s.config.MaxBodySize))
	if err != nil {
		l.WithError(err).Warn("Could not read request")
		respond(http.StatusRequestEntityTooLarge, "could not read message")
		return
	}

	resp, err := s.engine.Process(r.Context(), body, mediaType, s.respURI(r))
	if err != nil {
		l.WithError(err).Error("Could not process message")
		if errors.Is(err, syncml.ErrNoHeader) || errors.Is(err, syncml.ErrUnknownCommand) {
			respond(http.StatusBadRequest, "invalid SyncML message")
		} else {
			respond(http.StatusInternalServerError, "could not process message")
		}
		return
	}

	w.Header().Set("Content-Type", resp.ContentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(resp.Body)))
	w.WriteHeader(http.StatusOK)
	_, err = w.Write(resp.Body)
	if err != nil {
		l.WithError(err).Warn("Could not write response")
	}

	s.metrics.requests.WithLabelValues(strconv.Itoa(http.StatusOK), f).Inc()
	s.metrics.requestDuration.WithLabelValues(f).Observe(time.Since(start).Seconds())
	l.WithFields(logrus.Fields{"bytes": len(resp.Body), "closed": resp.SessionClosed}).Debug("Answered message")
}
