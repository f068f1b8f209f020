// SPDX-License-Identifier: GPL-3.0-or-later
package syncml

import (
	"encoding/base64"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/CrawX/go-syncml/domain"
	"github.com/sirupsen/logrus"
)

type SyncState int

const (
	StateInit SyncState = iota
	StateSync
	StateMap
	StateCompleted
)

func (s SyncState) String() string {
	switch s {
	case StateInit:
		return "Init"
	case StateSync:
		return "Sync"
	case StateMap:
		return "Map"
	case StateCompleted:
		return "Completed"
	}
	return "Unknown"
}

// SyncItem is an Add, Replace or Delete received from the client.
type SyncItem struct {
	ElementType   string `cbor:"1,keyasint"`
	CmdID         int    `cbor:"2,keyasint"`
	CUID          string `cbor:"3,keyasint,omitempty"`
	SUID          string `cbor:"4,keyasint,omitempty"`
	Content       string `cbor:"5,keyasint,omitempty"`
	ContentType   string `cbor:"6,keyasint,omitempty"`
	ContentFormat string `cbor:"7,keyasint,omitempty"`
	Size          int    `cbor:"8,keyasint,omitempty"`
	MoreData      bool   `cbor:"9,keyasint,omitempty"`
	// Target is the server database of the Sync carrying the item.
	Target       string `cbor:"10,keyasint,omitempty"`
	ResponseCode int    `cbor:"11,keyasint,omitempty"`
}

const (
	changeAdd     = "add"
	changeReplace = "replace"
	changeDelete  = "delete"
)

// Sync tracks the synchronization of one database within a session.
type Sync struct {
	syncType         int
	serverURI        string
	clientURI        string
	syncsSent        int
	syncsReceived    int
	expectingMapData bool
	mapReceived      bool
	state            SyncState

	clientAnchorNext string
	serverAnchorLast int64
	serverAnchorNext int64

	clientAdds         int
	clientReplaces     int
	clientDeletes      int
	clientAddReplaces  int
	serverAddCount     int
	serverReplaceCount int
	serverDeleteCount  int
	errors             int

	// Server changes still to be sent. They are compiled when the first
	// Sync is sent to the client.
	compiled       bool
	serverAdds     []domain.Change
	serverReplaces []domain.Change
	serverDeletes  []domain.Change
	// taskSUIDs are entries of the tasks database sent through the
	// calendar.
	taskSUIDs map[string]bool
}

func NewSync(syncType int, serverURI, clientURI string, serverAnchorLast, serverAnchorNext int64, clientAnchorNext string) *Sync {
	return &Sync{
		syncType:         syncType,
		serverURI:        serverURI,
		clientURI:        clientURI,
		serverAnchorLast: serverAnchorLast,
		serverAnchorNext: serverAnchorNext,
		clientAnchorNext: clientAnchorNext,
		taskSUIDs:        map[string]bool{},
	}
}

func (s *Sync) SyncType() int {
	return s.syncType
}

func (s *Sync) State() SyncState {
	return s.state
}

func (s *Sync) ServerLocURI() string {
	return s.serverURI
}

func (s *Sync) ClientLocURI() string {
	return s.clientURI
}

func (s *Sync) ClientAnchorNext() string {
	return s.clientAnchorNext
}

func (s *Sync) ServerAnchorLast() string {
	return strconv.FormatInt(s.serverAnchorLast, 10)
}

func (s *Sync) ServerAnchorNext() string {
	return strconv.FormatInt(s.serverAnchorNext, 10)
}

func (s *Sync) AddSyncReceived() {
	s.syncsReceived++
}

// readOnly syncs only send server data to the client.
func (s *Sync) readOnly() bool {
	return s.syncType == AlertOneWayFromServer || s.syncType == AlertRefreshFromServer
}

// serverToClient is false for syncs that only take data from the client.
func (s *Sync) serverToClient() bool {
	return s.syncType != AlertOneWayFromClient && s.syncType != AlertRefreshFromClient
}

var vtodo = regexp.MustCompile(`(\r\n|\r|\n)BEGIN[^:]*:VTODO`)

func taskToCalendar(database string) string {
	return strings.Replace(database, "calendar", "tasks", 1)
}

// HandleClientSyncItem applies a client change to the backend and sets the
// item's response code. It returns the server id of added or replaced
// entries.
func (s *Sync) HandleClientSyncItem(m *message, item *SyncItem) string {
	l := m.l.WithFields(logrus.Fields{"db": s.serverURI, "cmd": item.ElementType, "cuid": item.CUID})
	l.Debug("Handling item sent from client")

	if s.readOnly() {
		item.ResponseCode = ResponseCommandNotAllowed
		s.errors++
		l.Warn("Client change in one-way-from-server sync rejected")
		return ""
	}

	content := item.Content
	if item.Size > 0 && len(content) != item.Size && len(content)+1 != item.Size {
		// Some clients count a trailing null byte.
		item.ResponseCode = ResponseSizeMismatch
		s.errors++
		l.WithFields(logrus.Fields{"reported": item.Size, "actual": len(content)}).Error("Item size mismatch")
		return ""
	}

	if item.ContentFormat == FormatBase64 {
		decoded, err := base64.StdEncoding.DecodeString(strings.TrimSpace(content))
		if err != nil {
			item.ResponseCode = ResponseBadRequest
			s.errors++
			l.WithError(err).Error("Could not decode base64 item")
			return ""
		}
		content = string(decoded)
	}

	driver := m.state.Device()
	partner := m.state.Partner()
	database := s.serverURI
	normalized := m.backend.Normalize(database)
	serverDB := database

	tasksInCalendar := false
	if (item.ContentType == "text/calendar" || item.ContentType == "text/x-vcalendar") &&
		normalized == "calendar" && driver.HandleTasksInCalendar() {
		tasksInCalendar = true
		if vtodo.MatchString("\n" + content) {
			serverDB = taskToCalendar(normalized)
		}
	}

	contentType := item.ContentType
	if contentType == "" {
		contentType = driver.PreferredContentType(m.backend.Normalize(serverDB))
	}

	if item.ElementType != "Delete" {
		var err error
		content, contentType, err = driver.ConvertClient2Server(content, contentType)
		if err != nil {
			item.ResponseCode = ResponseNotExecuted
			s.errors++
			l.WithError(err).Error("Could not convert client content")
			return ""
		}
		m.logData(fmt.Sprintf("\nInput converted for server (%s):\n%s\n", contentType, content))
	}

	entry := &domain.Entry{Content: content, ContentType: contentType}

	switch item.ElementType {
	case "Add":
		suid, err := m.backend.AddEntry(m.ctx, partner, serverDB, entry, item.CUID)
		if err != nil {
			s.errors++
			item.ResponseCode = ResponseNotExecuted
			l.WithError(err).Error("Could not add client entry")
			return ""
		}
		s.clientAdds++
		item.ResponseCode = ResponseItemAdded
		l.WithField("suid", suid).Debug("Added client entry")
		return suid

	case "Delete":
		err := m.backend.DeleteEntry(m.ctx, partner, database, item.CUID)
		if err != nil && tasksInCalendar {
			l.Debug("Retrying deletion in tasks database")
			err = m.backend.DeleteEntry(m.ctx, partner, taskToCalendar(normalized), item.CUID)
		}
		if err != nil {
			s.errors++
			item.ResponseCode = ResponseItemNotDeleted
			l.WithError(err).Debug("Could not delete client entry, it may be gone already")
			return ""
		}
		s.clientDeletes++
		item.ResponseCode = ResponseOK
		l.Debug("Deleted entry due to client request")
		return ""

	case "Replace":
		suid, err := m.backend.ReplaceEntry(m.ctx, partner, serverDB, entry, item.CUID)
		if err == nil {
			s.clientReplaces++
			item.ResponseCode = ResponseOK
			l.WithField("suid", suid).Debug("Replaced entry due to client request")
			return suid
		}

		// The entry may have been deleted on the server meanwhile.
		l.WithError(err).Debug("Could not replace entry, adding it instead")
		suid, err = m.backend.AddEntry(m.ctx, partner, serverDB, entry, item.CUID)
		if err != nil {
			s.errors++
			item.ResponseCode = ResponseNotExecuted
			l.WithError(err).Error("Could not add client entry due to replace request")
			return ""
		}
		s.clientAddReplaces++
		item.ResponseCode = ResponseItemAdded
		l.WithField("suid", suid).Debug("Added instead of replaced entry")
		return suid
	}

	item.ResponseCode = ResponseOptionalFeatureNotSupported
	l.Error("Unexpected element type")
	return ""
}

func (s *Sync) retrieveChanges(m *message, database string) (*domain.Changes, error) {
	if m.backend.Normalize(database) == "configuration" {
		return &domain.Changes{}, nil
	}
	return m.backend.GetServerChanges(m.ctx, m.state.Partner(), database, s.serverAnchorLast, s.serverAnchorNext)
}

// compileChanges collects the server changes since the last sync. For
// clients that keep tasks in the calendar the tasks database is included.
func (s *Sync) compileChanges(m *message) error {
	m.l.WithFields(logrus.Fields{
		"db":   s.serverURI,
		"from": time.Unix(s.serverAnchorLast, 0).Format("2006-01-02 15:04:05"),
		"to":   time.Unix(s.serverAnchorNext, 0).Format("2006-01-02 15:04:05"),
	}).Debug("Compiling server changes")

	changes, err := s.retrieveChanges(m, s.serverURI)
	if err != nil {
		return err
	}
	s.serverAdds = changes.Adds
	s.serverReplaces = changes.Replaces
	s.serverDeletes = changes.Deletes

	if m.backend.Normalize(s.serverURI) == "calendar" && m.state.Device().HandleTasksInCalendar() {
		tasks, err := s.retrieveChanges(m, "tasks")
		if err != nil {
			return err
		}
		for _, c := range tasks.Adds {
			s.taskSUIDs[c.SUID] = true
		}
		for _, c := range tasks.Replaces {
			s.taskSUIDs[c.SUID] = true
		}
		s.serverAdds = append(s.serverAdds, tasks.Adds...)
		s.serverReplaces = append(s.serverReplaces, tasks.Replaces...)
		s.serverDeletes = append(s.serverDeletes, tasks.Deletes...)
	}

	s.compiled = true
	return nil
}

func (s *Sync) spaceLeft(m *message, contentLen int) bool {
	return m.state.MaxMsgSize-m.out.Size()-contentLen >= MsgTrailerLen
}

// messageFull closes the Sync when no more commands fit.
func (s *Sync) messageFull(m *message, during string) {
	m.l.WithFields(logrus.Fields{
		"maxMsgSize": m.state.MaxMsgSize,
		"size":       m.out.Size(),
	}).Debugf("Maximum message size approached during %s", during)
	m.full = true
	m.out.SyncEnd()
	s.syncsSent++
}

func (s *Sync) fetchForClient(m *message, suid, contentType, contentTypeTasks string) (*SyncItemOutput, error) {
	driver := m.state.Device()
	database, ct := s.serverURI, contentType
	if s.taskSUIDs[suid] {
		database, ct = "tasks", contentTypeTasks
	}

	entry, err := m.backend.RetrieveEntry(m.ctx, m.state.Partner(), database, suid, driver.RetrieveContentType(ct, m.backend.Normalize(database)))
	if err != nil {
		return nil, err
	}

	content, clientType, encoding, err := driver.ConvertServer2Client(entry.Content, entry.ContentType, ct, m.backend.Normalize(database))
	if err != nil {
		return nil, err
	}
	return &SyncItemOutput{Content: content, ContentType: clientType, Encoding: encoding, SUID: suid}, nil
}

// CreateSyncOutput sends server changes to the client until the message is
// full. Changes that do not fit stay pending for the next message.
func (s *Sync) CreateSyncOutput(m *message) {
	l := m.l.WithField("db", s.serverURI)
	l.Debug("Creating Sync output for server changes")

	if !s.serverToClient() {
		return
	}
	if s.syncsSent > 0 && !s.HasPendingElements() {
		return
	}

	m.full = false
	driver := m.state.Device()
	di := m.state.DeviceInfo
	normalized := m.backend.Normalize(s.serverURI)
	contentType := driver.PreferredContentTypeClient(di, normalized, s.clientURI)
	contentTypeTasks := driver.PreferredContentTypeClient(di, "tasks", s.clientURI)

	if !s.compiled {
		err := s.compileChanges(m)
		if err != nil {
			l.WithError(err).Error("Could not compile server changes")
			return
		}

		numChanges := len(s.serverAdds) + len(s.serverReplaces) + len(s.serverDeletes)
		l.WithField("count", numChanges).Debug("Sending server changes")
		if di != nil && di.SupportNumberOfChanges {
			m.out.SyncStart(s.clientURI, s.serverURI, numChanges)
		} else {
			m.out.SyncStart(s.clientURI, s.serverURI, -1)
		}
	} else {
		m.out.SyncStart(s.clientURI, s.serverURI, -1)
	}

	// A Sync is answered by a Status at least.
	m.expectResponse = true

	for len(s.serverDeletes) > 0 {
		c := s.serverDeletes[0]
		if !s.spaceLeft(m, 0) {
			s.messageFull(m, "delete")
			return
		}
		l.WithFields(logrus.Fields{"suid": c.SUID, "cuid": c.CUID}).Debug("Sending delete from server")
		cmdID := m.out.SyncCommand("Delete", SyncItemOutput{CUID: c.CUID})
		s.serverDeletes = s.serverDeletes[1:]
		m.state.RecordServerChange(s.serverURI, cmdID, ServerChangeRef{SUID: c.SUID, CUID: c.CUID})
		s.serverDeleteCount++
	}

	for len(s.serverAdds) > 0 {
		c := s.serverAdds[0]
		item, err := s.fetchForClient(m, c.SUID, contentType, contentTypeTasks)
		if err != nil {
			// The entry vanished between compiling and sending.
			l.WithError(err).WithField("suid", c.SUID).Error("Could not retrieve entry")
			s.serverAdds = s.serverAdds[1:]
			continue
		}

		if !s.spaceLeft(m, len(item.Content)) {
			if len(item.Content)+MsgDefaultLen > m.state.MaxMsgSize {
				l.WithField("suid", c.SUID).Warn("Entry does not fit into a single message and will not be sent")
				s.serverAdds = s.serverAdds[1:]
				continue
			}
			s.messageFull(m, "add")
			return
		}

		l.WithField("suid", c.SUID).Debug("Sending add from server")
		cmdID := m.out.SyncCommand("Add", *item)
		s.serverAdds = s.serverAdds[1:]
		m.state.RecordServerChange(s.serverURI, cmdID, ServerChangeRef{SUID: c.SUID})
		s.serverAddCount++
		s.expectingMapData = true
	}

	for len(s.serverReplaces) > 0 {
		c := s.serverReplaces[0]
		item, err := s.fetchForClient(m, c.SUID, contentType, contentTypeTasks)
		if err != nil {
			l.WithError(err).WithField("suid", c.SUID).Error("Could not retrieve entry")
			s.serverReplaces = s.serverReplaces[1:]
			continue
		}

		if !s.spaceLeft(m, len(item.Content)) {
			if len(item.Content)+MsgDefaultLen > m.state.MaxMsgSize {
				l.WithField("suid", c.SUID).Warn("Entry does not fit into a single message and will not be sent")
				s.serverReplaces = s.serverReplaces[1:]
				continue
			}
			s.messageFull(m, "replace")
			return
		}

		l.WithField("suid", c.SUID).Debug("Sending replace from server")
		item.SUID = ""
		item.CUID = c.CUID
		cmdID := m.out.SyncCommand("Replace", *item)
		s.serverReplaces = s.serverReplaces[1:]
		m.state.RecordServerChange(s.serverURI, cmdID, ServerChangeRef{SUID: c.SUID, CUID: c.CUID})
		s.serverReplaceCount++
	}

	m.out.SyncEnd()
	s.syncsSent++
}

// HandleFinal advances the sync at the end of a client package. A sync
// never completes while server changes are pending.
func (s *Sync) HandleFinal(m *message) {
	m.l.WithFields(logrus.Fields{"db": s.serverURI, "state": s.state}).Debug("Handle Final")

	switch s.state {
	case StateInit:
		s.state = StateSync
	case StateSync:
		s.CreateSyncOutput(m)
		if s.HasPendingElements() {
			return
		}
		if !s.serverToClient() || !s.expectingMapData || s.mapReceived {
			s.state = StateCompleted
		} else {
			s.state = StateMap
		}
	case StateMap:
		if !s.HasPendingElements() {
			s.state = StateCompleted
		}
	}
}

// HasPendingElements is false until the server changes are compiled.
func (s *Sync) HasPendingElements() bool {
	if !s.compiled {
		return false
	}
	return len(s.serverAdds)+len(s.serverReplaces)+len(s.serverDeletes) > 0
}

func (s *Sync) IsComplete() bool {
	return s.state == StateCompleted
}

// CloseSync persists the anchors of a finished sync.
func (s *Sync) CloseSync(m *message) error {
	err := m.backend.WriteSyncAnchors(m.ctx, m.state.Partner(), s.serverURI, s.clientAnchorNext, s.ServerAnchorNext())
	if err != nil {
		return fmt.Errorf("could not write sync anchors: %w", err)
	}

	m.l.WithFields(logrus.Fields{
		"db":                s.serverURI,
		"failures":          s.errors,
		"clientAdds":        s.clientAdds,
		"clientReplaces":    s.clientReplaces,
		"clientDeletes":     s.clientDeletes,
		"clientAddReplaces": s.clientAddReplaces,
		"serverAdds":        s.serverAddCount,
		"serverReplaces":    s.serverReplaceCount,
		"serverDeletes":     s.serverDeleteCount,
	}).Info("Finished sync")
	return nil
}

// CreateUidMap stores the client id the client assigned to a server entry.
func (s *Sync) CreateUidMap(m *message, databaseURI, cuid, suid string) error {
	s.mapReceived = true

	db := databaseURI
	normalized := m.backend.Normalize(databaseURI)
	if normalized == "calendar" && m.state.Device().HandleTasksInCalendar() && s.taskSUIDs[suid] {
		db = taskToCalendar(normalized)
	}

	err := m.backend.CreateUidMap(m.ctx, m.state.Partner(), db, cuid, suid, 0)
	if err != nil {
		return fmt.Errorf("could not create map for %s: %w", suid, err)
	}
	m.l.WithFields(logrus.Fields{"db": db, "cuid": cuid, "suid": suid}).Debug("Created map")
	return nil
}

func (s *Sync) changes(change string) *[]domain.Change {
	switch change {
	case changeAdd:
		return &s.serverAdds
	case changeReplace:
		return &s.serverReplaces
	case changeDelete:
		return &s.serverDeletes
	}
	return nil
}

// ServerChange returns the client id of a pending server change.
func (s *Sync) ServerChange(change, suid string) (string, bool) {
	list := s.changes(change)
	if list == nil {
		return "", false
	}
	for _, c := range *list {
		if c.SUID == suid {
			return c.CUID, true
		}
	}
	return "", false
}

// SetServerChange queues a server change, replacing a pending one for the
// same entry.
func (s *Sync) SetServerChange(change, suid, cuid string) {
	list := s.changes(change)
	if list == nil {
		return
	}
	for i := range *list {
		if (*list)[i].SUID == suid {
			(*list)[i].CUID = cuid
			return
		}
	}
	*list = append(*list, domain.Change{SUID: suid, CUID: cuid})
	s.compiled = true
}

func (s *Sync) UnsetServerChange(change, suid string) {
	list := s.changes(change)
	if list == nil {
		return
	}
	for i := range *list {
		if (*list)[i].SUID == suid {
			*list = append((*list)[:i], (*list)[i+1:]...)
			return
		}
	}
}

type syncSnapshot struct {
	SyncType         int             `cbor:"1,keyasint"`
	ServerURI        string          `cbor:"2,keyasint"`
	ClientURI        string          `cbor:"3,keyasint"`
	SyncsSent        int             `cbor:"4,keyasint"`
	SyncsReceived    int             `cbor:"5,keyasint"`
	ExpectingMapData bool            `cbor:"6,keyasint"`
	MapReceived      bool            `cbor:"7,keyasint"`
	State            SyncState       `cbor:"8,keyasint"`
	ClientAnchorNext string          `cbor:"9,keyasint"`
	ServerAnchorLast int64           `cbor:"10,keyasint"`
	ServerAnchorNext int64           `cbor:"11,keyasint"`
	Counters         [8]int          `cbor:"12,keyasint"`
	Compiled         bool            `cbor:"13,keyasint"`
	ServerAdds       []domain.Change `cbor:"14,keyasint"`
	ServerReplaces   []domain.Change `cbor:"15,keyasint"`
	ServerDeletes    []domain.Change `cbor:"16,keyasint"`
	TaskSUIDs        map[string]bool `cbor:"17,keyasint"`
}

func (s *Sync) snapshot() *syncSnapshot {
	return &syncSnapshot{
		SyncType:         s.syncType,
		ServerURI:        s.serverURI,
		ClientURI:        s.clientURI,
		SyncsSent:        s.syncsSent,
		SyncsReceived:    s.syncsReceived,
		ExpectingMapData: s.expectingMapData,
		MapReceived:      s.mapReceived,
		State:            s.state,
		ClientAnchorNext: s.clientAnchorNext,
		ServerAnchorLast: s.serverAnchorLast,
		ServerAnchorNext: s.serverAnchorNext,
		Counters: [8]int{
			s.clientAdds, s.clientReplaces, s.clientDeletes, s.clientAddReplaces,
			s.serverAddCount, s.serverReplaceCount, s.serverDeleteCount, s.errors,
		},
		Compiled:       s.compiled,
		ServerAdds:     s.serverAdds,
		ServerReplaces: s.serverReplaces,
		ServerDeletes:  s.serverDeletes,
		TaskSUIDs:      s.taskSUIDs,
	}
}

func (ss *syncSnapshot) restore() *Sync {
	s := &Sync{
		syncType:         ss.SyncType,
		serverURI:        ss.ServerURI,
		clientURI:        ss.ClientURI,
		syncsSent:        ss.SyncsSent,
		syncsReceived:    ss.SyncsReceived,
		expectingMapData: ss.ExpectingMapData,
		mapReceived:      ss.MapReceived,
		state:            ss.State,
		clientAnchorNext: ss.ClientAnchorNext,
		serverAnchorLast: ss.ServerAnchorLast,
		serverAnchorNext: ss.ServerAnchorNext,
		compiled:         ss.Compiled,
		serverAdds:       ss.ServerAdds,
		serverReplaces:   ss.ServerReplaces,
		serverDeletes:    ss.ServerDeletes,
		taskSUIDs:        ss.TaskSUIDs,
	}
	s.clientAdds, s.clientReplaces, s.clientDeletes, s.clientAddReplaces = ss.Counters[0], ss.Counters[1], ss.Counters[2], ss.Counters[3]
	s.serverAddCount, s.serverReplaceCount, s.serverDeleteCount, s.errors = ss.Counters[4], ss.Counters[5], ss.Counters[6], ss.Counters[7]
	if s.taskSUIDs == nil {
		s.taskSUIDs = map[string]bool{}
	}
	return s
}
