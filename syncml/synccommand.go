// SPDX-License-Identifier: GPL-3.0-or-later
package syncml

import (
	"strconv"

	"github.com/sirupsen/logrus"
)

// syncCommand is a client's Sync with the Add, Replace and Delete commands
// it contains.
type syncCommand struct {
	command

	targetURI string
	sourceURI string

	// meta of the current Add, Replace or Delete, inherited by its items
	itemTemplate SyncItem
	cur          *SyncItem
	items        []*SyncItem
}

func isSyncElement(element string) bool {
	return element == "Add" || element == "Replace" || element == "Delete"
}

func (s *syncCommand) StartElement(uri, element string) {
	s.command.StartElement(uri, element)

	switch {
	case s.depth() == 2 && isSyncElement(element):
		s.itemTemplate = SyncItem{ElementType: element}
	case s.depth() == 3 && element == "Item" && s.itemTemplate.ElementType != "":
		item := s.itemTemplate
		s.cur = &item
	}
}

func (s *syncCommand) EndElement(uri, element string) {
	switch s.path() {
	case "Target/LocURI":
		s.targetURI = s.text()
	case "Source/LocURI":
		s.sourceURI = s.text()
	}

	if s.depth() >= 3 && isSyncElement(s.stack[1]) {
		s.itemElement(s.path()[len(s.stack[1])+1:])
	}

	s.command.EndElement(uri, element)
}

// itemElement takes the data of an element inside Add, Replace or Delete.
// Meta information may be given for the command or for each item.
func (s *syncCommand) itemElement(path string) {
	t := &s.itemTemplate

	switch path {
	case "CmdID":
		t.CmdID, _ = strconv.Atoi(s.text())
	case "Meta/Type":
		t.ContentType = s.text()
	case "Meta/Format":
		t.ContentFormat = s.text()
	case "Meta/Size":
		t.Size, _ = strconv.Atoi(s.text())
	}

	if s.cur == nil {
		return
	}

	switch path {
	case "Item/Source/LocURI":
		s.cur.CUID = s.text()
	case "Item/Target/LocURI":
		s.cur.SUID = s.text()
	case "Item/Meta/Type":
		s.cur.ContentType = s.text()
	case "Item/Meta/Format":
		s.cur.ContentFormat = s.text()
	case "Item/Meta/Size":
		s.cur.Size, _ = strconv.Atoi(s.text())
	case "Item/Data":
		s.cur.Content = s.rawText()
	case "Item/MoreData":
		s.cur.MoreData = true
	case "Item":
		s.items = append(s.items, s.cur)
		s.cur = nil
	}
}

func (s *syncCommand) Handle(m *message) error {
	st := m.state
	l := m.l.WithFields(logrus.Fields{"target": s.targetURI, "source": s.sourceURI})

	sync := st.Sync(s.targetURI)
	if sync == nil {
		l.Error("No sync alerted for target")
		m.out.Status(s.cmdID, s.name, ResponseNotFound, s.targetURI, s.sourceURI)
		return nil
	}

	l.WithField("items", len(s.items)).Debug("Handling Sync from client")
	sync.AddSyncReceived()
	m.out.Status(s.cmdID, s.name, ResponseOK, s.targetURI, s.sourceURI)

	for _, item := range s.items {
		item.Target = s.targetURI
		s.handleItem(m, sync, item)
		m.out.Status(item.CmdID, item.ElementType, item.ResponseCode, item.SUID, item.CUID)
	}
	return nil
}

// handleItem buffers chunks of a large object until its last chunk
// arrives.
func (s *syncCommand) handleItem(m *message, sync *Sync, item *SyncItem) {
	st := m.state

	if item.MoreData {
		if st.CurSyncItem == nil {
			chunk := *item
			st.CurSyncItem = &chunk
		} else {
			st.CurSyncItem.Content += item.Content
		}
		item.ResponseCode = ResponseChunkedItemAcceptedAndBuffered
		m.l.WithFields(logrus.Fields{
			"cuid":     item.CUID,
			"received": len(st.CurSyncItem.Content),
			"size":     st.CurSyncItem.Size,
		}).Debug("Buffered chunk of large object")
		return
	}

	if st.CurSyncItem != nil {
		full := *st.CurSyncItem
		full.Content += item.Content
		full.CmdID = item.CmdID
		full.MoreData = false
		st.CurSyncItem = nil
		*item = full
	}

	sync.HandleClientSyncItem(m, item)
}
