// SPDX-License-Identifier: GPL-3.0-or-later
package backend

import (
	"context"
	"errors"
	"fmt"
	"path"
	"sync"

	"github.com/CrawX/go-syncml/domain"
	"github.com/CrawX/go-syncml/mail"

	"github.com/sirupsen/logrus"
)

// ImapConnect opens a connection to the IMAP server holding the entries.
type ImapConnect func() (domain.ImapConnector, error)

// imapStore keeps every entry as a message in the folder
// <prefix>/<user>/<database>. Messages may be changed by other IMAP clients,
// refresh picks those changes up.
type imapStore struct {
	b       *Backend
	connect ImapConnect
	prefix  string
	trash   string

	// mu guards conn, one folder is selected at a time.
	mu   sync.Mutex
	conn domain.ImapConnector
}

// NewImapBackend creates a backend storing the content of entries on an IMAP
// server. Deleted entries are moved to trash, or expunged if trash is empty.
func NewImapBackend(persistence domain.Persistence, connect ImapConnect, prefix, trash string) *Backend {
	b := newBackend(persistence, nil)
	b.store = &imapStore{
		b:       b,
		connect: connect,
		prefix:  prefix,
		trash:   trash,
	}
	return b
}

// Close logs out of the IMAP server if connected.
func (s *imapStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.conn == nil {
		return nil
	}
	err := s.conn.Close()
	s.conn = nil
	return err
}

func (s *imapStore) folder(user, database string) string {
	return path.Join(s.prefix, user, database)
}

// open returns a connection with the folder of a database selected. Must be
// called with mu held.
func (s *imapStore) open(user, database string) (domain.ImapConnector, error) {
	if s.conn == nil {
		conn, err := s.connect()
		if err != nil {
			return nil, fmt.Errorf("could not connect to imap: %w", err)
		}
		s.conn = conn
	}

	folder := s.folder(user, database)
	_, err := s.conn.Select(folder)
	if err != nil {
		err = s.conn.Create(folder)
		if err != nil {
			return nil, s.fail(err)
		}
		_, err = s.conn.Select(folder)
		if err != nil {
			return nil, s.fail(err)
		}
	}

	return s.conn, nil
}

// fail drops the connection so the next operation reconnects.
func (s *imapStore) fail(err error) error {
	if s.conn != nil {
		_ = s.conn.Close()
		s.conn = nil
	}
	return err
}

func (s *imapStore) load(ctx context.Context, item *domain.Item) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	conn, err := s.open(item.User, item.Database)
	if err != nil {
		return "", err
	}

	objects, err := conn.FetchObjects([]uint32{item.ImapUid})
	if err != nil {
		return "", s.fail(err)
	}
	if len(objects) == 0 {
		return "", fmt.Errorf("%w: imap uid %d", ErrNotFound, item.ImapUid)
	}

	o, err := mail.ParseObject(objects[0].RawMessage)
	if err != nil {
		return "", err
	}

	return o.Content, nil
}

func (s *imapStore) save(ctx context.Context, item, previous *domain.Item) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	o := &mail.Object{
		SUID:        item.SUID,
		Database:    item.Database,
		ContentType: item.ContentType,
		Content:     item.Content,
	}
	raw, err := mail.ObjectMessage(o, s.b.now())
	if err != nil {
		return err
	}

	conn, err := s.open(item.User, item.Database)
	if err != nil {
		return err
	}

	err = conn.Put(raw, s.folder(item.User, item.Database))
	if err != nil {
		return s.fail(err)
	}

	uid, err := s.findUid(conn, item.SUID)
	if err != nil {
		return err
	}

	if previous != nil && previous.ImapUid != 0 && previous.ImapUid != uid {
		err = s.discard(conn, previous.ImapUid, "")
		if err != nil {
			return err
		}
	}

	item.ImapUid = uid
	item.ContentHash = o.Hash()
	item.Content = ""
	return nil
}

// findUid locates a message just appended. It is usually the last one in the
// folder.
func (s *imapStore) findUid(conn domain.ImapConnector, suid string) (uint32, error) {
	uids, err := conn.ListUids()
	if err != nil {
		return 0, s.fail(err)
	}
	if len(uids) == 0 {
		return 0, fmt.Errorf("appended message %s not found", suid)
	}

	infos, err := conn.FetchIdHeaders(uids[len(uids)-1:])
	if err != nil {
		return 0, s.fail(err)
	}
	for _, info := range infos {
		if info.SUID == suid {
			return info.Uid, nil
		}
	}

	infos, err = conn.FetchIdHeaders(uids)
	if err != nil {
		return 0, s.fail(err)
	}
	var found uint32
	for _, info := range infos {
		if info.SUID == suid && info.Uid > found {
			found = info.Uid
		}
	}
	if found == 0 {
		return 0, fmt.Errorf("appended message %s not found", suid)
	}
	return found, nil
}

// discard removes one message. A folder that is not ready keeps the
// connection open, the next attempt may succeed.
func (s *imapStore) discard(conn domain.ImapConnector, uid uint32, trash string) error {
	err := conn.Remove([]uint32{uid}, trash)
	if errors.Is(err, domain.ErrFolderNotReady) {
		return err
	}
	if err != nil {
		return s.fail(err)
	}
	return nil
}

func (s *imapStore) remove(ctx context.Context, item *domain.Item) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	conn, err := s.open(item.User, item.Database)
	if err != nil {
		return err
	}

	return s.discard(conn, item.ImapUid, s.trash)
}

func (s *imapStore) refresh(ctx context.Context, user, database string, ts int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	l := s.b.l.WithFields(logrus.Fields{"user": user, "db": database})

	conn, err := s.open(user, database)
	if err != nil {
		return err
	}

	uids, err := conn.ListUids()
	if err != nil {
		return s.fail(err)
	}
	infos := []*domain.ImapIdInfo{}
	if len(uids) > 0 {
		infos, err = conn.FetchIdHeaders(uids)
		if err != nil {
			return s.fail(err)
		}
	}

	items, err := s.b.persistence.ListItems(ctx, user, database)
	if err != nil {
		return err
	}
	bySUID := map[string]*domain.Item{}
	byUid := map[uint32]*domain.Item{}
	for _, item := range items {
		bySUID[item.SUID] = item
		byUid[item.ImapUid] = item
	}

	seen := map[string]bool{}
	unknown := []uint32{}
	for _, info := range infos {
		if info.SUID == "" {
			// Written by another client, adopted under a generated id.
			if item, ok := byUid[info.Uid]; ok {
				seen[item.SUID] = true
				continue
			}
			unknown = append(unknown, info.Uid)
			continue
		}

		item, ok := bySUID[info.SUID]
		if !ok || seen[info.SUID] {
			unknown = append(unknown, info.Uid)
			continue
		}
		seen[info.SUID] = true

		if item.ImapUid == info.Uid && item.ContentHash == info.ContentHash {
			continue
		}
		l.WithFields(logrus.Fields{"suid": item.SUID, "uid": info.Uid}).Debug("Message changed on server")
		item.ImapUid = info.Uid
		item.ContentHash = info.ContentHash
		item.Modified = ts
		err = s.b.persistence.SaveItem(ctx, item)
		if err != nil {
			return err
		}
	}

	if len(unknown) > 0 {
		objects, err := conn.FetchObjects(unknown)
		if err != nil {
			return s.fail(err)
		}
		for _, raw := range objects {
			o, err := mail.ParseObject(raw.RawMessage)
			if err != nil {
				l.WithError(err).WithField("uid", raw.Uid).Warn("Skipping unparsable message")
				continue
			}

			suid := o.SUID
			if suid == "" || seen[suid] {
				suid = s.b.newSUID()
			}
			seen[suid] = true

			l.WithFields(logrus.Fields{"suid": suid, "uid": raw.Uid}).Debug("New message on server")
			err = s.b.persistence.SaveItem(ctx, &domain.Item{
				User:        user,
				Database:    database,
				SUID:        suid,
				ContentType: o.ContentType,
				Created:     ts,
				Modified:    ts,
				ImapUid:     raw.Uid,
				ContentHash: o.Hash(),
			})
			if err != nil {
				return err
			}
		}
	}

	for _, item := range items {
		if seen[item.SUID] {
			continue
		}
		l.WithField("suid", item.SUID).Debug("Message gone from server")
		_, err = s.b.persistence.DeleteItem(ctx, user, database, item.SUID)
		if err != nil {
			return err
		}
	}

	return nil
}
