// SPDX-License-Identifier: GPL-3.0-or-later
package backend

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/CrawX/go-syncml/domain"
	"github.com/CrawX/go-syncml/domain/mocks"
	"github.com/CrawX/go-syncml/log"
	"github.com/CrawX/go-syncml/mail"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const contactsFolder = "SyncML/alice/contacts"

type imapFixture struct {
	b     *Backend
	store *imapStore
	p     *mocks.MockPersistence
	conn  *mocks.MockImapConnector
	dials int
}

func newImapFixture(t *testing.T, trash string) (*imapFixture, *gomock.Controller) {
	log.InitLogging("error")
	ctrl := gomock.NewController(t)

	f := &imapFixture{
		p:    mocks.NewMockPersistence(ctrl),
		conn: mocks.NewMockImapConnector(ctrl),
	}
	f.b = NewImapBackend(f.p, func() (domain.ImapConnector, error) {
		f.dials++
		return f.conn, nil
	}, "SyncML", trash)
	f.b.now = func() time.Time { return time.Unix(1600000000, 0) }
	f.b.newSUID = func() string { return "generated" }
	f.store = f.b.store.(*imapStore)
	return f, ctrl
}

func objectMessage(t *testing.T, o *mail.Object) []byte {
	raw, err := mail.ObjectMessage(o, time.Unix(1600000000, 0))
	require.NoError(t, err)
	return raw
}

func TestImapStore_Save(t *testing.T) {
	ctx := context.Background()
	content := "BEGIN:VCARD\nFN:Jane Doe\nEND:VCARD"
	hash := (&mail.Object{ContentType: "text/x-vcard", Content: content}).Hash()

	tests := []struct {
		name     string
		previous *domain.Item
		setup    func(conn *mocks.MockImapConnector)
	}{
		{"new", nil, func(conn *mocks.MockImapConnector) {
			conn.EXPECT().Select(contactsFolder).Return(uint32(1), nil)
		}},
		{"createfolder", nil, func(conn *mocks.MockImapConnector) {
			gomock.InOrder(
				conn.EXPECT().Select(contactsFolder).Return(uint32(0), errors.New("no such folder")),
				conn.EXPECT().Create(contactsFolder).Return(nil),
				conn.EXPECT().Select(contactsFolder).Return(uint32(1), nil),
			)
		}},
		{"replace", &domain.Item{SUID: "s1", ImapUid: 3}, func(conn *mocks.MockImapConnector) {
			conn.EXPECT().Select(contactsFolder).Return(uint32(1), nil)
			conn.EXPECT().Remove([]uint32{3}, "").Return(nil)
		}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			f, ctrl := newImapFixture(t, "")
			defer ctrl.Finish()

			tc.setup(f.conn)
			f.conn.EXPECT().Put(gomock.Any(), contactsFolder).DoAndReturn(func(body []byte, _ string) error {
				o, err := mail.ParseObject(body)
				require.NoError(t, err)
				assert.Equal(t, "s1", o.SUID)
				assert.Equal(t, content, o.Content)
				return nil
			})
			f.conn.EXPECT().ListUids().Return([]uint32{3, 7}, nil)
			f.conn.EXPECT().FetchIdHeaders([]uint32{7}).Return([]*domain.ImapIdInfo{{Uid: 7, SUID: "s1", ContentHash: hash}}, nil)

			item := &domain.Item{User: "alice", Database: "contacts", SUID: "s1", Content: content, ContentType: "text/x-vcard"}
			err := f.store.save(ctx, item, tc.previous)
			require.NoError(t, err)
			assert.Equal(t, uint32(7), item.ImapUid)
			assert.Equal(t, hash, item.ContentHash)
			assert.Empty(t, item.Content)
		})
	}
}

func TestImapStore_SaveFindsUidByScan(t *testing.T) {
	f, ctrl := newImapFixture(t, "")
	defer ctrl.Finish()

	f.conn.EXPECT().Select(contactsFolder).Return(uint32(1), nil)
	f.conn.EXPECT().Put(gomock.Any(), contactsFolder).Return(nil)
	f.conn.EXPECT().ListUids().Return([]uint32{3, 7, 8}, nil)
	f.conn.EXPECT().FetchIdHeaders([]uint32{8}).Return([]*domain.ImapIdInfo{{Uid: 8, SUID: "other"}}, nil)
	f.conn.EXPECT().FetchIdHeaders([]uint32{3, 7, 8}).Return([]*domain.ImapIdInfo{
		{Uid: 3, SUID: "s0"},
		{Uid: 7, SUID: "s1"},
		{Uid: 8, SUID: "other"},
	}, nil)

	item := &domain.Item{User: "alice", Database: "contacts", SUID: "s1", ContentType: "text/plain"}
	require.NoError(t, f.store.save(context.Background(), item, nil))
	assert.Equal(t, uint32(7), item.ImapUid)
}

func TestImapStore_Load(t *testing.T) {
	f, ctrl := newImapFixture(t, "")
	defer ctrl.Finish()
	ctx := context.Background()

	raw := objectMessage(t, &mail.Object{SUID: "s1", ContentType: "text/x-vcard", Content: "BEGIN:VCARD\nFN:Jürgen\nEND:VCARD"})
	f.conn.EXPECT().Select(contactsFolder).Return(uint32(1), nil).Times(2)
	f.conn.EXPECT().FetchObjects([]uint32{5}).Return([]*domain.RawImapObject{{Uid: 5, SUID: "s1", RawMessage: raw}}, nil)
	f.conn.EXPECT().FetchObjects([]uint32{6}).Return([]*domain.RawImapObject{}, nil)

	content, err := f.store.load(ctx, &domain.Item{User: "alice", Database: "contacts", ImapUid: 5})
	require.NoError(t, err)
	assert.Equal(t, "BEGIN:VCARD\nFN:Jürgen\nEND:VCARD", content)

	_, err = f.store.load(ctx, &domain.Item{User: "alice", Database: "contacts", ImapUid: 6})
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.Equal(t, 1, f.dials)
}

func TestImapStore_Reconnect(t *testing.T) {
	f, ctrl := newImapFixture(t, "")
	defer ctrl.Finish()
	ctx := context.Background()
	item := &domain.Item{User: "alice", Database: "contacts", ImapUid: 5}

	raw := objectMessage(t, &mail.Object{SUID: "s1", ContentType: "text/plain", Content: "note"})
	f.conn.EXPECT().Select(contactsFolder).Return(uint32(1), nil).Times(2)
	gomock.InOrder(
		f.conn.EXPECT().FetchObjects([]uint32{5}).Return(nil, errors.New("connection reset")),
		f.conn.EXPECT().Close().Return(nil),
		f.conn.EXPECT().FetchObjects([]uint32{5}).Return([]*domain.RawImapObject{{Uid: 5, RawMessage: raw}}, nil),
	)

	_, err := f.store.load(ctx, item)
	assert.EqualError(t, err, "connection reset")

	content, err := f.store.load(ctx, item)
	require.NoError(t, err)
	assert.Equal(t, "note", content)
	assert.Equal(t, 2, f.dials)
}

func TestImapStore_Remove(t *testing.T) {
	tests := []struct {
		name     string
		trash    string
		setup    func(conn *mocks.MockImapConnector)
		err      string
		notReady bool
		closed   bool
	}{
		{"trash", "Trash", func(conn *mocks.MockImapConnector) {
			conn.EXPECT().Remove([]uint32{5}, "Trash").Return(nil)
		}, "", false, false},
		{"expunge", "", func(conn *mocks.MockImapConnector) {
			conn.EXPECT().Remove([]uint32{5}, "").Return(nil)
		}, "", false, false},
		{"notready", "", func(conn *mocks.MockImapConnector) {
			conn.EXPECT().Remove([]uint32{5}, "").Return(fmt.Errorf("%w: 2 objects already flagged as deleted", domain.ErrFolderNotReady))
		}, "folder not ready for remove: 2 objects already flagged as deleted", true, false},
		{"failure", "Trash", func(conn *mocks.MockImapConnector) {
			conn.EXPECT().Remove([]uint32{5}, "Trash").Return(errors.New("connection reset"))
			conn.EXPECT().Close().Return(nil)
		}, "connection reset", false, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			f, ctrl := newImapFixture(t, tc.trash)
			defer ctrl.Finish()

			f.conn.EXPECT().Select(contactsFolder).Return(uint32(1), nil)
			tc.setup(f.conn)

			err := f.store.remove(context.Background(), &domain.Item{User: "alice", Database: "contacts", SUID: "s1", ImapUid: 5})
			if tc.err == "" {
				assert.NoError(t, err)
			} else {
				assert.EqualError(t, err, tc.err)
			}
			assert.Equal(t, tc.notReady, errors.Is(err, domain.ErrFolderNotReady))
			assert.Equal(t, tc.closed, f.store.conn == nil)
		})
	}
}

func TestImapStore_Refresh(t *testing.T) {
	f, ctrl := newImapFixture(t, "")
	defer ctrl.Finish()
	ctx := context.Background()

	unchanged := &domain.Item{User: "alice", Database: "contacts", SUID: "s1", ImapUid: 1, ContentHash: "h1", Created: 5, Modified: 5}
	edited := &domain.Item{User: "alice", Database: "contacts", SUID: "s2", ImapUid: 2, ContentHash: "h2", Created: 5, Modified: 5}
	gone := &domain.Item{User: "alice", Database: "contacts", SUID: "s3", ImapUid: 3, Created: 5, Modified: 5}
	adopted := &domain.Item{User: "alice", Database: "contacts", SUID: "s4", ImapUid: 4, Created: 5, Modified: 5}

	foreign := []byte("Content-Type: text/plain\r\nSubject: Lunch\r\n\r\nLunch with Bob\r\n")

	f.conn.EXPECT().Select(contactsFolder).Return(uint32(1), nil)
	f.conn.EXPECT().ListUids().Return([]uint32{1, 4, 5, 6}, nil)
	f.conn.EXPECT().FetchIdHeaders([]uint32{1, 4, 5, 6}).Return([]*domain.ImapIdInfo{
		{Uid: 1, SUID: "s1", ContentHash: "h1"},
		{Uid: 4},
		{Uid: 5, SUID: "s2", ContentHash: "h2new"},
		{Uid: 6},
	}, nil)
	f.p.EXPECT().ListItems(ctx, "alice", "contacts").Return([]*domain.Item{unchanged, edited, gone, adopted}, nil)
	f.p.EXPECT().SaveItem(ctx, &domain.Item{
		User: "alice", Database: "contacts", SUID: "s2", ImapUid: 5, ContentHash: "h2new", Created: 5, Modified: 199,
	}).Return(nil)
	f.conn.EXPECT().FetchObjects([]uint32{6}).Return([]*domain.RawImapObject{{Uid: 6, RawMessage: foreign}}, nil)
	f.p.EXPECT().SaveItem(ctx, &domain.Item{
		User:        "alice",
		Database:    "contacts",
		SUID:        "generated",
		ContentType: "text/plain",
		Created:     199,
		Modified:    199,
		ImapUid:     6,
		ContentHash: (&mail.Object{ContentType: "text/plain", Content: "Lunch with Bob\r\n"}).Hash(),
	}).Return(nil)
	f.p.EXPECT().DeleteItem(ctx, "alice", "contacts", "s3").Return(true, nil)

	assert.NoError(t, f.store.refresh(ctx, "alice", "contacts", 199))
}

func TestImapBackend_GetServerChangesStampsWindow(t *testing.T) {
	f, ctrl := newImapFixture(t, "")
	defer ctrl.Finish()
	ctx := context.Background()

	edited := &domain.Item{User: "alice", Database: "contacts", SUID: "s2", ImapUid: 2, ContentHash: "h2", Created: 5, Modified: 5}

	f.conn.EXPECT().Select(contactsFolder).Return(uint32(1), nil)
	f.conn.EXPECT().ListUids().Return([]uint32{5}, nil)
	f.conn.EXPECT().FetchIdHeaders([]uint32{5}).Return([]*domain.ImapIdInfo{{Uid: 5, SUID: "s2", ContentHash: "h2new"}}, nil)
	gomock.InOrder(
		f.p.EXPECT().ListItems(ctx, "alice", "contacts").Return([]*domain.Item{edited}, nil),
		f.p.EXPECT().SaveItem(ctx, gomock.Any()).Return(nil),
		f.p.EXPECT().ItemsCreatedBetween(ctx, "alice", "contacts", int64(100), int64(200)).Return(nil, nil),
		f.p.EXPECT().ItemsModifiedBetween(ctx, "alice", "contacts", int64(100), int64(200)).Return([]*domain.Item{edited}, nil),
	)
	f.p.EXPECT().MappingTimestamp(ctx, alice, "contacts", "s2").Return(int64(50), true, nil)
	f.p.EXPECT().CUID(ctx, alice, "contacts", "s2").Return("c2", nil)
	f.p.EXPECT().ListItems(ctx, "alice", "contacts").Return([]*domain.Item{edited}, nil)
	f.p.EXPECT().TrackDeletes(ctx, alice, "contacts", []string{"s2"}).Return(nil, nil)

	changes, err := f.b.GetServerChanges(ctx, alice, "./contacts", 100, 200)
	require.NoError(t, err)
	assert.Equal(t, []domain.Change{{SUID: "s2", CUID: "c2"}}, changes.Replaces)
	assert.Equal(t, int64(199), edited.Modified)
}

func TestImapBackend_Close(t *testing.T) {
	f, ctrl := newImapFixture(t, "")
	defer ctrl.Finish()

	assert.NoError(t, f.b.Close())

	f.conn.EXPECT().Select(contactsFolder).Return(uint32(1), nil)
	f.conn.EXPECT().FetchObjects([]uint32{1}).Return([]*domain.RawImapObject{}, nil)
	f.conn.EXPECT().Close().Return(nil)

	_, _ = f.store.load(context.Background(), &domain.Item{User: "alice", Database: "contacts", ImapUid: 1})
	assert.NoError(t, f.b.Close())
}
