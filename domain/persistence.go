// SPDX-License-Identifier: GPL-3.0-or-later
package domain

import (
	"context"
	"time"
)

//go:generate mockgen -destination=mocks/persistence.go -package=mocks . Persistence,SessionStore

// Item is a server side groupware entry. Content is empty for items whose
// body lives on an IMAP server; ImapUid and ContentHash locate it there.
type Item struct {
	User        string
	Database    string
	SUID        string
	Content     string
	ContentType string
	Created     int64
	Modified    int64
	ImapUid     uint32
	ContentHash string
}

type SessionStore interface {
	LoadSession(ctx context.Context, id string) ([]byte, error)
	SaveSession(ctx context.Context, id string, data []byte) error
	DeleteSession(ctx context.Context, id string) error
}

type Persistence interface {
	Close() error

	SaveUser(ctx context.Context, user, passwordHash string) error
	PasswordHash(ctx context.Context, user string) (string, error)
	DeleteUser(ctx context.Context, user string) error

	SaveItem(ctx context.Context, item *Item) error
	GetItem(ctx context.Context, user, database, suid string) (*Item, error)
	DeleteItem(ctx context.Context, user, database, suid string) (bool, error)
	ListItems(ctx context.Context, user, database string) ([]*Item, error)
	ItemsCreatedBetween(ctx context.Context, user, database string, from, to int64) ([]*Item, error)
	ItemsModifiedBetween(ctx context.Context, user, database string, from, to int64) ([]*Item, error)

	SaveMapping(ctx context.Context, p Partner, database, cuid, suid string, ts int64) error
	SUID(ctx context.Context, p Partner, database, cuid string) (string, error)
	CUID(ctx context.Context, p Partner, database, suid string) (string, error)
	MappingTimestamp(ctx context.Context, p Partner, database, suid string) (int64, bool, error)
	DeleteMapping(ctx context.Context, p Partner, database, suid string) error
	EraseMap(ctx context.Context, p Partner, database string) error

	TrackDeletes(ctx context.Context, p Partner, database string, current []string) ([]string, error)
	RemoveFromSuidList(ctx context.Context, p Partner, database, suid string) error

	ReadAnchors(ctx context.Context, p Partner, database string) (*Anchors, error)
	WriteAnchors(ctx context.Context, p Partner, database, clientAnchor, serverAnchor string) error

	SessionStore
	ExpireSessions(ctx context.Context, before time.Time) (int64, error)
}
