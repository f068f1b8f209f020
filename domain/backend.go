// SPDX-License-Identifier: GPL-3.0-or-later
package domain

import "context"

//go:generate mockgen -destination=mocks/backend.go -package=mocks . Backend

// Partner identifies one side of a sync relation: a user syncing from one
// device.
type Partner struct {
	User     string
	DeviceID string
}

type Credentials struct {
	User   string
	Data   string
	Format string
	Type   string
}

type Anchors struct {
	ClientAnchor string
	ServerAnchor string
}

type Entry struct {
	Content     string
	ContentType string
}

// Change is one server side modification. CUID is empty for entries the
// client does not know yet.
type Change struct {
	SUID string
	CUID string
}

type Changes struct {
	Adds     []Change
	Replaces []Change
	Deletes  []Change
}

func (c *Changes) Len() int {
	if c == nil {
		return 0
	}
	return len(c.Adds) + len(c.Replaces) + len(c.Deletes)
}

type Backend interface {
	Normalize(databaseURI string) string
	IsValidDatabaseURI(databaseURI string) bool
	CheckAuthentication(ctx context.Context, cred Credentials) (string, bool, error)
	CurrentTimestamp() int64

	ReadSyncAnchors(ctx context.Context, p Partner, databaseURI string) (*Anchors, error)
	WriteSyncAnchors(ctx context.Context, p Partner, databaseURI, clientAnchorNext, serverAnchorNext string) error
	CreateUidMap(ctx context.Context, p Partner, databaseURI, cuid, suid string, ts int64) error
	EraseMap(ctx context.Context, p Partner, databaseURI string) error

	GetServerChanges(ctx context.Context, p Partner, databaseURI string, from, to int64) (*Changes, error)
	RetrieveEntry(ctx context.Context, p Partner, databaseURI, suid, contentType string) (*Entry, error)
	AddEntry(ctx context.Context, p Partner, databaseURI string, e *Entry, cuid string) (string, error)
	ReplaceEntry(ctx context.Context, p Partner, databaseURI string, e *Entry, cuid string) (string, error)
	DeleteEntry(ctx context.Context, p Partner, databaseURI, cuid string) error
}
