// SPDX-License-Identifier: GPL-3.0-or-later
package domain

import "errors"

//go:generate mockgen -destination=mocks/imap.go -package=mocks . ImapConnector

// RawImapObject is a groupware object stored as an IMAP message.
type RawImapObject struct {
	Uid         uint32
	SUID        string
	ContentHash string
	RawMessage  []byte
}

type ImapIdInfo struct {
	Uid         uint32
	SUID        string
	ContentHash string
}

var ErrFolderNotReady = errors.New("folder not ready for remove")

type ImapConnector interface {
	Select(folder string) (uint32, error)
	Create(folder string) error
	ListUids() ([]uint32, error)
	FetchObjects(uids []uint32) ([]*RawImapObject, error)
	FetchIdHeaders(uids []uint32) ([]*ImapIdInfo, error)
	Put(body []byte, folder string) error
	// Remove moves the objects to trash, or expunges them when trash is
	// empty. It fails with ErrFolderNotReady without touching the folder
	// when that would also expunge objects it was not asked for.
	Remove(uids []uint32, trash string) error

	Close() error
}
