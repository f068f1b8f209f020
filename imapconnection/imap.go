// SPDX-License-Identifier: GPL-3.0-or-later
package imapconnection

import (
	"bytes"
	"fmt"
	"io/ioutil"
	"time"

	"github.com/CrawX/go-syncml/domain"
	"github.com/CrawX/go-syncml/log"
	"github.com/CrawX/go-syncml/mail"

	"github.com/emersion/go-imap"
	"github.com/emersion/go-imap-move"
	"github.com/emersion/go-imap-uidplus"
	"github.com/emersion/go-imap/client"
	"github.com/sirupsen/logrus"
)

type ImapConnection struct {
	connection *client.Client
	remover    *objectRemover

	server, user, password string

	selectedFolder string

	l *logrus.Logger
}

func NewImapConnection(server string, user string, password string) (*ImapConnection, error) {
	imapClient, err := client.DialTLS(server, nil)
	if err != nil {
		return nil, fmt.Errorf("could not dial to imap: %w", err)
	}

	err = imapClient.Login(user, password)
	if err != nil {
		return nil, fmt.Errorf("could not login to imap: %w", err)
	}

	uidPlusClient := uidplus.NewClient(imapClient)
	uidPlusSupported, err := uidPlusClient.SupportUidPlus()
	if err != nil {
		return nil, fmt.Errorf("could not check for UIDPLUS support: %w", err)
	}

	moveClient := move.NewClient(imapClient)
	moveSupported, err := moveClient.SupportMove()
	if err != nil {
		return nil, fmt.Errorf("could not check for MOVE support: %w", err)
	}

	conn := &ImapConnection{
		connection: imapClient,
		remover:    &objectRemover{folder: imapClient},
		server:     server,
		user:       user,
		password:   password,
		l:          log.Logger(log.LOG_IMAP),
	}

	baseLogger := conn.l.WithFields(logrus.Fields{"server": server})
	baseLogger.Debug("Logged in to server")

	if uidPlusSupported {
		baseLogger.Debug("UIDPLUS supported on server, using UID expunge")
		conn.remover.uidPlus = uidPlusClient
	} else {
		baseLogger.Info("UIDPLUS not supported on server, falling back to flag&expunge")
	}

	if moveSupported {
		baseLogger.Debug("MOVE supported on server")
		conn.remover.mover = moveClient
	} else {
		baseLogger.Info("MOVE not supported on server, falling back to copy&expunge")
	}

	return conn, nil
}

func (ic *ImapConnection) Select(folder string) (uint32, error) {
	m, err := ic.connection.Select(folder, false)
	if err != nil {
		return 0, fmt.Errorf("could not select folder: %w", err)
	}

	ic.selectedFolder = folder
	return m.UidValidity, nil
}

func (ic *ImapConnection) Create(folder string) error {
	err := ic.connection.Create(folder)
	if err != nil {
		return fmt.Errorf("could not create folder %s: %w", folder, err)
	}

	ic.l.WithField("folder", folder).Info("Created folder")
	return nil
}

func (ic *ImapConnection) ListUids() ([]uint32, error) {
	// Get all UIDs in folder (empty search criteria)
	criteria := imap.NewSearchCriteria()
	ids, err := ic.connection.UidSearch(criteria)
	if err != nil {
		return nil, fmt.Errorf("could not list folder: %w", err)
	}

	return ids, nil
}

// readFetched reads section of every fetched message until UidFetch closes
// messages. The channel is drained after a failed read so the fetch can
// finish; the first read error is returned.
func (ic *ImapConnection) readFetched(messages chan *imap.Message, section *imap.BodySectionName, read func(uid uint32, raw []byte)) error {
	var readErr error
	for msg := range messages {
		if readErr != nil {
			continue
		}

		r := msg.GetBody(section)
		if r == nil {
			ic.l.WithField("uid", msg.Uid).Debug("Server returned no body section")
			continue
		}

		raw, err := ioutil.ReadAll(r)
		if err != nil {
			readErr = fmt.Errorf("could not read message %d: %w", msg.Uid, err)
			continue
		}
		read(msg.Uid, raw)
	}

	return readErr
}

func (ic *ImapConnection) FetchObjects(uids []uint32) ([]*domain.RawImapObject, error) {
	seqset := &imap.SeqSet{}
	seqset.AddNum(uids...)

	messages := make(chan *imap.Message, 10)
	fullBodySection := &imap.BodySectionName{
		Peek: true,
	}

	fetchItems := []imap.FetchItem{fullBodySection.FetchItem()}
	done := make(chan error, 1)
	go func() {
		done <- ic.connection.UidFetch(seqset, fetchItems, messages)
	}()

	objects := []*domain.RawImapObject{}
	readErr := ic.readFetched(messages, fullBodySection, func(uid uint32, rawBody []byte) {
		// Objects created by other clients carry no id headers.
		suid, contentHash, _ := mail.ObjectIdInfos(rawBody)

		objects = append(
			objects,
			&domain.RawImapObject{
				Uid:         uid,
				SUID:        suid,
				ContentHash: contentHash,
				RawMessage:  rawBody,
			},
		)
	})

	err := <-done
	if err != nil {
		return nil, fmt.Errorf("could not fetch objects: %w", err)
	}
	if readErr != nil {
		return nil, fmt.Errorf("could not fetch objects: %w", readErr)
	}

	return objects, nil
}

func (ic *ImapConnection) FetchIdHeaders(uids []uint32) ([]*domain.ImapIdInfo, error) {
	seqset := &imap.SeqSet{}
	seqset.AddNum(uids...)
	section := &imap.BodySectionName{
		BodyPartName: imap.BodyPartName{
			Specifier: imap.HeaderSpecifier,
			Fields: []string{
				mail.HeaderSUID,
				mail.HeaderHash,
			},
		},
		Peek: true,
	}
	fetchItems := []imap.FetchItem{section.FetchItem()}

	out := make(chan *imap.Message)
	done := make(chan error, 1)
	go func() {
		done <- ic.connection.UidFetch(seqset, fetchItems, out)
	}()

	results := []*domain.ImapIdInfo{}
	readErr := ic.readFetched(out, section, func(uid uint32, rawHeaders []byte) {
		suid, contentHash, _ := mail.ObjectIdInfos(rawHeaders)
		results = append(
			results,
			&domain.ImapIdInfo{
				Uid:         uid,
				SUID:        suid,
				ContentHash: contentHash,
			},
		)
	})

	err := <-done
	if err != nil {
		return nil, fmt.Errorf("could not fetch headers: %w", err)
	}
	if readErr != nil {
		return nil, fmt.Errorf("could not fetch headers: %w", readErr)
	}

	return results, nil
}

func (ic *ImapConnection) Close() error {
	return ic.connection.Logout()
}

func (ic *ImapConnection) Put(body []byte, folder string) error {
	err := ic.connection.Append(folder, nil, time.Now(), bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("could not append: %w", err)
	}

	return nil
}

func (ic *ImapConnection) Remove(uids []uint32, trash string) error {
	return ic.remover.remove(uids, trash)
}
