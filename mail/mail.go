// SPDX-License-Identifier: GPL-3.0-or-later
package mail

import (
	"bytes"
	"crypto/sha256"
	"fmt"
	"io/ioutil"
	"regexp"
	"strings"
	"time"

	_ "github.com/emersion/go-message/charset"

	"github.com/emersion/go-message"
	msgmail "github.com/emersion/go-message/mail"
)

const (
	HeaderSUID     = "X-SyncML-SUID"
	HeaderDatabase = "X-SyncML-Database"
	HeaderHash     = "X-SyncML-Hash"
)

// Object is a groupware entry stored as the body of a mail.
type Object struct {
	SUID        string
	Database    string
	ContentType string
	Content     string
}

// Hash identifies the content of an object. It changes whenever the content
// does.
func (o *Object) Hash() string {
	return hash([][]string{{o.ContentType, o.Content}})
}

// ObjectMessage encodes an object as a mail. The entry's summary becomes the
// subject so the folder stays readable in regular mail clients.
func ObjectMessage(o *Object, date time.Time) ([]byte, error) {
	h := msgmail.Header{}
	h.SetDate(date)
	h.SetSubject(ShortSubject(Summary(o.Content)))
	h.Set("Message-Id", fmt.Sprintf("<%s@go-syncml>", o.SUID))
	h.Set("MIME-Version", "1.0")
	h.Set(HeaderSUID, o.SUID)
	h.Set(HeaderDatabase, o.Database)
	h.Set(HeaderHash, o.Hash())
	h.SetContentType(o.ContentType, map[string]string{"charset": "utf-8"})
	h.Set("Content-Transfer-Encoding", "base64")

	buf := &bytes.Buffer{}
	w, err := message.CreateWriter(buf, h.Header)
	if err != nil {
		return nil, fmt.Errorf("could not create message writer: %w", err)
	}
	_, err = w.Write([]byte(o.Content))
	if err != nil {
		return nil, fmt.Errorf("could not write object body: %w", err)
	}
	err = w.Close()
	if err != nil {
		return nil, fmt.Errorf("could not close message writer: %w", err)
	}

	return buf.Bytes(), nil
}

// ParseObject decodes a mail created by ObjectMessage or edited by another
// client. Transfer encoding and charset are undone.
func ParseObject(rawMessage []byte) (*Object, error) {
	e, err := message.Read(bytes.NewReader(rawMessage))
	if err != nil && !message.IsUnknownCharset(err) {
		return nil, fmt.Errorf("could not parse message: %w", err)
	}

	contentType, _, err := e.Header.ContentType()
	if err != nil {
		return nil, fmt.Errorf("could not parse content type: %w", err)
	}

	body, err := ioutil.ReadAll(e.Body)
	if err != nil {
		return nil, fmt.Errorf("could not read message body: %w", err)
	}

	return &Object{
		SUID:        e.Header.Get(HeaderSUID),
		Database:    e.Header.Get(HeaderDatabase),
		ContentType: contentType,
		Content:     string(body),
	}, nil
}

// ObjectIdInfos reads the server id and content hash from the headers of an
// object mail.
func ObjectIdInfos(rawHeaders []byte) (string, string, error) {
	e, err := message.Read(bytes.NewReader(rawHeaders))
	if err != nil && !message.IsUnknownCharset(err) {
		return "", "", fmt.Errorf("could not parse headers: %w", err)
	}

	suid := e.Header.Get(HeaderSUID)
	objectHash := e.Header.Get(HeaderHash)
	if len(suid) == 0 && len(objectHash) == 0 {
		return "", "", fmt.Errorf("%s and %s header not found", HeaderSUID, HeaderHash)
	}

	return suid, objectHash, nil
}

var summaryLine = regexp.MustCompile(`(?m)^(SUMMARY|FN|BODY|SUBJECT)(;[^:\r\n]*)?:(.*?)\r?$`)

// Summary returns a one line description of a vCard, iCalendar or vNote
// entry, or the first line of plain text.
func Summary(content string) string {
	if m := summaryLine.FindStringSubmatch(content); m != nil {
		return strings.TrimSpace(m[3])
	}

	line := strings.SplitN(strings.TrimSpace(content), "\n", 2)[0]
	return strings.TrimSpace(line)
}

func ShortSubject(subject string) string {
	if (len(subject)) > 30 {
		subject = subject[:30] + "..."
	}
	return subject
}

func hash(input [][]string) string {
	sha := sha256.New()
	for _, i := range input {
		for _, ii := range i {
			// hash.Hash never returns an error
			_, _ = sha.Write([]byte(ii))
		}
	}

	return fmt.Sprintf("%x", sha.Sum(nil))
}
