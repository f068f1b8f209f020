// SPDX-License-Identifier: GPL-3.0-or-later
package device

import (
	"encoding/base64"
	"fmt"
	"regexp"
	"strings"

	"github.com/CrawX/go-syncml/devinf"
)

// Sync4j covers the Funambol (formerly Sync4j) family of clients, which
// exchange SIF objects instead of the vCard family of formats.
type Sync4j struct {
	Default
	outlook bool
}

func NewSync4j(sourceURI string) *Sync4j {
	return &Sync4j{outlook: strings.Contains(strings.ToLower(sourceURI), "fol-")}
}

func (d *Sync4j) Name() string {
	return "Sync4j"
}

func (d *Sync4j) UseCdataTag() bool {
	return false
}

func (d *Sync4j) PreferredContentTypeClient(di *devinf.DeviceInfo, database, clientURI string) string {
	return preferredContentTypeClient(d, di, database, clientURI)
}

func (d *Sync4j) RetrieveContentType(requested, database string) string {
	switch sifKind(requested) {
	case sifNote:
		return VNote
	case sifContact:
		return VCard21
	case sifEvent, sifTask:
		return ICalendar
	}
	return d.Default.RetrieveContentType(requested, database)
}

func (d *Sync4j) ConvertClient2Server(content, contentType string) (string, string, error) {
	kind := sifKind(contentType)
	if kind == "" {
		return d.stripStatus(content, contentType), contentType, nil
	}

	content = decodeBase64(content)
	_, fields, err := parseSIF(content)
	if err != nil {
		return "", "", err
	}

	switch kind {
	case sifNote:
		return sifToNote(fields), VNote, nil
	case sifContact:
		c, err := sifToVCard(fields)
		return c, VCard21, err
	case sifEvent:
		c, err := sifToEvent(fields)
		return c, ICalendar, err
	default:
		c, err := sifToTask(fields)
		return c, ICalendar, err
	}
}

var statusLine = regexp.MustCompile(`(?im)^STATUS:[^\r\n]*\r?\n`)

// The Outlook connector maps the meeting status of an event to STATUS,
// so the property is dropped in both directions.
func (d *Sync4j) stripStatus(content, contentType string) string {
	if d.outlook && (contentType == ICalendar || contentType == VCalendar) {
		return statusLine.ReplaceAllString(content, "")
	}
	return content
}

func (d *Sync4j) ConvertServer2Client(content, contentType, requested, database string) (string, string, string, error) {
	kind := sifKind(requested)
	if kind == "" {
		return d.stripStatus(content, contentType), contentType, "", nil
	}

	var sif string
	var err error
	switch kind {
	case sifNote:
		sif, err = noteToSIF(content)
	case sifContact:
		sif, err = vcardToSIF(content)
	default:
		sif, err = calendarToSIF(content, kind)
	}
	if err != nil {
		return "", "", "", fmt.Errorf("could not convert %s to %s: %w", contentType, requested, err)
	}

	return base64.StdEncoding.EncodeToString([]byte(sif)), requested, EncodingBase64, nil
}

// decodeBase64 returns content unchanged unless it is valid base64.
func decodeBase64(content string) string {
	trimmed := strings.TrimSpace(content)
	if strings.HasPrefix(trimmed, "<") {
		return content
	}
	decoded, err := base64.StdEncoding.DecodeString(trimmed)
	if err != nil {
		return content
	}
	return string(decoded)
}

// Sync4jMozilla is the Funambol Thunderbird plugin. Tasks travel through
// the calendar datastore.
type Sync4jMozilla struct {
	Sync4j
}

func NewSync4jMozilla(sourceURI string) *Sync4jMozilla {
	return &Sync4jMozilla{Sync4j: *NewSync4j(sourceURI)}
}

func (d *Sync4jMozilla) Name() string {
	return "Sync4jMozilla"
}

func (d *Sync4jMozilla) HandleTasksInCalendar() bool {
	return true
}

func (d *Sync4jMozilla) PreferredContentTypeClient(di *devinf.DeviceInfo, database, clientURI string) string {
	return preferredContentTypeClient(d, di, database, clientURI)
}
