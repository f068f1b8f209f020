// SPDX-License-Identifier: GPL-3.0-or-later
package device

import (
	"strings"

	"github.com/CrawX/go-syncml/devinf"
)

const (
	Text           = "text/plain"
	VNote          = "text/x-vnote"
	VCard21        = "text/x-vcard"
	VCard30        = "text/vcard"
	VCalendar      = "text/x-vcalendar"
	ICalendar      = "text/calendar"
	EncodingBase64 = "b64"
)

// Driver encapsulates the quirks of a client implementation.
type Driver interface {
	Name() string
	// HandleTasksInCalendar is true for clients that sync tasks as part of
	// their calendar datastore.
	HandleTasksInCalendar() bool
	UseCdataTag() bool
	// PreferredContentType is the type the server stores for a database.
	PreferredContentType(database string) string
	// PreferredContentTypeClient is the type the client wants to receive
	// for its datastore clientURI.
	PreferredContentTypeClient(di *devinf.DeviceInfo, database, clientURI string) string
	// RetrieveContentType maps a type requested by the client to one the
	// backend can produce.
	RetrieveContentType(requested, database string) string
	ConvertClient2Server(content, contentType string) (string, string, error)
	// ConvertServer2Client returns content, content type and the encoding
	// of the converted entry.
	ConvertServer2Client(content, contentType, requested, database string) (string, string, string, error)
}

// Select picks the driver for a client. Rules are checked in order and the
// first match wins.
func Select(sourceURI string, di *devinf.DeviceInfo) Driver {
	si := strings.ToLower(sourceURI)
	var man, mod string
	if di != nil {
		man = strings.ToLower(di.Man)
		mod = strings.ToLower(di.Mod)
	}

	switch {
	case containsAny(si, "sync4j", "sc-pim", "fol-", "fwm-", "fbb-"):
		return NewSync4j(sourceURI)
	case man != "" && (strings.Contains(man, "sony ericsson") || strings.Contains(mod, "a1000")):
		return &P800{}
	case strings.Contains(man, "synthesis"):
		return &Synthesis{}
	case strings.Contains(man, "nokia"):
		return &Nokia{}
	case strings.Contains(si, "fmz-"):
		return NewSync4jMozilla(sourceURI)
	}

	return &Default{}
}

func containsAny(s string, substrings ...string) bool {
	for _, sub := range substrings {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

type Default struct{}

func (d *Default) Name() string {
	return "default"
}

func (d *Default) HandleTasksInCalendar() bool {
	return false
}

func (d *Default) UseCdataTag() bool {
	return true
}

func (d *Default) PreferredContentType(database string) string {
	switch database {
	case "contacts":
		return VCard21
	case "notes":
		return VNote
	case "tasks", "calendar":
		return ICalendar
	}
	return Text
}

func (d *Default) PreferredContentTypeClient(di *devinf.DeviceInfo, database, clientURI string) string {
	return preferredContentTypeClient(d, di, database, clientURI)
}

func preferredContentTypeClient(d Driver, di *devinf.DeviceInfo, database, clientURI string) string {
	if ds := di.DataStore(clientURI); ds != nil && ds.RxPref.CTType != "" {
		return ds.RxPref.CTType
	}
	return d.PreferredContentType(database)
}

func (d *Default) RetrieveContentType(requested, database string) string {
	if requested == "" {
		return d.PreferredContentType(database)
	}
	return requested
}

func (d *Default) ConvertClient2Server(content, contentType string) (string, string, error) {
	return content, contentType, nil
}

func (d *Default) ConvertServer2Client(content, contentType, requested, database string) (string, string, string, error) {
	return content, contentType, "", nil
}

type P800 struct {
	Default
}

func (d *P800) Name() string {
	return "P800"
}

func (d *P800) HandleTasksInCalendar() bool {
	return true
}

type Synthesis struct {
	Default
}

func (d *Synthesis) Name() string {
	return "Synthesis"
}

type Nokia struct {
	Default
}

func (d *Nokia) Name() string {
	return "Nokia"
}

func (d *Nokia) HandleTasksInCalendar() bool {
	return true
}

// Nokia phones only understand vCalendar 1.0 for both events and todos.
func (d *Nokia) PreferredContentType(database string) string {
	switch database {
	case "tasks", "calendar":
		return VCalendar
	}
	return d.Default.PreferredContentType(database)
}

func (d *Nokia) PreferredContentTypeClient(di *devinf.DeviceInfo, database, clientURI string) string {
	return preferredContentTypeClient(d, di, database, clientURI)
}

func (d *Nokia) RetrieveContentType(requested, database string) string {
	if requested == "" {
		return d.PreferredContentType(database)
	}
	return requested
}
