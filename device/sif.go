// SPDX-License-Identifier: GPL-3.0-or-later
package device

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/emersion/go-ical"
	"github.com/emersion/go-vcard"
	"github.com/google/uuid"
)

// SIF (Sync4j Interchange Format) objects are flat XML documents with one
// element per field.

const (
	sifNote    = "note"
	sifContact = "contact"
	sifEvent   = "appointment"
	sifTask    = "task"
)

func sifKind(contentType string) string {
	switch strings.ToLower(contentType) {
	case "text/x-s4j-sifn", "text/x-sifn":
		return sifNote
	case "text/x-s4j-sifc", "text/x-sifc":
		return sifContact
	case "text/x-s4j-sife", "text/x-sife":
		return sifEvent
	case "text/x-s4j-sift", "text/x-sift":
		return sifTask
	}
	return ""
}

func parseSIF(content string) (string, map[string]string, error) {
	d := xml.NewDecoder(strings.NewReader(content))
	fields := map[string]string{}
	root := ""
	depth := 0
	var current string
	var chars strings.Builder
	for {
		tok, err := d.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", nil, fmt.Errorf("could not parse sif: %w", err)
		}

		switch tok := tok.(type) {
		case xml.StartElement:
			depth++
			if depth == 1 {
				root = tok.Name.Local
			} else if depth == 2 {
				current = tok.Name.Local
				chars.Reset()
			}
		case xml.CharData:
			if depth == 2 {
				chars.Write(tok)
			}
		case xml.EndElement:
			if depth == 2 {
				fields[current] = chars.String()
			}
			depth--
		}
	}

	if root == "" {
		return "", nil, fmt.Errorf("could not parse sif: no root element")
	}
	return root, fields, nil
}

func writeSIF(root string, fields map[string]string) string {
	keys := make([]string, 0, len(fields))
	for k, v := range fields {
		if v != "" {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	var b bytes.Buffer
	b.WriteString(`<?xml version="1.0" encoding="UTF-8"?>`)
	b.WriteString("<" + root + ">")
	for _, k := range keys {
		b.WriteString("<" + k + ">")
		xml.EscapeText(&b, []byte(fields[k]))
		b.WriteString("</" + k + ">")
	}
	b.WriteString("</" + root + ">")
	return b.String()
}

func sifToNote(fields map[string]string) string {
	n := &note{
		Summary:    fields["Subject"],
		Body:       fields["Body"],
		Categories: fields["Categories"],
	}
	return n.encode()
}

func noteToSIF(content string) (string, error) {
	n, err := parseVNote(content)
	if err != nil {
		return "", err
	}
	return writeSIF(sifNote, map[string]string{
		"Subject":    n.Summary,
		"Body":       n.Body,
		"Categories": n.Categories,
	}), nil
}

var sifContactFields = []struct {
	sif   string
	vcard string
}{
	{"FileAs", vcard.FieldFormattedName},
	{"NickName", vcard.FieldNickname},
	{"JobTitle", vcard.FieldTitle},
	{"Profession", vcard.FieldRole},
	{"Body", vcard.FieldNote},
	{"WebPage", vcard.FieldURL},
	{"Birthday", vcard.FieldBirthday},
	{"Categories", vcard.FieldCategories},
}

var sifPhoneFields = []struct {
	sif   string
	types []string
}{
	{"HomeTelephoneNumber", []string{vcard.TypeHome, vcard.TypeVoice}},
	{"BusinessTelephoneNumber", []string{vcard.TypeWork, vcard.TypeVoice}},
	{"MobileTelephoneNumber", []string{vcard.TypeCell}},
	{"HomeFaxNumber", []string{vcard.TypeHome, vcard.TypeFax}},
	{"BusinessFaxNumber", []string{vcard.TypeWork, vcard.TypeFax}},
	{"PagerNumber", []string{vcard.TypePager}},
}

var sifAddressPrefixes = []struct {
	prefix string
	typ    string
}{
	{"Home", vcard.TypeHome},
	{"Business", vcard.TypeWork},
}

func sifToVCard(fields map[string]string) (string, error) {
	card := vcard.Card{}
	card.SetValue(vcard.FieldVersion, "2.1")

	for _, m := range sifContactFields {
		if v := fields[m.sif]; v != "" {
			card.SetValue(m.vcard, v)
		}
	}

	name := &vcard.Name{
		Field:           &vcard.Field{},
		GivenName:       fields["FirstName"],
		AdditionalName:  fields["MiddleName"],
		FamilyName:      fields["LastName"],
		HonorificPrefix: fields["Title"],
		HonorificSuffix: fields["Suffix"],
	}
	card.SetName(name)
	if card.Value(vcard.FieldFormattedName) == "" {
		card.SetValue(vcard.FieldFormattedName, strings.TrimSpace(name.GivenName+" "+name.FamilyName))
	}

	if fields["CompanyName"] != "" || fields["Department"] != "" {
		org := fields["CompanyName"]
		if fields["Department"] != "" {
			org += ";" + fields["Department"]
		}
		card.SetValue(vcard.FieldOrganization, org)
	}

	for _, m := range sifPhoneFields {
		if v := fields[m.sif]; v != "" {
			card.Add(vcard.FieldTelephone, &vcard.Field{
				Value:  v,
				Params: vcard.Params{vcard.ParamType: m.types},
			})
		}
	}

	for _, key := range []string{"Email1Address", "Email2Address", "Email3Address"} {
		if v := fields[key]; v != "" {
			card.Add(vcard.FieldEmail, &vcard.Field{Value: v, Params: vcard.Params{vcard.ParamType: {"internet"}}})
		}
	}

	for _, a := range sifAddressPrefixes {
		addr := &vcard.Address{
			Field:         &vcard.Field{Params: vcard.Params{vcard.ParamType: {a.typ}}},
			StreetAddress: fields[a.prefix+"AddressStreet"],
			Locality:      fields[a.prefix+"AddressCity"],
			Region:        fields[a.prefix+"AddressState"],
			PostalCode:    fields[a.prefix+"AddressPostalCode"],
			Country:       fields[a.prefix+"AddressCountry"],
		}
		if addr.StreetAddress+addr.Locality+addr.Region+addr.PostalCode+addr.Country != "" {
			card.AddAddress(addr)
		}
	}

	var b bytes.Buffer
	err := vcard.NewEncoder(&b).Encode(card)
	if err != nil {
		return "", fmt.Errorf("could not encode vcard: %w", err)
	}
	return b.String(), nil
}

// fieldTypes collects the TYPE values of a field, including the bare
// parameters vCard 2.1 uses.
func fieldTypes(f *vcard.Field) map[string]bool {
	types := map[string]bool{}
	for k, values := range f.Params {
		if strings.EqualFold(k, vcard.ParamType) {
			for _, v := range values {
				for _, t := range strings.Split(v, ",") {
					types[strings.ToLower(t)] = true
				}
			}
		} else if len(values) == 0 || (len(values) == 1 && values[0] == "") {
			types[strings.ToLower(k)] = true
		}
	}
	return types
}

func phoneSIFField(types map[string]bool) string {
	switch {
	case types[vcard.TypeFax] && types[vcard.TypeWork]:
		return "BusinessFaxNumber"
	case types[vcard.TypeFax]:
		return "HomeFaxNumber"
	case types[vcard.TypeCell]:
		return "MobileTelephoneNumber"
	case types[vcard.TypePager]:
		return "PagerNumber"
	case types[vcard.TypeWork]:
		return "BusinessTelephoneNumber"
	}
	return "HomeTelephoneNumber"
}

func vcardToSIF(content string) (string, error) {
	card, err := vcard.NewDecoder(strings.NewReader(content)).Decode()
	if err != nil {
		return "", fmt.Errorf("could not decode vcard: %w", err)
	}

	fields := map[string]string{}
	for _, m := range sifContactFields {
		fields[m.sif] = card.Value(m.vcard)
	}

	if name := card.Name(); name != nil {
		fields["FirstName"] = name.GivenName
		fields["MiddleName"] = name.AdditionalName
		fields["LastName"] = name.FamilyName
		fields["Title"] = name.HonorificPrefix
		fields["Suffix"] = name.HonorificSuffix
	}

	if org := card.Value(vcard.FieldOrganization); org != "" {
		parts := strings.SplitN(org, ";", 2)
		fields["CompanyName"] = parts[0]
		if len(parts) == 2 {
			fields["Department"] = parts[1]
		}
	}

	for _, f := range card[vcard.FieldTelephone] {
		key := phoneSIFField(fieldTypes(f))
		if fields[key] == "" {
			fields[key] = f.Value
		}
	}

	for i, email := range card.Values(vcard.FieldEmail) {
		if i > 2 {
			break
		}
		fields["Email"+strconv.Itoa(i+1)+"Address"] = email
	}

	for _, addr := range card.Addresses() {
		prefix := "Home"
		if fieldTypes(addr.Field)[vcard.TypeWork] {
			prefix = "Business"
		}
		fields[prefix+"AddressStreet"] = addr.StreetAddress
		fields[prefix+"AddressCity"] = addr.Locality
		fields[prefix+"AddressState"] = addr.Region
		fields[prefix+"AddressPostalCode"] = addr.PostalCode
		fields[prefix+"AddressCountry"] = addr.Country
	}

	return writeSIF(sifContact, fields), nil
}

var sifDateLayouts = []struct {
	layout string
	allDay bool
}{
	{"20060102T150405Z", false},
	{"20060102T150405", false},
	{"2006-01-02", true},
	{"20060102", true},
}

func parseSIFDate(value string) (time.Time, bool) {
	value = strings.TrimSpace(value)
	for _, l := range sifDateLayouts {
		if t, err := time.Parse(l.layout, value); err == nil {
			return t, l.allDay
		}
	}
	return time.Time{}, false
}

func formatSIFDate(t time.Time, allDay bool) string {
	if t.IsZero() {
		return ""
	}
	if allDay {
		return t.Format("2006-01-02")
	}
	return t.UTC().Format("20060102T150405Z")
}

func setICalDate(props ical.Props, name, value string, forceAllDay bool) {
	t, allDay := parseSIFDate(value)
	if t.IsZero() {
		return
	}
	if allDay || forceAllDay {
		props.SetDate(name, t)
	} else {
		props.SetDateTime(name, t)
	}
}

func setICalText(props ical.Props, name, value string) {
	if value != "" {
		props.SetText(name, value)
	}
}

func newCalendar() *ical.Calendar {
	cal := ical.NewCalendar()
	cal.Props.SetText(ical.PropVersion, "2.0")
	cal.Props.SetText(ical.PropProductID, "-//go-syncml//SyncML Server//EN")
	return cal
}

func encodeCalendar(cal *ical.Calendar) (string, error) {
	var b bytes.Buffer
	err := ical.NewEncoder(&b).Encode(cal)
	if err != nil {
		return "", fmt.Errorf("could not encode icalendar: %w", err)
	}
	return b.String(), nil
}

var sensitivityClasses = map[string]string{
	"0": "PUBLIC",
	"1": "PRIVATE",
	"2": "PRIVATE",
	"3": "CONFIDENTIAL",
}

func sifToEvent(fields map[string]string) (string, error) {
	event := ical.NewEvent()
	event.Props.SetText(ical.PropUID, uuid.New().String())
	event.Props.SetDateTime(ical.PropDateTimeStamp, time.Now().UTC())

	allDay := fields["AllDayEvent"] == "1"
	setICalText(event.Props, ical.PropSummary, fields["Subject"])
	setICalText(event.Props, ical.PropDescription, fields["Body"])
	setICalText(event.Props, ical.PropLocation, fields["Location"])
	setICalText(event.Props, ical.PropCategories, fields["Categories"])
	setICalText(event.Props, ical.PropClass, sensitivityClasses[fields["Sensitivity"]])
	setICalDate(event.Props, ical.PropDateTimeStart, fields["Start"], allDay)
	setICalDate(event.Props, ical.PropDateTimeEnd, fields["End"], allDay)

	cal := newCalendar()
	cal.Children = append(cal.Children, event.Component)
	return encodeCalendar(cal)
}

var importancePriorities = map[string]string{
	"0": "9",
	"1": "5",
	"2": "1",
}

func sifToTask(fields map[string]string) (string, error) {
	todo := ical.NewComponent(ical.CompToDo)
	todo.Props.SetText(ical.PropUID, uuid.New().String())
	todo.Props.SetDateTime(ical.PropDateTimeStamp, time.Now().UTC())

	setICalText(todo.Props, ical.PropSummary, fields["Subject"])
	setICalText(todo.Props, ical.PropDescription, fields["Body"])
	setICalText(todo.Props, ical.PropCategories, fields["Categories"])
	setICalText(todo.Props, ical.PropClass, sensitivityClasses[fields["Sensitivity"]])
	setICalDate(todo.Props, ical.PropDateTimeStart, fields["StartDate"], false)
	setICalDate(todo.Props, ical.PropDue, fields["DueDate"], false)

	if fields["Complete"] == "1" {
		todo.Props.SetText(ical.PropStatus, "COMPLETED")
	} else {
		todo.Props.SetText(ical.PropStatus, "NEEDS-ACTION")
	}
	if priority, ok := importancePriorities[fields["Importance"]]; ok {
		prop := ical.NewProp(ical.PropPriority)
		prop.Value = priority
		todo.Props.Set(prop)
	}

	cal := newCalendar()
	cal.Children = append(cal.Children, todo)
	return encodeCalendar(cal)
}

func icalText(props ical.Props, name string) string {
	prop := props.Get(name)
	if prop == nil {
		return ""
	}
	text, err := prop.Text()
	if err != nil {
		return prop.Value
	}
	return text
}

func icalDate(props ical.Props, name string) string {
	prop := props.Get(name)
	if prop == nil {
		return ""
	}
	allDay := prop.ValueType() == ical.ValueDate || len(prop.Value) == 8
	t, err := prop.DateTime(time.UTC)
	if err != nil {
		return ""
	}
	return formatSIFDate(t, allDay)
}

func calendarToSIF(content, kind string) (string, error) {
	cal, err := ical.NewDecoder(strings.NewReader(content)).Decode()
	if err != nil {
		return "", fmt.Errorf("could not decode icalendar: %w", err)
	}

	want := ical.CompEvent
	if kind == sifTask {
		want = ical.CompToDo
	}
	var comp *ical.Component
	for _, child := range cal.Children {
		if child.Name == want {
			comp = child
			break
		}
	}
	if comp == nil {
		return "", fmt.Errorf("no %s in calendar", want)
	}

	fields := map[string]string{
		"Subject":    icalText(comp.Props, ical.PropSummary),
		"Body":       icalText(comp.Props, ical.PropDescription),
		"Categories": icalText(comp.Props, ical.PropCategories),
	}
	switch icalText(comp.Props, ical.PropClass) {
	case "PRIVATE":
		fields["Sensitivity"] = "2"
	case "CONFIDENTIAL":
		fields["Sensitivity"] = "3"
	default:
		fields["Sensitivity"] = "0"
	}

	if kind == sifEvent {
		fields["Location"] = icalText(comp.Props, ical.PropLocation)
		fields["Start"] = icalDate(comp.Props, ical.PropDateTimeStart)
		fields["End"] = icalDate(comp.Props, ical.PropDateTimeEnd)
		if p := comp.Props.Get(ical.PropDateTimeStart); p != nil && (p.ValueType() == ical.ValueDate || len(p.Value) == 8) {
			fields["AllDayEvent"] = "1"
		} else {
			fields["AllDayEvent"] = "0"
		}
		return writeSIF(sifEvent, fields), nil
	}

	fields["StartDate"] = icalDate(comp.Props, ical.PropDateTimeStart)
	fields["DueDate"] = icalDate(comp.Props, ical.PropDue)
	if strings.EqualFold(icalText(comp.Props, ical.PropStatus), "COMPLETED") {
		fields["Complete"] = "1"
	} else {
		fields["Complete"] = "0"
	}
	if priority, err := strconv.Atoi(icalText(comp.Props, ical.PropPriority)); err == nil && priority > 0 {
		switch {
		case priority < 5:
			fields["Importance"] = "2"
		case priority == 5:
			fields["Importance"] = "1"
		default:
			fields["Importance"] = "0"
		}
	} else {
		fields["Importance"] = "1"
	}
	return writeSIF(sifTask, fields), nil
}
