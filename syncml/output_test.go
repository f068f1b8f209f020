// SPDX-License-Identifier: GPL-3.0-or-later
package syncml

import (
	"strings"
	"testing"

	"github.com/CrawX/go-syncml/wbxml"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestOutput(authenticated bool) (*Output, *State) {
	state := NewState("1", "IMEI:1234")
	state.SetVersion("1.1")
	state.MessageID = "1"
	state.TargetURI = "http://sync.example.com/syncml"
	state.Authenticated = authenticated

	out := NewOutput(newXMLWriter(), state, "go-syncml-test")
	out.Init()
	out.BodyStart()
	return out, state
}

func outputString(t *testing.T, out *Output) string {
	out.End()
	data, err := out.Bytes()
	require.NoError(t, err)
	return string(data)
}

func TestOutput_Header(t *testing.T) {
	state := NewState("12", "IMEI:1234")
	state.SetVersion("1.1")
	state.MessageID = "3"
	state.TargetURI = "http://sync.example.com/syncml"
	state.User = "alice"

	out := NewOutput(newXMLWriter(), state, Manufacturer)
	out.Init()
	out.Header("http://sync.example.com/syncml?s=12")
	out.BodyStart()
	xml := outputString(t, out)

	assert.True(t, strings.HasPrefix(xml, `<SyncML xmlns="SYNCML:SYNCML1.1"><SyncHdr><VerDTD>1.1</VerDTD><VerProto>SyncML/1.1</VerProto><SessionID>12</SessionID><MsgID>3</MsgID>`))
	assert.Contains(t, xml, `<Target><LocURI>IMEI:1234</LocURI><LocName>alice</LocName></Target>`)
	assert.Contains(t, xml, `<Source><LocURI>http://sync.example.com/syncml</LocURI></Source>`)
	assert.Contains(t, xml, `<RespURI>http://sync.example.com/syncml?s=12</RespURI>`)
	assert.Contains(t, xml, `<Meta><MaxMsgSize xmlns="syncml:metinf">1000000</MaxMsgSize><MaxObjSize xmlns="syncml:metinf">4000000</MaxObjSize></Meta>`)
}

func TestOutput_HeaderLimits(t *testing.T) {
	state := NewState("12", "IMEI:1234")
	state.SetVersion("1.2")
	state.MessageID = "1"
	state.TargetURI = "http://sync.example.com/syncml"

	out := NewOutput(newXMLWriter(), state, Manufacturer)
	out.SetLimits(30000, 120000)
	out.Init()
	out.Header("")
	out.BodyStart()
	xml := outputString(t, out)

	assert.Contains(t, xml, `<Meta><MaxMsgSize xmlns="syncml:metinf">30000</MaxMsgSize><MaxObjSize xmlns="syncml:metinf">120000</MaxObjSize></Meta>`)
}

func TestOutput_Status(t *testing.T) {
	tests := []struct {
		name          string
		authenticated bool
		cmd           string
		code          int
		anchorNext    string
		anchorLast    string
		expected      []string
		notExpected   []string
	}{
		{
			"header ok", true, "SyncHdr", ResponseAuthenticationAccepted, "", "",
			[]string{`<CmdID>1</CmdID><MsgRef>1</MsgRef><CmdRef>0</CmdRef><Cmd>SyncHdr</Cmd>`, `<Data>212</Data>`},
			[]string{`<Chal>`},
		},
		{
			"header challenge", false, "SyncHdr", ResponseOK, "", "",
			[]string{`<Chal><Meta><Type xmlns="syncml:metinf">syncml:auth-basic</Type><Format xmlns="syncml:metinf">b64</Format></Meta></Chal><Data>401</Data>`},
			nil,
		},
		{
			"header missing credentials", false, "SyncHdr", ResponseCredentialsMissing, "", "",
			[]string{`<Chal>`, `<Data>407</Data>`},
			nil,
		},
		{
			"alert anchors", true, "Alert", ResponseOK, "20", "10",
			[]string{`<Data>200</Data><Item><Data><Anchor xmlns="syncml:metinf"><Last>10</Last><Next>20</Next></Anchor></Data></Item>`},
			[]string{`<Chal>`},
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			out, _ := newTestOutput(tc.authenticated)
			out.StatusWithAnchors(0, tc.cmd, tc.code, "target", "source", tc.anchorNext, tc.anchorLast)
			xml := outputString(t, out)

			assert.Contains(t, xml, `<TargetRef>target</TargetRef><SourceRef>source</SourceRef>`)
			for _, e := range tc.expected {
				assert.Contains(t, xml, e)
			}
			for _, e := range tc.notExpected {
				assert.NotContains(t, xml, e)
			}
		})
	}
}

func TestOutput_CmdIDs(t *testing.T) {
	out, _ := newTestOutput(true)
	out.Status(1, "Alert", ResponseOK, "", "")
	out.SyncStart("./contacts", "contacts", 2)
	first := out.SyncCommand("Add", SyncItemOutput{Content: "a", ContentType: "text/x-vcard", SUID: "s1"})
	second := out.SyncCommand("Delete", SyncItemOutput{CUID: "c2"})
	out.SyncEnd()
	xml := outputString(t, out)

	assert.Equal(t, 3, first)
	assert.Equal(t, 4, second)
	assert.Contains(t, xml, `<Sync><CmdID>2</CmdID><Target><LocURI>./contacts</LocURI></Target><Source><LocURI>contacts</LocURI></Source><NumberOfChanges>2</NumberOfChanges>`)
	assert.Contains(t, xml, `<Add><CmdID>3</CmdID><Meta><Type xmlns="syncml:metinf">text/x-vcard</Type></Meta><Item><Source><LocURI>s1</LocURI></Source><Data><![CDATA[a]]></Data></Item></Add>`)
	assert.Contains(t, xml, `<Delete><CmdID>4</CmdID><Item><Target><LocURI>c2</LocURI></Target></Item></Delete>`)
}

func TestOutput_SyncCommandEscaping(t *testing.T) {
	tests := []struct {
		name     string
		source   string
		content  string
		expected string
	}{
		{"cdata", "IMEI:1234", "a<b", `<Data><![CDATA[a<b]]></Data>`},
		{"cdata end", "IMEI:1234", "x]]>y", `<Data><![CDATA[x]]]]><![CDATA[>y]]></Data>`},
		{"escaped", "fol-abc", "a<b&c", `<Data>a&lt;b&amp;c</Data>`},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			out, state := newTestOutput(true)
			state.SourceURI = tc.source
			out.SyncCommand("Replace", SyncItemOutput{Content: tc.content, CUID: "1", Encoding: FormatBase64})
			xml := outputString(t, out)

			assert.Contains(t, xml, tc.expected)
			assert.Contains(t, xml, `<Meta><Format xmlns="syncml:metinf">b64</Format></Meta>`)
		})
	}
}

func TestOutput_SyncStartWithoutNumberOfChanges(t *testing.T) {
	out, _ := newTestOutput(true)
	out.SyncStart("./notes", "notes", -1)
	out.SyncEnd()
	xml := outputString(t, out)

	assert.NotContains(t, xml, "NumberOfChanges")
}

func TestOutput_DevInf(t *testing.T) {
	out, _ := newTestOutput(true)
	out.DevInf(4)
	xml := outputString(t, out)

	assert.Contains(t, xml, `<Results><CmdID>1</CmdID><MsgRef>1</MsgRef><CmdRef>4</CmdRef><Meta><Type xmlns="syncml:metinf">application/vnd.syncml-devinf+xml</Type></Meta>`)
	assert.Contains(t, xml, `<Source><LocURI>./devinf11</LocURI></Source>`)
	assert.Contains(t, xml, `<DevInf xmlns="syncml:devinf"><VerDTD>1.1</VerDTD><Man>go-syncml</Man><DevID>go-syncml-test</DevID><DevTyp>server</DevTyp><SupportLargeObjs></SupportLargeObjs><SupportNumberOfChanges></SupportNumberOfChanges>`)
	assert.Contains(t, xml, `<DataStore><SourceRef>contacts</SourceRef><Rx-Pref><CTType>text/directory</CTType><VerCT>3.0</VerCT></Rx-Pref><Rx><CTType>text/x-vcard</CTType><VerCT>2.1</VerCT></Rx>`)
	assert.Equal(t, 4, strings.Count(xml, "<DataStore>"))
}

func TestOutput_WBXML(t *testing.T) {
	state := NewState("1", "IMEI:1234")
	state.SetVersion("1.2")
	state.MessageID = "1"
	state.Authenticated = true
	state.WBXML = true

	out := NewOutput(newWBXMLWriter(state.Version), state, Manufacturer)
	out.Init()
	out.Header("")
	out.BodyStart()
	out.Status(0, "SyncHdr", ResponseOK, "target", "IMEI:1234")
	out.DevInf(2)
	out.End()
	data, err := out.Bytes()
	require.NoError(t, err)

	rec := &recorder{}
	_, err = wbxml.Decode(data, rec)
	require.NoError(t, err)
	assert.Contains(t, rec.elements, "SyncHdr")
	assert.Contains(t, rec.elements, "DevInf")
	assert.Contains(t, rec.elements, "DataStore")
	assert.Contains(t, rec.chars, "go-syncml")
	assert.Contains(t, rec.chars, "application/vnd.syncml-devinf+wbxml")
}

// recorder collects the events of a decoded document.
type recorder struct {
	elements []string
	chars    []string
}

func (r *recorder) StartElement(uri, element string) {
	r.elements = append(r.elements, element)
}

func (r *recorder) EndElement(uri, element string) {}

func (r *recorder) Characters(chars string) {
	r.chars = append(r.chars, chars)
}
