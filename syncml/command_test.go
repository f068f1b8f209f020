// SPDX-License-Identifier: GPL-3.0-or-later
package syncml

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseCommand(t *testing.T, doc string) Command {
	start := strings.IndexByte(doc, '<') + 1
	end := strings.IndexAny(doc[start:], " >/") + start

	cmd, err := newCommand(doc[start:end])
	require.NoError(t, err)
	require.NoError(t, parseXML(strings.NewReader(doc), cmd, nil))
	return cmd
}

func TestNewCommand(t *testing.T) {
	tests := []struct {
		element string
		err     error
	}{
		{"Alert", nil},
		{"Sync", nil},
		{"Map", nil},
		{"Status", nil},
		{"Final", nil},
		{"Put", nil},
		{"Results", nil},
		{"Get", nil},
		{"Atomic", nil},
		{"Sequence", nil},
		{"Frobnicate", ErrUnknownCommand},
		{"Add", ErrUnknownCommand},
	}
	for _, tc := range tests {
		t.Run(tc.element, func(t *testing.T) {
			cmd, err := newCommand(tc.element)
			if tc.err != nil {
				assert.True(t, errors.Is(err, tc.err))
				assert.Nil(t, cmd)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tc.element, cmd.Name())
		})
	}
}

func TestSyncHdr(t *testing.T) {
	hdr := &syncHdr{command: command{name: "SyncHdr"}}
	doc := `<SyncHdr>
	<VerDTD>1.1</VerDTD><VerProto>SyncML/1.1</VerProto>
	<SessionID>1</SessionID><MsgID>2</MsgID>
	<Target><LocURI>http://sync.example.com/syncml</LocURI></Target>
	<Source><LocURI>IMEI:1234</LocURI><LocName>alice</LocName></Source>
	<Cred><Meta><Format xmlns="syncml:metinf">b64</Format><Type xmlns="syncml:metinf">syncml:auth-basic</Type></Meta><Data>YWxpY2U6c2VjcmV0</Data></Cred>
	<Meta><MaxMsgSize xmlns="syncml:metinf">10000</MaxMsgSize><MaxObjSize xmlns="syncml:metinf">50000</MaxObjSize></Meta>
</SyncHdr>`
	require.NoError(t, parseXML(strings.NewReader(doc), hdr, nil))

	assert.Equal(t, "1.1", hdr.verDTD)
	assert.Equal(t, "1", hdr.sessionID)
	assert.Equal(t, "2", hdr.msgID)
	assert.Equal(t, "http://sync.example.com/syncml", hdr.targetURI)
	assert.Equal(t, "IMEI:1234", hdr.sourceURI)
	assert.Equal(t, "alice", hdr.locName)
	assert.Equal(t, "b64", hdr.credFormat)
	assert.Equal(t, AuthTypeBasic, hdr.credType)
	assert.Equal(t, "YWxpY2U6c2VjcmV0", hdr.credData)
	assert.Equal(t, 10000, hdr.maxMsgSize)
	assert.Equal(t, 50000, hdr.maxObjSize)
}

func TestAlertCommand(t *testing.T) {
	cmd := parseCommand(t, `<Alert><CmdID>3</CmdID><Data>200</Data>
	<Item><Target><LocURI>./contacts</LocURI></Target><Source><LocURI>card</LocURI></Source>
	<Meta><Anchor xmlns="syncml:metinf"><Last>111</Last><Next>222</Next></Anchor></Meta></Item>
</Alert>`)

	a := cmd.(*alert)
	assert.Equal(t, 3, a.CmdID())
	assert.Equal(t, AlertTwoWay, a.alert)
	assert.Equal(t, "./contacts", a.targetLocURI)
	assert.Equal(t, "card", a.sourceLocURI)
	assert.Equal(t, "111", a.metaAnchorLast)
	assert.Equal(t, "222", a.metaAnchorNext)
}

func TestSyncCommand(t *testing.T) {
	cmd := parseCommand(t, `<Sync><CmdID>4</CmdID>
	<Target><LocURI>./contacts</LocURI></Target><Source><LocURI>card</LocURI></Source>
	<Add><CmdID>5</CmdID><Meta><Type xmlns="syncml:metinf">text/x-vcard</Type></Meta>
		<Item><Source><LocURI>1</LocURI></Source><Data><![CDATA[BEGIN:VCARD
END:VCARD]]></Data></Item>
		<Item><Source><LocURI>2</LocURI></Source><Meta><Size xmlns="syncml:metinf">100</Size></Meta><Data>part</Data><MoreData/></Item>
	</Add>
	<Replace><CmdID>6</CmdID><Meta><Format xmlns="syncml:metinf">b64</Format></Meta>
		<Item><Source><LocURI>3</LocURI></Source><Target><LocURI>s3</LocURI></Target><Meta><Type xmlns="syncml:metinf">text/x-vnote</Type></Meta><Data>Zm9v</Data></Item>
	</Replace>
	<Delete><CmdID>7</CmdID><Item><Source><LocURI>4</LocURI></Source></Item></Delete>
</Sync>`)

	s := cmd.(*syncCommand)
	assert.Equal(t, 4, s.CmdID())
	assert.Equal(t, "./contacts", s.targetURI)
	assert.Equal(t, "card", s.sourceURI)
	require.Len(t, s.items, 4)

	assert.Equal(t, &SyncItem{ElementType: "Add", CmdID: 5, CUID: "1", ContentType: "text/x-vcard", Content: "BEGIN:VCARD\nEND:VCARD"}, s.items[0])
	assert.Equal(t, &SyncItem{ElementType: "Add", CmdID: 5, CUID: "2", ContentType: "text/x-vcard", Content: "part", Size: 100, MoreData: true}, s.items[1])
	assert.Equal(t, &SyncItem{ElementType: "Replace", CmdID: 6, CUID: "3", SUID: "s3", ContentType: "text/x-vnote", ContentFormat: "b64", Content: "Zm9v"}, s.items[2])
	assert.Equal(t, &SyncItem{ElementType: "Delete", CmdID: 7, CUID: "4"}, s.items[3])
}

func TestMapCommand(t *testing.T) {
	cmd := parseCommand(t, `<Map><CmdID>8</CmdID>
	<Target><LocURI>./contacts</LocURI></Target><Source><LocURI>card</LocURI></Source>
	<MapItem><Target><LocURI>s1</LocURI></Target><Source><LocURI>c1</LocURI></Source></MapItem>
	<MapItem><Target><LocURI>s2</LocURI></Target><Source><LocURI>c2</LocURI></Source></MapItem>
</Map>`)

	m := cmd.(*mapCommand)
	assert.Equal(t, "./contacts", m.targetURI)
	assert.Equal(t, []mapItem{{suid: "s1", cuid: "c1"}, {suid: "s2", cuid: "c2"}}, m.items)
}

func TestStatusCommand(t *testing.T) {
	cmd := parseCommand(t, `<Status><CmdID>2</CmdID><MsgRef>3</MsgRef><CmdRef>5</CmdRef><Cmd>Replace</Cmd>
	<TargetRef>c1</TargetRef><SourceRef>s1</SourceRef><Data>404</Data></Status>`)

	s := cmd.(*status)
	assert.Equal(t, "3", s.msgRef)
	assert.Equal(t, 5, s.cmdRef)
	assert.Equal(t, "Replace", s.cmd)
	assert.Equal(t, ResponseNotFound, s.code)
	assert.Equal(t, "c1", s.targetRef)
	assert.Equal(t, "s1", s.sourceRef)
}

const devInfPut = `<Put><CmdID>2</CmdID><Meta><Type xmlns="syncml:metinf">application/vnd.syncml-devinf+xml</Type></Meta>
	<Item><Source><LocURI>./devinf11</LocURI></Source><Data>%s</Data></Item></Put>`

const devInfDoc = `<DevInf xmlns="syncml:devinf"><VerDTD>1.1</VerDTD><Man>Nokia</Man><Mod>6680</Mod><DevID>IMEI:1234</DevID><DevTyp>phone</DevTyp>
<SupportNumberOfChanges/>
<DataStore><SourceRef>./C\Contacts.cdb</SourceRef><Rx-Pref><CTType>text/x-vcard</CTType><VerCT>2.1</VerCT></Rx-Pref>
<Tx-Pref><CTType>text/x-vcard</CTType><VerCT>2.1</VerCT></Tx-Pref><SyncCap><SyncType>1</SyncType><SyncType>2</SyncType></SyncCap></DataStore>
</DevInf>`

func TestDevInfCommand(t *testing.T) {
	escaped := strings.NewReplacer("<", "&lt;", ">", "&gt;").Replace(devInfDoc)
	tests := []struct {
		name string
		data string
	}{
		{"inline", devInfDoc},
		{"escaped", escaped},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cmd := parseCommand(t, strings.Replace(devInfPut, "%s", tc.data, 1))

			c := cmd.(*devInfCommand)
			assert.Equal(t, "./devinf11", c.sourceURI)
			di := c.parser.DeviceInfo()
			assert.Equal(t, "Nokia", di.Man)
			assert.Equal(t, "6680", di.Mod)
			assert.True(t, di.SupportNumberOfChanges)
			require.Len(t, di.DataStores, 1)
			assert.Equal(t, "text/x-vcard", di.DataStores[0].RxPref.CTType)
		})
	}
}
