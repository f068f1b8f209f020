// SPDX-License-Identifier: GPL-3.0-or-later
package syncml

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync"
	"testing"

	"github.com/CrawX/go-syncml/domain"
	"github.com/CrawX/go-syncml/domain/mocks"
	"github.com/CrawX/go-syncml/log"
	"github.com/CrawX/go-syncml/wbxml"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testRespURI = "http://sync.example.com/syncml"

func newTestEngine(t *testing.T, backend domain.Backend) (*Engine, *memSessions) {
	log.InitLogging("error")
	sessions := newMemSessions()
	e, err := NewEngine(backend, sessions, ServerName("test-server"))
	require.NoError(t, err)
	return e, sessions
}

// clientMessage wraps body commands into a SyncML 1.1 message.
func clientMessage(msgID int, cred bool, body string) string {
	credentials := ""
	if cred {
		credentials = `<Cred><Meta><Format xmlns="syncml:metinf">b64</Format><Type xmlns="syncml:metinf">syncml:auth-basic</Type></Meta><Data>YWxpY2U6c2VjcmV0</Data></Cred>`
	}
	return fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<SyncML xmlns="SYNCML:SYNCML1.1">
<SyncHdr><VerDTD>1.1</VerDTD><VerProto>SyncML/1.1</VerProto><SessionID>1</SessionID><MsgID>%d</MsgID>
<Target><LocURI>http://sync.example.com/syncml</LocURI></Target><Source><LocURI>IMEI:1234</LocURI></Source>%s
<Meta><MaxMsgSize xmlns="syncml:metinf">20000</MaxMsgSize></Meta></SyncHdr>
<SyncBody>%s</SyncBody>
</SyncML>`, msgID, credentials, body)
}

const alertContacts = `<Alert><CmdID>1</CmdID><Data>200</Data><Item><Target><LocURI>./contacts</LocURI></Target><Source><LocURI>card</LocURI></Source>
<Meta><Anchor xmlns="syncml:metinf"><Last>1</Last><Next>2</Next></Anchor></Meta></Item></Alert>`

var basicCredentials = domain.Credentials{Data: "YWxpY2U6c2VjcmV0", Format: "b64", Type: AuthTypeBasic}

func TestEngine_Session(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	ctx := context.Background()
	backend := mocks.NewMockBackend(ctrl)
	expectBackendBasics(backend)
	e, sessions := newTestEngine(t, backend)

	// initialization: authentication and sync alert
	backend.EXPECT().CheckAuthentication(gomock.Any(), basicCredentials).Return("alice", true, nil)
	backend.EXPECT().ReadSyncAnchors(gomock.Any(), testPartner, "./contacts").Return(nil, nil)
	backend.EXPECT().EraseMap(gomock.Any(), testPartner, "./contacts").Return(nil)

	resp, err := e.Process(ctx, []byte(clientMessage(1, true, alertContacts+"<Final/>")), MimeSyncMLXML, testRespURI)
	require.NoError(t, err)
	body := string(resp.Body)

	assert.Equal(t, MimeSyncMLXML, resp.ContentType)
	assert.False(t, resp.SessionClosed)
	assert.True(t, strings.HasPrefix(body, xmlHeader))
	assert.Contains(t, body, `<Cmd>SyncHdr</Cmd><TargetRef>http://sync.example.com/syncml</TargetRef><SourceRef>IMEI:1234</SourceRef><Data>212</Data>`)
	assert.Contains(t, body, `<Cmd>Alert</Cmd><TargetRef>./contacts</TargetRef><SourceRef>card</SourceRef><Data>508</Data>`)
	assert.Contains(t, body, `<Alert><CmdID>3</CmdID><Data>201</Data><Item><Target><LocURI>card</LocURI></Target><Source><LocURI>./contacts</LocURI></Source>`)
	assert.Contains(t, body, `<Next>1600000000</Next>`)
	assert.Contains(t, body, `<Get><CmdID>4</CmdID>`)
	assert.Contains(t, body, `<Final></Final>`)
	assert.Equal(t, 1, sessions.len())

	// client changes, answered by the server changes
	backend.EXPECT().AddEntry(gomock.Any(), testPartner, "./contacts", vcardEntry("BEGIN:VCARD"), "c1").Return("s1", nil)
	backend.EXPECT().GetServerChanges(gomock.Any(), testPartner, "./contacts", int64(0), int64(1600000000)).Return(&domain.Changes{
		Adds: []domain.Change{{SUID: "s9"}},
	}, nil)
	backend.EXPECT().RetrieveEntry(gomock.Any(), testPartner, "./contacts", "s9", "text/x-vcard").Return(vcardEntry("BEGIN:VCARD\nFN:Bob"), nil)

	syncBody := `<Sync><CmdID>2</CmdID><Target><LocURI>./contacts</LocURI></Target><Source><LocURI>card</LocURI></Source>
<Add><CmdID>3</CmdID><Meta><Type xmlns="syncml:metinf">text/x-vcard</Type></Meta><Item><Source><LocURI>c1</LocURI></Source><Data>BEGIN:VCARD</Data></Item></Add>
</Sync><Final/>`
	resp, err = e.Process(ctx, []byte(clientMessage(2, false, syncBody)), MimeSyncMLXML, testRespURI)
	require.NoError(t, err)
	body = string(resp.Body)

	assert.False(t, resp.SessionClosed)
	assert.Contains(t, body, `<Cmd>SyncHdr</Cmd><TargetRef>http://sync.example.com/syncml</TargetRef><SourceRef>IMEI:1234</SourceRef><Data>200</Data>`)
	assert.Contains(t, body, `<Cmd>Sync</Cmd><TargetRef>./contacts</TargetRef><SourceRef>card</SourceRef><Data>200</Data>`)
	assert.Contains(t, body, `<CmdRef>3</CmdRef><Cmd>Add</Cmd><SourceRef>c1</SourceRef><Data>201</Data>`)
	assert.Contains(t, body, `<Item><Source><LocURI>s9</LocURI></Source><Data><![CDATA[BEGIN:VCARD
FN:Bob]]></Data></Item>`)
	assert.Contains(t, body, `<Final></Final>`)

	addCmdID := regexp.MustCompile(`<Add><CmdID>(\d+)</CmdID>`).FindStringSubmatch(body)
	require.Len(t, addCmdID, 2)

	// status and map for the server's add close the session
	backend.EXPECT().CreateUidMap(gomock.Any(), testPartner, "./contacts", "c9", "s9", int64(0)).Return(nil)
	backend.EXPECT().WriteSyncAnchors(gomock.Any(), testPartner, "./contacts", "2", "1600000000").Return(nil)

	mapping := fmt.Sprintf(`<Status><CmdID>1</CmdID><MsgRef>2</MsgRef><CmdRef>%s</CmdRef><Cmd>Add</Cmd><SourceRef>s9</SourceRef><Data>201</Data></Status>
<Map><CmdID>2</CmdID><Target><LocURI>./contacts</LocURI></Target><Source><LocURI>card</LocURI></Source>
<MapItem><Target><LocURI>s9</LocURI></Target><Source><LocURI>c9</LocURI></Source></MapItem></Map><Final/>`, addCmdID[1])
	resp, err = e.Process(ctx, []byte(clientMessage(3, false, mapping)), MimeSyncMLXML, testRespURI)
	require.NoError(t, err)
	body = string(resp.Body)

	assert.True(t, resp.SessionClosed)
	assert.Contains(t, body, `<Cmd>Map</Cmd><TargetRef>./contacts</TargetRef><SourceRef>card</SourceRef><Data>200</Data>`)
	assert.Contains(t, body, `<Final></Final>`)
	assert.Equal(t, 0, sessions.len())
}

func TestEngine_AdvertisedLimits(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	log.InitLogging("error")
	backend := mocks.NewMockBackend(ctrl)
	expectBackendBasics(backend)
	backend.EXPECT().CheckAuthentication(gomock.Any(), basicCredentials).Return("alice", true, nil)
	backend.EXPECT().ReadSyncAnchors(gomock.Any(), testPartner, "./contacts").Return(nil, nil)
	backend.EXPECT().EraseMap(gomock.Any(), testPartner, "./contacts").Return(nil)

	e, err := NewEngine(backend, newMemSessions(), MaxMsgSize(50000), MaxObjSize(200000))
	require.NoError(t, err)

	resp, err := e.Process(context.Background(), []byte(clientMessage(1, true, alertContacts+"<Final/>")), MimeSyncMLXML, testRespURI)
	require.NoError(t, err)
	body := string(resp.Body)

	assert.Contains(t, body, `<MaxMsgSize xmlns="syncml:metinf">50000</MaxMsgSize>`)
	assert.Equal(t, 2, strings.Count(body, ">200000</MaxObjSize>"), "header and sync alert")
	assert.NotContains(t, body, ">1000000<")
	assert.NotContains(t, body, ">4000000<")
}

func TestEngine_Authentication(t *testing.T) {
	tests := []struct {
		name      string
		cred      bool
		setup     func(b *mocks.MockBackend)
		hdrStatus int
	}{
		{"missing", false, func(b *mocks.MockBackend) {}, ResponseCredentialsMissing},
		{
			"invalid", true,
			func(b *mocks.MockBackend) {
				b.EXPECT().CheckAuthentication(gomock.Any(), basicCredentials).Return("", false, nil)
			},
			ResponseInvalidCredentials,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			backend := mocks.NewMockBackend(ctrl)
			expectBackendBasics(backend)
			tc.setup(backend)
			e, _ := newTestEngine(t, backend)

			resp, err := e.Process(context.Background(), []byte(clientMessage(1, tc.cred, alertContacts+"<Final/>")), MimeSyncMLXML, testRespURI)
			require.NoError(t, err)
			body := string(resp.Body)

			assert.Contains(t, body, fmt.Sprintf(`<Chal><Meta><Type xmlns="syncml:metinf">syncml:auth-basic</Type><Format xmlns="syncml:metinf">b64</Format></Meta></Chal><Data>%d</Data>`, tc.hdrStatus))
			assert.Contains(t, body, `<Cmd>Alert</Cmd><Data>401</Data>`)
			assert.NotContains(t, body, "<Alert>")
		})
	}
}

func TestEngine_Errors(t *testing.T) {
	tests := []struct {
		name string
		body string
		err  error
	}{
		{"unknown command", clientMessage(1, false, "<Frobnicate><CmdID>1</CmdID></Frobnicate>"), ErrUnknownCommand},
		{"no header", `<SyncML xmlns="SYNCML:SYNCML1.1"><SyncBody><Final/></SyncBody></SyncML>`, ErrNoHeader},
		{"malformed", `<SyncML><SyncHdr>`, nil},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			backend := mocks.NewMockBackend(ctrl)
			expectBackendBasics(backend)
			e, _ := newTestEngine(t, backend)

			_, err := e.Process(context.Background(), []byte(tc.body), MimeSyncMLXML, testRespURI)
			assert.Error(t, err)
			if tc.err != nil {
				assert.True(t, errors.Is(err, tc.err))
			}
		})
	}
}

func TestEngine_UnsupportedCommands(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	backend := mocks.NewMockBackend(ctrl)
	expectBackendBasics(backend)
	backend.EXPECT().CheckAuthentication(gomock.Any(), gomock.Any()).Return("alice", true, nil)
	e, _ := newTestEngine(t, backend)

	body := `<Atomic><CmdID>1</CmdID></Atomic><Get><CmdID>2</CmdID><Item><Target><LocURI>./devinf11</LocURI></Target></Item></Get>
<Get><CmdID>3</CmdID><Item><Target><LocURI>./contacts</LocURI></Target></Item></Get>`
	resp, err := e.Process(context.Background(), []byte(clientMessage(1, true, body)), MimeSyncMLXML, testRespURI)
	require.NoError(t, err)
	xml := string(resp.Body)

	assert.Contains(t, xml, `<CmdRef>1</CmdRef><Cmd>Atomic</Cmd><Data>406</Data>`)
	assert.Contains(t, xml, `<CmdRef>2</CmdRef><Cmd>Get</Cmd><TargetRef>./devinf11</TargetRef><Data>200</Data>`)
	assert.Contains(t, xml, `<Results>`)
	assert.Contains(t, xml, `<CmdRef>3</CmdRef><Cmd>Get</Cmd><TargetRef>./contacts</TargetRef><Data>404</Data>`)
	assert.NotContains(t, xml, `<Final>`)
}

func TestEngine_DevInfPut(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	backend := mocks.NewMockBackend(ctrl)
	expectBackendBasics(backend)
	backend.EXPECT().CheckAuthentication(gomock.Any(), gomock.Any()).Return("alice", true, nil)
	e, sessions := newTestEngine(t, backend)

	put := strings.Replace(devInfPut, "%s", devInfDoc, 1)
	resp, err := e.Process(context.Background(), []byte(clientMessage(1, true, put)), MimeSyncMLXML, testRespURI)
	require.NoError(t, err)
	assert.Contains(t, string(resp.Body), `<Cmd>Put</Cmd><SourceRef>./devinf11</SourceRef><Data>200</Data>`)

	data, err := sessions.LoadSession(context.Background(), sessionKey("IMEI:1234", "1"))
	require.NoError(t, err)
	state := &State{}
	require.NoError(t, state.UnmarshalBinary(data))
	assert.Equal(t, "Nokia", state.DeviceInfo.Man)
	assert.Equal(t, "Nokia", state.Device().Name())
}

func TestEngine_ChunkedItem(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	ctx := context.Background()
	backend := mocks.NewMockBackend(ctrl)
	expectBackendBasics(backend)
	backend.EXPECT().CheckAuthentication(gomock.Any(), gomock.Any()).Return("alice", true, nil)
	backend.EXPECT().ReadSyncAnchors(gomock.Any(), testPartner, "./contacts").Return(&domain.Anchors{ClientAnchor: "1", ServerAnchor: "100"}, nil)
	e, _ := newTestEngine(t, backend)

	_, err := e.Process(ctx, []byte(clientMessage(1, true, alertContacts)), MimeSyncMLXML, testRespURI)
	require.NoError(t, err)

	chunk := `<Sync><CmdID>1</CmdID><Target><LocURI>./contacts</LocURI></Target><Source><LocURI>card</LocURI></Source>
<Add><CmdID>2</CmdID><Meta><Type xmlns="syncml:metinf">text/x-vcard</Type></Meta><Item><Source><LocURI>c1</LocURI></Source><Meta><Size xmlns="syncml:metinf">18</Size></Meta><Data>%s</Data>%s</Item></Add></Sync>`

	resp, err := e.Process(ctx, []byte(clientMessage(2, false, fmt.Sprintf(chunk, "BEGIN:VCARD", "<MoreData/>"))), MimeSyncMLXML, testRespURI)
	require.NoError(t, err)
	body := string(resp.Body)
	assert.Contains(t, body, `<Cmd>Add</Cmd><SourceRef>c1</SourceRef><Data>213</Data>`)
	assert.Contains(t, body, `<Alert><CmdID>4</CmdID><Data>222</Data>`)

	backend.EXPECT().AddEntry(gomock.Any(), testPartner, "./contacts", vcardEntry("BEGIN:VCARD\nN:Doe"), "c1").Return("s1", nil)
	resp, err = e.Process(ctx, []byte(clientMessage(3, false, fmt.Sprintf(chunk, "\nN:Doe", ""))), MimeSyncMLXML, testRespURI)
	require.NoError(t, err)
	body = string(resp.Body)
	assert.Contains(t, body, `<Cmd>Add</Cmd><SourceRef>c1</SourceRef><Data>201</Data>`)
	assert.NotContains(t, body, `<Data>222</Data>`)
}

func TestEngine_WBXML(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	backend := mocks.NewMockBackend(ctrl)
	expectBackendBasics(backend)
	backend.EXPECT().CheckAuthentication(gomock.Any(), basicCredentials).Return("alice", true, nil)
	backend.EXPECT().ReadSyncAnchors(gomock.Any(), testPartner, "./contacts").Return(nil, nil)
	backend.EXPECT().EraseMap(gomock.Any(), testPartner, "./contacts").Return(nil)
	e, _ := newTestEngine(t, backend)

	enc := wbxml.NewEncoder(wbxml.SyncMLDTD(Version11))
	require.NoError(t, parseXML(strings.NewReader(clientMessage(1, true, alertContacts+"<Final/>")), enc, nil))
	msg, err := enc.Output()
	require.NoError(t, err)

	resp, err := e.Process(context.Background(), msg, MimeSyncMLWBXML, testRespURI)
	require.NoError(t, err)
	assert.Equal(t, MimeSyncMLWBXML, resp.ContentType)
	assert.False(t, bytes.HasPrefix(resp.Body, []byte("<?xml")))

	rec := &recorder{}
	_, err = wbxml.Decode(resp.Body, rec)
	require.NoError(t, err)
	assert.Contains(t, rec.chars, "212")
	assert.Contains(t, rec.chars, "201")
	assert.Contains(t, rec.chars, MimeDevInfWBXML)
	assert.Contains(t, rec.elements, "Final")
}

func TestSessionLocks(t *testing.T) {
	locks := newSessionLocks()
	counter := 0

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := locks.lock("session")
			defer unlock()
			v := counter
			v++
			counter = v
		}()
	}
	wg.Wait()

	assert.Equal(t, 20, counter)
	assert.Empty(t, locks.locks)
}

func TestSessionKey(t *testing.T) {
	assert.Equal(t, sessionKey("IMEI:1234", "1"), sessionKey("IMEI:1234", "1"))
	assert.NotEqual(t, sessionKey("IMEI:1234", "1"), sessionKey("IMEI:1234", "2"))
	assert.Len(t, sessionKey("IMEI:1234", "1"), 32)
}
