// SPDX-License-Identifier: GPL-3.0-or-later
package syncml

import "strconv"

const Manufacturer = "go-syncml"

type dataStoreInfo struct {
	sourceRef  string
	ctType     string
	verCT      string
	additional [][2]string
}

// dataStores are announced in the server's device information.
var dataStores = []dataStoreInfo{
	{"notes", "text/plain", "1.0", nil},
	{"contacts", "text/directory", "3.0", [][2]string{{"text/x-vcard", "2.1"}}},
	{"tasks", "text/calendar", "2.0", [][2]string{{"text/x-vcalendar", "1.0"}}},
	{"calendar", "text/calendar", "2.0", [][2]string{{"text/x-vcalendar", "1.0"}}},
}

// SyncItemOutput is one Add, Replace or Delete sent to the client.
type SyncItemOutput struct {
	Content     string
	ContentType string
	Encoding    string
	CUID        string
	SUID        string
}

// Output writes the commands of a server message. Command ids are counted
// per message starting at 1.
type Output struct {
	w     ContentWriter
	state *State
	devID string
	cmdID int
	uri   string

	maxMsgSize int
	maxObjSize int
}

func NewOutput(w ContentWriter, state *State, devID string) *Output {
	return &Output{w: w, state: state, devID: devID, cmdID: 1, maxMsgSize: ServerMaxMsgSize, maxObjSize: ServerMaxObjSize}
}

// SetLimits sets the sizes the server announces it accepts.
func (o *Output) SetLimits(maxMsgSize, maxObjSize int) {
	o.maxMsgSize = maxMsgSize
	o.maxObjSize = maxObjSize
}

func (o *Output) Size() int {
	return o.w.Size()
}

func (o *Output) Bytes() ([]byte, error) {
	return o.w.Output()
}

func (o *Output) element(uri, name, chars string) {
	o.w.StartElement(uri, name)
	o.w.Characters(chars)
	o.w.EndElement(uri, name)
}

func (o *Output) emptyElement(uri, name string) {
	o.w.StartElement(uri, name)
	o.w.EndElement(uri, name)
}

func (o *Output) locURI(parent, uri string) {
	o.w.StartElement(o.uri, parent)
	o.element(o.uri, "LocURI", uri)
	o.w.EndElement(o.uri, parent)
}

func (o *Output) outputCmdID() int {
	id := o.cmdID
	o.element(o.uri, "CmdID", strconv.Itoa(id))
	o.cmdID++
	return id
}

func (o *Output) Init() {
	o.uri = o.state.URI()
	o.w.StartElement(o.uri, "SyncML")
}

func (o *Output) Header(respURI string) {
	st := o.state
	meta := st.URIMeta()

	o.w.StartElement(o.uri, "SyncHdr")
	o.element(o.uri, "VerDTD", st.VerDTD())
	o.element(o.uri, "VerProto", st.ProtocolName())
	o.element(o.uri, "SessionID", st.SessionID)
	o.element(o.uri, "MsgID", st.MessageID)

	// The client's source is the server's target and vice versa.
	o.w.StartElement(o.uri, "Target")
	o.element(o.uri, "LocURI", st.SourceURI)
	if st.User != "" {
		o.element(o.uri, "LocName", st.User)
	}
	o.w.EndElement(o.uri, "Target")
	o.locURI("Source", st.TargetURI)

	if respURI != "" {
		o.element(o.uri, "RespURI", respURI)
	}

	o.w.StartElement(o.uri, "Meta")
	o.element(meta, "MaxMsgSize", strconv.Itoa(o.maxMsgSize))
	if st.Version > Version10 {
		o.element(meta, "MaxObjSize", strconv.Itoa(o.maxObjSize))
	}
	o.w.EndElement(o.uri, "Meta")

	o.w.EndElement(o.uri, "SyncHdr")
}

func (o *Output) BodyStart() {
	o.w.StartElement(o.uri, "SyncBody")
}

func (o *Output) Final() {
	o.emptyElement(o.uri, "Final")
}

func (o *Output) End() {
	o.w.EndElement(o.uri, "SyncBody")
	o.w.EndElement(o.uri, "SyncML")
}

// Status answers command cmdRef of the current client message.
func (o *Output) Status(cmdRef int, cmd string, code int, targetRef, sourceRef string) {
	o.StatusWithAnchors(cmdRef, cmd, code, targetRef, sourceRef, "", "")
}

// StatusWithAnchors is Status echoing the anchors of an Alert.
func (o *Output) StatusWithAnchors(cmdRef int, cmd string, code int, targetRef, sourceRef, anchorNext, anchorLast string) {
	st := o.state
	meta := st.URIMeta()

	o.w.StartElement(o.uri, "Status")
	o.outputCmdID()
	o.element(o.uri, "MsgRef", st.MessageID)
	o.element(o.uri, "CmdRef", strconv.Itoa(cmdRef))
	o.element(o.uri, "Cmd", cmd)
	if targetRef != "" {
		o.element(o.uri, "TargetRef", targetRef)
	}
	if sourceRef != "" {
		o.element(o.uri, "SourceRef", sourceRef)
	}

	// Ask unauthenticated clients for basic authentication.
	if cmd == "SyncHdr" && !st.Authenticated {
		if code != ResponseCredentialsMissing {
			code = ResponseInvalidCredentials
		}
		o.w.StartElement(o.uri, "Chal")
		o.w.StartElement(o.uri, "Meta")
		o.element(meta, "Type", AuthTypeBasic)
		o.element(meta, "Format", FormatBase64)
		o.w.EndElement(o.uri, "Meta")
		o.w.EndElement(o.uri, "Chal")
	}

	o.element(o.uri, "Data", strconv.Itoa(code))

	if anchorNext != "" || anchorLast != "" {
		o.w.StartElement(o.uri, "Item")
		o.w.StartElement(o.uri, "Data")
		o.w.StartElement(meta, "Anchor")
		if anchorLast != "" {
			o.element(meta, "Last", anchorLast)
		}
		if anchorNext != "" {
			o.element(meta, "Next", anchorNext)
		}
		o.w.EndElement(meta, "Anchor")
		o.w.EndElement(o.uri, "Data")
		o.w.EndElement(o.uri, "Item")
	}

	o.w.EndElement(o.uri, "Status")
}

func (o *Output) devInfType() string {
	if o.state.WBXML {
		return MimeDevInfWBXML
	}
	return MimeDevInfXML
}

// DevInf sends the server's device information as Results of a Get.
func (o *Output) DevInf(cmdRef int) {
	st := o.state
	meta := st.URIMeta()
	uri := st.URIDevInf()

	o.w.StartElement(o.uri, "Results")
	o.outputCmdID()
	o.element(o.uri, "MsgRef", st.MessageID)
	o.element(o.uri, "CmdRef", strconv.Itoa(cmdRef))
	o.w.StartElement(o.uri, "Meta")
	o.element(meta, "Type", o.devInfType())
	o.w.EndElement(o.uri, "Meta")

	o.w.StartElement(o.uri, "Item")
	o.locURI("Source", st.DevInfURI())
	o.w.StartElement(o.uri, "Data")

	// DevInf is an embedded document of its own, not a code page of SyncML.
	di := o.w.SubWriter()
	di.StartElement(uri, "DevInf")
	for _, e := range [][2]string{
		{"VerDTD", st.VerDTD()},
		{"Man", Manufacturer},
		{"DevID", o.devID},
		{"DevTyp", "server"},
	} {
		di.StartElement(uri, e[0])
		di.Characters(e[1])
		di.EndElement(uri, e[0])
	}
	if st.Version > Version10 {
		for _, flag := range []string{"SupportLargeObjs", "SupportNumberOfChanges"} {
			di.StartElement(uri, flag)
			di.EndElement(uri, flag)
		}
	}
	for _, ds := range dataStores {
		writeDataStore(di, uri, ds)
	}
	di.EndElement(uri, "DevInf")

	data, err := di.Output()
	if err == nil {
		o.w.Opaque(data)
	}
	o.w.EndElement(o.uri, "Data")
	o.w.EndElement(o.uri, "Item")
	o.w.EndElement(o.uri, "Results")
}

func writeDataStore(w ContentWriter, uri string, ds dataStoreInfo) {
	element := func(name, chars string) {
		w.StartElement(uri, name)
		w.Characters(chars)
		w.EndElement(uri, name)
	}
	contentType := func(name, ctType, verCT string) {
		w.StartElement(uri, name)
		element("CTType", ctType)
		element("VerCT", verCT)
		w.EndElement(uri, name)
	}

	w.StartElement(uri, "DataStore")
	element("SourceRef", ds.sourceRef)
	contentType("Rx-Pref", ds.ctType, ds.verCT)
	for _, a := range ds.additional {
		contentType("Rx", a[0], a[1])
	}
	contentType("Tx-Pref", ds.ctType, ds.verCT)
	for _, a := range ds.additional {
		contentType("Tx", a[0], a[1])
	}

	// two-way, slow, one-way and refresh from either side
	w.StartElement(uri, "SyncCap")
	for i := 1; i <= 6; i++ {
		element("SyncType", strconv.Itoa(i))
	}
	w.EndElement(uri, "SyncCap")
	w.EndElement(uri, "DataStore")
}

func (o *Output) Alert(code int, clientDB, serverDB, lastAnchor, nextAnchor string) {
	meta := o.state.URIMeta()

	o.w.StartElement(o.uri, "Alert")
	o.outputCmdID()
	o.element(o.uri, "Data", strconv.Itoa(code))
	o.w.StartElement(o.uri, "Item")
	if clientDB != "" {
		o.locURI("Target", clientDB)
	}
	if serverDB != "" {
		o.locURI("Source", serverDB)
	}

	o.w.StartElement(o.uri, "Meta")
	o.w.StartElement(meta, "Anchor")
	o.element(meta, "Last", lastAnchor)
	o.element(meta, "Next", nextAnchor)
	o.w.EndElement(meta, "Anchor")
	if o.state.Version > Version10 {
		o.element(meta, "MaxObjSize", strconv.Itoa(o.maxObjSize))
	}
	o.w.EndElement(o.uri, "Meta")

	o.w.EndElement(o.uri, "Item")
	o.w.EndElement(o.uri, "Alert")
}

// GetDevInf asks the client for its device information.
func (o *Output) GetDevInf() {
	meta := o.state.URIMeta()

	o.w.StartElement(o.uri, "Get")
	o.outputCmdID()
	o.w.StartElement(o.uri, "Meta")
	o.element(meta, "Type", o.devInfType())
	o.w.EndElement(o.uri, "Meta")
	o.w.StartElement(o.uri, "Item")
	o.locURI("Target", o.state.DevInfURI())
	o.w.EndElement(o.uri, "Item")
	o.w.EndElement(o.uri, "Get")
}

// SyncCommand writes an Add, Replace or Delete and returns its command id.
func (o *Output) SyncCommand(command string, item SyncItemOutput) int {
	meta := o.state.URIMeta()

	o.w.StartElement(o.uri, command)
	cmdID := o.outputCmdID()

	if item.ContentType != "" {
		o.w.StartElement(o.uri, "Meta")
		o.element(meta, "Type", item.ContentType)
		o.w.EndElement(o.uri, "Meta")
	}

	o.w.StartElement(o.uri, "Item")
	if item.SUID != "" {
		o.locURI("Source", item.SUID)
	}
	if item.CUID != "" {
		o.locURI("Target", item.CUID)
	}
	if item.Encoding != "" {
		o.w.StartElement(o.uri, "Meta")
		o.element(meta, "Format", item.Encoding)
		o.w.EndElement(o.uri, "Meta")
	}
	if command != "Delete" {
		o.w.StartElement(o.uri, "Data")
		if o.state.Device().UseCdataTag() {
			o.w.CData(item.Content)
		} else {
			o.w.Characters(item.Content)
		}
		o.w.EndElement(o.uri, "Data")
	}
	o.w.EndElement(o.uri, "Item")

	o.w.EndElement(o.uri, command)
	return cmdID
}

// SyncStart opens a Sync. NumberOfChanges is left out if negative.
func (o *Output) SyncStart(clientLocURI, serverLocURI string, numberOfChanges int) {
	o.w.StartElement(o.uri, "Sync")
	o.outputCmdID()
	o.locURI("Target", clientLocURI)
	o.locURI("Source", serverLocURI)
	if numberOfChanges >= 0 {
		o.element(o.uri, "NumberOfChanges", strconv.Itoa(numberOfChanges))
	}
}

func (o *Output) SyncEnd() {
	o.w.EndElement(o.uri, "Sync")
}
