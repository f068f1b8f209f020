// SPDX-License-Identifier: GPL-3.0-or-later
package syncml

import (
	"fmt"
	"sort"

	"github.com/CrawX/go-syncml/device"
	"github.com/CrawX/go-syncml/devinf"
	"github.com/CrawX/go-syncml/domain"
	"github.com/CrawX/go-syncml/wbxml"
	"github.com/fxamacker/cbor/v2"
)

var (
	stateEncMode cbor.EncMode
	stateDecMode cbor.DecMode
)

func init() {
	var err error

	encOpts := cbor.EncOptions{
		Sort:          cbor.SortCanonical,
		IndefLength:   cbor.IndefLengthForbidden,
		NilContainers: cbor.NilContainerAsNull,
	}
	stateEncMode, err = encOpts.EncMode()
	if err != nil {
		panic(fmt.Sprintf("failed to create state CBOR encoder mode: %v", err))
	}

	decOpts := cbor.DecOptions{
		DupMapKey:   cbor.DupMapKeyQuiet,
		IndefLength: cbor.IndefLengthAllowed,
	}
	stateDecMode, err = decOpts.DecMode()
	if err != nil {
		panic(fmt.Sprintf("failed to create state CBOR decoder mode: %v", err))
	}
}

// ServerChangeRef records which server entry a command sent to the client
// was about, so the client's Status can be matched to it.
type ServerChangeRef struct {
	SUID string `cbor:"1,keyasint"`
	CUID string `cbor:"2,keyasint,omitempty"`
}

// State is everything known about one SyncML session. It survives between
// the messages of the session.
type State struct {
	SessionID string
	Version   int
	MessageID string
	// TargetURI is the server's URI as addressed by the client.
	TargetURI string
	// SourceURI is the client's device id.
	SourceURI     string
	User          string
	Authenticated bool
	MaxMsgSize    int
	MaxObjSize    int
	WBXML         bool
	Charset       string
	DeviceInfo    *devinf.DeviceInfo
	// DevInfRequested is set once the server asked for the device
	// information.
	DevInfRequested bool
	// DelayedFinal is set when the client's package is final but the server
	// still has data to send.
	DelayedFinal bool
	// CurSyncItem is a chunked item whose data is not complete yet.
	CurSyncItem *SyncItem
	// ServerChanges maps message id -> database -> command id to the entry
	// the command was about.
	ServerChanges map[string]map[string]map[int]ServerChangeRef

	syncs map[string]*Sync
}

func NewState(sessionID, sourceURI string) *State {
	return &State{
		SessionID:     sessionID,
		SourceURI:     sourceURI,
		MaxMsgSize:    ServerMaxMsgSize,
		MaxObjSize:    ServerMaxObjSize,
		Charset:       "UTF-8",
		DeviceInfo:    &devinf.DeviceInfo{},
		ServerChanges: map[string]map[string]map[int]ServerChangeRef{},
		syncs:         map[string]*Sync{},
	}
}

// SetVersion takes the VerDTD sent by the client.
func (s *State) SetVersion(verDTD string) {
	switch verDTD {
	case "1.0":
		s.Version = Version10
	case "1.1":
		s.Version = Version11
	default:
		s.Version = Version12
	}
}

func (s *State) VerDTD() string {
	switch s.Version {
	case Version10:
		return "1.0"
	case Version11:
		return "1.1"
	}
	return "1.2"
}

func (s *State) ProtocolName() string {
	return "SyncML/" + s.VerDTD()
}

// URI is the SyncML namespace of the session's protocol version.
func (s *State) URI() string {
	return "SYNCML:SYNCML" + s.VerDTD()
}

func (s *State) URIMeta() string {
	return wbxml.URIMetInf
}

func (s *State) URIDevInf() string {
	return wbxml.URIDevInf
}

func (s *State) DevInfURI() string {
	switch s.Version {
	case Version10:
		return "./devinf10"
	case Version11:
		return "./devinf11"
	}
	return "./devinf12"
}

// Device selects the driver for the client. The result may change once the
// client's device information arrives.
func (s *State) Device() device.Driver {
	return device.Select(s.SourceURI, s.DeviceInfo)
}

func (s *State) Partner() domain.Partner {
	return domain.Partner{User: s.User, DeviceID: s.SourceURI}
}

func (s *State) SetSync(target string, sync *Sync) {
	if s.syncs == nil {
		s.syncs = map[string]*Sync{}
	}
	s.syncs[target] = sync
}

func (s *State) Sync(target string) *Sync {
	return s.syncs[target]
}

// Syncs returns all tracked syncs ordered by target URI.
func (s *State) Syncs() []*Sync {
	targets := make([]string, 0, len(s.syncs))
	for t := range s.syncs {
		targets = append(targets, t)
	}
	sort.Strings(targets)

	syncs := make([]*Sync, 0, len(targets))
	for _, t := range targets {
		syncs = append(syncs, s.syncs[t])
	}
	return syncs
}

func (s *State) HasPendingSyncs() bool {
	for _, sync := range s.syncs {
		if sync.HasPendingElements() {
			return true
		}
	}
	return false
}

// PendingSyncs returns the target URIs of all syncs with server changes
// left to send, ordered by URI.
func (s *State) PendingSyncs() []string {
	pending := []string{}
	for t, sync := range s.syncs {
		if sync.HasPendingElements() {
			pending = append(pending, t)
		}
	}
	sort.Strings(pending)
	return pending
}

func (s *State) IsAllSyncsComplete() bool {
	return !s.HasPendingSyncs()
}

// HandleFinal passes the end of a client package on to every sync.
func (s *State) HandleFinal(m *message) {
	for _, sync := range s.Syncs() {
		sync.HandleFinal(m)
	}
}

// RecordServerChange remembers the entry behind a command of the current
// message.
func (s *State) RecordServerChange(target string, cmdID int, ref ServerChangeRef) {
	if s.ServerChanges == nil {
		s.ServerChanges = map[string]map[string]map[int]ServerChangeRef{}
	}
	byTarget, ok := s.ServerChanges[s.MessageID]
	if !ok {
		byTarget = map[string]map[int]ServerChangeRef{}
		s.ServerChanges[s.MessageID] = byTarget
	}
	byCmd, ok := byTarget[target]
	if !ok {
		byCmd = map[int]ServerChangeRef{}
		byTarget[target] = byCmd
	}
	byCmd[cmdID] = ref
}

// TakeServerChange looks up and forgets the entry a client Status refers
// to.
func (s *State) TakeServerChange(msgRef string, cmdRef int) (string, ServerChangeRef, bool) {
	for target, byCmd := range s.ServerChanges[msgRef] {
		ref, ok := byCmd[cmdRef]
		if !ok {
			continue
		}

		delete(byCmd, cmdRef)
		if len(byCmd) == 0 {
			delete(s.ServerChanges[msgRef], target)
		}
		if len(s.ServerChanges[msgRef]) == 0 {
			delete(s.ServerChanges, msgRef)
		}
		return target, ref, true
	}
	return "", ServerChangeRef{}, false
}

type stateSnapshot struct {
	SessionID       string                                        `cbor:"1,keyasint"`
	Version         int                                           `cbor:"2,keyasint"`
	MessageID       string                                        `cbor:"3,keyasint"`
	TargetURI       string                                        `cbor:"4,keyasint"`
	SourceURI       string                                        `cbor:"5,keyasint"`
	User            string                                        `cbor:"6,keyasint,omitempty"`
	Authenticated   bool                                          `cbor:"7,keyasint"`
	MaxMsgSize      int                                           `cbor:"8,keyasint"`
	MaxObjSize      int                                           `cbor:"9,keyasint"`
	WBXML           bool                                          `cbor:"10,keyasint"`
	Charset         string                                        `cbor:"11,keyasint"`
	DeviceInfo      *devinf.DeviceInfo                            `cbor:"12,keyasint,omitempty"`
	DevInfRequested bool                                          `cbor:"13,keyasint"`
	DelayedFinal    bool                                          `cbor:"14,keyasint"`
	CurSyncItem     *SyncItem                                     `cbor:"15,keyasint,omitempty"`
	ServerChanges   map[string]map[string]map[int]ServerChangeRef `cbor:"16,keyasint,omitempty"`
	Syncs           map[string]*syncSnapshot                      `cbor:"17,keyasint,omitempty"`
}

func (s *State) MarshalBinary() ([]byte, error) {
	snap := stateSnapshot{
		SessionID:       s.SessionID,
		Version:         s.Version,
		MessageID:       s.MessageID,
		TargetURI:       s.TargetURI,
		SourceURI:       s.SourceURI,
		User:            s.User,
		Authenticated:   s.Authenticated,
		MaxMsgSize:      s.MaxMsgSize,
		MaxObjSize:      s.MaxObjSize,
		WBXML:           s.WBXML,
		Charset:         s.Charset,
		DeviceInfo:      s.DeviceInfo,
		DevInfRequested: s.DevInfRequested,
		DelayedFinal:    s.DelayedFinal,
		CurSyncItem:     s.CurSyncItem,
		ServerChanges:   s.ServerChanges,
		Syncs:           make(map[string]*syncSnapshot, len(s.syncs)),
	}
	for t, sync := range s.syncs {
		snap.Syncs[t] = sync.snapshot()
	}

	data, err := stateEncMode.Marshal(snap)
	if err != nil {
		return nil, fmt.Errorf("could not encode state: %w", err)
	}
	return data, nil
}

func (s *State) UnmarshalBinary(data []byte) error {
	var snap stateSnapshot
	err := stateDecMode.Unmarshal(data, &snap)
	if err != nil {
		return fmt.Errorf("could not decode state: %w", err)
	}

	*s = State{
		SessionID:       snap.SessionID,
		Version:         snap.Version,
		MessageID:       snap.MessageID,
		TargetURI:       snap.TargetURI,
		SourceURI:       snap.SourceURI,
		User:            snap.User,
		Authenticated:   snap.Authenticated,
		MaxMsgSize:      snap.MaxMsgSize,
		MaxObjSize:      snap.MaxObjSize,
		WBXML:           snap.WBXML,
		Charset:         snap.Charset,
		DeviceInfo:      snap.DeviceInfo,
		DevInfRequested: snap.DevInfRequested,
		DelayedFinal:    snap.DelayedFinal,
		CurSyncItem:     snap.CurSyncItem,
		ServerChanges:   snap.ServerChanges,
		syncs:           make(map[string]*Sync, len(snap.Syncs)),
	}
	if s.DeviceInfo == nil {
		s.DeviceInfo = &devinf.DeviceInfo{}
	}
	if s.ServerChanges == nil {
		s.ServerChanges = map[string]map[string]map[int]ServerChangeRef{}
	}
	for t, ss := range snap.Syncs {
		s.syncs[t] = ss.restore()
	}
	return nil
}
