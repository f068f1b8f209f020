// SPDX-License-Identifier: GPL-3.0-or-later
package syncml

import (
	"testing"

	"github.com/CrawX/go-syncml/devinf"
	"github.com/CrawX/go-syncml/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func syncWithPending(adds int) *Sync {
	s := NewSync(AlertTwoWay, "contacts", "./contacts", 0, 100, "1")
	s.compiled = true
	for i := 0; i < adds; i++ {
		s.serverAdds = append(s.serverAdds, domain.Change{SUID: string(rune('a' + i))})
	}
	return s
}

func TestState_SetVersion(t *testing.T) {
	tests := []struct {
		verDTD    string
		version   int
		uri       string
		devInfURI string
		protoName string
	}{
		{"1.0", Version10, "SYNCML:SYNCML1.0", "./devinf10", "SyncML/1.0"},
		{"1.1", Version11, "SYNCML:SYNCML1.1", "./devinf11", "SyncML/1.1"},
		{"1.2", Version12, "SYNCML:SYNCML1.2", "./devinf12", "SyncML/1.2"},
		{"", Version12, "SYNCML:SYNCML1.2", "./devinf12", "SyncML/1.2"},
	}
	for _, tc := range tests {
		t.Run(tc.verDTD, func(t *testing.T) {
			s := NewState("1", "IMEI:1234")
			s.SetVersion(tc.verDTD)

			assert.Equal(t, tc.version, s.Version)
			assert.Equal(t, tc.uri, s.URI())
			assert.Equal(t, tc.devInfURI, s.DevInfURI())
			assert.Equal(t, tc.protoName, s.ProtocolName())
		})
	}
}

func TestState_PendingSyncs(t *testing.T) {
	tests := []struct {
		name     string
		syncs    map[string]*Sync
		pending  []string
		complete bool
	}{
		{"none", map[string]*Sync{}, []string{}, true},
		{"notcompiled", map[string]*Sync{"contacts": NewSync(AlertSlowSync, "contacts", "c", 0, 1, "")}, []string{}, true},
		{"allsent", map[string]*Sync{"contacts": syncWithPending(0), "notes": syncWithPending(0)}, []string{}, true},
		{"one", map[string]*Sync{"contacts": syncWithPending(0), "notes": syncWithPending(2)}, []string{"notes"}, false},
		{"ordered", map[string]*Sync{"notes": syncWithPending(1), "calendar": syncWithPending(3)}, []string{"calendar", "notes"}, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			s := NewState("1", "IMEI:1234")
			for target, sync := range tc.syncs {
				s.SetSync(target, sync)
			}

			assert.Equal(t, tc.pending, s.PendingSyncs())
			assert.Equal(t, len(tc.pending) > 0, s.HasPendingSyncs())
			assert.Equal(t, tc.complete, s.IsAllSyncsComplete())
		})
	}
}

func TestState_SyncKeyedByTarget(t *testing.T) {
	s := NewState("1", "IMEI:1234")
	first := NewSync(AlertTwoWay, "contacts", "a", 0, 1, "")
	second := NewSync(AlertSlowSync, "contacts", "b", 0, 1, "")

	s.SetSync("contacts", first)
	s.SetSync("contacts", second)

	assert.Len(t, s.Syncs(), 1)
	assert.Same(t, second, s.Sync("contacts"))
	assert.Nil(t, s.Sync("notes"))
}

func TestState_ServerChanges(t *testing.T) {
	s := NewState("1", "IMEI:1234")
	s.MessageID = "3"
	s.RecordServerChange("contacts", 4, ServerChangeRef{SUID: "s1"})
	s.RecordServerChange("contacts", 5, ServerChangeRef{SUID: "s2", CUID: "c2"})
	s.RecordServerChange("notes", 6, ServerChangeRef{SUID: "s3"})

	target, ref, ok := s.TakeServerChange("3", 5)
	assert.True(t, ok)
	assert.Equal(t, "contacts", target)
	assert.Equal(t, ServerChangeRef{SUID: "s2", CUID: "c2"}, ref)

	_, _, ok = s.TakeServerChange("3", 5)
	assert.False(t, ok)
	_, _, ok = s.TakeServerChange("2", 4)
	assert.False(t, ok)

	target, _, ok = s.TakeServerChange("3", 6)
	assert.True(t, ok)
	assert.Equal(t, "notes", target)
	_, _, ok = s.TakeServerChange("3", 4)
	assert.True(t, ok)
	assert.Empty(t, s.ServerChanges)
}

func TestState_Binary(t *testing.T) {
	s := NewState("7", "fol-abc")
	s.SetVersion("1.2")
	s.MessageID = "4"
	s.User = "alice"
	s.Authenticated = true
	s.DevInfRequested = true
	s.DeviceInfo = &devinf.DeviceInfo{Man: "Funambol", DataStores: []devinf.DataStore{{SourceRef: "./card"}}}
	s.CurSyncItem = &SyncItem{ElementType: "Add", CUID: "10", Content: "BEGIN:VCARD", MoreData: true, Target: "card"}
	s.RecordServerChange("card", 3, ServerChangeRef{SUID: "s1"})

	sync := syncWithPending(2)
	sync.state = StateSync
	sync.clientAdds = 3
	sync.errors = 1
	sync.taskSUIDs["t1"] = true
	s.SetSync("card", sync)

	data, err := s.MarshalBinary()
	require.NoError(t, err)

	restored := &State{}
	require.NoError(t, restored.UnmarshalBinary(data))

	assert.Equal(t, s.SessionID, restored.SessionID)
	assert.Equal(t, s.Version, restored.Version)
	assert.Equal(t, s.User, restored.User)
	assert.True(t, restored.Authenticated)
	assert.True(t, restored.DevInfRequested)
	assert.Equal(t, "Funambol", restored.DeviceInfo.Man)
	assert.Equal(t, s.CurSyncItem, restored.CurSyncItem)
	assert.Equal(t, s.ServerChanges, restored.ServerChanges)
	assert.Equal(t, "Sync4j", restored.Device().Name())

	rs := restored.Sync("card")
	require.NotNil(t, rs)
	assert.Equal(t, sync, rs)
	assert.Equal(t, []string{"card"}, restored.PendingSyncs())
}

func TestState_UnmarshalGarbage(t *testing.T) {
	s := &State{}
	assert.Error(t, s.UnmarshalBinary([]byte{0xff, 0x00}))
}
