// SPDX-License-Identifier: GPL-3.0-or-later
package syncml

import (
	"fmt"
	"strconv"

	"github.com/sirupsen/logrus"
)

type alert struct {
	command

	alert          int
	targetLocURI   string
	sourceLocURI   string
	metaAnchorNext string
	metaAnchorLast string
}

func (a *alert) EndElement(uri, element string) {
	switch a.path() {
	case "Data":
		a.alert, _ = strconv.Atoi(a.text())
	case "Item/Target/LocURI":
		a.targetLocURI = a.text()
	case "Item/Source/LocURI":
		a.sourceLocURI = a.text()
	case "Item/Meta/Anchor/Next":
		a.metaAnchorNext = a.text()
	case "Item/Meta/Anchor/Last":
		a.metaAnchorLast = a.text()
	}

	a.command.EndElement(uri, element)
}

// negotiateSyncType decides the sync that is actually run for a requested
// one. Incremental syncs need the anchors to match, otherwise a slow sync or
// refresh is enforced.
func negotiateSyncType(requested int, anchorMatch bool) (int, int) {
	switch requested {
	case AlertTwoWay:
		if anchorMatch {
			return AlertTwoWay, ResponseOK
		}
		return AlertSlowSync, ResponseRefreshRequired
	case AlertOneWayFromClient:
		if anchorMatch {
			return AlertOneWayFromClient, ResponseOK
		}
		return AlertRefreshFromClient, ResponseRefreshRequired
	case AlertOneWayFromServer:
		if anchorMatch {
			return AlertOneWayFromServer, ResponseOK
		}
		return AlertRefreshFromServer, ResponseRefreshRequired
	case AlertSlowSync, AlertRefreshFromClient, AlertRefreshFromServer:
		return requested, ResponseOK
	case AlertResume:
		// Resuming suspended syncs is not supported.
		return AlertSlowSync, ResponseRefreshRequired
	}
	return 0, ResponseOptionalFeatureNotSupported
}

func (a *alert) Handle(m *message) error {
	st := m.state
	l := m.l.WithFields(logrus.Fields{"alert": a.alert, "target": a.targetLocURI, "source": a.sourceLocURI})

	if a.alert == AlertNextMessage {
		l.Debug("Client asks for next message")
		m.out.Status(a.cmdID, a.name, ResponseOK, a.targetLocURI, a.sourceLocURI)
		return nil
	}

	if !IsSyncAlert(a.alert) {
		l.Warn("Unsupported alert")
		m.out.Status(a.cmdID, a.name, ResponseOptionalFeatureNotSupported, a.targetLocURI, a.sourceLocURI)
		return nil
	}

	database := a.targetLocURI
	if !m.backend.IsValidDatabaseURI(database) {
		l.Warn("Invalid database")
		m.out.Status(a.cmdID, a.name, ResponseNotFound, a.targetLocURI, a.sourceLocURI)
		return nil
	}

	anchors, err := m.backend.ReadSyncAnchors(m.ctx, st.Partner(), database)
	if err != nil {
		return fmt.Errorf("could not read sync anchors for %s: %w", database, err)
	}

	var serverAnchorLast int64
	anchorMatch := false
	if anchors != nil && anchors.ClientAnchor == a.metaAnchorLast {
		anchorMatch = true
		serverAnchorLast, _ = strconv.ParseInt(anchors.ServerAnchor, 10, 64)
	}

	syncType, response := negotiateSyncType(a.alert, anchorMatch)
	if syncType != AlertTwoWay && syncType != AlertOneWayFromClient && syncType != AlertOneWayFromServer {
		serverAnchorLast = 0
		err = m.backend.EraseMap(m.ctx, st.Partner(), database)
		if err != nil {
			return fmt.Errorf("could not erase map of %s: %w", database, err)
		}
	}
	serverAnchorNext := m.backend.CurrentTimestamp()

	l.WithFields(logrus.Fields{
		"syncType":    syncType,
		"anchorMatch": anchorMatch,
		"response":    response,
	}).Debug("Starting sync")

	sync := st.Sync(database)
	if sync == nil {
		sync = NewSync(syncType, database, a.sourceLocURI, serverAnchorLast, serverAnchorNext, a.metaAnchorNext)
		st.SetSync(database, sync)
	}

	m.out.StatusWithAnchors(a.cmdID, a.name, response, a.targetLocURI, a.sourceLocURI, a.metaAnchorNext, a.metaAnchorLast)
	m.out.Alert(sync.SyncType(), sync.ClientLocURI(), sync.ServerLocURI(), sync.ServerAnchorLast(), sync.ServerAnchorNext())

	if st.DeviceInfo.Empty() && !st.DevInfRequested {
		m.out.GetDevInf()
		st.DevInfRequested = true
	}

	return nil
}
