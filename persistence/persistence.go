// SPDX-License-Identifier: GPL-3.0-or-later
package persistence

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/CrawX/go-syncml/domain"
	"github.com/CrawX/go-syncml/log"
	"github.com/CrawX/go-syncml/persistence/migrations"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/rubenv/sql-migrate"
	"github.com/sirupsen/logrus"
)

type Persistence struct {
	db *sqlx.DB
	l  *logrus.Logger
}

func NewPersistence(datasource string) (*Persistence, error) {
	db, err := sqlx.Connect("sqlite3", datasource)
	if err != nil {
		return nil, fmt.Errorf("could not open db: %w", err)
	}
	db.SetMaxOpenConns(1)

	l := log.Logger(log.LOG_PERSISTENCE)
	l.WithField("file", datasource).Info("Connected")

	migrationSource := &migrate.HttpFileSystemMigrationSource{
		FileSystem: migrations.Dir(),
	}

	_, err = db.Exec(`PRAGMA journal_mode=WAL`)
	if err != nil {
		return nil, fmt.Errorf("could not set journal mode: %w", err)
	}
	_, err = db.Exec(`PRAGMA synchronous=normal`)
	if err != nil {
		return nil, fmt.Errorf("could not set synchronous mode: %w", err)
	}

	appliedMigrations, err := migrate.Exec(db.DB, "sqlite3", migrationSource, migrate.Up)
	if err != nil {
		return nil, fmt.Errorf("could not migrate to newest version: %w", err)
	}

	l.WithField("migrations", appliedMigrations).Debug("Executed migrations")

	return &Persistence{
		db: db,
		l:  l,
	}, nil
}

func (p *Persistence) Close() error {
	err := p.db.Close()
	if err != nil {
		return fmt.Errorf("could not close db: %w", err)
	}
	p.l.Info("Disconnected")
	return nil
}

func (p *Persistence) SaveUser(ctx context.Context, user, passwordHash string) error {
	_, err := p.db.ExecContext(
		ctx,
		"INSERT OR REPLACE INTO syncml_uids (syncml_uid, syncml_password) VALUES (?, ?)",
		user, passwordHash,
	)
	if err != nil {
		return fmt.Errorf("could not save user: %w", err)
	}

	p.l.WithField("user", user).Info("Persisted user")
	return nil
}

// PasswordHash returns an empty hash for unknown users.
func (p *Persistence) PasswordHash(ctx context.Context, user string) (string, error) {
	var hash string
	err := p.db.GetContext(ctx, &hash, "SELECT syncml_password FROM syncml_uids WHERE syncml_uid = ?", user)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("could not query db: %w", err)
	}

	return hash, nil
}

// DeleteUser removes the user together with all data, maps and anchors.
func (p *Persistence) DeleteUser(ctx context.Context, user string) error {
	tx, err := p.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("could not start transaction: %w", err)
	}

	for _, table := range []string{"syncml_data", "syncml_map", "syncml_anchors", "syncml_suidlist", "syncml_uids"} {
		_, err = tx.ExecContext(ctx, "DELETE FROM "+table+" WHERE syncml_uid = ?", user)
		if err != nil {
			return txEnd(tx, fmt.Errorf("could not clean %s: %w", table, err))
		}
	}

	p.l.WithField("user", user).Info("Deleted user")
	return txEnd(tx, nil)
}

type dbItem struct {
	Id          string `db:"syncml_id"`
	Db          string `db:"syncml_db"`
	Uid         string `db:"syncml_uid"`
	Data        string `db:"syncml_data"`
	ContentType string `db:"syncml_contenttype"`
	Created     int64  `db:"syncml_created_ts"`
	Modified    int64  `db:"syncml_modified_ts"`
	ImapUid     uint32 `db:"syncml_imap_uid"`
	Hash        string `db:"syncml_hash"`
}

func (i *dbItem) toDomain() *domain.Item {
	return &domain.Item{
		User:        i.Uid,
		Database:    i.Db,
		SUID:        i.Id,
		Content:     i.Data,
		ContentType: i.ContentType,
		Created:     i.Created,
		Modified:    i.Modified,
		ImapUid:     i.ImapUid,
		ContentHash: i.Hash,
	}
}

const itemColumns = "syncml_id, syncml_db, syncml_uid, syncml_data, syncml_contenttype, syncml_created_ts, syncml_modified_ts, syncml_imap_uid, syncml_hash"

func (p *Persistence) SaveItem(ctx context.Context, item *domain.Item) error {
	_, err := p.db.ExecContext(
		ctx,
		"INSERT OR REPLACE INTO syncml_data ("+itemColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)",
		item.SUID, item.Database, item.User, item.Content, item.ContentType, item.Created, item.Modified, item.ImapUid, item.ContentHash,
	)
	if err != nil {
		return fmt.Errorf("could not save item: %w", err)
	}

	return nil
}

func (p *Persistence) GetItem(ctx context.Context, user, database, suid string) (*domain.Item, error) {
	item := dbItem{}
	err := p.db.GetContext(
		ctx,
		&item,
		"SELECT "+itemColumns+" FROM syncml_data WHERE syncml_uid = ? AND syncml_db = ? AND syncml_id = ?",
		user, database, suid,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("could not query db: %w", err)
	}

	return item.toDomain(), nil
}

func (p *Persistence) DeleteItem(ctx context.Context, user, database, suid string) (bool, error) {
	result, err := p.db.ExecContext(
		ctx,
		"DELETE FROM syncml_data WHERE syncml_uid = ? AND syncml_db = ? AND syncml_id = ?",
		user, database, suid,
	)
	if err != nil {
		return false, fmt.Errorf("could not delete item: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("could not get num of affected rows: %w", err)
	}

	return affected == 1, nil
}

func (p *Persistence) ListItems(ctx context.Context, user, database string) ([]*domain.Item, error) {
	return p.selectItems(
		ctx,
		"SELECT "+itemColumns+" FROM syncml_data WHERE syncml_uid = ? AND syncml_db = ? ORDER BY syncml_created_ts, syncml_id",
		user, database,
	)
}

func (p *Persistence) ItemsCreatedBetween(ctx context.Context, user, database string, from, to int64) ([]*domain.Item, error) {
	return p.selectItems(
		ctx,
		"SELECT "+itemColumns+" FROM syncml_data WHERE syncml_uid = ? AND syncml_db = ? AND syncml_created_ts >= ? AND syncml_created_ts < ? ORDER BY syncml_created_ts, syncml_id",
		user, database, from, to,
	)
}

func (p *Persistence) ItemsModifiedBetween(ctx context.Context, user, database string, from, to int64) ([]*domain.Item, error) {
	return p.selectItems(
		ctx,
		"SELECT "+itemColumns+" FROM syncml_data WHERE syncml_uid = ? AND syncml_db = ? AND syncml_modified_ts >= ? AND syncml_modified_ts < ? ORDER BY syncml_modified_ts, syncml_id",
		user, database, from, to,
	)
}

func (p *Persistence) selectItems(ctx context.Context, qry string, args ...interface{}) ([]*domain.Item, error) {
	dbItems := []dbItem{}
	err := p.db.SelectContext(ctx, &dbItems, qry, args...)
	if err != nil {
		return nil, fmt.Errorf("could not query db: %w", err)
	}

	items := make([]*domain.Item, 0, len(dbItems))
	for i := range dbItems {
		items = append(items, dbItems[i].toDomain())
	}

	return items, nil
}

func (p *Persistence) SaveMapping(ctx context.Context, partner domain.Partner, database, cuid, suid string, ts int64) error {
	tx, err := p.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("could not start transaction: %w", err)
	}

	// A cuid maps to exactly one suid; drop stale rows of either side first.
	_, err = tx.ExecContext(
		ctx,
		"DELETE FROM syncml_map WHERE syncml_syncpartner = ? AND syncml_db = ? AND syncml_uid = ? AND (syncml_cuid = ? OR syncml_suid = ?)",
		partner.DeviceID, database, partner.User, cuid, suid,
	)
	if err != nil {
		return txEnd(tx, fmt.Errorf("could not clear mapping: %w", err))
	}

	_, err = tx.ExecContext(
		ctx,
		"INSERT INTO syncml_map (syncml_syncpartner, syncml_db, syncml_uid, syncml_cuid, syncml_suid, syncml_timestamp) VALUES (?, ?, ?, ?, ?, ?)",
		partner.DeviceID, database, partner.User, cuid, suid, ts,
	)
	if err != nil {
		return txEnd(tx, fmt.Errorf("could not save mapping: %w", err))
	}

	p.l.WithFields(logrus.Fields{"db": database, "cuid": cuid, "suid": suid}).Debug("Persisted mapping")
	return txEnd(tx, nil)
}

func (p *Persistence) SUID(ctx context.Context, partner domain.Partner, database, cuid string) (string, error) {
	return p.mapColumn(ctx, "syncml_suid", "syncml_cuid", partner, database, cuid)
}

func (p *Persistence) CUID(ctx context.Context, partner domain.Partner, database, suid string) (string, error) {
	return p.mapColumn(ctx, "syncml_cuid", "syncml_suid", partner, database, suid)
}

func (p *Persistence) mapColumn(ctx context.Context, column, by string, partner domain.Partner, database, value string) (string, error) {
	var result string
	err := p.db.GetContext(
		ctx,
		&result,
		"SELECT "+column+" FROM syncml_map WHERE syncml_syncpartner = ? AND syncml_db = ? AND syncml_uid = ? AND "+by+" = ?",
		partner.DeviceID, database, partner.User, value,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("could not query db: %w", err)
	}

	return result, nil
}

func (p *Persistence) MappingTimestamp(ctx context.Context, partner domain.Partner, database, suid string) (int64, bool, error) {
	var ts int64
	err := p.db.GetContext(
		ctx,
		&ts,
		"SELECT syncml_timestamp FROM syncml_map WHERE syncml_syncpartner = ? AND syncml_db = ? AND syncml_uid = ? AND syncml_suid = ?",
		partner.DeviceID, database, partner.User, suid,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("could not query db: %w", err)
	}

	return ts, true, nil
}

func (p *Persistence) DeleteMapping(ctx context.Context, partner domain.Partner, database, suid string) error {
	_, err := p.db.ExecContext(
		ctx,
		"DELETE FROM syncml_map WHERE syncml_syncpartner = ? AND syncml_db = ? AND syncml_uid = ? AND syncml_suid = ?",
		partner.DeviceID, database, partner.User, suid,
	)
	if err != nil {
		return fmt.Errorf("could not delete mapping: %w", err)
	}

	return nil
}

// EraseMap forgets everything the device knows about the database: uid
// mappings and the list of server ids sent to it.
func (p *Persistence) EraseMap(ctx context.Context, partner domain.Partner, database string) error {
	tx, err := p.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("could not start transaction: %w", err)
	}

	for _, table := range []string{"syncml_map", "syncml_suidlist"} {
		_, err = tx.ExecContext(
			ctx,
			"DELETE FROM "+table+" WHERE syncml_syncpartner = ? AND syncml_db = ? AND syncml_uid = ?",
			partner.DeviceID, database, partner.User,
		)
		if err != nil {
			return txEnd(tx, fmt.Errorf("could not erase %s: %w", table, err))
		}
	}

	p.l.WithFields(logrus.Fields{"db": database, "device": partner.DeviceID, "user": partner.User}).Info("Erased map")
	return txEnd(tx, nil)
}

// TrackDeletes compares the server ids known from the previous sync with the
// current ones. It returns the ids that vanished and stores the current set.
func (p *Persistence) TrackDeletes(ctx context.Context, partner domain.Partner, database string, current []string) ([]string, error) {
	tx, err := p.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("could not start transaction: %w", err)
	}

	known := []string{}
	err = tx.SelectContext(
		ctx,
		&known,
		"SELECT syncml_suid FROM syncml_suidlist WHERE syncml_syncpartner = ? AND syncml_db = ? AND syncml_uid = ? ORDER BY syncml_suid",
		partner.DeviceID, database, partner.User,
	)
	if err != nil {
		return nil, txEnd(tx, fmt.Errorf("could not query db: %w", err))
	}

	currentSet := make(map[string]bool, len(current))
	for _, suid := range current {
		currentSet[suid] = true
	}
	knownSet := make(map[string]bool, len(known))
	deleted := []string{}
	for _, suid := range known {
		knownSet[suid] = true
		if !currentSet[suid] {
			deleted = append(deleted, suid)
		}
	}

	for _, suid := range current {
		if knownSet[suid] {
			continue
		}
		_, err = tx.ExecContext(
			ctx,
			"INSERT OR IGNORE INTO syncml_suidlist (syncml_syncpartner, syncml_db, syncml_uid, syncml_suid) VALUES (?, ?, ?, ?)",
			partner.DeviceID, database, partner.User, suid,
		)
		if err != nil {
			return nil, txEnd(tx, fmt.Errorf("could not add to suid list: %w", err))
		}
	}

	for _, suid := range deleted {
		_, err = tx.ExecContext(
			ctx,
			"DELETE FROM syncml_suidlist WHERE syncml_syncpartner = ? AND syncml_db = ? AND syncml_uid = ? AND syncml_suid = ?",
			partner.DeviceID, database, partner.User, suid,
		)
		if err != nil {
			return nil, txEnd(tx, fmt.Errorf("could not remove from suid list: %w", err))
		}
	}

	p.l.WithFields(logrus.Fields{"db": database, "known": len(known), "current": len(current), "deleted": len(deleted)}).Debug("Tracked deletes")
	return deleted, txEnd(tx, nil)
}

func (p *Persistence) RemoveFromSuidList(ctx context.Context, partner domain.Partner, database, suid string) error {
	_, err := p.db.ExecContext(
		ctx,
		"DELETE FROM syncml_suidlist WHERE syncml_syncpartner = ? AND syncml_db = ? AND syncml_uid = ? AND syncml_suid = ?",
		partner.DeviceID, database, partner.User, suid,
	)
	if err != nil {
		return fmt.Errorf("could not remove from suid list: %w", err)
	}

	return nil
}

// ReadAnchors returns nil if no sync of the database has completed yet.
func (p *Persistence) ReadAnchors(ctx context.Context, partner domain.Partner, database string) (*domain.Anchors, error) {
	anchors := struct {
		Client string `db:"syncml_clientanchor"`
		Server string `db:"syncml_serveranchor"`
	}{}
	err := p.db.GetContext(
		ctx,
		&anchors,
		"SELECT syncml_clientanchor, syncml_serveranchor FROM syncml_anchors WHERE syncml_syncpartner = ? AND syncml_db = ? AND syncml_uid = ?",
		partner.DeviceID, database, partner.User,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("could not query db: %w", err)
	}

	return &domain.Anchors{ClientAnchor: anchors.Client, ServerAnchor: anchors.Server}, nil
}

func (p *Persistence) WriteAnchors(ctx context.Context, partner domain.Partner, database, clientAnchor, serverAnchor string) error {
	_, err := p.db.ExecContext(
		ctx,
		"INSERT OR REPLACE INTO syncml_anchors (syncml_syncpartner, syncml_db, syncml_uid, syncml_clientanchor, syncml_serveranchor) VALUES (?, ?, ?, ?, ?)",
		partner.DeviceID, database, partner.User, clientAnchor, serverAnchor,
	)
	if err != nil {
		return fmt.Errorf("could not write anchors: %w", err)
	}

	p.l.WithFields(logrus.Fields{"db": database, "client": clientAnchor, "server": serverAnchor}).Debug("Persisted anchors")
	return nil
}

// LoadSession returns nil for unknown sessions.
func (p *Persistence) LoadSession(ctx context.Context, id string) ([]byte, error) {
	var state []byte
	err := p.db.GetContext(ctx, &state, "SELECT state FROM syncml_sessions WHERE session_id = ?", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("could not query db: %w", err)
	}

	return state, nil
}

func (p *Persistence) SaveSession(ctx context.Context, id string, data []byte) error {
	_, err := p.db.ExecContext(
		ctx,
		"INSERT OR REPLACE INTO syncml_sessions (session_id, state, modified_ts) VALUES (?, ?, ?)",
		id, data, time.Now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("could not save session: %w", err)
	}

	return nil
}

func (p *Persistence) DeleteSession(ctx context.Context, id string) error {
	_, err := p.db.ExecContext(ctx, "DELETE FROM syncml_sessions WHERE session_id = ?", id)
	if err != nil {
		return fmt.Errorf("could not delete session: %w", err)
	}

	return nil
}

func (p *Persistence) ExpireSessions(ctx context.Context, before time.Time) (int64, error) {
	result, err := p.db.ExecContext(ctx, "DELETE FROM syncml_sessions WHERE modified_ts < ?", before.Unix())
	if err != nil {
		return 0, fmt.Errorf("could not expire sessions: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("could not get num of affected rows: %w", err)
	}

	if affected > 0 {
		p.l.WithField("count", affected).Info("Expired sessions")
	}
	return affected, nil
}

func txEnd(tx *sqlx.Tx, err error) error {
	if err == nil {
		err = tx.Commit()
		if err != nil {
			return fmt.Errorf("could not commit tx: %w", err)
		}
	} else {
		rollbackErr := tx.Rollback()
		if rollbackErr != nil {
			errStr := err.Error()
			return fmt.Errorf("%s, could not rollback tx: %w", errStr, rollbackErr)
		} else {
			return err
		}
	}

	return nil
}
