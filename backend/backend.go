// SPDX-License-Identifier: GPL-3.0-or-later
package backend

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"path"
	"regexp"
	"strings"
	"time"

	"github.com/CrawX/go-syncml/domain"
	"github.com/CrawX/go-syncml/log"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

const (
	authBasic = "syncml:auth-basic"
	authMD5   = "syncml:auth-md5"
)

var (
	ErrNoMapping = errors.New("no map entry for client id")
	ErrNotFound  = errors.New("entry not found")
)

// contentStore keeps the content of entries. The item index always lives in
// the persistence.
type contentStore interface {
	load(ctx context.Context, item *domain.Item) (string, error)
	// save stores the content of a new or changed item. previous is nil for
	// new items.
	save(ctx context.Context, item, previous *domain.Item) error
	remove(ctx context.Context, item *domain.Item) error
	// refresh brings the index of a database in line with the store. Changes
	// found are stamped with ts.
	refresh(ctx context.Context, user, database string, ts int64) error
}

// Backend stores the groupware data of SyncML users. Entries are indexed in
// the persistence, their content is kept by a contentStore.
type Backend struct {
	persistence domain.Persistence
	store       contentStore

	now     func() time.Time
	newSUID func() string

	l *logrus.Logger
}

func newBackend(persistence domain.Persistence, store contentStore) *Backend {
	return &Backend{
		persistence: persistence,
		store:       store,
		now:         time.Now,
		newSUID:     func() string { return uuid.New().String() },
		l:           log.Logger(log.LOG_BACKEND),
	}
}

var databaseAliases = map[string]string{
	"contacts": "contacts",
	"contact":  "contacts",
	"card":     "contacts",
	"scard":    "contacts",
	"calendar": "calendar",
	"event":    "calendar",
	"events":   "calendar",
	"cal":      "calendar",
	"scal":     "calendar",
	"notes":    "notes",
	"memo":     "notes",
	"note":     "notes",
	"snote":    "notes",
	"tasks":    "tasks",
	"task":     "tasks",
	"stask":    "tasks",
}

var uriQuery = regexp.MustCompile(`\?.*$`)

// Normalize maps a database URI like ./Contacts or tasks?options=x to the
// name of a database.
func Normalize(databaseURI string) string {
	database := strings.ToLower(path.Base(uriQuery.ReplaceAllString(databaseURI, "")))
	if name, ok := databaseAliases[database]; ok {
		return name
	}
	return database
}

// Parameter extracts a query parameter from a database URI.
func Parameter(url, name, def string) string {
	re := regexp.MustCompile(`[&?]` + regexp.QuoteMeta(name) + `=([^&]*)`)
	if m := re.FindStringSubmatch(url); m != nil {
		return m[1]
	}
	return def
}

func (b *Backend) Normalize(databaseURI string) string {
	return Normalize(databaseURI)
}

func (b *Backend) IsValidDatabaseURI(databaseURI string) bool {
	switch Normalize(databaseURI) {
	case "contacts", "calendar", "notes", "tasks":
		return true
	}

	b.l.WithField("db", databaseURI).Error("Invalid database, try tasks, calendar, notes or contacts")
	return false
}

func (b *Backend) CurrentTimestamp() int64 {
	return b.now().Unix()
}

// CheckAuthentication verifies the credentials of a SyncHdr and returns the
// user name. Only basic authentication is supported since passwords are kept
// as bcrypt hashes.
func (b *Backend) CheckAuthentication(ctx context.Context, cred domain.Credentials) (string, bool, error) {
	if cred.Data == "" || cred.Type == "" {
		return "", false, nil
	}

	switch cred.Type {
	case authBasic:
	case authMD5:
		b.l.Warn("syncml:auth-md5 is not supported, configure the client for basic authentication")
		return "", false, nil
	default:
		b.l.WithField("type", cred.Type).Error("Unsupported authentication type")
		return "", false, nil
	}

	decoded, err := base64.StdEncoding.DecodeString(cred.Data)
	if err != nil {
		b.l.WithError(err).Warn("Could not decode credentials")
		return "", false, nil
	}
	parts := strings.SplitN(string(decoded), ":", 2)
	if len(parts) != 2 || parts[1] == "" {
		return "", false, nil
	}
	user, password := parts[0], parts[1]

	b.l.WithField("user", user).Debug("Checking authentication")
	hash, err := b.persistence.PasswordHash(ctx, user)
	if err != nil {
		return "", false, fmt.Errorf("could not read password hash: %w", err)
	}
	if hash == "" {
		return "", false, nil
	}

	err = bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	if err != nil {
		return "", false, nil
	}

	return user, true, nil
}

// AddUser creates a user or sets a new password for it.
func (b *Backend) AddUser(ctx context.Context, user, password string) error {
	if user == "" || password == "" {
		return fmt.Errorf("user and password must not be empty")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("could not hash password: %w", err)
	}

	return b.persistence.SaveUser(ctx, user, string(hash))
}

// DeleteUser removes a user with all of its entries, maps and anchors.
func (b *Backend) DeleteUser(ctx context.Context, user string) error {
	return b.persistence.DeleteUser(ctx, user)
}

func (b *Backend) ReadSyncAnchors(ctx context.Context, p domain.Partner, databaseURI string) (*domain.Anchors, error) {
	return b.persistence.ReadAnchors(ctx, p, Normalize(databaseURI))
}

func (b *Backend) WriteSyncAnchors(ctx context.Context, p domain.Partner, databaseURI, clientAnchorNext, serverAnchorNext string) error {
	return b.persistence.WriteAnchors(ctx, p, Normalize(databaseURI), clientAnchorNext, serverAnchorNext)
}

func (b *Backend) CreateUidMap(ctx context.Context, p domain.Partner, databaseURI, cuid, suid string, ts int64) error {
	return b.persistence.SaveMapping(ctx, p, Normalize(databaseURI), cuid, suid, ts)
}

func (b *Backend) EraseMap(ctx context.Context, p domain.Partner, databaseURI string) error {
	return b.persistence.EraseMap(ctx, p, Normalize(databaseURI))
}

// changedByClient reports whether the last change of an entry was made on
// request of the client, which must not be mirrored back to it.
func (b *Backend) changedByClient(ctx context.Context, p domain.Partner, database, suid string, changed int64) (bool, error) {
	ts, ok, err := b.persistence.MappingTimestamp(ctx, p, database, suid)
	if err != nil {
		return false, err
	}
	return ok && ts >= changed, nil
}

var completedTask = regexp.MustCompile(`(?m)^(STATUS:COMPLETED|COMPLETED[;:])`)

// skipCompleted filters completed tasks for URIs like
// tasks?options=ignorecompleted.
func (b *Backend) skipCompleted(ctx context.Context, databaseURI string, item *domain.Item) (bool, error) {
	if item.Database != "tasks" || Parameter(databaseURI, "options", "") != "ignorecompleted" {
		return false, nil
	}

	content, err := b.store.load(ctx, item)
	if err != nil {
		return false, err
	}
	return completedTask.MatchString(content), nil
}

// GetServerChanges compiles the changes made on the server between from and
// to. Replaces and deletes are only reported for incremental syncs, from is
// 0 for slow syncs and refreshes.
func (b *Backend) GetServerChanges(ctx context.Context, p domain.Partner, databaseURI string, from, to int64) (*domain.Changes, error) {
	database := Normalize(databaseURI)
	l := b.l.WithFields(logrus.Fields{"db": database, "user": p.User, "from": from, "to": to})

	stamp := to - 1
	if stamp < from {
		stamp = from
	}
	err := b.store.refresh(ctx, p.User, database, stamp)
	if err != nil {
		return nil, fmt.Errorf("could not refresh %s: %w", database, err)
	}

	changes := &domain.Changes{}
	added := map[string]bool{}

	created, err := b.persistence.ItemsCreatedBetween(ctx, p.User, database, from, to)
	if err != nil {
		return nil, err
	}
	for _, item := range created {
		fromClient, err := b.changedByClient(ctx, p, database, item.SUID, item.Created)
		if err != nil {
			return nil, err
		}
		if fromClient {
			l.WithField("suid", item.SUID).Debug("Added to server from client, ignored")
			continue
		}
		skip, err := b.skipCompleted(ctx, databaseURI, item)
		if err != nil {
			return nil, err
		}
		if skip {
			continue
		}

		changes.Adds = append(changes.Adds, domain.Change{SUID: item.SUID})
		added[item.SUID] = true
	}

	if from > 0 {
		modified, err := b.persistence.ItemsModifiedBetween(ctx, p.User, database, from, to)
		if err != nil {
			return nil, err
		}
		for _, item := range modified {
			if added[item.SUID] {
				continue
			}
			fromClient, err := b.changedByClient(ctx, p, database, item.SUID, item.Modified)
			if err != nil {
				return nil, err
			}
			if fromClient {
				l.WithField("suid", item.SUID).Debug("Changed on server after sent from client, ignored")
				continue
			}
			skip, err := b.skipCompleted(ctx, databaseURI, item)
			if err != nil {
				return nil, err
			}
			if skip {
				continue
			}

			cuid, err := b.persistence.CUID(ctx, p, database, item.SUID)
			if err != nil {
				return nil, err
			}
			if cuid == "" {
				// The client never got this entry.
				changes.Adds = append(changes.Adds, domain.Change{SUID: item.SUID})
				added[item.SUID] = true
				continue
			}
			changes.Replaces = append(changes.Replaces, domain.Change{SUID: item.SUID, CUID: cuid})
		}
	}

	// Deleted entries are simply gone from the index, so deletes are found by
	// comparing with the ids known at the last sync.
	items, err := b.persistence.ListItems(ctx, p.User, database)
	if err != nil {
		return nil, err
	}
	current := make([]string, 0, len(items))
	for _, item := range items {
		current = append(current, item.SUID)
	}
	deleted, err := b.persistence.TrackDeletes(ctx, p, database, current)
	if err != nil {
		return nil, err
	}

	if from > 0 {
		for _, suid := range deleted {
			cuid, err := b.persistence.CUID(ctx, p, database, suid)
			if err != nil {
				return nil, err
			}
			if cuid == "" {
				continue
			}
			changes.Deletes = append(changes.Deletes, domain.Change{SUID: suid, CUID: cuid})
		}
	}

	l.WithFields(logrus.Fields{
		"adds":     len(changes.Adds),
		"replaces": len(changes.Replaces),
		"deletes":  len(changes.Deletes),
	}).Debug("Compiled server changes")
	return changes, nil
}

// RetrieveEntry returns an entry as stored. No content conversion is done,
// the device drivers take care of that.
func (b *Backend) RetrieveEntry(ctx context.Context, p domain.Partner, databaseURI, suid, contentType string) (*domain.Entry, error) {
	database := Normalize(databaseURI)

	item, err := b.persistence.GetItem(ctx, p.User, database, suid)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, fmt.Errorf("%w: %s/%s", ErrNotFound, database, suid)
	}

	content, err := b.store.load(ctx, item)
	if err != nil {
		return nil, fmt.Errorf("could not load %s: %w", suid, err)
	}

	return &domain.Entry{Content: content, ContentType: item.ContentType}, nil
}

func (b *Backend) AddEntry(ctx context.Context, p domain.Partner, databaseURI string, e *domain.Entry, cuid string) (string, error) {
	database := Normalize(databaseURI)
	now := b.CurrentTimestamp()

	item := &domain.Item{
		User:        p.User,
		Database:    database,
		SUID:        b.newSUID(),
		Content:     e.Content,
		ContentType: e.ContentType,
		Created:     now,
		Modified:    now,
	}

	err := b.store.save(ctx, item, nil)
	if err != nil {
		return "", fmt.Errorf("could not store entry: %w", err)
	}
	err = b.persistence.SaveItem(ctx, item)
	if err != nil {
		return "", err
	}

	if cuid != "" {
		err = b.persistence.SaveMapping(ctx, p, database, cuid, item.SUID, now)
		if err != nil {
			return "", err
		}
	}

	b.l.WithFields(logrus.Fields{"db": database, "cuid": cuid, "suid": item.SUID}).Debug("Added entry")
	return item.SUID, nil
}

// lookup finds the entry a client id is mapped to.
func (b *Backend) lookup(ctx context.Context, p domain.Partner, database, cuid string) (*domain.Item, error) {
	suid, err := b.persistence.SUID(ctx, p, database, cuid)
	if err != nil {
		return nil, err
	}
	if suid == "" {
		return nil, fmt.Errorf("%w: %s", ErrNoMapping, cuid)
	}

	item, err := b.persistence.GetItem(ctx, p.User, database, suid)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, fmt.Errorf("%w: %s/%s", ErrNotFound, database, suid)
	}

	return item, nil
}

func (b *Backend) ReplaceEntry(ctx context.Context, p domain.Partner, databaseURI string, e *domain.Entry, cuid string) (string, error) {
	database := Normalize(databaseURI)

	previous, err := b.lookup(ctx, p, database, cuid)
	if err != nil {
		return "", err
	}

	now := b.CurrentTimestamp()
	item := *previous
	item.Content = e.Content
	item.ContentType = e.ContentType
	item.Modified = now

	err = b.store.save(ctx, &item, previous)
	if err != nil {
		return "", fmt.Errorf("could not store entry: %w", err)
	}
	err = b.persistence.SaveItem(ctx, &item)
	if err != nil {
		return "", err
	}
	err = b.persistence.SaveMapping(ctx, p, database, cuid, item.SUID, now)
	if err != nil {
		return "", err
	}

	b.l.WithFields(logrus.Fields{"db": database, "cuid": cuid, "suid": item.SUID}).Debug("Replaced entry")
	return item.SUID, nil
}

func (b *Backend) DeleteEntry(ctx context.Context, p domain.Partner, databaseURI, cuid string) error {
	database := Normalize(databaseURI)

	item, err := b.lookup(ctx, p, database, cuid)
	if err != nil {
		return err
	}

	err = b.store.remove(ctx, item)
	if err != nil {
		return fmt.Errorf("could not remove entry: %w", err)
	}
	_, err = b.persistence.DeleteItem(ctx, p.User, database, item.SUID)
	if err != nil {
		return err
	}
	err = b.persistence.RemoveFromSuidList(ctx, p, database, item.SUID)
	if err != nil {
		return err
	}
	err = b.persistence.DeleteMapping(ctx, p, database, item.SUID)
	if err != nil {
		return err
	}

	b.l.WithFields(logrus.Fields{"db": database, "cuid": cuid, "suid": item.SUID}).Debug("Deleted entry")
	return nil
}

// Close releases the connection of the content store, if any.
func (b *Backend) Close() error {
	if c, ok := b.store.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// SUIDs lists the server ids of all entries of a user's database.
func (b *Backend) SUIDs(ctx context.Context, user, databaseURI string) ([]string, error) {
	database := Normalize(databaseURI)

	err := b.store.refresh(ctx, user, database, b.CurrentTimestamp())
	if err != nil {
		return nil, fmt.Errorf("could not refresh %s: %w", database, err)
	}

	items, err := b.persistence.ListItems(ctx, user, database)
	if err != nil {
		return nil, err
	}

	suids := make([]string, 0, len(items))
	for _, item := range items {
		suids = append(suids, item.SUID)
	}
	return suids, nil
}
