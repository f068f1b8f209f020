// SPDX-License-Identifier: GPL-3.0-or-later
package replay

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/CrawX/go-syncml/device"
	"github.com/CrawX/go-syncml/domain"
)

// BackendSeeder adds seeded entries for the test user without a client
// mapping, so the next sync sends them as server adds.
type BackendSeeder struct {
	Backend domain.Backend
	Partner domain.Partner
}

var todo = regexp.MustCompile(`(\r\n|\r|\n)BEGIN:\s*VTODO`)

// seedDatabase picks the database an entry of a content type belongs to.
func seedDatabase(contentType, content string) (string, error) {
	switch strings.ToLower(contentType) {
	case "text/x-vnote", "text/plain":
		return "notes", nil
	case "text/x-vcard", "text/directory", "text/vcard":
		return "contacts", nil
	case "text/x-vcalendar", "text/calendar":
		if todo.MatchString(content) {
			return "tasks", nil
		}
		return "calendar", nil
	}
	return "", fmt.Errorf("no database for content type %s", contentType)
}

func (s *BackendSeeder) Seed(ctx context.Context, contentType, content string) error {
	content, contentType, err := device.NewSync4j("").ConvertClient2Server(content, contentType)
	if err != nil {
		return err
	}

	database, err := seedDatabase(contentType, content)
	if err != nil {
		return err
	}

	_, err = s.Backend.AddEntry(ctx, s.Partner, database, &domain.Entry{Content: content, ContentType: contentType}, "")
	return err
}
