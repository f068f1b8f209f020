// SPDX-License-Identifier: GPL-3.0-or-later
package backend

import (
	"context"

	"github.com/CrawX/go-syncml/domain"
)

type Retrieved struct {
	SUID  string
	Entry *domain.Entry
	Error error
}

// ConcurrentRetriever fetches many entries in parallel. Each failed retrieval
// is tried once more.
type ConcurrentRetriever struct {
	domain.Backend
}

func (cr *ConcurrentRetriever) RetrieveAll(ctx context.Context, p domain.Partner, databaseURI string, suids []string, contentType string, concurrency int) []*Retrieved {
	semaphore := make(chan bool, concurrency)
	results := make([]*Retrieved, len(suids))
	for i := 0; i < len(suids); i++ {
		semaphore <- true
		go func(index int) {
			results[index] = cr.retrieve(ctx, p, databaseURI, suids[index], contentType)
			if results[index].Error != nil {
				results[index] = cr.retrieve(ctx, p, databaseURI, suids[index], contentType)
			}
			<-semaphore
		}(i)
	}

	for i := 0; i < concurrency; i++ {
		semaphore <- true
	}

	return results
}

func (cr *ConcurrentRetriever) retrieve(ctx context.Context, p domain.Partner, databaseURI, suid, contentType string) *Retrieved {
	e, err := cr.RetrieveEntry(ctx, p, databaseURI, suid, contentType)
	return &Retrieved{SUID: suid, Entry: e, Error: err}
}
