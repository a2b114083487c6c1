package tasks

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/mikestefanello/backlite"

	"github.com/mrlokans/librarium/internal/entities"
	"github.com/mrlokans/librarium/internal/search"
)

// BookLoader fetches a catalog record for indexing.
type BookLoader interface {
	GetBookByID(id uint) (*entities.Book, error)
}

// SearchIndexer pushes documents to the search service.
type SearchIndexer interface {
	Index(ctx context.Context, doc search.Document) error
}

// IndexBookTask pushes one catalog record to the external search index.
// The book is re-read at processing time so the index always receives the
// latest state, even if the task sat in the queue through further edits.
type IndexBookTask struct {
	BookID uint `json:"book_id"`
}

// Config returns the queue configuration for index tasks.
func (t IndexBookTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        "index_book",
		MaxAttempts: 3,
		Backoff:     5 * time.Minute,
		Timeout:     1 * time.Minute,
		Retention: &backlite.Retention{
			Duration:   24 * time.Hour,
			OnlyFailed: false,
			Data:       &backlite.RetainData{OnlyFailed: true},
		},
	}
}

// IndexBookProcessor creates a processor function for IndexBookTask.
func IndexBookProcessor(loader BookLoader, indexer SearchIndexer) backlite.QueueProcessor[IndexBookTask] {
	return func(ctx context.Context, task IndexBookTask) error {
		book, err := loader.GetBookByID(task.BookID)
		if err != nil {
			// A book deleted between enqueue and processing is not a
			// failure worth retrying.
			log.Printf("[TASK] Skipping index for book %d: %v", task.BookID, err)
			return nil
		}

		doc := search.Document{
			ID:          book.ID,
			Title:       book.Title,
			Author:      book.Author,
			Description: book.Description,
			ISBN:        book.ISBN,
			ImageURL:    book.ImageURL,
		}
		if err := indexer.Index(ctx, doc); err != nil {
			return fmt.Errorf("index book %d: %w", task.BookID, err)
		}

		log.Printf("[TASK] Indexed book %d (%s)", doc.ID, doc.Title)
		return nil
	}
}

// NewIndexBookQueue creates a backlite queue for search index tasks.
func NewIndexBookQueue(loader BookLoader, indexer SearchIndexer) backlite.Queue {
	return backlite.NewQueue(IndexBookProcessor(loader, indexer))
}

// EnqueueIndexBook schedules a book for re-indexing. Failures are logged
// and swallowed: the catalog write already committed and must not be
// rolled back over a queue hiccup.
func (c *Client) EnqueueIndexBook(bookID uint) {
	if _, err := c.Add(IndexBookTask{BookID: bookID}).Save(); err != nil {
		log.Printf("[TASK] Failed to enqueue index task for book %d: %v", bookID, err)
	}
}
