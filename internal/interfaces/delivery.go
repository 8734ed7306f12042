package interfaces

import (
	"context"
	"time"

	"github.com/ternarybob/marketbrief/internal/models"
)

// DocumentRenderer lays the two reports out as a document on disk
type DocumentRenderer interface {
	Render(intraday, portfolio models.Report, generatedAt time.Time) (*models.RenderedDocument, error)
}

// StatusNotifier posts short progress messages
type StatusNotifier interface {
	Notify(ctx context.Context, text string) error
}

// DocumentSender delivers a rendered document to a channel
type DocumentSender interface {
	Name() string
	SendDocument(ctx context.Context, doc *models.RenderedDocument, caption string) error
}
