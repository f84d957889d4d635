package fulfillment

import (
	"context"
	"io"

	"github.com/google/uuid"
)

// TransferImageStore keeps the payment transfer proof images attached to orders.
// Uploads land under a staging key first and are promoted once an order references them.
type TransferImageStore interface {
	// Stage stores an uploaded image and returns its staging key
	Stage(ctx context.Context, filename, contentType string, body io.Reader) (string, error)
	// Promote moves a staged image to its permanent key for the order
	Promote(ctx context.Context, stagedKey string, orderID uuid.UUID) (string, error)
	// Delete removes an image; deleting a missing key is not an error
	Delete(ctx context.Context, key string) error
}
