// Package storage keeps payment transfer proof images in object storage.
package storage

import (
	"fmt"
	"path"
	"strings"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
	"github.com/shopdesk/backend/internal/domain/fulfillment"
	"github.com/shopdesk/backend/internal/domain/shared"
)

var allowedExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
	"image/gif":  ".gif",
}

// keyspace derives staging and permanent object keys.
type keyspace struct {
	staging   string
	permanent string
}

func newKeyspace(staging, permanent string) keyspace {
	return keyspace{
		staging:   strings.Trim(staging, "/"),
		permanent: strings.Trim(permanent, "/"),
	}
}

// stagedKey returns a fresh ULID key under the staging prefix. The extension
// follows the content type; the client filename only serves as a fallback.
func (k keyspace) stagedKey(filename, contentType string) (string, error) {
	ct := strings.ToLower(strings.TrimSpace(strings.Split(contentType, ";")[0]))
	ext, ok := allowedExtensions[ct]
	if !ok {
		return "", shared.NewDomainError(fulfillment.CodeValidation,
			fmt.Sprintf("Unsupported transfer image type %q", contentType))
	}
	if fe := strings.ToLower(path.Ext(filename)); fe == ".jpeg" && ext == ".jpg" {
		ext = fe
	}
	return k.staging + "/" + ulid.Make().String() + ext, nil
}

// isStaged reports whether key lives under the staging prefix.
func (k keyspace) isStaged(key string) bool {
	return strings.HasPrefix(key, k.staging+"/")
}

// permanentKey maps a staged key to its place under the order's folder.
func (k keyspace) permanentKey(stagedKey string, orderID uuid.UUID) string {
	return k.permanent + "/" + orderID.String() + "/" + path.Base(stagedKey)
}

func errImageTooLarge(maxSize int64) error {
	return shared.NewDomainError(fulfillment.CodeValidation,
		fmt.Sprintf("Transfer image exceeds the %d byte limit", maxSize))
}

func errStagedImageMissing(key string) error {
	return shared.NewDomainError(shared.ErrNotFound.Code,
		fmt.Sprintf("Staged transfer image %s not found", key))
}
