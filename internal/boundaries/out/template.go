package out

import (
	"context"

	"github.com/bnema/wgate/internal/domain"
)

// TemplateCatalog defines the contract for the template catalog and the
// local template cache.
type TemplateCatalog interface {
	// Cached returns the archive names already present in the storage's cache.
	Cached(ctx context.Context, storage string) ([]string, error)
	// Update refreshes the remote catalog index.
	Update(ctx context.Context) error
	// Available lists the archive names offered by the remote catalog.
	Available(ctx context.Context) ([]string, error)
	// Download fetches the archive into the storage's cache.
	Download(ctx context.Context, ref domain.TemplateRef) error
}
