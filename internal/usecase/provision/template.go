package provision

import (
	"context"
	"fmt"

	"github.com/bnema/wgate/internal/domain"
	"github.com/bnema/wgate/pkg/logger"
	"github.com/bnema/wgate/pkg/templatename"
)

// EnsureTemplate makes the template archive available in the local cache and
// returns the reference resolved to an exact archive name.
func (s *Service) EnsureTemplate(ctx context.Context, ref domain.TemplateRef) (domain.TemplateRef, error) {
	cached, err := s.catalog.Cached(ctx, ref.Storage)
	if err != nil {
		return ref, fmt.Errorf("failed to read template cache: %w", err)
	}
	if name, ok := templatename.Resolve(ref.Name, cached); ok {
		logger.Debug("Template cached", "template", name)
		return domain.TemplateRef{Storage: ref.Storage, Name: name}, nil
	}

	if err := s.catalog.Update(ctx); err != nil {
		return ref, fmt.Errorf("failed to update template catalog: %w", err)
	}
	available, err := s.catalog.Available(ctx)
	if err != nil {
		return ref, fmt.Errorf("failed to list available templates: %w", err)
	}
	name, ok := templatename.Resolve(ref.Name, available)
	if !ok {
		return ref, fmt.Errorf("%w: %s", domain.ErrTemplateNotFound, ref.Name)
	}

	resolved := domain.TemplateRef{Storage: ref.Storage, Name: name}
	logger.Info("Downloading template", "template", resolved)
	if err := s.catalog.Download(ctx, resolved); err != nil {
		return ref, fmt.Errorf("failed to download template %s: %w", name, err)
	}
	return resolved, nil
}
