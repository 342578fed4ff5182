// Package pveam implements the TemplateCatalog port over the Proxmox
// appliance manager and the local template cache.
package pveam

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sort"
	"strings"

	"github.com/bnema/wgate/internal/boundaries/out"
	"github.com/bnema/wgate/internal/domain"
	"github.com/bnema/wgate/pkg/templatename"
)

const binary = "pveam"

// Catalog lists, refreshes and downloads templates.
type Catalog struct {
	runner   out.CommandRunner
	cacheDir string
	section  string
}

// NewCatalog creates a Catalog. cacheDir may contain a %s verb that is
// replaced with the storage name.
func NewCatalog(runner out.CommandRunner, cacheDir string) *Catalog {
	return &Catalog{runner: runner, cacheDir: cacheDir, section: "system"}
}

func (c *Catalog) dirFor(storage string) string {
	if strings.Contains(c.cacheDir, "%s") {
		return fmt.Sprintf(c.cacheDir, storage)
	}
	return c.cacheDir
}

// Cached lists template archives present in the storage's cache directory.
func (c *Catalog) Cached(_ context.Context, storage string) ([]string, error) {
	dir := c.dirFor(storage)
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read template cache %s: %w", dir, err)
	}

	var names []string
	for _, e := range entries {
		if e.Type().IsRegular() && templatename.IsArchive(e.Name()) {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

func (c *Catalog) Update(ctx context.Context) error {
	if _, err := c.runner.Run(ctx, out.Command{Name: binary, Args: []string{"update"}}); err != nil {
		return fmt.Errorf("failed to update template catalog: %w", err)
	}
	return nil
}

// Available lists archive names from the catalog's system section.
func (c *Catalog) Available(ctx context.Context) ([]string, error) {
	res, err := c.runner.Run(ctx, out.Command{Name: binary, Args: []string{"available", "--section", c.section}})
	if err != nil {
		return nil, fmt.Errorf("failed to list available templates: %w", err)
	}

	var names []string
	scanner := bufio.NewScanner(bytes.NewReader(res.Stdout))
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		if name := fields[len(fields)-1]; templatename.IsArchive(name) {
			names = append(names, name)
		}
	}
	return names, scanner.Err()
}

func (c *Catalog) Download(ctx context.Context, ref domain.TemplateRef) error {
	_, err := c.runner.Run(ctx, out.Command{Name: binary, Args: []string{"download", ref.Storage, ref.Name}})
	if err != nil {
		return fmt.Errorf("failed to download template %s: %w", ref.Name, err)
	}
	return nil
}
