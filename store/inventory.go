package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"storefront/logger"
	"storefront/model"
)

// LoadWarehouseInventory reads every file in dir matching pattern, in name
// order, and joins their contents into one raw inventory string of
// ';'-separated records. Empty files are skipped.
func LoadWarehouseInventory(ctx context.Context, dir, pattern string) (string, error) {
	files, err := filepath.Glob(filepath.Join(dir, pattern))
	if err != nil {
		return "", fmt.Errorf("bad warehouse pattern %q: %w", pattern, err)
	}
	if len(files) == 0 {
		return "", fmt.Errorf("%w: no warehouse files matching %q in %s", model.ErrNotFound, pattern, dir)
	}
	slices.Sort(files)

	log := logger.FromContext(ctx)
	var parts []string
	for _, f := range files {
		b, err := os.ReadFile(f)
		if err != nil {
			return "", fmt.Errorf("read warehouse file: %w", err)
		}
		content := strings.Trim(strings.TrimSpace(string(b)), ";")
		if content == "" {
			log.Debug("Skipping empty warehouse file", "file", f)
			continue
		}
		parts = append(parts, content)
	}
	log.Info("Warehouse files read", "files", len(files), "non_empty", len(parts))
	return strings.Join(parts, ";"), nil
}
