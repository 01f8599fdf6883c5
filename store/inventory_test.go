package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"storefront/model"
)

func TestLoadWarehouseInventory(t *testing.T) {
	dir := t.TempDir()
	files := map[string]string{
		"warehouse2.txt": "Yam: 3000;\n",
		"warehouse1.txt": "Rice: 115000;Beans: 65000",
		"warehouse3.txt": "   ",
		"notes.txt":      "Ignored: 1",
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}

	raw, err := LoadWarehouseInventory(context.Background(), dir, "warehouse*.txt")
	if err != nil {
		t.Fatalf("LoadWarehouseInventory: %v", err)
	}
	if want := "Rice: 115000;Beans: 65000;Yam: 3000"; raw != want {
		t.Fatalf("got %q, want %q", raw, want)
	}
}

func TestLoadWarehouseInventory_NoFiles(t *testing.T) {
	_, err := LoadWarehouseInventory(context.Background(), t.TempDir(), "warehouse*.txt")
	if !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
