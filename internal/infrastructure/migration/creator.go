package migration

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// MigrationFile points at a generated up/down pair
type MigrationFile struct {
	Version  string
	Name     string
	UpPath   string
	DownPath string
}

// CreateMigration writes an empty up/down pair under dir. Files are named
// <version>_<name> with a UTC timestamp version so they sort in creation
// order, and open with the same header the committed migrations carry.
func CreateMigration(dir, name, description string) (*MigrationFile, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create migrations directory: %w", err)
	}

	slug := slugify(name)
	if slug == "" {
		return nil, fmt.Errorf("migration name %q has no usable characters", name)
	}

	now := time.Now().UTC()
	mf := &MigrationFile{
		Version: now.Format("20060102150405"),
		Name:    slug,
	}
	mf.UpPath = filepath.Join(dir, mf.Version+"_"+slug+".up.sql")
	mf.DownPath = filepath.Join(dir, mf.Version+"_"+slug+".down.sql")

	created := now.Format(time.RFC3339)
	up := fmt.Sprintf("-- Migration: %s\n-- Created: %s\n-- Description: %s\n\n", slug, created, description)
	down := fmt.Sprintf("-- Migration: %s (Rollback)\n-- Created: %s\n-- Description: Rollback for %s\n\n", slug, created, description)

	if err := os.WriteFile(mf.UpPath, []byte(up), 0o644); err != nil {
		return nil, fmt.Errorf("failed to write %s: %w", mf.UpPath, err)
	}
	if err := os.WriteFile(mf.DownPath, []byte(down), 0o644); err != nil {
		_ = os.Remove(mf.UpPath)
		return nil, fmt.Errorf("failed to write %s: %w", mf.DownPath, err)
	}
	return mf, nil
}

// slugify lowercases a migration name and collapses runs of separators to
// single underscores, dropping everything else.
func slugify(name string) string {
	var b []byte
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b = append(b, byte(r))
		case r == ' ', r == '-', r == '_':
			if n := len(b); n > 0 && b[n-1] != '_' {
				b = append(b, '_')
			}
		}
	}
	return strings.TrimSuffix(string(b), "_")
}

// ListMigrations returns the base names of the up/down pairs in dir, in
// version order. A missing directory lists as empty.
func ListMigrations(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read migrations directory: %w", err)
	}

	names := make([]string, 0, len(entries)/2)
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".up.sql") {
			continue
		}
		names = append(names, strings.TrimSuffix(entry.Name(), ".up.sql"))
	}
	return names, nil
}
