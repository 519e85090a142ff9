// Package repository loads classifier artifacts from disk.
package repository

import (
	"context"
	"path/filepath"

	"github.com/okian/enhealth/internal/domain/model"
)

// Store resolves a classifier by artifact name.
type Store interface {
	// Load reads, validates and builds the classifier stored under name.
	Load(ctx context.Context, name string) (model.Classifier, error)
}

// resolve joins name onto dir unless name is already absolute.
func resolve(dir, name string) string {
	if filepath.IsAbs(name) || dir == "" {
		return name
	}
	return filepath.Join(dir, name)
}
