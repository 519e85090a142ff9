package repository

import "github.com/okian/enhealth/pkg/logger"

// Option applies a configuration option to the FileStore.
type Option func(*FileStore)

// WithDir sets the directory relative artifact names are resolved against.
func WithDir(dir string) Option {
	return func(s *FileStore) {
		s.dir = dir
	}
}

// WithLogger sets the logger used to report loaded artifacts.
func WithLogger(l logger.Logger) Option {
	return func(s *FileStore) {
		if l != nil {
			s.logger = l
		}
	}
}
