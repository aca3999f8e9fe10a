package repository

import "github.com/okian/ewi/pkg/logger"

// Option applies a configuration option to the FileStore.
type Option func(*FileStore)

// WithExtension sets the file name suffix, e.g. ".txt".
func WithExtension(ext string) Option {
	return func(s *FileStore) {
		if ext != "" {
			s.ext = ext
		}
	}
}

// WithAtomic makes Save write to a temporary file and rename it into place.
func WithAtomic(atomic bool) Option {
	return func(s *FileStore) {
		s.atomic = atomic
	}
}

// WithLogger sets the store logger.
func WithLogger(l logger.Logger) Option {
	return func(s *FileStore) {
		if l != nil {
			s.log = l
		}
	}
}
