package pipeline

import (
	"github.com/MidhulKiruthik/Nova-sub000/pkg/logger"
)

// Option configures an Importer.
type Option func(*Importer)

// WithWorkers sets the size of the rescoring pool. Non-positive values keep
// the default.
func WithWorkers(n int) Option {
	return func(im *Importer) {
		if n > 0 {
			im.workers = n
		}
	}
}

// WithLogger sets the importer logger.
func WithLogger(l logger.Logger) Option {
	return func(im *Importer) {
		if l != nil {
			im.log = l
		}
	}
}
