package storage

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-logr/logr"
	"gorm.io/gorm/logger"
)

// logrWriter forwards gorm's formatted log lines to a logr sink.
type logrWriter struct {
	log logr.Logger
}

func (w logrWriter) Printf(format string, args ...interface{}) {
	w.log.V(1).Info(strings.TrimSpace(fmt.Sprintf(format, args...)))
}

// newGormLogger reports errors and slow queries only.
func newGormLogger(log logr.Logger) logger.Interface {
	return logger.New(logrWriter{log: log.WithName("gorm")}, logger.Config{
		SlowThreshold:             time.Second,
		LogLevel:                  logger.Warn,
		IgnoreRecordNotFoundError: true,
		ParameterizedQueries:      true,
		Colorful:                  false,
	})
}
