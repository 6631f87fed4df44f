package logging

import (
	"fmt"

	"go.uber.org/zap"
)

// InitLogger creates the application logger for the given environment.
// Test and dev environments get the human-readable development config at
// debug level; everything else gets the production JSON config.
func InitLogger(env string) (*zap.Logger, error) {
	var logger *zap.Logger
	var err error

	switch env {
	case "test", "dev", "development":
		logger, err = zap.NewDevelopment()
	default:
		logger, err = zap.NewProduction()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}

	return logger.With(zap.String("environment", env)), nil
}
