// Command web runs the DSS configuration HTTP service with settings from the
// environment and config.yaml.
package main

import (
	"context"
	"log/slog"
	"os"

	"dsstool/internal/app"
)

func main() {
	application, err := app.NewApplication(nil, nil)
	if err != nil {
		slog.Error("Failed to create application", "error", err)
		os.Exit(1)
	}

	if err := application.Run(context.Background()); err != nil {
		application.Logger.Error("Application error", "error", err)
		os.Exit(1)
	}
}
