package main

import (
	"context"
	"os"

	"github.com/yigit/campusrecords/internal/bootstrap"
	"github.com/yigit/campusrecords/internal/pkg/logger"
	"github.com/yigit/campusrecords/internal/server"
)

// @title Campus Records API
// @version 1.0
// @description Academic records backend: accounts, students, faculties, subjects and enrollments.

// @contact.name API Support
// @contact.email support@campusrecords.local

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /api/v1
// @schemes http https

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description JWT token for authorization, as "Bearer <token>"

func main() {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = bootstrap.DefaultConfigPath
	}

	srv, err := server.NewServer(context.Background(), configPath)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to initialize server")
		os.Exit(1)
	}

	if err := srv.Run(); err != nil {
		logger.Error().Err(err).Msg("Server execution failed or shutdown encountered errors")
		os.Exit(1)
	}

	logger.Info().Msg("Application finished gracefully.")
}
