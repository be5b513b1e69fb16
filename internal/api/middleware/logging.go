package middleware

import (
	"log/slog"
	"net/http"

	"github.com/boardscore/boardscore/internal/middleware"
)

// Logging creates request logging middleware for the API
func Logging(logger *slog.Logger) func(http.Handler) http.Handler {
	return middleware.Logging(logger)
}
