package api

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"sync"

	"saif-gifts/app"
	"saif-gifts/config"
	"saif-gifts/models"
	"saif-gifts/utils"

	"github.com/gin-gonic/gin"
)

var (
	router  http.Handler
	initErr error
	once    sync.Once
)

func initApp() {
	once.Do(func() {
		gin.SetMode(gin.ReleaseMode)

		cfg := config.LoadConfig()
		logger, err := utils.NewLogger(cfg.AppEnv)
		if err != nil {
			initErr = err
			return
		}

		application, err := app.New(context.Background(), cfg, logger)
		if err != nil {
			log.Printf("Failed to initialize app: %v", err)
			initErr = err
			return
		}
		router = application.Router
	})
}

// Handler is the serverless entry point.
func Handler(w http.ResponseWriter, r *http.Request) {
	initApp()
	if initErr != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusServiceUnavailable)
		json.NewEncoder(w).Encode(models.ErrorResponse{
			Success: false,
			Message: "Service unavailable",
		})
		return
	}
	router.ServeHTTP(w, r)
}
