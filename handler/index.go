package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"saif-gifts/models"
)

type HealthStatus struct {
	Status string    `json:"status"`
	Path   string    `json:"path"`
	Time   time.Time `json:"time"`
}

// Health is the liveness body shared by the serverless probe and the /health
// route. It never touches Postgres or Redis.
func Health(path string) models.Response {
	return models.Response{
		Success: true,
		Message: "Saif Gifts API",
		Data: HealthStatus{
			Status: "ok",
			Path:   path,
			Time:   time.Now().UTC(),
		},
	}
}

func Handler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set("Allow", "GET, HEAD")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if r.Method == http.MethodHead {
		return
	}
	json.NewEncoder(w).Encode(Health(r.URL.Path))
}
