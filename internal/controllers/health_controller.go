package controllers

import (
	"fmt"
	"net/http"
	"time"

	json "github.com/goccy/go-json"

	"github.com/lockedloop/tempus-fugit/internal/services"
	"github.com/lockedloop/tempus-fugit/internal/storage"
)

type HealthController struct {
	service   services.ContainerServiceInterface
	store     storage.StoreInterface
	startTime time.Time
}

type healthResponse struct {
	Status        string  `json:"status"`
	Uptime        string  `json:"uptime"`
	UptimeSeconds float64 `json:"uptime_seconds"`
	Containers    int     `json:"containers"`
	LastTick      string  `json:"last_tick"`
	SyncEnabled   bool    `json:"sync_enabled"`
}

func (hc *HealthController) Health(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}

	uptime := time.Since(hc.startTime)
	lastTick := ""
	if t := hc.service.LastTick(); !t.IsZero() {
		lastTick = t.UTC().Format(time.RFC3339)
	}

	resp := healthResponse{
		Status:        "ok",
		Uptime:        formatDuration(uptime),
		UptimeSeconds: uptime.Seconds(),
		Containers:    hc.service.ContainerCount(),
		LastTick:      lastTick,
		SyncEnabled:   hc.store.HasSync(),
	}

	gson, err := json.Marshal(resp)
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(gson)
}

func formatDuration(d time.Duration) string {
	hours := int(d.Hours())
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60
	return fmt.Sprintf("%dh%dm%ds", hours, minutes, seconds)
}

func NewHealthController(service services.ContainerServiceInterface, store storage.StoreInterface) *HealthController {
	return &HealthController{
		service:   service,
		store:     store,
		startTime: time.Now(),
	}
}
