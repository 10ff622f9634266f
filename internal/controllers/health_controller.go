package controllers

import (
	"buildwatch/internal/models"
	"buildwatch/internal/watcher/interfaces"
	"fmt"
	"net/http"
	"time"
)

type HealthController struct {
	scheduler interfaces.SchedulerInterface
	startTime time.Time
}

type rootResponse struct {
	Status string    `json:"status"`
	Time   time.Time `json:"time"`
}

type healthResponse struct {
	Status        string  `json:"status"`
	Uptime        string  `json:"uptime"`
	UptimeSeconds float64 `json:"uptime_seconds"`
	Titles        int     `json:"titles"`
}

type serverStatus struct {
	Status    string    `json:"status"`
	Time      time.Time `json:"time"`
	StartedAt time.Time `json:"startedAt"`
	Uptime    string    `json:"uptime"`
}

type statusResponse struct {
	Server  serverStatus         `json:"server"`
	Watcher models.WatcherStatus `json:"watcher"`
}

func (hc *HealthController) Root(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, rootResponse{Status: "ok", Time: time.Now().UTC()})
}

func (hc *HealthController) Health(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}

	uptime := time.Since(hc.startTime)
	writeJSON(w, http.StatusOK, healthResponse{
		Status:        "ok",
		Uptime:        formatDuration(uptime),
		UptimeSeconds: uptime.Seconds(),
		Titles:        len(hc.scheduler.Status().TitleIDs),
	})
}

func (hc *HealthController) Status(w http.ResponseWriter, r *http.Request) {
	now := time.Now().UTC()
	writeJSON(w, http.StatusOK, statusResponse{
		Server: serverStatus{
			Status:    "ok",
			Time:      now,
			StartedAt: hc.startTime.UTC(),
			Uptime:    formatDuration(now.Sub(hc.startTime)),
		},
		Watcher: hc.scheduler.Status(),
	})
}

func formatDuration(d time.Duration) string {
	hours := int(d.Hours())
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60
	return fmt.Sprintf("%dh%dm%ds", hours, minutes, seconds)
}

func NewHealthController(scheduler interfaces.SchedulerInterface) *HealthController {
	return &HealthController{
		scheduler: scheduler,
		startTime: time.Now(),
	}
}
