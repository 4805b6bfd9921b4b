package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
)

// hostStats reports CPU and RAM usage in percent.
type hostStats interface {
	Usage() (cpuPercent, memPercent float64, err error)
}

type gopsutilStats struct{}

// Usage samples CPU over 100ms so health checks stay fast.
func (gopsutilStats) Usage() (float64, float64, error) {
	cpuPercent, err := cpu.Percent(100*time.Millisecond, false)
	if err != nil {
		return 0, 0, err
	}
	memStat, err := mem.VirtualMemory()
	if err != nil {
		return 0, 0, err
	}

	cpuAvg := 0.0
	if len(cpuPercent) > 0 {
		cpuAvg = cpuPercent[0]
	}
	return cpuAvg, memStat.UsedPercent, nil
}

// DatabaseHealth is the state of one sqlite database.
type DatabaseHealth struct {
	Name      string `json:"name"`
	OK        bool   `json:"ok"`
	SizeBytes int64  `json:"size_bytes"`
	Error     string `json:"error,omitempty"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status        string           `json:"status"`
	Service       string           `json:"service"`
	Version       string           `json:"version"`
	UptimeSeconds int64            `json:"uptime_seconds"`
	CPUPercent    float64          `json:"cpu_percent"`
	MemoryPercent float64          `json:"memory_percent"`
	Databases     []DatabaseHealth `json:"databases,omitempty"`
}

// handleHealth handles health check requests. A failing database makes the
// service degraded and answers 503.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := HealthResponse{
		Status:        "healthy",
		Service:       "fii-ai",
		Version:       s.version,
		UptimeSeconds: int64(time.Since(s.startedAt).Seconds()),
	}

	cpuPercent, memPercent, err := s.stats.Usage()
	if err != nil {
		s.log.Warn().Err(err).Msg("Failed to get host statistics")
	}
	resp.CPUPercent = cpuPercent
	resp.MemoryPercent = memPercent

	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	status := http.StatusOK
	for _, db := range s.databases {
		h := DatabaseHealth{Name: db.Name(), OK: true, SizeBytes: db.SizeBytes()}
		if err := db.QuickCheck(ctx); err != nil {
			h.OK = false
			h.Error = err.Error()
			resp.Status = "degraded"
			status = http.StatusServiceUnavailable
		}
		resp.Databases = append(resp.Databases, h)
	}

	s.writeJSON(w, status, resp)
}

// writeJSON writes a JSON response
func (s *Server) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}
