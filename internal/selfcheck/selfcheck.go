package selfcheck

import (
	"net/http"
	"time"

	"github.com/robfig/cron/v3"

	"comicvault/internal/logger"
)

// Scheduler pings the service's own /health endpoint so free-tier hosts do not
// put the process to sleep between requests.

type Scheduler struct {
	BaseURL string
	Client  *http.Client
}

// New creates a scheduler targeting baseURL. The ping itself is bounded; a
// hung health endpoint must not pile up cron goroutines.

func New(baseURL string) *Scheduler {
	return &Scheduler{
		BaseURL: baseURL,
		Client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// Start registers the ping job. Every 14 minutes, just under typical
// idle-shutdown windows.
func (s *Scheduler) Start() {
	c := cron.New()
	_, err := c.AddFunc("@every 14m", s.ping)
	if err != nil {
		logger.Error("Failed to set up self-check job: %v", err)
		return
	}
	c.Start()
	logger.Info("Self-check started (pings %s/health every 14 minutes)", s.BaseURL)
}

func (s *Scheduler) ping() {
	resp, err := s.Client.Get(s.BaseURL + "/health")
	if err != nil {
		logger.Error("Health check failed: %v", err)
		return
	}
	defer resp.Body.Close()
	logger.Info("Health check: %d", resp.StatusCode)
}
