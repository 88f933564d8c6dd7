package health

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/counterdesk/counterdesk/internal/config"
	"github.com/hellofresh/health-go/v5"
	healthRedis "github.com/hellofresh/health-go/v5/checks/redis"
)

// NewHealthHandler reports whether the front desk can do its job: reach the
// remote inventory API, and reach redis when sessions are shared there.
func NewHealthHandler(cfg *config.Config) (*health.Health, error) {

	checks := []health.Config{
		{
			Name:      "inventory-api",
			Timeout:   3 * time.Second,
			SkipOnErr: false,
			Check:     apiReachable(cfg.InventoryAPI.BaseURL),
		},
	}

	if cfg.Session.Backend == "redis" {
		checks = append(checks, health.Config{
			Name:      "session-redis",
			Timeout:   2 * time.Second,
			SkipOnErr: false,
			Check: healthRedis.New(healthRedis.Config{
				DSN: fmt.Sprintf("redis://%s/%d", cfg.Session.Redis.Addr(), cfg.Session.Redis.DB),
			}),
		})
	}

	h, err := health.New(
		health.WithComponent(health.Component{
			Name:    "counterdesk",
			Version: "1.0.0",
		}),
		health.WithSystemInfo(),
		health.WithChecks(checks...),
	)

	if err != nil {
		return nil, fmt.Errorf("failed to create health instance: %w", err)
	}

	return h, nil
}

// apiReachable probes the API root without credentials. Any HTTP response
// counts as reachable; only transport failures are unhealthy.
func apiReachable(baseURL string) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL, nil)
		if err != nil {
			return fmt.Errorf("failed to build probe request: %w", err)
		}

		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			return fmt.Errorf("inventory API unreachable: %w", err)
		}

		_ = resp.Body.Close()

		return nil
	}
}
