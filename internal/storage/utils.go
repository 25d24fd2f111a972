package storage

import (
	"context"
	"sync"
	"time"

	"github.com/chrissnell/timbercruise/internal/log"
)

const pingTimeout = 5 * time.Second

// CheckHealth pings the backend once and records the result
func (hm *HealthManager) CheckHealth(ctx context.Context, checker HealthChecker) HealthData {
	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	health := HealthData{
		LastCheck: time.Now(),
		Status:    StatusHealthy,
		Message:   checker.Name() + " connection active",
	}
	if err := checker.Ping(pingCtx); err != nil {
		health.Status = StatusUnhealthy
		health.Message = checker.Name() + " ping failed"
		health.Error = err.Error()
	}

	hm.UpdateHealth(checker.Name(), health)
	return health
}

// StartHealthMonitor checks every backend before returning and then once per
// interval until ctx is cancelled
func (hm *HealthManager) StartHealthMonitor(ctx context.Context, wg *sync.WaitGroup, interval time.Duration, checkers ...HealthChecker) {
	if len(checkers) == 0 {
		return
	}

	updateHealth := func() {
		for _, c := range checkers {
			health := hm.CheckHealth(ctx, c)
			if health.Status != StatusHealthy {
				log.Warnf("%s health check failed: %s", c.Name(), health.Error)
			} else {
				log.Debugf("Updated %s health status: %s", c.Name(), health.Status)
			}
		}
	}

	updateHealth()

	wg.Add(1)
	go func() {
		defer wg.Done()

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				updateHealth()
			case <-ctx.Done():
				log.Info("stopping storage health monitor")
				return
			}
		}
	}()
}
