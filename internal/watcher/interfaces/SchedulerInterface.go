package interfaces

import (
	"buildwatch/internal/models"
	"context"
	"time"
)

type SchedulerInterface interface {
	Start(titleIDs []string, interval time.Duration)
	Stop()
	RunCycle(ctx context.Context)
	Status() models.WatcherStatus
}
