package sysquery

import (
	"context"
	"time"
)

// transitionPollInterval is how often a pending service transition is
// re-queried while waiting for it to settle.
const transitionPollInterval = 250 * time.Millisecond

// ServiceCollector enumerates service-control-manager entries and issues
// start/stop control requests.
type ServiceCollector struct{}

func NewServiceCollector() *ServiceCollector {
	return &ServiceCollector{}
}

// Collect returns every installed service with status, start type, and the
// associated pid when running.
func (c *ServiceCollector) Collect(ctx context.Context) ([]ServiceRecord, error) {
	records, err := enumerateServices(ctx)
	if err != nil {
		return nil, &CollectorError{Kind: KindService, Err: err}
	}
	return records, nil
}

// Toggle issues a start or stop request depending on the service's current
// status, then polls until the target status is reached. Exceeding timeout
// returns ErrTransitionTimeout instead of blocking indefinitely; a service
// already transitioning is left alone and reported via ErrAlreadyTransitioning.
func (c *ServiceCollector) Toggle(ctx context.Context, name string, timeout time.Duration) error {
	status, err := queryServiceStatus(ctx, name)
	if err != nil {
		return err
	}

	var want ServiceStatus
	switch status {
	case StatusRunning:
		if err := stopService(ctx, name); err != nil {
			return err
		}
		want = StatusStopped
	case StatusStopped:
		if err := startService(ctx, name); err != nil {
			return err
		}
		want = StatusRunning
	default:
		// Pending or paused: nothing sensible to request.
		return ErrAlreadyTransitioning
	}

	return c.waitForStatus(ctx, name, want, timeout)
}

func (c *ServiceCollector) waitForStatus(ctx context.Context, name string, want ServiceStatus, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	ticker := time.NewTicker(transitionPollInterval)
	defer ticker.Stop()

	for {
		status, err := queryServiceStatus(ctx, name)
		if err != nil {
			return err
		}
		if status == want {
			return nil
		}
		if time.Now().After(deadline) {
			return ErrTransitionTimeout
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
