package interfaces

// SchedulerService - interface for cron-driven batch scheduling
type SchedulerService interface {
	// Start registers configured jobs and begins the cron loop
	Start() error
	// Stop halts the cron loop, waiting for running jobs to finish
	Stop()
}
