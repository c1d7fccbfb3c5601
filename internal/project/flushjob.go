package project

import "context"

// FlushJob adapts Manager.Flush to the scheduler.Job interface, acting
// as a safety-net sweep in case a debounced write's timer is lost (e.g.
// the process is killed between arming the timer and it firing) —
// every sweep interval, any project still marked dirty gets written.
type FlushJob struct {
	Manager *Manager
}

func (j *FlushJob) Name() string { return "project_flush_sweep" }

func (j *FlushJob) Run(ctx context.Context) error {
	return j.Manager.Flush()
}
