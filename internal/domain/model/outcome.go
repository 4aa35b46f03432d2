package model

import "time"

// JobOutcome is the final record of one handler invocation.
type JobOutcome struct {
	DescriptiveName string
	Elapsed         time.Duration
	Aborted         bool
	Failed          bool
	Identity        *CommitIdentity
	SnapshotPath    string

	// Interrupted is set when shutdown cancelled the job before it finished.
	Interrupted bool
}

// ElapsedMillis returns the elapsed wall-clock time rounded to milliseconds.
func (o JobOutcome) ElapsedMillis() int64 {
	return o.Elapsed.Round(time.Millisecond).Milliseconds()
}
