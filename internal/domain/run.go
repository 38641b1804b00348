package domain

import "time"

// RunState is the lifecycle state of a client's tracking run.
// Transitions: Idle -> Running -> {Done | Failed}; Done/Failed -> Idle only
// via explicit reset. Process-lifetime only, never persisted.
type RunState string

const (
	RunIdle    RunState = "idle"
	RunRunning RunState = "running"
	RunDone    RunState = "done"
	RunFailed  RunState = "failed"
)

// RunStatus is the externally visible state of one client's runs.
type RunStatus struct {
	ClientID   int64     `json:"clientId"`
	State      RunState  `json:"state"`
	RunID      string    `json:"runId,omitempty"`
	Reason     string    `json:"reason,omitempty"` // failure reason when State == failed
	StartedAt  time.Time `json:"startedAt,omitempty"`
	FinishedAt time.Time `json:"finishedAt,omitempty"`
}

// RunReport summarizes one completed (or failed) run of the full
// product x keyword matrix for one client.
type RunReport struct {
	RunID        string        `json:"runId"`
	ClientID     int64         `json:"clientId"`
	Observations int           `json:"observations"`
	Found        int           `json:"found"`
	Duration     time.Duration `json:"duration"`
	Err          error         `json:"-"`
	Error        string        `json:"error,omitempty"`
}
