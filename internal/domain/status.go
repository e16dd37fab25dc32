package domain

// BatchPhase summarizes GenerationStatus for API consumers.
type BatchPhase string

const (
	PhaseIdle    BatchPhase = "idle"
	PhaseRunning BatchPhase = "running"
	PhaseErrored BatchPhase = "errored"
)

// GenerationStatus is the batch-level progress of a session.
//
// Progress is 0-100. While Loading it is the share of completed items; after
// a failure it resets to 0 and Error holds the message.
type GenerationStatus struct {
	Loading  bool   `json:"loading"`
	Error    string `json:"error,omitempty"`
	Progress int    `json:"progress"`
}

// Phase derives the coarse state from the status fields.
func (s GenerationStatus) Phase() BatchPhase {
	switch {
	case s.Loading:
		return PhaseRunning
	case s.Error != "":
		return PhaseErrored
	default:
		return PhaseIdle
	}
}

// BatchProgress returns round(100*done/total) using integer arithmetic.
func BatchProgress(done, total int) int {
	if total <= 0 {
		return 0
	}
	return (200*done + total) / (2 * total)
}
