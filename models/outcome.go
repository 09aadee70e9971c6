package models

// OutcomeStatus is the tri-state result of one generation attempt.
type OutcomeStatus string

const (
	OutcomeSuccess OutcomeStatus = "success"
	OutcomeSkip    OutcomeStatus = "skip"
	OutcomeError   OutcomeStatus = "error"
)

// GenerationOutcome is produced once per node per run. Success outcomes are
// cached; skip and error outcomes are not, so the next run retries them.
type GenerationOutcome struct {
	Status  OutcomeStatus `json:"status"`
	Content string        `json:"content,omitempty"`
	Reason  string        `json:"reason,omitempty"`
}
