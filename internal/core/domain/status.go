package domain

// Status represents the different statuses a deposit or withdrawal record
// can assume.
type Status string

const (
	StatusCreated    Status = "created"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
	// StatusExpired is the terminal status of a cancelled deposit.
	StatusExpired Status = "expired"
	// StatusCancelled is the terminal status of a cancelled withdrawal.
	StatusCancelled Status = "cancelled"
)

func (s Status) String() string {
	return string(s)
}

// IsFinal returns whether no more transitions can happen from this status.
// Failed records can still be confirmed again.
func (s Status) IsFinal() bool {
	return s == StatusCompleted || s == StatusExpired || s == StatusCancelled
}
