package penalty

import "errors"

// Penalty domain errors
var (
	ErrPenaltyNotFound         = errors.New("penalty not found")
	ErrInvalidStatusTransition = errors.New("penalty status transition not allowed")
	ErrNotPenaltyOwner         = errors.New("penalty belongs to another employee")
	ErrHistoryNotFound         = errors.New("violation history not found")
)
