package syncsession

import "errors"

var (
	ErrNotFound          = errors.New("sync session not found")
	ErrAlreadyCompleted  = errors.New("sync session already completed")
	ErrInvalidTransition = errors.New("invalid sync session state transition")
	ErrOutOfOrderEvent   = errors.New("sync event out of order for sync_id")
	ErrRecoveryExhausted = errors.New("sync recovery attempts exhausted")
	ErrSyncTimeout       = errors.New("sync step acknowledgement timed out")
)
