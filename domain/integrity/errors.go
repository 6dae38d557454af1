package integrity

import "errors"

var (
	ErrSealNotFound    = errors.New("integrity seal not found")
	ErrHashMismatch    = errors.New("validation hash mismatch")
	ErrDecryptFailed   = errors.New("failed to decrypt sealed rng seed")
	ErrSealAlreadyExists = errors.New("integrity seal already exists for spin")
)
