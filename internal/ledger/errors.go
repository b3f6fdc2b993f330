package ledger

import (
	"errors"
	"fmt"
)

var (
	ErrValidation            = errors.New("validation failed")
	ErrInvalidQuantity       = fmt.Errorf("%w: quantity must be positive", ErrValidation)
	ErrNotFound              = errors.New("not found")
	ErrMissingFormulation    = errors.New("no active formulation")
	ErrInsufficientStock     = errors.New("insufficient raw material stock")
	ErrInsufficientYardStock = errors.New("insufficient yard stock")
	ErrAlreadyDispatched     = errors.New("order already dispatched")
	ErrNegativeStock         = errors.New("adjustment would make stock negative")
	ErrConflict              = errors.New("already exists")
	ErrStorage               = errors.New("storage failure")
)

// StorageError is an unclassified failure of the underlying store.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string { return fmt.Sprintf("%s: storage: %v", e.Op, e.Err) }
func (e *StorageError) Unwrap() error { return e.Err }
func (e *StorageError) Is(target error) bool {
	return target == ErrStorage
}

var domainErrors = []error{
	ErrValidation,
	ErrNotFound,
	ErrMissingFormulation,
	ErrInsufficientStock,
	ErrInsufficientYardStock,
	ErrAlreadyDispatched,
	ErrNegativeStock,
	ErrConflict,
	ErrStorage,
}

// classify leaves domain errors alone and wraps anything else as a StorageError.
func classify(op string, err error) error {
	if err == nil {
		return nil
	}
	for _, target := range domainErrors {
		if errors.Is(err, target) {
			return err
		}
	}
	return &StorageError{Op: op, Err: err}
}

func validation(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

func notFound(what string, id int64) error {
	return fmt.Errorf("%w: %s %d", ErrNotFound, what, id)
}
