package errors

import "errors"

// ErrOptimisticLock means the record was modified by another operation
// since it was read; the caller should refetch and retry.
var ErrOptimisticLock = errors.New("record was modified by another operation, refetch and retry")

// ErrCapacityFull means a capacity-bounded resource had no room left at
// the moment of a transactional claim.
var ErrCapacityFull = errors.New("capacity exhausted for the requested time")
