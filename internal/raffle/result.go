// Package raffle implements the prize-draw subsystem: eligibility rules,
// guarded participant registration, reconciliation of historical orders,
// winner selection, the timed spin-down animation and guarded winner
// persistence.
//
// All guards here (in-progress flag, rate limit, loop guards) are
// process-local. Independent processes are only kept apart by the
// store-level duplicate lookups.
package raffle

import (
	"errors"
	"fmt"
)

var (
	ErrValidation      = errors.New("validation failed")
	ErrEmptyPool       = errors.New("participant pool is empty")
	ErrNotIdle         = errors.New("spin already started")
	ErrIndexOutOfRange = errors.New("winner index out of range")
)

// Code identifies the outcome of a raffle operation.
type Code string

const (
	CodeSuccess         Code = "SUCCESS"
	CodeValidation      Code = "VALIDATION_ERROR"
	CodeNotEligible     Code = "NOT_ELIGIBLE"
	CodePromotionPaused Code = "PROMOTION_PAUSED"
	CodeAlreadyExists   Code = "ALREADY_EXISTS"
	CodeInProgress      Code = "IN_PROGRESS"
	CodeRateLimited     Code = "RATE_LIMITED"
	CodeLoopDetected    Code = "LOOP_DETECTED"
	CodeStoreError      Code = "STORE_ERROR"
)

// Category groups codes by how callers should propagate them.
type Category string

const (
	CategorySuccess     Category = "Success"
	CategoryValidation  Category = "ValidationError"
	CategoryEligibility Category = "EligibilityRejected"
	CategoryConcurrency Category = "ConcurrencyRejected"
	CategoryStore       Category = "StoreError"
)

func (c Code) Category() Category {
	switch c {
	case CodeSuccess:
		return CategorySuccess
	case CodeValidation:
		return CategoryValidation
	case CodeNotEligible, CodePromotionPaused:
		return CategoryEligibility
	case CodeAlreadyExists, CodeInProgress, CodeRateLimited, CodeLoopDetected:
		return CategoryConcurrency
	default:
		return CategoryStore
	}
}

// Result is the structured outcome returned instead of an error.
type Result struct {
	Success bool   `json:"success"`
	Code    Code   `json:"code"`
	Message string `json:"message"`
	// ID is the created record, or the pre-existing one for ALREADY_EXISTS.
	ID  string `json:"id,omitempty"`
	Err error  `json:"-"`
}

// NoOp reports whether the caller should treat the result as an
// idempotent no-op rather than a failure.
func (r Result) NoOp() bool {
	return r.Code.Category() == CategoryConcurrency
}

func (r Result) String() string {
	if r.ID != "" {
		return fmt.Sprintf("%s (%s): %s", r.Code, r.ID, r.Message)
	}
	return fmt.Sprintf("%s: %s", r.Code, r.Message)
}

func succeeded(id, msg string) Result {
	return Result{Success: true, Code: CodeSuccess, Message: msg, ID: id}
}

func rejected(code Code, msg string) Result {
	return Result{Code: code, Message: msg}
}

func storeFailure(err error, msg string) Result {
	return Result{Code: CodeStoreError, Message: msg + ": " + err.Error(), Err: err}
}
