package paysheet

import (
	"context"
	"time"
)

// ============================================================================
// Init Hook Context Types
// ============================================================================

// InitContext contains information passed to init hooks
type InitContext struct {
	Ctx          context.Context
	SessionID    string
	ClientSecret ClientSecret
	Config       *Configuration
	Timestamp    time.Time
}

// InitResultContext contains a successful init result and context
type InitResultContext struct {
	InitContext
	Data       InitData
	Resolution Resolution
	Duration   time.Duration
}

// InitFailureContext contains an init failure and context
type InitFailureContext struct {
	InitContext
	Error    error
	Duration time.Duration
}

// ============================================================================
// Init Hook Result Types
// ============================================================================

// BeforeInitHookResult represents the result of a "before" hook
// If Abort is true, the attempt fails with the given Reason
type BeforeInitHookResult struct {
	Abort  bool
	Reason string
}

// InitFailureHookResult represents the result of a failure hook
// If Recovered is true, Data is returned as a success instead of the failure
type InitFailureHookResult struct {
	Recovered bool
	Data      InitData
}

// ============================================================================
// Init Hook Function Types
// ============================================================================

// BeforeInitHook is called before any remote call is made
// If it returns a result with Abort=true, no fetch is made
// and an InitFailure with code aborted is returned
type BeforeInitHook func(InitContext) (*BeforeInitHookResult, error)

// AfterInitHook is called after a successful initialization
// Any error returned is logged but does not affect the result
type AfterInitHook func(InitResultContext) error

// OnInitFailureHook is called when initialization fails
// If it returns a result with Recovered=true, the provided InitData
// is returned as InitSuccess instead of the failure
type OnInitFailureHook func(InitFailureContext) (*InitFailureHookResult, error)
