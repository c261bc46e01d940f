package app

import (
	"errors"
	"fmt"
)

// Stage names, as they appear in logs and in InitError.
const (
	StageTransport     = "transport"
	StagePersistence   = "persistence"
	StageObservability = "observability"
	StageCORS          = "cors"
	StageRoutes        = "routes"
	StageErrorHandler  = "error-handler"
	StageListen        = "listen"
)

// InitError reports which bring-up stage failed and why.
type InitError struct {
	Stage string
	Err   error
}

func (e *InitError) Error() string {
	return fmt.Sprintf("bring-up stage %q failed: %v", e.Stage, e.Err)
}

func (e *InitError) Unwrap() error { return e.Err }

// ConnectionError is returned by a Connector that could not reach the store.
type ConnectionError struct {
	Driver string
	Err    error
}

func (e *ConnectionError) Error() string {
	if e.Driver == "" {
		return fmt.Sprintf("connection failed: %v", e.Err)
	}
	return fmt.Sprintf("%s connection failed: %v", e.Driver, e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }

// RegistrationError is returned when a RouteRegistrar fails.
type RegistrationError struct {
	Err error
}

func (e *RegistrationError) Error() string { return fmt.Sprintf("route registration failed: %v", e.Err) }

func (e *RegistrationError) Unwrap() error { return e.Err }

var (
	// ErrFrozen is returned when a context is mutated after it started serving.
	ErrFrozen = errors.New("app: service context is frozen")
	// ErrSealed is returned when something is installed after the fault boundary.
	ErrSealed = errors.New("app: fault boundary already installed")
	// ErrAlreadyStarted is returned when a Bootstrapper is run twice.
	ErrAlreadyStarted = errors.New("app: bring-up already ran")
)

// StageOf returns the stage recorded in err, or "" if err is not an InitError.
func StageOf(err error) string {
	var initErr *InitError
	if errors.As(err, &initErr) {
		return initErr.Stage
	}
	return ""
}
