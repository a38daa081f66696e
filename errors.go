package loom

import (
	"errors"
	"fmt"
	"strings"
)

// Application errors
var (
	// Registration errors
	ErrDuplicateProvider = errors.New("duplicate provider registration")
	ErrEmptyProviderName = errors.New("provider name is empty")
	ErrNilFactory        = errors.New("provider factory is nil")
	ErrNilModule         = errors.New("module descriptor is nil")
	ErrDuplicateModule   = errors.New("duplicate module name")
	ErrRegistryClosed    = errors.New("provider registry is closed")
	ErrUnknownExport     = errors.New("export does not name a declared provider")

	// Resolution errors
	ErrUnresolvedDependency = errors.New("unresolved dependency")
	ErrCircularDependency   = errors.New("circular dependency detected")

	// Container errors
	ErrContainerNotBuilt   = errors.New("container has not been built")
	ErrTargetNotPointer    = errors.New("target must be a non-nil pointer")
	ErrTargetValueInvalid  = errors.New("target value is invalid")
	ErrServiceIncompatible = errors.New("service cannot be assigned to target")

	// Lifecycle errors
	ErrLifecycleHookFailed       = errors.New("lifecycle hook failed")
	ErrShutdownTimeout           = errors.New("shutdown timed out")
	ErrApplicationNotStarted     = errors.New("application not started")
	ErrApplicationAlreadyStarted = errors.New("application already started")
	ErrApplicationNotInitialized = errors.New("application not initialized")

	// Configuration errors
	ErrConfigSectionNotFound = errors.New("config section not found")
	ErrConfigProviderNil     = errors.New("config provider is nil")

	// Controller errors
	ErrNotAController = errors.New("provider instance does not implement Controller")

	// Observer errors
	ErrNoSubjectForEventEmission = errors.New("no subject available for event emission")
)

// DuplicateProviderError reports a provider identity registered more than once
// in the composed registry. Module names the declaration site of the second
// registration.
type DuplicateProviderError struct {
	Identity string
	Module   string
}

func (e *DuplicateProviderError) Error() string {
	if e.Module != "" {
		return fmt.Sprintf("%s: %q in module %q", ErrDuplicateProvider, e.Identity, e.Module)
	}
	return fmt.Sprintf("%s: %q", ErrDuplicateProvider, e.Identity)
}

func (e *DuplicateProviderError) Is(target error) bool {
	return target == ErrDuplicateProvider
}

// UnresolvedDependencyError reports a dependency identity that is either not
// registered anywhere or not visible from the requester's module scope.
type UnresolvedDependencyError struct {
	Requester string
	Missing   string
}

func (e *UnresolvedDependencyError) Error() string {
	if e.Requester == "" {
		return fmt.Sprintf("%s: %q", ErrUnresolvedDependency, e.Missing)
	}
	return fmt.Sprintf("%s: %q required by %q", ErrUnresolvedDependency, e.Missing, e.Requester)
}

func (e *UnresolvedDependencyError) Is(target error) bool {
	return target == ErrUnresolvedDependency
}

// CircularDependencyError names the full cycle path, first node repeated at
// the end, e.g. [A B A].
type CircularDependencyError struct {
	Cycle []string
}

func (e *CircularDependencyError) Error() string {
	return fmt.Sprintf("%s: %s", ErrCircularDependency, strings.Join(e.Cycle, " -> "))
}

func (e *CircularDependencyError) Is(target error) bool {
	return target == ErrCircularDependency
}

// LifecycleHookFailedError reports a hook failure during a startup phase.
// Startup hook failures are fatal and trigger rollback of already-initialized
// providers and modules.
type LifecycleHookFailedError struct {
	Phase    LifecyclePhase
	Identity string
	Cause    error
}

func (e *LifecycleHookFailedError) Error() string {
	return fmt.Sprintf("%s: %q during %s: %v", ErrLifecycleHookFailed, e.Identity, e.Phase, e.Cause)
}

func (e *LifecycleHookFailedError) Unwrap() error {
	return e.Cause
}

func (e *LifecycleHookFailedError) Is(target error) bool {
	return target == ErrLifecycleHookFailed
}

// ShutdownTimeoutError reports that the shutdown deadline elapsed before all
// teardown hooks completed. Pending lists the identities whose hooks were
// abandoned.
type ShutdownTimeoutError struct {
	Pending []string
}

func (e *ShutdownTimeoutError) Error() string {
	if len(e.Pending) == 0 {
		return ErrShutdownTimeout.Error()
	}
	return fmt.Sprintf("%s: pending %s", ErrShutdownTimeout, strings.Join(e.Pending, ", "))
}

func (e *ShutdownTimeoutError) Is(target error) bool {
	return target == ErrShutdownTimeout
}

// Exit codes returned by ExitCode, tagged by error kind.
const (
	ExitCodeOK         = 0
	ExitCodeError      = 1
	ExitCodeStructural = 2
	ExitCodeLifecycle  = 3
	ExitCodeShutdown   = 4
)

// ExitCode maps an error returned by Application.Run to a process exit code.
// Structural errors (duplicate, unresolved, circular) are distinguished from
// lifecycle hook failures and shutdown timeouts so supervisors can tell a
// misconfigured graph from a misbehaving service.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitCodeOK
	case errors.Is(err, ErrDuplicateProvider),
		errors.Is(err, ErrDuplicateModule),
		errors.Is(err, ErrUnresolvedDependency),
		errors.Is(err, ErrCircularDependency),
		errors.Is(err, ErrUnknownExport):
		return ExitCodeStructural
	case errors.Is(err, ErrLifecycleHookFailed):
		return ExitCodeLifecycle
	case errors.Is(err, ErrShutdownTimeout):
		return ExitCodeShutdown
	default:
		return ExitCodeError
	}
}
