package query

import (
	"fmt"
	"strings"
)

// UnknownBodyError reports a celestial-body identifier outside the backend's
// supported-body catalog. It is raised before any ephemeris lookup happens.
type UnknownBodyError struct {
	Body string
}

func (e *UnknownBodyError) Error() string {
	return fmt.Sprintf("unknown celestial body: %q", e.Body)
}

// BackendNotRegisteredError reports a provider name with no registered
// constructor.
type BackendNotRegisteredError struct {
	Name string
}

func (e *BackendNotRegisteredError) Error() string {
	return fmt.Sprintf("transform backend not registered: %q", e.Name)
}

// KernelUnavailableError reports that a kernel required by an operation is
// missing locally and could not be fetched. It names the kernel to aid
// diagnosis; the core does not retry.
type KernelUnavailableError struct {
	Kernel string
	Err    error
}

func (e *KernelUnavailableError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("kernel %q unavailable: %v", e.Kernel, e.Err)
	}
	return fmt.Sprintf("kernel %q unavailable", e.Kernel)
}

func (e *KernelUnavailableError) Unwrap() error { return e.Err }

// TransformFailure wraps an underlying numeric failure together with the set
// of kernels that were loaded at the time, so operators can tell a data
// problem from a code problem.
type TransformFailure struct {
	Kernels []string
	Err     error
}

func (e *TransformFailure) Error() string {
	if len(e.Kernels) == 0 {
		return fmt.Sprintf("transform failed: %v", e.Err)
	}
	return fmt.Sprintf("transform failed (kernels loaded: %s): %v",
		strings.Join(e.Kernels, ", "), e.Err)
}

func (e *TransformFailure) Unwrap() error { return e.Err }
