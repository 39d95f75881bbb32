package hcloud

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/hetznercloud/hcloud-go/v2/hcloud"
)

// Operation names carried by ProviderError and used as metric labels.
const (
	OpCreateInstance = "create_instance"
	OpGetInstance    = "get_instance"
	OpDeleteInstance = "delete_instance"
	OpCreateSSHKey   = "create_ssh_key"
	OpDeleteSSHKey   = "delete_ssh_key"
)

// ProviderError is returned by every RealClient operation.
type ProviderError struct {
	Op         string
	StatusCode int
	// Code is the API error code, e.g. "not_found" or "locked".
	Code    string
	Message string
	Err     error
}

func (e *ProviderError) Error() string {
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	switch {
	case e.StatusCode != 0 && e.Code != "":
		return fmt.Sprintf("provider %s failed (status %d, code %s): %s", e.Op, e.StatusCode, e.Code, msg)
	case e.StatusCode != 0:
		return fmt.Sprintf("provider %s failed (status %d): %s", e.Op, e.StatusCode, msg)
	default:
		return fmt.Sprintf("provider %s failed: %s", e.Op, msg)
	}
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// Transient reports true: the orchestrator retries provider failures on its
// next poll.
func (e *ProviderError) Transient() bool {
	return true
}

// NotFound reports whether the provider answered 404.
func (e *ProviderError) NotFound() bool {
	return e.StatusCode == http.StatusNotFound || e.Code == string(hcloud.ErrorCodeNotFound)
}

// newProviderError wraps err with the response status and API error code.
func newProviderError(op string, resp *hcloud.Response, err error) *ProviderError {
	pe := &ProviderError{Op: op, Err: err}
	if resp != nil && resp.Response != nil {
		pe.StatusCode = resp.StatusCode
	}
	var apiErr hcloud.Error
	if errors.As(err, &apiErr) {
		pe.Code = string(apiErr.Code)
		pe.Message = apiErr.Message
	} else if err != nil {
		pe.Message = err.Error()
	}
	return pe
}

// notFoundError is returned when a lookup by ID yields nothing.
func notFoundError(op, what, id string) *ProviderError {
	return &ProviderError{
		Op:         op,
		StatusCode: http.StatusNotFound,
		Code:       string(hcloud.ErrorCodeNotFound),
		Message:    fmt.Sprintf("%s %s not found", what, id),
	}
}

// isResourceLocked checks if an error indicates a resource is locked by a
// running action. These errors are retryable.
func isResourceLocked(err error) bool {
	return isHCloudErrorCode(err,
		hcloud.ErrorCodeLocked,
		hcloud.ErrorCodeConflict,
		hcloud.ErrorCodeResourceLocked,
		hcloud.ErrorCodeResourceUnavailable,
	)
}

// isHCloudErrorCode checks if the error is an hcloud API error with one of the given codes.
func isHCloudErrorCode(err error, codes ...hcloud.ErrorCode) bool {
	if err == nil {
		return false
	}

	var hcloudErr hcloud.Error
	if errors.As(err, &hcloudErr) {
		for _, code := range codes {
			if hcloudErr.Code == code {
				return true
			}
		}
	}
	return false
}

// IsNotFound checks if err is a provider 404.
func IsNotFound(err error) bool {
	var pe *ProviderError
	if errors.As(err, &pe) {
		return pe.NotFound()
	}
	return isHCloudErrorCode(err, hcloud.ErrorCodeNotFound)
}
