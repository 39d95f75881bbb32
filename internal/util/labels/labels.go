package labels

import (
	"strings"
)

// Label keys attached to provider resources.
const (
	// KeyManagedBy identifies the management system.
	KeyManagedBy = "subnetctl.io/managed-by"

	// KeyDeployment carries the deployment token shared by an instance and its SSH key.
	KeyDeployment = "subnetctl.io/deployment"

	// KeyRole identifies what a resource is for.
	KeyRole = "subnetctl.io/role"

	// KeyName carries the sanitized operator-supplied subnet label.
	KeyName = "subnetctl.io/name"
)

// Role values.
const (
	RoleValidator = "validator"
	RoleAccess    = "access"
)

// ManagedBySubnetctl is the value of KeyManagedBy for resources this tool creates.
const ManagedBySubnetctl = "subnetctl"

const maxValueLength = 63

// LabelBuilder provides a fluent interface for building resource labels.
type LabelBuilder struct {
	labels map[string]string
}

// NewLabelBuilder creates a builder with the deployment token and manager pre-set.
func NewLabelBuilder(deployment string) *LabelBuilder {
	return &LabelBuilder{
		labels: map[string]string{
			KeyDeployment: deployment,
			KeyManagedBy:  ManagedBySubnetctl,
		},
	}
}

// WithRole adds a role label.
func (lb *LabelBuilder) WithRole(role string) *LabelBuilder {
	lb.labels[KeyRole] = role
	return lb
}

// WithName adds the subnet label after sanitizing it. Names that sanitize to
// nothing are skipped.
func (lb *LabelBuilder) WithName(name string) *LabelBuilder {
	if v := SanitizeValue(name); v != "" {
		lb.labels[KeyName] = v
	}
	return lb
}

// Build returns a copy of the labels map.
func (lb *LabelBuilder) Build() map[string]string {
	result := make(map[string]string, len(lb.labels))
	for k, v := range lb.labels {
		result[k] = v
	}
	return result
}

// SanitizeValue maps s onto the provider label value grammar: at most 63
// characters of [a-zA-Z0-9._-], starting and ending alphanumeric. Other
// characters become '-'.
func SanitizeValue(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '_', r == '-':
			b.WriteRune(r)
		default:
			b.WriteByte('-')
		}
	}
	v := b.String()
	if len(v) > maxValueLength {
		v = v[:maxValueLength]
	}
	return strings.TrimFunc(v, func(r rune) bool {
		return r == '.' || r == '_' || r == '-'
	})
}
