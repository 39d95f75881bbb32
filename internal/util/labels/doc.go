// Package labels builds the label sets attached to provider resources.
//
// Keys use the subnetctl.io prefix. Values are sanitized to the provider's
// label value grammar so that free-form subnet labels can be attached.
package labels
