// Package naming provides consistent names for provider resources.
//
// Every deployment receives a short random token. The instance and its
// SSH key are named {prefix}-{token} and {prefix}-{token}-ssh so that
// stray resources can be matched back to the deployment that created them.
package naming
