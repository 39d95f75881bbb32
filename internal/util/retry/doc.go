// Package retry provides bounded exponential backoff for short-lived
// operations such as SSH dials and locked provider deletes.
//
// [Do] never outlives its context. Callers classify failures either by
// wrapping them with [Fatal] or by supplying [WithRetryIf].
package retry
