// Package async runs independent operations concurrently.
//
// [RunParallel] starts every task, waits for all of them and reports the
// first failure. It is used where a lifecycle step needs several remote
// calls that do not depend on each other.
package async
