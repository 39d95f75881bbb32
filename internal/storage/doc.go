// Package storage is the gorm-backed subnet repository.
//
// Subnets live in a single table whose name comes from configuration. The
// nested server, network, and creator objects are flattened into prefixed
// columns; validators are stored as a JSON column. Updates only ever touch
// the columns named in a [subnet.Update] and may be guarded by the stored
// status, which is what keeps concurrent Advance calls from regressing a
// record.
package storage
