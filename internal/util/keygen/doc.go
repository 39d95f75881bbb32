// Package keygen generates per-deployment SSH key pairs.
//
// The private half is an OpenSSH PEM block that the SSH executor accepts as
// a credential. The public half is in authorized_keys format, ready to be
// registered with the provider before an instance is created.
package keygen
