// Package commands defines the adbpair CLI.
//
// Commands
//
//   - server  Listen for one pairing attempt, optionally advertising the
//     endpoint over mDNS the way a device in pairing mode does
//   - client  Pair with a server by address or by mDNS discovery
//
// Both commands print the peer's identity blob on success. Logging is
// controlled by the ADB_TRACE environment variable (see pkg/trace).
package commands
