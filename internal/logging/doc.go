// Package logging provides structured logging for the videohub tools.
//
// This package wraps a zap logger with convenience functions for the
// patterns used by the protocol client: connection events, command bytes,
// per-route outcomes and hex/ascii dumps of wire traffic.
//
// # Log Levels
//
//   - Debug: wire traffic (hex dumps, command bytes, idle-timeout ends)
//   - Info: connections, applied routes, preset files written
//   - Warn: failed routes, skipped records in lenient parsing
//   - Error: failures surfaced to the operator
//
// # Configuration
//
// Logging is silent by default so CLI output stays clean. Set
// VIDEOHUB_LOG_LEVEL (or pass --log-level) to enable it:
//
//	VIDEOHUB_LOG_LEVEL=debug videohub-cfg read --host 192.168.1.248
//
// Logs go to stderr in console format.
package logging
