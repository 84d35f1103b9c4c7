// Package log provides logging with automatic redaction of secrets, built on
// top of the standard slog package.
//
// Search patterns are logged at debug level, and people often search their
// code for the very credentials they must not leak. The SecureHandler masks
// attribute values that look like secrets before they reach the output:
//   - attributes whose key names a credential (password, token, secret)
//   - string values shaped like tokens (JWT, AWS and GitHub keys, bearer auth)
//   - elements of string slices, so a list of patterns is checked one by one
//
// # Usage
//
//	logger := log.NewSecureLogger(os.Stderr, verbose)
//	logger.Debug("search started", "patterns", cfg.Patterns)
//	slog.SetDefault(logger)
package log
