// Package logging provides structured logging for the econet tools.
//
// This package wraps a zap logger with convenience functions for the logging
// patterns used by the controller client, the CLI, and the exporter.
//
// # Log Levels
//
// The package supports standard log levels:
//   - Debug: Request tracing (URLs, attempts, payload sizes)
//   - Info: Normal operations (poll cycles, parameter writes, clients)
//   - Warn: Non-fatal issues (retries, missing identity keys, unmapped params)
//   - Error: Failed requests, exhausted retry budgets, rejected credentials
//
// # Silent by Default
//
// Logging is disabled unless a level is passed to Initialize or the
// ECONET_LOG_LEVEL environment variable is set. This keeps the styled CLI
// output clean:
//
//	ECONET_LOG_LEVEL=debug econet-cfg show --host 192.168.1.50
//
// # Structured Logging
//
// All log functions use structured fields:
//
//	logging.Warn("Param has no write mapping",
//	    zap.String("param", "tempCOSet"),
//	)
//
// # Thread Safety
//
// All logging functions are safe for concurrent use once Initialize has run.
package logging
