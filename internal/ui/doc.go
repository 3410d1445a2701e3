// Package ui provides terminal output components for the econet-cfg CLI.
//
// These components follow a "run once and exit" pattern. They render a
// command header, result boxes and confirmation prompts with Lipgloss. The
// interactive watch dashboard lives in the tui package.
//
//   - Header: command banner showing operation name and parameters
//   - Result: success, failure and warning boxes with sorted details
//   - ConfirmChange: y/N prompt before writing to a controller
//   - ReadPassword: echo-free password prompt
//   - Printer: writes the above to any io.Writer
//
// # Logging Integration
//
// Logging is controlled via the ECONET_LOG_LEVEL environment variable. When
// unset or empty, zap logging is silent and only the curated UI output is
// displayed.
package ui
