// Package config provides user configuration management for the econet tools.
//
// This package manages a YAML configuration file that stores the ecoNET-300
// controllers a user talks to, under short names, together with tool
// preferences. The file follows OS-specific conventions for storage location.
//
// # Configuration File Location
//
//   - Linux: $XDG_CONFIG_HOME/econet/config.yaml or $HOME/.config/econet/config.yaml
//   - macOS: $HOME/.config/econet/config.yaml
//   - Windows: %LOCALAPPDATA%\econet\config.yaml
//
// ECONET_CONFIG overrides the location.
//
// # Security
//
// Controller passwords are never stored. They are always supplied by flag,
// environment or prompt.
//
// # Usage Example
//
//	registry, err := config.LoadRegistry()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	registry.AddController("boiler", "192.168.1.50", "admin")
//	if err := registry.Save(); err != nil {
//	    log.Fatal(err)
//	}
//
// # Thread Safety
//
// The global registry uses sync.Once for safe initialization across goroutines.
// File operations are protected by a mutex to ensure atomic writes.
package config
