// Package config provides centralized configuration management for the
// waiting-time compliance dashboard. Configuration is loaded from
// environment variables (prefix CPULSE_) overlaid by an optional YAML
// file, then validated before use.
//
// Run parameters (compliance target, department threshold, license
// alert window, waiting-time mode) live here as defaults only; each
// pipeline run receives an explicit immutable parameter value, so
// nothing in this package is mutated after startup.
package config
