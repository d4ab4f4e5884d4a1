// Package utils holds the deploytag CLI plumbing shared across commands:
// layered configuration loading through Viper, zap logger construction from
// the log-level and log-format settings, context propagation of the resolved
// configuration file path, and flushed report output.
package utils
