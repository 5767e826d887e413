// Package slog decorates prospect services with structured logging.
package slog
