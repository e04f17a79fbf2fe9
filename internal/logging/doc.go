// Package logging constructs the application slog logger and provides typed
// attribute helpers plus the standardized field keys used across components.
package logging
