// Package services defines the shared error taxonomy for the comparison
// engine and hosts clients for external tools (OCR).
//
// Errors are tagged with sentinel markers via Wrap so callers can classify
// failures with errors.Is without string matching. Only ErrValidation is
// fatal to a comparison run; every data-quality condition degrades locally
// into an explicit low-confidence result instead of an error, because the
// engine's job is to surface uncertainty, not to enforce strict schemas.
package services
