package journal

import "errors"

// Sentinel errors for journal operations. Check with errors.Is:
//
//	j, err := journal.Open(cfg.Journal)
//	if errors.Is(err, journal.ErrDisabled) {
//	    // journaling is off, not broken
//	}
var (
	// ErrDisabled indicates the journal is turned off in configuration.
	ErrDisabled = errors.New("journal: disabled in configuration")

	// ErrOpenFailed indicates the database file could not be opened or
	// its schema could not be created.
	ErrOpenFailed = errors.New("journal: open failed")

	// ErrWriteFailed indicates a record could not be inserted.
	ErrWriteFailed = errors.New("journal: write failed")
)
