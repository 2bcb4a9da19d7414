// Package journal provides an optional SQLite record of relay activity.
//
// Every applied command and every rejected payload can be written to a
// local database file, giving a switching history that survives restarts
// and works with no network at all. Relay state itself is never restored
// from here: on boot all relays always start released, and the journal is
// strictly an audit trail.
//
// # Storage
//
// A single database file holds two append-only tables, switch_events and
// decode_failures. The schema is created on open; there is no migration
// versioning because nothing ever alters these tables. WAL mode and a
// busy timeout are applied through the connection string.
//
// # Degradation
//
// The journal is disabled by default. When enabled but unopenable (bad
// path, full SD card), the caller logs the error and runs without it.
// Journal write failures never block relay switching.
//
// # Usage
//
//	j, err := journal.Open(cfg.Journal)
//	if errors.Is(err, journal.ErrDisabled) {
//	    // run without a journal
//	}
//	defer j.Close()
//
//	j.RecordSwitch(ctx, 7, true, 6, "low")
package journal
