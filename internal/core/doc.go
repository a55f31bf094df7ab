// Package core implements the hostlock controller.
//
// The controller is a lock state machine over the host's windows:
//   - Startup: a host with a password set starts locked
//   - Lock: the icon locks the host, remembering how many windows were open
//   - Unlock: a correct password restores the remembered windows
//   - Last window closed: the next window needs the password again
//
// While locked, the unlock panel is the only window allowed to stay open.
//
// Password management (set, change, reset with a recovery key) always
// writes the credential and a new recovery key hash together, announced
// to the tamper guard beforehand so the guard lets exactly that write
// through.
//
// Requests arrive as a closed set of types (see Request) and every event is
// processed by the single goroutine running Controller.Run.
package core
