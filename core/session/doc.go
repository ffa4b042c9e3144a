// Package session models the matching wizard as an explicit state machine.
//
// A session walks AwaitingUpload -> AwaitingRename -> AwaitingColumnSelection -> Complete.
// Triggers (Upload, Rename/SkipRename, Complete, Reset) either move the session to the
// next state or fail with ErrInvalidTransition. Complete may be re-entered to re-run
// matching with different parameters; Reset returns to AwaitingUpload from anywhere.
//
// Sessions live in a Store, in memory only, and expire after a period of inactivity.
package session
