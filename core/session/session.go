package session

import (
	"errors"
	"fmt"
	"time"

	"facility-matcher/core/match"
	"facility-matcher/core/table"
)

var (
	// ErrNotFound is returned for unknown or expired session ids.
	ErrNotFound = errors.New("session not found")
	// ErrInvalidTransition is returned when a trigger does not apply to the current state.
	ErrInvalidTransition = errors.New("invalid transition")
)

// State is a step of the matching wizard.
type State string

const (
	// AwaitingUpload waits for both lists.
	AwaitingUpload State = "awaiting_upload"
	// AwaitingRename offers optional column renaming.
	AwaitingRename State = "awaiting_rename"
	// AwaitingColumnSelection waits for key columns and threshold.
	AwaitingColumnSelection State = "awaiting_column_selection"
	// Complete holds a result; matching may be re-run with other parameters.
	Complete State = "complete"
)

// Params records the selection that produced the current result.
type Params struct {
	PrimaryColumn   string  `json:"primary_column"`
	ReferenceColumn string  `json:"reference_column"`
	Threshold       float64 `json:"threshold"`
}

// Session is one walk through the wizard.
type Session struct {
	ID        string
	State     State
	Primary   *table.Table
	Reference *table.Table
	Params    *Params
	Result    *match.Result
	Created   time.Time
	Updated   time.Time
}

func (s *Session) transition(trigger string, to State, from ...State) error {
	for _, f := range from {
		if s.State == f {
			s.State = to
			return nil
		}
	}
	return fmt.Errorf("%w: %s from %s", ErrInvalidTransition, trigger, s.State)
}

// Upload stores both lists and moves to the rename step.
func (s *Session) Upload(primary, reference table.Table) error {
	if err := s.transition("upload", AwaitingRename, AwaitingUpload); err != nil {
		return err
	}
	s.Primary = &primary
	s.Reference = &reference
	return nil
}

// Rename applies column renames to both lists and moves to column selection.
// On error the session is left unchanged.
func (s *Session) Rename(primary, reference map[string]string) error {
	if s.State != AwaitingRename {
		return fmt.Errorf("%w: rename from %s", ErrInvalidTransition, s.State)
	}
	p, err := s.Primary.Rename(primary)
	if err != nil {
		return fmt.Errorf("rename primary columns: %w", err)
	}
	r, err := s.Reference.Rename(reference)
	if err != nil {
		return fmt.Errorf("rename reference columns: %w", err)
	}
	s.Primary, s.Reference = &p, &r
	return s.transition("rename", AwaitingColumnSelection, AwaitingRename)
}

// SkipRename moves to column selection without touching the columns.
func (s *Session) SkipRename() error {
	return s.transition("skip rename", AwaitingColumnSelection, AwaitingRename)
}

// Complete stores a matching result.
func (s *Session) Complete(params Params, result *match.Result) error {
	if err := s.transition("complete", Complete, AwaitingColumnSelection, Complete); err != nil {
		return err
	}
	s.Params = &params
	s.Result = result
	return nil
}

// CompleteFrom stores a result computed from primary and reference.
// It fails when the session's lists were replaced or dropped since they were read.
func (s *Session) CompleteFrom(primary, reference *table.Table, params Params, result *match.Result) error {
	if s.Primary != primary || s.Reference != reference {
		return fmt.Errorf("%w: lists changed during matching", ErrInvalidTransition)
	}
	return s.Complete(params, result)
}

// CanMatch reports whether matching may run in the current state.
func (s *Session) CanMatch() bool {
	return s.State == AwaitingColumnSelection || s.State == Complete
}

// Reset drops all data and returns to the upload step.
func (s *Session) Reset() {
	s.State = AwaitingUpload
	s.Primary = nil
	s.Reference = nil
	s.Params = nil
	s.Result = nil
}
