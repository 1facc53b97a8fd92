package finance

import (
	"github.com/google/uuid"
)

// JournalStatus tracks automatic posting for a source document
type JournalStatus string

const (
	JournalStatusNone    JournalStatus = "NONE"
	JournalStatusPending JournalStatus = "PENDING"
	JournalStatusPosted  JournalStatus = "POSTED"
	JournalStatusFailed  JournalStatus = "FAILED"
)

// JournalState is embedded in every document that generates entries
type JournalState struct {
	Status  JournalStatus
	EntryID *uuid.UUID
	Error   string
}

// Request marks a posting as queued
func (s *JournalState) Request() {
	s.Status = JournalStatusPending
	s.Error = ""
}

// Posted records the active entry
func (s *JournalState) Posted(entryID uuid.UUID) {
	s.Status = JournalStatusPosted
	s.EntryID = &entryID
	s.Error = ""
}

// Failed records why the last attempt did not post
func (s *JournalState) Failed(reason string) {
	s.Status = JournalStatusFailed
	s.Error = reason
}

// Cleared records that no entry is active any more
func (s *JournalState) Cleared() {
	s.Status = JournalStatusNone
	s.EntryID = nil
	s.Error = ""
}
