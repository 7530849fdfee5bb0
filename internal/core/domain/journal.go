package domain

import "time"

type Verb string

const (
	VerbAdd    Verb = "add"
	VerbRemove Verb = "remove"
	VerbPrint  Verb = "print"
	VerbQuit   Verb = "quit"
)

// JournalEntry records one acknowledged quantity change.
type JournalEntry struct {
	ID        string
	SessionID string
	Verb      Verb
	ItemID    string
	Quantity  uint16
	ResultQty uint16
	CreatedAt time.Time
}
