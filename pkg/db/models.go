package db

import "time"

// WordEntry is one accepted dictionary word.
// Signature and Length are derived from Word and never set independently.
type WordEntry struct {
	ID        int64
	Word      string
	Signature string
	Length    int
	Frequency float64
}

// DefinitionEntry is one sense of a word. A WordEntry owns zero or more of them.
type DefinitionEntry struct {
	ID           int64
	WordID       int64
	Definition   string
	PartOfSpeech string
	Synonyms     []string
	InCategory   []string
	TypeOf       []string
	HasTypes     []string
	HasMembers   []string
	Derivation   []string
	Examples     []string
}

// Checkpoint records where a halted pipeline stage stopped.
type Checkpoint struct {
	Stage     string
	NextWord  string
	UpdatedAt time.Time
}
