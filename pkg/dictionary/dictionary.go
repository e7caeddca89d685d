// Package dictionary talks to the external lexical lookup service (WordsAPI)
// and turns its responses into senses the corpus can store.
package dictionary

import "github.com/japaniel/wordfilter/pkg/db"

// WordInfo matches the JSON body returned for GET /words/{word}.
type WordInfo struct {
	Word      string  `json:"word"`
	Frequency float64 `json:"frequency"`
	Results   []Sense `json:"results"`
}

// Sense is one meaning of a word with its related-term lists.
type Sense struct {
	Definition   string   `json:"definition"`
	PartOfSpeech string   `json:"partOfSpeech"`
	Synonyms     []string `json:"synonyms"`
	InCategory   []string `json:"inCategory"`
	TypeOf       []string `json:"typeOf"`
	HasTypes     []string `json:"hasTypes"`
	HasMembers   []string `json:"hasMembers"`
	Derivation   []string `json:"derivation"`
	Examples     []string `json:"examples"`
}

// Status classifies the outcome of a lookup.
type Status int

const (
	// StatusFound means the service returned lexical data for the word.
	StatusFound Status = iota
	// StatusNotFound means the service has no entry for the word.
	StatusNotFound
	// StatusTransientFailure covers network errors, throttling and server errors.
	StatusTransientFailure
)

func (s Status) String() string {
	switch s {
	case StatusFound:
		return "found"
	case StatusNotFound:
		return "not_found"
	case StatusTransientFailure:
		return "transient_failure"
	default:
		return "unknown"
	}
}

// LookupResult is the value threaded back to the pipeline after each call,
// including the quota signal observed on the response.
type LookupResult struct {
	Status    Status
	Frequency float64
	Senses    []Sense

	// QuotaRemaining is the remaining-calls counter from the response headers,
	// 0 when a response arrived without it.
	QuotaRemaining int
	// QuotaObserved is false when no response was received at all.
	QuotaObserved bool
}

// Entry converts the sense into a definition row owned by wordID.
func (s Sense) Entry(wordID int64) db.DefinitionEntry {
	return db.DefinitionEntry{
		WordID:       wordID,
		Definition:   s.Definition,
		PartOfSpeech: s.PartOfSpeech,
		Synonyms:     s.Synonyms,
		InCategory:   s.InCategory,
		TypeOf:       s.TypeOf,
		HasTypes:     s.HasTypes,
		HasMembers:   s.HasMembers,
		Derivation:   s.Derivation,
		Examples:     s.Examples,
	}
}
