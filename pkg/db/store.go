package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mattn/go-sqlite3"
)

// ErrDuplicateWord is returned by InsertWord when the word is already stored.
var ErrDuplicateWord = errors.New("word already stored")

// DBExecutor is an interface that allows methods to accept either *sql.DB or *sql.Tx
type DBExecutor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Store is the persisted word corpus. Every write is a single autocommitted
// statement, so it is durable by the time the method returns.
type Store struct {
	db DBExecutor
}

// NewStore wraps an initialized connection (see Open / InitDB).
func NewStore(db DBExecutor) *Store {
	return &Store{db: db}
}

// isUniqueConstraintErr returns true when the error indicates a unique/constraint violation
func isUniqueConstraintErr(err error) bool {
	if err == nil {
		return false
	}
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	s := strings.ToLower(err.Error())
	return strings.Contains(s, "unique") || strings.Contains(s, "constraint failed")
}

// Exists reports whether word is already in the corpus.
func (s *Store) Exists(ctx context.Context, word string) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx, `SELECT 1 FROM words WHERE word = ?`, word).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("check word %q: %w", word, err)
	}
	return true, nil
}

// InsertWord stores a new word and returns its id.
// It fails with ErrDuplicateWord if the word is already present.
func (s *Store) InsertWord(ctx context.Context, e WordEntry) (int64, error) {
	if strings.TrimSpace(e.Word) == "" {
		return 0, fmt.Errorf("word must be non-empty")
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO words (word, signature, length, frequency) VALUES (?, ?, ?, ?)`,
		e.Word, e.Signature, e.Length, e.Frequency)
	if err != nil {
		if isUniqueConstraintErr(err) {
			return 0, fmt.Errorf("insert %q: %w", e.Word, ErrDuplicateWord)
		}
		return 0, fmt.Errorf("insert %q: %w", e.Word, err)
	}
	return res.LastInsertId()
}

// InsertDefinition stores one sense for an existing word and returns its id.
func (s *Store) InsertDefinition(ctx context.Context, d DefinitionEntry) (int64, error) {
	if d.WordID <= 0 {
		return 0, fmt.Errorf("wordID must be positive")
	}
	lists := [][]string{d.Synonyms, d.InCategory, d.TypeOf, d.HasTypes, d.HasMembers, d.Derivation, d.Examples}
	encoded := make([]any, 0, len(lists))
	for _, l := range lists {
		v, err := encodeList(l)
		if err != nil {
			return 0, err
		}
		encoded = append(encoded, v)
	}
	args := append([]any{d.WordID, d.Definition, d.PartOfSpeech}, encoded...)
	res, err := s.db.ExecContext(ctx, `INSERT INTO definitions
		(word_id, definition, part_of_speech, synonyms, in_category, type_of, has_types, has_members, derivation, examples)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`, args...)
	if err != nil {
		return 0, fmt.Errorf("insert definition for word %d: %w", d.WordID, err)
	}
	return res.LastInsertId()
}

// FindBySignature returns every word whose sorted letters equal signature.
func (s *Store) FindBySignature(ctx context.Context, signature string) ([]WordEntry, error) {
	return s.queryWords(ctx, `SELECT id, word, signature, length, frequency FROM words WHERE signature = ? ORDER BY id`, signature)
}

// FindByLength returns every word with exactly length letters.
func (s *Store) FindByLength(ctx context.Context, length int) ([]WordEntry, error) {
	return s.queryWords(ctx, `SELECT id, word, signature, length, frequency FROM words WHERE length = ? ORDER BY id`, length)
}

// AllWords returns the whole corpus in insertion order.
func (s *Store) AllWords(ctx context.Context) ([]WordEntry, error) {
	return s.queryWords(ctx, `SELECT id, word, signature, length, frequency FROM words ORDER BY id`)
}

func (s *Store) queryWords(ctx context.Context, query string, args ...any) ([]WordEntry, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []WordEntry
	for rows.Next() {
		var w WordEntry
		if err := rows.Scan(&w.ID, &w.Word, &w.Signature, &w.Length, &w.Frequency); err != nil {
			return nil, err
		}
		out = append(out, w)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// HasDefinitions reports whether at least one sense is stored for wordID.
func (s *Store) HasDefinitions(ctx context.Context, wordID int64) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM definitions WHERE word_id = ?`, wordID).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("count definitions for word %d: %w", wordID, err)
	}
	return n > 0, nil
}

// Definitions returns the senses of wordID in the order they were stored.
func (s *Store) Definitions(ctx context.Context, wordID int64) ([]DefinitionEntry, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, word_id, definition, part_of_speech,
		synonyms, in_category, type_of, has_types, has_members, derivation, examples
		FROM definitions WHERE word_id = ? ORDER BY id`, wordID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []DefinitionEntry
	for rows.Next() {
		var d DefinitionEntry
		var raw [7]string
		if err := rows.Scan(&d.ID, &d.WordID, &d.Definition, &d.PartOfSpeech,
			&raw[0], &raw[1], &raw[2], &raw[3], &raw[4], &raw[5], &raw[6]); err != nil {
			return nil, err
		}
		targets := []*[]string{&d.Synonyms, &d.InCategory, &d.TypeOf, &d.HasTypes, &d.HasMembers, &d.Derivation, &d.Examples}
		for i, dst := range targets {
			if err := json.Unmarshal([]byte(raw[i]), dst); err != nil {
				return nil, fmt.Errorf("decode definition %d: %w", d.ID, err)
			}
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// SaveCheckpoint records the word a halted stage would have processed next.
func (s *Store) SaveCheckpoint(ctx context.Context, stage, nextWord string) error {
	_, err := s.db.ExecContext(ctx, `INSERT INTO checkpoints (stage, next_word, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(stage) DO UPDATE SET next_word = excluded.next_word, updated_at = excluded.updated_at`,
		stage, nextWord, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("save %s checkpoint: %w", stage, err)
	}
	return nil
}

// Checkpoint returns the last recorded halt position for stage, if any.
func (s *Store) Checkpoint(ctx context.Context, stage string) (Checkpoint, bool, error) {
	cp := Checkpoint{Stage: stage}
	err := s.db.QueryRowContext(ctx, `SELECT next_word, updated_at FROM checkpoints WHERE stage = ?`, stage).
		Scan(&cp.NextWord, &cp.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Checkpoint{}, false, nil
	}
	if err != nil {
		return Checkpoint{}, false, fmt.Errorf("read %s checkpoint: %w", stage, err)
	}
	return cp, true, nil
}

// ClearCheckpoint forgets the halt position for stage after a complete run.
func (s *Store) ClearCheckpoint(ctx context.Context, stage string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM checkpoints WHERE stage = ?`, stage); err != nil {
		return fmt.Errorf("clear %s checkpoint: %w", stage, err)
	}
	return nil
}

// encodeList stores a list as a JSON array; nil is kept as an empty array so
// reads always decode to a usable slice.
func encodeList(l []string) (string, error) {
	if l == nil {
		l = []string{}
	}
	b, err := json.Marshal(l)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
