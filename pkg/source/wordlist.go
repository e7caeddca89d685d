// Package source provides candidate word sequences for ingestion.
package source

import (
	"bufio"
	"errors"
	"io/fs"
	"os"
	"strings"
)

// WordList is a newline-delimited candidate file read lazily in file order.
// It satisfies ingest.Candidates through the embedded scanner.
type WordList struct {
	*bufio.Scanner
	// Missing is set when the file did not exist; the list is then empty.
	Missing bool
	Path    string

	f *os.File
}

// OpenWordList opens path for line-by-line reading. A missing file is not an
// error: the returned list is empty and Missing is set.
func OpenWordList(path string) (*WordList, error) {
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return &WordList{
			Scanner: bufio.NewScanner(strings.NewReader("")),
			Missing: true,
			Path:    path,
		}, nil
	}
	if err != nil {
		return nil, err
	}
	return &WordList{Scanner: bufio.NewScanner(f), Path: path, f: f}, nil
}

// Close releases the underlying file, if any.
func (w *WordList) Close() error {
	if w.f == nil {
		return nil
	}
	return w.f.Close()
}
