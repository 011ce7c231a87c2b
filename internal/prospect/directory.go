// Package prospect resolves inbound senders against the CRM export.
package prospect

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/harshad-lohande/agentic-sales-copilot/internal/model"
)

// Directory looks up prospect records by email address. Records come from a
// CSV export with a header row carrying at least FirstName, LastName,
// Company, Position and Email columns. Lookups are case-insensitive on the
// email.
type Directory struct {
	path string

	mu    sync.RWMutex
	index map[string]model.Prospect
}

func NewDirectory(path string) *Directory {
	return &Directory{path: path}
}

// Load reads and indexes the CSV. Call it at startup; Lookup also loads
// lazily on first use.
func (d *Directory) Load() error {
	f, err := os.Open(d.path)
	if err != nil {
		return fmt.Errorf("open prospects csv: %w", err)
	}
	defer f.Close()

	index, err := parseCSV(f)
	if err != nil {
		return fmt.Errorf("parse prospects csv %s: %w", d.path, err)
	}

	d.mu.Lock()
	d.index = index
	d.mu.Unlock()
	return nil
}

// Lookup returns the prospect for the given email. A missing record is not
// an error; ok reports whether the prospect was found.
func (d *Directory) Lookup(email string) (model.Prospect, bool, error) {
	d.mu.RLock()
	index := d.index
	d.mu.RUnlock()

	if index == nil {
		if err := d.Load(); err != nil {
			return model.Prospect{}, false, err
		}
		d.mu.RLock()
		index = d.index
		d.mu.RUnlock()
	}

	p, ok := index[strings.ToLower(strings.TrimSpace(email))]
	return p, ok, nil
}

func parseCSV(r io.Reader) (map[string]model.Prospect, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	col := make(map[string]int, len(header))
	for i, name := range header {
		col[strings.ToLower(strings.TrimSpace(name))] = i
	}
	emailCol, ok := col["email"]
	if !ok {
		return nil, fmt.Errorf("missing Email column")
	}

	field := func(row []string, name string) string {
		i, ok := col[name]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	index := make(map[string]model.Prospect)
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}
		if emailCol >= len(row) || strings.TrimSpace(row[emailCol]) == "" {
			continue
		}
		p := model.Prospect{
			FirstName: field(row, "firstname"),
			LastName:  field(row, "lastname"),
			Company:   field(row, "company"),
			Position:  field(row, "position"),
			Email:     strings.TrimSpace(row[emailCol]),
		}
		index[strings.ToLower(p.Email)] = p
	}
	return index, nil
}
