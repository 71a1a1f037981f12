// Package seed fills a database with the club catalog and demo content.
package seed

import (
	"bytes"
	"fmt"
	"os"
	"strings"
	"time"

	"sangrachna/internal/models"

	"gopkg.in/yaml.v3"
)

// Fixture is the YAML catalog shipped with the repository.
type Fixture struct {
	Books  []BookFixture   `yaml:"books"`
	Events []EventFixture  `yaml:"events"`
	Team   []MemberFixture `yaml:"team"`
	Poems  []PoemFixture   `yaml:"poems"`
}

type BookFixture struct {
	Title       string `yaml:"title"`
	Author      string `yaml:"author"`
	Genre       string `yaml:"genre"`
	Description string `yaml:"description"`
	ISBN        string `yaml:"isbn"`
	Year        int    `yaml:"year"`
	Copies      int    `yaml:"copies"`
	Featured    bool   `yaml:"featured"`
}

type EventFixture struct {
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
	Date        string `yaml:"date"`
	Location    string `yaml:"location"`
}

type MemberFixture struct {
	Name       string `yaml:"name"`
	Position   string `yaml:"position"`
	Department string `yaml:"department"`
	Year       string `yaml:"year"`
	Priority   int    `yaml:"priority"`
}

type PoemFixture struct {
	Title   string `yaml:"title"`
	Author  string `yaml:"author"`
	Content string `yaml:"content"`
	// Status defaults to approved so the public page has something to show.
	Status string `yaml:"status"`
}

// LoadFixture reads and validates a fixture file.
func LoadFixture(path string) (*Fixture, error) {
	// #nosec G304: path comes from a CLI flag
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture: %w", err)
	}
	return ParseFixture(raw)
}

// ParseFixture decodes raw YAML. Unknown keys are rejected.
func ParseFixture(raw []byte) (*Fixture, error) {
	var f Fixture
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("decode fixture: %w", err)
	}
	if err := f.validate(); err != nil {
		return nil, err
	}
	return &f, nil
}

func (f *Fixture) validate() error {
	for i, b := range f.Books {
		if strings.TrimSpace(b.Title) == "" || strings.TrimSpace(b.Author) == "" {
			return fmt.Errorf("books[%d]: title and author are required", i)
		}
		if b.Copies < 0 {
			return fmt.Errorf("books[%d]: copies must not be negative", i)
		}
	}
	for i, e := range f.Events {
		if strings.TrimSpace(e.Title) == "" {
			return fmt.Errorf("events[%d]: title is required", i)
		}
		if e.Date != "" {
			if _, err := time.Parse(time.DateOnly, e.Date); err != nil {
				return fmt.Errorf("events[%d]: date %q is not YYYY-MM-DD", i, e.Date)
			}
		}
	}
	for i, m := range f.Team {
		if strings.TrimSpace(m.Name) == "" || strings.TrimSpace(m.Position) == "" {
			return fmt.Errorf("team[%d]: name and position are required", i)
		}
	}
	for i, p := range f.Poems {
		if p.Status != "" && !models.ContentStatus(p.Status).Valid() {
			return fmt.Errorf("poems[%d]: unknown status %q", i, p.Status)
		}
	}
	return nil
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
