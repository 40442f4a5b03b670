// Package store persists the TaskHero catalog and user progress in a single
// JSON document on disk. Every save is a read-modify-write of the whole
// document, so saving one section never drops another.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
)

// Top-level document keys.
const (
	KeyGoals   = "goals"
	KeyRewards = "rewards"
	KeyProfile = "user_profile"
)

// Entry is a named, point-valued goal or reward as stored on disk.
type Entry struct {
	ID     string `json:"id,omitempty"`
	Name   string `json:"name"`
	Points int    `json:"points"`
}

// Profile is the persisted user progress section.
type Profile struct {
	Points         int `json:"points"`
	PointsForLevel int `json:"points_for_level"`
	Level          int `json:"level"`
}

// Document is the decoded content of the data file.
type Document struct {
	Goals   map[string][]Entry `json:"goals"`
	Rewards []Entry            `json:"rewards"`
	Profile Profile            `json:"user_profile"`
}

// Status reports how Load obtained the returned document.
type Status int

const (
	// StatusLoaded means the document was read from an existing, valid file.
	StatusLoaded Status = iota
	// StatusInitialized means the file was missing or empty and defaults were written.
	StatusInitialized
	// StatusRepaired means the file could not be parsed and was reset to defaults.
	StatusRepaired
)

func (s Status) String() string {
	switch s {
	case StatusLoaded:
		return "loaded"
	case StatusInitialized:
		return "initialized"
	case StatusRepaired:
		return "repaired"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// Defaults returns the seed document used when no usable file exists.
func Defaults() Document {
	return Document{
		Goals: map[string][]Entry{
			"School":   {{Name: "Do homework", Points: 500}},
			"Work":     {{Name: "Complete project", Points: 1000}},
			"Personal": {{Name: "Workout", Points: 300}},
		},
		Rewards: []Entry{
			{Name: "Fast food", Points: 300},
			{Name: "New book", Points: 1000},
			{Name: "Short trip", Points: 5000},
		},
		Profile: Profile{Level: 1},
	}
}

// Store reads and writes the document at a fixed path.
type Store struct {
	path   string
	logger *slog.Logger
}

// New returns a Store backed by the file at path. A nil logger falls back to
// slog.Default().
func New(path string, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{path: path, logger: logger}
}

// Path returns the data file path.
func (s *Store) Path() string {
	return s.path
}

// Load reads the document. A missing or empty file is initialized with
// defaults; an unparseable file is logged, reset to defaults and reported as
// StatusRepaired. Only I/O failures are returned as errors.
func (s *Store) Load() (Document, Status, error) {
	data, err := os.ReadFile(s.path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Document{}, StatusLoaded, fmt.Errorf("reading data file %s: %w", s.path, err)
	}

	if len(data) == 0 {
		doc := Defaults()
		if err := s.writeDefaults(doc); err != nil {
			return Document{}, StatusInitialized, err
		}
		s.logger.Info("initialized data file", "path", s.path)
		return doc, StatusInitialized, nil
	}

	doc, err := decode(data)
	if err != nil {
		s.logger.Warn("data file is corrupt, resetting to defaults", "path", s.path, "error", err)
		doc = Defaults()
		if err := s.writeDefaults(doc); err != nil {
			return Document{}, StatusRepaired, err
		}
		return doc, StatusRepaired, nil
	}

	s.logger.Debug("loaded data file", "path", s.path)
	return doc, StatusLoaded, nil
}

// SaveCatalog replaces the goals and rewards sections, keeping every other
// section of the document.
func (s *Store) SaveCatalog(goals map[string][]Entry, rewards []Entry) error {
	if goals == nil {
		goals = map[string][]Entry{}
	}
	if rewards == nil {
		rewards = []Entry{}
	}
	return s.update(func(raw map[string]json.RawMessage) error {
		if err := setSection(raw, KeyGoals, goals); err != nil {
			return err
		}
		return setSection(raw, KeyRewards, rewards)
	})
}

// SaveProgress replaces the user_profile section, keeping every other section
// of the document. The file is created if it does not exist.
func (s *Store) SaveProgress(p Profile) error {
	return s.update(func(raw map[string]json.RawMessage) error {
		return setSection(raw, KeyProfile, p)
	})
}

func (s *Store) writeDefaults(doc Document) error {
	raw := make(map[string]json.RawMessage, 3)
	if err := setSection(raw, KeyGoals, doc.Goals); err != nil {
		return err
	}
	if err := setSection(raw, KeyRewards, doc.Rewards); err != nil {
		return err
	}
	if err := setSection(raw, KeyProfile, doc.Profile); err != nil {
		return err
	}
	return s.write(raw)
}

// update applies fn to the raw sections of the current document and writes the
// result back. A missing file starts from an empty document; a corrupt one is
// logged and replaced.
func (s *Store) update(fn func(raw map[string]json.RawMessage) error) error {
	raw := map[string]json.RawMessage{}

	data, err := os.ReadFile(s.path)
	switch {
	case err != nil && !errors.Is(err, fs.ErrNotExist):
		return fmt.Errorf("reading data file %s: %w", s.path, err)
	case len(data) > 0:
		if err := json.Unmarshal(data, &raw); err != nil || raw == nil {
			s.logger.Warn("data file is corrupt, overwriting", "path", s.path, "error", err)
			raw = map[string]json.RawMessage{}
		}
	}

	if err := fn(raw); err != nil {
		return err
	}
	return s.write(raw)
}

// write replaces the data file atomically: the document goes to a temporary
// file in the same directory which is then renamed over the target.
func (s *Store) write(raw map[string]json.RawMessage) error {
	data, err := json.MarshalIndent(raw, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling data file: %w", err)
	}
	data = append(data, '\n')

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating data dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("writing data file: %w", err)
	}
	if err := tmp.Chmod(0o644); err != nil {
		tmp.Close()
		return fmt.Errorf("writing data file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("writing data file: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("replacing data file %s: %w", s.path, err)
	}
	return nil
}

func setSection(raw map[string]json.RawMessage, key string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshaling %s: %w", key, err)
	}
	raw[key] = b
	return nil
}

// decode parses a document, filling absent sections from Defaults. A section
// with the wrong shape fails the whole document.
func decode(data []byte) (Document, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return Document{}, err
	}
	if raw == nil {
		return Document{}, errors.New("document is not a JSON object")
	}

	doc := Defaults()
	if b, ok := raw[KeyGoals]; ok && !isNull(b) {
		var goals map[string][]Entry
		if err := json.Unmarshal(b, &goals); err != nil {
			return Document{}, fmt.Errorf("decoding %s: %w", KeyGoals, err)
		}
		if goals == nil {
			goals = map[string][]Entry{}
		}
		doc.Goals = goals
	}
	if b, ok := raw[KeyRewards]; ok && !isNull(b) {
		var rewards []Entry
		if err := json.Unmarshal(b, &rewards); err != nil {
			return Document{}, fmt.Errorf("decoding %s: %w", KeyRewards, err)
		}
		if rewards == nil {
			rewards = []Entry{}
		}
		doc.Rewards = rewards
	}
	if b, ok := raw[KeyProfile]; ok && !isNull(b) {
		// Fields missing from the section keep their defaults.
		p := doc.Profile
		if err := json.Unmarshal(b, &p); err != nil {
			return Document{}, fmt.Errorf("decoding %s: %w", KeyProfile, err)
		}
		doc.Profile = p
	}
	return doc, nil
}

func isNull(b json.RawMessage) bool {
	return string(b) == "null"
}
