package prefs

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/svm0n/ttscli/internal/session"
)

// Store binds the settings file to one path and remembers the content this
// process last wrote or read, so a Watcher can tell its own saves apart from
// edits made elsewhere.
type Store struct {
	path string

	mu   sync.Mutex
	seen [sha256.Size]byte
}

// NewStore returns a store for path. An empty path selects DefaultPath.
func NewStore(path string) (*Store, error) {
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return nil, err
		}
		path = p
	}
	p, err := session.ExpandPath(path)
	if err != nil {
		return nil, err
	}
	return &Store{path: p}, nil
}

// Path returns the settings file location.
func (st *Store) Path() string {
	return st.path
}

// Save writes the durable fields of s.
func (st *Store) Save(s *session.Session) error {
	b, err := Encode(s)
	if err != nil {
		return err
	}
	st.remember(b)
	if err := writeAtomic(st.path, b); err != nil {
		return err
	}
	log.Info("Saved settings", "path", st.path)
	return nil
}

// Load merges the settings file into s. It reports false when there is
// nothing to load.
func (st *Store) Load(s *session.Session) (bool, error) {
	data, err := os.ReadFile(st.path)
	if errors.Is(err, fs.ErrNotExist) {
		log.Debug("No saved settings", "path", st.path)
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("unable to read settings: %w", err)
	}
	st.remember(data)
	if err := Decode(data, s); err != nil {
		log.Warn("Rejected settings file", "path", st.path, "error", err)
		return true, err
	}
	log.Info("Loaded settings", "path", st.path)
	return true, nil
}

func (st *Store) remember(data []byte) {
	st.mu.Lock()
	st.seen = sha256.Sum256(data)
	st.mu.Unlock()
}

func (st *Store) isKnown(data []byte) bool {
	sum := sha256.Sum256(data)
	st.mu.Lock()
	defer st.mu.Unlock()
	return sum == st.seen
}
