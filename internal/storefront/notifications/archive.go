package notifications

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
	"unicode"

	"github.com/storefront-hq/storectl/internal/storefront/entity"
)

const (
	defaultDirPerm  = 0o700
	defaultFilePerm = 0o600

	rootDirName    = "notifications"
	eventsFileName = "events.jsonl"
	stateFileName  = "archive.json"

	// maxRememberedIDs bounds the archived id set kept in the state file.
	maxRememberedIDs = 2000
)

// Paths contains the profile-scoped archive locations.
type Paths struct {
	BaseDir    string `json:"base_dir"`
	EventsFile string `json:"events_file"`
	StateFile  string `json:"state_file"`
}

// ResolvePaths returns the archive locations under configDir for profile.
func ResolvePaths(configDir, profile string) Paths {
	baseDir := filepath.Join(configDir, rootDirName, sanitizePathComponent(profile))
	return Paths{
		BaseDir:    baseDir,
		EventsFile: filepath.Join(baseDir, eventsFileName),
		StateFile:  filepath.Join(baseDir, stateFileName),
	}
}

// ArchiveState remembers which notifications were already archived so a new
// run does not append them again.
type ArchiveState struct {
	ArchivedIDs []entity.ID `json:"archived_ids"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

// Archive appends newly seen notifications to a JSONL file.
type Archive struct {
	paths Paths

	mu   sync.Mutex
	seen map[entity.ID]struct{}
	ids  []entity.ID
}

// OpenArchive loads the archive state at paths. A missing state file starts
// an empty archive.
func OpenArchive(paths Paths) (*Archive, error) {
	a := &Archive{paths: paths, seen: map[entity.ID]struct{}{}}

	raw, err := os.ReadFile(paths.StateFile)
	switch {
	case errors.Is(err, os.ErrNotExist):
		return a, nil
	case err != nil:
		return nil, fmt.Errorf("read archive state: %w", err)
	}

	var state ArchiveState
	if err := json.Unmarshal(raw, &state); err != nil {
		return nil, fmt.Errorf("decode archive state: %w", err)
	}
	for _, id := range state.ArchivedIDs {
		a.remember(id)
	}
	return a, nil
}

// Path returns the events file path.
func (a *Archive) Path() string {
	if a == nil {
		return ""
	}
	return a.paths.EventsFile
}

// Append writes the records not archived before and returns how many were
// written.
func (a *Archive) Append(items ...entity.Record) (int, error) {
	if a == nil || strings.TrimSpace(a.paths.EventsFile) == "" {
		return 0, fmt.Errorf("notification archive path is not configured")
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	lines := make([][]byte, 0, len(items))
	fresh := make([]entity.ID, 0, len(items))
	for _, rec := range items {
		id := rec.ID()
		if id == "" {
			continue
		}
		if _, ok := a.seen[id]; ok {
			continue
		}
		line, err := json.Marshal(rec)
		if err != nil {
			return 0, fmt.Errorf("encode notification %s: %w", id, err)
		}
		lines = append(lines, line)
		fresh = append(fresh, id)
	}
	if len(lines) == 0 {
		return 0, nil
	}

	if err := os.MkdirAll(filepath.Dir(a.paths.EventsFile), defaultDirPerm); err != nil {
		return 0, fmt.Errorf("create notification archive directory: %w", err)
	}

	f, err := os.OpenFile(a.paths.EventsFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, defaultFilePerm)
	if err != nil {
		return 0, fmt.Errorf("open notification archive: %w", err)
	}
	defer f.Close()

	written := 0
	for i, line := range lines {
		if _, err := f.Write(append(line, '\n')); err != nil {
			return written, fmt.Errorf("write notification archive: %w", err)
		}
		a.remember(fresh[i])
		written++
	}
	if err := f.Sync(); err != nil {
		return written, fmt.Errorf("sync notification archive: %w", err)
	}

	return written, a.writeState()
}

func (a *Archive) remember(id entity.ID) {
	if _, ok := a.seen[id]; ok {
		return
	}
	a.seen[id] = struct{}{}
	a.ids = append(a.ids, id)
	if len(a.ids) > maxRememberedIDs {
		drop := a.ids[0]
		a.ids = a.ids[1:]
		delete(a.seen, drop)
	}
}

func (a *Archive) writeState() error {
	raw, err := json.MarshalIndent(ArchiveState{
		ArchivedIDs: a.ids,
		UpdatedAt:   time.Now().UTC(),
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal archive state: %w", err)
	}
	return writeAtomic(a.paths.StateFile, raw, defaultFilePerm)
}

func sanitizePathComponent(input string) string {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return "default"
	}

	var b strings.Builder
	for _, r := range trimmed {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-' || r == '_' || r == '.' {
			b.WriteRune(r)
			continue
		}
		b.WriteByte('_')
	}
	return b.String()
}

func writeAtomic(path string, payload []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, defaultDirPerm); err != nil {
		return fmt.Errorf("create state directory: %w", err)
	}

	tmpFile, err := os.CreateTemp(dir, ".archive-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp state file: %w", err)
	}
	tmpPath := tmpFile.Name()

	cleanup := func() {
		_ = tmpFile.Close()
		_ = os.Remove(tmpPath)
	}

	if _, err := tmpFile.Write(payload); err != nil {
		cleanup()
		return fmt.Errorf("write temp state file: %w", err)
	}
	if err := tmpFile.Chmod(perm); err != nil {
		cleanup()
		return fmt.Errorf("chmod temp state file: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("close temp state file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("replace state file: %w", err)
	}
	return nil
}
