package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"examino-backend/internal/models"
)

// BankSynchronizer is the sole writer of the master question bank file. One
// mutex spans the whole load -> re-dedup -> backup -> write -> replace cycle
// so two concurrent syncs never race from different base snapshots.
// Cross-process writers are not supported.
type BankSynchronizer struct {
	mu        sync.Mutex
	path      string
	backupDir string
}

func NewBankSynchronizer(path, backupDir string) *BankSynchronizer {
	return &BankSynchronizer{path: path, backupDir: backupDir}
}

func (s *BankSynchronizer) Path() string { return s.path }

type BankSyncResult struct {
	Inserted    int
	Skipped     int
	TopicTotals map[string]int
}

// Sync commits admitted questions to the master bank file. Entries already
// present (by normalized text) are skipped, which makes a re-run with the
// same admitted set a no-op: nothing is written and no extra backup is taken.
// On any write failure the original file is left byte-for-byte untouched and
// a SyncIOError is returned; the durable store is never rolled back, the
// caller retries the sync later.
func (s *BankSynchronizer) Sync(admitted []models.Question) (*BankSyncResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	bank, err := s.load()
	if err != nil {
		return nil, err
	}

	// Defensive re-dedup: the snapshot the duplicate filter used may be stale
	// by the time sync runs.
	existing := make(map[string]struct{})
	for _, entries := range bank {
		for _, e := range entries {
			existing[Normalize(e.Text)] = struct{}{}
		}
	}

	res := &BankSyncResult{TopicTotals: make(map[string]int)}
	touched := make(map[string]bool)

	for _, q := range admitted {
		norm := Normalize(q.Text)
		if _, dup := existing[norm]; dup {
			res.Skipped++
			continue
		}
		existing[norm] = struct{}{}
		bank[q.Topic] = append(bank[q.Topic], models.BankEntry{
			Text:         q.Text,
			Choices:      q.Choices,
			CorrectIndex: q.CorrectIndex,
			Difficulty:   q.Difficulty,
			Source:       q.Source,
		})
		touched[q.Topic] = true
		res.Inserted++
	}

	for topic, entries := range bank {
		res.TopicTotals[topic] = len(entries)
	}

	if res.Inserted == 0 {
		return res, nil
	}

	for topic := range touched {
		sortEntries(bank[topic])
	}

	s.backup()

	if err := s.writeAtomic(bank); err != nil {
		return nil, err
	}
	return res, nil
}

// NormalizedTexts snapshots the normalized text of every bank entry, for
// seeding the duplicate filter at the start of an ingestion request.
func (s *BankSynchronizer) NormalizedTexts() (map[string]struct{}, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	bank, err := s.load()
	if err != nil {
		return nil, err
	}

	texts := make(map[string]struct{})
	for _, entries := range bank {
		for _, e := range entries {
			texts[Normalize(e.Text)] = struct{}{}
		}
	}
	return texts, nil
}

// Entries returns the current bank content, keyed by topic.
func (s *BankSynchronizer) Entries() (map[string][]models.BankEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

// Stats returns per-topic and total entry counts.
func (s *BankSynchronizer) Stats() (*models.BankStats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	bank, err := s.load()
	if err != nil {
		return nil, err
	}

	stats := &models.BankStats{Topics: make(map[string]int), Path: s.path}
	for topic, entries := range bank {
		stats.Topics[topic] = len(entries)
		stats.Total += len(entries)
	}
	return stats, nil
}

func (s *BankSynchronizer) load() (map[string][]models.BankEntry, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return make(map[string][]models.BankEntry), nil
	}
	if err != nil {
		return nil, &SyncIOError{Path: s.path, Err: err}
	}

	bank := make(map[string][]models.BankEntry)
	if err := json.Unmarshal(data, &bank); err != nil {
		return nil, &SyncIOError{Path: s.path, Err: fmt.Errorf("bank file is not valid JSON: %w", err)}
	}
	return bank, nil
}

// backup copies the pre-sync bank file to a timestamped location. Backups are
// append-only and never pruned. A failed backup is logged but does not block
// the sync.
func (s *BankSynchronizer) backup() {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return
	}
	if err != nil {
		log.Printf("bank backup skipped, cannot read %s: %v", s.path, err)
		return
	}

	if err := os.MkdirAll(s.backupDir, 0o755); err != nil {
		log.Printf("bank backup skipped, cannot create %s: %v", s.backupDir, err)
		return
	}

	name := fmt.Sprintf("question_bank_%s.json", time.Now().UTC().Format("20060102_150405"))
	dest := filepath.Join(s.backupDir, name)
	if err := os.WriteFile(dest, data, 0o644); err != nil {
		log.Printf("bank backup to %s failed: %v", dest, err)
	}
}

// writeAtomic writes the bank to a temp file in the same directory, flushes
// it to disk, and atomically renames it over the master file. The master file
// is never modified in place and is never observably partial.
func (s *BankSynchronizer) writeAtomic(bank map[string][]models.BankEntry) error {
	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, ".question_bank-*.tmp")
	if err != nil {
		return &SyncIOError{Path: s.path, Err: err}
	}
	tmpName := tmp.Name()

	discard := func(err error) error {
		tmp.Close()
		os.Remove(tmpName)
		return &SyncIOError{Path: s.path, Err: err}
	}

	enc := json.NewEncoder(tmp)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(bank); err != nil {
		return discard(err)
	}
	if err := tmp.Sync(); err != nil {
		return discard(err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return &SyncIOError{Path: s.path, Err: err}
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return &SyncIOError{Path: s.path, Err: err}
	}
	return nil
}

func sortEntries(entries []models.BankEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Difficulty.Rank() < entries[j].Difficulty.Rank()
	})
}
