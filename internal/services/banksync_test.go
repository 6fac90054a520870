package services

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"

	"examino-backend/internal/models"
)

func testQuestion(topic, text string) models.Question {
	return models.Question{
		ID:           uuid.New(),
		Topic:        topic,
		Difficulty:   models.DifficultyMedium,
		Text:         text,
		Choices:      []string{"a", "b", "c", "d"},
		CorrectIndex: 1,
		Source:       models.SourceGenerated,
	}
}

func readBank(t *testing.T, path string) map[string][]models.BankEntry {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read bank file: %v", err)
	}
	bank := make(map[string][]models.BankEntry)
	if err := json.Unmarshal(data, &bank); err != nil {
		t.Fatalf("bank file is not valid JSON: %v", err)
	}
	return bank
}

func TestBankSyncWritesNewEntries(t *testing.T) {
	dir := t.TempDir()
	s := NewBankSynchronizer(filepath.Join(dir, "bank.json"), filepath.Join(dir, "backups"))

	res, err := s.Sync([]models.Question{
		testQuestion("Biology", "What is a cell?"),
		testQuestion("Biology", "What is a nucleus?"),
		testQuestion("Chemistry", "What is an atom?"),
	})
	if err != nil {
		t.Fatalf("sync failed: %v", err)
	}
	if res.Inserted != 3 || res.Skipped != 0 {
		t.Errorf("inserted/skipped = %d/%d, want 3/0", res.Inserted, res.Skipped)
	}
	if res.TopicTotals["Biology"] != 2 || res.TopicTotals["Chemistry"] != 1 {
		t.Errorf("topic totals = %v", res.TopicTotals)
	}

	bank := readBank(t, s.Path())
	if len(bank["Biology"]) != 2 || len(bank["Chemistry"]) != 1 {
		t.Errorf("on-disk bank = %v", bank)
	}
}

func TestBankSyncIdempotent(t *testing.T) {
	dir := t.TempDir()
	backups := filepath.Join(dir, "backups")
	s := NewBankSynchronizer(filepath.Join(dir, "bank.json"), backups)

	batch := []models.Question{testQuestion("Biology", "What is a cell?")}
	if _, err := s.Sync(batch); err != nil {
		t.Fatalf("first sync failed: %v", err)
	}
	before, _ := os.ReadFile(s.Path())

	res, err := s.Sync(batch)
	if err != nil {
		t.Fatalf("second sync failed: %v", err)
	}
	if res.Inserted != 0 || res.Skipped != 1 {
		t.Errorf("re-sync inserted/skipped = %d/%d, want 0/1", res.Inserted, res.Skipped)
	}

	after, _ := os.ReadFile(s.Path())
	if string(before) != string(after) {
		t.Error("no-op sync must leave the file byte-identical")
	}

	// A no-op sync takes no backup either.
	if entries, _ := os.ReadDir(backups); len(entries) != 0 {
		t.Errorf("expected no backups after no-op sync, found %d", len(entries))
	}
}

func TestBankSyncSkipsNormalizedDuplicates(t *testing.T) {
	dir := t.TempDir()
	s := NewBankSynchronizer(filepath.Join(dir, "bank.json"), filepath.Join(dir, "backups"))

	if _, err := s.Sync([]models.Question{testQuestion("Biology", "What is a cell?")}); err != nil {
		t.Fatalf("sync failed: %v", err)
	}

	res, err := s.Sync([]models.Question{testQuestion("Biology", "  what IS a cell??  ")})
	if err != nil {
		t.Fatalf("sync failed: %v", err)
	}
	if res.Inserted != 0 || res.Skipped != 1 {
		t.Errorf("inserted/skipped = %d/%d, want 0/1", res.Inserted, res.Skipped)
	}
}

func TestBankSyncBacksUpBeforeReplace(t *testing.T) {
	dir := t.TempDir()
	backups := filepath.Join(dir, "backups")
	s := NewBankSynchronizer(filepath.Join(dir, "bank.json"), backups)

	if _, err := s.Sync([]models.Question{testQuestion("Biology", "What is a cell?")}); err != nil {
		t.Fatalf("first sync failed: %v", err)
	}
	firstWrite, _ := os.ReadFile(s.Path())

	if _, err := s.Sync([]models.Question{testQuestion("Biology", "What is a nucleus?")}); err != nil {
		t.Fatalf("second sync failed: %v", err)
	}

	entries, err := os.ReadDir(backups)
	if err != nil || len(entries) != 1 {
		t.Fatalf("expected exactly one backup, got %d (err %v)", len(entries), err)
	}

	backup, _ := os.ReadFile(filepath.Join(backups, entries[0].Name()))
	if string(backup) != string(firstWrite) {
		t.Error("backup must hold the pre-sync file content")
	}
}

func TestBankSyncLeavesFileIntactOnFailure(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bank.json")

	// A corrupt master file makes the load step fail.
	corrupt := []byte("{ not json")
	if err := os.WriteFile(path, corrupt, 0o644); err != nil {
		t.Fatal(err)
	}

	s := NewBankSynchronizer(path, filepath.Join(dir, "backups"))
	_, err := s.Sync([]models.Question{testQuestion("Biology", "What is a cell?")})

	var syncErr *SyncIOError
	if !errors.As(err, &syncErr) {
		t.Fatalf("expected SyncIOError, got %v", err)
	}

	after, _ := os.ReadFile(path)
	if string(after) != string(corrupt) {
		t.Error("a failed sync must not modify the master file")
	}

	// No stray temp files either.
	entries, _ := os.ReadDir(dir)
	for _, e := range entries {
		if e.Name() != "bank.json" {
			t.Errorf("unexpected file left behind: %s", e.Name())
		}
	}
}

func TestBankSyncFailedReplaceLeavesTargetUntouched(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bank.json")

	// Stand a non-empty directory in the master's place: the temp file writes
	// out fully and the final rename is the step that fails.
	if err := os.MkdirAll(filepath.Join(path, "marker"), 0o755); err != nil {
		t.Fatal(err)
	}

	s := NewBankSynchronizer(path, filepath.Join(dir, "backups"))
	err := s.writeAtomic(map[string][]models.BankEntry{
		"Biology": {{
			Text:         "What is a cell?",
			Choices:      []string{"a", "b", "c", "d"},
			CorrectIndex: 1,
			Difficulty:   models.DifficultyMedium,
		}},
	})

	var syncErr *SyncIOError
	if !errors.As(err, &syncErr) {
		t.Fatalf("expected SyncIOError from failed replace, got %v", err)
	}

	// Whatever sits at the master path survives the aborted commit.
	if _, err := os.Stat(filepath.Join(path, "marker")); err != nil {
		t.Errorf("master path was disturbed by a failed replace: %v", err)
	}

	// The fully-written temp file is removed on abort.
	entries, _ := os.ReadDir(dir)
	for _, e := range entries {
		if e.Name() != "bank.json" {
			t.Errorf("unexpected file left behind: %s", e.Name())
		}
	}
}

func TestBankSyncReplacesFileWholesale(t *testing.T) {
	dir := t.TempDir()
	s := NewBankSynchronizer(filepath.Join(dir, "bank.json"), filepath.Join(dir, "backups"))

	if _, err := s.Sync([]models.Question{testQuestion("Biology", "What is a cell?")}); err != nil {
		t.Fatalf("first sync failed: %v", err)
	}
	before, err := os.Stat(s.Path())
	if err != nil {
		t.Fatal(err)
	}

	if _, err := s.Sync([]models.Question{testQuestion("Biology", "What is a nucleus?")}); err != nil {
		t.Fatalf("second sync failed: %v", err)
	}
	after, err := os.Stat(s.Path())
	if err != nil {
		t.Fatal(err)
	}

	// Every commit swaps in a fresh file; the master is never rewritten in
	// place, so an interrupted commit can only ever leave the old bytes.
	if os.SameFile(before, after) {
		t.Error("master file was modified in place instead of replaced")
	}
}

func TestBankSyncMissingFileStartsEmpty(t *testing.T) {
	dir := t.TempDir()
	s := NewBankSynchronizer(filepath.Join(dir, "bank.json"), filepath.Join(dir, "backups"))

	texts, err := s.NormalizedTexts()
	if err != nil {
		t.Fatalf("missing file should read as empty bank: %v", err)
	}
	if len(texts) != 0 {
		t.Errorf("expected empty set, got %d entries", len(texts))
	}

	stats, err := s.Stats()
	if err != nil {
		t.Fatalf("stats failed: %v", err)
	}
	if stats.Total != 0 {
		t.Errorf("expected empty bank, total = %d", stats.Total)
	}
}

func TestBankSyncOrdersEntriesByDifficulty(t *testing.T) {
	dir := t.TempDir()
	s := NewBankSynchronizer(filepath.Join(dir, "bank.json"), filepath.Join(dir, "backups"))

	hard := testQuestion("Biology", "Why does the electron transport chain need oxygen?")
	hard.Difficulty = models.DifficultyHard
	easy := testQuestion("Biology", "What is a cell?")
	easy.Difficulty = models.DifficultyEasy

	if _, err := s.Sync([]models.Question{hard, easy}); err != nil {
		t.Fatalf("sync failed: %v", err)
	}

	bank := readBank(t, s.Path())
	entries := bank["Biology"]
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].Difficulty != models.DifficultyEasy || entries[1].Difficulty != models.DifficultyHard {
		t.Errorf("entries not ordered by difficulty: %s, %s", entries[0].Difficulty, entries[1].Difficulty)
	}
}
