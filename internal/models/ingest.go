package models

import "github.com/google/uuid"

// SectionChunk is one generation unit produced by the section splitter. It is
// request-scoped and never persisted.
type SectionChunk struct {
	Heading   string
	Text      string
	WordCount int
}

// Candidate provenance values.
const (
	ProvenanceService   = "service"
	ProvenanceHeuristic = "heuristic"
)

// CandidateQuestion is a generated question that has not yet passed duplicate
// checks. Provenance records which generator variant produced it; it has no
// effect on dedup or storage.
type CandidateQuestion struct {
	Text         string   `json:"text"`
	Choices      []string `json:"choices"`
	CorrectIndex int      `json:"correct_index"`
	Provenance   string   `json:"provenance"`
}

// BankEntry is the on-disk shape of one question in the master bank file.
// The file stays human-diffable: a JSON object keyed by topic, each holding
// an ordered list of these entries.
type BankEntry struct {
	Text         string     `json:"q"`
	Choices      []string   `json:"opts"`
	CorrectIndex int        `json:"correct_index"`
	Difficulty   Difficulty `json:"diff"`
	Source       string     `json:"source_type,omitempty"`
}

// SyncReport summarizes one ingestion's outcome, including whether the master
// bank commit succeeded. Store writes are never rolled back on a failed bank
// sync; the report carries the partial-success state instead.
type SyncReport struct {
	Topic        string `json:"topic"`
	Generated    int    `json:"candidates_generated"`
	Admitted     int    `json:"admitted"`
	Inserted     int    `json:"inserted"`
	Skipped      int    `json:"skipped_duplicates"`
	TotalInTopic int    `json:"total_in_topic"`
	BankSynced   bool   `json:"bank_synced"`
	BankPath     string `json:"bank_path"`
	SyncError    string `json:"sync_error,omitempty"`
}

// BankSyncJob is queued to Redis when a master bank commit fails, so the
// worker pool can re-attempt the (idempotent) sync later.
type BankSyncJob struct {
	QuestionIDs []uuid.UUID `json:"question_ids"`
	RetryCount  int         `json:"retry_count"`
}

type BankStats struct {
	Topics map[string]int `json:"topics"`
	Total  int            `json:"total"`
	Path   string         `json:"path"`
}
