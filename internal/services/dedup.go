package services

// DuplicateFilter decides whether a candidate question may enter the stores.
// It is seeded with a snapshot of store content hashes and master bank
// normalized texts taken at the start of an ingestion request; every admitted
// candidate folds back into the snapshot, so one batch can never admit two
// candidates whose normalized texts are equal.
//
// Both corpora are checked because the durable store and the bank file can
// diverge transiently (a question saved before a sync commit completes);
// checking only one would let duplicates reappear after a later sync.
type DuplicateFilter struct {
	storeHashes map[string]struct{}
	bankTexts   map[string]struct{}
}

func NewDuplicateFilter(storeHashes, bankTexts map[string]struct{}) *DuplicateFilter {
	if storeHashes == nil {
		storeHashes = make(map[string]struct{})
	}
	if bankTexts == nil {
		bankTexts = make(map[string]struct{})
	}
	return &DuplicateFilter{storeHashes: storeHashes, bankTexts: bankTexts}
}

// Admit reports whether the question text is new to both corpora and, if so,
// claims it.
func (f *DuplicateFilter) Admit(text string) bool {
	norm := Normalize(text)
	hash := ContentHash(text)

	if _, ok := f.storeHashes[hash]; ok {
		return false
	}
	if _, ok := f.bankTexts[norm]; ok {
		return false
	}

	f.storeHashes[hash] = struct{}{}
	f.bankTexts[norm] = struct{}{}
	return true
}
