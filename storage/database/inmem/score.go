package inmemdb

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/legacybuilder/backend/core/score"
)

type scoreRepository struct {
	db *scoreTable
}

var _ score.Repository = (*scoreRepository)(nil) // interface compliance check

func NewScoreRepository(db *DB) *scoreRepository {
	return &scoreRepository{db: db.score}
}

func entryKey(studentID, subject string) string {
	return studentID + "/" + subject
}

func (repo *scoreRepository) CreateEntries(_ context.Context, entries ...score.Entry) ([]score.Entry, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	created := make([]score.Entry, 0, len(entries))
	for _, entry := range entries {
		key := entryKey(entry.StudentID, entry.Subject)
		if existing, ok := repo.db.table[key]; ok {
			created = append(created, *existing)
			continue
		}
		entry.ID = uuid.New().String()
		if entry.UpdatedAt.IsZero() {
			entry.UpdatedAt = time.Now().UTC()
		}
		repo.db.table[key] = &entry
		created = append(created, entry)
	}
	return created, nil
}

func (repo *scoreRepository) GetEntry(_ context.Context, studentID, subject string) (score.Entry, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if entry, ok := repo.db.table[entryKey(studentID, subject)]; ok {
		return *entry, nil
	}
	return score.Entry{}, score.ErrNotFound
}

func (repo *scoreRepository) QueryEntriesByStudent(_ context.Context, studentID string) ([]score.Entry, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	entries := make([]score.Entry, 0)
	for _, entry := range repo.db.table {
		if entry.StudentID == studentID {
			entries = append(entries, *entry)
		}
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Subject < entries[j].Subject })
	return entries, nil
}

func (repo *scoreRepository) UpdateEntryScore(_ context.Context, studentID, subject string, scr int) (score.Entry, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	entry, ok := repo.db.table[entryKey(studentID, subject)]
	if !ok {
		return score.Entry{}, score.ErrNotFound
	}
	entry.Score = scr
	entry.UpdatedAt = time.Now().UTC()
	return *entry, nil
}

func (repo *scoreRepository) DeleteEntry(_ context.Context, studentID, subject string) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	key := entryKey(studentID, subject)
	if _, ok := repo.db.table[key]; !ok {
		return score.ErrNotFound
	}
	delete(repo.db.table, key)
	return nil
}
