package score

import (
	"context"
	"errors"
)

var (
	// errors
	ErrNotFound = errors.New("score entry not found")
)

type (
	Repository interface {
		CreateEntries(ctx context.Context, entries ...Entry) ([]Entry, error)
		GetEntry(ctx context.Context, studentID, subject string) (Entry, error)
		QueryEntriesByStudent(ctx context.Context, studentID string) ([]Entry, error)
		UpdateEntryScore(ctx context.Context, studentID, subject string, score int) (Entry, error)
		DeleteEntry(ctx context.Context, studentID, subject string) error
	}

	Service interface {
		Enroll(ctx context.Context, studentID string, subjects ...string) ([]Entry, error)
		Unenroll(ctx context.Context, studentID, subject string) error
		Board(ctx context.Context, studentID string) ([]Entry, error)
		SubjectEntry(ctx context.Context, studentID, subject string) (Entry, error)
		Record(ctx context.Context, studentID, subject string, score int) (Entry, error)
	}

	service struct {
		repo Repository
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository) *service {
	return &service{repo: repo}
}

// Enroll opens a zero score entry per subject, skipping subjects
// the student already has an entry for.
func (svc *service) Enroll(ctx context.Context, studentID string, subjects ...string) ([]Entry, error) {
	entries := make([]Entry, 0, len(subjects))
	for _, subject := range subjects {
		if _, err := svc.repo.GetEntry(ctx, studentID, subject); err == nil {
			continue
		} else if err != ErrNotFound {
			return nil, err
		}
		entries = append(entries, Entry{StudentID: studentID, Subject: subject})
	}
	if len(entries) == 0 {
		return []Entry{}, nil
	}
	return svc.repo.CreateEntries(ctx, entries...)
}

func (svc *service) Unenroll(ctx context.Context, studentID, subject string) error {
	return svc.repo.DeleteEntry(ctx, studentID, subject)
}

func (svc *service) Board(ctx context.Context, studentID string) ([]Entry, error) {
	return svc.repo.QueryEntriesByStudent(ctx, studentID)
}

func (svc *service) SubjectEntry(ctx context.Context, studentID, subject string) (Entry, error) {
	return svc.repo.GetEntry(ctx, studentID, subject)
}

func (svc *service) Record(ctx context.Context, studentID, subject string, score int) (Entry, error) {
	return svc.repo.UpdateEntryScore(ctx, studentID, subject, score)
}
