package inmemdb

import (
	"context"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/legacybuilder/backend/core"
	"github.com/legacybuilder/backend/core/student"
)

type studentRepository struct {
	db *studentTable
}

var _ student.Repository = (*studentRepository)(nil) // interface compliance check

func NewStudentRepository(db *DB) *studentRepository {
	return &studentRepository{db: db.student}
}

func (repo *studentRepository) query() []student.Student {
	students := make([]student.Student, 0, len(repo.db.table))
	for _, std := range repo.db.table {
		students = append(students, *std)
	}
	return students
}

func (repo *studentRepository) CheckEmailUniqueness(_ context.Context, email string, excluded ...student.Student) error {
	repo.db.RLock()
	defer repo.db.RUnlock()

	exclLen := len(excluded)
	if exclLen > 1 {
		sort.Slice(excluded, func(i, j int) bool { return excluded[i].ID < excluded[j].ID })
	}

	for _, std := range repo.query() {
		if std.Email == email && !isExcluded(std, excluded, exclLen) {
			return student.ErrEmailExists
		}
	}
	return nil
}

func (repo *studentRepository) CreateStudent(_ context.Context, std student.Student) (student.Student, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	std.ID = uuid.New().String()
	repo.db.table[std.ID] = &std
	return std, nil
}

func (repo *studentRepository) GetStudent(_ context.Context, filter student.GetFilter) (student.Student, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if filter.ID != "" {
		if std, ok := repo.db.table[filter.ID]; ok {
			return *std, nil
		}
		return student.Student{}, student.ErrNotFound
	}

	for _, std := range repo.query() {
		if std.Email == filter.Email {
			return std, nil
		}
	}
	return student.Student{}, student.ErrNotFound
}

func (repo *studentRepository) QueryStudents(_ context.Context, filter *student.QueryFilter, ordering []core.DBOrdering) ([]student.Student, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	students := repo.query()

	if filter != nil {
		if filter.Search != "" {
			var filtered []student.Student
			search := strings.ToLower(filter.Search)
			for _, std := range students {
				if strings.Contains(strings.ToLower(std.Name), search) ||
					strings.Contains(strings.ToLower(std.Email), search) {
					filtered = append(filtered, std)
				}
			}
			students = filtered
		}
		if students != nil && filter.Plan != "" {
			var filtered []student.Student
			for _, std := range students {
				if std.Plan == filter.Plan {
					filtered = append(filtered, std)
				}
			}
			students = filtered
		}
		if students != nil && filter.Subject != "" {
			var filtered []student.Student
			for _, std := range students {
				if std.HasSubject(filter.Subject) {
					filtered = append(filtered, std)
				}
			}
			students = filtered
		}
		if students != nil && filter.IsVerified != nil {
			var filtered []student.Student
			for _, std := range students {
				if std.IsVerified == *filter.IsVerified {
					filtered = append(filtered, std)
				}
			}
			students = filtered
		}
		if students != nil && !filter.CreatedFrom.IsZero() {
			var filtered []student.Student
			timeUTC := filter.CreatedFrom.UTC()
			for _, std := range students {
				if std.CreatedAt.Equal(timeUTC) || std.CreatedAt.After(timeUTC) {
					filtered = append(filtered, std)
				}
			}
			students = filtered
		}
		if students != nil && !filter.CreatedTo.IsZero() {
			var filtered []student.Student
			timeUTC := filter.CreatedTo.UTC()
			for _, std := range students {
				if std.CreatedAt.Before(timeUTC) || std.CreatedAt.Equal(timeUTC) {
					filtered = append(filtered, std)
				}
			}
			students = filtered
		}
	}

	if len(ordering) > 0 {
		sortStudents(students, ordering[0])
	}
	return students, nil
}

func (repo *studentRepository) UpdateStudent(_ context.Context, std student.Student, isVerified *bool) (student.Student, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	// only save set fields
	orig, ok := repo.db.table[std.ID]
	if !ok {
		return student.Student{}, student.ErrNotFound
	}
	if std.Subjects != nil {
		orig.Subjects = std.Subjects
	}
	if std.PasswordHash != nil {
		orig.PasswordHash = std.PasswordHash
	}
	if isVerified != nil {
		orig.IsVerified = *isVerified
	}
	if std.Plan != "" {
		orig.Plan = std.Plan
	}
	orig.Name = std.Name
	orig.Email = std.Email
	orig.LastLogin = std.LastLogin
	orig.UpdatedAt = std.UpdatedAt

	repo.db.table[std.ID] = orig
	return *orig, nil
}

func (repo *studentRepository) DeleteStudentsByID(_ context.Context, ids ...string) (int, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	var cnt int
	for _, id := range ids {
		if _, ok := repo.db.table[id]; ok {
			delete(repo.db.table, id)
			cnt++
		}
	}
	return cnt, nil
}

func sortStudents(students []student.Student, ord core.DBOrdering) {
	sort.Slice(students, func(i, j int) bool {
		var less bool
		switch ord.Field {
		case "name":
			less = students[i].Name < students[j].Name
		case "email":
			less = students[i].Email < students[j].Email
		default:
			less = students[i].CreatedAt.Before(students[j].CreatedAt)
		}
		if ord.Ascending {
			return less
		}
		return !less
	})
}

func isExcluded(std student.Student, excluded []student.Student, n int) bool {
	if n <= 0 {
		return false
	}
	idx := sort.Search(n, func(i int) bool { return excluded[i].ID >= std.ID })
	return idx < n && excluded[idx].ID == std.ID
}
