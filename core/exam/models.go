package exam

import (
	"context"
	"errors"

	"github.com/volatiletech/null/v8"
)

// Years lists the exam years the question bank may hold papers for.
var Years = []int{2002, 2015, 2016, 2017, 2018, 2019, 2020, 2021, 2022}

const (
	// MaxYears is the number of years sampled into a mock exam.
	MaxYears = 5
	// QuestionsPerYear is the number of questions sampled per selected year.
	QuestionsPerYear = 10
	// MaxQuestions caps the assembled mock exam.
	MaxQuestions = 50
)

var (
	// errors
	ErrNoYears      = errors.New("no available years found for this subject")
	ErrYearNotFound = errors.New("no past questions found for this year and subject")
	ErrUpstream     = errors.New("question bank unavailable")
)

type Question struct {
	Subheading null.String `json:"subheading"`
	Question   string      `json:"question"`
	Options    []string    `json:"options"`
	Answer     string      `json:"answer"`
}

// Paper is an assembled mock exam.
type Paper struct {
	Subject   string     `json:"subject"`
	Questions []Question `json:"questions"`
	Years     []int      `json:"years"`
}

// Fetcher retrieves one year's questions for a subject from the question bank.
// Implementations return ErrYearNotFound when the bank has no paper for the year.
type Fetcher interface {
	FetchYear(ctx context.Context, year int, subject string) (Document, error)
}

// Document is one year's paper as served by the question bank.
type Document struct {
	Year      int        `json:"year"`
	Questions []Question `json:"questions"`
}
