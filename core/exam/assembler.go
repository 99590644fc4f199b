package exam

import (
	"context"
	"fmt"
	"math/rand"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/legacybuilder/backend/core"
)

// discoveryWorkers bounds concurrent question bank calls during year discovery.
const discoveryWorkers = 4

var leadingNumRegex = regexp.MustCompile(`^\d+\.\s*`)

type (
	Service interface {
		YearQuestions(ctx context.Context, year int, subject string) (Document, error)
		MockExam(ctx context.Context, subject string) (Paper, error)
	}

	// Assembler builds mock exams by sampling the question bank across years.
	Assembler struct {
		fetcher Fetcher
		logger  core.Logger

		mu  sync.Mutex
		rnd *rand.Rand
	}
)

var _ Service = (*Assembler)(nil)

func NewAssembler(fetcher Fetcher, logger core.Logger) *Assembler {
	return &Assembler{
		fetcher: fetcher,
		logger:  logger,
		rnd:     rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// YearQuestions returns one year's paper for a subject as-is.
func (a *Assembler) YearQuestions(ctx context.Context, year int, subject string) (Document, error) {
	return a.fetcher.FetchYear(ctx, year, subject)
}

// MockExam samples up to MaxYears years for the subject, takes up to
// QuestionsPerYear random questions from each, shuffles the pool, caps it at
// MaxQuestions and renumbers the result.
func (a *Assembler) MockExam(ctx context.Context, subject string) (Paper, error) {
	byYear := a.discover(ctx, subject)
	if len(byYear) == 0 {
		return Paper{}, ErrNoYears
	}

	years := make([]int, 0, len(byYear))
	for year := range byYear {
		years = append(years, year)
	}
	a.shuffleYears(years)
	if len(years) > MaxYears {
		years = years[:MaxYears]
	}

	questions := make([]Question, 0, len(years)*QuestionsPerYear)
	for _, year := range years {
		questions = append(questions, a.sample(byYear[year], QuestionsPerYear)...)
	}
	a.shuffleQuestions(questions)
	if len(questions) > MaxQuestions {
		questions = questions[:MaxQuestions]
	}
	renumber(questions)

	return Paper{Subject: subject, Questions: questions, Years: years}, nil
}

// discover fetches every candidate year concurrently and keeps the non-empty
// ones. Failed years are skipped, not fatal.
func (a *Assembler) discover(ctx context.Context, subject string) map[int][]Question {
	type result struct {
		year      int
		questions []Question
	}

	years := make(chan int)
	results := make(chan result)

	var wg sync.WaitGroup
	for i := 0; i < discoveryWorkers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for year := range years {
				doc, err := a.fetcher.FetchYear(ctx, year, subject)
				if err != nil {
					a.logger.Debug(fmt.Sprintf("year %d skipped: %v", year, err))
					continue
				}
				if len(doc.Questions) == 0 {
					continue
				}
				results <- result{year: year, questions: doc.Questions}
			}
		}()
	}

	go func() {
		defer close(years)
		for _, year := range Years {
			select {
			case years <- year:
			case <-ctx.Done():
				return
			}
		}
	}()
	go func() {
		wg.Wait()
		close(results)
	}()

	byYear := make(map[int][]Question)
	for r := range results {
		byYear[r.year] = r.questions
	}
	return byYear
}

// sample returns up to n random questions without repetition.
func (a *Assembler) sample(questions []Question, n int) []Question {
	a.mu.Lock()
	perm := a.rnd.Perm(len(questions))
	a.mu.Unlock()

	if n > len(questions) {
		n = len(questions)
	}
	sampled := make([]Question, 0, n)
	for _, i := range perm[:n] {
		sampled = append(sampled, questions[i])
	}
	return sampled
}

func (a *Assembler) shuffleYears(years []int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.rnd.Shuffle(len(years), func(i, j int) { years[i], years[j] = years[j], years[i] })
}

func (a *Assembler) shuffleQuestions(questions []Question) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.rnd.Shuffle(len(questions), func(i, j int) { questions[i], questions[j] = questions[j], questions[i] })
}

// renumber strips any stale leading number off each question and prefixes
// its position in the paper.
func renumber(questions []Question) {
	for i := range questions {
		text := leadingNumRegex.ReplaceAllString(strings.TrimSpace(questions[i].Question), "")
		questions[i].Question = fmt.Sprintf("%d. %s", i+1, text)
	}
}
