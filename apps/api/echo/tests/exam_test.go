package tests

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"testing"

	. "github.com/legacybuilder/backend/apps/api/echo"
	"github.com/legacybuilder/backend/core/exam"
)

func seedYear(year, count int) exam.Document {
	doc := exam.Document{Year: year}
	for i := 1; i <= count; i++ {
		doc.Questions = append(doc.Questions, exam.Question{
			Question: fmt.Sprintf("%d. Question %d of %d", i, i, year),
			Options:  []string{"A", "B", "C", "D"},
			Answer:   "A",
		})
	}
	return doc
}

func TestFetchQuestions(t *testing.T) {
	questionBank.reset()
	questionBank.docs[2015] = seedYear(2015, 3)
	questionBank.errs[2016] = exam.ErrUpstream

	t.Run("Year paper", func(t *testing.T) {
		tt := httpTest{
			wantCode: http.StatusOK,
			wantData: marchallObj(t, YearQuestionsResponse{
				Success:        true,
				Data:           questionBank.docs[2015].Questions,
				TotalQuestions: 3,
				Year:           2015,
			}),
		}
		req, rec := newRequest(http.MethodGet, "/v1/fetch-questions/2015/Physics")
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, tt, rec)
	})

	tests := []httpTest{
		{
			name:     "Invalid year",
			path:     "/v1/fetch-questions/nineteen/Physics",
			wantCode: http.StatusBadRequest,
			wantData: []byte(`{"year": "invalid year"}`),
		},
		{
			name:     "Unknown year",
			path:     "/v1/fetch-questions/2003/Physics",
			wantCode: http.StatusNotFound,
			wantData: []byte(fmt.Sprintf(`{"error": %q}`, exam.ErrYearNotFound.Error())),
		},
		{
			name:     "Question bank down",
			path:     "/v1/fetch-questions/2016/Physics",
			wantCode: http.StatusBadGateway,
			wantData: []byte(`{"error": "question service unavailable"}`),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newRequest(http.MethodGet, tt.path)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func TestMockQuestions(t *testing.T) {
	questionBank.reset()
	questionBank.docs[2018] = seedYear(2018, 12)
	questionBank.docs[2019] = seedYear(2019, 4)
	questionBank.docs[2020] = seedYear(2020, 10)

	req, rec := newRequest(http.MethodGet, "/v1/mock-questions/Chemistry")
	app.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("failed! code = %v; body %s", rec.Code, rec.Body.String())
	}
	var resp MockExamResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshalling response: %v", err)
	}

	if !resp.Success {
		t.Error("success = false; want true")
	}
	if resp.TotalQuestions != len(resp.Data) {
		t.Errorf("totalQuestions = %v; want %v", resp.TotalQuestions, len(resp.Data))
	}
	// 10 sampled from 2018 and 2020, all 4 from 2019
	if want := exam.QuestionsPerYear*2 + 4; resp.TotalQuestions != want {
		t.Errorf("totalQuestions = %v; want %v", resp.TotalQuestions, want)
	}
	if len(resp.Years) != 3 {
		t.Errorf("years = %v; want 3 entries", resp.Years)
	}
	for _, year := range resp.Years {
		if _, ok := questionBank.docs[year]; !ok {
			t.Errorf("unexpected year %v in %v", year, resp.Years)
		}
	}
	// questions renumbered by position in the paper
	for i, q := range resp.Data {
		if !strings.HasPrefix(q.Question, fmt.Sprintf("%d. ", i+1)) {
			t.Errorf("question %d not renumbered: %q", i, q.Question)
		}
	}

	t.Run("No years", func(t *testing.T) {
		questionBank.reset()
		tt := httpTest{
			wantCode: http.StatusNotFound,
			wantData: []byte(fmt.Sprintf(`{"error": %q}`, exam.ErrNoYears.Error())),
		}
		req, rec := newRequest(http.MethodGet, "/v1/mock-questions/Chemistry")
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, tt, rec)
	})
}
