package exam

import (
	"bytes"
	"encoding/json"
	"errors"
	"regexp"
	"strings"
)

const (
	answerFallback = "Answer not provided"
	optionFallback = "Option not provided"
)

var (
	ErrInvalidDocument = errors.New("invalid document format")

	optionSplitRegex = regexp.MustCompile(`A\.|B\.|C\.|D\.`)
	flatCleaner      = strings.NewReplacer("\n", " ", "\t", " ", "\r", " ")
)

// ParseDocument decodes a question bank response body. The bank serves two
// generations of payload: the current one carries a "questions" array of
// objects, the legacy one a "question" array of flat strings with inlined
// A./B./C./D. options. The document itself may come wrapped in a
// single-element array.
func ParseDocument(body []byte) (Document, error) {
	var resp struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return Document{}, ErrInvalidDocument
	}

	raw := bytes.TrimSpace(resp.Data)
	if len(raw) == 0 {
		return Document{}, ErrInvalidDocument
	}
	if raw[0] == '[' {
		var docs []json.RawMessage
		if err := json.Unmarshal(raw, &docs); err != nil {
			return Document{}, ErrInvalidDocument
		}
		if len(docs) == 0 {
			return Document{}, ErrInvalidDocument
		}
		raw = docs[0]
	}

	var doc struct {
		Year       int        `json:"year"`
		Structured []Question `json:"questions"`
		Flat       []string   `json:"question"`
	}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return Document{}, ErrInvalidDocument
	}

	switch {
	case doc.Structured != nil:
		return Document{Year: doc.Year, Questions: parseStructured(doc.Structured)}, nil
	case doc.Flat != nil:
		return Document{Year: doc.Year, Questions: parseFlat(doc.Flat)}, nil
	}
	return Document{}, ErrInvalidDocument
}

func parseStructured(raw []Question) []Question {
	questions := make([]Question, 0, len(raw))
	for _, q := range raw {
		if q.Answer == "" {
			q.Answer = answerFallback
		}
		q.Question = strings.TrimSpace(q.Question)
		questions = append(questions, q)
	}
	return questions
}

// parseFlat splits a flat question string into its text and options.
// The third option doubles as the answer in legacy payloads.
func parseFlat(raw []string) []Question {
	questions := make([]Question, 0, len(raw))
	for _, s := range raw {
		parts := optionSplitRegex.Split(flatCleaner.Replace(s), -1)

		options := make([]string, 0, len(parts)-1)
		for _, opt := range parts[1:] {
			if opt = strings.TrimSpace(opt); opt != "" {
				options = append(options, opt)
			}
		}

		answer := optionFallback
		if len(options) > 2 {
			answer = options[2]
		}

		questions = append(questions, Question{
			Question: strings.TrimSpace(parts[0]),
			Options:  options,
			Answer:   answer,
		})
	}
	return questions
}
