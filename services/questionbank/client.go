// Package questionbank talks to the external past questions service.
package questionbank

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/pkg/errors"

	"github.com/legacybuilder/backend/core"
	"github.com/legacybuilder/backend/core/exam"
)

type Client struct {
	baseURL string
	http    *http.Client
}

var _ exam.Fetcher = (*Client)(nil)

func NewClient(conf *core.Config) *Client {
	return &Client{
		baseURL: conf.QuestionService.BaseURL,
		http:    &http.Client{Timeout: conf.QuestionService.Timeout},
	}
}

func (c *Client) FetchYear(ctx context.Context, year int, subject string) (exam.Document, error) {
	u := fmt.Sprintf("%s/questions/%d/%s", c.baseURL, year, url.PathEscape(subject))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return exam.Document{}, errors.Wrap(err, "building question bank request")
	}

	res, err := c.http.Do(req)
	if err != nil {
		return exam.Document{}, errors.Wrap(exam.ErrUpstream, err.Error())
	}
	defer func() { _ = res.Body.Close() }()

	switch {
	case res.StatusCode == http.StatusNotFound:
		return exam.Document{}, exam.ErrYearNotFound
	case res.StatusCode != http.StatusOK:
		return exam.Document{}, errors.Wrapf(exam.ErrUpstream, "unexpected status %d", res.StatusCode)
	}

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return exam.Document{}, errors.Wrap(err, "reading question bank response")
	}

	doc, err := exam.ParseDocument(body)
	if err != nil {
		return exam.Document{}, errors.Wrapf(err, "parsing questions for %d/%s", year, subject)
	}
	return doc, nil
}
