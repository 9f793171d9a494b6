// Copyright 2025 Carelight Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//	http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package ingestion

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/carelight/guidelines/core"
	"github.com/carelight/guidelines/storage"
)

// DefaultUSPSTFEndpoint is the public USPSTF recommendations JSON feed.
const DefaultUSPSTFEndpoint = "https://data.uspreventiveservicestaskforce.org/api/json"

// USPSTFIngester fetches preventive care recommendations from the US
// Preventive Services Task Force public API.
type USPSTFIngester struct {
	base
	endpoint string
	client   *http.Client
	limiter  *rate.Limiter
}

// USPSTFOption configures a USPSTFIngester.
type USPSTFOption func(*USPSTFIngester)

// WithUSPSTFEndpoint overrides the feed URL. An empty endpoint leaves the
// ingester unconfigured.
func WithUSPSTFEndpoint(endpoint string) USPSTFOption {
	return func(u *USPSTFIngester) {
		u.endpoint = endpoint
	}
}

// WithUSPSTFHTTPClient overrides the HTTP client, mainly for tests.
func WithUSPSTFHTTPClient(client *http.Client) USPSTFOption {
	return func(u *USPSTFIngester) {
		u.client = client
	}
}

func NewUSPSTFIngester(docs storage.GuidelineRepository, log storage.RefreshLogRepository, logger *slog.Logger, opts ...USPSTFOption) *USPSTFIngester {
	u := &USPSTFIngester{
		base:     newBase(core.SourceUSPSTF, docs, log, logger),
		endpoint: DefaultUSPSTFEndpoint,
		client:   &http.Client{Timeout: 30 * time.Second},
		limiter:  rate.NewLimiter(rate.Every(time.Second), 1),
	}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

func (u *USPSTFIngester) Source() core.Source { return core.SourceUSPSTF }

func (u *USPSTFIngester) Configured() bool { return u.endpoint != "" }

func (u *USPSTFIngester) Ingest(ctx context.Context) (*core.IngestionResult, error) {
	if !u.Configured() {
		return nil, ErrSourceNotConfigured
	}
	return u.run(ctx, u.fetch)
}

// uspstfFeed mirrors the relevant part of the recommendations JSON feed.
// The feed carries a great deal more; only the specific recommendations
// are ingested.
type uspstfFeed struct {
	SpecificRecommendations []uspstfRecommendation `json:"specificRecommendations"`
}

type uspstfRecommendation struct {
	ID    int    `json:"id"`
	Title string `json:"title"`
	Topic string `json:"topic"`
	Grade string `json:"grade"`
	Text  string `json:"text"`
	URL   string `json:"url"`
}

func (u *USPSTFIngester) fetch(ctx context.Context) ([]Payload, error) {
	if err := u.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetchFailed, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := u.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetchFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: unexpected status %d", ErrFetchFailed, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetchFailed, err)
	}

	var feed uspstfFeed
	if err := json.Unmarshal(body, &feed); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetchFailed, err)
	}

	payloads := make([]Payload, 0, len(feed.SpecificRecommendations))
	for _, rec := range feed.SpecificRecommendations {
		if rec.Title == "" || rec.Text == "" {
			continue
		}

		contents := stripHTML(rec.Text)
		if rec.Topic != "" {
			contents = fmt.Sprintf("Topic: %s\n\n%s", rec.Topic, contents)
		}

		metadata := map[string]string{
			core.MetaGuidelineID:  fmt.Sprintf("uspstf-%d", rec.ID),
			core.MetaOrganization: "US Preventive Services Task Force",
		}
		if rec.Grade != "" {
			metadata[core.MetaGrade] = rec.Grade
		}
		if rec.URL != "" {
			metadata[core.MetaURL] = rec.URL
		}

		payloads = append(payloads, Payload{
			Title:     rec.Title,
			Contents:  contents,
			Specialty: classifySpecialty(rec.Topic + " " + rec.Title),
			Metadata:  metadata,
		})
	}

	u.logger.Debug("fetched recommendations", "count", len(payloads))
	return payloads, nil
}

// stripHTML removes the markup the feed embeds in recommendation text.
// The feed uses simple tags only, so a linear scan is enough.
func stripHTML(s string) string {
	var sb strings.Builder
	sb.Grow(len(s))
	inTag := false
	for _, r := range s {
		switch {
		case r == '<':
			inTag = true
		case r == '>':
			inTag = false
		case !inTag:
			sb.WriteRune(r)
		}
	}
	return strings.TrimSpace(sb.String())
}
