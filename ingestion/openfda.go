package ingestion

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/carelight/guidelines/core"
	"github.com/carelight/guidelines/storage"
)

// DefaultOpenFDAEndpoint is the openFDA drug label search API.
const DefaultOpenFDAEndpoint = "https://api.fda.gov/drug/label.json"

// defaultOpenFDAQueries are the drug classes fetched when the caller
// does not supply its own list. They track the medication classes the
// curated guidelines reference most.
var defaultOpenFDAQueries = []string{
	"metformin",
	"lisinopril",
	"atorvastatin",
	"amlodipine",
	"sertraline",
	"amoxicillin",
}

// OpenFDAIngester fetches prescribing information from the openFDA drug
// label API, one search query per configured drug name.
type OpenFDAIngester struct {
	base
	endpoint string
	apiKey   string
	queries  []string
	perQuery int
	client   *http.Client
	limiter  *rate.Limiter
}

// OpenFDAOption configures an OpenFDAIngester.
type OpenFDAOption func(*OpenFDAIngester)

// WithOpenFDAEndpoint overrides the API URL. An empty endpoint leaves
// the ingester unconfigured.
func WithOpenFDAEndpoint(endpoint string) OpenFDAOption {
	return func(o *OpenFDAIngester) {
		o.endpoint = endpoint
	}
}

// WithOpenFDAAPIKey sets an API key. The API works without one at a
// lower rate limit, so this is optional.
func WithOpenFDAAPIKey(key string) OpenFDAOption {
	return func(o *OpenFDAIngester) {
		o.apiKey = key
	}
}

// WithOpenFDAQueries replaces the default drug name queries.
func WithOpenFDAQueries(queries []string) OpenFDAOption {
	return func(o *OpenFDAIngester) {
		o.queries = queries
	}
}

// WithOpenFDAHTTPClient overrides the HTTP client, mainly for tests.
func WithOpenFDAHTTPClient(client *http.Client) OpenFDAOption {
	return func(o *OpenFDAIngester) {
		o.client = client
	}
}

func NewOpenFDAIngester(docs storage.GuidelineRepository, log storage.RefreshLogRepository, logger *slog.Logger, opts ...OpenFDAOption) *OpenFDAIngester {
	o := &OpenFDAIngester{
		base:     newBase(core.SourceOpenFDA, docs, log, logger),
		endpoint: DefaultOpenFDAEndpoint,
		queries:  defaultOpenFDAQueries,
		perQuery: 1,
		client:   &http.Client{Timeout: 30 * time.Second},
		limiter:  rate.NewLimiter(rate.Every(time.Second), 1),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

func (o *OpenFDAIngester) Source() core.Source { return core.SourceOpenFDA }

func (o *OpenFDAIngester) Configured() bool {
	return o.endpoint != "" && len(o.queries) > 0
}

func (o *OpenFDAIngester) Ingest(ctx context.Context) (*core.IngestionResult, error) {
	if !o.Configured() {
		return nil, ErrSourceNotConfigured
	}
	return o.run(ctx, o.fetch)
}

type openFDAResponse struct {
	Results []openFDALabel `json:"results"`
}

type openFDALabel struct {
	ID                      string      `json:"id"`
	EffectiveTime           string      `json:"effective_time"`
	IndicationsAndUsage     []string    `json:"indications_and_usage"`
	DosageAndAdministration []string    `json:"dosage_and_administration"`
	WarningsAndCautions     []string    `json:"warnings_and_cautions"`
	Contraindications       []string    `json:"contraindications"`
	OpenFDA                 openFDAMeta `json:"openfda"`
}

type openFDAMeta struct {
	GenericName []string `json:"generic_name"`
	BrandName   []string `json:"brand_name"`
}

// fetch runs one rate-limited search per configured drug name. A failed
// query aborts the pass; partial-source results would otherwise look
// like drugs being removed from the formulary.
func (o *OpenFDAIngester) fetch(ctx context.Context) ([]Payload, error) {
	var payloads []Payload
	for _, query := range o.queries {
		if err := o.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		labels, err := o.search(ctx, query)
		if err != nil {
			return nil, fmt.Errorf("query %q: %w", query, err)
		}

		for _, label := range labels {
			payload, ok := o.payloadFromLabel(query, label)
			if ok {
				payloads = append(payloads, payload)
			}
		}
	}

	o.logger.Debug("fetched drug labels", "queries", len(o.queries), "labels", len(payloads))
	return payloads, nil
}

func (o *OpenFDAIngester) search(ctx context.Context, query string) ([]openFDALabel, error) {
	params := url.Values{}
	params.Set("search", fmt.Sprintf(`openfda.generic_name:%q`, query))
	params.Set("limit", fmt.Sprintf("%d", o.perQuery))
	if o.apiKey != "" {
		params.Set("api_key", o.apiKey)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, o.endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetchFailed, err)
	}

	resp, err := o.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetchFailed, err)
	}
	defer resp.Body.Close()

	// The API answers 404 for a search with no matches.
	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: unexpected status %d", ErrFetchFailed, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetchFailed, err)
	}

	var parsed openFDAResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetchFailed, err)
	}
	return parsed.Results, nil
}

func (o *OpenFDAIngester) payloadFromLabel(query string, label openFDALabel) (Payload, bool) {
	// Labels sometimes carry an empty generic name; keep the query name then.
	name := query
	if len(label.OpenFDA.GenericName) > 0 && label.OpenFDA.GenericName[0] != "" {
		name = strings.ToLower(label.OpenFDA.GenericName[0])
	}

	var sections []string
	appendSection := func(heading string, texts []string) {
		if len(texts) == 0 {
			return
		}
		sections = append(sections, heading+"\n\n"+strings.TrimSpace(strings.Join(texts, "\n\n")))
	}
	appendSection("Indications and Usage", label.IndicationsAndUsage)
	appendSection("Dosage and Administration", label.DosageAndAdministration)
	appendSection("Warnings and Precautions", label.WarningsAndCautions)
	appendSection("Contraindications", label.Contraindications)

	if label.ID == "" || name == "" || len(sections) == 0 {
		return Payload{}, false
	}

	title := fmt.Sprintf("%s - Prescribing Information", strings.ToUpper(name[:1])+name[1:])
	metadata := map[string]string{
		core.MetaGuidelineID:  "openfda-" + label.ID,
		core.MetaOrganization: "US Food and Drug Administration",
	}
	if label.EffectiveTime != "" {
		metadata[core.MetaPublicationDate] = label.EffectiveTime
	}
	if len(label.OpenFDA.BrandName) > 0 {
		metadata["brand_name"] = label.OpenFDA.BrandName[0]
	}

	return Payload{
		Title:     title,
		Contents:  strings.Join(sections, "\n\n"),
		Specialty: classifySpecialty(strings.Join(label.IndicationsAndUsage, " ")),
		Metadata:  metadata,
	}, true
}
