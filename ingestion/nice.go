package ingestion

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/carelight/guidelines/core"
	"github.com/carelight/guidelines/storage"
)

// NICEIngester loads a NICE syndication export from the local
// filesystem. NICE content is licensed, so the export has to be
// obtained separately; without a configured path the ingester reports
// itself unconfigured and the orchestrator skips it.
type NICEIngester struct {
	base
	exportPath string
}

// NICEOption configures a NICEIngester.
type NICEOption func(*NICEIngester)

// WithNICEExportPath points the ingester at a syndication export file.
func WithNICEExportPath(path string) NICEOption {
	return func(n *NICEIngester) {
		n.exportPath = path
	}
}

func NewNICEIngester(docs storage.GuidelineRepository, log storage.RefreshLogRepository, logger *slog.Logger, opts ...NICEOption) *NICEIngester {
	n := &NICEIngester{base: newBase(core.SourceNICE, docs, log, logger)}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

func (n *NICEIngester) Source() core.Source { return core.SourceNICE }

func (n *NICEIngester) Configured() bool { return n.exportPath != "" }

func (n *NICEIngester) Ingest(ctx context.Context) (*core.IngestionResult, error) {
	if !n.Configured() {
		return nil, ErrSourceNotConfigured
	}
	return n.run(ctx, n.load)
}

// niceExportEntry is one guideline in the syndication export file. The
// export is a JSON array of these records.
type niceExportEntry struct {
	Reference string `json:"reference"`
	Title     string `json:"title"`
	Content   string `json:"content"`
	Specialty string `json:"specialty"`
	Published string `json:"published"`
	URL       string `json:"url"`
}

func (n *NICEIngester) load(_ context.Context) ([]Payload, error) {
	data, err := os.ReadFile(n.exportPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetchFailed, err)
	}

	var entries []niceExportEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetchFailed, err)
	}

	payloads := make([]Payload, 0, len(entries))
	for _, entry := range entries {
		if entry.Reference == "" || entry.Title == "" || entry.Content == "" {
			continue
		}

		specialty, err := core.ParseSpecialty(entry.Specialty)
		if err != nil {
			specialty = classifySpecialty(entry.Title)
		}

		metadata := map[string]string{
			core.MetaGuidelineID:  "nice-" + entry.Reference,
			core.MetaOrganization: "National Institute for Health and Care Excellence",
		}
		if entry.Published != "" {
			metadata[core.MetaPublicationDate] = entry.Published
		}
		if entry.URL != "" {
			metadata[core.MetaURL] = entry.URL
		}

		payloads = append(payloads, Payload{
			Title:     entry.Title,
			Contents:  entry.Content,
			Specialty: specialty,
			Metadata:  metadata,
		})
	}

	n.logger.Debug("loaded syndication export", "path", n.exportPath, "entries", len(payloads))
	return payloads, nil
}
