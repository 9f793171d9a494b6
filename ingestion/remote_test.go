package ingestion

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carelight/guidelines/core"
)

func TestUSPSTFIngester(t *testing.T) {
	ctx := context.Background()

	feed := `{
		"specificRecommendations": [
			{
				"id": 405,
				"title": "Hypertension in Adults: Screening",
				"topic": "Hypertension in Adults",
				"grade": "A",
				"text": "<p>The USPSTF recommends screening for <b>hypertension</b> in adults 18 years or older with office blood pressure measurement.</p>",
				"url": "https://www.uspreventiveservicestaskforce.org/uspstf/recommendation/hypertension-in-adults-screening"
			},
			{
				"id": 406,
				"title": "Untitled",
				"topic": "",
				"grade": "",
				"text": ""
			}
		]
	}`

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(feed))
	}))
	defer server.Close()

	t.Run("parses the recommendation feed", func(t *testing.T) {
		docs, logs := newTestStore(t)
		ing := NewUSPSTFIngester(docs, logs, nil, WithUSPSTFEndpoint(server.URL))

		result, err := ing.Ingest(ctx)
		require.NoError(t, err)

		assert.True(t, result.Success)
		assert.Equal(t, 1, result.DocumentsProcessed)

		stored, err := docs.GetAllGuidelines(ctx)
		require.NoError(t, err)
		require.Len(t, stored, 1)

		doc := stored[0]
		assert.Equal(t, core.SourceUSPSTF, doc.Source)
		assert.Equal(t, "Hypertension in Adults: Screening", doc.Title)
		assert.Equal(t, "uspstf-405", doc.GuidelineID())
		assert.Equal(t, "A", doc.Metadata[core.MetaGrade])
		assert.Equal(t, core.SpecialtyCardiology, doc.Specialty)
		assert.NotContains(t, doc.Contents, "<p>")
		assert.Contains(t, doc.Contents, "screening for hypertension")
	})

	t.Run("server error fails the pass", func(t *testing.T) {
		broken := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer broken.Close()

		docs, logs := newTestStore(t)
		ing := NewUSPSTFIngester(docs, logs, nil, WithUSPSTFEndpoint(broken.URL))

		result, err := ing.Ingest(ctx)
		require.NoError(t, err)
		assert.False(t, result.Success)
		require.Len(t, result.Errors, 1)
		assert.Contains(t, result.Errors[0], "status 500")
	})

	t.Run("empty endpoint is unconfigured", func(t *testing.T) {
		docs, logs := newTestStore(t)
		ing := NewUSPSTFIngester(docs, logs, nil, WithUSPSTFEndpoint(""))
		assert.False(t, ing.Configured())

		_, err := ing.Ingest(ctx)
		assert.ErrorIs(t, err, ErrSourceNotConfigured)
	})
}

func TestStripHTML(t *testing.T) {
	assert.Equal(t, "plain text", stripHTML("plain text"))
	assert.Equal(t, "bold and linked", stripHTML(`<b>bold</b> and <a href="x">linked</a>`))
	assert.Equal(t, "", stripHTML("<br/>"))
}

func TestOpenFDAIngester(t *testing.T) {
	ctx := context.Background()

	label := `{
		"results": [
			{
				"id": "abcd-1234",
				"effective_time": "20240115",
				"indications_and_usage": ["Metformin hydrochloride tablets are indicated as an adjunct to diet and exercise to improve glycemic control in adults with type 2 diabetes mellitus."],
				"dosage_and_administration": ["Starting dose: 500 mg orally twice a day with meals."],
				"contraindications": ["Severe renal impairment (eGFR below 30 mL/min/1.73 m2)."],
				"openfda": {
					"generic_name": ["METFORMIN HYDROCHLORIDE"],
					"brand_name": ["GLUCOPHAGE"]
				}
			}
		]
	}`

	t.Run("builds a document per label", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Contains(t, r.URL.Query().Get("search"), "metformin")
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(label))
		}))
		defer server.Close()

		docs, logs := newTestStore(t)
		ing := NewOpenFDAIngester(docs, logs, nil,
			WithOpenFDAEndpoint(server.URL),
			WithOpenFDAQueries([]string{"metformin"}),
		)

		result, err := ing.Ingest(ctx)
		require.NoError(t, err)
		assert.True(t, result.Success)
		assert.Equal(t, 1, result.DocumentsProcessed)

		stored, err := docs.GetAllGuidelines(ctx)
		require.NoError(t, err)
		require.Len(t, stored, 1)

		doc := stored[0]
		assert.Equal(t, core.SourceOpenFDA, doc.Source)
		assert.Equal(t, "openfda-abcd-1234", doc.GuidelineID())
		assert.Equal(t, "20240115", doc.Metadata[core.MetaPublicationDate])
		assert.Equal(t, "GLUCOPHAGE", doc.Metadata["brand_name"])
		assert.Equal(t, core.SpecialtyEndocrinology, doc.Specialty)
		assert.Contains(t, doc.Contents, "Indications and Usage")
		assert.Contains(t, doc.Contents, "Contraindications")
	})

	t.Run("empty generic name falls back to the query name", func(t *testing.T) {
		unnamed := `{
			"results": [
				{
					"id": "efgh-5678",
					"indications_and_usage": ["For the treatment of the indicated condition."],
					"openfda": {"generic_name": [""]}
				}
			]
		}`
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(unnamed))
		}))
		defer server.Close()

		docs, logs := newTestStore(t)
		ing := NewOpenFDAIngester(docs, logs, nil,
			WithOpenFDAEndpoint(server.URL),
			WithOpenFDAQueries([]string{"lisinopril"}),
		)

		result, err := ing.Ingest(ctx)
		require.NoError(t, err)
		assert.True(t, result.Success)
		assert.Equal(t, 1, result.DocumentsProcessed)

		stored, err := docs.GetAllGuidelines(ctx)
		require.NoError(t, err)
		require.Len(t, stored, 1)
		assert.Equal(t, "Lisinopril - Prescribing Information", stored[0].Title)
	})

	t.Run("no matches is not an error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}))
		defer server.Close()

		docs, logs := newTestStore(t)
		ing := NewOpenFDAIngester(docs, logs, nil,
			WithOpenFDAEndpoint(server.URL),
			WithOpenFDAQueries([]string{"nonexistent"}),
		)

		result, err := ing.Ingest(ctx)
		require.NoError(t, err)
		assert.True(t, result.Success)
		assert.Zero(t, result.DocumentsProcessed)
	})

	t.Run("empty query list is unconfigured", func(t *testing.T) {
		docs, logs := newTestStore(t)
		ing := NewOpenFDAIngester(docs, logs, nil, WithOpenFDAQueries(nil))
		assert.False(t, ing.Configured())
	})
}

func TestNICEIngester(t *testing.T) {
	ctx := context.Background()

	export := `[
		{
			"reference": "NG136",
			"title": "Hypertension in adults: diagnosis and management",
			"content": "Offer antihypertensive drug treatment to adults of any age with persistent stage 2 hypertension.",
			"specialty": "cardiology",
			"published": "2019-08-28",
			"url": "https://www.nice.org.uk/guidance/ng136"
		},
		{
			"reference": "",
			"title": "Broken entry",
			"content": "No reference."
		}
	]`

	t.Run("loads the export file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "nice-export.json")
		require.NoError(t, os.WriteFile(path, []byte(export), 0o600))

		docs, logs := newTestStore(t)
		ing := NewNICEIngester(docs, logs, nil, WithNICEExportPath(path))
		require.True(t, ing.Configured())

		result, err := ing.Ingest(ctx)
		require.NoError(t, err)
		assert.True(t, result.Success)
		assert.Equal(t, 1, result.DocumentsProcessed)

		stored, err := docs.GetAllGuidelines(ctx)
		require.NoError(t, err)
		require.Len(t, stored, 1)
		assert.Equal(t, "nice-NG136", stored[0].GuidelineID())
		assert.Equal(t, core.SpecialtyCardiology, stored[0].Specialty)
		assert.Equal(t, "2019-08-28", stored[0].Metadata[core.MetaPublicationDate])
	})

	t.Run("missing file fails the pass", func(t *testing.T) {
		docs, logs := newTestStore(t)
		ing := NewNICEIngester(docs, logs, nil, WithNICEExportPath("/nonexistent/export.json"))

		result, err := ing.Ingest(ctx)
		require.NoError(t, err)
		assert.False(t, result.Success)
		require.Len(t, result.Errors, 1)
	})

	t.Run("no path is unconfigured", func(t *testing.T) {
		docs, logs := newTestStore(t)
		ing := NewNICEIngester(docs, logs, nil)
		assert.False(t, ing.Configured())

		_, err := ing.Ingest(ctx)
		assert.ErrorIs(t, err, ErrSourceNotConfigured)
	})
}
