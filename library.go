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

package guidelines

import (
	"log/slog"
	"path/filepath"

	"github.com/carelight/guidelines/ai"
	"github.com/carelight/guidelines/ai/openai"
	"github.com/carelight/guidelines/ingestion"
	"github.com/carelight/guidelines/reembed"
	"github.com/carelight/guidelines/refresh"
	"github.com/carelight/guidelines/search"
	"github.com/carelight/guidelines/storage"
	"github.com/carelight/guidelines/storage/badger"
	"github.com/carelight/guidelines/storage/bleve"
)

// Library bundles the storage backends and the embedder behind one
// handle. It owns their lifecycles; everything else (orchestrator,
// pipeline, searcher, scheduler) is built on demand from it.
type Library struct {
	backend  *badger.Backend
	docs     storage.GuidelineRepository
	vectors  storage.VectorRepository
	logs     storage.RefreshLogRepository
	lexical  *bleve.Index
	embedder ai.Embedder
	nicePath string
	logger   *slog.Logger
}

// LibraryOption configures a Library.
type LibraryOption func(*libraryOptions)

type libraryOptions struct {
	aiConfig *ai.Config
	nicePath string
}

// WithAIConfig overrides the embedding provider configuration.
func WithAIConfig(config *ai.Config) LibraryOption {
	return func(o *libraryOptions) {
		if config != nil {
			o.aiConfig = config
		}
	}
}

// WithNICEExport points ingestion at a local NICE syndication export.
func WithNICEExport(path string) LibraryOption {
	return func(o *libraryOptions) {
		o.nicePath = path
	}
}

// Open opens (or creates) a guideline library under dir. The vector
// store and the full-text index live side by side in that directory.
func Open(dir string, opts ...LibraryOption) (*Library, error) {
	options := &libraryOptions{
		aiConfig: ai.DefaultConfig(),
	}
	for _, opt := range opts {
		opt(options)
	}

	lexical, err := bleve.NewIndex(filepath.Join(dir, "lexical.bleve"))
	if err != nil {
		return nil, err
	}

	backend, err := badger.OpenBackend(filepath.Join(dir, "store"), false)
	if err != nil {
		lexical.Close()
		return nil, err
	}

	docs, err := badger.NewGuidelineRepository(backend, lexical)
	if err != nil {
		backend.Close()
		lexical.Close()
		return nil, err
	}

	vectors, err := badger.NewVectorRepository(backend)
	if err != nil {
		docs.Close()
		backend.Close()
		lexical.Close()
		return nil, err
	}

	logs, err := badger.NewRefreshLogRepository(backend)
	if err != nil {
		vectors.Close()
		docs.Close()
		backend.Close()
		lexical.Close()
		return nil, err
	}

	embedder, err := openai.NewEmbedder(options.aiConfig)
	if err != nil {
		logs.Close()
		vectors.Close()
		docs.Close()
		backend.Close()
		lexical.Close()
		return nil, err
	}

	lib := &Library{
		backend:  backend,
		docs:     docs,
		vectors:  vectors,
		logs:     logs,
		lexical:  lexical,
		embedder: embedder,
		logger:   slog.Default(),
	}
	lib.nicePath = options.nicePath
	return lib, nil
}

// Close releases the repositories, the backend, and the text index.
func (l *Library) Close() error {
	if err := l.logs.Close(); err != nil {
		l.logger.Error("error closing refresh log repository", "err", err)
		return err
	}
	if err := l.vectors.Close(); err != nil {
		l.logger.Error("error closing vector repository", "err", err)
		return err
	}
	if err := l.docs.Close(); err != nil {
		l.logger.Error("error closing guideline repository", "err", err)
		return err
	}
	if err := l.backend.Close(); err != nil {
		l.logger.Error("error closing backend storage", "err", err)
		return err
	}
	if err := l.lexical.Close(); err != nil {
		l.logger.Error("error closing lexical index", "err", err)
		return err
	}
	return nil
}

func (l *Library) GuidelineRepository() storage.GuidelineRepository {
	return l.docs
}

func (l *Library) VectorRepository() storage.VectorRepository {
	return l.vectors
}

func (l *Library) RefreshLogRepository() storage.RefreshLogRepository {
	return l.logs
}

// NewOrchestrator builds an ingestion orchestrator over every known
// source. The NICE ingester stays unconfigured unless the library was
// opened with a syndication export.
func (l *Library) NewOrchestrator() *ingestion.Orchestrator {
	var niceOpts []ingestion.NICEOption
	if l.nicePath != "" {
		niceOpts = append(niceOpts, ingestion.WithNICEExportPath(l.nicePath))
	}
	return ingestion.NewOrchestrator(l.logger,
		ingestion.NewManualIngester(l.docs, l.logs, l.logger),
		ingestion.NewUSPSTFIngester(l.docs, l.logs, l.logger),
		ingestion.NewNICEIngester(l.docs, l.logs, l.logger, niceOpts...),
		ingestion.NewOpenFDAIngester(l.docs, l.logs, l.logger),
	)
}

func (l *Library) NewPipeline(opts ...reembed.Option) (*reembed.Pipeline, error) {
	return reembed.NewPipeline(l.docs, l.vectors, l.embedder, opts...)
}

func (l *Library) NewSearcher(opts ...search.Option) (*search.Searcher, error) {
	return search.NewSearcher(l.vectors, l.lexical, l.embedder, opts...)
}

// NewScheduler builds a refresh scheduler backed by a fresh orchestrator
// and pipeline.
func (l *Library) NewScheduler(opts ...refresh.Option) (*refresh.Scheduler, error) {
	pipeline, err := l.NewPipeline()
	if err != nil {
		return nil, err
	}
	return refresh.NewScheduler(l.NewOrchestrator(), pipeline, l.logs, opts...)
}
