// Package ingestion fetches guideline documents from their upstream
// sources and persists them. Each source has its own Ingester; the
// Orchestrator runs them in canonical order with per-source fault
// isolation, so a broken upstream never blocks the rest of the corpus.
package ingestion
