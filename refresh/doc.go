// Package refresh keeps the guideline corpus current. The scheduler
// decides when a refresh is due from the audit log, runs ingestion
// source by source, re-embeds the corpus when anything changed, and
// guarantees at most one refresh in flight per process.
package refresh
