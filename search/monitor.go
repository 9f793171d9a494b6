package search

import "github.com/carelight/guidelines/core"

// Monitor provides hooks to observe the combined search process.
// Implement this interface to track intermediate results during search.
type Monitor interface {
	Start(query string)
	AfterSemanticSearch(results []*core.SearchResult)
	AfterTextSearch(results []*core.TextSearchResult)
	Finish(result *core.CombinedSearchResult)
}

// noopMonitor is a no-op implementation of Monitor
type noopMonitor struct{}

var _ Monitor = (*noopMonitor)(nil)

func (n *noopMonitor) Start(_ string)                             {}
func (n *noopMonitor) AfterSemanticSearch(_ []*core.SearchResult) {}
func (n *noopMonitor) AfterTextSearch(_ []*core.TextSearchResult) {}
func (n *noopMonitor) Finish(_ *core.CombinedSearchResult)        {}
