package refresh

import "errors"

var (
	// ErrOrchestratorRequired is returned when an orchestrator is not provided.
	ErrOrchestratorRequired = errors.New("ingestion orchestrator required")

	// ErrPipelineRequired is returned when an embedding pipeline is not provided.
	ErrPipelineRequired = errors.New("embedding pipeline required")

	// ErrRefreshLogRequired is returned when a refresh log repository is not provided.
	ErrRefreshLogRequired = errors.New("refresh log repository required")

	// ErrRefreshFailed is returned when a refresh pass finished with errors.
	ErrRefreshFailed = errors.New("refresh finished with errors")
)
