// Package mock provides test double implementations of the ai interfaces.
//
// The mock Embedder lets tests run without an external embedding service and
// with controlled, deterministic behavior.
//
// # Usage in Tests
//
//	// Default deterministic behavior
//	embedder := mock.NewEmbedder()
//	vectors, err := embedder.EmbedTexts(ctx, []string{"test"})
//
//	// Custom behavior injection
//	embedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
//	    return nil, errors.New("provider unavailable")
//	}
//
//	// Call count assertions
//	count := embedder.CallCount()
package mock
