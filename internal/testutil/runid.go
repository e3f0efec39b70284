package testutil

// FixedRunIDGenerator returns the same run ID on every call.
//
// Suite runs stamped with a fixed ID produce byte-identical snapshots and
// run-log rows, which golden tests rely on.
//
// Thread-safety: FixedRunIDGenerator is stateless and safe for concurrent use.
type FixedRunIDGenerator struct {
	id string
}

// NewFixedRunIDGenerator creates a generator for id.
// An empty id falls back to "test-run-default".
func NewFixedRunIDGenerator(id string) *FixedRunIDGenerator {
	if id == "" {
		id = "test-run-default"
	}
	return &FixedRunIDGenerator{id: id}
}

// Generate returns the fixed run ID.
//
// Implements conformance.RunIDGenerator.
func (g *FixedRunIDGenerator) Generate() string {
	return g.id
}
