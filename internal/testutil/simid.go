package testutil

// StaticIDGenerator returns the same simulation id every time.
//
// Unlike session.FixedGenerator, which hands out a finite sequence, this
// generator never exhausts. Useful when a test runs an unknown number of
// simulations and only needs byte-identical output.
//
// Stateless and safe for concurrent use.
type StaticIDGenerator struct {
	id string
}

// NewStaticIDGenerator creates a generator with the given id. An empty id
// defaults to "sim-000001".
func NewStaticIDGenerator(id string) *StaticIDGenerator {
	if id == "" {
		id = "sim-000001"
	}
	return &StaticIDGenerator{id: id}
}

// Generate returns the fixed simulation id.
//
// Implements session.IDGenerator.
func (g *StaticIDGenerator) Generate() string {
	return g.id
}
