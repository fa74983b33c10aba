package mode

// Mode is the retrieval strategy the backend reports for a hit.
type Mode string

// Search mode constants.
const (
	Lexical  Mode = "lexical"
	Semantic Mode = "semantic"
	// Hybrid combines lexical and semantic retrieval.
	Hybrid Mode = "hybrid"
)

// IsValid checks if the mode is one of the supported values.
func (m Mode) IsValid() bool {
	return m == Lexical || m == Semantic || m == Hybrid
}
