package corpus

// SourceType identifies the provenance of a fragment's source document.
type SourceType string

const (
	// SourceTabular marks fragments from row/column data (CSV).
	SourceTabular SourceType = "tabular"
	// SourceStructured marks fragments from nested records (JSON).
	SourceStructured SourceType = "structured"
	// SourceOpaque marks fragments from free text (PDF, markdown, txt).
	SourceOpaque SourceType = "opaque-text"
)

// SourceTypeFor maps a file extension (without dot) to its source type.
func SourceTypeFor(fileType string) SourceType {
	switch fileType {
	case "csv":
		return SourceTabular
	case "json":
		return SourceStructured
	default:
		return SourceOpaque
	}
}

// Fragment is one bounded-length slice of a source document's text,
// tagged with provenance. Index is the fragment's ordinal position
// within its source document.
type Fragment struct {
	Text       string
	SourceFile string
	SourceType SourceType
	Index      int
	// Embedding is empty when the embedding step was unavailable;
	// retrieval then relies on lexical scoring alone.
	Embedding []float32
}

// ScoredFragment pairs a fragment with its relevance score for one
// query. Scores are recomputed per query and never persisted.
type ScoredFragment struct {
	Fragment
	Score int
}
