package embedding

// =============================================================================
// TASK TYPE SELECTION
// =============================================================================

// Purpose describes what an embedding will be used for. GenAI embeddings are
// task-hinted: a vector built for indexing documents is not the same as one
// built for matching a user query against them.
type Purpose string

const (
	// PurposeIndex embeds knowledge passages being written to the index.
	PurposeIndex Purpose = "index"
	// PurposeSearch embeds a user query for index lookup.
	PurposeSearch Purpose = "search"
	// PurposeFAQMatch embeds FAQ questions and queries for pairwise
	// similarity, where both sides get the same hint.
	PurposeFAQMatch Purpose = "faq_match"
)

// TaskTypeFor maps a purpose to the GenAI task type string.
func TaskTypeFor(p Purpose) string {
	switch p {
	case PurposeIndex:
		return "RETRIEVAL_DOCUMENT"
	case PurposeSearch:
		return "RETRIEVAL_QUERY"
	case PurposeFAQMatch:
		return "SEMANTIC_SIMILARITY"
	default:
		return "SEMANTIC_SIMILARITY"
	}
}
