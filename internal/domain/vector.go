package domain

// VectorDoc is a document stored in a vector index. Fields carry the payload
// returned with search hits.
type VectorDoc struct {
	ID     string
	Fields map[string]string
	Vector []float32
}

// VectorHit is a nearest-neighbour search result. Score is cosine similarity;
// hits come best first, ties in insertion order.
type VectorHit struct {
	ID     string
	Score  float64
	Fields map[string]string
}
