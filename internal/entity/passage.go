package entity

// Passage is a normalized unit of retrieved text plus optional metadata and
// relevance score, used as generation context.
type Passage struct {
	ID       string
	Text     string
	Metadata map[string]any
	Score    *float64

	// Raw keeps the original retrieval item so the context builder can probe
	// shapes the normalizer does not recognize.
	Raw any
}

// Chunk is a row of the knowledge-base backing table, read only by the
// diagnostics tooling.
type Chunk struct {
	ID       string
	Chunks   string
	Metadata string
}

// IngestionJobStatus values reported by the knowledge-base service.
type IngestionJobStatus string

const (
	IngestionStarting   IngestionJobStatus = "STARTING"
	IngestionInProgress IngestionJobStatus = "IN_PROGRESS"
	IngestionComplete   IngestionJobStatus = "COMPLETE"
	IngestionFailed     IngestionJobStatus = "FAILED"
)

// Terminal reports whether the job has finished, successfully or not.
func (s IngestionJobStatus) Terminal() bool {
	return s == IngestionComplete || s == IngestionFailed
}

type IngestionJob struct {
	ID     string             `json:"ingestionJobId"`
	Status IngestionJobStatus `json:"status"`
}
