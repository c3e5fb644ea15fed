package models

// IngestItem is one statutory text chunk submitted for indexing.
type IngestItem struct {
	ActID        string `json:"act_id" binding:"required"`
	ActTitle     string `json:"act_title" binding:"required"`
	Article      string `json:"article,omitempty"`
	Part         string `json:"part,omitempty"`
	Point        string `json:"point,omitempty"`
	RevisionDate string `json:"revision_date,omitempty"` // YYYY-MM-DD when known
	Jurisdiction string `json:"jurisdiction"`
	Text         string `json:"text" binding:"required"`
	LocalRef     string `json:"local_ref"`
}

// IngestPayload is the direct ingestion request body.
type IngestPayload struct {
	Items []IngestItem `json:"items"`
}
