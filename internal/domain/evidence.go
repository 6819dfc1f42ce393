package domain

import "time"

// Evidence substantiates one or more data points. At least one of FileRef or
// SourceURL is present. DataPointIDs mirrors DataPoint.EvidenceIDs; the store
// keeps both directions of the edge in sync.
type Evidence struct {
	ID           string
	SectionID    string
	Title        string
	Description  string
	FileRef      string
	SourceURL    string
	UploadedBy   string
	UploadedAt   time.Time
	DataPointIDs []string
}
