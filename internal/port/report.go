package port

import "context"

// Reports renders post listings as documents.
type Reports interface {
	// PostsPDF renders the posts matching searchKey.
	PostsPDF(ctx context.Context, searchKey string) ([]byte, error)
	// ArchivePostsPDF renders the report and stores it, returning the
	// storage key and a time-limited download URL.
	ArchivePostsPDF(ctx context.Context, searchKey string) (ArchivedReport, error)
}

type ArchivedReport struct {
	Key string `json:"key"`
	URL string `json:"url"`
}
