package service

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/strogmv/blogadmin/internal/pkg/errors"
	"github.com/strogmv/blogadmin/internal/pkg/logger"
	"github.com/strogmv/blogadmin/internal/pkg/report"
	"github.com/strogmv/blogadmin/internal/port"
)

const (
	reportContentType = "application/pdf"
	reportLinkTTL     = 15 * time.Minute
)

// ReportsImpl implements port.Reports on top of the posts listing.
type ReportsImpl struct {
	posts     port.Posts
	generator *report.Generator
	storage   port.FileStorage
	now       func() time.Time
}

// NewReportsImpl accepts a nil storage; archiving then reports the
// storage as unavailable.
func NewReportsImpl(posts port.Posts, storage port.FileStorage) *ReportsImpl {
	return &ReportsImpl{
		posts:     posts,
		generator: report.NewGenerator(),
		storage:   storage,
		now:       time.Now,
	}
}

var _ port.Reports = (*ReportsImpl)(nil)

func (s *ReportsImpl) PostsPDF(ctx context.Context, searchKey string) ([]byte, error) {
	posts, err := s.posts.ListPosts(ctx, port.ListPostsRequest{SearchKey: searchKey})
	if err != nil {
		return nil, err
	}
	return s.generator.PostsReport(posts, searchKey, s.now())
}

func (s *ReportsImpl) ArchivePostsPDF(ctx context.Context, searchKey string) (port.ArchivedReport, error) {
	if s.storage == nil {
		return port.ArchivedReport{}, errors.Unavailable("Storage unavailable")
	}
	pdf, err := s.PostsPDF(ctx, searchKey)
	if err != nil {
		return port.ArchivedReport{}, err
	}

	key := fmt.Sprintf("reports/posts-%s.pdf", s.now().UTC().Format("20060102T150405Z"))
	key, err = s.storage.Upload(ctx, key, bytes.NewReader(pdf), reportContentType)
	if err != nil {
		return port.ArchivedReport{}, fmt.Errorf("archive report: %w", err)
	}
	url, err := s.storage.PresignGet(ctx, key, reportLinkTTL)
	if err != nil {
		return port.ArchivedReport{}, fmt.Errorf("presign report: %w", err)
	}
	logger.From(ctx).Info("posts report archived", slog.String("key", key), slog.Int("bytes", len(pdf)))
	return port.ArchivedReport{Key: key, URL: url}, nil
}
