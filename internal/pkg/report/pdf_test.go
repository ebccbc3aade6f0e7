package report

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/strogmv/blogadmin/internal/domain"
)

func TestPostsReport(t *testing.T) {
	posts := []domain.Post{
		{
			ID: 1, Title: "Hello", Created: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
			Categories: []domain.Category{{ID: 1, Name: "go"}, {ID: 2, Name: "ops"}},
			Tags:       []domain.Tag{{ID: 10, Name: "beginner"}},
		},
		{ID: 2, Title: "Empty"},
	}

	pdf, err := NewGenerator().PostsReport(posts, "hel", time.Now())
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(pdf, []byte("%PDF")))
}

func TestPostsReportEmpty(t *testing.T) {
	pdf, err := NewGenerator().PostsReport(nil, "", time.Now())
	require.NoError(t, err)
	assert.NotEmpty(t, pdf)
}

func TestNames(t *testing.T) {
	assert.Equal(t, "go, ops", categoryNames([]domain.Category{{Name: "go"}, {Name: "ops"}}))
	assert.Equal(t, "", tagNames(nil))
}
