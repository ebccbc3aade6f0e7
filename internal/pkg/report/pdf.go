package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/props"

	"github.com/strogmv/blogadmin/internal/domain"
)

// Generator renders PDF reports.
type Generator struct{}

func NewGenerator() *Generator {
	return &Generator{}
}

// PostsReport lists posts with their categories and tags.
func (g *Generator) PostsReport(posts []domain.Post, searchKey string, generatedAt time.Time) ([]byte, error) {
	m := maroto.New()

	subtitle := fmt.Sprintf("%d posts, generated %s", len(posts), generatedAt.UTC().Format(time.RFC3339))
	if searchKey != "" {
		subtitle = fmt.Sprintf("Title contains %q. %s", searchKey, subtitle)
	}
	m.AddRows(
		row.New(20).Add(
			col.New(12).Add(
				text.New("POSTS", props.Text{
					Align: align.Center,
					Size:  20,
					Style: fontstyle.Bold,
				}),
			),
		),
		row.New(10).Add(
			col.New(12).Add(text.New(subtitle, props.Text{Align: align.Center, Size: 10})),
		),
		row.New(12).Add(
			col.New(1).Add(text.New("ID", props.Text{Style: fontstyle.Bold, Top: 4})),
			col.New(4).Add(text.New("Title", props.Text{Style: fontstyle.Bold, Top: 4})),
			col.New(2).Add(text.New("Created", props.Text{Style: fontstyle.Bold, Top: 4})),
			col.New(3).Add(text.New("Categories", props.Text{Style: fontstyle.Bold, Top: 4})),
			col.New(2).Add(text.New("Tags", props.Text{Style: fontstyle.Bold, Top: 4})),
		),
	)

	for _, p := range posts {
		m.AddRows(
			row.New(10).Add(
				col.New(1).Add(text.New(fmt.Sprint(p.ID))),
				col.New(4).Add(text.New(p.Title)),
				col.New(2).Add(text.New(p.Created.UTC().Format("2006-01-02"))),
				col.New(3).Add(text.New(categoryNames(p.Categories))),
				col.New(2).Add(text.New(tagNames(p.Tags))),
			),
		)
	}

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("render posts report: %w", err)
	}
	return doc.GetBytes(), nil
}

func categoryNames(cs []domain.Category) string {
	names := make([]string, 0, len(cs))
	for _, c := range cs {
		names = append(names, c.Name)
	}
	return strings.Join(names, ", ")
}

func tagNames(ts []domain.Tag) string {
	names := make([]string, 0, len(ts))
	for _, t := range ts {
		names = append(names, t.Name)
	}
	return strings.Join(names, ", ")
}
