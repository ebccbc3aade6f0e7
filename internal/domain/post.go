package domain

import "time"

// Post is a blog article. Categories and Tags are owned membership sets;
// the Category and Tag rows themselves are shared reference data.
type Post struct {
	ID         uint       `gorm:"primaryKey" json:"id"`
	Title      string     `gorm:"size:255;not null" json:"title"`
	Content    string     `gorm:"type:text;not null" json:"content"`
	Created    time.Time  `gorm:"column:created;not null;<-:create" json:"created"`
	Version    uint       `gorm:"not null;default:1" json:"version"`
	Categories []Category `gorm:"many2many:post_categories;" json:"categories"`
	Tags       []Tag      `gorm:"many2many:post_tags;" json:"tags"`
}

type Category struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	Name        string `gorm:"size:120;uniqueIndex;not null" json:"name"`
	Description string `gorm:"size:512" json:"description,omitempty"`
}

type Tag struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	Name        string `gorm:"size:120;uniqueIndex;not null" json:"name"`
	Description string `gorm:"size:512" json:"description,omitempty"`
}

// CategoryIDs returns the identifiers of the post's categories.
func (p *Post) CategoryIDs() []uint {
	out := make([]uint, 0, len(p.Categories))
	for _, c := range p.Categories {
		out = append(out, c.ID)
	}
	return out
}

// TagIDs returns the identifiers of the post's tags.
func (p *Post) TagIDs() []uint {
	out := make([]uint, 0, len(p.Tags))
	for _, t := range p.Tags {
		out = append(out, t.ID)
	}
	return out
}

// Clone returns a copy whose association slices are not shared with p.
// The copied slices are never nil.
func (p *Post) Clone() *Post {
	cp := *p
	cp.Categories = make([]Category, len(p.Categories))
	copy(cp.Categories, p.Categories)
	cp.Tags = make([]Tag, len(p.Tags))
	copy(cp.Tags, p.Tags)
	return &cp
}
