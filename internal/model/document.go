package model

import "time"

// Document is an article or downloadable document.  IsPublished and
// IsFeatured are independent flags: a featured draft is valid but must not
// be listed publicly until published.  Version increments on every flag
// write and backs optimistic updates.
type Document struct {
    ID          uint64     `json:"id"`
    Title       string     `json:"title"`
    Content     string     `json:"content"`
    Category    string     `json:"category"`
    MagazineID  uint64     `json:"magazineId"` // 0 = unassigned
    Order       int        `json:"order"`
    Author      string     `json:"author"`
    PublishDate *time.Time `json:"publishDate,omitempty"`
    IsPublished bool       `json:"isPublished"`
    IsFeatured  bool       `json:"isFeatured"`
    Version     int64      `json:"version"`
    CreatedAt   time.Time  `json:"createdAt"`
    UpdatedAt   time.Time  `json:"updatedAt"`
}

// Magazine groups documents into an issue.
type Magazine struct {
    ID        uint64    `json:"id"`
    Title     string    `json:"title"`
    Issue     string    `json:"issue"`
    CreatedAt time.Time `json:"createdAt"`
}

// DocumentFilter narrows a document listing. Zero values mean "any".
type DocumentFilter struct {
    PublishedOnly bool
    FeaturedOnly  bool
    Category      string
    MagazineID    uint64
}

// SortKey implements ordering.Item.
func (d *Document) SortKey() (int, uint64) { return d.Order, d.ID }

// Visible implements ordering.Item: only published documents reach public
// listings, whatever their featured flag says.
func (d *Document) Visible() bool { return d.IsPublished }
