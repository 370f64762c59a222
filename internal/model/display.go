package model

import "time"

// Slide is a homepage carousel entry.
type Slide struct {
    ID          uint64    `json:"id"`
    Title       string    `json:"title"`
    Description string    `json:"description"`
    ImageKey    string    `json:"imageKey"`
    ImageURL    string    `json:"imageUrl,omitempty"`
    ButtonText  string    `json:"buttonText"`
    ButtonURL   string    `json:"buttonUrl"`
    Order       int       `json:"order"`
    IsActive    bool      `json:"isActive"`
    CreatedAt   time.Time `json:"createdAt"`
}

// SortKey implements ordering.Item.
func (s *Slide) SortKey() (int, uint64) { return s.Order, s.ID }

// Visible implements ordering.Item.
func (s *Slide) Visible() bool { return s.IsActive }

// QuickAccessItem is a shortcut tile shown under the carousel.
type QuickAccessItem struct {
    ID        uint64    `json:"id"`
    Title     string    `json:"title"`
    IconName  string    `json:"iconName"`
    URL       string    `json:"url"`
    Order     int       `json:"order"`
    IsActive  bool      `json:"isActive"`
    CreatedAt time.Time `json:"createdAt"`
}

// SortKey implements ordering.Item.
func (q *QuickAccessItem) SortKey() (int, uint64) { return q.Order, q.ID }

// Visible implements ordering.Item.
func (q *QuickAccessItem) Visible() bool { return q.IsActive }
