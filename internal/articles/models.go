package articles

import (
	"time"

	"github.com/lib/pq"
)

const TableName = "articles"

type Article struct {
	ID            int64          `gorm:"primaryKey;autoIncrement" json:"id"`
	Title         string         `gorm:"not null" json:"title"`
	URL           string         `gorm:"column:url;not null;index" json:"url"`
	Image         *string        `json:"image"`
	Publisher     string         `json:"publisher"`
	Keywords      pq.StringArray `gorm:"type:text[]" json:"keywords"`
	PublishedTime time.Time      `gorm:"index" json:"published_time"`
	PublishedDate time.Time      `gorm:"type:date;index" json:"published_date"`
}

func (Article) TableName() string {
	return TableName
}

// Summary is the public shape served by the articles endpoint.
type Summary struct {
	Title         string    `json:"title"`
	URL           string    `json:"url"`
	Image         *string   `json:"image"`
	PublishedTime time.Time `json:"published_time"`
}

func Key(a *Article) string {
	return a.URL
}
