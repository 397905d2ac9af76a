package domain

import (
	"strings"
	"time"
)

// Category groups articles by topic. Values outside the known set normalize to CategoryOther.
type Category string

const (
	CategoryPolitics      Category = "POLITICS"
	CategoryEconomy       Category = "ECONOMY"
	CategoryTechnology    Category = "TECHNOLOGY"
	CategoryScience       Category = "SCIENCE"
	CategoryHealth        Category = "HEALTH"
	CategoryEntertainment Category = "ENTERTAINMENT"
	CategorySports        Category = "SPORTS"
	CategoryWorld         Category = "WORLD"
	CategoryOther         Category = "OTHER"
)

var knownCategories = map[Category]struct{}{
	CategoryPolitics:      {},
	CategoryEconomy:       {},
	CategoryTechnology:    {},
	CategoryScience:       {},
	CategoryHealth:        {},
	CategoryEntertainment: {},
	CategorySports:        {},
	CategoryWorld:         {},
	CategoryOther:         {},
}

// ParseCategory maps a raw wire value onto the category enum.
func ParseCategory(raw string) Category {
	c := Category(strings.ToUpper(strings.TrimSpace(raw)))
	if _, ok := knownCategories[c]; ok {
		return c
	}
	return CategoryOther
}

// Article is a content item presented for classification. It is never mutated after fetch.
type Article struct {
	ID                string    `json:"id"`
	Headline          string    `json:"headline"`
	Body              string    `json:"body"`
	Category          Category  `json:"category"`
	IsFabricated      bool      `json:"isFabricated"`
	CreatedAt         time.Time `json:"createdAt"`
	FabricationReason string    `json:"fabricationReason,omitempty"`
}

// FeedPage is one page of the content feed in server order.
type FeedPage struct {
	Articles   []Article
	NextCursor string
	Total      int
	Fallback   bool
}

// HasMore reports whether a continuation cursor is available.
func (p FeedPage) HasMore() bool {
	return p.NextCursor != ""
}

// FetchParams describes a single page request.
type FetchParams struct {
	Language Language
	Cursor   string
	Limit    int
	Category Category
}

// AnsweredArticle joins an article with its answer; Answer is nil while unanswered.
type AnsweredArticle struct {
	Article Article
	Answer  *Answer
}

// Answered reports whether a verdict exists for the article.
func (a AnsweredArticle) Answered() bool {
	return a.Answer != nil
}
