package services

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/artontop/artontop/models"
	"github.com/artontop/artontop/utils"
)

const (
	// GridPageSize is the number of publications per grid page.
	GridPageSize = 30
	// TopTagCount is how many popular hashtags the feed reports.
	TopTagCount = 5
	// MaxGridPage caps the requested page so the offset cannot overflow.
	MaxGridPage = 100000
)

// FeedQuery describes a request to the home page.
// Search is nil when the search parameter was absent, which selects feed mode.
type FeedQuery struct {
	PubType  string
	Search   *string
	Page     int
	ViewerID uint
}

// FeedResult is either a full feed with popular tags or one page of the search grid.
type FeedResult struct {
	Mode        string               `json:"mode"`
	ActiveType  string               `json:"active_type"`
	SearchQuery *string              `json:"search_query"`
	Items       []models.Publication `json:"items"`
	TopTags     []utils.TagCount     `json:"top_tags,omitempty"`
	Page        int                  `json:"page,omitempty"`
	NextPage    *int                 `json:"next_page"`
	Types       []string             `json:"types"`
}

type FeedService struct {
	db *gorm.DB
}

func NewFeedService(db *gorm.DB) *FeedService {
	return &FeedService{db: db}
}

// Home dispatches to Feed or Grid depending on whether a search was requested.
func (s *FeedService) Home(ctx context.Context, q FeedQuery) (*FeedResult, error) {
	pubType := normalizeType(q.PubType)
	res := &FeedResult{ActiveType: pubType, SearchQuery: q.Search, Types: models.ContentTypes}

	if q.Search == nil {
		items, tags, err := s.Feed(ctx, pubType, q.ViewerID)
		if err != nil {
			return nil, err
		}
		res.Mode = "feed"
		res.Items = items
		res.TopTags = tags
		return res, nil
	}

	page := clampPage(q.Page)
	items, hasNext, err := s.Grid(ctx, pubType, *q.Search, page, q.ViewerID)
	if err != nil {
		return nil, err
	}
	res.Mode = "grid"
	res.Items = items
	res.Page = page
	if hasNext {
		next := page + 1
		res.NextPage = &next
	}
	return res, nil
}

// Feed returns every publication of the given type, newest first, and the most used tags among them.
func (s *FeedService) Feed(ctx context.Context, pubType string, viewerID uint) ([]models.Publication, []utils.TagCount, error) {
	items := []models.Publication{}
	q := filterByType(withPublicationStats(s.db.WithContext(ctx), viewerID), pubType)
	if err := q.Order("publications.id DESC").Find(&items).Error; err != nil {
		return nil, nil, fmt.Errorf("load feed: %w", err)
	}

	hashtags := make([]string, 0, len(items))
	for _, p := range items {
		hashtags = append(hashtags, p.Hashtags)
	}
	return items, utils.TopTags(hashtags, TopTagCount), nil
}

// Grid returns one page of publications whose hashtags contain text, and whether another page follows.
// Blank text or "all" disables the text filter.
func (s *FeedService) Grid(ctx context.Context, pubType, text string, page int, viewerID uint) ([]models.Publication, bool, error) {
	page = clampPage(page)
	q := filterByType(withPublicationStats(s.db.WithContext(ctx), viewerID), pubType)
	if strings.TrimSpace(text) != "" && text != models.AllTypes {
		q = hashtagsContain(q, text)
	}

	items := []models.Publication{}
	err := q.Order("publications.id DESC").
		Offset((page - 1) * GridPageSize).
		Limit(GridPageSize + 1).
		Find(&items).Error
	if err != nil {
		return nil, false, fmt.Errorf("load grid page %d: %w", page, err)
	}

	hasNext := len(items) > GridPageSize
	if hasNext {
		items = items[:GridPageSize]
	}
	return items, hasNext, nil
}

func clampPage(page int) int {
	switch {
	case page < 1:
		return 1
	case page > MaxGridPage:
		return MaxGridPage
	}
	return page
}

func normalizeType(t string) string {
	t = strings.TrimSpace(t)
	if t == "" {
		return models.AllTypes
	}
	return t
}

func filterByType(q *gorm.DB, pubType string) *gorm.DB {
	if pubType == "" || pubType == models.AllTypes {
		return q
	}
	return q.Where("publications.pub_type = ?", pubType)
}

// hashtagsContain is a case-sensitive substring match; LIKE folds case on sqlite and mysql.
func hashtagsContain(q *gorm.DB, text string) *gorm.DB {
	switch q.Dialector.Name() {
	case "mysql":
		return q.Where("LOCATE(BINARY ?, publications.hashtags) > 0", text)
	case "postgres":
		return q.Where("strpos(publications.hashtags, ?) > 0", text)
	default:
		return q.Where("instr(publications.hashtags, ?) > 0", text)
	}
}
