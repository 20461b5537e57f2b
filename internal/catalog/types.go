package catalog

import "encoding/json"

// Fallback strings substituted when the API omits a field.
const (
	UnknownAuthor = "Unknown author"
	NoDate        = "No date"
	NoDescription = "No description"
	NoData        = "No data"
)

// BookSummary is one row of a list or search page.
type BookSummary struct {
	ID         string // work key without the "/works/" prefix
	Title      string
	AuthorName string
	CoverURL   string // empty when the work has no cover
	Year       string
}

// BookDetail is the full record shown on the detail screen.
type BookDetail struct {
	Title       string
	AuthorName  string // empty: the works endpoint does not name authors
	Description string
	CoverURL    string
	Pages       string
	Year        string
}

// OpenLibrary response shapes (internal)

type subjectResponse struct {
	Name  string     `json:"name"`
	Works []workItem `json:"works"`
}

type workItem struct {
	Title            string      `json:"title"`
	Key              string      `json:"key"`
	CoverID          *int64      `json:"cover_id"`
	FirstPublishYear *int        `json:"first_publish_year"`
	Authors          []authorRef `json:"authors"`
}

type authorRef struct {
	Name string `json:"name"`
}

type searchResponse struct {
	Docs []searchDoc `json:"docs"`
}

type searchDoc struct {
	Key              string   `json:"key"`
	Title            string   `json:"title"`
	AuthorName       []string `json:"author_name"`
	CoverI           *int64   `json:"cover_i"`
	FirstPublishYear *int     `json:"first_publish_year"`
}

type workResponse struct {
	Title            string          `json:"title"`
	Description      json.RawMessage `json:"description"` // string or {type, value}
	Covers           []int64         `json:"covers"`
	NumberOfPages    *int            `json:"number_of_pages"`
	FirstPublishDate *string         `json:"first_publish_date"`
}
