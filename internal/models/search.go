package models

// SearchResultLimit is the maximum number of results per entity type
const SearchResultLimit = 5

// SearchHit is one search result
type SearchHit struct {
	ID      int    `json:"id"`
	Title   string `json:"title"`
	Subject string `json:"subject,omitempty"`
}

// SearchResponse groups search results by entity type
type SearchResponse struct {
	Query     string      `json:"query"`
	Lessons   []SearchHit `json:"lessons"`
	Summaries []SearchHit `json:"summaries"`
	Quizzes   []SearchHit `json:"quizzes"`
	Teachers  []SearchHit `json:"teachers"`
}
