package domain

// RetrievedItem is one candidate document returned by the retriever.
// Distance is the vector similarity score; smaller means closer.
type RetrievedItem struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Content     string  `json:"content"`
	Author      string  `json:"author"`
	Category    string  `json:"category"`
	Published   string  `json:"published"`
	Link        string  `json:"link"`
	Distance    float64 `json:"distance"`
}

// Citation ties a bracketed index in the generated answer back to the
// retrieved item it refers to. Index is 1-based and matches the numbering
// used in the context block exactly.
type Citation struct {
	Index     int     `json:"index"`
	Title     string  `json:"title"`
	Link      string  `json:"link"`
	Author    string  `json:"author"`
	Category  string  `json:"category"`
	Published string  `json:"published"`
	Distance  float64 `json:"distance"`
}
