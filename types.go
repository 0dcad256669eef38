package limeblog

// Post is the sole persisted entity: one blog entry with a category, a
// restricted-markdown body, and an optional image.
type Post struct {
	ID           string `json:"id"`
	Category     string `json:"category"`
	Title        string `json:"title"`
	Date         string `json:"date"`
	Excerpt      string `json:"excerpt"`
	Content      string `json:"content"`
	ImageURL     string `json:"imageUrl,omitempty"`
	ThumbnailURL string `json:"thumbnailUrl,omitempty"`
	CreatedAt    string `json:"createdAt"`
}

// Categories is the recognized category set. Posts outside it are rejected
// at ingestion.
var Categories = []string{"chronicles", "drafts", "sketches", "photographs"}

// ValidCategory reports whether c is one of the recognized categories.
func ValidCategory(c string) bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}
