package limeblog

import (
	"crypto/rand"
	"fmt"
	"mime/multipart"
	"strconv"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/cariocalimao/limeblog/markdown"
)

const excerptLimit = 150

// PostInput is a new-post submission before normalization.
type PostInput struct {
	Category string
	Title    string
	Date     string
	Excerpt  string
	Content  string
	ImageURL string // optional external image URL; ignored when a file is uploaded
}

// ValidationError marks a rejected submission and names the offending field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}

// Validate checks the required fields and the category set.
func (in PostInput) Validate() error {
	categories := make([]interface{}, len(Categories))
	for i, c := range Categories {
		categories[i] = c
	}
	err := validation.ValidateStruct(&in,
		validation.Field(&in.Category, validation.Required, validation.In(categories...).Error("must be one of: "+strings.Join(Categories, ", "))),
		validation.Field(&in.Title, validation.Required),
		validation.Field(&in.Date, validation.Required, validation.Date("2006-01-02").Error("must be an ISO date (YYYY-MM-DD)")),
		validation.Field(&in.Content, validation.Required),
	)
	if err == nil {
		return nil
	}
	if errs, ok := err.(validation.Errors); ok {
		// Surface one field at a time; the admin form fixes them one by one.
		for _, field := range []string{"Category", "Title", "Date", "Content"} {
			if fieldErr, ok := errs[field]; ok {
				return &ValidationError{Field: strings.ToLower(field), Message: fieldErr.Error()}
			}
		}
	}
	return err
}

// Ingestor runs the post creation pipeline: validate the submission, resolve
// its image, derive an excerpt, assign an id, and persist the record. On any
// failure before the final step nothing is persisted.
type Ingestor struct {
	repo   PostRepository
	images *ImageStore
}

// NewIngestor wires the pipeline to its repository and upload area.
func NewIngestor(repo PostRepository, images *ImageStore) *Ingestor {
	return &Ingestor{repo: repo, images: images}
}

// Create executes the pipeline for one submission. upload may be nil.
func (ing *Ingestor) Create(in PostInput, upload *multipart.FileHeader) (Post, error) {
	if err := in.Validate(); err != nil {
		return Post{}, err
	}

	var imageURL, thumbURL string
	switch {
	case upload != nil:
		var err error
		imageURL, thumbURL, err = ing.images.Save(in.Category, upload)
		if err != nil {
			return Post{}, err
		}
	case in.ImageURL != "":
		safe := markdown.SanitizeURL(in.ImageURL)
		if safe == "" || !isHTTPURL(safe) {
			return Post{}, &ValidationError{Field: "imageUrl", Message: "must be an http or https URL"}
		}
		imageURL = safe
	}

	excerpt := strings.TrimSpace(in.Excerpt)
	if excerpt == "" {
		excerpt = markdown.Excerpt(in.Content, excerptLimit)
	}

	post := Post{
		ID:           NewID(),
		Category:     in.Category,
		Title:        in.Title,
		Date:         in.Date,
		Excerpt:      excerpt,
		Content:      in.Content,
		ImageURL:     imageURL,
		ThumbnailURL: thumbURL,
		CreatedAt:    time.Now().UTC().Format(time.RFC3339),
	}
	if err := ing.repo.Add(post); err != nil {
		return Post{}, fmt.Errorf("persist post: %w", err)
	}
	return post, nil
}

func isHTTPURL(u string) bool {
	lower := strings.ToLower(u)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}

const base36 = "0123456789abcdefghijklmnopqrstuvwxyz"

// NewID returns a collision-resistant opaque id: the creation instant in
// base 36 plus a random suffix.
func NewID() string {
	return strconv.FormatInt(time.Now().UnixMilli(), 36) + randomSuffix(6)
}

func randomSuffix(n int) string {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		panic(err) // crypto/rand never fails on supported platforms
	}
	for i := range b {
		b[i] = base36[int(b[i])%len(base36)]
	}
	return string(b)
}
