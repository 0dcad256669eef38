package limeblog

import (
	"errors"
	"mime/multipart"
	"net/http"
	"sort"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/cariocalimao/limeblog/markdown"
)

func handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// handleListPosts serves the post listing, optionally filtered by category
// (case-insensitive), newest first.
func (a *App) handleListPosts(c echo.Context) error {
	posts, err := a.repo.All()
	if err != nil {
		return err
	}

	if category := c.QueryParam("category"); category != "" {
		filtered := make([]Post, 0, len(posts))
		for _, p := range posts {
			if strings.EqualFold(p.Category, category) {
				filtered = append(filtered, p)
			}
		}
		posts = filtered
	}

	SortNewestFirst(posts)
	if posts == nil {
		posts = []Post{}
	}
	return c.JSON(http.StatusOK, posts)
}

// SortNewestFirst orders posts descending by date, falling back to createdAt.
// The comparison is a plain string compare, which is only calendar-correct
// for consistently zero-padded ISO dates.
func SortNewestFirst(posts []Post) {
	key := func(p Post) string {
		if p.Date != "" {
			return p.Date
		}
		return p.CreatedAt
	}
	sort.SliceStable(posts, func(i, j int) bool {
		return key(posts[i]) > key(posts[j])
	})
}

func (a *App) handleGetPost(c echo.Context) error {
	post, err := a.repo.Get(c.Param("id"))
	if errors.Is(err, ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "Post not found")
	}
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, post)
}

// handleGetPostHTML serves the post body rendered to HTML, for frontends that
// want server-side markup instead of running the renderer themselves.
func (a *App) handleGetPostHTML(c echo.Context) error {
	post, err := a.repo.Get(c.Param("id"))
	if errors.Is(err, ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "Post not found")
	}
	if err != nil {
		return err
	}
	c.Response().Header().Set(echo.HeaderContentType, echo.MIMETextHTMLCharsetUTF8)
	c.Response().WriteHeader(http.StatusOK)
	return markdown.Component(post.Content).Render(c.Request().Context(), c.Response().Writer)
}

// handleCreatePost runs the ingestion pipeline on a multipart submission.
// The admin key gate has already run as route middleware.
func (a *App) handleCreatePost(c echo.Context) error {
	input := PostInput{
		Category: strings.TrimSpace(c.FormValue("category")),
		Title:    strings.TrimSpace(c.FormValue("title")),
		Date:     strings.TrimSpace(c.FormValue("date")),
		Excerpt:  c.FormValue("excerpt"),
		Content:  c.FormValue("content"),
		ImageURL: strings.TrimSpace(c.FormValue("imageUrl")),
	}

	var upload *multipart.FileHeader
	if f, err := c.FormFile("image"); err == nil {
		upload = f
	} else if !errors.Is(err, http.ErrMissingFile) {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid multipart form")
	}

	post, err := a.ingestor.Create(input, upload)
	if err != nil {
		var ve *ValidationError
		switch {
		case errors.As(err, &ve):
			return echo.NewHTTPError(http.StatusBadRequest, ve.Error())
		case errors.Is(err, ErrImageType), errors.Is(err, ErrImageTooLarge):
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		default:
			return err
		}
	}
	return c.JSON(http.StatusCreated, post)
}

// httpErrorHandler renders every error as a JSON body so API clients never
// see an HTML error page. Unexpected failures are logged with detail and
// surfaced as a generic message.
func (a *App) httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	code := http.StatusInternalServerError
	message := "Internal server error"
	var he *echo.HTTPError
	if errors.As(err, &he) {
		code = he.Code
		if msg, ok := he.Message.(string); ok {
			message = msg
		}
	}
	if code >= 500 {
		c.Logger().Errorf("server error: %v", err)
		message = "Internal server error"
	}
	if c.Request().Method == http.MethodHead {
		_ = c.NoContent(code)
		return
	}
	_ = c.JSON(code, map[string]string{"error": message})
}
