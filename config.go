package limeblog

// Config holds all configuration for a limeblog server. It is constructed
// once at startup and passed into New; nothing reads ambient globals.
type Config struct {
	SiteName        string // Site name used in the feed (default "Blog")
	SiteURL         string // Canonical frontend URL (default "http://localhost:8000")
	SiteDescription string // Site description for the feed

	Addr string // Listen address (default ":4000")

	DataFile  string // JSON post store path (default "data/posts.json")
	UploadDir string // Upload area root (default "uploads")

	StoreDriver string // "file" (default) or "sqlite"
	SQLitePath  string // SQLite path when StoreDriver is "sqlite" (default "data/blog.db")

	// AdminKey is the pre-shared credential required to create posts. When
	// empty, post creation is disabled entirely rather than left open.
	AdminKey string

	AllowedOrigins []string // CORS origins allowed to call the API
	MaxUploadBytes int64    // Upload size cap (default 5 MiB)
}

func (c *Config) setDefaults() {
	if c.SiteName == "" {
		c.SiteName = "Blog"
	}
	if c.SiteURL == "" {
		c.SiteURL = "http://localhost:8000"
	}
	if c.Addr == "" {
		c.Addr = ":4000"
	}
	if c.DataFile == "" {
		c.DataFile = "data/posts.json"
	}
	if c.UploadDir == "" {
		c.UploadDir = "uploads"
	}
	if c.StoreDriver == "" {
		c.StoreDriver = "file"
	}
	if c.SQLitePath == "" {
		c.SQLitePath = "data/blog.db"
	}
	if c.MaxUploadBytes == 0 {
		c.MaxUploadBytes = 5 << 20
	}
}

// Option configures additional App behavior.
type Option func(*App)

// WithRepository overrides the repository chosen by Config.StoreDriver.
// Useful for tests and for running the same handlers against another backend.
func WithRepository(repo PostRepository) Option {
	return func(a *App) {
		a.repo = repo
	}
}

// WithCustomRoutes registers additional routes on the Echo instance before
// the server starts.
func WithCustomRoutes(fn func(*App)) Option {
	return func(a *App) {
		a.customRoutes = append(a.customRoutes, fn)
	}
}
