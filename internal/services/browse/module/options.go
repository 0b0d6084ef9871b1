package module

import (
	"strings"
	"time"

	"showroom/internal/platform/config"
	"showroom/internal/services/browse/repo"
	"showroom/internal/services/browse/service"
)

// Counts backends
const (
	CountsPG = "pg"
	CountsCH = "ch"
)

// Options for the browse module
type Options struct {
	Service    service.Options
	Indexes    repo.Indexes
	Counts     string
	SessionTTL time.Duration
}

// FromConfig fills options from environment
// CORE_BROWSE_PAGE_SIZE (default 60) is the remote page size
// CORE_BROWSE_VIEW_STEP (default 24) is how much "show more" grows the view
// CORE_BROWSE_DEFAULT_VIEW_SIZE (default 24) and CORE_BROWSE_MAX_VIEW_SIZE (default 480) bound the view
// CORE_BROWSE_FALLBACK_LIMIT (default 500) caps the unsorted query used when no index covers a sort
// CORE_BROWSE_DEBOUNCE (default 300ms) delays free text before it applies
// CORE_BROWSE_REMOTE_PRICE (default false) pushes price bounds into the remote query
// CORE_BROWSE_INDEXES (default "categoryId:createdAt,categoryId+brandId:createdAt") lists composite indexes
// CORE_BROWSE_COUNTS (default "pg") picks the count backend: "pg" or "ch"
// CORE_BROWSE_SESSION_TTL (default 15m) evicts idle sessions
func FromConfig(cfg config.Conf) Options {
	b := cfg.Prefix("CORE_BROWSE_")
	d := service.DefaultOptions()

	ix, err := repo.ParseIndexes(b.MayString("INDEXES", "categoryId:createdAt,categoryId+brandId:createdAt"))
	if err != nil {
		panic("CORE_BROWSE_INDEXES: " + err.Error())
	}

	return Options{
		Service: service.Options{
			PageSize:        b.MayInt("PAGE_SIZE", d.PageSize),
			ViewStep:        b.MayInt("VIEW_STEP", d.ViewStep),
			DefaultViewSize: b.MayInt("DEFAULT_VIEW_SIZE", d.DefaultViewSize),
			MaxViewSize:     b.MayInt("MAX_VIEW_SIZE", d.MaxViewSize),
			FallbackLimit:   b.MayInt("FALLBACK_LIMIT", d.FallbackLimit),
			Debounce:        b.MayDuration("DEBOUNCE", d.Debounce),
			RemotePrice:     b.MayBool("REMOTE_PRICE", false),
			Schema:          d.Schema,
		},
		Indexes:    ix,
		Counts:     strings.ToLower(b.MayEnum("COUNTS", CountsPG, CountsPG, CountsCH)),
		SessionTTL: b.MayDuration("SESSION_TTL", 15*time.Minute),
	}
}
