package opensearch

// Config holds client connection and slug index settings, loaded from
// OPENSEARCH_* environment variables.
type Config struct {
	Addresses    []string `env:"OPENSEARCH_ADDRESSES,required"`
	Username     string   `env:"OPENSEARCH_USERNAME,notEmpty"`
	Password     string   `env:"OPENSEARCH_PASSWORD,notEmpty"`
	MaxRetries   int      `env:"OPENSEARCH_MAX_RETRIES" envDefault:"3"`
	DisableRetry bool     `env:"OPENSEARCH_DISABLE_RETRY" envDefault:"false"`

	IndexPrefix string `env:"OPENSEARCH_INDEX_PREFIX"`                  // IndexPrefix is prepended to collection names.
	PageSize    int    `env:"OPENSEARCH_PAGE_SIZE" envDefault:"1000"`   // PageSize is the number of hits requested per search page.
	Refresh     string `env:"OPENSEARCH_REFRESH" envDefault:"wait_for"` // Refresh is passed to index requests so new slugs are searchable.
}
