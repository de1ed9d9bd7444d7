package pagination

const (
	// DefaultLimit is the page size when a limit is not provided.
	DefaultLimit = 10
	// MaxLimit caps how many rows any page query can request.
	MaxLimit = 100
)

// Params holds page pagination inputs from controllers or services.
type Params struct {
	Page  int
	Limit int
}

// Normalize clamps page to >= 1 and limit into [1, MaxLimit].
func (p Params) Normalize() Params {
	return Params{Page: NormalizePage(p.Page), Limit: NormalizeLimit(p.Limit)}
}

// Offset is the number of rows to skip for the normalized page.
func (p Params) Offset() int {
	n := p.Normalize()
	return (n.Page - 1) * n.Limit
}

// NormalizeLimit enforces the configured default and maximum limits.
func NormalizeLimit(limit int) int {
	if limit <= 0 {
		return DefaultLimit
	}
	if limit > MaxLimit {
		return MaxLimit
	}
	return limit
}

func NormalizePage(page int) int {
	if page <= 0 {
		return 1
	}
	return page
}

// Meta is the page envelope returned alongside list results.
type Meta struct {
	CurrentPage int   `json:"currentPage"`
	TotalPages  int   `json:"totalPages"`
	TotalItems  int64 `json:"totalItems"`
	Limit       int   `json:"limit"`
}

// NewMeta computes page metadata from the total row count.
func NewMeta(p Params, total int64) Meta {
	n := p.Normalize()
	pages := 0
	if total > 0 {
		pages = int((total + int64(n.Limit) - 1) / int64(n.Limit))
	}
	return Meta{CurrentPage: n.Page, TotalPages: pages, TotalItems: total, Limit: n.Limit}
}
