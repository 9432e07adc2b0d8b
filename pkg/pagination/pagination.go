package pagination

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

const (
	DefaultPage  = 1
	DefaultLimit = 20
	MaxLimit     = 100
)

// Params is the page window requested by a list endpoint.
type Params struct {
	Page  int
	Limit int
}

// Offset converts the page window into a row offset.
func (p Params) Offset() int {
	return (p.Page - 1) * p.Limit
}

// Parse reads page and limit query parameters, substituting defaults for
// missing or invalid values and clamping limit to MaxLimit.
func Parse(c *gin.Context) Params {
	p := Params{
		Page:  intQuery(c, "page", DefaultPage),
		Limit: intQuery(c, "limit", DefaultLimit),
	}
	if p.Page < 1 {
		p.Page = DefaultPage
	}
	if p.Limit < 1 {
		p.Limit = DefaultLimit
	}
	if p.Limit > MaxLimit {
		p.Limit = MaxLimit
	}
	return p
}

func intQuery(c *gin.Context, name string, fallback int) int {
	raw := c.Query(name)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return n
}
