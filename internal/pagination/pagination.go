// Package pagination implements page-number pagination for list endpoints.
package pagination

import (
	"errors"
	"math"
	"net/http"
	"net/url"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/pageza/foodgram/backend/internal/types"
)

// ErrInvalidPage is returned for a page that is not a positive number or lies past the last page.
var ErrInvalidPage = errors.New("invalid page")

// Paginator resolves page and limit query parameters.
type Paginator struct {
	PageSize int
	// MaxPageSize caps the limit parameter. Zero disables the override.
	MaxPageSize int
}

// Fixed returns a paginator that ignores the limit parameter.
func Fixed(size int) Paginator {
	return Paginator{PageSize: size}
}

// WithLimit returns a paginator whose page size may be overridden by limit up to max.
func WithLimit(size, max int) Paginator {
	return Paginator{PageSize: size, MaxPageSize: max}
}

// maxOffset bounds the row offset a page may reach, keeping page maths inside int.
const maxOffset = math.MaxInt32

// Request is a resolved page request.
type Request struct {
	Number int
	Size   int
}

// Page converts the request into a query window. Requests from Parse never overflow.
func (r Request) Page() types.Page {
	return types.Page{Limit: r.Size, Offset: (r.Number - 1) * r.Size}
}

// Parse reads page and limit from the query string.
func (p Paginator) Parse(c *gin.Context) (Request, error) {
	req := Request{Number: 1, Size: p.PageSize}

	if p.MaxPageSize > 0 {
		if n, err := strconv.Atoi(c.Query("limit")); err == nil && n > 0 {
			if n > p.MaxPageSize {
				n = p.MaxPageSize
			}
			req.Size = n
		}
	}

	if raw := c.Query("page"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			return req, ErrInvalidPage
		}
		// No table holds enough rows to reach this page.
		if req.Size > 0 && n-1 > maxOffset/req.Size {
			return req, ErrInvalidPage
		}
		req.Number = n
	}
	return req, nil
}

// Envelope is the paginated response body.
type Envelope struct {
	Count    int64       `json:"count"`
	Next     *string     `json:"next"`
	Previous *string     `json:"previous"`
	Results  interface{} `json:"results"`
}

// Build wraps results for the given request. Pages past the last one are invalid,
// except page 1 of an empty list.
func Build(c *gin.Context, req Request, count int64, results interface{}) (*Envelope, error) {
	offset := int64(req.Number-1) * int64(req.Size)
	if req.Number > 1 && (offset < 0 || offset >= count) {
		return nil, ErrInvalidPage
	}

	env := &Envelope{Count: count, Results: results}
	if offset+int64(req.Size) < count {
		next := pageURL(c, req.Number+1)
		env.Next = &next
	}
	if req.Number > 1 {
		prev := pageURL(c, req.Number-1)
		env.Previous = &prev
	}
	return env, nil
}

// Respond writes the envelope, or 404 for an invalid page.
func Respond(c *gin.Context, req Request, count int64, results interface{}) {
	env, err := Build(c, req, count, results)
	if err != nil {
		NotFound(c)
		return
	}
	c.JSON(http.StatusOK, env)
}

// NotFound writes the invalid page response.
func NotFound(c *gin.Context) {
	c.JSON(http.StatusNotFound, gin.H{"error": ErrInvalidPage.Error()})
}

// pageURL returns the absolute request URL with page replaced. Page 1 drops the parameter.
func pageURL(c *gin.Context, page int) string {
	scheme := "http"
	if c.Request.TLS != nil {
		scheme = "https"
	}
	if proto := c.GetHeader("X-Forwarded-Proto"); proto != "" {
		scheme = proto
	}

	query := c.Request.URL.Query()
	if page == 1 {
		query.Del("page")
	} else {
		query.Set("page", strconv.Itoa(page))
	}

	u := url.URL{
		Scheme:   scheme,
		Host:     c.Request.Host,
		Path:     c.Request.URL.Path,
		RawQuery: query.Encode(),
	}
	return u.String()
}
