package bitbucket

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
)

// PagedGet fetches a paged Bitbucket collection (values/isLastPage/
// nextPageStart), following the start cursor until the server reports the
// last page or maxItems values have accumulated. Items are returned in
// server page order; at most maxItems are returned.
//
// The paginator owns the "start" and "limit" query parameters and will
// overwrite any caller-supplied values of those keys.
func (c *Client) PagedGet(ctx context.Context, path string, params url.Values, limit, maxItems int) ([]map[string]any, error) {
	if limit <= 0 {
		limit = c.pageSize
	}
	if maxItems < 0 {
		maxItems = 0
	}

	query := url.Values{}
	for key, vals := range params {
		query[key] = vals
	}

	var out []map[string]any
	start := 0
	for {
		query.Set("start", strconv.Itoa(start))
		query.Set("limit", strconv.Itoa(limit))

		page, err := c.Request(ctx, http.MethodGet, path, query, nil)
		if err != nil {
			return nil, err
		}

		if values, ok := page["values"].([]any); ok {
			for _, v := range values {
				if item, ok := v.(map[string]any); ok {
					out = append(out, item)
				}
			}
		}

		c.logger.Debug().
			Int("start", start).
			Int("total", len(out)).
			Msg("Retrieved page")

		if len(out) >= maxItems {
			return out[:maxItems], nil
		}

		// A missing isLastPage means stop, never fetch forever
		if last, ok := page["isLastPage"].(bool); !ok || last {
			return out, nil
		}

		// Not the last page but no cursor: treat as page-end
		next, ok := page["nextPageStart"].(float64)
		if !ok {
			return out, nil
		}
		start = int(next)
	}
}
