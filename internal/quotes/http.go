// Package quotes fetches latest prices from an HTTP quote service.
package quotes

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/wonny/quantengine/internal/contracts"
	"github.com/wonny/quantengine/pkg/httputil"
)

// quote is the body of GET {base}/quotes/{ticker}.
type quote struct {
	Ticker string  `json:"ticker"`
	Price  float64 `json:"price"`
}

// HTTPSource is a contracts.QuoteSource backed by a quote service.
type HTTPSource struct {
	client  *httputil.Client
	baseURL string
}

// NewHTTPSource creates a source for the service at baseURL.
func NewHTTPSource(baseURL string, client *httputil.Client) *HTTPSource {
	return &HTTPSource{client: client, baseURL: strings.TrimRight(baseURL, "/")}
}

// LatestPrice returns the service's last price for ticker. An unknown ticker
// wraps contracts.ErrNotFound.
func (s *HTTPSource) LatestPrice(ctx context.Context, ticker string) (float64, error) {
	endpoint := s.baseURL + "/quotes/" + url.PathEscape(strings.ToUpper(ticker))

	var q quote
	if err := s.client.GetJSON(ctx, endpoint, &q); err != nil {
		var statusErr *httputil.StatusError
		if errors.As(err, &statusErr) && statusErr.StatusCode == http.StatusNotFound {
			return 0, fmt.Errorf("%s: %w", ticker, contracts.ErrNotFound)
		}
		return 0, fmt.Errorf("failed to fetch quote for %s: %w", ticker, err)
	}

	return q.Price, nil
}
