package marketdata

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/jhaveri/fie/internal/contracts"
	"github.com/jhaveri/fie/pkg/httputil"
	"github.com/jhaveri/fie/pkg/logger"
)

// rows per archive page, fixed by the upstream daily-quotes layout.
const archivePageSize = 10

// ArchiveClient scrapes daily quotes from the paginated HTML archive.
// Slower than the chart API and used only as its fallback.
type ArchiveClient struct {
	httpClient *httputil.Client
	baseURL    string
	logger     *logger.Logger
}

func NewArchiveClient(httpClient *httputil.Client, baseURL string, log *logger.Logger) *ArchiveClient {
	return &ArchiveClient{
		httpClient: httpClient,
		baseURL:    baseURL,
		logger:     log,
	}
}

// History scrapes enough pages to cover lookbackDays calendar days and
// returns the bars oldest first.
func (a *ArchiveClient) History(ctx context.Context, symbol string, lookbackDays int) ([]contracts.PricePoint, error) {
	pages := lookbackDays/archivePageSize + 1
	cutoff := time.Now().AddDate(0, 0, -lookbackDays)

	var bars []contracts.PricePoint
	for page := 1; page <= pages; page++ {
		pageBars, err := a.fetchPage(ctx, symbol, page)
		if err != nil {
			return nil, fmt.Errorf("archive page %d for %s: %w", page, symbol, err)
		}
		if len(pageBars) == 0 {
			break
		}

		done := false
		for _, b := range pageBars {
			if b.Date.Before(cutoff) {
				done = true
				break
			}
			bars = append(bars, b)
		}
		if done {
			break
		}
	}

	if len(bars) == 0 {
		return nil, fmt.Errorf("no archive data for %s", symbol)
	}

	// Pages run newest first; flip to chronological order.
	for i, j := 0, len(bars)-1; i < j; i, j = i+1, j-1 {
		bars[i], bars[j] = bars[j], bars[i]
	}

	a.logger.WithFields(map[string]interface{}{
		"symbol": symbol,
		"count":  len(bars),
	}).Debug("Fetched archive history")
	return bars, nil
}

func (a *ArchiveClient) fetchPage(ctx context.Context, symbol string, page int) ([]contracts.PricePoint, error) {
	fullURL := fmt.Sprintf("%s?code=%s&page=%d", a.baseURL, symbol, page)

	resp, err := a.httpClient.Get(ctx, fullURL, defaultHeaders)
	if err != nil {
		return nil, fmt.Errorf("archive request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse archive HTML: %w", err)
	}

	var bars []contracts.PricePoint
	doc.Find("table.type2 tr").Each(func(_ int, row *goquery.Selection) {
		cells := row.Find("td span.tah")
		if cells.Length() < 7 {
			return
		}

		date, ok := parseArchiveDate(strings.TrimSpace(cells.Eq(0).Text()))
		if !ok {
			return
		}

		// Columns: date, close, change, open, high, low, volume.
		bars = append(bars, contracts.PricePoint{
			Date:   date,
			Close:  parseArchiveNumber(cells.Eq(1).Text()),
			Open:   parseArchiveNumber(cells.Eq(3).Text()),
			High:   parseArchiveNumber(cells.Eq(4).Text()),
			Low:    parseArchiveNumber(cells.Eq(5).Text()),
			Volume: int64(parseArchiveNumber(cells.Eq(6).Text())),
		})
	})
	return bars, nil
}

// parseArchiveDate accepts the archive's "2026.08.28" format, rejecting
// anything else.
func parseArchiveDate(s string) (time.Time, bool) {
	t, err := time.Parse("2006-01-02", strings.ReplaceAll(s, ".", "-"))
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

func parseArchiveNumber(s string) float64 {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if s == "" {
		return 0
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return f
}
