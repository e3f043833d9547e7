package marketdata

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/jhaveri/fie/internal/contracts"
	"github.com/jhaveri/fie/pkg/config"
	"github.com/jhaveri/fie/pkg/httputil"
	"github.com/jhaveri/fie/pkg/logger"
)

var defaultHeaders = map[string]string{
	"User-Agent": "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36",
	"Referer":    "https://finance.naver.com/",
}

// Provider fetches daily OHLCV history from the chart JSON endpoint,
// falling back to the HTML archive when the chart API yields nothing.
// All upstream calls go through a shared rate limiter.
type Provider struct {
	httpClient   *httputil.Client
	archive      *ArchiveClient
	limiter      *rate.Limiter
	chartURL     string
	lookbackDays int
	logger       *logger.Logger
}

func NewProvider(httpClient *httputil.Client, archive *ArchiveClient, cfg config.MarketDataConfig, log *logger.Logger) *Provider {
	return &Provider{
		httpClient:   httpClient,
		archive:      archive,
		limiter:      rate.NewLimiter(rate.Limit(cfg.RateLimit), 1),
		chartURL:     cfg.ChartURL,
		lookbackDays: cfg.LookbackDays,
		logger:       log,
	}
}

// History returns daily bars for a symbol, oldest first.
func (p *Provider) History(ctx context.Context, symbol string) ([]contracts.PricePoint, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	to := time.Now()
	from := to.AddDate(0, 0, -p.lookbackDays)

	bars, err := p.fetchChart(ctx, symbol, from, to)
	if err == nil && len(bars) > 0 {
		return bars, nil
	}
	if err != nil {
		p.logger.WithError(err).WithField("symbol", symbol).
			Debug("Chart API failed, trying archive fallback")
	}

	if p.archive == nil {
		if err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("no price data for %s", symbol)
	}
	return p.archive.History(ctx, symbol, p.lookbackDays)
}

func (p *Provider) fetchChart(ctx context.Context, symbol string, from, to time.Time) ([]contracts.PricePoint, error) {
	fullURL := fmt.Sprintf("%s?symbol=%s&requestType=1&startTime=%s&endTime=%s&timeframe=day",
		p.chartURL, symbol, from.Format("20060102"), to.Format("20060102"))

	resp, err := p.httpClient.Get(ctx, fullURL, defaultHeaders)
	if err != nil {
		return nil, fmt.Errorf("chart request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body failed: %w", err)
	}

	bars, err := parseChartResponse(string(body))
	if err != nil {
		return nil, fmt.Errorf("parse response failed: %w", err)
	}

	p.logger.WithFields(map[string]interface{}{
		"symbol": symbol,
		"count":  len(bars),
	}).Debug("Fetched price history")
	return bars, nil
}

// parseChartResponse decodes the chart endpoint's array-of-rows
// payload. The first row is a localized header; single quotes are
// normalized before JSON decoding.
func parseChartResponse(body string) ([]contracts.PricePoint, error) {
	body = strings.TrimSpace(body)
	body = strings.ReplaceAll(body, "'", "\"")

	var rawData [][]interface{}
	if err := json.Unmarshal([]byte(body), &rawData); err != nil {
		return nil, fmt.Errorf("decode chart payload: %w", err)
	}

	bars := make([]contracts.PricePoint, 0, len(rawData))
	for i, row := range rawData {
		if i == 0 || len(row) < 6 {
			continue // header or short row
		}

		dateStr, ok := row[0].(string)
		if !ok {
			continue
		}
		dateStr = strings.Trim(dateStr, "\"")
		if len(dateStr) == 8 {
			dateStr = dateStr[:4] + "-" + dateStr[4:6] + "-" + dateStr[6:8]
		}
		date, err := time.Parse("2006-01-02", dateStr)
		if err != nil {
			continue
		}

		bars = append(bars, contracts.PricePoint{
			Date:   date,
			Open:   toFloat(row[1]),
			High:   toFloat(row[2]),
			Low:    toFloat(row[3]),
			Close:  toFloat(row[4]),
			Volume: int64(toFloat(row[5])),
		})
	}
	return bars, nil
}

func toFloat(v interface{}) float64 {
	switch val := v.(type) {
	case float64:
		return val
	case string:
		f, err := strconv.ParseFloat(strings.ReplaceAll(val, ",", ""), 64)
		if err != nil {
			return 0
		}
		return f
	default:
		return 0
	}
}
