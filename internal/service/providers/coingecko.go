package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"SignalForge/internal/domain/models"
	xhttp "SignalForge/pkg/http"
)

const CoinGeckoID = "coingecko"

// CoinGecko fetches hourly market-chart history. It reports price and
// volume but no true OHLC, so each point carries the price in all four
// fields; a higher-fidelity provider is preferred for crypto pairs when
// available.
type CoinGecko struct {
	baseURL string
	apiKey  string
	client  *xhttp.Client
}

func NewCoinGecko(baseURL, apiKey string, timeout time.Duration) *CoinGecko {
	return &CoinGecko{
		baseURL: baseURL,
		apiKey:  apiKey,
		client:  xhttp.NewClient(xhttp.WithTimeout(timeout)),
	}
}

func (c *CoinGecko) Name() string { return CoinGeckoID }

type geckoChart struct {
	Prices       [][2]float64 `json:"prices"`
	TotalVolumes [][2]float64 `json:"total_volumes"`
}

func (c *CoinGecko) fetchOnce(ctx context.Context, asset models.Asset) (*models.PriceSeries, error) {
	coinID := asset.SymbolFor(CoinGeckoID)
	headers := map[string]string{}
	if c.apiKey != "" {
		headers["x-cg-demo-api-key"] = c.apiKey
	}

	resp, err := c.client.SendRequest(ctx, &xhttp.RequestOptions{
		Method:  xhttp.MethodGet,
		URL:     fmt.Sprintf("%s/coins/%s/market_chart", c.baseURL, coinID),
		Headers: headers,
		QueryParams: map[string][]string{
			"vs_currency": {"usd"},
			"days":        {"2"},
		},
	})
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		io.Copy(io.Discard, resp.Body)
		return nil, &StatusError{Code: resp.StatusCode}
	}

	var chart geckoChart
	if err := json.NewDecoder(resp.Body).Decode(&chart); err != nil {
		return nil, &MalformedError{Reason: err.Error()}
	}
	if len(chart.Prices) == 0 {
		return nil, &MalformedError{Reason: "empty prices array"}
	}

	volumes := make(map[int64]float64, len(chart.TotalVolumes))
	for _, v := range chart.TotalVolumes {
		volumes[int64(v[0])] = v[1]
	}

	points := make([]models.PricePoint, 0, len(chart.Prices))
	for _, p := range chart.Prices {
		ms := int64(p[0])
		price := p[1]
		points = append(points, models.PricePoint{
			Timestamp: time.UnixMilli(ms).UTC(),
			Open:      price,
			High:      price,
			Low:       price,
			Close:     price,
			Volume:    volumes[ms],
		})
	}

	return &models.PriceSeries{Symbol: asset.Symbol, Source: CoinGeckoID, Points: points}, nil
}
