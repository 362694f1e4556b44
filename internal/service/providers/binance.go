package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"time"

	"SignalForge/internal/domain/models"
	xhttp "SignalForge/pkg/http"
)

const BinanceID = "binance"

// Binance fetches 15m REST klines: full OHLCV, no API key needed, which
// makes it the preferred primary for crypto pairs.
type Binance struct {
	baseURL string
	client  *xhttp.Client
}

func NewBinance(baseURL string, timeout time.Duration) *Binance {
	return &Binance{
		baseURL: baseURL,
		client:  xhttp.NewClient(xhttp.WithTimeout(timeout)),
	}
}

func (b *Binance) Name() string { return BinanceID }

func (b *Binance) fetchOnce(ctx context.Context, asset models.Asset) (*models.PriceSeries, error) {
	resp, err := b.client.SendRequest(ctx, &xhttp.RequestOptions{
		Method: xhttp.MethodGet,
		URL:    b.baseURL + "/api/v3/klines",
		QueryParams: map[string][]string{
			"symbol":   {asset.SymbolFor(BinanceID)},
			"interval": {"15m"},
			"limit":    {"300"},
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

	// Klines arrive as mixed arrays: [openTime, "open", "high", "low",
	// "close", "volume", closeTime, ...].
	var rows [][]json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&rows); err != nil {
		return nil, &MalformedError{Reason: err.Error()}
	}
	if len(rows) == 0 {
		return nil, &MalformedError{Reason: "empty klines array"}
	}

	points := make([]models.PricePoint, 0, len(rows))
	for i, row := range rows {
		if len(row) < 6 {
			return nil, &MalformedError{Reason: fmt.Sprintf("kline %d has %d fields", i, len(row))}
		}
		var openMs int64
		if err := json.Unmarshal(row[0], &openMs); err != nil {
			return nil, &MalformedError{Reason: "bad open time: " + err.Error()}
		}
		vals := make([]float64, 5)
		for j := 1; j <= 5; j++ {
			var s string
			if err := json.Unmarshal(row[j], &s); err != nil {
				return nil, &MalformedError{Reason: "bad kline field: " + err.Error()}
			}
			v, err := strconv.ParseFloat(s, 64)
			if err != nil {
				return nil, &MalformedError{Reason: "bad kline number: " + err.Error()}
			}
			vals[j-1] = v
		}
		points = append(points, models.PricePoint{
			Timestamp: time.UnixMilli(openMs).UTC(),
			Open:      vals[0],
			High:      vals[1],
			Low:       vals[2],
			Close:     vals[3],
			Volume:    vals[4],
		})
	}

	return &models.PriceSeries{Symbol: asset.Symbol, Source: BinanceID, Points: points}, nil
}
