package providers

import (
	"context"
	"encoding/json"
	"io"
	"strconv"
	"time"

	"SignalForge/internal/domain/models"
	xhttp "SignalForge/pkg/http"
)

const TwelveDataID = "twelvedata"

// TwelveData fetches 15min time series. It covers crypto, forex and
// commodity pairs, so it is the fallback for assets Binance cannot serve.
// Volume is omitted for forex pairs; that field stays zero.
type TwelveData struct {
	baseURL string
	apiKey  string
	client  *xhttp.Client
}

func NewTwelveData(baseURL, apiKey string, timeout time.Duration) *TwelveData {
	return &TwelveData{
		baseURL: baseURL,
		apiKey:  apiKey,
		client:  xhttp.NewClient(xhttp.WithTimeout(timeout)),
	}
}

func (t *TwelveData) Name() string { return TwelveDataID }

type tdValue struct {
	Datetime string `json:"datetime"`
	Open     string `json:"open"`
	High     string `json:"high"`
	Low      string `json:"low"`
	Close    string `json:"close"`
	Volume   string `json:"volume"`
}

type tdResponse struct {
	Values  []tdValue `json:"values"`
	Status  string    `json:"status"`
	Code    int       `json:"code"`
	Message string    `json:"message"`
}

func (t *TwelveData) fetchOnce(ctx context.Context, asset models.Asset) (*models.PriceSeries, error) {
	resp, err := t.client.SendRequest(ctx, &xhttp.RequestOptions{
		Method: xhttp.MethodGet,
		URL:    t.baseURL + "/time_series",
		QueryParams: map[string][]string{
			"symbol":     {asset.SymbolFor(TwelveDataID)},
			"interval":   {"15min"},
			"outputsize": {"300"},
			"apikey":     {t.apiKey},
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

	var td tdResponse
	if err := json.NewDecoder(resp.Body).Decode(&td); err != nil {
		return nil, &MalformedError{Reason: err.Error()}
	}
	// TwelveData reports quota exhaustion inside a 200 body.
	if td.Status == "error" {
		if td.Code == 429 {
			return nil, &StatusError{Code: 429}
		}
		return nil, &MalformedError{Reason: td.Message}
	}
	if len(td.Values) == 0 {
		return nil, &MalformedError{Reason: "empty values array"}
	}

	// Values arrive newest-first.
	points := make([]models.PricePoint, 0, len(td.Values))
	for i := len(td.Values) - 1; i >= 0; i-- {
		v := td.Values[i]
		ts, err := time.Parse("2006-01-02 15:04:05", v.Datetime)
		if err != nil {
			return nil, &MalformedError{Reason: "bad datetime: " + err.Error()}
		}
		p := models.PricePoint{Timestamp: ts.UTC()}
		for _, f := range []struct {
			raw  string
			dest *float64
		}{
			{v.Open, &p.Open}, {v.High, &p.High}, {v.Low, &p.Low}, {v.Close, &p.Close},
		} {
			val, err := strconv.ParseFloat(f.raw, 64)
			if err != nil {
				return nil, &MalformedError{Reason: "bad price value: " + err.Error()}
			}
			*f.dest = val
		}
		if v.Volume != "" {
			p.Volume, _ = strconv.ParseFloat(v.Volume, 64)
		}
		points = append(points, p)
	}

	return &models.PriceSeries{Symbol: asset.Symbol, Source: TwelveDataID, Points: points}, nil
}
