package source

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"time"

	"natgas-trader/internal/logger"
	"natgas-trader/internal/trace"
	"natgas-trader/internal/types"
)

// EIAClient fetches weekly natural-gas storage levels from the EIA v2 API.
// The source is optional: without an API key it reports unavailable and the
// inventory signal degrades to neutral.
type EIAClient struct {
	apiURL     string
	apiKey     string
	httpClient *http.Client
	now        func() time.Time
}

func NewEIAClient(apiURL, apiKey string) *EIAClient {
	return &EIAClient{
		apiURL:     apiURL,
		apiKey:     apiKey,
		httpClient: newHTTPClient(),
		now:        time.Now,
	}
}

type eiaResponse struct {
	Response struct {
		Data []struct {
			Period string          `json:"period"`
			Value  json.RawMessage `json:"value"`
		} `json:"data"`
	} `json:"response"`
}

// Fetch returns the latest weekly storage level against the trailing-year
// average.
func (e *EIAClient) Fetch(ctx context.Context) (types.StorageReading, error) {
	ctx, span := trace.StartSpan(ctx, "source.eia.Fetch")
	defer span.End()

	if e.apiKey == "" {
		return types.StorageReading{}, fmt.Errorf("%w: EIA API key not configured", ErrSourceUnavailable)
	}

	end := e.now()
	start := end.AddDate(-1, 0, 0)

	q := url.Values{}
	q.Set("api_key", e.apiKey)
	q.Add("data[]", "value")
	q.Set("start", start.Format("2006-01-02"))
	q.Set("end", end.Format("2006-01-02"))
	q.Set("length", "1000")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, e.apiURL+"?"+q.Encode(), nil)
	if err != nil {
		return types.StorageReading{}, err
	}

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return types.StorageReading{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return types.StorageReading{}, fmt.Errorf("EIA API returned status %d", resp.StatusCode)
	}

	var data eiaResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return types.StorageReading{}, fmt.Errorf("decode EIA response: %w", err)
	}

	type point struct {
		period time.Time
		value  float64
	}
	var points []point
	for _, d := range data.Response.Data {
		v, ok := rawToFloat(d.Value)
		if !ok {
			continue
		}
		t, err := parsePeriod(d.Period)
		if err != nil {
			continue
		}
		points = append(points, point{period: t, value: v})
	}

	if len(points) < 2 {
		return types.StorageReading{}, fmt.Errorf("%w: insufficient storage data (%d points)", ErrSourceUnavailable, len(points))
	}

	sort.Slice(points, func(i, j int) bool { return points[i].period.Before(points[j].period) })

	var sum float64
	for _, p := range points {
		sum += p.value
	}

	reading := types.StorageReading{
		CurrentBcf:       points[len(points)-1].value,
		HistoricalAvgBcf: sum / float64(len(points)),
	}
	logger.Debug(ctx, "Storage reading fetched",
		"points", len(points),
		"current_bcf", reading.CurrentBcf,
		"historical_avg_bcf", reading.HistoricalAvgBcf,
	)
	return reading, nil
}

// rawToFloat accepts values serialized as either JSON numbers or strings;
// the EIA API has used both.
func rawToFloat(raw json.RawMessage) (float64, bool) {
	var n float64
	if err := json.Unmarshal(raw, &n); err == nil {
		return n, true
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if v, err := strconv.ParseFloat(s, 64); err == nil {
			return v, true
		}
	}
	return 0, false
}

func parsePeriod(s string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, s)
}
