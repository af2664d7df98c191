package source

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"natgas-trader/internal/logger"
	"natgas-trader/internal/trace"
	"natgas-trader/internal/types"
)

// WeatherClient aggregates forecast heating-degree-days over the configured
// demand regions into one national reading per cycle.
type WeatherClient struct {
	apiURL       string
	regions      []string
	forecastDays int
	baseTempF    float64
	baselineHDD  float64
	httpClient   *http.Client
}

type WeatherParams struct {
	APIURL       string
	Regions      []string // "lat,lon" pairs
	ForecastDays int
	BaseTempF    float64
	BaselineHDD  float64
}

func NewWeatherClient(p WeatherParams) *WeatherClient {
	return &WeatherClient{
		apiURL:       p.APIURL,
		regions:      p.Regions,
		forecastDays: p.ForecastDays,
		baseTempF:    p.BaseTempF,
		baselineHDD:  p.BaselineHDD,
		httpClient:   newHTTPClient(),
	}
}

type weatherResponse struct {
	Daily struct {
		TemperatureMax []float64 `json:"temperature_2m_max"`
		TemperatureMin []float64 `json:"temperature_2m_min"`
	} `json:"daily"`
}

// Fetch returns the regional average forecast HDD against the historical
// baseline. Individual region failures are tolerated; zero valid regions
// makes the whole source unavailable.
func (w *WeatherClient) Fetch(ctx context.Context) (types.TemperatureReading, error) {
	ctx, span := trace.StartSpan(ctx, "source.weather.Fetch")
	defer span.End()

	var totalHDD float64
	validRegions := 0

	for _, region := range w.regions {
		hdd, err := w.regionHDD(ctx, region)
		if err != nil {
			logger.Warn(ctx, "Weather fetch failed for region", "region", region, "error", err)
			continue
		}
		totalHDD += hdd
		validRegions++
	}

	if validRegions == 0 {
		return types.TemperatureReading{}, fmt.Errorf("%w: no weather region responded", ErrSourceUnavailable)
	}

	reading := types.TemperatureReading{
		ObservedHDD:      totalHDD / float64(validRegions),
		HistoricalAvgHDD: w.baselineHDD,
	}
	logger.Debug(ctx, "Weather reading aggregated",
		"regions", validRegions,
		"avg_hdd", reading.ObservedHDD,
		"baseline_hdd", reading.HistoricalAvgHDD,
	)
	return reading, nil
}

// regionHDD sums forecast heating-degree-days for one "lat,lon" region.
func (w *WeatherClient) regionHDD(ctx context.Context, region string) (float64, error) {
	lat, lon, err := splitRegion(region)
	if err != nil {
		return 0, err
	}

	q := url.Values{}
	q.Set("latitude", lat)
	q.Set("longitude", lon)
	q.Set("daily", "temperature_2m_max,temperature_2m_min")
	q.Set("temperature_unit", "fahrenheit")
	q.Set("timezone", "America/New_York")
	q.Set("forecast_days", strconv.Itoa(w.forecastDays))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, w.apiURL+"?"+q.Encode(), nil)
	if err != nil {
		return 0, err
	}

	resp, err := w.httpClient.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("weather API returned status %d", resp.StatusCode)
	}

	var data weatherResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return 0, fmt.Errorf("decode weather response: %w", err)
	}

	var hdd float64
	n := len(data.Daily.TemperatureMax)
	if len(data.Daily.TemperatureMin) < n {
		n = len(data.Daily.TemperatureMin)
	}
	for i := 0; i < n; i++ {
		avg := (data.Daily.TemperatureMax[i] + data.Daily.TemperatureMin[i]) / 2
		if d := w.baseTempF - avg; d > 0 {
			hdd += d
		}
	}
	return hdd, nil
}

func splitRegion(region string) (lat, lon string, err error) {
	parts := strings.Split(region, ",")
	if len(parts) != 2 {
		return "", "", fmt.Errorf("invalid region format %q, want \"lat,lon\"", region)
	}
	return strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1]), nil
}
