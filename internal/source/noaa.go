package source

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"natgas-trader/internal/logger"
	"natgas-trader/internal/trace"
	"natgas-trader/internal/types"
)

// NOAAClient reads active weather alerts from api.weather.gov and reduces
// them to one storm severity level per cycle.
type NOAAClient struct {
	apiURL     string
	httpClient *http.Client
	userAgent  string
}

func NewNOAAClient(apiURL string) *NOAAClient {
	return &NOAAClient{
		apiURL:     apiURL,
		httpClient: newHTTPClient(),
		// api.weather.gov rejects requests without a User-Agent.
		userAgent: "natgas-trader/1.0",
	}
}

type noaaResponse struct {
	Features []struct {
		Properties struct {
			Event    string `json:"event"`
			Severity string `json:"severity"`
		} `json:"properties"`
	} `json:"features"`
}

// gas-relevant event keywords; anything else (flood, heat, fog) is ignored.
var stormKeywords = []string{
	"storm", "winter", "blizzard", "ice", "freeze", "hurricane", "tornado", "severe",
}

// Fetch returns the strongest severity among active gas-relevant alerts.
// No active alerts is a valid reading of SeverityNone, not an error.
func (n *NOAAClient) Fetch(ctx context.Context) (types.StormReading, error) {
	ctx, span := trace.StartSpan(ctx, "source.noaa.Fetch")
	defer span.End()

	q := url.Values{}
	q.Set("active", "true")
	q.Set("status", "actual")
	q.Set("message_type", "alert")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, n.apiURL+"?"+q.Encode(), nil)
	if err != nil {
		return types.StormReading{}, err
	}
	req.Header.Set("User-Agent", n.userAgent)
	req.Header.Set("Accept", "application/geo+json")

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return types.StormReading{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return types.StormReading{}, fmt.Errorf("NOAA API returned status %d", resp.StatusCode)
	}

	var data noaaResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return types.StormReading{}, fmt.Errorf("decode NOAA response: %w", err)
	}

	strongest := types.SeverityNone
	relevant := 0
	for _, f := range data.Features {
		event := strings.ToLower(f.Properties.Event)
		if !isStormEvent(event) {
			continue
		}
		relevant++
		if sev := classifySeverity(event, strings.ToLower(f.Properties.Severity)); sev > strongest {
			strongest = sev
		}
	}

	logger.Debug(ctx, "Storm alerts processed",
		"total_alerts", len(data.Features),
		"relevant", relevant,
		"severity", strongest.String(),
	)
	return types.StormReading{Severity: strongest}, nil
}

func isStormEvent(event string) bool {
	for _, kw := range stormKeywords {
		if strings.Contains(event, kw) {
			return true
		}
	}
	return false
}

// classifySeverity maps an NWS alert to the internal severity ladder. The
// NWS severity field takes precedence; the event phrasing (watch vs warning
// vs advisory) breaks ties for "Moderate" and below.
func classifySeverity(event, nwsSeverity string) types.Severity {
	switch nwsSeverity {
	case "extreme":
		return types.SeveritySevere
	case "severe":
		return types.SeverityWarning
	}
	switch {
	case strings.Contains(event, "warning"):
		return types.SeverityWarning
	case strings.Contains(event, "watch"):
		return types.SeverityWatch
	default:
		return types.SeverityAdvisory
	}
}
