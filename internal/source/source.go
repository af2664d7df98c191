// Package source implements the three external data collaborators: weather
// heating demand, EIA gas storage, and NOAA storm alerts. Each produces one
// already-aggregated reading per cycle; the engine degrades a failed source
// to a neutral signal instead of aborting the cycle.
package source

import (
	"errors"
	"net/http"
	"time"
)

// ErrSourceUnavailable marks a source that cannot be queried at all, for
// example a missing API key or an empty upstream response.
var ErrSourceUnavailable = errors.New("data source unavailable")

func newHTTPClient() *http.Client {
	return &http.Client{Timeout: 30 * time.Second}
}
