package interfaces

import (
	"context"

	"natgas-trader/internal/types"
)

// The three raw-data collaborators. Each produces one already-aggregated
// reading per cycle; fetch failures degrade that source, never the cycle.

type WeatherSource interface {
	Fetch(ctx context.Context) (types.TemperatureReading, error)
}

type StorageSource interface {
	Fetch(ctx context.Context) (types.StorageReading, error)
}

type StormSource interface {
	Fetch(ctx context.Context) (types.StormReading, error)
}
