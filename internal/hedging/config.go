package hedging

import (
	herrors "github.com/quantcore/hedge-engine/pkg/errors"
)

// HedgeConfig is the validated, immutable-after-construction configuration
// value consumed by the engine. Constructed once; there is no supported
// surface for mutating it in-flight (see internal/config for the ambient
// YAML loader that produces one of these at process start and rebuilds it
// wholesale on file changes).
type HedgeConfig struct {
	InitialPosition       float64 `yaml:"initial_position"`        // MWh, negative = short
	DefaultHedgeRatio     float64 `yaml:"default_hedge_ratio"`     // > 0
	RehedgeThresholdBps   int64   `yaml:"rehedge_threshold_bps"`   // >= 0
	MaxPosition           float64 `yaml:"max_position"`            // > 0, checked at construction only
	EnableMVHR            bool    `yaml:"enable_mvhr"`
	EnableMeanReversion   bool    `yaml:"enable_mean_reversion"`
	StatisticsWindowHours int     `yaml:"statistics_window_hours"`

	// Spark-spread overlay (a gas-fired plant hedged against power, gas and
	// CO2), a peer of the delta strategy rather than a separate engine.
	EnableSparkSpread        bool    `yaml:"enable_spark_spread"`
	SparkSpreadCapacityMW    float64 `yaml:"spark_spread_capacity_mw"`
	SparkSpreadHeatRate      float64 `yaml:"spark_spread_heat_rate"`
	SparkSpreadEmissionFactor float64 `yaml:"spark_spread_emission_factor"`
	SparkSpreadTargetSpread  float64 `yaml:"spark_spread_target_spread"`
	SparkSpreadHoursAhead    float64 `yaml:"spark_spread_hours_ahead"`
}

// DefaultConfig returns the baseline configuration: 500bps rehedge
// threshold, 100_000 MWh max position, MVHR overlay on, mean-reversion and
// spark-spread overlays off, a 720-hour (30-day) statistics window.
func DefaultConfig() HedgeConfig {
	return HedgeConfig{
		InitialPosition:       0,
		DefaultHedgeRatio:     1.0,
		RehedgeThresholdBps:   500,
		MaxPosition:           100_000,
		EnableMVHR:            true,
		EnableMeanReversion:   false,
		StatisticsWindowHours: 720,
		EnableSparkSpread:     false,
		SparkSpreadHoursAhead: 24,
	}
}

// SimpleConfig builds a config from just a position and ratio, with both
// strategy overlays disabled, a 500bps threshold, and a generous
// max_position — handy for tests that don't care about MVHR or
// mean-reversion.
func SimpleConfig(initialPosition, defaultHedgeRatio float64) HedgeConfig {
	c := DefaultConfig()
	c.InitialPosition = initialPosition
	c.DefaultHedgeRatio = defaultHedgeRatio
	c.EnableMVHR = false
	c.EnableMeanReversion = false
	return c
}

// Validate checks the construction-time invariants: ratio > 0,
// threshold >= 0, max_position > 0, statistics window > 0. An error here is
// fatal to the engine instance that raised it.
func (c HedgeConfig) Validate() error {
	if c.DefaultHedgeRatio <= 0 {
		return herrors.Newf(herrors.KindConfig, "default_hedge_ratio must be > 0, got %f", c.DefaultHedgeRatio)
	}
	if c.RehedgeThresholdBps < 0 {
		return herrors.Newf(herrors.KindConfig, "rehedge_threshold_bps must be >= 0, got %d", c.RehedgeThresholdBps)
	}
	if c.MaxPosition <= 0 {
		return herrors.Newf(herrors.KindConfig, "max_position must be > 0, got %f", c.MaxPosition)
	}
	if c.StatisticsWindowHours <= 0 {
		return herrors.Newf(herrors.KindConfig, "statistics_window_hours must be > 0, got %d", c.StatisticsWindowHours)
	}
	if c.EnableSparkSpread {
		if c.SparkSpreadCapacityMW <= 0 {
			return herrors.Newf(herrors.KindConfig, "spark_spread_capacity_mw must be > 0, got %f", c.SparkSpreadCapacityMW)
		}
		if c.SparkSpreadHeatRate <= 0 {
			return herrors.Newf(herrors.KindConfig, "spark_spread_heat_rate must be > 0, got %f", c.SparkSpreadHeatRate)
		}
		if c.SparkSpreadHoursAhead <= 0 {
			return herrors.Newf(herrors.KindConfig, "spark_spread_hours_ahead must be > 0, got %f", c.SparkSpreadHoursAhead)
		}
	}
	return nil
}
