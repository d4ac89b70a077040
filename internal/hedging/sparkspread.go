package hedging

import (
	"fmt"
	"math"
	"sync/atomic"

	"github.com/quantcore/hedge-engine/internal/marketdata"
)

const sparkSpreadPositionScale = 100

// SparkSpreadStrategy hedges the gross generation margin of a gas-fired
// power plant: spread = power - gas/heat_rate - co2*emission_factor.
type SparkSpreadStrategy struct {
	capacityMW      float64
	heatRate        float64
	emissionFactor  float64
	targetSpread    float64

	rehedgeThresholdBps int64 // hardcoded 500bps in the original, not a constructor param

	powerHedge int64 // fixed-point, scale 100, negative = sold
	gasHedge   int64 // fixed-point, scale 100, positive = bought
	co2Hedge   int64 // fixed-point, scale 100, positive = bought

	avgSpread int64 // fixed-point, scale 10000, EMA alpha=0.05
}

// NewSparkSpreadStrategy constructs a spark-spread strategy for a plant of
// the given capacity (MW), heat rate (MWh gas / MWh electricity), CO2
// emission factor (tons / MWh gas) and target spread (€/MWh).
func NewSparkSpreadStrategy(capacityMW, heatRate, emissionFactor, targetSpread float64) *SparkSpreadStrategy {
	return &SparkSpreadStrategy{
		capacityMW:          capacityMW,
		heatRate:            heatRate,
		emissionFactor:      emissionFactor,
		targetSpread:        targetSpread,
		rehedgeThresholdBps: 500,
		avgSpread:           int64(targetSpread * mvhrScale),
	}
}

// CalculateSpread returns power_price - gas_price/heat_rate -
// co2_price*emission_factor (€/MWh).
func (s *SparkSpreadStrategy) CalculateSpread(powerPrice, gasPrice, co2Price float64) float64 {
	gasCost := gasPrice / s.heatRate
	co2Cost := co2Price * s.emissionFactor
	return powerPrice - gasCost - co2Cost
}

// CostsBreakdown is the per-MWh cost decomposition behind a spread.
type CostsBreakdown struct {
	GasCostPerMWh   float64
	CO2CostPerMWh   float64
	TotalCostPerMWh float64
	GasVolumePerMWh float64
	CO2VolumePerMWh float64
}

func (s *SparkSpreadStrategy) calculateCostsBreakdown(gasPrice, co2Price float64) CostsBreakdown {
	gasCost := gasPrice / s.heatRate
	co2Cost := co2Price * s.emissionFactor
	return CostsBreakdown{
		GasCostPerMWh:   gasCost,
		CO2CostPerMWh:   co2Cost,
		TotalCostPerMWh: gasCost + co2Cost,
		GasVolumePerMWh: s.heatRate,
		CO2VolumePerMWh: s.heatRate * s.emissionFactor,
	}
}

// IsProfitable reports whether spread exceeds the configured target.
func (s *SparkSpreadStrategy) IsProfitable(spread float64) bool {
	return spread > s.targetSpread
}

// CalculateHedgeVolumes returns (power MWh, gas MWh, co2 tons) needed to
// cover `hours` hours of generation at full capacity.
func (s *SparkSpreadStrategy) CalculateHedgeVolumes(hours float64) (power, gas, co2 float64) {
	power = s.capacityMW * hours
	gas = power * s.heatRate
	co2 = gas * s.emissionFactor
	return
}

// updateAvgSpread folds the current spread into the EMA(alpha=0.05).
func (s *SparkSpreadStrategy) updateAvgSpread(currentSpread float64) {
	current := float64(atomic.LoadInt64(&s.avgSpread)) / mvhrScale
	newAvg := current*0.95 + currentSpread*0.05
	atomic.StoreInt64(&s.avgSpread, int64(newAvg*mvhrScale))
}

// SparkSpreadRecommendations bundles the three-leg recommendation set and
// its supporting figures.
type SparkSpreadRecommendations struct {
	Spread        float64
	AvgSpread     float64
	Power         HedgeRecommendation
	Gas           HedgeRecommendation
	CO2           HedgeRecommendation
	Costs         CostsBreakdown
	ProfitPerMWh  float64
	TotalProfit   float64
}

// GetRecommendations reads best bid on the power book and best ask on the
// gas/CO2 books, gates on profitability and the rehedge threshold against
// the currently-hedged power volume, and returns the three-leg
// recommendation set (power SELL, gas BUY, co2 BUY).
func (s *SparkSpreadStrategy) GetRecommendations(powerBook, gasBook, co2Book *marketdata.OrderBook, hoursAhead float64) (*SparkSpreadRecommendations, bool) {
	powerBid, _ := powerBook.BestBid()
	gasAsk, _ := gasBook.BestAsk()
	co2Ask, _ := co2Book.BestAsk()

	spread := s.CalculateSpread(powerBid, gasAsk, co2Ask)
	s.updateAvgSpread(spread)

	if !s.IsProfitable(spread) {
		return nil, false
	}

	powerVolume, gasVolume, co2Volume := s.CalculateHedgeVolumes(hoursAhead)

	currentPowerHedge := float64(atomic.LoadInt64(&s.powerHedge)) / sparkSpreadPositionScale
	deltaPower := powerVolume - math.Abs(currentPowerHedge)
	if currentPowerHedge != 0 {
		changeBps := math.Abs(deltaPower/math.Abs(currentPowerHedge)) * 10000
		if changeBps < float64(s.rehedgeThresholdBps) {
			return nil, false
		}
	}

	costs := s.calculateCostsBreakdown(gasAsk, co2Ask)

	avgSpread := float64(atomic.LoadInt64(&s.avgSpread)) / mvhrScale
	spreadPremium := spread - avgSpread
	urgency := UrgencyNormal
	if spreadPremium > 10.0 {
		urgency = UrgencyEmergency // exceptional spread, well past a routine rehedge
	}

	powerRec := newRecommendation(marketdata.SideBid, powerBid, powerVolume, urgency,
		fmt.Sprintf("spark spread hedge: SELL power @ %.2f/MWh (spread: %.2f)", powerBid, spread))
	gasRec := newRecommendation(marketdata.SideAsk, gasAsk, gasVolume, urgency,
		fmt.Sprintf("spark spread hedge: BUY gas @ %.2f/MWh (cost: %.2f/MWh power)", gasAsk, costs.GasCostPerMWh))
	co2Rec := newRecommendation(marketdata.SideAsk, co2Ask, co2Volume, urgency,
		fmt.Sprintf("spark spread hedge: BUY CO2 @ %.2f/ton (cost: %.2f/MWh power)", co2Ask, costs.CO2CostPerMWh))

	return &SparkSpreadRecommendations{
		Spread:       spread,
		AvgSpread:    avgSpread,
		Power:        powerRec,
		Gas:          gasRec,
		CO2:          co2Rec,
		Costs:        costs,
		ProfitPerMWh: spread - s.targetSpread,
		TotalProfit:  (spread - s.targetSpread) * powerVolume,
	}, true
}

// ExecuteHedge records a three-leg fill: power is sold (negative), gas and
// CO2 are bought (positive).
func (s *SparkSpreadStrategy) ExecuteHedge(powerVolume, gasVolume, co2Volume float64) {
	atomic.AddInt64(&s.powerHedge, -int64(powerVolume*sparkSpreadPositionScale))
	atomic.AddInt64(&s.gasHedge, int64(gasVolume*sparkSpreadPositionScale))
	atomic.AddInt64(&s.co2Hedge, int64(co2Volume*sparkSpreadPositionScale))
}

// SparkSpreadPositions is the current three-leg hedge position.
type SparkSpreadPositions struct {
	PowerMW  float64
	GasMWh   float64
	CO2Tons  float64
}

func (s *SparkSpreadStrategy) GetPositions() SparkSpreadPositions {
	return SparkSpreadPositions{
		PowerMW: float64(atomic.LoadInt64(&s.powerHedge)) / sparkSpreadPositionScale,
		GasMWh:  float64(atomic.LoadInt64(&s.gasHedge)) / sparkSpreadPositionScale,
		CO2Tons: float64(atomic.LoadInt64(&s.co2Hedge)) / sparkSpreadPositionScale,
	}
}

// CalculatePnL marks the current three-leg position to the given prices:
// -pos_power*power - pos_gas*gas - pos_co2*co2 (positions already carry
// their sign).
func (s *SparkSpreadStrategy) CalculatePnL(powerPrice, gasPrice, co2Price float64) float64 {
	pos := s.GetPositions()
	return -pos.PowerMW*powerPrice - pos.GasMWh*gasPrice - pos.CO2Tons*co2Price
}
