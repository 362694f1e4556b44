package indicators

import (
	"fmt"

	"SignalForge/internal/domain/models"
)

// VolumeSpike compares the latest volume to its rolling average. A spike at
// or beyond the configured ratio reinforces the prevailing price direction;
// anything below it is a HOLD. A series without volume data is treated as
// insufficient, not as a HOLD vote.
type VolumeSpike struct {
	window int
	ratio  float64
}

func NewVolumeSpike(window int, ratio float64) *VolumeSpike {
	return &VolumeSpike{window: window, ratio: ratio}
}

func (v *VolumeSpike) Name() string { return IDVolumeSpike }

// MinPoints: window volumes for the baseline plus the current point.
func (v *VolumeSpike) MinPoints() int { return v.window + 1 }

func (v *VolumeSpike) Compute(series *models.PriceSeries) (models.IndicatorSignal, bool) {
	if series.Len() < v.MinPoints() || !series.HasVolume() {
		return models.IndicatorSignal{}, false
	}

	vols := series.Volumes()
	cur := vols[len(vols)-1]
	baseline := sma(vols[:len(vols)-1], v.window)
	if baseline == 0 {
		return models.IndicatorSignal{}, false
	}
	ratio := cur / baseline

	closes := series.Closes()
	trend := closes[len(closes)-1] - closes[len(closes)-1-v.window]

	sig := models.IndicatorSignal{Source: IDVolumeSpike}
	if ratio < v.ratio || trend == 0 {
		sig.Direction = models.Hold
		sig.Confidence = clip(ratio / v.ratio * 50)
		sig.Rationale = fmt.Sprintf("volume %.2fx average, no spike", ratio)
		return sig, true
	}

	if trend > 0 {
		sig.Direction = models.Buy
		sig.Rationale = fmt.Sprintf("volume spike %.2fx on rising prices", ratio)
	} else {
		sig.Direction = models.Sell
		sig.Rationale = fmt.Sprintf("volume spike %.2fx on falling prices", ratio)
	}
	// 50 at the spike threshold, 100 at twice the threshold.
	sig.Confidence = clip(50 + (ratio-v.ratio)/v.ratio*50)
	return sig, true
}
