package rules

import (
	"github.com/festivaldir/curator/internal/models"
	"github.com/festivaldir/curator/pkg/config"
)

// ThresholdsFromConfig overlays configured overrides onto the mode defaults.
// Zero values in the config mean "keep the default".
func ThresholdsFromConfig(mode models.Mode, rc config.RulesConfig) Thresholds {
	th := DefaultThresholds(mode)
	if rc.MinFollowers > 0 {
		th.MinFollowers = rc.MinFollowers
	}
	if rc.MaxFollowers > 0 {
		th.MaxFollowers = rc.MaxFollowers
	}
	if rc.BigBrandFollowers > 0 {
		th.BigBrandFollowers = rc.BigBrandFollowers
	}
	if rc.NoThreshold > 0 {
		th.NoThreshold = rc.NoThreshold
	}
	if rc.YesThreshold > 0 {
		th.YesThreshold = rc.YesThreshold
	}
	if rc.FinalInclusion > 0 {
		th.FinalInclusion = rc.FinalInclusion
	}
	if rc.LLMYesThreshold > 0 {
		th.LLMYesThreshold = rc.LLMYesThreshold
	}
	return th
}
