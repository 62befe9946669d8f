package curator

import (
	"strings"

	"github.com/festivaldir/curator/internal/models"
)

// Gate check names, in evaluation order. First failure wins.
const (
	GateLowScore   = "low_score"
	GateNoShop     = "no_shop"
	GateNoProducts = "no_products"
	GateNonShopURL = "non_shop_url"
)

const gateNoShopAnnotation = "GATE: rejected, no shop URL"

// DMOrderMatcher reports whether a biography advertises a direct-message
// purchase path. Satisfied by signals.Extractor.
type DMOrderMatcher interface {
	HasDMOrderPhrase(bio string) bool
}

// Gate applies the hard approval requirements after LLM scoring. A high LLM
// score alone is never enough: the vendor must have a verifiable way to buy.
type Gate struct {
	threshold float64
	dm        DMOrderMatcher
}

func NewGate(threshold float64, dm DMOrderMatcher) *Gate {
	return &Gate{threshold: threshold, dm: dm}
}

// Apply decides the final classification for one arbitrated record. The
// final score is the LLM score whether the record passes or not; only the
// classification depends on the checks. Returns the failed check name, empty
// on approval.
func (g *Gate) Apply(sr *models.ScoredRecord) string {
	score := 0.0
	if sr.LLMScore != nil {
		score = *sr.LLMScore
	}
	sr.FinalScore = score

	if score < g.threshold {
		sr.FinalClassification = models.ClassNo
		return GateLowScore
	}

	if !g.hasPurchasePath(sr) {
		sr.FinalClassification = models.ClassNo
		sr.LLMReason = strings.Trim(sr.LLMReason+" | "+gateNoShopAnnotation, " |")
		return GateNoShop
	}

	if sr.Verdict != nil && sr.Verdict.SellsProducts != nil && !*sr.Verdict.SellsProducts {
		sr.FinalClassification = models.ClassNo
		return GateNoProducts
	}

	if sr.Signals.URLType == models.URLNonShop {
		sr.FinalClassification = models.ClassNo
		return GateNonShopURL
	}

	sr.FinalClassification = models.ClassYes
	return ""
}

// hasPurchasePath accepts shop and own-domain URLs outright, aggregators on
// the grounds that a confident LLM score implies the linked page sells, and
// DM-order phrasing in the bio as a last resort.
func (g *Gate) hasPurchasePath(sr *models.ScoredRecord) bool {
	switch sr.Signals.URLType {
	case models.URLShop, models.URLOwnDomain, models.URLAggregator:
		return true
	}
	return g.dm != nil && g.dm.HasDMOrderPhrase(sr.Record.Biography)
}
