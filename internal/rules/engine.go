// Package rules implements the deterministic scoring stage: ordered
// instant-reject predicates followed by weighted, capped signal scoring.
//
// Two operating modes share the structure. v1 may classify yes, no or maybe
// on its own. v2 is a bouncer, not a judge: it only rejects, and everything
// that survives goes to the LLM as "review".
package rules

import (
	"fmt"
	"math"
	"strings"

	"github.com/festivaldir/curator/internal/models"
	"github.com/festivaldir/curator/internal/signals"
)

// Thresholds are the audited numeric boundaries for one pipeline mode.
type Thresholds struct {
	MinFollowers      int
	MaxFollowers      int
	BigBrandFollowers int
	MaxFollowingRatio float64

	// NoThreshold bounds the reject band; YesThreshold only exists in v1.
	NoThreshold  float64
	YesThreshold float64

	// FinalInclusion is the v1 LLM score merge threshold; LLMYesThreshold
	// is the v2 gate approval threshold.
	FinalInclusion  float64
	LLMYesThreshold float64
}

// DefaultThresholds returns the tuned defaults for a mode.
func DefaultThresholds(mode models.Mode) Thresholds {
	if mode == models.ModeV1 {
		return Thresholds{
			MinFollowers:      200,
			MaxFollowers:      500_000,
			BigBrandFollowers: 100_000,
			MaxFollowingRatio: 5.0,
			NoThreshold:       0.25,
			YesThreshold:      0.70,
			FinalInclusion:    0.55,
			LLMYesThreshold:   0.70,
		}
	}
	return Thresholds{
		MinFollowers:      200,
		MaxFollowers:      500_000,
		BigBrandFollowers: 80_000,
		MaxFollowingRatio: 5.0,
		NoThreshold:       0.30,
		FinalInclusion:    0.55,
		LLMYesThreshold:   0.70,
	}
}

// Reject predicate names, recorded in results and metrics.
const (
	RejectBigBrandDomain  = "big_brand_domain"
	RejectBrandFollowers  = "followers_above_brand_threshold"
	RejectLowFollowers    = "followers_below_minimum"
	RejectNoContent       = "no_content"
	RejectNoVendorSignals = "no_vendor_signals"
	RejectPersonalAccount = "personal_account"
	RejectNonShopURL      = "non_shop_url_no_products"
	RejectHeavyNegative   = "heavy_negative_signals"
)

// Engine scores records against one mode's thresholds. It never mutates the
// record or the bundle.
type Engine struct {
	mode models.Mode
	th   Thresholds
	ex   *signals.Extractor
}

func NewEngine(mode models.Mode, th Thresholds, ex *signals.Extractor) *Engine {
	return &Engine{mode: mode, th: th, ex: ex}
}

func (e *Engine) Mode() models.Mode      { return e.mode }
func (e *Engine) Thresholds() Thresholds { return e.th }

// Score applies the reject predicates in order (first true wins), then the
// weighted accumulation if nothing short-circuited.
func (e *Engine) Score(rec *models.ProfileRecord, sig models.SignalBundle) models.ClassificationResult {
	if res, rejected := e.reject(rec, sig); rejected {
		return res
	}
	if e.mode == models.ModeV1 {
		return e.scoreV1(rec, sig)
	}
	return e.scoreV2(rec, sig)
}

func (e *Engine) reject(rec *models.ProfileRecord, sig models.SignalBundle) (models.ClassificationResult, bool) {
	v1 := e.mode == models.ModeV1

	if e.ex.IsBigBrandDomain(rec.Domain) {
		return rejectResult(RejectBigBrandDomain, 0.0,
			fmt.Sprintf("known big brand domain: %s", rec.Domain)), true
	}

	if rec.Followers > e.th.BigBrandFollowers {
		score := 0.0
		if v1 {
			score = 0.05
		}
		return rejectResult(RejectBrandFollowers, score,
			fmt.Sprintf("followers (%d) exceed brand threshold (%d)", rec.Followers, e.th.BigBrandFollowers)), true
	}

	if rec.Followers < e.th.MinFollowers {
		score := 0.05
		if v1 {
			score = 0.10
		}
		return rejectResult(RejectLowFollowers, score,
			fmt.Sprintf("followers (%d) below minimum (%d)", rec.Followers, e.th.MinFollowers)), true
	}

	textContent := strings.TrimSpace(strings.ReplaceAll(rec.CombinedText, "|", ""))
	if textContent == "" && !sig.HasExternalURL {
		score := 0.0
		if v1 {
			score = 0.05
		}
		return rejectResult(RejectNoContent, score,
			"no bio and no URL, nothing to evaluate"), true
	}

	if sig.URLType == models.URLNone && !rec.IsBusiness &&
		sig.ProductSignals == 0 && sig.AestheticSignals == 0 {
		score := 0.05
		if v1 {
			score = 0.12
		}
		return rejectResult(RejectNoVendorSignals, score,
			"no URL, not a business account, no vendor keywords"), true
	}

	if v1 {
		// v1 personal-account heuristic: follows far more than followed.
		ratio := float64(rec.Following) / math.Max(float64(rec.Followers), 1)
		if sig.URLType == models.URLNone && !rec.IsBusiness &&
			ratio > e.th.MaxFollowingRatio &&
			sig.ProductSignals == 0 && sig.AestheticSignals == 0 {
			return rejectResult(RejectPersonalAccount, 0.10,
				"personal account pattern (no URL, not business, high follow ratio, no vendor keywords)"), true
		}
	} else if sig.PersonalSignals > 0 && sig.ProductSignals == 0 {
		return rejectResult(RejectPersonalAccount, 0.10,
			fmt.Sprintf("personal account signals %v with no product keywords", sig.PersonalKeywords)), true
	}

	if !v1 && sig.URLType == models.URLNonShop && sig.ProductSignals == 0 {
		return rejectResult(RejectNonShopURL, 0.10,
			fmt.Sprintf("non-shop URL (%s) with no product keywords", rec.Domain)), true
	}

	if sig.NegativeSignals >= 2 && sig.ProductSignals == 0 && sig.AestheticSignals == 0 {
		return rejectResult(RejectHeavyNegative, 0.10,
			fmt.Sprintf("multiple negative signals %v with no positives", sig.NegativeKeywords)), true
	}

	return models.ClassificationResult{}, false
}

func (e *Engine) scoreV1(rec *models.ProfileRecord, sig models.SignalBundle) models.ClassificationResult {
	score := 0.5
	var reasons []string

	if sig.ProductSignals > 0 {
		boost := math.Min(float64(sig.ProductSignals)*0.08, 0.35)
		score += boost
		reasons = append(reasons, fmt.Sprintf("+%.2f strong positive keywords (%d matches)", boost, sig.ProductSignals))
	}

	if sig.AestheticSignals > 0 {
		boost := math.Min(float64(sig.AestheticSignals)*0.03, 0.15)
		score += boost
		reasons = append(reasons, fmt.Sprintf("+%.2f weak positive keywords (%d matches)", boost, sig.AestheticSignals))
	}

	if sig.NegativeSignals > 0 {
		penalty := math.Min(float64(sig.NegativeSignals)*0.12, 0.40)
		score -= penalty
		reasons = append(reasons, fmt.Sprintf("-%.2f negative keywords (%d matches)", penalty, sig.NegativeSignals))
	}

	// Checked on the raw URL, not the URL bucket: an aggregator link with a
	// /shop path earns this bonus and the aggregator bonus independently.
	if e.ex.HasShopURLPattern(rec.ExternalURL) {
		score += 0.15
		reasons = append(reasons, "+0.15 shop URL pattern detected")
	}

	if rec.IsBusiness {
		score += 0.08
		reasons = append(reasons, "+0.08 business account flag")
	}

	if sig.HasExternalURL {
		score += 0.05
		reasons = append(reasons, "+0.05 has external URL")
	}

	if e.ex.IsMarketplaceDomain(rec.Domain) {
		score += 0.15
		reasons = append(reasons, "+0.15 handmade marketplace URL")
	}

	switch {
	case rec.Followers >= 1000 && rec.Followers <= 50000:
		score += 0.05
		reasons = append(reasons, "+0.05 follower count in small business sweet spot")
	case rec.Followers > e.th.MaxFollowers:
		score -= 0.15
		reasons = append(reasons, fmt.Sprintf("-0.15 very high followers (%d)", rec.Followers))
	}

	if e.ex.HasWorldwideShippingPhrase(rec.CombinedText) && rec.Followers > 50000 {
		score -= 0.20
		reasons = append(reasons, "-0.20 big brand shipping pattern")
	}

	if sig.URLType == models.URLAggregator {
		score += 0.02
		reasons = append(reasons, "+0.02 has link aggregator")
	}

	score = clamp3(score)

	classification := models.ClassMaybe
	switch {
	case score >= e.th.YesThreshold:
		classification = models.ClassYes
	case score <= e.th.NoThreshold:
		classification = models.ClassNo
	}

	return models.ClassificationResult{
		Score:          score,
		Classification: classification,
		Reasons:        reasons,
	}
}

func (e *Engine) scoreV2(rec *models.ProfileRecord, sig models.SignalBundle) models.ClassificationResult {
	// Base score means "survived rejection"; the result prioritizes LLM
	// review, it is not an approval.
	score := 0.3
	var reasons []string

	if sig.ProductSignals > 0 {
		score += math.Min(float64(sig.ProductSignals)*0.06, 0.25)
		reasons = append(reasons, fmt.Sprintf("+product signals: %v", topN(sig.ProductKeywords, 3)))
	}

	if sig.AestheticSignals > 0 {
		score += math.Min(float64(sig.AestheticSignals)*0.04, 0.15)
		reasons = append(reasons, fmt.Sprintf("+aesthetic signals: %v", topN(sig.AestheticKeywords, 3)))
	}

	switch sig.URLType {
	case models.URLShop:
		score += 0.15
		reasons = append(reasons, fmt.Sprintf("+shop URL (%s)", rec.Domain))
	case models.URLOwnDomain:
		score += 0.10
		reasons = append(reasons, fmt.Sprintf("+own domain (%s)", rec.Domain))
	case models.URLAggregator:
		score += 0.05
		reasons = append(reasons, fmt.Sprintf("+link aggregator (%s)", rec.Domain))
	case models.URLNonShop:
		score -= 0.10
		reasons = append(reasons, fmt.Sprintf("-non-shop URL (%s)", rec.Domain))
	}

	if rec.IsBusiness {
		score += 0.05
		reasons = append(reasons, "+business account")
	}

	if sig.NegativeSignals > 0 {
		score -= math.Min(float64(sig.NegativeSignals)*0.08, 0.25)
		reasons = append(reasons, fmt.Sprintf("-negative: %v", topN(sig.NegativeKeywords, 3)))
	}

	if e.ex.HasWorldwideShippingPhrase(rec.CombinedText) && rec.Followers > 50000 {
		score -= 0.20
		reasons = append(reasons, "-big brand shipping pattern")
	}

	score = clamp3(score)

	classification := models.ClassReview
	if score < e.th.NoThreshold {
		classification = models.ClassNo
	}

	return models.ClassificationResult{
		Score:          score,
		Classification: classification,
		Reasons:        reasons,
	}
}

func rejectResult(predicate string, score float64, reason string) models.ClassificationResult {
	return models.ClassificationResult{
		Score:          score,
		Classification: models.ClassNo,
		Reasons:        []string{reason},
		RejectedBy:     predicate,
	}
}

func clamp3(score float64) float64 {
	score = math.Max(0.0, math.Min(1.0, score))
	return math.Round(score*1000) / 1000
}

func topN(list []string, n int) []string {
	if len(list) > n {
		return list[:n]
	}
	return list
}
