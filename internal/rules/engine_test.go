package rules_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/festivaldir/curator/internal/models"
	"github.com/festivaldir/curator/internal/rules"
	"github.com/festivaldir/curator/internal/signals"
)

func newEngine(t *testing.T, mode models.Mode) (*rules.Engine, *signals.Extractor) {
	t.Helper()
	kw := signals.DefaultKeywordsV2()
	if mode == models.ModeV1 {
		kw = signals.DefaultKeywordsV1()
	}
	ex := signals.NewExtractor(kw)
	return rules.NewEngine(mode, rules.DefaultThresholds(mode), ex), ex
}

func score(eng *rules.Engine, ex *signals.Extractor, rec *models.ProfileRecord) models.ClassificationResult {
	rec.RecomputeCombinedText()
	return eng.Score(rec, ex.Extract(rec))
}

func TestRejectPredicates(t *testing.T) {
	tests := []struct {
		name       string
		mode       models.Mode
		record     models.ProfileRecord
		wantReject string
		wantScore  float64
	}{
		{
			name: "big brand domain rejected at zero",
			mode: models.ModeV2,
			record: models.ProfileRecord{
				Username:    "badinka",
				Biography:   "rave wear, festival fashion, shop now",
				Followers:   135038,
				ExternalURL: "https://badinka.com",
				Domain:      "badinka.com",
			},
			wantReject: rules.RejectBigBrandDomain,
			wantScore:  0.0,
		},
		{
			name: "follower count above brand threshold",
			mode: models.ModeV2,
			record: models.ProfileRecord{
				Username:    "bigshop",
				Biography:   "handmade festival wear",
				Followers:   135038,
				ExternalURL: "https://example.com/shop",
				Domain:      "example.com",
			},
			wantReject: rules.RejectBrandFollowers,
			wantScore:  0.0,
		},
		{
			name: "follower count below minimum",
			mode: models.ModeV2,
			record: models.ProfileRecord{
				Username:  "tiny",
				Biography: "handmade earrings, dm for orders",
				Followers: 42,
			},
			wantReject: rules.RejectLowFollowers,
			wantScore:  0.05,
		},
		{
			name: "no bio and no url",
			mode: models.ModeV2,
			record: models.ProfileRecord{
				Username:  "silent",
				Followers: 900,
			},
			wantReject: rules.RejectNoContent,
			wantScore:  0.0,
		},
		{
			name: "bare personal bio with no vendor signals",
			mode: models.ModeV2,
			record: models.ProfileRecord{
				Username:  "dallasgirl",
				Biography: "29 Dallas",
				Followers: 1200,
			},
			wantReject: rules.RejectNoVendorSignals,
			wantScore:  0.05,
		},
		{
			name: "bare personal bio scores higher floor in v1",
			mode: models.ModeV1,
			record: models.ProfileRecord{
				Username:  "dallasgirl",
				Biography: "29 Dallas",
				Followers: 1200,
			},
			wantReject: rules.RejectNoVendorSignals,
			wantScore:  0.12,
		},
		{
			name: "personal keywords without product keywords",
			mode: models.ModeV2,
			record: models.ProfileRecord{
				Username:    "ravebae",
				Biography:   "full-time raver | good vibes only",
				Followers:   3200,
				ExternalURL: "https://linktr.ee/ravebae",
				Domain:      "linktr.ee",
			},
			wantReject: rules.RejectPersonalAccount,
			wantScore:  0.10,
		},
		{
			name: "non-shop url with zero product signals",
			mode: models.ModeV2,
			record: models.ProfileRecord{
				Username:    "djset",
				Biography:   "upcoming shows below",
				Followers:   5000,
				ExternalURL: "https://dice.fm/artist/djset",
				Domain:      "dice.fm",
			},
			wantReject: rules.RejectNonShopURL,
			wantScore:  0.10,
		},
		{
			name: "heavy negative signals with no positives",
			mode: models.ModeV2,
			record: models.ProfileRecord{
				Username:    "lensandink",
				Biography:   "photographer | tattoo artist",
				Followers:   4100,
				ExternalURL: "https://lensandink.com",
				Domain:      "lensandink.com",
				IsBusiness:  true,
			},
			wantReject: rules.RejectHeavyNegative,
			wantScore:  0.10,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			eng, ex := newEngine(t, tt.mode)
			rec := tt.record
			res := score(eng, ex, &rec)

			assert.Equal(t, models.ClassNo, res.Classification)
			assert.Equal(t, tt.wantReject, res.RejectedBy)
			assert.InDelta(t, tt.wantScore, res.Score, 0.001)
			require.NotEmpty(t, res.Reasons)
		})
	}
}

func TestRejectOrderFirstMatchWins(t *testing.T) {
	// Triggers both the big-brand domain and the follower predicates; the
	// domain check runs first.
	eng, ex := newEngine(t, models.ModeV2)
	rec := models.ProfileRecord{
		Username:    "dollskill",
		Followers:   2_000_000,
		ExternalURL: "https://dollskill.com",
		Domain:      "dollskill.com",
	}
	res := score(eng, ex, &rec)
	assert.Equal(t, rules.RejectBigBrandDomain, res.RejectedBy)
	assert.Equal(t, 0.0, res.Score)
}

func TestV2AmbiguousVendorGoesToReview(t *testing.T) {
	eng, ex := newEngine(t, models.ModeV2)
	rec := models.ProfileRecord{
		Username:    "dnbeadz",
		Biography:   "handmade kandi and beadwork | dm for orders",
		Followers:   8139,
		Following:   900,
		ExternalURL: "https://dnbeadz.bigcartel.com",
		Domain:      "dnbeadz.bigcartel.com",
	}
	res := score(eng, ex, &rec)

	assert.Equal(t, models.ClassReview, res.Classification)
	assert.Empty(t, res.RejectedBy)
	assert.GreaterOrEqual(t, res.Score, 0.30)
}

func TestV1StrongVendorAutoYes(t *testing.T) {
	eng, ex := newEngine(t, models.ModeV1)
	rec := models.ProfileRecord{
		Username:    "wireworks",
		Biography:   "handmade wire wrapped crystal jewelry | one of a kind | small batch | commissions open",
		Followers:   9200,
		IsBusiness:  true,
		ExternalURL: "https://wireworks.etsy.com/shop/wireworks",
		Domain:      "wireworks.etsy.com",
	}
	res := score(eng, ex, &rec)

	assert.Equal(t, models.ClassYes, res.Classification)
	assert.GreaterOrEqual(t, res.Score, 0.70)
}

func TestV2NeverClassifiesYes(t *testing.T) {
	// Same record that auto-approves under v1. v2 caps rules output at
	// review; yes is reachable only through arbitration and the gate.
	eng, ex := newEngine(t, models.ModeV2)
	rec := models.ProfileRecord{
		Username:    "wireworks",
		Biography:   "handmade wire wrapped crystal jewelry | one of a kind | small batch | commissions open | made to order",
		Followers:   9200,
		IsBusiness:  true,
		ExternalURL: "https://etsy.com/shop/wireworks",
		Domain:      "etsy.com",
	}
	res := score(eng, ex, &rec)

	assert.Equal(t, models.ClassReview, res.Classification)
	assert.NotEqual(t, models.ClassYes, res.Classification)
}

func TestV1AggregatorWithShopPathEarnsBothBonuses(t *testing.T) {
	eng, ex := newEngine(t, models.ModeV1)

	withShopPath := models.ProfileRecord{
		Username:    "kandicrafts",
		Biography:   "handmade jewelry",
		Followers:   5000,
		ExternalURL: "https://linktr.ee/kandicrafts/shop",
		Domain:      "linktr.ee",
	}
	plain := withShopPath
	plain.Username = "kandiplain"
	plain.ExternalURL = "https://linktr.ee/kandicrafts"

	withRes := score(eng, ex, &withShopPath)
	plainRes := score(eng, ex, &plain)

	// 0.5 base + 0.08 product + 0.03 aesthetic + 0.15 shop path + 0.05 URL
	// + 0.05 sweet spot + 0.02 aggregator.
	assert.InDelta(t, 0.88, withRes.Score, 0.001)
	assert.InDelta(t, 0.73, plainRes.Score, 0.001)
	assert.Contains(t, withRes.Reasons, "+0.15 shop URL pattern detected")
	assert.Contains(t, withRes.Reasons, "+0.02 has link aggregator")
}

func TestWorldwideShippingCompoundPenalty(t *testing.T) {
	eng, ex := newEngine(t, models.ModeV1)

	small := models.ProfileRecord{
		Username:    "smallmaker",
		Biography:   "handmade festival wear | worldwide shipping",
		Followers:   8000,
		ExternalURL: "https://smallmaker.com/shop",
		Domain:      "smallmaker.com",
	}
	big := small
	big.Username = "bigmaker"
	big.Followers = 80000

	smallRes := score(eng, ex, &small)
	bigRes := score(eng, ex, &big)

	// The shipping phrase alone is only a keyword penalty; combined with a
	// large following it also takes the compound hit.
	assert.Greater(t, smallRes.Score, bigRes.Score)
}

func TestScoreAlwaysClampedAndRounded(t *testing.T) {
	bios := []string{
		"",
		"handmade handcrafted one of a kind small batch made to order custom order artisan maker resin art macrame crochet beadwork crystal",
		"photographer dj promoter influencer use code realtor fitness lawyer doctor mom of engineer",
		"festival rave boho vintage spiritual mushroom colorful unique sustainable stickers jewelry clothing",
	}
	urls := []struct{ url, domain string }{
		{"", ""},
		{"https://etsy.com/shop/x", "etsy.com"},
		{"https://linktr.ee/x", "linktr.ee"},
		{"https://example.com", "example.com"},
	}
	followers := []int{0, 199, 200, 1000, 50000, 80001, 100001, 600000}

	for _, mode := range []models.Mode{models.ModeV1, models.ModeV2} {
		eng, ex := newEngine(t, mode)
		for bi, bio := range bios {
			for ui, u := range urls {
				for _, f := range followers {
					rec := models.ProfileRecord{
						Username:    fmt.Sprintf("u_%d_%d_%d", bi, ui, f),
						Biography:   bio,
						Followers:   f,
						ExternalURL: u.url,
						Domain:      u.domain,
					}
					res := score(eng, ex, &rec)

					assert.GreaterOrEqual(t, res.Score, 0.0)
					assert.LessOrEqual(t, res.Score, 1.0)
					rounded := float64(int(res.Score*1000+0.5)) / 1000
					assert.InDelta(t, rounded, res.Score, 1e-9)

					if mode == models.ModeV2 {
						assert.NotEqual(t, models.ClassYes, res.Classification)
					}
				}
			}
		}
	}
}

func TestDefaultThresholdsPerMode(t *testing.T) {
	v1 := rules.DefaultThresholds(models.ModeV1)
	v2 := rules.DefaultThresholds(models.ModeV2)

	assert.Equal(t, 100_000, v1.BigBrandFollowers)
	assert.Equal(t, 80_000, v2.BigBrandFollowers)
	assert.Equal(t, 0.25, v1.NoThreshold)
	assert.Equal(t, 0.30, v2.NoThreshold)
	assert.Equal(t, 0.70, v1.YesThreshold)
	assert.Zero(t, v2.YesThreshold)
}
