package signals_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/festivaldir/curator/internal/models"
	"github.com/festivaldir/curator/internal/signals"
)

func TestClassifyURLPriority(t *testing.T) {
	ex := signals.NewExtractor(signals.DefaultKeywordsV2())

	tests := []struct {
		name   string
		url    string
		domain string
		want   models.URLType
	}{
		{"empty url", "", "", models.URLNone},
		{"ticketing site", "https://dice.fm/event/x", "dice.fm", models.URLNonShop},
		{"ticketing site with shop-looking path", "https://eventbrite.com/shop", "eventbrite.com", models.URLNonShop},
		{"etsy shop", "https://etsy.com/shop/maker", "etsy.com", models.URLShop},
		{"bigcartel subdomain", "https://maker.bigcartel.com", "maker.bigcartel.com", models.URLShop},
		{"link aggregator", "https://linktr.ee/maker", "linktr.ee", models.URLAggregator},
		{"own domain with shop path", "https://mybrand.com/shop", "mybrand.com", models.URLShop},
		{"own domain plain", "https://mybrand.com", "mybrand.com", models.URLOwnDomain},
		{"soundcloud profile", "https://on.soundcloud.com/xyz", "on.soundcloud.com", models.URLNonShop},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ex.ClassifyURL(tt.url, tt.domain))
		})
	}
}

func TestExtractCountsDistinctKeywords(t *testing.T) {
	ex := signals.NewExtractor(signals.DefaultKeywordsV2())

	rec := &models.ProfileRecord{
		Username: "maker",
		// "handmade" appears three times but counts once.
		Biography: "handmade handmade handmade macrame and beadwork",
	}
	rec.RecomputeCombinedText()

	sig := ex.Extract(rec)
	assert.Equal(t, 3, sig.ProductSignals)
	assert.ElementsMatch(t, []string{"handmade", "macrame", "beadwork"}, sig.ProductKeywords)
}

func TestExtractIsCaseInsensitive(t *testing.T) {
	ex := signals.NewExtractor(signals.DefaultKeywordsV2())

	rec := &models.ProfileRecord{Username: "maker", Biography: "HANDMADE Tie Dye"}
	rec.RecomputeCombinedText()

	sig := ex.Extract(rec)
	assert.Equal(t, 1, sig.ProductSignals)
	assert.Equal(t, 1, sig.AestheticSignals)
}

func TestExtractIsIdempotent(t *testing.T) {
	ex := signals.NewExtractor(signals.DefaultKeywordsV2())

	rec := &models.ProfileRecord{
		Username:    "maker",
		Biography:   "handmade resin art | dm for orders",
		ExternalURL: "https://etsy.com/shop/maker",
		Domain:      "etsy.com",
		IsBusiness:  true,
	}
	rec.RecomputeCombinedText()

	first := ex.Extract(rec)
	second := ex.Extract(rec)
	assert.Equal(t, first, second)
}

func TestExtractToleratesEmptyRecord(t *testing.T) {
	ex := signals.NewExtractor(signals.DefaultKeywordsV2())

	sig := ex.Extract(&models.ProfileRecord{Username: "empty"})
	assert.Zero(t, sig.ProductSignals)
	assert.Zero(t, sig.NegativeSignals)
	assert.Equal(t, models.URLNone, sig.URLType)
	assert.False(t, sig.HasExternalURL)
}

func TestExtractPersonalSignals(t *testing.T) {
	ex := signals.NewExtractor(signals.DefaultKeywordsV2())

	rec := &models.ProfileRecord{
		Username:  "partygoer",
		Biography: "full-time raver | festival junkie | good vibes only",
	}
	rec.RecomputeCombinedText()

	sig := ex.Extract(rec)
	assert.Equal(t, 3, sig.PersonalSignals)
	assert.Zero(t, sig.ProductSignals)
}

func TestBigBrandDomainIsExactMatch(t *testing.T) {
	ex := signals.NewExtractor(signals.DefaultKeywordsV2())

	assert.True(t, ex.IsBigBrandDomain("dollskill.com"))
	assert.True(t, ex.IsBigBrandDomain("DollsKill.com"))
	// Substring of a big brand is not a big brand.
	assert.False(t, ex.IsBigBrandDomain("notdollskill.com"))
	assert.False(t, ex.IsBigBrandDomain(""))
}

func TestHelperPredicates(t *testing.T) {
	ex := signals.NewExtractor(signals.DefaultKeywordsV2())

	assert.True(t, ex.IsMarketplaceDomain("shop.etsy.com"))
	assert.False(t, ex.IsMarketplaceDomain("example.com"))

	assert.True(t, ex.HasWorldwideShippingPhrase("We offer WORLDWIDE SHIPPING on all orders"))
	assert.False(t, ex.HasWorldwideShippingPhrase("ships from portland"))

	assert.True(t, ex.HasDMOrderPhrase("DM to order your custom piece"))
	assert.False(t, ex.HasDMOrderPhrase("dm me for good vibes"))
}
