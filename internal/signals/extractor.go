// Package signals derives normalized keyword and URL signals from scraped
// profile records. Extraction is a pure function: no I/O, deterministic, and
// tolerant of missing fields.
package signals

import (
	"strings"

	"github.com/cloudflare/ahocorasick"

	"github.com/festivaldir/curator/internal/models"
)

// keywordContextLimit caps how many matched keywords per category are carried
// into the signal bundle for LLM prompt context and reasons.
const keywordContextLimit = 5

// Extractor matches a record's combined text against the configured keyword
// categories in a single pass per category and classifies its external URL.
type Extractor struct {
	kw        Keywords
	product   *categoryMatcher
	aesthetic *categoryMatcher
	negative  *categoryMatcher
	personal  *categoryMatcher
}

// NewExtractor builds the per-category Aho-Corasick automatons once; the
// extractor is immutable and safe for concurrent use afterwards.
func NewExtractor(kw Keywords) *Extractor {
	return &Extractor{
		kw:        kw,
		product:   newCategoryMatcher(kw.Product),
		aesthetic: newCategoryMatcher(kw.Aesthetic),
		negative:  newCategoryMatcher(kw.Negative),
		personal:  newCategoryMatcher(kw.Personal),
	}
}

// Extract derives the signal bundle for a record. Counts are distinct
// keywords matched, not occurrence counts.
func (e *Extractor) Extract(rec *models.ProfileRecord) models.SignalBundle {
	text := rec.CombinedText
	if text == "" {
		text = strings.ToLower(strings.Join([]string{
			rec.Biography, rec.WebsiteDescription, rec.WebsiteTitle, rec.Tags,
		}, " | "))
	}

	productCount, productMatched := e.product.match(text)
	aestheticCount, aestheticMatched := e.aesthetic.match(text)
	negativeCount, negativeMatched := e.negative.match(text)
	personalCount, personalMatched := e.personal.match(text)

	return models.SignalBundle{
		ProductSignals:    productCount,
		AestheticSignals:  aestheticCount,
		NegativeSignals:   negativeCount,
		PersonalSignals:   personalCount,
		ProductKeywords:   capList(productMatched),
		AestheticKeywords: capList(aestheticMatched),
		NegativeKeywords:  capList(negativeMatched),
		PersonalKeywords:  capList(personalMatched),
		URLType:           e.ClassifyURL(rec.ExternalURL, rec.Domain),
		IsBusiness:        rec.IsBusiness,
		HasExternalURL:    strings.TrimSpace(rec.ExternalURL) != "",
	}
}

// ClassifyURL buckets an external link. Evaluation order matters: non-shop
// domains are checked before shop path patterns so a ticketing site with a
// /shop-looking path still classifies as non_shop. Big-brand domains are the
// caller's concern (instant reject), not a URL class.
func (e *Extractor) ClassifyURL(rawURL, domain string) models.URLType {
	if strings.TrimSpace(rawURL) == "" {
		return models.URLNone
	}

	domainLower := strings.ToLower(strings.TrimSpace(domain))
	urlLower := strings.ToLower(rawURL)

	for _, nsd := range e.kw.NonShopDomains {
		if strings.Contains(domainLower, nsd) {
			return models.URLNonShop
		}
	}

	for _, sd := range e.kw.ShopDomains {
		if strings.Contains(domainLower, sd) {
			return models.URLShop
		}
	}

	for _, la := range e.kw.AggregatorDomains {
		if strings.Contains(domainLower, la) {
			return models.URLAggregator
		}
	}

	for _, pattern := range e.kw.ShopURLPatterns {
		if strings.Contains(urlLower, pattern) {
			return models.URLShop
		}
	}

	// URL exists; a dotted domain is assumed to be the vendor's own site,
	// and anything else falls back there too.
	return models.URLOwnDomain
}

// HasShopURLPattern reports whether the URL carries a storefront-looking
// path, regardless of which domain bucket the link falls into. A link
// aggregator pointing at a /shop page matches both.
func (e *Extractor) HasShopURLPattern(rawURL string) bool {
	urlLower := strings.ToLower(strings.TrimSpace(rawURL))
	if urlLower == "" {
		return false
	}
	for _, pattern := range e.kw.ShopURLPatterns {
		if strings.Contains(urlLower, pattern) {
			return true
		}
	}
	return false
}

// IsMarketplaceDomain reports whether the domain belongs to a handmade
// marketplace (v1 scoring bonus).
func (e *Extractor) IsMarketplaceDomain(domain string) bool {
	domainLower := strings.ToLower(domain)
	if domainLower == "" {
		return false
	}
	for _, m := range e.kw.MarketplaceDomains {
		if strings.Contains(domainLower, m) {
			return true
		}
	}
	return false
}

// HasWorldwideShippingPhrase reports whether the text carries a
// worldwide-shipping phrase (big-brand compound penalty input).
func (e *Extractor) HasWorldwideShippingPhrase(text string) bool {
	textLower := strings.ToLower(text)
	for _, p := range e.kw.WorldwideShippingPhrases {
		if strings.Contains(textLower, p) {
			return true
		}
	}
	return false
}

// HasDMOrderPhrase reports whether a biography advertises a DM purchase path.
func (e *Extractor) HasDMOrderPhrase(bio string) bool {
	bioLower := strings.ToLower(bio)
	for _, p := range e.kw.DMOrderPhrases {
		if strings.Contains(bioLower, p) {
			return true
		}
	}
	return false
}

// IsBigBrandDomain reports exact membership in the curated big-brand list.
func (e *Extractor) IsBigBrandDomain(domain string) bool {
	domainLower := strings.ToLower(strings.TrimSpace(domain))
	if domainLower == "" {
		return false
	}
	for _, b := range e.kw.BigBrandDomains {
		if domainLower == b {
			return true
		}
	}
	return false
}

// categoryMatcher wraps one Aho-Corasick automaton. Match returns each
// pattern at most once, which is exactly the distinct-keyword semantics the
// scoring formula needs.
type categoryMatcher struct {
	matcher  *ahocorasick.Matcher
	keywords []string
}

func newCategoryMatcher(raw []string) *categoryMatcher {
	keywords := make([]string, 0, len(raw))
	for _, kw := range raw {
		normalized := strings.ToLower(strings.TrimSpace(kw))
		if normalized != "" {
			keywords = append(keywords, normalized)
		}
	}
	if len(keywords) == 0 {
		return &categoryMatcher{}
	}
	return &categoryMatcher{
		matcher:  ahocorasick.NewStringMatcher(keywords),
		keywords: keywords,
	}
}

func (m *categoryMatcher) match(text string) (int, []string) {
	if m.matcher == nil || text == "" {
		return 0, nil
	}
	hits := m.matcher.Match([]byte(text))
	if len(hits) == 0 {
		return 0, nil
	}
	matched := make([]string, 0, len(hits))
	for _, idx := range hits {
		if idx < len(m.keywords) {
			matched = append(matched, m.keywords[idx])
		}
	}
	return len(matched), matched
}

func capList(matched []string) []string {
	if len(matched) > keywordContextLimit {
		return matched[:keywordContextLimit]
	}
	return matched
}
