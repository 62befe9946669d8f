// Package models defines the domain types shared across the curation
// pipeline: input profile records, derived signal bundles, classification
// results and cached LLM verdicts.
package models

import "strings"

// URLType classifies a profile's external link.
type URLType string

const (
	URLNone       URLType = "none"
	URLShop       URLType = "shop"
	URLAggregator URLType = "aggregator"
	URLNonShop    URLType = "non_shop"
	URLOwnDomain  URLType = "own_domain"
)

// Classification is the rules/final verdict for a record. The value set
// depends on the pipeline mode: v1 uses yes/no/maybe, v2 uses no/review with
// yes reachable only through the LLM and the validation gate.
type Classification string

const (
	ClassYes           Classification = "yes"
	ClassNo            Classification = "no"
	ClassMaybe         Classification = "maybe"
	ClassReview        Classification = "review"
	ClassReviewPending Classification = "review_pending"
)

// Mode selects which pipeline philosophy the rules engine applies.
type Mode string

const (
	ModeV1 Mode = "v1"
	ModeV2 Mode = "v2"
)

// ProfileRecord is one scraped account, normalized by the loader. Immutable
// once loaded except through RecomputeCombinedText.
type ProfileRecord struct {
	Username           string `json:"username"`
	Biography          string `json:"biography"`
	Followers          int    `json:"followers"`
	Following          int    `json:"following"`
	Posts              int    `json:"posts"`
	IsBusiness         bool   `json:"is_business"`
	IsPrivate          bool   `json:"is_private"`
	ExternalURL        string `json:"external_url"`
	Domain             string `json:"domain"`
	ProfileURL         string `json:"profile_url"`
	WebsiteTitle       string `json:"website_title"`
	WebsiteDescription string `json:"website_description"`
	Tags               string `json:"tags"`

	// CombinedText is the lowercased concatenation of biography, website
	// description, website title and tags. It is the sole surface for
	// keyword matching and must be recomputed whenever a contributing
	// field changes.
	CombinedText string `json:"-"`
}

// RecomputeCombinedText rebuilds CombinedText from the contributing fields.
func (r *ProfileRecord) RecomputeCombinedText() {
	r.CombinedText = strings.ToLower(strings.Join([]string{
		r.Biography,
		r.WebsiteDescription,
		r.WebsiteTitle,
		r.Tags,
	}, " | "))
}

// SignalBundle holds the signals derived from one record. Counts are distinct
// keywords matched, not occurrences, which caps the influence of keyword
// stuffing.
type SignalBundle struct {
	ProductSignals    int      `json:"product_signals"`
	AestheticSignals  int      `json:"aesthetic_signals"`
	NegativeSignals   int      `json:"negative_signals"`
	PersonalSignals   int      `json:"personal_signals"`
	ProductKeywords   []string `json:"product_keywords,omitempty"`
	AestheticKeywords []string `json:"aesthetic_keywords,omitempty"`
	NegativeKeywords  []string `json:"negative_keywords,omitempty"`
	PersonalKeywords  []string `json:"personal_keywords,omitempty"`
	URLType           URLType  `json:"url_type"`
	IsBusiness        bool     `json:"is_business"`
	HasExternalURL    bool     `json:"has_external_url"`
}

// ClassificationResult is the rules engine output for one record.
type ClassificationResult struct {
	Score          float64        `json:"score"`
	Classification Classification `json:"classification"`
	Reasons        []string       `json:"reasons"`
	// RejectedBy names the reject predicate that short-circuited, empty if
	// the record reached weighted scoring.
	RejectedBy string `json:"rejected_by,omitempty"`
}

// Verdict is one cached LLM judgement, keyed by username in the verdict
// store. Sub-verdict pointers are nil for v1 verdicts which carry only a
// score and reason.
type Verdict struct {
	Score             float64 `json:"score"`
	Reason            string  `json:"reason"`
	SellsProducts     *bool   `json:"sells_products,omitempty"`
	HasShop           *bool   `json:"has_shop,omitempty"`
	FestivalAesthetic *bool   `json:"festival_aesthetic,omitempty"`
}

// ScoredRecord carries one record through the pipeline stages.
type ScoredRecord struct {
	Record  *ProfileRecord
	Signals SignalBundle
	Rules   ClassificationResult

	LLMScore  *float64
	LLMReason string
	Verdict   *Verdict

	FinalScore          float64
	FinalClassification Classification

	Categories []string
	Tags       []string
}

// Escalated reports whether the rules engine deferred this record to the LLM.
func (s *ScoredRecord) Escalated() bool {
	return s.Rules.Classification == ClassMaybe || s.Rules.Classification == ClassReview
}

// ApplyVerdict records an LLM verdict on the record without deciding the
// final classification; merging is the pipeline's job.
func (s *ScoredRecord) ApplyVerdict(v Verdict) {
	score := v.Score
	s.Verdict = &v
	s.LLMScore = &score
	s.LLMReason = v.Reason
}
