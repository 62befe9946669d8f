// Package ingest loads scraped profile CSVs and normalizes them into
// ProfileRecords. Scraper output is messy: column names vary between runs,
// URLs arrive wrapped in redirect trackers, and website fields can contain
// raw HTML.
package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"net/url"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/festivaldir/curator/internal/models"
)

var ErrMissingUsernameColumn = errors.New("csv has no username column")

// Column aliases seen across scraper versions, first match wins.
var (
	followersAliases   = []string{"followerscount", "followers_count", "followers"}
	followingAliases   = []string{"followscount", "follows_count", "following", "followingcount"}
	postsAliases       = []string{"postscount", "posts_count", "posts"}
	businessAliases    = []string{"isbusinessaccount", "is_business_account", "is_business"}
	privateAliases     = []string{"isprivate", "is_private"}
	externalURLAliases = []string{"externalurl", "external_url", "website"}
	profileURLAliases  = []string{"profileurl", "profile_url"}
	titleAliases       = []string{"websitetitle", "website_title", "websiteogtitle"}
	descriptionAliases = []string{
		"websiteogdescription", "websitemetadescription",
		"website_og_description", "website_meta_description",
	}
)

var (
	redirectParamRe = regexp.MustCompile(`[?&]u=([^&]+)`)
	schemeRe        = regexp.MustCompile(`^https?://(www\.)?`)
	whitespaceRe    = regexp.MustCompile(`\s+`)
)

type Loader struct {
	logger *zap.Logger
}

func NewLoader(logger *zap.Logger) *Loader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Loader{logger: logger}
}

// LoadCSV reads a scraped profile export. Rows without a username are
// skipped, duplicates keep the first occurrence, and private accounts are
// dropped since their content is not visible to verify.
func (l *Loader) LoadCSV(path string) ([]*models.ProfileRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open input csv: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse input csv: %w", err)
	}
	if len(rows) == 0 {
		return nil, errors.New("input csv is empty")
	}

	header := make(map[string]int, len(rows[0]))
	for i, name := range rows[0] {
		header[strings.ToLower(strings.TrimSpace(name))] = i
	}
	if _, ok := header["username"]; !ok {
		return nil, ErrMissingUsernameColumn
	}

	var (
		records []*models.ProfileRecord
		seen    = map[string]struct{}{}
		private int
		dupes   int
	)

	for _, row := range rows[1:] {
		cell := func(name string) string {
			idx, ok := header[name]
			if !ok || idx >= len(row) {
				return ""
			}
			return strings.TrimSpace(row[idx])
		}
		cellAliased := func(aliases []string) string {
			for _, a := range aliases {
				if idx, ok := header[a]; ok && idx < len(row) {
					return strings.TrimSpace(row[idx])
				}
			}
			return ""
		}

		username := strings.ToLower(cell("username"))
		if username == "" {
			continue
		}
		if _, dup := seen[username]; dup {
			dupes++
			continue
		}
		seen[username] = struct{}{}

		if parseBool(cellAliased(privateAliases)) {
			private++
			continue
		}

		externalURL := unwrapRedirect(cellAliased(externalURLAliases))

		rec := &models.ProfileRecord{
			Username:           username,
			Biography:          cell("biography"),
			Followers:          parseInt(cellAliased(followersAliases)),
			Following:          parseInt(cellAliased(followingAliases)),
			Posts:              parseInt(cellAliased(postsAliases)),
			IsBusiness:         parseBool(cellAliased(businessAliases)),
			ExternalURL:        externalURL,
			Domain:             extractDomain(externalURL),
			ProfileURL:         cellAliased(profileURLAliases),
			WebsiteTitle:       stripHTML(cellAliased(titleAliases)),
			WebsiteDescription: stripHTML(joinDescriptions(row, header)),
			Tags:               cell("tags"),
		}
		if rec.ProfileURL == "" {
			rec.ProfileURL = "https://www.instagram.com/" + username + "/"
		}
		rec.RecomputeCombinedText()

		records = append(records, rec)
	}

	l.logger.Info("Loaded profile records",
		zap.String("path", path),
		zap.Int("records", len(records)),
		zap.Int("duplicates_dropped", dupes),
		zap.Int("private_dropped", private),
	)

	return records, nil
}

// joinDescriptions merges the og/meta description columns, deduplicated,
// pipe-separated. Scrapers often fill both with the same text.
func joinDescriptions(row []string, header map[string]int) string {
	var parts []string
	seen := map[string]struct{}{}
	for _, alias := range descriptionAliases {
		idx, ok := header[alias]
		if !ok || idx >= len(row) {
			continue
		}
		v := strings.TrimSpace(row[idx])
		if v == "" {
			continue
		}
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		parts = append(parts, v)
	}
	return strings.Join(parts, " | ")
}

// unwrapRedirect extracts the destination from an Instagram redirect wrapper
// (https://l.instagram.com/?u=ENCODED&e=...). Anything that is not an http
// URL after unwrapping is discarded.
func unwrapRedirect(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	if m := redirectParamRe.FindStringSubmatch(raw); m != nil {
		if decoded, err := url.QueryUnescape(m[1]); err == nil {
			return decoded
		}
	}
	if strings.HasPrefix(raw, "http") {
		return raw
	}
	return ""
}

// extractDomain strips scheme, www prefix and path, lowercased.
func extractDomain(u string) string {
	if u == "" {
		return ""
	}
	domain := schemeRe.ReplaceAllString(u, "")
	if idx := strings.IndexByte(domain, '/'); idx >= 0 {
		domain = domain[:idx]
	}
	return strings.ToLower(domain)
}

// stripHTML removes markup from scraped website fields and collapses
// whitespace. Plain text passes through unchanged.
func stripHTML(s string) string {
	if s == "" || !strings.ContainsRune(s, '<') {
		return collapseWhitespace(s)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return collapseWhitespace(s)
	}
	doc.Find("script, style").Each(func(_ int, sel *goquery.Selection) {
		sel.Remove()
	})
	return collapseWhitespace(doc.Text())
}

func collapseWhitespace(s string) string {
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(s, " "))
}

func parseInt(s string) int {
	if s == "" {
		return 0
	}
	if n, err := strconv.ParseFloat(s, 64); err == nil {
		return int(n)
	}
	return 0
}

func parseBool(s string) bool {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "TRUE", "1", "YES":
		return true
	}
	return false
}
