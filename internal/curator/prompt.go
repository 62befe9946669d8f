package curator

import (
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/festivaldir/curator/internal/models"
)

const arbitratorSystemPromptV1 = `You are a festival vendor curator. Your job is to evaluate Instagram accounts and determine if they are SMALL, INDEPENDENT, HANDMADE/CREATIVE vendors that would be a good fit for a psychedelic/festival vendor directory.

IDEAL VENDORS (score 0.7-1.0):
- Handmade, one-of-a-kind products (clothing, jewelry, art, toys, decor)
- Small batch, artisan-crafted items
- Psychedelic, trippy, colorful, unique aesthetic
- Independent creators/makers (not resellers)
- Festival-oriented products that are genuinely creative
- Etsy shops, small Shopify stores, independent artists

REJECT (score 0.0-0.3):
- Big brands or mass-produced "rave wear" companies
- Drop-shipping or wholesale resellers
- Generic fast fashion marketed as "festival" wear
- Personal accounts (not selling anything)
- Photographers, DJs, promoters, service providers (not product vendors)
- Accounts with no clear product offering

BORDERLINE (score 0.3-0.7):
- Small businesses that sell festival-adjacent items but aren't particularly unique
- Artists who may sell prints but it's unclear from their bio
- Accounts that seem creative but have limited information

For each account, return a score from 0.0 to 1.0 and a brief reason.

IMPORTANT: Respond ONLY with valid JSON. No markdown, no extra text.`

const arbitratorSystemPromptV2 = `You are a strict curator for a HANDMADE TRIPPY FESTIVAL VENDOR directory. You are the final gatekeeper. Only approve vendors you'd personally recommend to someone looking for unique, one-of-a-kind festival gear.

For each account, answer THREE questions:
1. SELLS PRODUCTS? Does this account sell tangible products (not services, events, or content)?
2. HAS SHOP? Is there a way to buy from them (shop URL, Etsy, marketplace, "DM for orders")?
3. FESTIVAL AESTHETIC? Is their style trippy, psychedelic, bohemian, rave, colorful, or uniquely creative? (NOT generic fashion, high fashion, or mass-produced)

SCORING GUIDE:
0.85-1.0: Perfect fit. Handmade + trippy/unique + clear shop. Examples: handmade beaded rave accessories, psychedelic tie-dye clothing, one-of-a-kind resin art, custom festival harnesses.
0.70-0.84: Good fit. Sells creative products, has a shop, festival-adjacent aesthetic.
0.50-0.69: Borderline. Missing one of: shop link, aesthetic fit, or unclear if they sell.
0.20-0.49: Probably not. Influencer, personal account, wrong aesthetic, or no products.
0.00-0.19: Definitely not. DJ, photographer, event promoter, big brand, personal account.

CRITICAL RULES - these override everything:
- NO SHOP/BUY PATH = max score 0.50 (even if everything else is perfect)
- Influencer/affiliate accounts (promote others' products) = max score 0.20
- Personal raver accounts (attend festivals, don't sell) = max score 0.15
- Event organizers/promoters (even with merch) = max score 0.30
- "Slow fashion" / "minimalist" / high fashion designers = max score 0.40 (wrong aesthetic)
- Photographers, DJs, performers, service providers = max score 0.15

RESPOND WITH ONLY A JSON ARRAY. No markdown, no explanation outside JSON.`

func arbitratorSystemPrompt(mode models.Mode) string {
	if mode == models.ModeV1 {
		return arbitratorSystemPromptV1
	}
	return arbitratorSystemPromptV2
}

func arbitratorUserPrompt(mode models.Mode, accountsText string) string {
	if mode == models.ModeV1 {
		return fmt.Sprintf(`Evaluate these Instagram accounts for our festival vendor directory.

For each account, return a JSON array with objects containing:
- "username": the account username
- "score": float 0.0-1.0
- "reason": brief explanation (under 20 words)

Accounts to evaluate:
%s

Respond with ONLY a JSON array. Example format:
[{"username": "example", "score": 0.85, "reason": "Handmade beaded jewelry, clearly artisan-crafted"}]`, accountsText)
	}
	return fmt.Sprintf(`Score these accounts for the festival vendor directory.

Return JSON array:
[{"username": "x", "sells_products": true/false, "has_shop": true/false, "festival_aesthetic": true/false, "score": 0.0-1.0, "reason": "brief explanation"}]

Accounts:
%s

JSON:`, accountsText)
}

// formatAccountLine renders one escalated record for the arbitration prompt.
// v2 includes the structured signals the rules engine extracted so the model
// judges with the same evidence the rules saw.
func formatAccountLine(sr *models.ScoredRecord, mode models.Mode) string {
	rec := sr.Record
	parts := []string{"@" + rec.Username}

	if rec.Followers > 0 {
		parts = append(parts, fmt.Sprintf("(%d followers)", rec.Followers))
	}
	if rec.IsBusiness {
		parts = append(parts, "[business account]")
	}

	v2 := mode == models.ModeV2
	if v2 {
		parts = append(parts, fmt.Sprintf("[URL: %s]", sr.Signals.URLType))
	}

	bioLimit := 200
	if v2 {
		bioLimit = 250
	}
	if bio := strings.TrimSpace(rec.Biography); bio != "" {
		parts = append(parts, fmt.Sprintf("Bio: %q", truncate(bio, bioLimit)))
	}

	if url := strings.TrimSpace(rec.ExternalURL); url != "" {
		if v2 {
			link := strings.TrimSpace(rec.Domain)
			if link == "" {
				link = truncate(url, 60)
			}
			parts = append(parts, "Link: "+link)
		} else {
			parts = append(parts, "URL: "+url)
		}
	}

	if desc := strings.TrimSpace(rec.WebsiteDescription); desc != "" && desc != "|" {
		parts = append(parts, fmt.Sprintf("Site desc: %q", truncate(desc, 150)))
	}

	if v2 {
		if title := strings.TrimSpace(rec.WebsiteTitle); title != "" {
			parts = append(parts, fmt.Sprintf("Site title: %q", truncate(title, 80)))
		}
		if len(sr.Signals.ProductKeywords) > 0 {
			parts = append(parts, fmt.Sprintf("Product signals: %v", sr.Signals.ProductKeywords))
		}
		if len(sr.Signals.NegativeKeywords) > 0 {
			parts = append(parts, fmt.Sprintf("Warning signals: %v", sr.Signals.NegativeKeywords))
		}
	}

	return strings.Join(parts, " | ")
}

func taggerSystemPrompt(categories []string) string {
	encoded, _ := json.Marshal(categories)
	return fmt.Sprintf(`You categorize festival vendors. Assign 1-2 categories from this EXACT list:
%s

Base your decision on what they SELL, not just vibes.
- Clothing/wearables -> "Festival Clothing"
- Jewelry, necklaces, bracelets, kandi, chains -> "Jewelry & Accessories"
- Paintings, prints, digital art, murals -> "Art & Prints"
- Lamps, furniture, tapestries -> "Home Decor"
- Figurines, plushies, sculptures, toys -> "Toys & Sculptures"
- Bags, fanny packs, hydration packs -> "Bags & Packs"
- Face gems, body paint, cosmetics -> "Body Art & Cosmetics"
- Stickers, patches, pins, enamel pins -> "Stickers & Patches"
- If unclear, use "Other Handmade"

Also generate 3-5 short search tags (2-3 words each) that describe what they sell.
Example tags: "beaded jewelry", "tie dye shirts", "resin earrings", "crochet tops"

Respond ONLY with JSON array. No markdown.`, encoded)
}

func taggerUserPrompt(vendorsText string) string {
	return fmt.Sprintf(`Categorize and tag these vendors:

%s

Return JSON: [{"username": "x", "categories": ["Cat1"], "tags": ["tag1", "tag2", "tag3"]}]`, vendorsText)
}

// formatVendorLine renders one approved vendor for the tagging prompt.
func formatVendorLine(rec *models.ProfileRecord) string {
	parts := []string{"@" + rec.Username}

	if bio := strings.TrimSpace(rec.Biography); bio != "" {
		parts = append(parts, fmt.Sprintf("Bio: %q", truncate(bio, 250)))
	}
	if url := strings.TrimSpace(rec.ExternalURL); url != "" {
		link := strings.TrimSpace(rec.Domain)
		if link == "" {
			link = truncate(url, 50)
		}
		parts = append(parts, "URL: "+link)
	}
	if desc := strings.TrimSpace(rec.WebsiteDescription); desc != "" && desc != "|" {
		parts = append(parts, fmt.Sprintf("Site: %q", truncate(desc, 150)))
	}
	if title := strings.TrimSpace(rec.WebsiteTitle); title != "" {
		parts = append(parts, fmt.Sprintf("Title: %q", truncate(title, 80)))
	}

	return strings.Join(parts, " | ")
}

// numberLines joins prompt lines as a numbered list, one record per line.
func numberLines(lines []string) string {
	var b strings.Builder
	for i, line := range lines {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "%d. %s", i+1, line)
	}
	return b.String()
}

// truncate cuts on a rune boundary so an emoji-heavy bio never leaves a torn
// multibyte sequence in the prompt.
func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	for limit > 0 && !utf8.RuneStart(s[limit]) {
		limit--
	}
	return s[:limit]
}

func normalizeUsername(s string) string {
	return strings.TrimPrefix(strings.ToLower(strings.TrimSpace(s)), "@")
}
