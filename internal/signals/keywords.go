package signals

// Keywords is the immutable configuration data driving signal extraction and
// URL classification. Lists are injected at construction and never mutated at
// runtime. The specific entries are tuning artifacts from manual audits of
// real scraped data; treat them as replaceable data, not logic.
type Keywords struct {
	// Keyword categories matched against a record's combined text.
	Product   []string
	Aesthetic []string
	Negative  []string
	Personal  []string

	// Domain lists for URL classification, checked in priority order:
	// non-shop before shop so a ticketing site with a /shop path still
	// classifies as non_shop.
	BigBrandDomains   []string
	NonShopDomains    []string
	ShopDomains       []string
	AggregatorDomains []string
	ShopURLPatterns   []string

	// MarketplaceDomains earn the v1 handmade-marketplace bonus.
	MarketplaceDomains []string

	// DMOrderPhrases count as a purchase path for the validation gate.
	DMOrderPhrases []string

	// WorldwideShippingPhrases trigger the big-brand compound penalty when
	// combined with a high follower count.
	WorldwideShippingPhrases []string
}

// DefaultKeywordsV1 returns the first-generation keyword bundle: broad
// positive buckets, a single negative bucket, and shop detection by URL
// pattern only.
func DefaultKeywordsV1() Keywords {
	return Keywords{
		Product: []string{
			"handmade", "hand made", "hand-made", "handcrafted", "hand crafted",
			"one of a kind", "ooak", "one-of-a-kind",
			"small batch", "made to order", "custom order", "custom made",
			"artist", "artisan", "maker", "creator", "designer",
			"fiber art", "wearable art", "functional art",
			"psychedelic", "trippy", "tie dye", "tie-dye", "tiedye",
			"festival wear", "festival fashion", "festival clothing",
			"rave wear", "plur", "kandi",
			"resin art", "epoxy", "polymer clay",
			"macrame", "crochet", "knit", "sewn", "sewing",
			"beaded", "beadwork", "hand beaded",
			"woodwork", "leather craft", "metalwork",
			"crystal", "gemstone", "healing stones",
			"etsy.com/shop", "bigcartel.com", "storenvy.com",
			"dm for custom", "dm for orders", "commissions open",
			"shop link in bio", "shop now", "new drop",
			"one offs", "limited run", "small business",
		},
		Aesthetic: []string{
			"art", "creative", "design", "studio",
			"boho", "bohemian", "vintage", "retro",
			"spiritual", "metaphysical", "mystical",
			"mushroom", "sacred geometry",
			"festival", "rave", "burning man", "playa",
			"colorful", "colourful", "vibrant", "neon",
			"unique", "original", "bespoke",
			"sustainable", "upcycled", "eco",
			"stickers", "patches", "pins",
			"jewelry", "jewellery", "earrings", "necklace",
			"clothing", "apparel", "fashion",
		},
		Negative: []string{
			"shipping worldwide", "worldwide shipping",
			"fast fashion", "dropship", "wholesale",
			"free shipping on orders over",
			"ambassador", "brand rep", "affiliate link",
			"use code", "discount code", "promo code",
			"influencer", "content creator", "youtuber", "tiktok creator",
			"photographer", "photography", "photo shoot",
			"dj", "dj ", "dj/", "producer", "music producer", "singer", "music", "song", "booking",
			"nightclub", "club promoter", "promoter",
			"tattoo", "tattoo artist", "tattoo shop",
			"nail tech", "hair stylist", "barber",
			"speaker", "motivational speaker", "spiritual leader", "soul activator", "life coach", "healer",
			"yoga", "yoga teacher", "yoga instructor",
			"realtor", "real estate",
			"fitness", "personal trainer", "gym",
			"lawyer", "attorney", "legal",
			"doctor", "dentist", "therapist",
			"mom of", "dad of", "dog mom", "cat mom",
			"engineer", "developer", "software",
		},
		BigBrandDomains:    bigBrandDomainsV1,
		NonShopDomains:     nil,
		ShopDomains:        nil,
		AggregatorDomains:  []string{"linktr.ee", "linkin.bio", "linkr.bio", "hihello.com"},
		ShopURLPatterns: []string{
			"etsy.com/shop", "etsy.com/listing",
			"bigcartel.com", "storenvy.com", "gumroad.com",
			"shopify", "squarespace", "wix.com",
			"/shop", "/store", "/products", "/collections",
		},
		MarketplaceDomains:       []string{"etsy.com", "bigcartel.com", "storenvy.com"},
		DMOrderPhrases:           dmOrderPhrases,
		WorldwideShippingPhrases: []string{"shipping worldwide", "worldwide shipping"},
	}
}

// DefaultKeywordsV2 returns the reorganized bundle from the v2 audit:
// product and aesthetic split apart, personal-account signals as their own
// bucket, and explicit shop / non-shop / aggregator domain lists.
func DefaultKeywordsV2() Keywords {
	return Keywords{
		Product: []string{
			"handmade", "hand made", "hand-made", "handcrafted", "hand crafted",
			"hand sewn", "hand-sewn", "hand beaded", "hand-beaded",
			"hand painted", "hand-painted",
			"made to order", "custom order", "custom made", "made by me",
			"sewn by", "crafted by", "created by",
			"i make", "i create", "i sew", "i crochet", "i knit",
			"sewing", "crochet", "knitting", "macrame",
			"beadwork", "beading", "embroidery", "weaving",
			"woodwork", "woodworking", "metalwork", "leatherwork", "leather craft",
			"resin art", "epoxy art", "polymer clay", "ceramics", "pottery",
			"fiber art", "textile art",
			"one of a kind", "ooak", "one-of-a-kind", "1/1",
			"small batch", "limited run", "limited edition",
			"wearable art", "functional art",
			"shop now", "new drop", "restocked", "available now",
			"dm for orders", "dm for custom", "dm for pricing",
			"commissions open", "customs open", "taking orders",
			"shop link in bio",
		},
		Aesthetic: []string{
			"psychedelic", "trippy", "tie dye", "tie-dye", "tiedye",
			"neon", "uv reactive", "blacklight", "glow in the dark",
			"sacred geometry", "fractal", "visionary art",
			"mushroom", "shroom",
			"bohemian", "boho",
			"cosmic", "celestial", "astral",
			"holographic", "iridescent", "prismatic",
			"kaleidoscope", "rainbow",
			"flow art", "flow toys",
			"plur", "kandi",
			"rave wear", "ravewear", "festival wear",
			"festival fashion", "festival clothing", "festival flare",
		},
		Negative: []string{
			"photographer", "photography", "photo shoot",
			"tattoo artist", "tattoo shop", "tattoo studio",
			"nail tech", "nail artist", "hair stylist", "barber",
			"dj ", "dj/", "dj.", "deejay",
			"music producer", "beatmaker",
			"promoter", "club promoter", "event promoter",
			"yoga instructor", "yoga teacher",
			"personal trainer", "fitness coach",
			"realtor", "real estate",
			"lawyer", "attorney",
			"doctor", "dentist", "therapist", "counselor",
			"influencer", "content creator",
			"brand ambassador", "ambassador for",
			"affiliate", "use my code", "use code", "discount code", "promo code",
			"vibe curator",
			"youtuber", "tiktok creator", "streamer",
			"mom of", "dad of", "dog mom", "cat mom", "fur mom",
			"mom life", "dad life",
			"just a girl", "just living",
			"wanderlust", "travel blogger",
			"foodie", "food lover",
			"shipping worldwide", "worldwide shipping", "global shipping",
			"fast fashion", "wholesale", "dropship", "drop ship",
			"tag us to get featured", "tag to be featured",
			"as seen on", "as featured in",
			"event organizer", "event planner", "event production",
			"festival organizer", "festival producer",
			"nightclub", "night club", "club night",
			"haute couture", "high fashion", "luxury fashion", "luxury brand",
		},
		Personal: []string{
			"part-time raver", "full-time raver", "raver girl", "rave bae",
			"rave fam", "rave family",
			"festival goer", "festival lover", "festival junkie",
			"edm lover", "edm addict", "house head",
			"music lover", "concert lover",
			"living my best life", "good vibes only",
			"adventure", "adventurer", "wanderer",
			"insomniac gc", "ground control",
		},
		BigBrandDomains: append(bigBrandDomainsV1,
			"ravewithmi.com", "littleblackdiamond.com",
		),
		NonShopDomains: []string{
			"universe.com", "eventbrite.com", "dice.fm", "ticketmaster.com",
			"seetickets.com", "axs.com", "stubhub.com", "ra.co",
			"youtube.com", "m.youtube.com", "tiktok.com", "twitter.com", "x.com",
			"facebook.com", "m.facebook.com", "threads.net", "tumblr.com",
			"soundcloud.com", "on.soundcloud.com", "spotify.com", "open.spotify.com",
			"bandcamp.com",
			"venmo.com", "cash.app", "paypal.me", "paypal.com",
			"hihello.com", "blinq.me",
			"change.org", "gofundme.com", "patreon.com",
		},
		ShopDomains: []string{
			"etsy.com", "bigcartel.com", "storenvy.com", "gumroad.com",
			"shopify.com", "squarespace.com", "wix.com",
			"depop.com", "poshmark.com", "mercari.com",
			"redbubble.com", "society6.com", "threadless.com",
			"ko-fi.com",
		},
		AggregatorDomains: []string{
			"linktr.ee", "linkin.bio", "linkr.bio", "bio.fm",
			"allmylinks.com", "beacons.ai", "lnk.bio", "tap.bio",
			"hoo.be", "snipfeed.co", "carrd.co", "solo.to",
		},
		ShopURLPatterns: []string{
			"/shop", "/store", "/products", "/collections",
			"/listing", "/items", "/merch", "/order",
			"etsy.com/shop/", "bigcartel.com",
		},
		MarketplaceDomains:       []string{"etsy.com", "bigcartel.com", "storenvy.com"},
		DMOrderPhrases:           dmOrderPhrases,
		WorldwideShippingPhrases: []string{"shipping worldwide", "worldwide shipping", "global shipping"},
	}
}

var bigBrandDomainsV1 = []string{
	"iheartraves.com", "dollskill.com", "ravewonderland.com",
	"badinka.com", "spirithoods.com", "edclv.com",
	"amazon.com", "shein.com", "romwe.com", "zaful.com",
	"fashionnova.com", "prettylittlething.com", "asos.com",
	"hottopic.com", "spencersonline.com",
	"electricfamily.com", "intotheam.com",
}

var dmOrderPhrases = []string{
	"dm for orders", "dm for custom", "dm for pricing",
	"dm to order", "dm to purchase", "message for orders",
	"message for custom", "message to order",
}
