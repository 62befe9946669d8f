package curator

// DefaultCategories is the closed taxonomy for the vendor directory. The
// tagger discards anything the model invents outside this list.
var DefaultCategories = []string{
	"Festival Clothing",
	"Jewelry & Accessories",
	"Art & Prints",
	"Home Decor",
	"Toys & Sculptures",
	"Bags & Packs",
	"Body Art & Cosmetics",
	"Stickers & Patches",
	"Other Handmade",
}

// FallbackCategory is assigned when the model returns nothing usable for a
// vendor. Uncategorized approved vendors must never exist.
const FallbackCategory = "Other Handmade"

// maxTagsPerVendor caps the free-text search tags kept per vendor.
const maxTagsPerVendor = 5
