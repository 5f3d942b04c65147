package refdata

import (
	"crypto/sha1"
	"encoding/hex"
	"sort"
	"strings"
)

// KeyPrefs returns the cache key for a company's preference defaults.
func KeyPrefs(companyID string) string {
	return "prefs:" + companyID
}

// KeyDiscounts returns the cache key for a buyer/seller discount lookup.
// The product set is order-insensitive.
func KeyDiscounts(companyID, sellerID string, productIDs []string) string {
	return "discounts:" + companyID + ":" + sellerID + ":" + productSetDigest(productIDs)
}

// KeyTax returns the cache key for a tax metadata lookup over a product set.
func KeyTax(productIDs []string) string {
	return "tax:" + productSetDigest(productIDs)
}

func productSetDigest(productIDs []string) string {
	if len(productIDs) == 0 {
		return "none"
	}
	sorted := make([]string, len(productIDs))
	copy(sorted, productIDs)
	sort.Strings(sorted)
	sum := sha1.Sum([]byte(strings.Join(sorted, ",")))
	return hex.EncodeToString(sum[:])
}
