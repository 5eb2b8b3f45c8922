package enrich

import (
	"sort"
	"strings"
	"time"

	"github.com/agenthands/cobalt/internal/core/model"
)

// The lookup service's response shape varies between engines and over
// time, so every output field is extracted by an ordered list of key
// aliases searched through the whole response tree. Keeping the aliases in
// one table makes the defensive parsing auditable.
var (
	placeIDKeys     = []string{"place_id", "placeId", "place_id_token"}
	dataIDKeys      = []string{"data_id", "data_id_token", "business_id", "id"}
	ratingKeys      = []string{"rating", "reviews_rating", "score"}
	reviewCountKeys = []string{"user_ratings_total", "review_count", "reviews_count", "total_reviews"}
	priceKeys       = []string{"price_level", "price", "price_str"}
	categoryKeys    = []string{"category", "categories", "type", "types"}
	bookingKeys     = []string{"has_booking", "booking_enabled", "has_booking_option"}
	snippetKeys     = []string{"snippet", "description", "text"}
	statusKeys      = []string{"status", "business_status", "place_status"}
	closedFlagKeys  = []string{"permanently_closed", "closed"}
)

// ParseResult maps a decoded lookup response onto the fixed enrichment
// output fields.
func ParseResult(tree map[string]any, now time.Time) model.EnrichmentResult {
	out := model.EnrichmentResult{}
	out["Google_Place_ID__c"] = firstKey(tree, placeIDKeys)
	out["Google_Data_ID__c"] = firstKey(tree, dataIDKeys)
	out["Google_Rating__c"] = firstKey(tree, ratingKeys)
	out["Google_Review_Count__c"] = firstKey(tree, reviewCountKeys)
	out["Google_Price__c"] = parsePrice(firstKey(tree, priceKeys))
	out["Google_Updated_Date__c"] = now.UTC().Format(time.RFC3339)
	out["Restaurant_Type__c"] = parseCategory(firstKey(tree, categoryKeys))
	out["Has_Google_Accept_Bookings_Extension__c"] = parseBooking(tree)
	out["Prospection_Status__c"] = parseStatus(tree)
	return out
}

// firstKey walks the tree looking for the first occurrence of any alias.
// Maps are checked for the aliases in order before descending; map values
// are visited in sorted key order so the search is deterministic.
func firstKey(v any, keys []string) any {
	switch t := v.(type) {
	case map[string]any:
		for _, k := range keys {
			if val, ok := t[k]; ok && val != nil {
				return val
			}
		}
		names := make([]string, 0, len(t))
		for k := range t {
			names = append(names, k)
		}
		sort.Strings(names)
		for _, k := range names {
			if found := firstKey(t[k], keys); found != nil {
				return found
			}
		}
	case []any:
		for _, item := range t {
			if found := firstKey(item, keys); found != nil {
				return found
			}
		}
	}
	return nil
}

// parsePrice turns a numeric price level into a repeated "$" count and
// passes string values straight through.
func parsePrice(v any) any {
	switch t := v.(type) {
	case float64:
		if t > 0 {
			return strings.Repeat("$", int(t))
		}
		return ""
	case int:
		if t > 0 {
			return strings.Repeat("$", t)
		}
		return ""
	default:
		return v
	}
}

func parseCategory(v any) any {
	list, ok := v.([]any)
	if !ok {
		return v
	}
	parts := make([]string, 0, len(list))
	for _, item := range list {
		if s, ok := item.(string); ok {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, ", ")
}

// parseBooking prefers an explicit booking flag; without one it falls back
// to scanning a snippet-ish field for booking wording.
func parseBooking(tree map[string]any) bool {
	if flag := firstKey(tree, bookingKeys); flag != nil {
		return truthy(flag)
	}
	snippet := firstKey(tree, snippetKeys)
	if s, ok := snippet.(string); ok {
		return strings.Contains(strings.ToLower(s), "book")
	}
	return false
}

// parseStatus derives the closed/operating state from either a status
// string containing "close" or an explicit closed flag.
func parseStatus(tree map[string]any) any {
	if status := firstKey(tree, statusKeys); status != nil {
		if s, ok := status.(string); ok && strings.Contains(strings.ToLower(s), "close") {
			return "Permanently Closed"
		}
		// a non-closed status string still falls through to the flag check
	}
	if truthy(firstKey(tree, closedFlagKeys)) {
		return "Permanently Closed"
	}
	return nil
}

func truthy(v any) bool {
	switch t := v.(type) {
	case bool:
		return t
	case float64:
		return t != 0
	case string:
		s := strings.ToLower(t)
		return s == "true" || s == "1" || s == "yes"
	default:
		return false
	}
}
