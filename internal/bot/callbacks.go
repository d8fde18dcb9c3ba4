package bot

import (
	"fmt"
	"strconv"
	"strings"
)

// Callback data understood by the bot
const (
	cbCatalog           = "catalog"
	cbCart              = "cart"
	cbFAQ               = "faq"
	cbMainMenu          = "main_menu"
	cbCheckout          = "checkout"
	cbCheckSubscription = "check_subscription"
	cbCurrentPage       = "current_page"
	cbBackToCategories  = "back_to_categories"

	prefixCategory            = "category_"
	prefixSubcategory         = "subcategory_"
	prefixPage                = "page_"
	prefixProduct             = "product_"
	prefixAddToCart           = "add_to_cart_"
	prefixRemoveFromCart      = "remove_from_cart_"
	prefixBackToSubcategories = "back_to_subcategories_"
	prefixFAQ                 = "faq_"
)

// prefixArity is the number of ids each prefixed action carries
var prefixArity = map[string]int{
	prefixCategory:            1,
	prefixSubcategory:         1,
	prefixPage:                2,
	prefixProduct:             1,
	prefixAddToCart:           1,
	prefixRemoveFromCart:      1,
	prefixBackToSubcategories: 1,
	prefixFAQ:                 1,
}

// prefixes in match order: longer prefixes that share a stem come first
var prefixes = []string{
	prefixBackToSubcategories,
	prefixRemoveFromCart,
	prefixAddToCart,
	prefixSubcategory,
	prefixCategory,
	prefixProduct,
	prefixPage,
	prefixFAQ,
}

type callback struct {
	action string
	ids    []int64
}

func (c callback) id(i int) int64 {
	if i < len(c.ids) {
		return c.ids[i]
	}
	return 0
}

// parseCallback splits callback data into an action and its numeric ids.
// Exact actions are returned as is; unknown or malformed data reports false.
func parseCallback(data string) (callback, bool) {
	switch data {
	case cbCatalog, cbCart, cbFAQ, cbMainMenu, cbCheckout, cbCheckSubscription, cbCurrentPage, cbBackToCategories:
		return callback{action: data}, true
	}

	for _, prefix := range prefixes {
		if !strings.HasPrefix(data, prefix) {
			continue
		}
		parts := strings.Split(strings.TrimPrefix(data, prefix), "_")
		if len(parts) != prefixArity[prefix] {
			return callback{}, false
		}
		ids := make([]int64, 0, len(parts))
		for _, part := range parts {
			id, err := strconv.ParseInt(part, 10, 64)
			if err != nil || id < 0 {
				return callback{}, false
			}
			ids = append(ids, id)
		}
		return callback{action: prefix, ids: ids}, true
	}

	return callback{}, false
}

func withID(prefix string, id int64) string {
	return prefix + strconv.FormatInt(id, 10)
}

func pageData(subcategoryID int64, page int) string {
	return fmt.Sprintf("%s%d_%d", prefixPage, subcategoryID, page)
}
