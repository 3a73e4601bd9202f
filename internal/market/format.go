package market

import (
	"fmt"
	"strings"

	"github.com/listingwatch/listingwatch/internal/domain"
)

// formatItemMessage renders the shared notification layout. Empty
// optional fields are dropped rather than rendered blank.
func formatItemMessage(item domain.Item, sourceURL, linkLabel string) string {
	var b strings.Builder

	title := item.Title
	if title == "" {
		title = "Untitled listing"
	}
	fmt.Fprintf(&b, "🛍️ %s\n", title)

	if item.Brand != "" {
		fmt.Fprintf(&b, "🏷️ Brand: %s\n", item.Brand)
	}
	if item.Price != "" {
		fmt.Fprintf(&b, "💰 Price: %s %s\n", item.Price, item.Currency)
	}
	if item.DetailURL != "" {
		fmt.Fprintf(&b, "🔗 %s: %s\n", linkLabel, item.DetailURL)
	}
	if item.PhotoURL != "" {
		fmt.Fprintf(&b, "📸 Photo: %s\n", item.PhotoURL)
	}
	if sourceURL != "" {
		fmt.Fprintf(&b, "🔍 Search: %s\n", sourceURL)
	}

	return b.String()
}
