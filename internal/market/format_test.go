package market

import (
	"strings"
	"testing"

	"github.com/listingwatch/listingwatch/internal/domain"
)

func TestFormatItemMessage_FullItem(t *testing.T) {
	item := domain.Item{
		ID:        "101",
		Title:     "Wool coat",
		Price:     "25.0",
		Currency:  "EUR",
		DetailURL: "https://www.vinted.fr/items/101",
		PhotoURL:  "https://img.vinted.fr/101.jpg",
		Brand:     "Acme",
	}

	msg := formatItemMessage(item, "https://www.vinted.fr/catalog?search_text=coat", "View on Vinted")

	for _, want := range []string{
		"Wool coat",
		"Brand: Acme",
		"Price: 25.0 EUR",
		"View on Vinted: https://www.vinted.fr/items/101",
		"Photo: https://img.vinted.fr/101.jpg",
		"Search: https://www.vinted.fr/catalog?search_text=coat",
	} {
		if !strings.Contains(msg, want) {
			t.Errorf("message missing %q:\n%s", want, msg)
		}
	}
}

func TestFormatItemMessage_OmitsEmptyFields(t *testing.T) {
	item := domain.Item{ID: "102"}

	msg := formatItemMessage(item, "", "View on Vinted")

	if !strings.Contains(msg, "Untitled listing") {
		t.Errorf("missing title should fall back, got:\n%s", msg)
	}
	for _, banned := range []string{"Brand:", "Price:", "Photo:", "Search:", "View on Vinted"} {
		if strings.Contains(msg, banned) {
			t.Errorf("message should omit %q for an empty field:\n%s", banned, msg)
		}
	}
}
