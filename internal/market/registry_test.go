package market

import "testing"

func setupTestRegistry(t *testing.T) *Registry {
	t.Helper()
	ledger := newFakeLedger()
	cfg := Config{}
	return NewRegistry(NewVintedClient(ledger, cfg), NewLeboncoinClient(ledger, cfg))
}

func TestRegistry_ResolvesByHost(t *testing.T) {
	reg := setupTestRegistry(t)

	tests := []struct {
		url  string
		want string
	}{
		{"https://www.vinted.fr/catalog?search_text=jacket", "vinted"},
		{"https://www.vinted.de/catalog?brand_ids[]=53", "vinted"},
		{"https://www.vinted.co.uk/catalog?search_text=coat", "vinted"},
		{"https://www.leboncoin.fr/recherche?text=velo", "leboncoin"},
		{"https://api.leboncoin.fr/finder/search?text=velo", "leboncoin"},
	}

	for _, tt := range tests {
		client := reg.Resolve(tt.url)
		if client == nil {
			t.Errorf("Resolve(%s) = nil, want %s", tt.url, tt.want)
			continue
		}
		if client.Name() != tt.want {
			t.Errorf("Resolve(%s) = %s, want %s", tt.url, client.Name(), tt.want)
		}
	}
}

func TestRegistry_UnsupportedURLResolvesToNil(t *testing.T) {
	reg := setupTestRegistry(t)

	for _, rawURL := range []string{
		"https://www.ebay.com/sch/i.html?_nkw=jacket",
		"https://example.com/catalog",
		"not a url at all",
		"",
	} {
		if client := reg.Resolve(rawURL); client != nil {
			t.Errorf("Resolve(%q) = %s, want nil", rawURL, client.Name())
		}
	}
}

func TestRegistry_PredicatesAreDisjoint(t *testing.T) {
	reg := setupTestRegistry(t)

	urls := []string{
		"https://www.vinted.fr/catalog?search_text=jacket",
		"https://www.leboncoin.fr/recherche?text=velo",
	}

	for _, rawURL := range urls {
		matches := 0
		for _, c := range reg.Clients() {
			if c.ValidateURL(rawURL) {
				matches++
			}
		}
		if matches != 1 {
			t.Errorf("%s matched %d clients, want exactly 1", rawURL, matches)
		}
	}
}
