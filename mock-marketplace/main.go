// Mock marketplace server for local development. Serves both the
// vinted catalog shape and the leboncoin finder shape, plus endpoints
// that simulate anti-bot blocks and session rejections.
package main

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"sync/atomic"
	"time"
)

var requestCount atomic.Int64

func main() {
	port := "9090"
	if p := os.Getenv("PORT"); p != "" {
		port = p
	}

	// Vinted catalog shape — two fresh listings
	http.HandleFunc("/api/v2/catalog/items", func(w http.ResponseWriter, r *http.Request) {
		count := requestCount.Add(1)
		logRequest(r, count, 200)

		now := time.Now().Unix()
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"items":[
			{"id":%d,"title":"Wool coat","price":{"amount":"45.0","currency_code":"EUR"},
			 "url":"https://www.vinted.fr/items/%d","brand_title":"Acme",
			 "photo":{"url":"https://img.example/1.jpg","high_resolution":{"timestamp":%d}}},
			{"id":%d,"title":"Leather boots","price":{"amount":"60.0","currency_code":"EUR"},
			 "url":"https://www.vinted.fr/items/%d","brand_title":"",
			 "photo":{"url":"https://img.example/2.jpg","high_resolution":{"timestamp":%d}}}
		]}`, count*2, count*2, now, count*2+1, count*2+1, now-3600)
	})

	// leboncoin finder shape — one live ad and one already sold
	http.HandleFunc("/finder/search", func(w http.ResponseWriter, r *http.Request) {
		count := requestCount.Add(1)
		logRequest(r, count, 200)

		published := time.Now().UTC().Format("2006-01-02 15:04:05")
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"ads":[
			{"list_id":%d,"subject":"Espresso machine","price":[150],
			 "url":"https://www.leboncoin.fr/ad/%d","images":{"urls":["https://img.example/3.jpg"]},
			 "first_publication_date":"%s","attributes":[]},
			{"list_id":%d,"subject":"Sold bike","price":[80],
			 "url":"https://www.leboncoin.fr/ad/%d","images":{"urls":[]},
			 "first_publication_date":"%s",
			 "attributes":[{"key":"transaction_status","value":"sold"}]}
		]}`, count*2, count*2, published, count*2+1, count*2+1, published)
	})

	// Blocked endpoint — always 403, for exercising proxy rotation
	http.HandleFunc("/blocked/api/v2/catalog/items", func(w http.ResponseWriter, r *http.Request) {
		count := requestCount.Add(1)
		logRequest(r, count, 403)
		w.WriteHeader(http.StatusForbidden)
		json.NewEncoder(w).Encode(map[string]string{"error": "access denied"})
	})

	// Unauthorized endpoint — always 401, for exercising identity rotation
	http.HandleFunc("/unauthorized/api/v2/catalog/items", func(w http.ResponseWriter, r *http.Request) {
		count := requestCount.Add(1)
		logRequest(r, count, 401)
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]string{"error": "invalid session"})
	})

	// Stats endpoint — shows request count
	http.HandleFunc("/stats", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]int64{"total_requests": requestCount.Load()})
	})

	log.Printf("Mock marketplace server starting on :%s", port)
	log.Printf("  GET /api/v2/catalog/items -> vinted catalog shape")
	log.Printf("  GET /finder/search        -> leboncoin finder shape")
	log.Printf("  GET /blocked/...          -> 403")
	log.Printf("  GET /unauthorized/...     -> 401")

	if err := http.ListenAndServe(":"+port, nil); err != nil {
		log.Fatal(err)
	}
}

func logRequest(r *http.Request, count int64, status int) {
	log.Printf("[%d] %s %s ua=%q -> %d", count, r.Method, r.URL.Path, r.Header.Get("User-Agent"), status)
}
