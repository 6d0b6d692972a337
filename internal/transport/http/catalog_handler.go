package http

import (
	"encoding/json"
	"net/http"

	"reading-hero-service/internal/catalog"
	"reading-hero-service/internal/domain"
)

type catalogResponse struct {
	Items        []domain.ShopItem    `json:"items"`
	Achievements []domain.Achievement `json:"achievements"`
	Themes       []catalog.Theme      `json:"themes"`
	Icons        []catalog.Icon       `json:"icons"`
	Topics       []string             `json:"topics"`
}

// ServeCatalog returns the static game tables so a client can render the shop
// and the setup screen before opening a socket.
func ServeCatalog(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	_ = json.NewEncoder(w).Encode(catalogResponse{
		Items:        catalog.Items(),
		Achievements: catalog.Achievements(),
		Themes:       catalog.Themes(),
		Icons:        catalog.Icons(),
		Topics:       catalog.Topics(),
	})
}
