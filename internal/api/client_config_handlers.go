package api

import "net/http"

// ClientConfigResponse carries the settings the map front end needs at boot.
type ClientConfigResponse struct {
	MapsAPIKey string `json:"maps_api_key"`
}

// ClientConfigHandlers serves front-end bootstrap configuration.
type ClientConfigHandlers struct {
	mapsAPIKey string
}

// NewClientConfigHandlers creates a new ClientConfigHandlers instance.
func NewClientConfigHandlers(mapsAPIKey string) *ClientConfigHandlers {
	return &ClientConfigHandlers{mapsAPIKey: mapsAPIKey}
}

// GetClientConfig handles GET /config. Guarded: the maps key is only handed
// to logged-in clients.
func (h *ClientConfigHandlers) GetClientConfig(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, ClientConfigResponse{MapsAPIKey: h.mapsAPIKey})
}
