package handler

import (
	"net/http"

	"github.com/garrettladley/folio/internal/version"
	"github.com/garrettladley/folio/internal/xhttp"
)

type healthResponse struct {
	Status      string `json:"status"`
	Version     string `json:"version"`
	Revision    string `json:"revision,omitempty"`
	Development bool   `json:"development,omitempty"`
}

// HandleHealth handles GET /health requests.
func HandleHealth(w http.ResponseWriter, _ *http.Request) {
	v := version.Get()
	xhttp.WriteOK(w, healthResponse{
		Status:      "ok",
		Version:     v,
		Revision:    version.Revision(),
		Development: version.IsDevelopment(v),
	})
}
