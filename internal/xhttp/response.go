package xhttp

import (
	"net/http"
	"strconv"

	go_json "github.com/goccy/go-json"
)

// WriteJSON encodes data before touching the response so that an encoding
// failure can still become a 500.
func WriteJSON(w http.ResponseWriter, status int, data any) {
	body, err := go_json.Marshal(data)
	if err != nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	body = append(body, '\n')

	SetHeaderContentTypeApplicationJSON(w)
	w.Header().Set(ContentLength, strconv.Itoa(len(body)))
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

func WriteOK(w http.ResponseWriter, data any) {
	WriteJSON(w, http.StatusOK, data)
}
