package utils

import (
	"encoding/json"
	"net/http"

	"CapIot.dashboard/internal/models"
	"github.com/charmbracelet/log"
)

// RespondWithError sends a JSON error response using the APIError model.
// The HTTP status code comes from the APIError.
func RespondWithError(writer http.ResponseWriter, apiErr models.APIError) {
	if apiErr.StatusCode == 0 {
		apiErr.StatusCode = http.StatusInternalServerError
	}
	RespondWithJSON(writer, apiErr.StatusCode, apiErr)
}

// RespondWithJSON sends a JSON success response.
func RespondWithJSON(writer http.ResponseWriter, statusCode int, payload any) {
	body, err := json.Marshal(payload)
	if err != nil {
		log.Error("Failed to encode JSON response", "err", err)
		http.Error(writer, "Failed to send JSON response", http.StatusInternalServerError)
		return
	}
	writer.Header().Set("Content-Type", "application/json")
	writer.WriteHeader(statusCode)
	_, _ = writer.Write(append(body, '\n'))
}

// RespondRaw forwards an already encoded body with its status and content type.
func RespondRaw(writer http.ResponseWriter, statusCode int, contentType string, body []byte) {
	if contentType != "" {
		writer.Header().Set("Content-Type", contentType)
	}
	writer.WriteHeader(statusCode)
	if _, err := writer.Write(body); err != nil {
		log.Warn("Failed to write response body", "err", err)
	}
}
