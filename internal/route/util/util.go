package util

import (
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/dense-analysis/stockfolio/internal/template"
)

// ApologyData is the page data for the apology template.
type ApologyData struct {
	Message string
}

// RespondApology renders a user-visible error page with the given status.
func RespondApology(writer http.ResponseWriter, status int, message string) {
	writer.WriteHeader(status)
	template.Render(template.Apology, writer, ApologyData{Message: message})
}

func RespondInternalServerError(writer http.ResponseWriter, err error) {
	logrus.WithError(err).Error("internal error")
	RespondApology(writer, http.StatusInternalServerError, "something went wrong")
}

func RespondValidationError(writer http.ResponseWriter, message string) {
	RespondApology(writer, http.StatusBadRequest, message)
}

func RespondForbidden(writer http.ResponseWriter, message string) {
	RespondApology(writer, http.StatusForbidden, message)
}

// NoCacheMiddleware disables client caching on every response.
func NoCacheMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		header := writer.Header()
		header.Set("Cache-Control", "no-cache, no-store, must-revalidate")
		header.Set("Pragma", "no-cache")
		header.Set("Expires", "0")
		next.ServeHTTP(writer, request)
	})
}
