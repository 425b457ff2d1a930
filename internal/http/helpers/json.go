// Package helpers tiene utilidades compartidas por los controllers.
package helpers

import (
	"encoding/json"
	stderrors "errors"
	"io"
	"net/http"
	"strings"

	"github.com/dropDatabas3/multilogin/internal/http/errors"
)

// MaxBodyBytes limita los bodies de la API de admin.
const MaxBodyBytes = 64 << 10

// IsJSON reporta si el request declara un body JSON.
func IsJSON(r *http.Request) bool {
	return strings.Contains(strings.ToLower(r.Header.Get("Content-Type")), "application/json")
}

// LimitBody envuelve el body con MaxBytesReader.
func LimitBody(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, MaxBodyBytes)
}

// BodyError traduce errores de lectura del body a un AppError.
func BodyError(err error) *errors.AppError {
	var mbe *http.MaxBytesError
	if stderrors.As(err, &mbe) {
		return errors.ErrBodyTooLarge
	}
	return errors.FromError(err)
}

// ReadJSON decodifica JSON estricto (campos desconocidos = error).
// Devuelve false si ya escribió el error HTTP.
func ReadJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if !IsJSON(r) {
		errors.WriteError(w, errors.ErrBadRequest.WithDetail("Content-Type debe ser application/json"))
		return false
	}
	LimitBody(w, r)
	defer r.Body.Close()

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil && err != io.EOF {
		if ae := BodyError(err); ae == errors.ErrBodyTooLarge {
			errors.WriteError(w, ae)
			return false
		}
		errors.WriteError(w, errors.ErrInvalidJSON.WithDetail(err.Error()))
		return false
	}
	return true
}

// WriteJSON escribe una respuesta JSON.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WantsFragment reporta si el cliente pidió solo el fragmento HTML (fetch/XHR).
func WantsFragment(r *http.Request) bool {
	return strings.EqualFold(r.Header.Get("X-Requested-With"), "XMLHttpRequest") ||
		r.URL.Query().Get("fragment") == "1"
}
