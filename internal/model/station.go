// Package model defines data structures used throughout the application.
package model

import (
	"errors"
	"strings"
)

// Validation errors for StationInput.
var (
	ErrEmptyName      = errors.New("name cannot be empty")
	ErrEmptyStreamURL = errors.New("stream_url cannot be empty")
)

// User-facing messages returned by the directory service.
const (
	MsgListFailed      = "Error al obtener las radios"
	MsgRequiredFields  = "El nombre y la URL de streaming son obligatorios."
	MsgCreated         = "Radio agregada correctamente."
	MsgCreateFailed    = "Error al agregar la radio."
	MsgDeleted         = "Radio eliminada correctamente."
	MsgDeleteFailed    = "Error al eliminar la radio."
	MsgUpdated         = "Radio actualizada correctamente."
	MsgUpdateFailed    = "Error al actualizar la radio."
	MsgNotFound        = "Radio no encontrada."
	MsgInvalidBody     = "Cuerpo de la solicitud inválido."
	MsgGetFailed       = "Error al obtener la radio."
	MsgInternalFailure = "Error interno del servidor."
)

// Station is a named audio source with a stream URL and optional metadata.
type Station struct {
	ID        int64   `json:"id" db:"id" yaml:"id,omitempty"`
	Name      string  `json:"name" db:"name" yaml:"name"`
	StreamURL string  `json:"stream_url" db:"stream_url" yaml:"stream_url"`
	Genre     *string `json:"genre" db:"genre" yaml:"genre,omitempty"`
	Country   *string `json:"country" db:"country" yaml:"country,omitempty"`
}

// StationInput carries the mutable fields of a station in create and update requests.
type StationInput struct {
	Name      string  `json:"name" yaml:"name"`
	StreamURL string  `json:"stream_url" yaml:"stream_url"`
	Genre     *string `json:"genre,omitempty" yaml:"genre,omitempty"`
	Country   *string `json:"country,omitempty" yaml:"country,omitempty"`
}

// Validate checks that the required fields are present.
func (in *StationInput) Validate() error {
	if strings.TrimSpace(in.Name) == "" {
		return ErrEmptyName
	}

	if strings.TrimSpace(in.StreamURL) == "" {
		return ErrEmptyStreamURL
	}

	return nil
}

// ToStation builds a Station with the given id from the input fields.
func (in *StationInput) ToStation(id int64) Station {
	return Station{
		ID:        id,
		Name:      in.Name,
		StreamURL: in.StreamURL,
		Genre:     in.Genre,
		Country:   in.Country,
	}
}

// Input returns the mutable fields of the station.
func (s *Station) Input() StationInput {
	return StationInput{
		Name:      s.Name,
		StreamURL: s.StreamURL,
		Genre:     s.Genre,
		Country:   s.Country,
	}
}

// GenreOrEmpty returns the genre, or an empty string when it is unset.
func (s *Station) GenreOrEmpty() string {
	if s.Genre == nil {
		return ""
	}
	return *s.Genre
}

// CountryOrEmpty returns the country, or an empty string when it is unset.
func (s *Station) CountryOrEmpty() string {
	if s.Country == nil {
		return ""
	}
	return *s.Country
}

// StringPtr returns a pointer to v, or nil when v is empty.
func StringPtr(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}

// MessageResponse is the body of successful mutation responses.
type MessageResponse struct {
	Message string `json:"message"`
	ID      *int64 `json:"id,omitempty"`
}

// ErrorResponse is the body of every error response.
type ErrorResponse struct {
	Error string `json:"error"`
}
