package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/vyrodovalexey/radiodir/internal/model"
	"github.com/vyrodovalexey/radiodir/internal/store"
)

// Version is the application version.
const Version = "1.0.0"

// maxBodyBytes bounds the size of station request bodies.
const maxBodyBytes = 1 << 20

// errInvalidBody is returned when a request body cannot be decoded.
var errInvalidBody = errors.New("invalid request body")

// RESTHandler handles REST API requests for radio stations.
type RESTHandler struct {
	store  store.Store
	logger *zap.Logger
}

// NewRESTHandler creates a new RESTHandler instance.
func NewRESTHandler(s store.Store, logger *zap.Logger) *RESTHandler {
	return &RESTHandler{
		store:  s,
		logger: logger,
	}
}

// RegisterRoutes registers the REST API routes with the router.
func (h *RESTHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/health", h.HealthCheck).Methods(http.MethodGet)
	router.HandleFunc("/ready", h.ReadyCheck).Methods(http.MethodGet)
	router.HandleFunc("/radios", h.ListStations).Methods(http.MethodGet)
	router.HandleFunc("/radios/{id}", h.GetStation).Methods(http.MethodGet)
	router.HandleFunc("/add-radio", h.CreateStation).Methods(http.MethodPost)
	router.HandleFunc("/update-radio/{id}", h.UpdateStation).Methods(http.MethodPut)
	router.HandleFunc("/delete-radio/{id}", h.DeleteStation).Methods(http.MethodDelete)
}

// HealthCheck handles GET /health requests.
func (h *RESTHandler) HealthCheck(w http.ResponseWriter, _ *http.Request) {
	h.writeJSON(w, http.StatusOK, HealthResponse{
		Status:  "healthy",
		Version: Version,
	})
}

// ReadyCheck handles GET /ready requests by pinging the store.
func (h *RESTHandler) ReadyCheck(w http.ResponseWriter, r *http.Request) {
	if err := h.store.Ping(r.Context()); err != nil {
		h.logger.Warn("store not ready", zap.Error(err))
		h.writeJSON(w, http.StatusServiceUnavailable, ReadyResponse{Status: "not ready"})
		return
	}

	h.writeJSON(w, http.StatusOK, ReadyResponse{Status: "ready"})
}

// ListStations handles GET /radios requests.
func (h *RESTHandler) ListStations(w http.ResponseWriter, r *http.Request) {
	stations, err := h.store.List(r.Context())
	if err != nil {
		h.logger.Error("failed to list stations", zap.Error(err))
		h.writeError(w, http.StatusInternalServerError, model.MsgListFailed)
		return
	}

	h.writeJSON(w, http.StatusOK, stations)
}

// GetStation handles GET /radios/{id} requests.
func (h *RESTHandler) GetStation(w http.ResponseWriter, r *http.Request) {
	id, ok := stationID(r)
	if !ok {
		h.writeError(w, http.StatusNotFound, model.MsgNotFound)
		return
	}

	station, err := h.store.Get(r.Context(), id)
	if err != nil {
		h.handleStoreError(w, err, "get station", model.MsgGetFailed)
		return
	}

	h.writeJSON(w, http.StatusOK, station)
}

// CreateStation handles POST /add-radio requests.
func (h *RESTHandler) CreateStation(w http.ResponseWriter, r *http.Request) {
	input, err := decodeStationInput(w, r)
	if err != nil {
		h.logger.Warn("invalid request body", zap.Error(err))
		h.writeError(w, http.StatusBadRequest, model.MsgInvalidBody)
		return
	}

	if err := input.Validate(); err != nil {
		h.logger.Warn("validation failed", zap.Error(err))
		h.writeError(w, http.StatusBadRequest, model.MsgRequiredFields)
		return
	}

	id, err := h.store.Create(r.Context(), input)
	if err != nil {
		h.handleStoreError(w, err, "create station", model.MsgCreateFailed)
		return
	}

	h.logger.Info("station created", zap.Int64("id", id), zap.String("name", input.Name))
	h.writeJSON(w, http.StatusOK, model.MessageResponse{Message: model.MsgCreated, ID: &id})
}

// UpdateStation handles PUT /update-radio/{id} requests. All four mutable fields
// are replaced; absent optional fields become null.
func (h *RESTHandler) UpdateStation(w http.ResponseWriter, r *http.Request) {
	id, ok := stationID(r)
	if !ok {
		h.writeError(w, http.StatusNotFound, model.MsgNotFound)
		return
	}

	input, err := decodeStationInput(w, r)
	if err != nil {
		h.logger.Warn("invalid request body", zap.Error(err))
		h.writeError(w, http.StatusBadRequest, model.MsgInvalidBody)
		return
	}

	if err := input.Validate(); err != nil {
		h.rejectInvalidUpdate(w, r, id, err)
		return
	}

	if err := h.store.Update(r.Context(), id, input); err != nil {
		h.handleStoreError(w, err, "update station", model.MsgUpdateFailed)
		return
	}

	h.logger.Info("station updated", zap.Int64("id", id))
	h.writeJSON(w, http.StatusOK, model.MessageResponse{Message: model.MsgUpdated})
}

// rejectInvalidUpdate answers an update whose body misses required fields.
// An unknown id is still reported as not found.
func (h *RESTHandler) rejectInvalidUpdate(w http.ResponseWriter, r *http.Request, id int64, validationErr error) {
	if _, err := h.store.Get(r.Context(), id); err != nil {
		h.handleStoreError(w, err, "update station", model.MsgUpdateFailed)
		return
	}

	h.logger.Warn("validation failed", zap.Int64("id", id), zap.Error(validationErr))
	h.writeError(w, http.StatusBadRequest, model.MsgRequiredFields)
}

// DeleteStation handles DELETE /delete-radio/{id} requests.
func (h *RESTHandler) DeleteStation(w http.ResponseWriter, r *http.Request) {
	id, ok := stationID(r)
	if !ok {
		h.writeError(w, http.StatusNotFound, model.MsgNotFound)
		return
	}

	if err := h.store.Delete(r.Context(), id); err != nil {
		h.handleStoreError(w, err, "delete station", model.MsgDeleteFailed)
		return
	}

	h.logger.Info("station deleted", zap.Int64("id", id))
	h.writeJSON(w, http.StatusOK, model.MessageResponse{Message: model.MsgDeleted})
}

// handleStoreError handles store errors and writes appropriate HTTP responses.
func (h *RESTHandler) handleStoreError(w http.ResponseWriter, err error, operation, failureMsg string) {
	switch {
	case errors.Is(err, store.ErrNotFound), errors.Is(err, store.ErrInvalidID):
		h.writeError(w, http.StatusNotFound, model.MsgNotFound)
	default:
		h.logger.Error("store operation failed", zap.String("operation", operation), zap.Error(err))
		h.writeError(w, http.StatusInternalServerError, failureMsg)
	}
}

// writeJSON writes a JSON response with the given status code.
func (h *RESTHandler) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if data == nil {
		return
	}

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to encode response", zap.Error(err))
	}
}

// writeError writes an error response with the given status code and message.
func (h *RESTHandler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, model.ErrorResponse{Error: message})
}

// stationID parses the {id} path variable. Anything but a positive integer
// cannot name a station.
func stationID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// decodeStationInput reads the station fields from the request body.
// An empty body decodes to an empty input.
func decodeStationInput(w http.ResponseWriter, r *http.Request) (*model.StationInput, error) {
	var input model.StationInput

	err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&input)
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, errors.Join(errInvalidBody, err)
	}

	return &input, nil
}
