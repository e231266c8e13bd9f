package questions

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/mcq-trainer/backend/internal/assets"
	"github.com/mcq-trainer/backend/internal/models"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// getUserID extracts the authenticated user ID from the request context.
func getUserID(r *http.Request) (int64, bool) {
	uid, ok := r.Context().Value("user_id").(int64)
	return uid, ok
}

func datasetParam(r *http.Request) string {
	if id := r.URL.Query().Get("dataset_id"); id != "" {
		return id
	}
	return DefaultDatasetID
}

func (h *Handler) LoadDataset(w http.ResponseWriter, r *http.Request) {
	var req models.LoadDatasetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request body"})
		return
	}
	if len(req.PayloadURLs) == 0 {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "payload_urls is required"})
		return
	}

	resp, err := h.service.LoadDataset(r.Context(), req)
	if err != nil {
		log.Printf("[handler] LoadDataset error: %v", err)
		writeJSON(w, http.StatusBadGateway, models.ErrorResponse{Error: "Dataset load failed: " + err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) ListQuestions(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.List(datasetParam(r))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, models.QuestionListResponse{Questions: list, Total: len(list)})
}

func (h *Handler) GetQuestion(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserID(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, models.ErrorResponse{Error: "Authentication required"})
		return
	}

	questionID := mux.Vars(r)["id"]
	resp, err := h.service.Detail(r.Context(), userID, datasetParam(r), questionID, nil)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) GetQuality(w http.ResponseWriter, r *http.Request) {
	sig, err := h.service.Quality(datasetParam(r), mux.Vars(r)["id"])
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sig)
}

func (h *Handler) GetCluster(w http.ResponseWriter, r *http.Request) {
	resp, err := h.service.Cluster(datasetParam(r), mux.Vars(r)["id"])
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) GetImageCluster(w http.ResponseWriter, r *http.Request) {
	resp, err := h.service.ImageCluster(datasetParam(r), mux.Vars(r)["id"])
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) Explain(w http.ResponseWriter, r *http.Request) {
	var req models.ExplainRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request body"})
		return
	}

	resp, err := h.service.Explain(r.Context(), datasetParam(r), mux.Vars(r)["id"], req.Selected)
	if err != nil {
		if errors.Is(err, ErrQuestionNotFound) || errors.Is(err, ErrDatasetNotFound) {
			writeServiceError(w, err)
			return
		}
		log.Printf("[handler] Explain error: %v", err)
		writeJSON(w, http.StatusBadGateway, models.ErrorResponse{Error: "Explanation failed"})
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) GetImage(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	blob, contentType, err := h.service.Image(vars["dataset"], vars["key"])
	if err != nil {
		if errors.Is(err, assets.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, models.ErrorResponse{Error: "Image not found"})
			return
		}
		log.Printf("[handler] GetImage error: %v", err)
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to read image"})
		return
	}
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	w.Write(blob)
}

// ── Override Handlers ────────────────────────────────────

func (h *Handler) GetOverride(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserID(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, models.ErrorResponse{Error: "Authentication required"})
		return
	}
	vars := mux.Vars(r)

	o, err := h.service.overrides.Get(r.Context(), userID, vars["dataset"], vars["qid"])
	if err != nil {
		log.Printf("[handler] GetOverride error: %v", err)
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to load override"})
		return
	}
	if o == nil {
		writeJSON(w, http.StatusNotFound, models.ErrorResponse{Error: "No override stored"})
		return
	}
	writeJSON(w, http.StatusOK, o)
}

func (h *Handler) PutOverride(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserID(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, models.ErrorResponse{Error: "Authentication required"})
		return
	}
	vars := mux.Vars(r)

	var o models.LocalOverride
	if err := json.NewDecoder(r.Body).Decode(&o); err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request body"})
		return
	}
	if o.IsEmpty() {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Override must set at least one field"})
		return
	}

	if err := h.service.overrides.Set(r.Context(), userID, vars["dataset"], vars["qid"], &o); err != nil {
		log.Printf("[handler] PutOverride error: %v", err)
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to store override"})
		return
	}
	writeJSON(w, http.StatusOK, o)
}

func (h *Handler) DeleteOverride(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserID(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, models.ErrorResponse{Error: "Authentication required"})
		return
	}
	vars := mux.Vars(r)

	if err := h.service.overrides.Delete(r.Context(), userID, vars["dataset"], vars["qid"]); err != nil {
		log.Printf("[handler] DeleteOverride error: %v", err)
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to delete override"})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrDatasetNotFound):
		writeJSON(w, http.StatusNotFound, models.ErrorResponse{Error: "Dataset not loaded"})
	case errors.Is(err, ErrQuestionNotFound):
		writeJSON(w, http.StatusNotFound, models.ErrorResponse{Error: "Question not found"})
	default:
		log.Printf("[handler] error: %v", err)
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Internal server error"})
	}
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
