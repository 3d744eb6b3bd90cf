package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/fundlane/fundlane/internal/errors"
	http2 "github.com/fundlane/fundlane/internal/infrastructure/api/http"
	"github.com/fundlane/fundlane/internal/infrastructure/api/middlewares"
	"github.com/fundlane/fundlane/internal/usecases/dtos"
	"github.com/fundlane/fundlane/internal/usecases/interactor"
	"github.com/fundlane/fundlane/pkg/log"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

type CampaignHandler struct {
	interactor *interactor.CampaignInteractor
	logger     *zerolog.Logger
}

func NewCampaignHandler(interactor *interactor.CampaignInteractor) *CampaignHandler {
	logger := log.GetLogger()
	return &CampaignHandler{interactor: interactor, logger: &logger}
}

func (h *CampaignHandler) GetCampaign(w http.ResponseWriter, r *http.Request) {
	campaign, err := h.interactor.GetCampaign(chi.URLParam(r, http2.CampaignIDParam))
	if err != nil {
		errors.HandleHTTPError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, campaign)
}

func (h *CampaignHandler) ListCampaigns(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	dto := dtos.ListCampaignsDTO{
		Category:       q.Get("category"),
		Status:         q.Get("status"),
		TypeOfCampaign: q.Get("type"),
		Search:         q.Get("search"),
		SortBy:         q.Get("sortBy"),
		SortOrder:      q.Get("sortOrder"),
		Page:           queryInt(q.Get("page")),
		Limit:          queryInt(q.Get("limit")),
	}

	campaigns, err := h.interactor.ListCampaigns(&dto)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to list campaigns")
		errors.HandleHTTPError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, campaigns)
}

func (h *CampaignHandler) ListTrending(w http.ResponseWriter, r *http.Request) {
	campaigns, err := h.interactor.ListTrending(queryInt(r.URL.Query().Get("limit")))
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to list trending campaigns")
		errors.HandleHTTPError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, campaigns)
}

func (h *CampaignHandler) CreateCampaign(w http.ResponseWriter, r *http.Request) {
	var dto dtos.CreateCampaignDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.logger.Error().Err(err).Msg(errors.ErrFailedDecodeRequestBody)
		errors.HandleHTTPError(w, errors.NewValidationError(errors.ErrInvalidRequestBody))
		return
	}

	campaign, err := h.interactor.CreateCampaign(middlewares.UserIDFromContext(r.Context()), &dto)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to create campaign")
		errors.HandleHTTPError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, campaign)
}

func (h *CampaignHandler) UpdateCampaign(w http.ResponseWriter, r *http.Request) {
	var dto dtos.UpdateCampaignDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.logger.Error().Err(err).Msg(errors.ErrFailedDecodeRequestBody)
		errors.HandleHTTPError(w, errors.NewValidationError(errors.ErrInvalidRequestBody))
		return
	}

	campaign, err := h.interactor.UpdateCampaign(
		middlewares.UserIDFromContext(r.Context()),
		chi.URLParam(r, http2.CampaignIDParam),
		&dto,
	)
	if err != nil {
		errors.HandleHTTPError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, campaign)
}

func (h *CampaignHandler) DeleteCampaign(w http.ResponseWriter, r *http.Request) {
	err := h.interactor.DeleteCampaign(
		middlewares.UserIDFromContext(r.Context()),
		chi.URLParam(r, http2.CampaignIDParam),
	)
	if err != nil {
		errors.HandleHTTPError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *CampaignHandler) ToggleLike(w http.ResponseWriter, r *http.Request) {
	liked, totalLikes, err := h.interactor.ToggleLike(
		middlewares.UserIDFromContext(r.Context()),
		chi.URLParam(r, http2.CampaignIDParam),
	)
	if err != nil {
		errors.HandleHTTPError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"liked":      liked,
		"totalLikes": totalLikes,
	})
}

func (h *CampaignHandler) AddComment(w http.ResponseWriter, r *http.Request) {
	var dto dtos.AddCommentDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.logger.Error().Err(err).Msg(errors.ErrFailedDecodeRequestBody)
		errors.HandleHTTPError(w, errors.NewValidationError(errors.ErrInvalidRequestBody))
		return
	}

	comment, err := h.interactor.AddComment(
		middlewares.UserIDFromContext(r.Context()),
		chi.URLParam(r, http2.CampaignIDParam),
		&dto,
	)
	if err != nil {
		errors.HandleHTTPError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, comment)
}

func (h *CampaignHandler) ListComments(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	comments, err := h.interactor.ListComments(
		chi.URLParam(r, http2.CampaignIDParam),
		queryInt(q.Get("limit")),
		queryInt(q.Get("offset")),
	)
	if err != nil {
		errors.HandleHTTPError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, comments)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func queryInt(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}
