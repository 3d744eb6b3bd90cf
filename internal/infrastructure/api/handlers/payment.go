package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/fundlane/fundlane/internal/errors"
	http2 "github.com/fundlane/fundlane/internal/infrastructure/api/http"
	"github.com/fundlane/fundlane/internal/infrastructure/api/middlewares"
	"github.com/fundlane/fundlane/internal/usecases/dtos"
	"github.com/fundlane/fundlane/internal/usecases/interactor"
	"github.com/fundlane/fundlane/pkg/log"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

type PaymentHandler struct {
	interactor *interactor.PaymentInteractor
	logger     *zerolog.Logger
}

func NewPaymentHandler(interactor *interactor.PaymentInteractor) *PaymentHandler {
	logger := log.GetLogger()
	return &PaymentHandler{interactor: interactor, logger: &logger}
}

func (h *PaymentHandler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	var dto dtos.CreateOrderDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.logger.Error().Err(err).Msg(errors.ErrFailedDecodeRequestBody)
		errors.HandleHTTPError(w, errors.NewValidationError(errors.ErrInvalidRequestBody))
		return
	}

	userID := middlewares.UserIDFromContext(r.Context())
	order, err := h.interactor.CreateOrder(userID, &dto)
	if err != nil {
		h.logger.Error().Err(err).Msg(errors.ErrFailedCreateOrder)
		errors.HandleHTTPError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(order)
}

func (h *PaymentHandler) VerifyPayment(w http.ResponseWriter, r *http.Request) {
	var dto dtos.VerifyPaymentDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.logger.Error().Err(err).Msg(errors.ErrFailedDecodeRequestBody)
		errors.HandleHTTPError(w, errors.NewValidationError(errors.ErrInvalidRequestBody))
		return
	}

	userID := middlewares.UserIDFromContext(r.Context())
	result, err := h.interactor.VerifyPayment(userID, &dto)
	if err != nil {
		h.logger.Error().Err(err).Msg(errors.ErrFailedVerifyPayment)
		errors.HandleHTTPError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(result)
}

func (h *PaymentHandler) GetPaymentHistory(w http.ResponseWriter, r *http.Request) {
	requestingUserID := middlewares.UserIDFromContext(r.Context())
	userID := chi.URLParam(r, http2.UserIDParam)

	history, err := h.interactor.GetPaymentHistory(requestingUserID, userID)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to load payment history")
		errors.HandleHTTPError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(history)
}

func (h *PaymentHandler) GetCampaignTransactions(w http.ResponseWriter, r *http.Request) {
	campaignID := chi.URLParam(r, http2.CampaignIDParam)

	result, err := h.interactor.GetCampaignTransactions(campaignID)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to load campaign transactions")
		errors.HandleHTTPError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(result)
}
