package handlers

import (
	"net/http"

	"github.com/Dosada05/u13-football/models"
	"github.com/Dosada05/u13-football/services"
)

type RegistrationHandler struct {
	registrationService services.RegistrationService
}

func NewRegistrationHandler(rs services.RegistrationService) *RegistrationHandler {
	return &RegistrationHandler{registrationService: rs}
}

// Register godoc
// @Summary      Заявить команду на турнир
// @Description  Владелец клуба команды; турнир должен принимать заявки
// @Tags         registrations
// @Accept       json
// @Produce      json
// @Param        tournamentID path string true "UUID турнира"
// @Param        input body services.RegisterTeamInput true "Команда"
// @Success      201 {object} models.TeamRegistration
// @Failure      400 {object} map[string]interface{}
// @Failure      403 {object} map[string]interface{}
// @Security     BearerAuth
// @Router       /tournaments/{tournamentID}/registrations [post]
func (h *RegistrationHandler) Register(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	tournamentID, err := getUUIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input services.RegisterTeamInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	reg, err := h.registrationService.Register(r.Context(), p, tournamentID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	respond(w, r, http.StatusCreated, reg)
}

// ListRegistrations godoc
// @Summary      Заявки на турнир
// @Tags         registrations
// @Produce      json
// @Param        tournamentID path string true "UUID турнира"
// @Param        status query string false "pending, confirmed, rejected, withdrawn"
// @Success      200 {array} models.TeamRegistration
// @Security     BearerAuth
// @Router       /tournaments/{tournamentID}/registrations [get]
func (h *RegistrationHandler) ListRegistrations(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	tournamentID, err := getUUIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var status *models.RegistrationStatus
	if raw := r.URL.Query().Get("status"); raw != "" {
		s := models.RegistrationStatus(raw)
		status = &s
	}

	regs, err := h.registrationService.ListRegistrations(r.Context(), p, tournamentID, status)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, regs)
}

// ReviewRegistration godoc
// @Summary      Подтвердить или отклонить заявку
// @Tags         registrations
// @Accept       json
// @Produce      json
// @Param        registrationID path int true "ID заявки"
// @Param        input body services.ReviewRegistrationInput true "Решение"
// @Success      200 {object} models.TeamRegistration
// @Failure      400 {object} map[string]interface{}
// @Failure      403 {object} map[string]interface{}
// @Security     BearerAuth
// @Router       /registrations/{registrationID} [patch]
func (h *RegistrationHandler) ReviewRegistration(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	id, err := getIDFromURL(r, "registrationID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input services.ReviewRegistrationInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	reg, err := h.registrationService.ReviewRegistration(r.Context(), p, id, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, reg)
}

// WithdrawRegistration godoc
// @Summary      Отозвать заявку
// @Tags         registrations
// @Produce      json
// @Param        registrationID path int true "ID заявки"
// @Success      200 {object} models.TeamRegistration
// @Failure      400 {object} map[string]interface{}
// @Failure      403 {object} map[string]interface{}
// @Security     BearerAuth
// @Router       /registrations/{registrationID}/withdraw [post]
func (h *RegistrationHandler) WithdrawRegistration(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	id, err := getIDFromURL(r, "registrationID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	reg, err := h.registrationService.WithdrawRegistration(r.Context(), p, id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, reg)
}
