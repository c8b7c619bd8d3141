package handlers

import (
	"context"
	"net/http"

	"github.com/Dosada05/u13-football/models"
	"github.com/Dosada05/u13-football/services"
	"github.com/google/uuid"
)

type TournamentHandler struct {
	tournamentService services.TournamentService
}

func NewTournamentHandler(ts services.TournamentService) *TournamentHandler {
	return &TournamentHandler{tournamentService: ts}
}

// CreateTournament godoc
// @Summary      Создать турнир
// @Description  Доступно активному администратору
// @Tags         tournaments
// @Accept       json
// @Produce      json
// @Param        input body services.CreateTournamentInput true "Данные турнира"
// @Success      201 {object} models.Tournament
// @Failure      400 {object} map[string]interface{}
// @Failure      403 {object} map[string]interface{}
// @Security     BearerAuth
// @Router       /tournaments [post]
func (h *TournamentHandler) CreateTournament(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}

	var input services.CreateTournamentInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	tournament, err := h.tournamentService.CreateTournament(r.Context(), p, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	respond(w, r, http.StatusCreated, tournament)
}

// GetTournament godoc
// @Summary      Турнир по ID
// @Tags         tournaments
// @Produce      json
// @Param        tournamentID path string true "UUID турнира"
// @Success      200 {object} models.Tournament
// @Failure      404 {object} map[string]interface{}
// @Security     BearerAuth
// @Router       /tournaments/{tournamentID} [get]
func (h *TournamentHandler) GetTournament(w http.ResponseWriter, r *http.Request) {
	h.tournamentAction(w, r, http.StatusOK, h.tournamentService.GetTournament)
}

// ListTournaments godoc
// @Summary      Список турниров
// @Tags         tournaments
// @Produce      json
// @Param        status query string false "upcoming, active, finished, cancelled"
// @Param        type   query string false "league, group_knockout"
// @Param        search query string false "Поиск по названию"
// @Param        limit  query int    false "Лимит"
// @Param        offset query int    false "Смещение"
// @Success      200 {array} models.Tournament
// @Security     BearerAuth
// @Router       /tournaments [get]
func (h *TournamentHandler) ListTournaments(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	page, err := pageFromQuery(r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	query := r.URL.Query()
	filter := services.TournamentListFilter{Search: query.Get("search")}
	if status := query.Get("status"); status != "" {
		s := models.TournamentStatus(status)
		filter.Status = &s
	}
	if tType := query.Get("type"); tType != "" {
		t := models.TournamentType(tType)
		filter.Type = &t
	}

	tournaments, err := h.tournamentService.ListTournaments(r.Context(), p, filter, page)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, tournaments)
}

// ListOpenTournaments godoc
// @Summary      Публичные турниры с открытой регистрацией
// @Tags         tournaments
// @Produce      json
// @Param        limit  query int false "Лимит"
// @Param        offset query int false "Смещение"
// @Success      200 {array} models.Tournament
// @Router       /tournaments/open [get]
func (h *TournamentHandler) ListOpenTournaments(w http.ResponseWriter, r *http.Request) {
	page, err := pageFromQuery(r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	tournaments, err := h.tournamentService.ListOpenTournaments(r.Context(), page)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, tournaments)
}

// UpdateTournament godoc
// @Summary      Обновить турнир
// @Tags         tournaments
// @Accept       json
// @Produce      json
// @Param        tournamentID path string true "UUID турнира"
// @Param        input body services.UpdateTournamentInput true "Изменяемые поля"
// @Success      200 {object} models.Tournament
// @Failure      400 {object} map[string]interface{}
// @Failure      403 {object} map[string]interface{}
// @Failure      404 {object} map[string]interface{}
// @Security     BearerAuth
// @Router       /tournaments/{tournamentID} [patch]
func (h *TournamentHandler) UpdateTournament(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	id, err := getUUIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input services.UpdateTournamentInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	tournament, err := h.tournamentService.UpdateTournament(r.Context(), p, id, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, tournament)
}

// DeleteTournament godoc
// @Summary      Удалить турнир
// @Tags         tournaments
// @Param        tournamentID path string true "UUID турнира"
// @Success      204
// @Failure      403 {object} map[string]interface{}
// @Failure      404 {object} map[string]interface{}
// @Security     BearerAuth
// @Router       /tournaments/{tournamentID} [delete]
func (h *TournamentHandler) DeleteTournament(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	id, err := getUUIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.tournamentService.DeleteTournament(r.Context(), p, id); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// UploadLogo godoc
// @Summary      Загрузить логотип турнира
// @Tags         tournaments
// @Accept       multipart/form-data
// @Produce      json
// @Param        tournamentID path string true "UUID турнира"
// @Param        logo formData file true "Логотип"
// @Success      200 {object} models.Tournament
// @Failure      400 {object} map[string]interface{}
// @Security     BearerAuth
// @Router       /tournaments/{tournamentID}/logo [post]
func (h *TournamentHandler) UploadLogo(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	id, err := getUUIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	file, contentType, err := readUpload(w, r, "logo")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	defer file.Close()

	tournament, err := h.tournamentService.UploadLogo(r.Context(), p, id, file, contentType)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, tournament)
}

// StartTournament godoc
// @Summary      Начать турнир
// @Description  Только из статуса upcoming
// @Tags         tournaments
// @Produce      json
// @Param        tournamentID path string true "UUID турнира"
// @Success      200 {object} models.Tournament
// @Failure      400 {object} map[string]interface{}
// @Failure      403 {object} map[string]interface{}
// @Security     BearerAuth
// @Router       /tournaments/{tournamentID}/start [post]
func (h *TournamentHandler) StartTournament(w http.ResponseWriter, r *http.Request) {
	h.tournamentAction(w, r, http.StatusOK, h.tournamentService.StartTournament)
}

// FinishTournament godoc
// @Summary      Завершить турнир
// @Tags         tournaments
// @Produce      json
// @Param        tournamentID path string true "UUID турнира"
// @Success      200 {object} models.Tournament
// @Failure      400 {object} map[string]interface{}
// @Failure      403 {object} map[string]interface{}
// @Security     BearerAuth
// @Router       /tournaments/{tournamentID}/finish [post]
func (h *TournamentHandler) FinishTournament(w http.ResponseWriter, r *http.Request) {
	h.tournamentAction(w, r, http.StatusOK, h.tournamentService.FinishTournament)
}

// CancelTournament godoc
// @Summary      Отменить турнир
// @Tags         tournaments
// @Produce      json
// @Param        tournamentID path string true "UUID турнира"
// @Success      200 {object} models.Tournament
// @Failure      400 {object} map[string]interface{}
// @Failure      403 {object} map[string]interface{}
// @Security     BearerAuth
// @Router       /tournaments/{tournamentID}/cancel [post]
func (h *TournamentHandler) CancelTournament(w http.ResponseWriter, r *http.Request) {
	h.tournamentAction(w, r, http.StatusOK, h.tournamentService.CancelTournament)
}

func (h *TournamentHandler) tournamentAction(w http.ResponseWriter, r *http.Request, status int, action func(context.Context, *services.Principal, uuid.UUID) (*models.Tournament, error)) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	id, err := getUUIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	tournament, err := action(r.Context(), p, id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	respond(w, r, status, tournament)
}

// ListTeams godoc
// @Summary      Команды турнира
// @Tags         tournaments
// @Produce      json
// @Param        tournamentID path string true "UUID турнира"
// @Success      200 {array} models.Team
// @Failure      404 {object} map[string]interface{}
// @Security     BearerAuth
// @Router       /tournaments/{tournamentID}/teams [get]
func (h *TournamentHandler) ListTeams(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	id, err := getUUIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	teams, err := h.tournamentService.ListTeams(r.Context(), p, id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, teams)
}

// GetStandings godoc
// @Summary      Таблицы всех групп турнира
// @Tags         tournaments
// @Produce      json
// @Param        tournamentID path string true "UUID турнира"
// @Success      200 {array} services.GroupStandings
// @Failure      404 {object} map[string]interface{}
// @Security     BearerAuth
// @Router       /tournaments/{tournamentID}/standings [get]
func (h *TournamentHandler) GetStandings(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	id, err := getUUIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	standings, err := h.tournamentService.GetStandings(r.Context(), p, id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, standings)
}

// GetStats godoc
// @Summary      Сводная статистика турнира
// @Tags         tournaments
// @Produce      json
// @Param        tournamentID path string true "UUID турнира"
// @Success      200 {object} models.TournamentStats
// @Failure      404 {object} map[string]interface{}
// @Security     BearerAuth
// @Router       /tournaments/{tournamentID}/stats [get]
func (h *TournamentHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	id, err := getUUIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	stats, err := h.tournamentService.GetStats(r.Context(), p, id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, stats)
}
