package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/Dosada05/u13-football/models"
	"github.com/Dosada05/u13-football/services"
)

// MatchHandler - общее расписание матчей: товарищеские матчи и зеркала турнирных.
type MatchHandler struct {
	matchService services.MatchService
}

func NewMatchHandler(ms services.MatchService) *MatchHandler {
	return &MatchHandler{matchService: ms}
}

// CreateMatch godoc
// @Summary      Создать матч
// @Description  Основные составы команд попадают в состав на матч автоматически
// @Tags         matches
// @Accept       json
// @Produce      json
// @Param        input body services.CreateMatchInput true "Данные матча"
// @Success      201 {object} models.GlobalMatch
// @Failure      400 {object} map[string]interface{}
// @Failure      403 {object} map[string]interface{}
// @Security     BearerAuth
// @Router       /matches [post]
func (h *MatchHandler) CreateMatch(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}

	var input services.CreateMatchInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	match, err := h.matchService.CreateMatch(r.Context(), p, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	respond(w, r, http.StatusCreated, match)
}

// GetMatch godoc
// @Summary      Матч по ID
// @Tags         matches
// @Produce      json
// @Param        matchID path string true "UUID матча"
// @Success      200 {object} models.GlobalMatch
// @Failure      404 {object} map[string]interface{}
// @Security     BearerAuth
// @Router       /matches/{matchID} [get]
func (h *MatchHandler) GetMatch(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	id, err := getUUIDFromURL(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	match, err := h.matchService.GetMatch(r.Context(), p, id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, match)
}

// ListMatches godoc
// @Summary      Список матчей
// @Tags         matches
// @Produce      json
// @Param        status        query string false "Статусы через запятую"
// @Param        team_id       query int    false "ID команды"
// @Param        tournament_id query string false "UUID турнира"
// @Param        search        query string false "Поиск по командам и месту"
// @Param        newest        query bool   false "Сначала новые"
// @Param        limit         query int    false "Лимит"
// @Param        offset        query int    false "Смещение"
// @Success      200 {array} models.GlobalMatch
// @Security     BearerAuth
// @Router       /matches [get]
func (h *MatchHandler) ListMatches(w http.ResponseWriter, r *http.Request) {
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
	filter := services.MatchListFilter{
		Statuses: statusesFromQuery(query.Get("status")),
		Search:   query.Get("search"),
	}
	if filter.TeamID, err = queryInt(r, "team_id"); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if filter.TournamentID, err = queryUUID(r, "tournament_id"); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	newest, err := queryBool(r, "newest")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	filter.Newest = newest != nil && *newest

	matches, err := h.matchService.ListMatches(r.Context(), p, filter, page)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, matches)
}

// UpdateMatch godoc
// @Summary      Обновить матч
// @Description  Зеркала турнирных матчей меняются только через турнир
// @Tags         matches
// @Accept       json
// @Produce      json
// @Param        matchID path string true "UUID матча"
// @Param        input body services.UpdateMatchInput true "Изменяемые поля"
// @Success      200 {object} models.GlobalMatch
// @Failure      400 {object} map[string]interface{}
// @Failure      403 {object} map[string]interface{}
// @Failure      404 {object} map[string]interface{}
// @Security     BearerAuth
// @Router       /matches/{matchID} [patch]
func (h *MatchHandler) UpdateMatch(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	id, err := getUUIDFromURL(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input services.UpdateMatchInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	match, err := h.matchService.UpdateMatch(r.Context(), p, id, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, match)
}

// DeleteMatch godoc
// @Summary      Удалить матч
// @Tags         matches
// @Param        matchID path string true "UUID матча"
// @Success      204
// @Failure      403 {object} map[string]interface{}
// @Failure      404 {object} map[string]interface{}
// @Security     BearerAuth
// @Router       /matches/{matchID} [delete]
func (h *MatchHandler) DeleteMatch(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	id, err := getUUIDFromURL(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.matchService.DeleteMatch(r.Context(), p, id); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// StartMatch godoc
// @Summary      Начать матч
// @Tags         matches
// @Produce      json
// @Param        matchID path string true "UUID матча"
// @Success      200 {object} models.GlobalMatch
// @Failure      400 {object} map[string]interface{}
// @Failure      403 {object} map[string]interface{}
// @Security     BearerAuth
// @Router       /matches/{matchID}/start [post]
func (h *MatchHandler) StartMatch(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, services.TransitionStart, nil)
}

// FinishMatch godoc
// @Summary      Завершить матч
// @Tags         matches
// @Produce      json
// @Param        matchID path string true "UUID матча"
// @Success      200 {object} models.GlobalMatch
// @Failure      400 {object} map[string]interface{}
// @Failure      403 {object} map[string]interface{}
// @Security     BearerAuth
// @Router       /matches/{matchID}/finish [post]
func (h *MatchHandler) FinishMatch(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, services.TransitionFinish, nil)
}

// PostponeMatch godoc
// @Summary      Перенести матч без даты
// @Tags         matches
// @Produce      json
// @Param        matchID path string true "UUID матча"
// @Success      200 {object} models.GlobalMatch
// @Failure      400 {object} map[string]interface{}
// @Failure      403 {object} map[string]interface{}
// @Security     BearerAuth
// @Router       /matches/{matchID}/postpone [post]
func (h *MatchHandler) PostponeMatch(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, services.TransitionPostpone, nil)
}

// CancelMatch godoc
// @Summary      Отменить матч
// @Tags         matches
// @Produce      json
// @Param        matchID path string true "UUID матча"
// @Success      200 {object} models.GlobalMatch
// @Failure      400 {object} map[string]interface{}
// @Failure      403 {object} map[string]interface{}
// @Security     BearerAuth
// @Router       /matches/{matchID}/cancel [post]
func (h *MatchHandler) CancelMatch(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, services.TransitionCancel, nil)
}

type rescheduleRequest struct {
	NewDate *time.Time `json:"new_date"`
}

// RescheduleMatch godoc
// @Summary      Назначить новую дату матча
// @Tags         matches
// @Accept       json
// @Produce      json
// @Param        matchID path string true "UUID матча"
// @Param        input body rescheduleRequest true "Новая дата"
// @Success      200 {object} models.GlobalMatch
// @Failure      400 {object} map[string]interface{}
// @Failure      403 {object} map[string]interface{}
// @Security     BearerAuth
// @Router       /matches/{matchID}/reschedule [post]
func (h *MatchHandler) RescheduleMatch(w http.ResponseWriter, r *http.Request) {
	var input rescheduleRequest
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if input.NewDate == nil {
		failedValidationResponse(w, r, map[string]string{"new_date": "is required"})
		return
	}
	h.transition(w, r, services.TransitionReschedule, input.NewDate)
}

func (h *MatchHandler) transition(w http.ResponseWriter, r *http.Request, tr services.Transition, newDate *time.Time) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	id, err := getUUIDFromURL(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	match, err := h.matchService.Transition(r.Context(), p, id, tr, newDate)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, match)
}

// ListLive godoc
// @Summary      Матчи в игре
// @Tags         matches
// @Produce      json
// @Success      200 {array} models.GlobalMatch
// @Security     BearerAuth
// @Router       /matches/live [get]
func (h *MatchHandler) ListLive(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}

	matches, err := h.matchService.ListLive(r.Context(), p)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, matches)
}

// ListUpcoming godoc
// @Summary      Ближайшие матчи
// @Tags         matches
// @Produce      json
// @Param        days    query int false "Горизонт в днях, по умолчанию 30"
// @Param        team_id query int false "ID команды"
// @Success      200 {array} models.GlobalMatch
// @Security     BearerAuth
// @Router       /matches/upcoming [get]
func (h *MatchHandler) ListUpcoming(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	days, teamID, err := windowFromQuery(r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	matches, err := h.matchService.ListUpcoming(r.Context(), p, days, teamID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, matches)
}

// ListRecent godoc
// @Summary      Недавно сыгранные матчи
// @Tags         matches
// @Produce      json
// @Param        days    query int false "Глубина в днях, по умолчанию 30"
// @Param        team_id query int false "ID команды"
// @Success      200 {array} models.GlobalMatch
// @Security     BearerAuth
// @Router       /matches/recent [get]
func (h *MatchHandler) ListRecent(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	days, teamID, err := windowFromQuery(r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	matches, err := h.matchService.ListRecent(r.Context(), p, days, teamID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, matches)
}

// Search godoc
// @Summary      Поиск матчей
// @Tags         matches
// @Produce      json
// @Param        q query string true "Команда, клуб или место"
// @Success      200 {array} models.GlobalMatch
// @Failure      400 {object} map[string]interface{}
// @Security     BearerAuth
// @Router       /matches/search [get]
func (h *MatchHandler) Search(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	q := strings.TrimSpace(r.URL.Query().Get("q"))
	if q == "" {
		badRequestResponse(w, r, errors.New("q query parameter is required"))
		return
	}

	matches, err := h.matchService.Search(r.Context(), p, q)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, matches)
}

// TeamSchedule godoc
// @Summary      Матчи команды
// @Tags         matches
// @Produce      json
// @Param        teamID path int true "ID команды"
// @Param        status query string false "Статус матча"
// @Success      200 {array} models.GlobalMatch
// @Security     BearerAuth
// @Router       /teams/{teamID}/matches [get]
func (h *MatchHandler) TeamSchedule(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	teamID, err := getIDFromURL(r, "teamID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	matches, err := h.matchService.TeamSchedule(r.Context(), p, teamID, statusFromQuery(r))
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, matches)
}

// TournamentSchedule godoc
// @Summary      Расписание турнира
// @Tags         matches
// @Produce      json
// @Param        tournamentID path string true "UUID турнира"
// @Param        status query string false "Статус матча"
// @Success      200 {array} models.GlobalMatch
// @Security     BearerAuth
// @Router       /tournaments/{tournamentID}/schedule [get]
func (h *MatchHandler) TournamentSchedule(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	tournamentID, err := getUUIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	matches, err := h.matchService.TournamentSchedule(r.Context(), p, tournamentID, statusFromQuery(r))
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, matches)
}

func statusFromQuery(r *http.Request) *models.MatchStatus {
	raw := r.URL.Query().Get("status")
	if raw == "" {
		return nil
	}
	s := models.MatchStatus(raw)
	return &s
}

func statusesFromQuery(raw string) []models.MatchStatus {
	if raw == "" {
		return nil
	}
	var statuses []models.MatchStatus
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			statuses = append(statuses, models.MatchStatus(part))
		}
	}
	return statuses
}

// windowFromQuery читает days и team_id; значение days по умолчанию выбирает сервис.
func windowFromQuery(r *http.Request) (int, *int, error) {
	var days int
	if raw := r.URL.Query().Get("days"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v <= 0 {
			return 0, nil, errors.New("invalid days query parameter")
		}
		days = v
	}
	teamID, err := queryInt(r, "team_id")
	if err != nil {
		return 0, nil, err
	}
	return days, teamID, nil
}
