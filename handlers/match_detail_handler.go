package handlers

import (
	"net/http"

	"github.com/Dosada05/u13-football/services"
)

// MatchDetailHandler - события, составы, статистика и протокол матча.
type MatchDetailHandler struct {
	eventService  services.MatchEventService
	lineupService services.LineupService
	reportService services.MatchReportService
}

func NewMatchDetailHandler(es services.MatchEventService, ls services.LineupService, rs services.MatchReportService) *MatchDetailHandler {
	return &MatchDetailHandler{
		eventService:  es,
		lineupService: ls,
		reportService: rs,
	}
}

// ListEvents godoc
// @Summary      События матча
// @Tags         match-events
// @Produce      json
// @Param        matchID path string true "UUID матча"
// @Success      200 {array} models.MatchEvent
// @Failure      404 {object} map[string]interface{}
// @Security     BearerAuth
// @Router       /matches/{matchID}/events [get]
func (h *MatchDetailHandler) ListEvents(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	matchID, err := getUUIDFromURL(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	events, err := h.eventService.ListEvents(r.Context(), p, matchID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, events)
}

// CreateEvent godoc
// @Summary      Добавить событие
// @Description  Гол, передача или карточка сразу учитываются в статистике игрока
// @Tags         match-events
// @Accept       json
// @Produce      json
// @Param        matchID path string true "UUID матча"
// @Param        input body services.CreateEventInput true "Событие"
// @Success      201 {object} models.MatchEvent
// @Failure      400 {object} map[string]interface{}
// @Failure      403 {object} map[string]interface{}
// @Security     BearerAuth
// @Router       /matches/{matchID}/events [post]
func (h *MatchDetailHandler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	matchID, err := getUUIDFromURL(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input services.CreateEventInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	event, err := h.eventService.CreateEvent(r.Context(), p, matchID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	respond(w, r, http.StatusCreated, event)
}

// UpdateEvent godoc
// @Summary      Изменить событие
// @Tags         match-events
// @Accept       json
// @Produce      json
// @Param        matchID path string true "UUID матча"
// @Param        eventID path int true "ID события"
// @Param        input body services.UpdateEventInput true "Изменяемые поля"
// @Success      200 {object} models.MatchEvent
// @Failure      400 {object} map[string]interface{}
// @Failure      403 {object} map[string]interface{}
// @Failure      404 {object} map[string]interface{}
// @Security     BearerAuth
// @Router       /matches/{matchID}/events/{eventID} [patch]
func (h *MatchDetailHandler) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	matchID, err := getUUIDFromURL(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	eventID, err := getIDFromURL(r, "eventID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input services.UpdateEventInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	event, err := h.eventService.UpdateEvent(r.Context(), p, matchID, eventID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, event)
}

// DeleteEvent godoc
// @Summary      Удалить событие
// @Tags         match-events
// @Param        matchID path string true "UUID матча"
// @Param        eventID path int true "ID события"
// @Success      204
// @Failure      403 {object} map[string]interface{}
// @Failure      404 {object} map[string]interface{}
// @Security     BearerAuth
// @Router       /matches/{matchID}/events/{eventID} [delete]
func (h *MatchDetailHandler) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	matchID, err := getUUIDFromURL(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	eventID, err := getIDFromURL(r, "eventID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.eventService.DeleteEvent(r.Context(), p, matchID, eventID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListLineups godoc
// @Summary      Составы на матч
// @Tags         match-lineups
// @Produce      json
// @Param        matchID path string true "UUID матча"
// @Param        team_id query int false "ID команды"
// @Success      200 {array} models.MatchLineup
// @Failure      404 {object} map[string]interface{}
// @Security     BearerAuth
// @Router       /matches/{matchID}/lineups [get]
func (h *MatchDetailHandler) ListLineups(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	matchID, err := getUUIDFromURL(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	teamID, err := queryInt(r, "team_id")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	lineups, err := h.lineupService.ListLineups(r.Context(), p, matchID, teamID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, lineups)
}

// CreateLineup godoc
// @Summary      Добавить игрока в состав
// @Tags         match-lineups
// @Accept       json
// @Produce      json
// @Param        matchID path string true "UUID матча"
// @Param        input body services.CreateLineupInput true "Строка состава"
// @Success      201 {object} models.MatchLineup
// @Failure      400 {object} map[string]interface{}
// @Failure      403 {object} map[string]interface{}
// @Security     BearerAuth
// @Router       /matches/{matchID}/lineups [post]
func (h *MatchDetailHandler) CreateLineup(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	matchID, err := getUUIDFromURL(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input services.CreateLineupInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	lineup, err := h.lineupService.CreateLineup(r.Context(), p, matchID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	respond(w, r, http.StatusCreated, lineup)
}

// DeleteLineup godoc
// @Summary      Убрать игрока из состава
// @Description  Статистика строки вычитается из карьерной
// @Tags         match-lineups
// @Param        matchID  path string true "UUID матча"
// @Param        lineupID path int true "ID строки состава"
// @Success      204
// @Failure      403 {object} map[string]interface{}
// @Failure      404 {object} map[string]interface{}
// @Security     BearerAuth
// @Router       /matches/{matchID}/lineups/{lineupID} [delete]
func (h *MatchDetailHandler) DeleteLineup(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	matchID, err := getUUIDFromURL(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	lineupID, err := getIDFromURL(r, "lineupID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.lineupService.DeleteLineup(r.Context(), p, matchID, lineupID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SetLineup godoc
// @Summary      Заменить состав команды на матч
// @Description  Статистика удалённых строк вычитается из карьерной
// @Tags         match-lineups
// @Accept       json
// @Produce      json
// @Param        matchID path string true "UUID матча"
// @Param        input body services.SetLineupInput true "Основные и запасные"
// @Success      200 {array} models.MatchLineup
// @Failure      400 {object} map[string]interface{}
// @Failure      403 {object} map[string]interface{}
// @Security     BearerAuth
// @Router       /matches/{matchID}/set-lineup [post]
func (h *MatchDetailHandler) SetLineup(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	matchID, err := getUUIDFromURL(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input services.SetLineupInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	lineups, err := h.lineupService.SetLineup(r.Context(), p, matchID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, lineups)
}

// UpdateLineupStats godoc
// @Summary      Статистика игрока в составе
// @Tags         match-lineups
// @Accept       json
// @Produce      json
// @Param        matchID  path string true "UUID матча"
// @Param        lineupID path int true "ID строки состава"
// @Param        input body services.LineupStatsInput true "Изменяемые счётчики"
// @Success      200 {object} models.MatchLineup
// @Failure      400 {object} map[string]interface{}
// @Failure      403 {object} map[string]interface{}
// @Failure      404 {object} map[string]interface{}
// @Security     BearerAuth
// @Router       /matches/{matchID}/lineups/{lineupID} [patch]
func (h *MatchDetailHandler) UpdateLineupStats(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	matchID, err := getUUIDFromURL(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	lineupID, err := getIDFromURL(r, "lineupID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input services.LineupStatsInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	lineup, err := h.lineupService.UpdateLineupStats(r.Context(), p, matchID, lineupID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, lineup)
}

type playerStatsRequest struct {
	Players []services.PlayerStatsItem `json:"players"`
}

// BulkPlayerStats godoc
// @Summary      Статистика нескольких игроков за матч
// @Description  Все строки применяются в одной транзакции
// @Tags         match-lineups
// @Accept       json
// @Produce      json
// @Param        matchID path string true "UUID матча"
// @Param        input body playerStatsRequest true "Статистика игроков"
// @Success      200 {array} models.MatchLineup
// @Failure      400 {object} map[string]interface{}
// @Failure      403 {object} map[string]interface{}
// @Security     BearerAuth
// @Router       /matches/{matchID}/player-stats [post]
func (h *MatchDetailHandler) BulkPlayerStats(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	matchID, err := getUUIDFromURL(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input playerStatsRequest
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	lineups, err := h.lineupService.BulkPlayerStats(r.Context(), p, matchID, input.Players)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, lineups)
}

// ListStatistics godoc
// @Summary      Командная статистика матча
// @Tags         match-stats
// @Produce      json
// @Param        matchID path string true "UUID матча"
// @Success      200 {array} models.MatchStatistics
// @Failure      404 {object} map[string]interface{}
// @Security     BearerAuth
// @Router       /matches/{matchID}/stats [get]
func (h *MatchDetailHandler) ListStatistics(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	matchID, err := getUUIDFromURL(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	stats, err := h.reportService.ListStatistics(r.Context(), p, matchID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, stats)
}

// SaveStatistics godoc
// @Summary      Сохранить статистику команды за матч
// @Tags         match-stats
// @Accept       json
// @Produce      json
// @Param        matchID path string true "UUID матча"
// @Param        input body services.MatchStatisticsInput true "Счётчики"
// @Success      200 {object} models.MatchStatistics
// @Failure      400 {object} map[string]interface{}
// @Failure      403 {object} map[string]interface{}
// @Security     BearerAuth
// @Router       /matches/{matchID}/stats [put]
func (h *MatchDetailHandler) SaveStatistics(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	matchID, err := getUUIDFromURL(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input services.MatchStatisticsInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	stats, err := h.reportService.SaveStatistics(r.Context(), p, matchID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, stats)
}

// GetReport godoc
// @Summary      Протокол матча
// @Tags         match-reports
// @Produce      json
// @Param        matchID path string true "UUID матча"
// @Success      200 {object} models.MatchReport
// @Failure      404 {object} map[string]interface{}
// @Security     BearerAuth
// @Router       /matches/{matchID}/report [get]
func (h *MatchDetailHandler) GetReport(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	matchID, err := getUUIDFromURL(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	report, err := h.reportService.GetReport(r.Context(), p, matchID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, report)
}

// SaveReport godoc
// @Summary      Сохранить протокол матча
// @Description  Правка снимает отметку о проверке
// @Tags         match-reports
// @Accept       json
// @Produce      json
// @Param        matchID path string true "UUID матча"
// @Param        input body services.MatchReportInput true "Протокол"
// @Success      200 {object} models.MatchReport
// @Failure      400 {object} map[string]interface{}
// @Failure      403 {object} map[string]interface{}
// @Security     BearerAuth
// @Router       /matches/{matchID}/report [put]
func (h *MatchDetailHandler) SaveReport(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	matchID, err := getUUIDFromURL(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input services.MatchReportInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	report, err := h.reportService.SaveReport(r.Context(), p, matchID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, report)
}

// ValidateReport godoc
// @Summary      Подтвердить протокол
// @Tags         match-reports
// @Produce      json
// @Param        matchID path string true "UUID матча"
// @Success      200 {object} models.MatchReport
// @Failure      403 {object} map[string]interface{}
// @Failure      404 {object} map[string]interface{}
// @Security     BearerAuth
// @Router       /matches/{matchID}/report/validate [post]
func (h *MatchDetailHandler) ValidateReport(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	matchID, err := getUUIDFromURL(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	report, err := h.reportService.ValidateReport(r.Context(), p, matchID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, report)
}
