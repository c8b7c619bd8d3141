package handlers

import (
	"net/http"

	"github.com/Dosada05/u13-football/services"
)

// GroupHandler обслуживает группы и этапы турнира.
type GroupHandler struct {
	groupService services.GroupService
}

func NewGroupHandler(gs services.GroupService) *GroupHandler {
	return &GroupHandler{groupService: gs}
}

// CreateGroup godoc
// @Summary      Создать группу
// @Tags         groups
// @Accept       json
// @Produce      json
// @Param        tournamentID path string true "UUID турнира"
// @Param        input body services.GroupInput true "Данные группы"
// @Success      201 {object} models.TournamentGroup
// @Failure      400 {object} map[string]interface{}
// @Failure      403 {object} map[string]interface{}
// @Security     BearerAuth
// @Router       /tournaments/{tournamentID}/groups [post]
func (h *GroupHandler) CreateGroup(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	tournamentID, err := getUUIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input services.GroupInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	group, err := h.groupService.CreateGroup(r.Context(), p, tournamentID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	respond(w, r, http.StatusCreated, group)
}

// ListGroups godoc
// @Summary      Группы турнира
// @Tags         groups
// @Produce      json
// @Param        tournamentID path string true "UUID турнира"
// @Success      200 {array} models.TournamentGroup
// @Failure      404 {object} map[string]interface{}
// @Security     BearerAuth
// @Router       /tournaments/{tournamentID}/groups [get]
func (h *GroupHandler) ListGroups(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	tournamentID, err := getUUIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	groups, err := h.groupService.ListGroups(r.Context(), p, tournamentID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, groups)
}

// GetGroup godoc
// @Summary      Группа по ID
// @Tags         groups
// @Produce      json
// @Param        groupID path int true "ID группы"
// @Success      200 {object} models.TournamentGroup
// @Failure      404 {object} map[string]interface{}
// @Security     BearerAuth
// @Router       /groups/{groupID} [get]
func (h *GroupHandler) GetGroup(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	id, err := getIDFromURL(r, "groupID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	group, err := h.groupService.GetGroup(r.Context(), p, id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, group)
}

// UpdateGroup godoc
// @Summary      Обновить группу
// @Tags         groups
// @Accept       json
// @Produce      json
// @Param        groupID path int true "ID группы"
// @Param        input body services.UpdateGroupInput true "Изменяемые поля"
// @Success      200 {object} models.TournamentGroup
// @Failure      400 {object} map[string]interface{}
// @Failure      403 {object} map[string]interface{}
// @Security     BearerAuth
// @Router       /groups/{groupID} [patch]
func (h *GroupHandler) UpdateGroup(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	id, err := getIDFromURL(r, "groupID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input services.UpdateGroupInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	group, err := h.groupService.UpdateGroup(r.Context(), p, id, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, group)
}

// DeleteGroup godoc
// @Summary      Удалить группу
// @Tags         groups
// @Param        groupID path int true "ID группы"
// @Success      204
// @Failure      403 {object} map[string]interface{}
// @Security     BearerAuth
// @Router       /groups/{groupID} [delete]
func (h *GroupHandler) DeleteGroup(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	id, err := getIDFromURL(r, "groupID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.groupService.DeleteGroup(r.Context(), p, id); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// AddTeam godoc
// @Summary      Добавить команду в группу
// @Tags         groups
// @Accept       json
// @Produce      json
// @Param        groupID path int true "ID группы"
// @Param        input body services.AddGroupTeamInput true "Команда"
// @Success      201 {object} models.TeamGroup
// @Failure      400 {object} map[string]interface{}
// @Failure      403 {object} map[string]interface{}
// @Security     BearerAuth
// @Router       /groups/{groupID}/teams [post]
func (h *GroupHandler) AddTeam(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	groupID, err := getIDFromURL(r, "groupID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input services.AddGroupTeamInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	member, err := h.groupService.AddTeam(r.Context(), p, groupID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	respond(w, r, http.StatusCreated, member)
}

// RemoveTeam godoc
// @Summary      Убрать команду из группы
// @Tags         groups
// @Param        groupID path int true "ID группы"
// @Param        teamID  path int true "ID команды"
// @Success      204
// @Failure      403 {object} map[string]interface{}
// @Failure      404 {object} map[string]interface{}
// @Security     BearerAuth
// @Router       /groups/{groupID}/teams/{teamID} [delete]
func (h *GroupHandler) RemoveTeam(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	groupID, err := getIDFromURL(r, "groupID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	teamID, err := getIDFromURL(r, "teamID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.groupService.RemoveTeam(r.Context(), p, groupID, teamID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListMembers godoc
// @Summary      Команды группы
// @Tags         groups
// @Produce      json
// @Param        groupID path int true "ID группы"
// @Success      200 {array} models.TeamGroup
// @Security     BearerAuth
// @Router       /groups/{groupID}/teams [get]
func (h *GroupHandler) ListMembers(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	groupID, err := getIDFromURL(r, "groupID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	members, err := h.groupService.ListMembers(r.Context(), p, groupID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, members)
}

// GetStandings godoc
// @Summary      Турнирная таблица группы
// @Tags         groups
// @Produce      json
// @Param        groupID path int true "ID группы"
// @Success      200 {object} services.GroupStandings
// @Failure      404 {object} map[string]interface{}
// @Security     BearerAuth
// @Router       /groups/{groupID}/standings [get]
func (h *GroupHandler) GetStandings(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	groupID, err := getIDFromURL(r, "groupID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	standings, err := h.groupService.GetStandings(r.Context(), p, groupID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, standings)
}

// CreatePhase godoc
// @Summary      Создать этап турнира
// @Tags         phases
// @Accept       json
// @Produce      json
// @Param        tournamentID path string true "UUID турнира"
// @Param        input body services.PhaseInput true "Данные этапа"
// @Success      201 {object} models.TournamentPhase
// @Failure      400 {object} map[string]interface{}
// @Failure      403 {object} map[string]interface{}
// @Security     BearerAuth
// @Router       /tournaments/{tournamentID}/phases [post]
func (h *GroupHandler) CreatePhase(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	tournamentID, err := getUUIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input services.PhaseInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	phase, err := h.groupService.CreatePhase(r.Context(), p, tournamentID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	respond(w, r, http.StatusCreated, phase)
}

// ListPhases godoc
// @Summary      Этапы турнира
// @Tags         phases
// @Produce      json
// @Param        tournamentID path string true "UUID турнира"
// @Success      200 {array} models.TournamentPhase
// @Security     BearerAuth
// @Router       /tournaments/{tournamentID}/phases [get]
func (h *GroupHandler) ListPhases(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	tournamentID, err := getUUIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	phases, err := h.groupService.ListPhases(r.Context(), p, tournamentID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, phases)
}

// UpdatePhase godoc
// @Summary      Обновить этап
// @Tags         phases
// @Accept       json
// @Produce      json
// @Param        phaseID path int true "ID этапа"
// @Param        input body services.UpdatePhaseInput true "Изменяемые поля"
// @Success      200 {object} models.TournamentPhase
// @Failure      400 {object} map[string]interface{}
// @Security     BearerAuth
// @Router       /phases/{phaseID} [patch]
func (h *GroupHandler) UpdatePhase(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	id, err := getIDFromURL(r, "phaseID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input services.UpdatePhaseInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	phase, err := h.groupService.UpdatePhase(r.Context(), p, id, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, phase)
}

// DeletePhase godoc
// @Summary      Удалить этап
// @Tags         phases
// @Param        phaseID path int true "ID этапа"
// @Success      204
// @Security     BearerAuth
// @Router       /phases/{phaseID} [delete]
func (h *GroupHandler) DeletePhase(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	id, err := getIDFromURL(r, "phaseID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.groupService.DeletePhase(r.Context(), p, id); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
