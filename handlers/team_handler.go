package handlers

import (
	"net/http"

	"github.com/Dosada05/u13-football/models"
	"github.com/Dosada05/u13-football/services"
)

type TeamHandler struct {
	teamService services.TeamService
}

func NewTeamHandler(ts services.TeamService) *TeamHandler {
	return &TeamHandler{teamService: ts}
}

// CreateTeam godoc
// @Summary      Создать команду в клубе
// @Tags         teams
// @Accept       json
// @Produce      json
// @Param        clubID path int true "ID клуба"
// @Param        input body services.CreateTeamInput true "Данные команды"
// @Success      201 {object} models.Team
// @Failure      400 {object} map[string]interface{}
// @Failure      403 {object} map[string]interface{}
// @Security     BearerAuth
// @Router       /clubs/{clubID}/teams [post]
func (h *TeamHandler) CreateTeam(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	clubID, err := getIDFromURL(r, "clubID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input services.CreateTeamInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	team, err := h.teamService.CreateTeam(r.Context(), p, clubID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	respond(w, r, http.StatusCreated, team)
}

// GetTeam godoc
// @Summary      Команда по ID
// @Tags         teams
// @Produce      json
// @Param        teamID path int true "ID команды"
// @Success      200 {object} models.Team
// @Failure      404 {object} map[string]interface{}
// @Security     BearerAuth
// @Router       /teams/{teamID} [get]
func (h *TeamHandler) GetTeam(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	id, err := getIDFromURL(r, "teamID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	team, err := h.teamService.GetTeam(r.Context(), p, id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, team)
}

// ListTeams godoc
// @Summary      Список команд
// @Tags         teams
// @Produce      json
// @Param        club_id  query int    false "ID клуба"
// @Param        category query string false "Категория (u10..u21)"
// @Param        search   query string false "Поиск по команде или клубу"
// @Param        limit    query int    false "Лимит"
// @Param        offset   query int    false "Смещение"
// @Success      200 {array} models.Team
// @Security     BearerAuth
// @Router       /teams [get]
func (h *TeamHandler) ListTeams(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	filter, err := teamFilterFromQuery(r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	page, err := pageFromQuery(r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	teams, err := h.teamService.ListTeams(r.Context(), p, filter, page)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, teams)
}

// ListClubTeams godoc
// @Summary      Команды клуба
// @Tags         teams
// @Produce      json
// @Param        clubID path int true "ID клуба"
// @Success      200 {array} models.Team
// @Security     BearerAuth
// @Router       /clubs/{clubID}/teams [get]
func (h *TeamHandler) ListClubTeams(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	clubID, err := getIDFromURL(r, "clubID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	filter, err := teamFilterFromQuery(r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	filter.ClubID = &clubID

	teams, err := h.teamService.ListTeams(r.Context(), p, filter, services.Page{})
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, teams)
}

// ListMyTeams godoc
// @Summary      Команды пользователя
// @Description  Команды своих клубов, тренируемые и отслеживаемые
// @Tags         teams
// @Produce      json
// @Success      200 {array} models.Team
// @Security     BearerAuth
// @Router       /my-teams [get]
func (h *TeamHandler) ListMyTeams(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}

	teams, err := h.teamService.ListMyTeams(r.Context(), p)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, teams)
}

// UpdateTeam godoc
// @Summary      Обновить команду
// @Tags         teams
// @Accept       json
// @Produce      json
// @Param        teamID path int true "ID команды"
// @Param        input body services.UpdateTeamInput true "Изменяемые поля"
// @Success      200 {object} models.Team
// @Failure      400 {object} map[string]interface{}
// @Failure      403 {object} map[string]interface{}
// @Failure      404 {object} map[string]interface{}
// @Security     BearerAuth
// @Router       /teams/{teamID} [patch]
func (h *TeamHandler) UpdateTeam(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	id, err := getIDFromURL(r, "teamID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input services.UpdateTeamInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	team, err := h.teamService.UpdateTeam(r.Context(), p, id, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, team)
}

// DeleteTeam godoc
// @Summary      Удалить команду
// @Tags         teams
// @Param        teamID path int true "ID команды"
// @Success      204
// @Failure      403 {object} map[string]interface{}
// @Failure      404 {object} map[string]interface{}
// @Security     BearerAuth
// @Router       /teams/{teamID} [delete]
func (h *TeamHandler) DeleteTeam(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	id, err := getIDFromURL(r, "teamID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.teamService.DeleteTeam(r.Context(), p, id); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Follow godoc
// @Summary      Подписаться на команду
// @Tags         teams
// @Param        teamID path int true "ID команды"
// @Success      204
// @Failure      404 {object} map[string]interface{}
// @Security     BearerAuth
// @Router       /teams/{teamID}/follow [post]
func (h *TeamHandler) Follow(w http.ResponseWriter, r *http.Request) {
	h.toggleFollow(w, r, true)
}

// Unfollow godoc
// @Summary      Отписаться от команды
// @Tags         teams
// @Param        teamID path int true "ID команды"
// @Success      204
// @Security     BearerAuth
// @Router       /teams/{teamID}/follow [delete]
func (h *TeamHandler) Unfollow(w http.ResponseWriter, r *http.Request) {
	h.toggleFollow(w, r, false)
}

func (h *TeamHandler) toggleFollow(w http.ResponseWriter, r *http.Request, follow bool) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	id, err := getIDFromURL(r, "teamID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if follow {
		err = h.teamService.Follow(r.Context(), p, id)
	} else {
		err = h.teamService.Unfollow(r.Context(), p, id)
	}
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func teamFilterFromQuery(r *http.Request) (services.TeamListFilter, error) {
	var filter services.TeamListFilter
	clubID, err := queryInt(r, "club_id")
	if err != nil {
		return filter, err
	}
	filter.ClubID = clubID
	if category := r.URL.Query().Get("category"); category != "" {
		c := models.TeamCategory(category)
		filter.Category = &c
	}
	filter.Search = r.URL.Query().Get("search")
	return filter, nil
}
