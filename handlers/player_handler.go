package handlers

import (
	"context"
	"net/http"

	"github.com/Dosada05/u13-football/services"
)

type PlayerHandler struct {
	playerService services.PlayerService
}

func NewPlayerHandler(ps services.PlayerService) *PlayerHandler {
	return &PlayerHandler{playerService: ps}
}

// CreatePlayer godoc
// @Summary      Добавить игрока в команду
// @Tags         players
// @Accept       json
// @Produce      json
// @Param        teamID path int true "ID команды"
// @Param        input body services.CreatePlayerInput true "Данные игрока"
// @Success      201 {object} models.Player
// @Failure      400 {object} map[string]interface{}
// @Failure      403 {object} map[string]interface{}
// @Security     BearerAuth
// @Router       /teams/{teamID}/players [post]
func (h *PlayerHandler) CreatePlayer(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	teamID, err := getIDFromURL(r, "teamID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input services.CreatePlayerInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	player, err := h.playerService.CreatePlayer(r.Context(), p, teamID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	respond(w, r, http.StatusCreated, player)
}

// GetPlayer godoc
// @Summary      Игрок по ID
// @Tags         players
// @Produce      json
// @Param        playerID path int true "ID игрока"
// @Success      200 {object} models.Player
// @Failure      404 {object} map[string]interface{}
// @Security     BearerAuth
// @Router       /players/{playerID} [get]
func (h *PlayerHandler) GetPlayer(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	id, err := getIDFromURL(r, "playerID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	player, err := h.playerService.GetPlayer(r.Context(), p, id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, player)
}

// ListPlayers godoc
// @Summary      Список игроков
// @Tags         players
// @Produce      json
// @Param        team_id   query int    false "ID команды"
// @Param        is_main   query bool   false "Только основной состав"
// @Param        is_active query bool   false "Только активные"
// @Param        search    query string false "Поиск по имени"
// @Param        limit     query int    false "Лимит"
// @Param        offset    query int    false "Смещение"
// @Success      200 {array} models.Player
// @Security     BearerAuth
// @Router       /players [get]
func (h *PlayerHandler) ListPlayers(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	filter, err := playerFilterFromQuery(r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	page, err := pageFromQuery(r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	players, err := h.playerService.ListPlayers(r.Context(), p, filter, page)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, players)
}

// ListTeamPlayers godoc
// @Summary      Игроки команды
// @Tags         players
// @Produce      json
// @Param        teamID path int true "ID команды"
// @Success      200 {array} models.Player
// @Security     BearerAuth
// @Router       /teams/{teamID}/players [get]
func (h *PlayerHandler) ListTeamPlayers(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	teamID, err := getIDFromURL(r, "teamID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	filter, err := playerFilterFromQuery(r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	filter.TeamID = &teamID

	players, err := h.playerService.ListPlayers(r.Context(), p, filter, services.Page{})
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, players)
}

// ListMyPlayers godoc
// @Summary      Игроки пользователя
// @Description  Игроки отслеживаемых команд и дети по email родителя
// @Tags         players
// @Produce      json
// @Success      200 {array} models.Player
// @Security     BearerAuth
// @Router       /my-players [get]
func (h *PlayerHandler) ListMyPlayers(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}

	players, err := h.playerService.ListMyPlayers(r.Context(), p)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, players)
}

// ListMainPlayers godoc
// @Summary      Основной состав команды
// @Tags         players
// @Produce      json
// @Param        teamID path int true "ID команды"
// @Success      200 {object} services.TeamRoster
// @Failure      404 {object} map[string]interface{}
// @Security     BearerAuth
// @Router       /teams/{teamID}/players/main [get]
func (h *PlayerHandler) ListMainPlayers(w http.ResponseWriter, r *http.Request) {
	h.roster(w, r, h.playerService.ListMainPlayers)
}

// ListSubstitutes godoc
// @Summary      Запасные игроки команды
// @Tags         players
// @Produce      json
// @Param        teamID path int true "ID команды"
// @Success      200 {object} services.TeamRoster
// @Failure      404 {object} map[string]interface{}
// @Security     BearerAuth
// @Router       /teams/{teamID}/players/substitutes [get]
func (h *PlayerHandler) ListSubstitutes(w http.ResponseWriter, r *http.Request) {
	h.roster(w, r, h.playerService.ListSubstitutes)
}

func (h *PlayerHandler) roster(w http.ResponseWriter, r *http.Request, list func(context.Context, *services.Principal, int) (*services.TeamRoster, error)) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	teamID, err := getIDFromURL(r, "teamID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	roster, err := list(r.Context(), p, teamID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, roster)
}

// UpdatePlayer godoc
// @Summary      Обновить игрока
// @Tags         players
// @Accept       json
// @Produce      json
// @Param        playerID path int true "ID игрока"
// @Param        input body services.UpdatePlayerInput true "Изменяемые поля"
// @Success      200 {object} models.Player
// @Failure      400 {object} map[string]interface{}
// @Failure      403 {object} map[string]interface{}
// @Failure      404 {object} map[string]interface{}
// @Security     BearerAuth
// @Router       /players/{playerID} [patch]
func (h *PlayerHandler) UpdatePlayer(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	id, err := getIDFromURL(r, "playerID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input services.UpdatePlayerInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	player, err := h.playerService.UpdatePlayer(r.Context(), p, id, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, player)
}

// SetMain godoc
// @Summary      Перевести игрока в основной состав
// @Description  В основном составе не больше 11 активных игроков
// @Tags         players
// @Produce      json
// @Param        playerID path int true "ID игрока"
// @Success      200 {object} models.Player
// @Failure      400 {object} map[string]interface{}
// @Failure      403 {object} map[string]interface{}
// @Security     BearerAuth
// @Router       /players/{playerID}/set-main [post]
func (h *PlayerHandler) SetMain(w http.ResponseWriter, r *http.Request) {
	h.setMain(w, r, true)
}

// RemoveMain godoc
// @Summary      Убрать игрока из основного состава
// @Tags         players
// @Produce      json
// @Param        playerID path int true "ID игрока"
// @Success      200 {object} models.Player
// @Failure      403 {object} map[string]interface{}
// @Security     BearerAuth
// @Router       /players/{playerID}/remove-main [post]
func (h *PlayerHandler) RemoveMain(w http.ResponseWriter, r *http.Request) {
	h.setMain(w, r, false)
}

func (h *PlayerHandler) setMain(w http.ResponseWriter, r *http.Request, main bool) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	id, err := getIDFromURL(r, "playerID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	player, err := h.playerService.SetMainPlayer(r.Context(), p, id, main)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, player)
}

// DeletePlayer godoc
// @Summary      Удалить игрока
// @Tags         players
// @Param        playerID path int true "ID игрока"
// @Success      204
// @Failure      403 {object} map[string]interface{}
// @Failure      404 {object} map[string]interface{}
// @Security     BearerAuth
// @Router       /players/{playerID} [delete]
func (h *PlayerHandler) DeletePlayer(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	id, err := getIDFromURL(r, "playerID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.playerService.DeletePlayer(r.Context(), p, id); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// UploadPhoto godoc
// @Summary      Загрузить фото игрока
// @Tags         players
// @Accept       multipart/form-data
// @Produce      json
// @Param        playerID path int true "ID игрока"
// @Param        photo formData file true "Фото"
// @Success      200 {object} models.Player
// @Failure      400 {object} map[string]interface{}
// @Security     BearerAuth
// @Router       /players/{playerID}/photo [post]
func (h *PlayerHandler) UploadPhoto(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	id, err := getIDFromURL(r, "playerID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	file, contentType, err := readUpload(w, r, "photo")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	defer file.Close()

	player, err := h.playerService.UploadPhoto(r.Context(), p, id, file, contentType)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, player)
}

// GetPlayerStats godoc
// @Summary      Статистика игрока по матчам
// @Tags         players
// @Produce      json
// @Param        playerID path int true "ID игрока"
// @Success      200 {object} services.PlayerStatsSummary
// @Failure      403 {object} map[string]interface{}
// @Failure      404 {object} map[string]interface{}
// @Security     BearerAuth
// @Router       /players/{playerID}/stats [get]
func (h *PlayerHandler) GetPlayerStats(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	id, err := getIDFromURL(r, "playerID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	stats, err := h.playerService.GetPlayerStats(r.Context(), p, id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, stats)
}

func playerFilterFromQuery(r *http.Request) (services.PlayerListFilter, error) {
	var filter services.PlayerListFilter
	var err error
	if filter.TeamID, err = queryInt(r, "team_id"); err != nil {
		return filter, err
	}
	if filter.IsMain, err = queryBool(r, "is_main"); err != nil {
		return filter, err
	}
	if filter.IsActive, err = queryBool(r, "is_active"); err != nil {
		return filter, err
	}
	filter.Search = r.URL.Query().Get("search")
	return filter, nil
}
