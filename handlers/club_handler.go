package handlers

import (
	"net/http"

	"github.com/Dosada05/u13-football/services"
)

type ClubHandler struct {
	clubService services.ClubService
}

func NewClubHandler(cs services.ClubService) *ClubHandler {
	return &ClubHandler{clubService: cs}
}

// CreateClub godoc
// @Summary      Создать клуб
// @Tags         clubs
// @Accept       json
// @Produce      json
// @Param        input body services.CreateClubInput true "Данные клуба"
// @Success      201 {object} models.Club
// @Failure      400 {object} map[string]interface{}
// @Failure      403 {object} map[string]interface{}
// @Security     BearerAuth
// @Router       /clubs [post]
func (h *ClubHandler) CreateClub(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}

	var input services.CreateClubInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	club, err := h.clubService.CreateClub(r.Context(), p, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	respond(w, r, http.StatusCreated, club)
}

// GetClub godoc
// @Summary      Клуб по ID
// @Tags         clubs
// @Produce      json
// @Param        clubID path int true "ID клуба"
// @Success      200 {object} models.Club
// @Failure      404 {object} map[string]interface{}
// @Security     BearerAuth
// @Router       /clubs/{clubID} [get]
func (h *ClubHandler) GetClub(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	id, err := getIDFromURL(r, "clubID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	club, err := h.clubService.GetClub(r.Context(), p, id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, club)
}

// ListClubs godoc
// @Summary      Список клубов
// @Tags         clubs
// @Produce      json
// @Param        search query string false "Поиск по названию"
// @Param        limit  query int false "Лимит"
// @Param        offset query int false "Смещение"
// @Success      200 {array} models.Club
// @Security     BearerAuth
// @Router       /clubs [get]
func (h *ClubHandler) ListClubs(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	page, err := pageFromQuery(r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	clubs, err := h.clubService.ListClubs(r.Context(), p, r.URL.Query().Get("search"), page)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, clubs)
}

// ListMyClubs godoc
// @Summary      Клубы текущего пользователя
// @Tags         clubs
// @Produce      json
// @Success      200 {array} models.Club
// @Security     BearerAuth
// @Router       /my-clubs [get]
func (h *ClubHandler) ListMyClubs(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}

	clubs, err := h.clubService.ListMyClubs(r.Context(), p)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, clubs)
}

// UpdateClub godoc
// @Summary      Обновить клуб
// @Tags         clubs
// @Accept       json
// @Produce      json
// @Param        clubID path int true "ID клуба"
// @Param        input body services.UpdateClubInput true "Изменяемые поля"
// @Success      200 {object} models.Club
// @Failure      400 {object} map[string]interface{}
// @Failure      403 {object} map[string]interface{}
// @Failure      404 {object} map[string]interface{}
// @Security     BearerAuth
// @Router       /clubs/{clubID} [patch]
func (h *ClubHandler) UpdateClub(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	id, err := getIDFromURL(r, "clubID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input services.UpdateClubInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	club, err := h.clubService.UpdateClub(r.Context(), p, id, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, club)
}

// DeleteClub godoc
// @Summary      Удалить клуб
// @Tags         clubs
// @Param        clubID path int true "ID клуба"
// @Success      204
// @Failure      403 {object} map[string]interface{}
// @Failure      404 {object} map[string]interface{}
// @Security     BearerAuth
// @Router       /clubs/{clubID} [delete]
func (h *ClubHandler) DeleteClub(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	id, err := getIDFromURL(r, "clubID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.clubService.DeleteClub(r.Context(), p, id); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// UploadLogo godoc
// @Summary      Загрузить логотип клуба
// @Tags         clubs
// @Accept       multipart/form-data
// @Produce      json
// @Param        clubID path int true "ID клуба"
// @Param        logo formData file true "Логотип"
// @Success      200 {object} models.Club
// @Failure      400 {object} map[string]interface{}
// @Security     BearerAuth
// @Router       /clubs/{clubID}/logo [post]
func (h *ClubHandler) UploadLogo(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	id, err := getIDFromURL(r, "clubID")
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

	club, err := h.clubService.UploadLogo(r.Context(), p, id, file, contentType)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, club)
}
