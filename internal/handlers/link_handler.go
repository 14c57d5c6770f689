package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/affilink/internal/common"
	"github.com/ternarybob/affilink/internal/interfaces"
	"github.com/ternarybob/affilink/internal/services/links"
)

// LinkHandler exposes link lifecycle operations over HTTP
type LinkHandler struct {
	service *links.Service
	logger  arbor.ILogger
}

// NewLinkHandler creates a new link handler
func NewLinkHandler(service *links.Service) *LinkHandler {
	return &LinkHandler{
		service: service,
		logger:  common.GetLogger(),
	}
}

// LinksHandler handles /api/links: POST creates, GET lists
func (h *LinkHandler) LinksHandler(w http.ResponseWriter, r *http.Request) {
	RouteByMethod(w, r, MethodRouter{
		http.MethodPost: h.createLink,
		http.MethodGet:  h.listLinks,
	})
}

func (h *LinkHandler) createLink(w http.ResponseWriter, r *http.Request) {
	var req links.CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	link, err := h.service.Create(r.Context(), &req)
	if err != nil {
		h.logger.Warn().Err(err).Str("url", req.URL).Msg("Link create rejected")
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, link)
}

func (h *LinkHandler) listLinks(w http.ResponseWriter, r *http.Request) {
	all, err := h.service.List(r.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to list links")
		writeJSONError(w, http.StatusInternalServerError, "failed to list links")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"links": all,
		"count": len(all),
	})
}

// BulkCreateHandler handles POST /api/links/bulk
func (h *LinkHandler) BulkCreateHandler(w http.ResponseWriter, r *http.Request) {
	RouteByMethod(w, r, MethodRouter{http.MethodPost: h.bulkCreate})
}

func (h *LinkHandler) bulkCreate(w http.ResponseWriter, r *http.Request) {
	var req links.BulkCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.service.BulkCreate(r.Context(), &req)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// LinkByIDHandler handles GET/PUT/DELETE /api/links/{id}
func (h *LinkHandler) LinkByIDHandler(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/api/links/")
	if id == "" || strings.Contains(id, "/") {
		writeJSONError(w, http.StatusBadRequest, "invalid link id")
		return
	}

	RouteByMethod(w, r, MethodRouter{
		http.MethodGet: func(w http.ResponseWriter, r *http.Request) {
			link, err := h.service.Get(r.Context(), id)
			if err != nil {
				h.writeLinkError(w, err)
				return
			}
			writeJSON(w, http.StatusOK, link)
		},
		http.MethodPut: func(w http.ResponseWriter, r *http.Request) {
			var req links.UpdateRequest
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				writeJSONError(w, http.StatusBadRequest, "invalid request body")
				return
			}
			link, err := h.service.Update(r.Context(), id, &req)
			if err != nil {
				h.writeLinkError(w, err)
				return
			}
			writeJSON(w, http.StatusOK, link)
		},
		http.MethodDelete: func(w http.ResponseWriter, r *http.Request) {
			if err := h.service.Delete(r.Context(), id); err != nil {
				h.writeLinkError(w, err)
				return
			}
			writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
		},
	})
}

// RedirectHandler handles GET /go/{id}: counts the click and redirects the
// visitor to the affiliate URL.
func (h *LinkHandler) RedirectHandler(w http.ResponseWriter, r *http.Request) {
	RouteByMethod(w, r, MethodRouter{http.MethodGet: h.redirect})
}

func (h *LinkHandler) redirect(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/go/")
	if id == "" {
		writeJSONError(w, http.StatusBadRequest, "missing link id")
		return
	}

	target, err := h.service.Redirect(r.Context(), id)
	if err != nil {
		h.writeLinkError(w, err)
		return
	}

	http.Redirect(w, r, target, http.StatusFound)
}

func (h *LinkHandler) writeLinkError(w http.ResponseWriter, err error) {
	if errors.Is(err, interfaces.ErrLinkNotFound) {
		writeJSONError(w, http.StatusNotFound, "link not found")
		return
	}
	if strings.HasPrefix(err.Error(), "invalid") {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}
	h.logger.Error().Err(err).Msg("Link operation failed")
	writeJSONError(w, http.StatusInternalServerError, err.Error())
}
