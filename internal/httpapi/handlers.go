package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"go.klb.dev/clipstream/internal/core"
)

type handler struct {
	c *core.Core
}

func entryID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	return id, err == nil && id > 0
}

func (h *handler) search(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil {
			writeBadRequest(w, "limit must be an integer")
			return
		}
		limit = n
	}
	entries, err := h.c.Search(r.Context(), r.URL.Query().Get("q"), limit)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"entries": entries})
}

func (h *handler) get(w http.ResponseWriter, r *http.Request) {
	id, ok := entryID(r)
	if !ok {
		writeBadRequest(w, "invalid entry id")
		return
	}
	e, err := h.c.Get(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, e)
}

type updateBody struct {
	Content string `json:"content"`
}

func (h *handler) update(w http.ResponseWriter, r *http.Request) {
	id, ok := entryID(r)
	if !ok {
		writeBadRequest(w, "invalid entry id")
		return
	}
	var body updateBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}
	if err := h.c.UpdateContent(r.Context(), id, body.Content); err != nil {
		writeError(w, err)
		return
	}
	e, err := h.c.Get(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, e)
}

func (h *handler) delete(w http.ResponseWriter, r *http.Request) {
	id, ok := entryID(r)
	if !ok {
		writeBadRequest(w, "invalid entry id")
		return
	}
	removed, err := h.c.Delete(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"removed": removed})
}

func (h *handler) togglePin(w http.ResponseWriter, r *http.Request) {
	id, ok := entryID(r)
	if !ok {
		writeBadRequest(w, "invalid entry id")
		return
	}
	pinned, err := h.c.TogglePin(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"pinned": pinned})
}

func (h *handler) copy(w http.ResponseWriter, r *http.Request) {
	h.write(w, r, h.c.Copy)
}

func (h *handler) paste(w http.ResponseWriter, r *http.Request) {
	h.write(w, r, h.c.Paste)
}

func (h *handler) write(w http.ResponseWriter, r *http.Request, fn func(context.Context, int64, core.TextFormat) error) {
	id, ok := entryID(r)
	if !ok {
		writeBadRequest(w, "invalid entry id")
		return
	}
	if err := fn(r.Context(), id, core.ParseFormat(r.URL.Query().Get("format"))); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handler) listIgnored(w http.ResponseWriter, r *http.Request) {
	names, err := h.c.IgnoredApps(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string][]string{"names": names})
}

type ignoredBody struct {
	Name string `json:"name"`
}

func (h *handler) addIgnored(w http.ResponseWriter, r *http.Request) {
	var body ignoredBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}
	if err := h.c.AddIgnoredApp(r.Context(), body.Name); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handler) removeIgnored(w http.ResponseWriter, r *http.Request) {
	removed, err := h.c.RemoveIgnoredApp(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"removed": removed})
}

type settingBody struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

func (h *handler) getSetting(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	v, ok, err := h.c.Setting(r.Context(), key)
	if err != nil {
		writeError(w, err)
		return
	}
	if !ok {
		writeJSON(w, http.StatusNotFound, ErrorResponse{Error: "not_found", Message: "setting " + key + " is not set"})
		return
	}
	writeJSON(w, http.StatusOK, settingBody{Key: key, Value: v})
}

func (h *handler) setSetting(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	var body settingBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}
	if err := h.c.SetSetting(r.Context(), key, body.Value); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, settingBody{Key: key, Value: body.Value})
}

func (h *handler) status(w http.ResponseWriter, r *http.Request) {
	st, err := h.c.Status(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}
