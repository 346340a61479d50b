package httpapi

import (
	"net/http"
	"strings"
	"time"

	"github.com/fairyhunter13/storefront/internal/model"
)

type blogRequest struct {
	Title   string `json:"title"`
	Author  string `json:"author"`
	Date    string `json:"date"`
	Image   string `json:"image"`
	Content string `json:"content"`
}

var blogDateLayouts = []string{time.RFC3339, "2006-01-02"}

func parseBlogDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, true
	}
	for _, layout := range blogDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

type contactRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Comment string `json:"comment"`
}

func (a *App) listBlogsHandler(w http.ResponseWriter, r *http.Request) {
	blogs, err := a.Blogs.List(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, blogs)
}

func (a *App) getBlogHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	b, err := a.Blogs.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

func (a *App) createBlogHandler(w http.ResponseWriter, r *http.Request) {
	var req blogRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	date, ok := parseBlogDate(req.Date)
	if !ok {
		WriteJSONError(w, http.StatusBadRequest, "validation_error", "date must be RFC 3339 or YYYY-MM-DD")
		return
	}
	b, err := a.Blogs.Create(r.Context(), model.Blog{
		Title:   req.Title,
		Author:  req.Author,
		Date:    date,
		Image:   req.Image,
		Content: req.Content,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, createdResp{ID: b.ID})
}

func (a *App) contactHandler(w http.ResponseWriter, r *http.Request) {
	var req contactRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	m, err := a.Contact.Submit(r.Context(), req.Name, req.Email, req.Comment)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, createdResp{ID: m.ID})
}
