package http

import (
	"fmt"
	"net/http"
	"time"

	"github.com/strogmv/blogadmin/internal/pkg/errors"
	"github.com/strogmv/blogadmin/internal/port"
)

type PostsHandler struct {
	posts   port.Posts
	reports port.Reports
}

func NewPostsHandler(posts port.Posts, reports port.Reports) *PostsHandler {
	return &PostsHandler{posts: posts, reports: reports}
}

func (h *PostsHandler) ListPosts(w http.ResponseWriter, r *http.Request) {
	posts, err := h.posts.ListPosts(r.Context(), port.ListPostsRequest{SearchKey: r.URL.Query().Get("searchKey")})
	if err != nil {
		errors.WriteError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, posts)
}

func (h *PostsHandler) GetPost(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		errors.WriteError(w, r, err)
		return
	}
	post, err := h.posts.GetPost(r.Context(), id)
	if err != nil {
		errors.WriteError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, post)
}

func (h *PostsHandler) CreatePost(w http.ResponseWriter, r *http.Request) {
	var req port.CreatePostRequest
	if err := decodeJSONRequest(r, &req); err != nil {
		errors.WriteError(w, r, err)
		return
	}
	post, err := h.posts.CreatePost(r.Context(), req)
	if err != nil {
		errors.WriteError(w, r, err)
		return
	}
	w.Header().Set("Location", fmt.Sprintf("/api/posts/%d", post.ID))
	writeJSON(w, http.StatusCreated, post)
}

func (h *PostsHandler) UpdatePost(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		errors.WriteError(w, r, err)
		return
	}
	var req port.UpdatePostRequest
	if err := decodeJSONRequest(r, &req); err != nil {
		errors.WriteError(w, r, err)
		return
	}
	if err := h.posts.UpdatePost(r.Context(), id, req); err != nil {
		errors.WriteError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *PostsHandler) DeletePost(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		errors.WriteError(w, r, err)
		return
	}
	if err := h.posts.DeletePost(r.Context(), id); err != nil {
		errors.WriteError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *PostsHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	cats, err := h.posts.ListCategories(r.Context())
	if err != nil {
		errors.WriteError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, cats)
}

func (h *PostsHandler) ListTags(w http.ResponseWriter, r *http.Request) {
	tags, err := h.posts.ListTags(r.Context())
	if err != nil {
		errors.WriteError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tags)
}

func (h *PostsHandler) PostsReport(w http.ResponseWriter, r *http.Request) {
	pdf, err := h.reports.PostsPDF(r.Context(), r.URL.Query().Get("searchKey"))
	if err != nil {
		errors.WriteError(w, r, err)
		return
	}
	name := fmt.Sprintf("posts-%s.pdf", time.Now().UTC().Format("20060102"))
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(pdf)
}

func (h *PostsHandler) ArchivePostsReport(w http.ResponseWriter, r *http.Request) {
	out, err := h.reports.ArchivePostsPDF(r.Context(), r.URL.Query().Get("searchKey"))
	if err != nil {
		errors.WriteError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, out)
}
