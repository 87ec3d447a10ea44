package httpx

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/phampho1103/UITPAY-Web/internal/audit"
	"github.com/phampho1103/UITPAY-Web/internal/sessions"
)

// Rechecker issues the acknowledge write for one user.
type Rechecker interface {
	Recheck(ctx context.Context, userID string) error
}

// AuditLister reads the recorded rechecks of one user.
type AuditLister interface {
	ListByUser(ctx context.Context, userID string, limit int) ([]audit.Entry, error)
}

type SessionsHandler struct {
	Board     *sessions.Board
	Rechecker Rechecker
	Audit     AuditLister // optional
	// OperatorHeader names the request header that identifies the operator.
	OperatorHeader string
}

type RecheckResp struct {
	UserID    string `json:"userid"`
	IsChecked bool   `json:"isChecked"`
}

func (h *SessionsHandler) Register(r chi.Router) {
	r.Get("/ws/sessions", h.stream)
	r.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(requestTimeout))
		r.Get("/sessions", h.list)
		r.Get("/sessions/{id}", h.get)
		r.Post("/sessions/{id}/recheck", h.recheck)
		r.Get("/sessions/{id}/audit", h.auditTrail)
	})
}

func (h *SessionsHandler) list(w http.ResponseWriter, r *http.Request) {
	recs, err := h.Board.Records()
	f := sessions.Frame{Users: recs}
	if err != nil {
		f.Error = err.Error()
	}
	writeJSON(w, http.StatusOK, f)
}

func (h *SessionsHandler) get(w http.ResponseWriter, r *http.Request) {
	rec, ok := h.Board.Find(chi.URLParam(r, "id"))
	if !ok {
		writeError(w, http.StatusNotFound, "not found")
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (h *SessionsHandler) recheck(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "id")
	rec, ok := h.Board.Find(userID)
	if !ok {
		writeError(w, http.StatusNotFound, "not found")
		return
	}
	if !rec.CanRecheck() {
		writeError(w, http.StatusConflict, "user is still buying")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()
	if h.OperatorHeader != "" {
		ctx = audit.WithOperator(ctx, r.Header.Get(h.OperatorHeader))
	}
	ctx = audit.WithTrace(ctx, middleware.GetReqID(r.Context()))

	if err := h.Rechecker.Recheck(ctx, userID); err != nil {
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	writeJSON(w, http.StatusAccepted, RecheckResp{UserID: userID, IsChecked: true})
}

func (h *SessionsHandler) auditTrail(w http.ResponseWriter, r *http.Request) {
	if h.Audit == nil {
		writeError(w, http.StatusNotImplemented, "audit trail disabled")
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	entries, err := h.Audit.ListByUser(ctx, chi.URLParam(r, "id"), limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, entries)
}
