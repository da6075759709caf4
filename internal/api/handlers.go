package api

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/elilinden/Support-bot/internal/audit"
	"github.com/elilinden/Support-bot/internal/coach"
	"github.com/elilinden/Support-bot/internal/facts"
	"github.com/elilinden/Support-bot/internal/response"
	"github.com/elilinden/Support-bot/internal/session"
	"github.com/elilinden/Support-bot/internal/summary"
	"github.com/elilinden/Support-bot/internal/upload"
)

const (
	maxBodyBytes   = 1 << 20
	// Multipart framing on top of the largest accepted file.
	maxUploadBytes = upload.MaxBytes + 1<<20
)

// Handler serves the HTTP API over a Service.
type Handler struct {
	svc      *Service
	logger   *zap.Logger
	now      func() time.Time
	upgrader websocket.Upgrader
}

// NewHandler creates a Handler.
func NewHandler(svc *Service, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{svc: svc, logger: logger, now: time.Now}
}

// RegisterRoutes mounts the API on r.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/api", func(r chi.Router) {
		r.Get("/health", h.handleHealth)
		r.Post("/coach", h.handleCoach)
		r.Post("/upload", h.handleUpload)
		r.Get("/counties", h.handleCounties)

		r.Route("/sessions", func(r chi.Router) {
			r.Get("/", h.handleListSessions)
			r.Post("/", h.handleCreateSession)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", h.handleGetSession)
				r.Patch("/", h.handlePatchSession)
				r.Delete("/", h.handleDeleteSession)
				r.Patch("/facts", h.handleUpdateFacts)
				r.Post("/turns", h.handleTurn)
				r.Post("/timeline", h.handleAddTimelineEvent)
				r.Delete("/timeline/{eventID}", h.handleRemoveTimelineEvent)
				r.Post("/documents", h.handleAddDocument)
				r.Get("/summary", h.handleSummary)
				r.Get("/audit", h.handleAudit)
			})
		})
	})
}

// RegisterWebSocket mounts the websocket coach channel on r. Handshakes
// are accepted only from allowedOrigins, the same globs the CORS layer uses.
func (h *Handler) RegisterWebSocket(r chi.Router, allowedOrigins []string) {
	h.upgrader = websocket.Upgrader{CheckOrigin: originAllowed(allowedOrigins)}
	r.Get("/ws/coach", h.handleWebSocket)
}

func decodeBody(r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		return badRequest("invalid JSON: " + err.Error())
	}
	return nil
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.Health())
}

func (h *Handler) handleCounties(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, facts.Counties)
}

func (h *Handler) handleCoach(w http.ResponseWriter, r *http.Request) {
	var req coach.Request
	if err := decodeBody(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	res, err := h.svc.Coach(r.Context(), req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *Handler) handleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	file, hdr, err := r.FormFile("file")
	if err != nil {
		h.writeError(w, r, badRequest("no file provided"))
		return
	}
	defer file.Close()

	res, err := h.svc.ExtractUpload(hdr.Filename, hdr.Header.Get("Content-Type"), file)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

type createSessionRequest struct {
	Title  string `json:"title"`
	County string `json:"county"`
}

func (h *Handler) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req createSessionRequest
	if r.ContentLength != 0 {
		if err := decodeBody(r, &req); err != nil {
			h.writeError(w, r, err)
			return
		}
	}
	cs, err := h.svc.CreateSession(r.Context(), req.Title, req.County)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, cs)
}

// sessionSummary is the list view of a session.
type sessionSummary struct {
	ID              string    `json:"id"`
	Title           string    `json:"title"`
	County          string    `json:"county"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
	ProgressPercent int       `json:"progressPercent"`
	Messages        int       `json:"messages"`
	SafetyFlags     int       `json:"safetyFlags"`
}

func (h *Handler) handleListSessions(w http.ResponseWriter, r *http.Request) {
	list, err := h.svc.ListSessions(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	out := make([]sessionSummary, 0, len(list))
	for _, cs := range list {
		out = append(out, sessionSummary{
			ID:              cs.ID,
			Title:           cs.Title,
			County:          cs.Jurisdiction.County,
			CreatedAt:       cs.CreatedAt,
			UpdatedAt:       cs.UpdatedAt,
			ProgressPercent: cs.ProgressPercent,
			Messages:        len(cs.Conversation),
			SafetyFlags:     len(cs.SafetyFlags),
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) handleGetSession(w http.ResponseWriter, r *http.Request) {
	cs, err := h.svc.GetSession(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, cs)
}

func (h *Handler) handlePatchSession(w http.ResponseWriter, r *http.Request) {
	var p session.Patch
	if err := decodeBody(r, &p); err != nil {
		h.writeError(w, r, err)
		return
	}
	cs, err := h.svc.PatchSession(r.Context(), chi.URLParam(r, "id"), p)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, cs)
}

func (h *Handler) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteSession(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type factsResponse struct {
	Session       *session.CaseSession `json:"session"`
	ChangedFields []string             `json:"changedFields"`
}

func (h *Handler) handleUpdateFacts(w http.ResponseWriter, r *http.Request) {
	var u facts.Update
	if err := decodeBody(r, &u); err != nil {
		h.writeError(w, r, err)
		return
	}
	cs, changed, err := h.svc.UpdateFacts(r.Context(), chi.URLParam(r, "id"), u)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, factsResponse{Session: cs, ChangedFields: changed})
}

func (h *Handler) handleTurn(w http.ResponseWriter, r *http.Request) {
	var in TurnInput
	if err := decodeBody(r, &in); err != nil {
		h.writeError(w, r, err)
		return
	}
	out, err := h.svc.Turn(r.Context(), chi.URLParam(r, "id"), in)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) handleAddTimelineEvent(w http.ResponseWriter, r *http.Request) {
	var ev response.Event
	if err := decodeBody(r, &ev); err != nil {
		h.writeError(w, r, err)
		return
	}
	added, err := h.svc.AddTimelineEvent(r.Context(), chi.URLParam(r, "id"), ev)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, added)
}

func (h *Handler) handleRemoveTimelineEvent(w http.ResponseWriter, r *http.Request) {
	err := h.svc.RemoveTimelineEvent(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "eventID"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleAddDocument(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	file, hdr, err := r.FormFile("file")
	if err != nil {
		h.writeError(w, r, badRequest("no file provided"))
		return
	}
	defer file.Close()

	doc, res, err := h.svc.AddDocument(r.Context(), chi.URLParam(r, "id"), hdr.Filename, hdr.Header.Get("Content-Type"), file)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, struct {
		Document  *session.Document `json:"document"`
		CharCount int               `json:"charCount"`
		Truncated bool              `json:"truncated"`
		Warning   string            `json:"warning,omitempty"`
	}{doc, res.CharCount, res.Truncated, res.Warning})
}

// handleSummary renders the case summary. ?format=html returns a page,
// ?format=text the short clipboard text, and anything else markdown.
func (h *Handler) handleSummary(w http.ResponseWriter, r *http.Request) {
	cs, err := h.svc.GetSession(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	now := h.now()

	switch strings.ToLower(r.URL.Query().Get("format")) {
	case "html":
		page, err := summary.HTML(cs, now)
		if err != nil {
			h.writeError(w, r, err)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write(page)
	case "text":
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Write([]byte(summary.Text(cs, now)))
	default:
		w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
		w.Write([]byte(summary.Markdown(cs, now)))
	}
}

func (h *Handler) handleAudit(w http.ResponseWriter, r *http.Request) {
	entries, err := h.svc.Audit(r.Context(), chi.URLParam(r, "id"), audit.ParseFilter(r))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}
