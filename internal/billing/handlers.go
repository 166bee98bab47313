package billing

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/zombor/billed/internal/bill"
	"github.com/zombor/billed/internal/session"
	"github.com/zombor/billed/internal/store"
)

const maxAttachmentSize = int64(20 << 20)

// recorder collects what a workflow asked the shell to do during one request
type recorder struct {
	route    string
	messages []string
}

func (r *recorder) Navigate(route string) {
	r.route = route
}

func (r *recorder) Notify(message string) {
	r.messages = append(r.messages, message)
}

// decision is the response of a workflow that navigates on success
type decision struct {
	Bill bill.Bill `json:"bill"`
	Next string    `json:"next"`
}

func setCORSHeaders(w http.ResponseWriter) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
	w.Header().Set("Access-Control-Max-Age", "3600")
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Error encoding response", "error", err)
	}
}

func writeJSONError(w http.ResponseWriter, message string, code int) {
	writeJSON(w, code, map[string]string{"error": message})
}

// writeError maps workflow errors to status codes. Persistence API
// failures surface as 502 with their message.
func writeError(w http.ResponseWriter, err error) {
	var apiErr *store.APIError
	var urlErr *url.Error
	code := http.StatusInternalServerError
	switch {
	case errors.Is(err, ErrNoRepository):
		code = http.StatusServiceUnavailable
	case errors.Is(err, ErrNotPending):
		code = http.StatusConflict
	case errors.Is(err, ErrMissingAttachment):
		code = http.StatusBadRequest
	case errors.Is(err, ErrForbidden):
		code = http.StatusForbidden
	case errors.Is(err, ErrBillNotFound):
		code = http.StatusNotFound
	case errors.Is(err, session.ErrNoSession):
		code = http.StatusUnauthorized
	case errors.As(err, &apiErr), errors.As(err, &urlErr):
		code = http.StatusBadGateway
	}
	if code >= http.StatusInternalServerError {
		slog.Error("Request failed", "status", code, "error", err)
	}
	writeJSONError(w, err.Error(), code)
}

// depsFor returns the shared dependencies wired to a per-request recorder
func (s *Server) depsFor(rec *recorder) Deps {
	deps := s.deps
	deps.Navigator = rec
	deps.Notifier = rec
	return deps
}

func (s *Server) handleSession(w http.ResponseWriter, r *http.Request) {
	who, err := s.deps.Identity.Identity()
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"type":  string(who.Type),
		"email": who.Email,
		"home":  HomeRoute(who),
	})
}

func (s *Server) handleListBills(w http.ResponseWriter, r *http.Request) {
	view := NewEmployeeView(s.depsFor(&recorder{}))
	bills, ok, err := view.Bills(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	if !ok {
		writeError(w, ErrNoRepository)
		return
	}
	writeJSON(w, http.StatusOK, bills)
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	view, err := NewAdminReviewView(s.depsFor(&recorder{}))
	if err != nil {
		writeError(w, err)
		return
	}
	dashboard, ok, err := view.Dashboard(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	if !ok {
		writeError(w, ErrNoRepository)
		return
	}
	writeJSON(w, http.StatusOK, dashboard)
}

func (s *Server) handleAccept(w http.ResponseWriter, r *http.Request) {
	s.handleDecision(w, r, (*AdminReviewView).Accept)
}

func (s *Server) handleRefuse(w http.ResponseWriter, r *http.Request) {
	s.handleDecision(w, r, (*AdminReviewView).Refuse)
}

func (s *Server) handleDecision(w http.ResponseWriter, r *http.Request, decide func(*AdminReviewView, context.Context, string) (bill.Bill, error)) {
	rec := &recorder{}
	view, err := NewAdminReviewView(s.depsFor(rec))
	if err != nil {
		writeError(w, err)
		return
	}

	b, err := decide(view, r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, decision{Bill: b, Next: rec.route})
}

func (s *Server) handleUploadAttachment(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxAttachmentSize)
	if err := r.ParseMultipartForm(maxAttachmentSize); err != nil {
		slog.Error("Error parsing multipart form", "error", err)
		writeJSONError(w, "Error parsing form", http.StatusBadRequest)
		return
	}

	f, header, err := r.FormFile("file")
	if err != nil {
		writeJSONError(w, "No file was selected. Please choose a file to upload.", http.StatusBadRequest)
		return
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		slog.Error("Error reading file data", "error", err, "filename", header.Filename)
		writeJSONError(w, "Error reading file. Please try again.", http.StatusInternalServerError)
		return
	}

	rec := &recorder{}
	view := NewEmployeeView(s.depsFor(rec))
	draft, accepted, err := view.Submission().SelectFile(r.Context(), header.Filename, data)
	if err != nil {
		writeError(w, err)
		return
	}
	if !accepted {
		message := bill.InvalidAttachmentMessage
		if len(rec.messages) > 0 {
			message = rec.messages[0]
		}
		writeJSONError(w, message, http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusCreated, draft)
}

func (s *Server) handleSubmitBill(w http.ResponseWriter, r *http.Request) {
	var form Form
	if err := json.NewDecoder(r.Body).Decode(&form); err != nil {
		writeJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	rec := &recorder{}
	view := NewEmployeeView(s.depsFor(rec))
	created, err := view.Submission().Submit(r.Context(), form)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, decision{Bill: created, Next: rec.route})
}
