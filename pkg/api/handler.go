package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/hazyhaar/jawab/pkg/kit"
	"github.com/hazyhaar/jawab/pkg/match"
	"github.com/hazyhaar/jawab/pkg/store"
)

// NewRouter returns an http.Handler with all Jawab API routes.
func NewRouter(m *match.Matcher, st *store.DB) http.Handler {
	mux := http.NewServeMux()
	h := &handler{
		ask:   askEndpoint(m),
		teach: teachEndpoint(m),
		stats: statsEndpoint(st),
		store: st,
	}

	mux.HandleFunc("POST /v1/ask", h.handleAsk)
	mux.HandleFunc("GET /v1/ask/{question}", h.handleAskPath)
	mux.HandleFunc("POST /v1/teach", h.handleTeach)
	mux.HandleFunc("GET /v1/stats", h.handleStats)
	mux.HandleFunc("GET /v1/health", h.handleHealth)

	return cors(mux)
}

type handler struct {
	ask   kit.Endpoint
	teach kit.Endpoint
	stats kit.Endpoint
	store *store.DB
}

// --- ask ---

type httpAskRequest struct {
	Question string `json:"question"`
}

func (h *handler) handleAsk(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 64*1024) // 64 KiB max
	var req httpAskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	resp, err := h.ask(r.Context(), &askReq{Question: req.Question})
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *handler) handleAskPath(w http.ResponseWriter, r *http.Request) {
	question := r.PathValue("question")
	if question == "" {
		writeError(w, http.StatusBadRequest, "missing question")
		return
	}

	resp, err := h.ask(r.Context(), &askReq{Question: question})
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// --- teach ---

type httpTeachRequest struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
	Source   string `json:"source,omitempty"`
}

func (h *handler) handleTeach(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 256*1024) // 256 KiB max
	var req httpTeachRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	ctx := r.Context()
	if req.Source != "" {
		ctx = kit.WithSource(ctx, req.Source)
	}

	resp, err := h.teach(ctx, &teachReq{Question: req.Question, Answer: req.Answer})
	if err != nil {
		if errors.Is(err, match.ErrQuestionTooShort) || errors.Is(err, match.ErrEmptyAnswer) {
			writeError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

// --- stats ---

func (h *handler) handleStats(w http.ResponseWriter, r *http.Request) {
	resp, err := h.stats(r.Context(), nil)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// --- health ---

type healthResponse struct {
	Status  string `json:"status"`
	Records int    `json:"records"`
}

func (h *handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := h.store.Ping(r.Context()); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, healthResponse{Status: "store unavailable"})
		return
	}
	n, _ := h.store.Count(r.Context())
	writeJSON(w, http.StatusOK, healthResponse{Status: "ok", Records: n})
}

// --- helpers ---

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}

// cors is a simple CORS middleware for browser-based clients.
func cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
