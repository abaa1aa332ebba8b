package api

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/acpoke/acpoke-bridge/internal/biz/domain"
	"github.com/acpoke/acpoke-bridge/internal/biz/repo"
	"github.com/acpoke/acpoke-bridge/internal/biz/usecase"
)

// Server provides the HTTP API the host framework calls to invoke actions
type Server struct {
	pokeUC     *usecase.PokeUsecase
	actionRepo repo.ActionRepo
	directory  repo.DirectoryRepo
	logger     *zap.Logger

	server *http.Server
	listen string
}

// PokeRequest is the body of POST /api/poke
type PokeRequest struct {
	UserID       string `json:"user_id"`
	GroupID      string `json:"group_id,omitempty"`
	ReplyID      string `json:"reply_id,omitempty"`
	PokeMode     string `json:"poke_mode,omitempty"`
	Reason       string `json:"reason,omitempty"`
	ResponseText string `json:"response_text,omitempty"`

	// Invocation context
	ChatID          string `json:"chat_id,omitempty"`
	SenderID        string `json:"sender_id,omitempty"`
	SenderName      string `json:"sender_name,omitempty"`
	MessageGroupID  string `json:"message_group_id,omitempty"`
	SessionGroupID  string `json:"session_group_id,omitempty"`
	FallbackGroupID string `json:"fallback_group_id,omitempty"`
}

// PokeResponse is the reply of POST /api/poke
type PokeResponse struct {
	OK      bool   `json:"ok"`
	Status  string `json:"status"`
	Message string `json:"message"`
	UserID  string `json:"user_id,omitempty"`
	GroupID string `json:"group_id,omitempty"`
}

// PersonRequest is the body of POST /api/persons
type PersonRequest struct {
	UserID     string `json:"user_id"`
	PersonName string `json:"person_name"`
	Nickname   string `json:"nickname,omitempty"`
	Platform   string `json:"platform,omitempty"`
}

// Person is the API view of a directory entry
type Person struct {
	PersonID   string    `json:"person_id"`
	Platform   string    `json:"platform"`
	UserID     string    `json:"user_id"`
	PersonName string    `json:"person_name"`
	Nickname   string    `json:"nickname"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// NewServer creates a new API server
func NewServer(pokeUC *usecase.PokeUsecase, actionRepo repo.ActionRepo, directory repo.DirectoryRepo, listen string, logger *zap.Logger) *Server {
	return &Server{
		pokeUC:     pokeUC,
		actionRepo: actionRepo,
		directory:  directory,
		logger:     logger,
		listen:     listen,
	}
}

// Handler returns the routed handler
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	// Actions
	mux.HandleFunc("/api/poke", s.handlePoke)
	mux.HandleFunc("/api/actions", s.handleActions)
	mux.HandleFunc("/api/actions/poke/info", s.handlePokeInfo)

	// Person directory
	mux.HandleFunc("/api/persons", s.handlePersons)

	// Health check
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	return mux
}

// Start starts the HTTP server and blocks until it stops
func (s *Server) Start(ctx context.Context) error {
	s.server = &http.Server{
		Addr:              s.listen,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	s.logger.Info("starting HTTP server", zap.String("listen", s.listen))
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Stop stops the HTTP server
func (s *Server) Stop(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}

// Listen returns the listen address
func (s *Server) Listen() string {
	return s.listen
}

// ============ Action Handlers ============

func (s *Server) handlePoke(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req PokeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.UserID) == "" && req.ResponseText == "" {
		http.Error(w, "user_id is required", http.StatusBadRequest)
		return
	}

	result := s.pokeUC.Execute(r.Context(), &usecase.PokeRequest{
		Target:       req.UserID,
		GroupID:      req.GroupID,
		ReplyID:      req.ReplyID,
		PokeMode:     req.PokeMode,
		Reason:       req.Reason,
		ResponseText: req.ResponseText,
		Context: domain.InvocationContext{
			ChatID:          req.ChatID,
			SenderID:        req.SenderID,
			SenderName:      req.SenderName,
			MessageGroupID:  req.MessageGroupID,
			SessionGroupID:  req.SessionGroupID,
			FallbackGroupID: req.FallbackGroupID,
		},
	})

	s.writeJSON(w, ToPokeResponse(result))
}

// ToPokeResponse converts a pipeline result to its API form
func ToPokeResponse(result *domain.Result) PokeResponse {
	ok, msg := result.OK()
	resp := PokeResponse{
		OK:      ok,
		Status:  string(result.Status),
		Message: msg,
	}
	if result.Target != nil {
		resp.UserID = result.Target.UserID
		resp.GroupID = result.Target.GroupID
	}
	return resp
}

func (s *Server) handleActions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if s.actionRepo == nil {
		http.Error(w, "action store not initialized", http.StatusServiceUnavailable)
		return
	}

	limit := parseLimit(r, 20)
	records, err := s.actionRepo.ListRecentActions(r.Context(), r.URL.Query().Get("chat_id"), limit)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if records == nil {
		records = []*domain.ActionRecord{}
	}
	s.writeJSON(w, map[string]interface{}{"actions": records})
}

func (s *Server) handlePokeInfo(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	s.writeJSON(w, domain.PokeActionInfo())
}

// ============ Person Handlers ============

func (s *Server) handlePersons(w http.ResponseWriter, r *http.Request) {
	if s.directory == nil {
		http.Error(w, "person directory not initialized", http.StatusServiceUnavailable)
		return
	}

	ctx := r.Context()

	switch r.Method {
	case http.MethodGet:
		persons, err := s.directory.SearchPersons(ctx, r.URL.Query().Get("name"), parseLimit(r, 50))
		if err != nil {
			s.writeError(w, err)
			return
		}
		result := make([]Person, len(persons))
		for i, p := range persons {
			result[i] = toPerson(p)
		}
		s.writeJSON(w, map[string]interface{}{"persons": result})

	case http.MethodPost:
		var req PersonRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if !domain.IsDigits(req.UserID) {
			http.Error(w, "user_id must be numeric", http.StatusBadRequest)
			return
		}
		if strings.TrimSpace(req.PersonName) == "" {
			http.Error(w, "person_name is required", http.StatusBadRequest)
			return
		}
		person := &domain.Person{
			Platform:   req.Platform,
			UserID:     req.UserID,
			PersonName: strings.TrimSpace(req.PersonName),
			Nickname:   strings.TrimSpace(req.Nickname),
		}
		if err := s.directory.SavePerson(ctx, person); err != nil {
			s.writeError(w, err)
			return
		}
		s.writeJSON(w, map[string]interface{}{"success": true, "person": toPerson(person)})

	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func toPerson(p *domain.Person) Person {
	return Person{
		PersonID:   p.PersonID,
		Platform:   p.Platform,
		UserID:     p.UserID,
		PersonName: p.PersonName,
		Nickname:   p.Nickname,
		UpdatedAt:  p.UpdatedAt,
	}
}

// ============ Helpers ============

func parseLimit(r *http.Request, def int) int {
	if l := r.URL.Query().Get("limit"); l != "" {
		if parsed, err := strconv.Atoi(l); err == nil && parsed > 0 {
			return parsed
		}
	}
	return def
}

func (s *Server) writeJSON(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(data)
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	s.logger.Warn("request failed", zap.Error(err))
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusInternalServerError)
	json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
}
