package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"account/config"
	"account/infrastructure"
	"account/internal/auth"
	"account/internal/email"
	"account/internal/sessions"
	"account/internal/user"
)

// RegistrationService is the registration workflow surface the handlers use.
type RegistrationService interface {
	Register(ctx context.Context, in user.RegisterInput) (*user.Public, error)
	EmailRegistered(ctx context.Context, email string) (bool, error)
}

// AuthService authenticates credentials and returns the user plus a token.
type AuthService interface {
	Login(ctx context.Context, in auth.LoginInput) (*user.Public, string, error)
}

// CodeIssuer issues a verification code for an email address.
type CodeIssuer interface {
	Issue(ctx context.Context, email string) (int, error)
}

// TokenService resolves and revokes issued bearer tokens.
type TokenService interface {
	Verify(ctx context.Context, raw string) (*sessions.Token, error)
	Revoke(ctx context.Context, id string) error
}

type Server struct {
	router *mux.Router
	users  RegistrationService
	auth   AuthService
	codes  CodeIssuer
	tokens TokenService
	mailer email.CodeMailer
	logger *zap.Logger
}

func NewServer(
	cfg *config.Config,
	users RegistrationService,
	authService AuthService,
	codes CodeIssuer,
	tokens TokenService,
	mailer email.CodeMailer,
	logger *zap.Logger,
) *Server {
	s := &Server{
		router: mux.NewRouter(),
		users:  users,
		auth:   authService,
		codes:  codes,
		tokens: tokens,
		mailer: mailer,
		logger: logger,
	}

	s.router.Use(RequestLogger(logger))
	s.router.Use(RateLimitMiddleware(cfg.GlobalRPM))

	s.router.HandleFunc("/", s.root).Methods("GET")
	s.router.Handle("/email/send",
		RateLimitPerIP(cfg.SendEmailRPM)(http.HandlerFunc(s.sendEmailCode))).Methods("POST")
	s.router.HandleFunc("/register", s.register).Methods("POST")
	s.router.HandleFunc("/sessions", s.createSession).Methods("POST")
	s.router.HandleFunc("/sessions/current", s.currentSession).Methods("GET")
	s.router.HandleFunc("/sessions/current", s.deleteSession).Methods("DELETE")

	return s
}

func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) root(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"msg": "Pdnode Account System running.."})
}

func (s *Server) sendEmailCode(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
		Type  string `json:"type"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeStatus(w, http.StatusBadRequest, "e_invalid_input")
		return
	}
	if req.Type != "verifyEmail" {
		writeStatus(w, http.StatusBadRequest, "e_invalid_input")
		return
	}
	if err := user.ValidateEmail(req.Email); err != nil {
		writeStatus(w, http.StatusBadRequest, "e_invalid_input")
		return
	}

	registered, err := s.users.EmailRegistered(r.Context(), req.Email)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if registered {
		writeStatus(w, http.StatusBadRequest, "e_email_already_register")
		return
	}

	code, err := s.codes.Issue(r.Context(), req.Email)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	if err := s.mailer.Send(req.Email, code); err != nil {
		s.logger.Error("failed to send verification email", zap.Error(err))
		s.writeError(w, r, infrastructure.Unavailable(err))
		return
	}

	writeStatus(w, http.StatusOK, "s_email_send")
}

func (s *Server) register(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username  string `json:"username"`
		Nickname  string `json:"nickname"`
		Email     string `json:"email"`
		Password  string `json:"password"`
		EmailCode int    `json:"emailCode"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeStatus(w, http.StatusBadRequest, "e_invalid_input")
		return
	}

	created, err := s.users.Register(r.Context(), user.RegisterInput{
		Username:  req.Username,
		Nickname:  req.Nickname,
		Email:     req.Email,
		Password:  req.Password,
		EmailCode: req.EmailCode,
	})
	if err != nil {
		if errors.Is(err, infrastructure.ErrInternal) {
			writeStatus(w, http.StatusInternalServerError, "e_create_user_failed")
			return
		}
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"status": "s_user_created",
		"user":   created,
	})
}

func (s *Server) createSession(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email      string `json:"email"`
		Username   string `json:"username"`
		Password   string `json:"password"`
		RememberMe bool   `json:"rememberMe"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeStatus(w, http.StatusBadRequest, "e_invalid_input")
		return
	}

	account, token, err := s.auth.Login(r.Context(), auth.LoginInput{
		Email:    req.Email,
		Username: req.Username,
		Password: req.Password,
		Remember: req.RememberMe,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status": "s_session_created",
		"token":  token,
		"user":   account,
	})
}

// writeError maps domain errors to stable status strings. Internal and
// unavailable failures are logged with full detail here; everything else is
// a user-correctable outcome and stays quiet.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, infrastructure.ErrInvalidInput):
		writeStatus(w, http.StatusBadRequest, "e_invalid_input")
	case errors.Is(err, infrastructure.ErrBadUsername):
		writeStatus(w, http.StatusBadRequest, "e_bad_username")
	case errors.Is(err, infrastructure.ErrBadNickname):
		writeStatus(w, http.StatusBadRequest, "e_bad_nickname")
	case errors.Is(err, infrastructure.ErrWrongEmailCode):
		writeStatus(w, http.StatusBadRequest, "e_wrong_email_code")
	case errors.Is(err, infrastructure.ErrIdentifierTaken):
		writeStatus(w, http.StatusBadRequest, "e_username_or_email_existing")
	case errors.Is(err, infrastructure.ErrEmailAlreadyRegistered):
		writeStatus(w, http.StatusBadRequest, "e_email_already_register")
	case errors.Is(err, infrastructure.ErrMissingIdentifier):
		writeStatus(w, http.StatusBadRequest, "e_missing_identifier")
	case errors.Is(err, infrastructure.ErrMultipleIdentifiers):
		writeStatus(w, http.StatusBadRequest, "e_multiple_identifiers")
	case errors.Is(err, infrastructure.ErrInvalidCredentials):
		writeStatus(w, http.StatusUnauthorized, "e_invalid_credentials")
	case errors.Is(err, infrastructure.ErrInvalidToken):
		writeStatus(w, http.StatusUnauthorized, "e_invalid_token")
	case errors.Is(err, infrastructure.ErrTokenExpired):
		writeStatus(w, http.StatusUnauthorized, "e_token_expired")
	case errors.Is(err, infrastructure.ErrUnavailable):
		s.logger.Error("backing store unavailable", zap.String("path", r.URL.Path), zap.Error(err))
		writeStatus(w, http.StatusServiceUnavailable, "e_service_unavailable")
	default:
		s.logger.Error("unhandled error", zap.String("path", r.URL.Path), zap.Error(err))
		writeStatus(w, http.StatusInternalServerError, "e_internal_error")
	}
}

func writeStatus(w http.ResponseWriter, code int, status string) {
	writeJSON(w, code, map[string]string{"status": status})
}

func writeJSON(w http.ResponseWriter, code int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(body)
}
