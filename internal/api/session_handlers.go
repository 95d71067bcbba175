package api

import (
	"net/http"
	"strings"
)

// bearerToken extracts the raw token from the Authorization header,
// accepting "Bearer <token>" and a bare token. A header with any other
// scheme, or a scheme mashed into the token with no space, yields "".
func bearerToken(r *http.Request) string {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	scheme, rest, ok := strings.Cut(header, " ")
	if !ok {
		return header
	}
	if !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(rest)
}

func (s *Server) currentSession(w http.ResponseWriter, r *http.Request) {
	raw := bearerToken(r)
	if raw == "" {
		writeStatus(w, http.StatusUnauthorized, "e_invalid_token")
		return
	}

	token, err := s.tokens.Verify(r.Context(), raw)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status":     "s_session_valid",
		"user_id":    token.UserID,
		"abilities":  token.Abilities,
		"expires_at": token.ExpiresAt,
	})
}

func (s *Server) deleteSession(w http.ResponseWriter, r *http.Request) {
	raw := bearerToken(r)
	if raw == "" {
		writeStatus(w, http.StatusUnauthorized, "e_invalid_token")
		return
	}

	token, err := s.tokens.Verify(r.Context(), raw)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	if err := s.tokens.Revoke(r.Context(), token.ID); err != nil {
		s.writeError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
