package auth

import (
	"errors"
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// Handlers exposes register/login over HTTP and turns credentials into
// bearer tokens for the signaling channel.
type Handlers struct {
	Store  *Store
	Tokens *TokenService
}

type credentialsRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type tokenResponse struct {
	Token    string `json:"token"`
	Username string `json:"username"`
}

func (h *Handlers) Register(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad_payload"})
		return
	}
	identity, err := h.Store.Register(req.Username, req.Password)
	if err != nil {
		if errors.Is(err, ErrUserExists) {
			c.JSON(http.StatusConflict, gin.H{"error": "user_exists"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	token, err := h.Tokens.Issue(identity)
	if err != nil {
		log.Error().Err(err).Str("module", "auth").Msg("issue token")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "token_issue"})
		return
	}
	persistSession(c, token)
	c.JSON(http.StatusCreated, tokenResponse{Token: token, Username: string(identity)})
}

// persistSession keeps the token in the cookie session so browser clients
// can reach the authorized endpoints without replaying the bearer header.
func persistSession(c *gin.Context, token string) {
	sess := sessions.Default(c)
	sess.Set(sessionTokenKey, token)
	if err := sess.Save(); err != nil {
		log.Warn().Err(err).Str("module", "auth").Msg("persist session")
	}
}

func (h *Handlers) Login(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad_payload"})
		return
	}
	identity, err := h.Store.Authenticate(req.Username, req.Password)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid_credentials"})
		return
	}
	token, err := h.Tokens.Issue(identity)
	if err != nil {
		log.Error().Err(err).Str("module", "auth").Msg("issue token")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "token_issue"})
		return
	}
	persistSession(c, token)
	c.JSON(http.StatusOK, tokenResponse{Token: token, Username: string(identity)})
}
