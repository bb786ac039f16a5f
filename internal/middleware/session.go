package middleware

import (
	"errors"
	"net/http"
	"time"

	"github.com/epikoding/dictionary/internal/auth"
	"github.com/epikoding/dictionary/internal/session"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	CookieName = "dict_session"

	sessionIDKey     = "sessionID"
	sessionStateKey  = "sessionState"
	sessionConfigKey = "sessionConfig"
)

type SessionConfig struct {
	Store  session.Store
	Secret string
	TTL    time.Duration
	Secure bool
	Logger *zap.Logger
}

// SessionMiddleware attaches the client's navigation state to the context.
// A missing, tampered or expired cookie starts a fresh logged-out session.
func SessionMiddleware(cfg SessionConfig) gin.HandlerFunc {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}

	return func(c *gin.Context) {
		var (
			sid   string
			state *session.State
		)

		if cookie, err := c.Cookie(CookieName); err == nil {
			if id, err := auth.ValidateSessionToken(cookie, cfg.Secret); err == nil {
				loaded, err := cfg.Store.Load(c.Request.Context(), id)
				switch {
				case err == nil:
					sid, state = id, loaded
				case !errors.Is(err, session.ErrNoSession):
					log.Warn("failed to load session", zap.Error(err))
				}
			}
		}

		if state == nil {
			sid = uuid.NewString()
			state = session.New()
		}

		token, err := auth.GenerateSessionToken(sid, cfg.Secret, cfg.TTL)
		if err != nil {
			log.Error("failed to sign session token", zap.Error(err))
			c.AbortWithStatus(http.StatusInternalServerError)
			return
		}
		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(CookieName, token, int(cfg.TTL.Seconds()), "/", "", cfg.Secure, true)

		c.Set(sessionIDKey, sid)
		c.Set(sessionStateKey, state)
		c.Set(sessionConfigKey, &cfg)

		c.Next()
	}
}

// Session returns the state attached by SessionMiddleware.
func Session(c *gin.Context) *session.State {
	if v, ok := c.Get(sessionStateKey); ok {
		if s, ok := v.(*session.State); ok {
			return s
		}
	}
	return session.New()
}

// CommitSession persists the current state. Call it before writing the
// response so a redirected request sees the new state.
func CommitSession(c *gin.Context) error {
	cfg, err := sessionConfig(c)
	if err != nil {
		return err
	}
	return cfg.Store.Save(c.Request.Context(), c.GetString(sessionIDKey), Session(c))
}

// RotateSession moves the current state to a fresh session id and re-signs
// the cookie. The old id is removed from the store. Call it when the
// client's privileges change, then CommitSession.
func RotateSession(c *gin.Context) error {
	cfg, err := sessionConfig(c)
	if err != nil {
		return err
	}

	old := c.GetString(sessionIDKey)
	sid := uuid.NewString()
	token, err := auth.GenerateSessionToken(sid, cfg.Secret, cfg.TTL)
	if err != nil {
		return err
	}
	if err := cfg.Store.Delete(c.Request.Context(), old); err != nil {
		return err
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(CookieName, token, int(cfg.TTL.Seconds()), "/", "", cfg.Secure, true)
	c.Set(sessionIDKey, sid)
	return nil
}

// EndSession discards the stored state and expires the cookie.
func EndSession(c *gin.Context) error {
	cfg, err := sessionConfig(c)
	if err != nil {
		return err
	}
	Session(c).Logout()
	c.SetCookie(CookieName, "", -1, "/", "", cfg.Secure, true)
	return cfg.Store.Delete(c.Request.Context(), c.GetString(sessionIDKey))
}

func sessionConfig(c *gin.Context) (*SessionConfig, error) {
	if v, ok := c.Get(sessionConfigKey); ok {
		if cfg, ok := v.(*SessionConfig); ok {
			return cfg, nil
		}
	}
	return nil, errors.New("session middleware not installed")
}

// RequireLogin redirects logged-out clients to the login page.
func RequireLogin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !Session(c).LoggedIn {
			c.Redirect(http.StatusSeeOther, "/")
			c.Abort()
			return
		}
		c.Next()
	}
}
