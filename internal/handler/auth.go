package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/epikoding/dictionary/internal/limiter"
	"github.com/epikoding/dictionary/internal/middleware"
	"github.com/epikoding/dictionary/internal/session"
	"github.com/epikoding/dictionary/internal/users"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type AuthHandler struct {
	directory *users.Directory
	limiter   *limiter.Limiter
	log       *zap.Logger
}

func NewAuthHandler(directory *users.Directory, l *limiter.Limiter, log *zap.Logger) *AuthHandler {
	return &AuthHandler{directory: directory, limiter: l, log: log}
}

type loginPage struct {
	page
	ConfigError string
}

// LoginPage renders the form, or only the configuration error when the
// user directory cannot be read.
func (h *AuthHandler) LoginPage(c *gin.Context) {
	data := loginPage{page: newPage(c, "Log in")}

	if err := h.directory.Check(); err != nil {
		h.log.Error("user directory unavailable", zap.Error(err))
		data.ConfigError = err.Error()
	}

	c.HTML(http.StatusOK, "login.html", data)
}

func (h *AuthHandler) Login(c *gin.Context) {
	s := middleware.Session(c)
	if s.LoggedIn {
		redirectHome(c)
		return
	}

	if h.throttled(c) {
		middleware.RecordLogin("throttled")
		s.Flash(session.NoticeWarning, "Too many login attempts. Try again in a minute.")
		redirectHome(c)
		return
	}

	username := strings.TrimSpace(c.PostForm("username"))
	ok, err := h.directory.Authenticate(username, c.PostForm("password"))

	var cerr *users.ConfigurationError
	switch {
	case errors.As(err, &cerr):
		h.log.Error("login blocked by configuration", zap.Error(err))
		middleware.RecordLogin("error")
		s.Flash(session.NoticeError, "Reading configuration failed: "+cerr.Error())
	case err != nil:
		h.log.Error("login failed", zap.Error(err))
		middleware.RecordLogin("error")
		s.Flash(session.NoticeError, "Login failed: "+err.Error())
	case !ok:
		middleware.RecordLogin("failure")
		s.Flash(session.NoticeError, "Incorrect username or password.")
	default:
		// A pre-login id must not carry over into the authenticated session.
		if err := middleware.RotateSession(c); err != nil {
			h.log.Error("failed to rotate session", zap.Error(err))
			middleware.RecordLogin("error")
			s.Flash(session.NoticeError, "Login failed: could not start a session.")
			break
		}
		_ = s.Login(username)
		middleware.RecordLogin("success")
		h.log.Info("user logged in", zap.String("user", username))
		s.Flash(session.NoticeSuccess, "Logged in as "+username+".")
	}

	redirectHome(c)
}

// throttled fails open when the counter backend is unavailable.
func (h *AuthHandler) throttled(c *gin.Context) bool {
	if h.limiter == nil {
		return false
	}
	res, err := h.limiter.Check(c.Request.Context(), c.ClientIP(), limiter.ActionLogin)
	if err != nil {
		h.log.Warn("login throttle unavailable", zap.Error(err))
		return false
	}
	return !res.Allowed
}

func (h *AuthHandler) Logout(c *gin.Context) {
	user := middleware.Session(c).CurrentUserID
	if err := middleware.EndSession(c); err != nil {
		h.log.Warn("failed to discard session", zap.Error(err))
	}
	if user != "" {
		h.log.Info("user logged out", zap.String("user", user))
	}
	c.Redirect(http.StatusSeeOther, "/")
}
