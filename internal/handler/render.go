package handler

import (
	"embed"
	"html/template"
	"net/http"
	"time"

	"github.com/epikoding/dictionary/internal/dictionary"
	"github.com/epikoding/dictionary/internal/middleware"
	"github.com/epikoding/dictionary/internal/session"
	"github.com/gin-gonic/gin"
)

//go:embed templates/*.html
var templateFS embed.FS

const timeLayout = "2006-01-02 15:04"

// Templates parses the embedded pages. Times are rendered in loc.
func Templates(loc *time.Location) (*template.Template, error) {
	funcs := template.FuncMap{
		"datetime": func(t time.Time) string {
			return t.In(loc).Format(timeLayout)
		},
	}
	return template.New("pages").Funcs(funcs).ParseFS(templateFS, "templates/*.html")
}

// page is the data shared by every template.
type page struct {
	Title  string
	User   string
	Notice *session.Notice
	// Draft is the form input of a rejected save, if any.
	Draft *session.Draft
}

// newPage consumes the pending notice and draft. The session is saved again
// so a reload does not show them twice.
func newPage(c *gin.Context, title string) page {
	s := middleware.Session(c)
	p := page{Title: title, User: s.CurrentUserID, Notice: s.TakeNotice(), Draft: s.TakeDraft()}
	if p.Notice != nil || p.Draft != nil {
		_ = middleware.CommitSession(c)
	}
	return p
}

// finish applies o to the session, persists it and redirects home.
func finish(c *gin.Context, o outcome) {
	o.apply(middleware.Session(c))
	redirectHome(c)
}

// finishForm is finish for form submissions. Input that was not saved is
// kept for the next render of the same form.
func finishForm(c *gin.Context, o outcome, in dictionary.Input) {
	if o.keepInput() {
		middleware.Session(c).KeepDraft(session.Draft{
			Word:     in.Word,
			Meaning:  in.Meaning,
			Category: in.Category,
			Memo:     in.Memo,
		})
	}
	finish(c, o)
}

func redirectHome(c *gin.Context) {
	if err := middleware.CommitSession(c); err != nil {
		c.String(http.StatusInternalServerError, "failed to save session")
		return
	}
	c.Redirect(http.StatusSeeOther, "/")
}
