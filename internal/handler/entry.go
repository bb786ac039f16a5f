package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/epikoding/dictionary/internal/dictionary"
	"github.com/epikoding/dictionary/internal/filter"
	"github.com/epikoding/dictionary/internal/middleware"
	"github.com/epikoding/dictionary/internal/model"
	"github.com/epikoding/dictionary/internal/session"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type EntryHandler struct {
	service *dictionary.Service
	log     *zap.Logger
}

func NewEntryHandler(service *dictionary.Service, log *zap.Logger) *EntryHandler {
	return &EntryHandler{service: service, log: log}
}

type listPage struct {
	page
	Form       session.Draft
	Query      string
	Category   string
	Count      int
	Categories []string
	Counts     []int
	Entries    []model.Entry
	Matched    int
	Total      int
}

type editPage struct {
	page
	Entry    *model.Entry
	Form     session.Draft
	NotFound bool
}

type deletePage struct {
	page
	ID    int64
	Entry *model.Entry
}

// ListPage renders the create panel next to the filtered entry cards.
func (h *EntryHandler) ListPage(c *gin.Context) {
	owner := middleware.Session(c).CurrentUserID
	data := listPage{page: newPage(c, "Dictionary"), Counts: filter.DisplayCounts}
	if data.Draft != nil {
		data.Form = *data.Draft
	}

	entries, err := h.service.List(c.Request.Context(), owner)
	if err != nil {
		h.logFailure("list", err)
		data.Notice = failureNotice("Load", err)
	}

	count, _ := strconv.Atoi(c.Query("count"))
	q := filter.Query{
		Text:     c.Query("q"),
		Category: c.Query("category"),
		Count:    filter.NormalizeCount(count),
	}
	res := filter.Apply(entries, q)

	data.Query = q.Text
	data.Category = q.Category
	data.Count = q.Count
	data.Categories = dictionary.Categories(entries)
	data.Entries = res.Entries
	data.Matched = res.Matched
	data.Total = res.Total

	c.HTML(http.StatusOK, "list.html", data)
}

// EditPage renders the form for the session's edit target. A target that no
// longer resolves leaves only the way back to the list.
func (h *EntryHandler) EditPage(c *gin.Context) {
	s := middleware.Session(c)
	data := editPage{page: newPage(c, "Edit entry")}

	e, err := h.service.Get(c.Request.Context(), s.EditTargetID, s.CurrentUserID)
	switch {
	case errors.Is(err, dictionary.ErrNotFound):
		data.NotFound = true
	case err != nil:
		h.logFailure("get", err)
		data.Notice = failureNotice("Load", err)
		data.NotFound = true
	default:
		data.Entry = e
		data.Form = session.Draft{Word: e.Word, Meaning: e.Meaning, Category: e.CategoryName(), Memo: e.MemoText()}
		if data.Draft != nil {
			data.Form = *data.Draft
		}
	}

	c.HTML(http.StatusOK, "edit.html", data)
}

func (h *EntryHandler) Create(c *gin.Context) {
	owner := middleware.Session(c).CurrentUserID
	in := formInput(c)

	e, err := h.service.Create(c.Request.Context(), owner, in)
	if err != nil {
		h.logFailure("create", err)
	} else {
		h.log.Info("entry created", zap.String("user", owner), zap.Int64("id", e.ID))
	}

	o := createOutcome(err)
	record("create", o)
	finishForm(c, o, in)
}

// StartEdit moves LIST to EDIT for the entry in the path.
func (h *EntryHandler) StartEdit(c *gin.Context) {
	id, ok := entryID(c)
	if !ok {
		return
	}
	s := middleware.Session(c)
	if err := s.Edit(id); err != nil {
		s.Flash(session.NoticeWarning, "Cannot edit from this page.")
	}
	redirectHome(c)
}

func (h *EntryHandler) BackToList(c *gin.Context) {
	_ = middleware.Session(c).BackToList()
	redirectHome(c)
}

// Update saves the edit form. Only the entry currently open for editing can
// be updated.
func (h *EntryHandler) Update(c *gin.Context) {
	id, ok := entryID(c)
	if !ok {
		return
	}
	s := middleware.Session(c)
	if s.Phase() != session.PhaseEdit || s.EditTargetID != id {
		s.Flash(session.NoticeWarning, "Open the entry for editing first.")
		redirectHome(c)
		return
	}
	in := formInput(c)

	updated, err := h.service.Update(c.Request.Context(), id, s.CurrentUserID, in)
	if err != nil {
		h.logFailure("update", err)
	}

	o := updateOutcome(updated, err)
	record("update", o)
	finishForm(c, o, in)
}

// ConfirmDelete shows the word about to be removed.
func (h *EntryHandler) ConfirmDelete(c *gin.Context) {
	id, ok := entryID(c)
	if !ok {
		return
	}
	owner := middleware.Session(c).CurrentUserID

	e, err := h.service.Get(c.Request.Context(), id, owner)
	if errors.Is(err, dictionary.ErrNotFound) {
		o := deleteOutcome(false, nil)
		record("delete", o)
		finish(c, o)
		return
	}
	data := deletePage{page: newPage(c, "Delete entry"), ID: id, Entry: e}
	if err != nil {
		h.logFailure("get", err)
		data.Notice = failureNotice("Load", err)
	}

	c.HTML(http.StatusOK, "delete.html", data)
}

func (h *EntryHandler) Delete(c *gin.Context) {
	id, ok := entryID(c)
	if !ok {
		return
	}
	owner := middleware.Session(c).CurrentUserID

	deleted, err := h.service.Delete(c.Request.Context(), id, owner)
	if err != nil {
		h.logFailure("delete", err)
	} else if deleted {
		h.log.Info("entry deleted", zap.String("user", owner), zap.Int64("id", id))
	}

	o := deleteOutcome(deleted, err)
	record("delete", o)
	finish(c, o)
}

func (h *EntryHandler) logFailure(op string, err error) {
	var perr *dictionary.PersistenceError
	if errors.As(err, &perr) {
		h.log.Error("entry operation failed",
			zap.String("operation", op),
			zap.String("kind", perr.Kind()),
			zap.Error(perr.Err),
		)
	}
}

func formInput(c *gin.Context) dictionary.Input {
	return dictionary.Input{
		Word:     c.PostForm("word"),
		Meaning:  c.PostForm("meaning"),
		Category: c.PostForm("category"),
		Memo:     c.PostForm("memo"),
	}
}

// entryID parses the :id path parameter. On failure it has already
// redirected with a notice.
func entryID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		middleware.Session(c).Flash(session.NoticeWarning, "Invalid entry id.")
		redirectHome(c)
		return 0, false
	}
	return id, true
}
