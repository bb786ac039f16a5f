package handler

import (
	"errors"
	"fmt"

	"github.com/epikoding/dictionary/internal/dictionary"
	"github.com/epikoding/dictionary/internal/middleware"
	"github.com/epikoding/dictionary/internal/session"
)

// outcome is what one user action resolved to: the notice to show next,
// whether to return to the list, and the metric label to record.
type outcome struct {
	notice session.Notice
	toList bool
	result string
}

// keepInput reports whether the submitted form should be shown again.
func (o outcome) keepInput() bool {
	return o.result == "invalid" || o.result == "error"
}

func (o outcome) apply(s *session.State) {
	s.Flash(o.notice.Level, o.notice.Message)
	if o.toList {
		_ = s.BackToList()
	}
}

func createOutcome(err error) outcome {
	if err != nil {
		return failure("Register", err)
	}
	return outcome{
		notice: session.Notice{Level: session.NoticeSuccess, Message: "Entry registered."},
		result: "ok",
	}
}

func updateOutcome(updated bool, err error) outcome {
	if err != nil {
		return failure("Update", err)
	}
	if !updated {
		return outcome{
			notice: session.Notice{Level: session.NoticeWarning, Message: "The entry to update was not found."},
			toList: true,
			result: "not_found",
		}
	}
	return outcome{
		notice: session.Notice{Level: session.NoticeSuccess, Message: "Entry updated."},
		toList: true,
		result: "ok",
	}
}

func deleteOutcome(deleted bool, err error) outcome {
	if err != nil {
		return failure("Delete", err)
	}
	if !deleted {
		return outcome{
			notice: session.Notice{Level: session.NoticeWarning, Message: "The entry to delete was not found."},
			toList: true,
			result: "not_found",
		}
	}
	return outcome{
		notice: session.Notice{Level: session.NoticeSuccess, Message: "Entry deleted."},
		toList: true,
		result: "ok",
	}
}

// failure maps a service error to a notice. Validation and persistence
// failures leave the navigation state where it is.
func failure(op string, err error) outcome {
	var (
		verr *dictionary.ValidationError
		perr *dictionary.PersistenceError
	)
	switch {
	case errors.As(err, &verr):
		return outcome{
			notice: session.Notice{Level: session.NoticeWarning, Message: "Word and meaning are required."},
			result: "invalid",
		}
	case errors.Is(err, dictionary.ErrNotFound):
		return outcome{
			notice: session.Notice{Level: session.NoticeWarning, Message: "The entry was not found."},
			toList: true,
			result: "not_found",
		}
	case errors.As(err, &perr):
		return outcome{
			notice: session.Notice{Level: session.NoticeError, Message: failureMessage(op, perr)},
			result: "error",
		}
	}
	return outcome{
		notice: session.Notice{Level: session.NoticeError, Message: fmt.Sprintf("%s failed: %v", op, err)},
		result: "error",
	}
}

func failureMessage(op string, perr *dictionary.PersistenceError) string {
	return fmt.Sprintf("%s failed: %s: %v", op, perr.Kind(), perr.Err)
}

func record(operation string, o outcome) {
	middleware.RecordOperation(operation, o.result)
}

func failureNotice(op string, err error) *session.Notice {
	n := failure(op, err).notice
	return &n
}
