package threadlink

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/bobg/mid"
	"github.com/pkg/errors"
)

// Chat event types accepted by OnChatEvent.
const (
	EventMessageCreated = "message_created"
	EventMessageDeleted = "message_deleted"
)

// OnChatEvent ingests thread-scoped message events posted by the chat
// gateway. It responds 200 regardless of mirroring outcome; only a
// malformed payload is an error.
func (s *Service) OnChatEvent(w http.ResponseWriter, req *http.Request) error {
	ctx := req.Context()

	var env struct {
		Type    string       `json:"type"`
		Message MessageEvent `json:"message"`
	}
	if err := json.NewDecoder(req.Body).Decode(&env); err != nil {
		return mid.CodeErr{C: http.StatusBadRequest, Err: errors.Wrap(err, "parsing event")}
	}

	switch env.Type {
	case EventMessageCreated:
		s.OnMessageCreated(ctx, env.Message)
		return nil

	case EventMessageDeleted:
		s.OnMessageDeleted(ctx, MessageDeleteEvent{MessageID: env.Message.MessageID})
		return nil
	}

	return mid.CodeErr{C: http.StatusBadRequest, Err: fmt.Errorf("unknown event type %q", env.Type)}
}

// OnOpenLink handles the open-link request verb.
func (s *Service) OnOpenLink(w http.ResponseWriter, req *http.Request) error {
	var oreq OpenRequest
	if err := json.NewDecoder(req.Body).Decode(&oreq); err != nil {
		return mid.CodeErr{C: http.StatusBadRequest, Err: errors.Wrap(err, "parsing request")}
	}
	link, err := s.Open(req.Context(), oreq)
	if err != nil {
		return codeErr(err)
	}
	return mid.RespondJSON(w, link)
}

type threadRequest struct {
	ThreadID string `json:"thread_id"`
	Tracker  string `json:"tracker,omitempty"` // "", "issue", or "page"
}

// OnCloseLink handles the close-link request verb.
func (s *Service) OnCloseLink(w http.ResponseWriter, req *http.Request) error {
	var treq threadRequest
	if err := json.NewDecoder(req.Body).Decode(&treq); err != nil {
		return mid.CodeErr{C: http.StatusBadRequest, Err: errors.Wrap(err, "parsing request")}
	}
	link, err := s.Close(req.Context(), treq.ThreadID)
	if err != nil {
		return codeErr(err)
	}
	return mid.RespondJSON(w, link)
}

// OnQueryLink handles the query-link request verb. With tracker set it
// reports a single slot; otherwise it reports every linked tracker.
func (s *Service) OnQueryLink(w http.ResponseWriter, req *http.Request) error {
	var treq threadRequest
	if err := json.NewDecoder(req.Body).Decode(&treq); err != nil {
		return mid.CodeErr{C: http.StatusBadRequest, Err: errors.Wrap(err, "parsing request")}
	}
	ctx := req.Context()

	switch treq.Tracker {
	case "":
		report, err := s.Query(ctx, treq.ThreadID)
		if err != nil {
			return codeErr(err)
		}
		return mid.RespondJSON(w, report)

	case "issue":
		issue, err := s.QueryIssue(ctx, treq.ThreadID)
		if err != nil {
			return codeErr(err)
		}
		return mid.RespondJSON(w, issue)

	case "page":
		page, err := s.QueryPage(ctx, treq.ThreadID)
		if err != nil {
			return codeErr(err)
		}
		return mid.RespondJSON(w, page)
	}

	return mid.CodeErr{C: http.StatusBadRequest, Err: fmt.Errorf("unknown tracker %q", treq.Tracker)}
}

// codeErr maps the error taxonomy onto HTTP status codes.
func codeErr(err error) error {
	var (
		already AlreadyLinkedError
		remote  *RemoteCallError
		partial *PartialCreationError
	)
	switch {
	case errors.As(err, &already), errors.Is(err, ErrAlreadyClosed):
		return mid.CodeErr{C: http.StatusConflict, Err: err}
	case errors.Is(err, ErrNotLinked), errors.Is(err, ErrNoIssueLinkage), errors.Is(err, ErrNoPageLinkage):
		return mid.CodeErr{C: http.StatusNotFound, Err: err}
	case errors.As(err, &partial), errors.As(err, &remote):
		return mid.CodeErr{C: http.StatusBadGateway, Err: err}
	}
	return err
}
