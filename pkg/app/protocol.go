package app

import (
	"context"

	"go.uber.org/zap"

	"tableflip.dev/marklet/pkg/engine"
)

// Request types understood by HandleMessage.
const (
	TypeRunBookmarklet = "RUN_BOOKMARKLET"
	TypeOpenOptions    = "OPEN_OPTIONS"
)

const msgNoOptions = "Could not open the options page."

// Request is a message from a surface to the dispatcher.
type Request struct {
	Type string `json:"type"`
	ID   string `json:"id,omitempty"`
}

// Response is the reply to a Request: {ok, message?, mode?, output?}.
type Response = engine.Outcome

// HandleMessage answers a surface request. It never returns a Go error;
// failures are carried in the Response.
func (s *Service) HandleMessage(ctx context.Context, req Request) Response {
	switch req.Type {
	case TypeRunBookmarklet:
		return s.RunByID(ctx, req.ID)
	case TypeOpenOptions:
		if err := s.openOptions(ctx); err != nil {
			s.logger().Warn("open options", zap.Error(err))
			return engine.Failed(msgNoOptions, err)
		}
		return Response{OK: true}
	default:
		return Response{OK: false, Message: "Unknown request."}
	}
}
