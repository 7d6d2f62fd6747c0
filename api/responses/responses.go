// Package responses renders the {"data": ...} and {"error": {...}} bodies
// every handler returns.
package responses

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	pkgerrors "github.com/angelmondragon/smartlist-backend/pkg/errors"
	"github.com/angelmondragon/smartlist-backend/pkg/logger"
	zlog "github.com/rs/zerolog/log"
)

type SuccessEnvelope struct {
	Data any `json:"data"`
}

type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

func WriteSuccess(w http.ResponseWriter, data any) {
	render(w, http.StatusOK, SuccessEnvelope{Data: data})
}

func WriteSuccessStatus(w http.ResponseWriter, status int, data any) {
	render(w, status, SuccessEnvelope{Data: data})
}

func WriteNoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

// WriteError renders err with the status of its code and logs it: >= 500 at
// error level with the cause chain, anything else as a warning.
func WriteError(ctx context.Context, logg *logger.Logger, w http.ResponseWriter, err error) {
	typed, meta, body := errorPayload(err)

	if logg != nil {
		fields := pkgerrors.Dump(typed).Fields()
		fields["status"] = meta.HTTPStatus
		ctx = logg.WithFields(ctx, fields)
		if meta.HTTPStatus >= http.StatusInternalServerError {
			logg.Error(ctx, "request.error", typed)
		} else {
			logg.Warn(ctx, "request.rejected")
		}
	}
	render(w, meta.HTTPStatus, body)
}

// errorPayload decides what the client may see. Internal and dependency
// failures only ever expose the public message for their code.
func errorPayload(err error) (*pkgerrors.Error, pkgerrors.Metadata, ErrorEnvelope) {
	if err == nil {
		err = errors.New("nil error written as response")
	}
	typed := pkgerrors.As(err)
	if typed == nil {
		typed = pkgerrors.Wrap(pkgerrors.CodeInternal, err, "unexpected error")
	}
	meta := pkgerrors.MetadataFor(typed.Code())

	out := APIError{Code: string(typed.Code()), Message: meta.PublicMessage}
	if typed.Code() != pkgerrors.CodeInternal && typed.Code() != pkgerrors.CodeDependency && typed.Message() != "" {
		out.Message = typed.Message()
	}
	if meta.DetailsAllowed {
		out.Details = typed.Details()
	}
	return typed, meta, ErrorEnvelope{Error: out}
}

func render(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		zlog.Error().Err(err).Int("status", status).Msg("response.encode_failed")
	}
}
