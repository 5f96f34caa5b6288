package reply

import (
	"context"
	"errors"
	"net/http"

	"git.appkode.ru/pub/go/failure"
	jsoniter "github.com/json-iterator/go"

	"buybox_console/internal/domain"
	"buybox_console/pkg/contextx"
	"buybox_console/pkg/errcodes"
	"buybox_console/pkg/logx"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary //nolint:gochecknoglobals // skip

var logger = contextx.LoggerFromContextOrDefault //nolint:gochecknoglobals

type errorResponse struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	SupportID string `json:"supportId"`
}

func OK(w http.ResponseWriter) {
	w.WriteHeader(http.StatusOK)
}

func Accepted(w http.ResponseWriter) {
	w.WriteHeader(http.StatusAccepted)
}

func JSON(ctx context.Context, w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger(ctx).Error("json.Encode", logx.Error(err))
	}
}

// Error renders err with the status its code maps to. Upstream messages
// (RecentlyUpdated in particular) pass through verbatim.
func Error(ctx context.Context, w http.ResponseWriter, err error) {
	logger(ctx).Error("error", logx.Error(err))

	var appErr *domain.AppError
	if errors.As(err, &appErr) {
		JSON(ctx, w, statusOf(appErr.Code), errorResponse{
			Code:      appErr.Code.String(),
			Message:   appErr.Message,
			SupportID: supportID(ctx),
		})

		return
	}

	response := errorResponse{
		Code:      failure.Code(err).String(),
		Message:   failure.Description(err),
		SupportID: supportID(ctx),
	}

	if failure.IsInvalidArgumentError(err) {
		if response.Code == "" {
			response.Code = errcodes.ValidationError.String()
		}

		JSON(ctx, w, http.StatusBadRequest, response)

		return
	}

	if response.Code == "" {
		response.Code = errcodes.InternalServerError.String()
	}

	JSON(ctx, w, http.StatusInternalServerError, response)
}

func statusOf(code failure.ErrorCode) int {
	switch code {
	case errcodes.ValidationError, errcodes.InvalidTargetPrice:
		return http.StatusBadRequest
	case errcodes.NotFound, errcodes.ListingNotFound:
		return http.StatusNotFound
	case errcodes.AccessDenied:
		return http.StatusForbidden
	case errcodes.RecentlyUpdated, errcodes.UpdateInFlight:
		return http.StatusConflict
	case errcodes.DatasetTooLarge:
		return http.StatusRequestEntityTooLarge
	case errcodes.MarginTooLow:
		return http.StatusUnprocessableEntity
	case errcodes.RateLimited:
		return http.StatusTooManyRequests
	case errcodes.RequestTimeout:
		return http.StatusGatewayTimeout
	case errcodes.FeedCheckFailed:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func supportID(ctx context.Context) string {
	traceID, err := contextx.TraceIDFromContext(ctx)
	if err != nil {
		return "unsupported"
	}

	return traceID.String()
}
