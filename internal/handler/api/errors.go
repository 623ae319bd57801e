package api

import (
	"context"
	"errors"

	"MarketPulse/internal/domain/errs"
	xhttp "MarketPulse/pkg/http"
)

// toAppError translates domain failures into HTTP errors.
func toAppError(err error) *xhttp.AppError {
	var (
		appErr *xhttp.AppError
		ue     *errs.UpstreamError
		pe     *errs.ParseError
		ih     *errs.InsufficientHistoryError
		id     *errs.InsufficientDataError
	)
	switch {
	case errors.As(err, &appErr):
		return appErr
	case errors.As(err, &ue):
		return xhttp.BadGatewayError("ERR_UPSTREAM", "upstream request failed").
			WithParam("op", ue.Op).
			WithParam("status", ue.Status).
			WithParam("body", ue.Body).
			WithError(err)
	case errors.As(err, &pe):
		return xhttp.BadGatewayError("ERR_UPSTREAM_PARSE", "upstream payload could not be parsed").
			WithParam("field", pe.Field).
			WithError(err)
	case errors.As(err, &ih):
		return xhttp.UnprocessableError("ERR_INSUFFICIENT_HISTORY", "not enough price history").
			WithParam("have", ih.Have).
			WithParam("need", ih.Need).
			WithError(err)
	case errors.As(err, &id):
		return xhttp.UnprocessableError("ERR_INSUFFICIENT_HISTORY", "not enough data points").
			WithParam("have", id.Have).
			WithParam("need", id.Need).
			WithError(err)
	case errors.Is(err, errs.ErrProviderNotConfigured):
		return xhttp.BadGatewayError("ERR_PROVIDER_NOT_CONFIGURED", "insight provider is not configured").WithError(err)
	case errors.Is(err, context.DeadlineExceeded):
		return xhttp.GatewayTimeoutError("upstream timed out").WithError(err)
	default:
		return xhttp.InternalError("internal error").WithError(err)
	}
}
