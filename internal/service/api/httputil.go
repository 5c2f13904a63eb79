package api

import (
	"net/http"

	applog "github.com/darkkaiser/catalog-notifier/pkg/log"
	"github.com/labstack/echo/v4"
)

// NewBadRequestError 400 Bad Request 에러를 생성합니다.
func NewBadRequestError(message string) error {
	return echo.NewHTTPError(http.StatusBadRequest, ErrorResponse{Message: message})
}

// NewUnauthorizedError 401 Unauthorized 에러를 생성합니다.
func NewUnauthorizedError(message string) error {
	return echo.NewHTTPError(http.StatusUnauthorized, ErrorResponse{Message: message})
}

// NewServiceUnavailableError 503 Service Unavailable 에러를 생성합니다.
func NewServiceUnavailableError(message string) error {
	return echo.NewHTTPError(http.StatusServiceUnavailable, ErrorResponse{Message: message})
}

// NewSuccessResponse 표준화된 성공 응답을 생성합니다.
func NewSuccessResponse(c echo.Context) error {
	return c.JSON(http.StatusOK, SuccessResponse{ResultCode: 0})
}

// HTTPErrorHandler 커스텀 HTTP 에러 핸들러입니다.
// 모든 HTTP 에러를 표준 ErrorResponse 형식으로 반환합니다.
func HTTPErrorHandler(err error, c echo.Context) {
	code := http.StatusInternalServerError
	message := "내부 서버 오류가 발생했습니다."

	if he, ok := err.(*echo.HTTPError); ok {
		code = he.Code
		switch m := he.Message.(type) {
		case string:
			message = m
		case ErrorResponse:
			message = m.Message
		}
	}

	if code == http.StatusNotFound {
		message = "페이지를 찾을 수 없습니다."
	}

	if code == http.StatusInternalServerError {
		applog.WithComponentAndFields(componentHandler, applog.Fields{
			"path":   c.Request().URL.Path,
			"method": c.Request().Method,
			"error":  err,
		}).Error("내부 서버 오류 발생")
	}

	if c.Response().Committed {
		return
	}

	if c.Request().Method == http.MethodHead {
		_ = c.NoContent(code)
		return
	}

	_ = c.JSON(code, ErrorResponse{Message: message})
}
