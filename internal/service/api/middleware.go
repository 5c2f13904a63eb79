package api

import (
	"fmt"
	"net/http"
	"runtime"
	"strconv"
	"time"

	apperrors "github.com/darkkaiser/catalog-notifier/internal/pkg/errors"
	applog "github.com/darkkaiser/catalog-notifier/pkg/log"
	"github.com/labstack/echo/v4"
)

// PanicRecovery 핸들러에서 발생한 panic을 복구하여 서버 다운을 방지하는 미들웨어입니다.
// 스택 트레이스와 함께 에러를 로깅하고 500 응답을 반환합니다.
func PanicRecovery() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			defer func() {
				if r := recover(); r != nil {
					err, ok := r.(error)
					if !ok {
						err = apperrors.New(apperrors.Internal, fmt.Sprintf("%v", r))
					}

					stack := make([]byte, 4<<10) // 4KB
					length := runtime.Stack(stack, false)

					applog.WithComponentAndFields(componentMiddleware, applog.Fields{
						"error":      err,
						"stack":      string(stack[:length]),
						"request_id": c.Response().Header().Get(echo.HeaderXRequestID),
					}).Error("PANIC RECOVERED")

					c.Error(err)
				}
			}()
			return next(c)
		}
	}
}

// HTTPLogger HTTP 요청/응답 정보를 구조화된 로그로 기록하는 미들웨어입니다.
// 요청 처리 시간, 상태 코드, IP 주소 등의 정보를 기록하며,
// 쿼리 스트링에 포함된 인증 키는 마스킹하여 기록합니다.
func HTTPLogger() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			res := c.Response()

			start := time.Now()
			if err := next(c); err != nil {
				c.Error(err)
			}
			stop := time.Now()

			p := req.URL.Path
			if p == "" {
				p = "/"
			}

			bytesIn := req.Header.Get(echo.HeaderContentLength)
			if bytesIn == "" {
				bytesIn = "0"
			}

			applog.WithComponentAndFields(componentMiddleware, applog.Fields{
				"remote_ip":     c.RealIP(),
				"host":          req.Host,
				"uri":           maskedRequestURI(req),
				"method":        req.Method,
				"path":          p,
				"referer":       req.Referer(),
				"user_agent":    req.UserAgent(),
				"status":        res.Status,
				"latency_human": stop.Sub(start).String(),
				"bytes_in":      bytesIn,
				"bytes_out":     strconv.FormatInt(res.Size, 10),
				"request_id":    res.Header().Get(echo.HeaderXRequestID),
			}).Info("http request")

			return nil
		}
	}
}

// maskedRequestURI app_key 쿼리 파라미터 값을 마스킹한 요청 URI를 반환합니다.
func maskedRequestURI(req *http.Request) string {
	q := req.URL.Query()
	if key := q.Get("app_key"); key != "" {
		q.Set("app_key", applog.MaskSensitiveData(key))

		u := *req.URL
		u.RawQuery = q.Encode()
		return u.RequestURI()
	}
	return req.RequestURI
}
