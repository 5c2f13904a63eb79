package api

import "github.com/labstack/echo/v4"

// SetupRoutes Echo 인스턴스에 API 라우트를 설정합니다.
//
// 라우트는 다음과 같이 구성됩니다:
//   - System 엔드포인트: /health, /version (인증 불필요)
//   - API v1 엔드포인트: /api/v1/* (알림 게시는 APP_KEY 인증 필요)
func SetupRoutes(e *echo.Echo, h *Handler) {
	e.HTTPErrorHandler = HTTPErrorHandler

	// System 엔드포인트 (인증 불필요)
	e.GET("/health", h.HealthCheckHandler)
	e.GET("/version", h.VersionHandler)

	// API v1 엔드포인트
	grp := e.Group("/api/v1")
	{
		grp.POST("/notifications", h.PublishNotificationHandler)
		grp.GET("/sources", h.ListSourcesHandler)
	}
}
