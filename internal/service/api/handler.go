package api

import (
	"net/http"
	"time"

	"github.com/darkkaiser/catalog-notifier/internal/pkg/version"
	"github.com/darkkaiser/catalog-notifier/internal/service/contract"
	applog "github.com/darkkaiser/catalog-notifier/pkg/log"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

var serverStartTime = time.Now()

// requestValidator API 요청 모델의 validate 태그 규칙을 검증합니다.
var requestValidator = validator.New()

// Handler API 엔드포인트별 요청을 처리하는 핸들러 집합입니다.
type Handler struct {
	authenticator *Authenticator

	notificationSender contract.NotificationSender
	healthChecker      contract.NotificationHealthChecker

	sourceStatusProvider contract.SourceStatusProvider

	buildInfo version.Info
}

// NewHandler Handler 인스턴스를 생성합니다.
func NewHandler(authenticator *Authenticator, notificationSender contract.NotificationSender, healthChecker contract.NotificationHealthChecker, sourceStatusProvider contract.SourceStatusProvider, buildInfo version.Info) *Handler {
	return &Handler{
		authenticator: authenticator,

		notificationSender: notificationSender,
		healthChecker:      healthChecker,

		sourceStatusProvider: sourceStatusProvider,

		buildInfo: buildInfo,
	}
}

// HealthCheckHandler 서버가 정상적으로 동작하는지 확인합니다.
// 인증 없이 호출할 수 있으며, 모니터링 시스템에서 서버 상태를 확인하는 데 사용됩니다.
func (h *Handler) HealthCheckHandler(c echo.Context) error {
	uptime := int64(time.Since(serverStartTime).Seconds())

	if h.healthChecker != nil {
		if err := h.healthChecker.Health(); err != nil {
			return c.JSON(http.StatusServiceUnavailable, HealthResponse{
				Status: "unhealthy",
				Uptime: uptime,
			})
		}
	}

	return c.JSON(http.StatusOK, HealthResponse{
		Status: "healthy",
		Uptime: uptime,
	})
}

// VersionHandler 서버의 빌드 정보를 반환합니다.
// Git 커밋 해시, 빌드 날짜, 빌드 번호, Go 버전 등의 정보를 제공합니다.
func (h *Handler) VersionHandler(c echo.Context) error {
	return c.JSON(http.StatusOK, h.buildInfo)
}

// PublishNotificationHandler 외부 애플리케이션의 알림 메시지를 알림 채널로 발송합니다.
//
// 이 API를 사용하려면 사전에 등록된 애플리케이션 ID와 APP_KEY가 필요합니다.
// APP_KEY는 X-App-Key 헤더로 전달하는 것을 권장하며, app_key 쿼리 파라미터도 지원합니다.
func (h *Handler) PublishNotificationHandler(c echo.Context) error {
	// 1. 요청 바인딩
	req := new(NotificationRequest)
	if err := c.Bind(req); err != nil {
		h.log(c).WithError(err).Warn("요청 바인딩 실패")
		return NewBadRequestError("잘못된 요청 형식입니다")
	}

	// 2. 입력 검증
	if err := requestValidator.Struct(req); err != nil {
		h.log(c).WithError(err).Warn("입력 검증 실패")
		return NewBadRequestError("application_id와 message는 필수 항목입니다. (message 최대 4096자)")
	}

	appKey := c.Request().Header.Get("X-App-Key")
	if appKey == "" {
		appKey = c.QueryParam("app_key")
	}
	if appKey == "" {
		h.log(c).WithField("application_id", req.ApplicationID).Warn("app_key가 비어있음")
		return NewBadRequestError("app_key는 필수입니다")
	}

	// 3. 인증
	app, err := h.authenticator.Authenticate(req.ApplicationID, appKey)
	if err != nil {
		h.log(c).WithField("application_id", req.ApplicationID).Warn("인증 실패")
		return err
	}

	// 4. 알림 발송 요청
	if err := h.notificationSender.NotifyWithTitle(contract.NotifierID(app.DefaultNotifierID), app.Title, req.Message, req.ErrorOccurred); err != nil {
		h.log(c).WithFields(applog.Fields{
			"application_id": req.ApplicationID,
			"notifier_id":    app.DefaultNotifierID,
		}).WithError(err).Error("알림 발송 요청 실패")

		return NewServiceUnavailableError("알림 발송 요청을 처리할 수 없습니다. 잠시 후 다시 시도해 주세요")
	}

	h.log(c).WithFields(applog.Fields{
		"application_id": req.ApplicationID,
		"notifier_id":    app.DefaultNotifierID,
		"message_length": len(req.Message),
	}).Info("알림 메시지 게시 요청 성공")

	// 5. 성공 응답
	return NewSuccessResponse(c)
}

// ListSourcesHandler 감시 대상 소스들의 현재 수집 상태 목록을 반환합니다.
func (h *Handler) ListSourcesHandler(c echo.Context) error {
	sources := []contract.SourceStatus{}
	if h.sourceStatusProvider != nil {
		sources = h.sourceStatusProvider.SourceStatuses()
	}

	return c.JSON(http.StatusOK, SourcesResponse{Sources: sources})
}

// log 공통 로깅 필드가 설정된 로거 엔트리를 반환합니다.
func (h *Handler) log(c echo.Context) *applog.Entry {
	return applog.WithComponentAndFields(componentHandler, applog.Fields{
		"endpoint":   c.Path(),
		"request_id": c.Response().Header().Get(echo.HeaderXRequestID),
	})
}
