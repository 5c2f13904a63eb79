// Package api 외부 애플리케이션의 알림 게시와 서버 상태 조회를 제공하는
// Echo 기반 REST API 서비스입니다.
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/darkkaiser/catalog-notifier/internal/config"
	apperrors "github.com/darkkaiser/catalog-notifier/internal/pkg/errors"
	"github.com/darkkaiser/catalog-notifier/internal/pkg/version"
	"github.com/darkkaiser/catalog-notifier/internal/service"
	"github.com/darkkaiser/catalog-notifier/internal/service/contract"
	applog "github.com/darkkaiser/catalog-notifier/pkg/log"
	"github.com/labstack/echo/v4"
)

const (
	componentService    = "api.service"
	componentHandler    = "api.handler"
	componentMiddleware = "api.middleware"
)

// shutdownTimeout 서버 종료 시 대기 시간
const shutdownTimeout = 5 * time.Second

// Service 알림 API 서버의 생명주기를 관리하는 서비스입니다.
//
// Echo 기반 HTTP/HTTPS 서버의 시작과 종료, API 엔드포인트 라우팅,
// Graceful Shutdown(5초 타임아웃)을 담당합니다.
type Service struct {
	appConfig *config.AppConfig

	notificationSender contract.NotificationSender
	healthChecker      contract.NotificationHealthChecker

	sourceStatusProvider contract.SourceStatusProvider

	buildInfo version.Info

	running   bool
	runningMu sync.Mutex
}

var _ service.Service = (*Service)(nil)

// NewService API 서비스를 생성합니다.
//
// sourceStatusProvider는 소스 수집 상태 조회 API에 사용되며, nil이면 빈 목록이 반환됩니다.
func NewService(appConfig *config.AppConfig, notificationSender contract.NotificationSender, healthChecker contract.NotificationHealthChecker, sourceStatusProvider contract.SourceStatusProvider, buildInfo version.Info) *Service {
	return &Service{
		appConfig: appConfig,

		notificationSender: notificationSender,
		healthChecker:      healthChecker,

		sourceStatusProvider: sourceStatusProvider,

		buildInfo: buildInfo,
	}
}

// Start API 서비스를 시작합니다.
//
// 이 함수는 즉시 반환되며, 실제 서버는 고루틴에서 실행됩니다.
func (s *Service) Start(serviceStopCtx context.Context, serviceStopWG *sync.WaitGroup) error {
	s.runningMu.Lock()
	defer s.runningMu.Unlock()

	applog.WithComponent(componentService).Debug("API 서비스 시작중...")

	if s.notificationSender == nil {
		defer serviceStopWG.Done()
		return apperrors.New(apperrors.Internal, "NotificationSender 객체가 초기화되지 않았습니다")
	}

	if s.running {
		defer serviceStopWG.Done()
		applog.WithComponent(componentService).Warn("API 서비스가 이미 시작됨!!!")
		return nil
	}

	go s.runServiceLoop(serviceStopCtx, serviceStopWG)

	s.running = true

	applog.WithComponentAndFields(componentService, applog.Fields{
		"port": s.appConfig.NotifyAPI.WS.ListenPort,
	}).Info("API 서비스 시작됨")

	return nil
}

// runServiceLoop 서비스의 메인 실행 루프입니다.
// 서버 설정, HTTP 서버 시작, Shutdown 대기를 순차적으로 수행합니다.
func (s *Service) runServiceLoop(serviceStopCtx context.Context, serviceStopWG *sync.WaitGroup) {
	defer serviceStopWG.Done()

	e := s.setupServer()

	httpServerDone := make(chan struct{})
	go s.startHTTPServer(e, httpServerDone)

	s.waitForShutdown(serviceStopCtx, e, httpServerDone)
}

// setupServer Echo 서버 및 라우트를 설정합니다.
func (s *Service) setupServer() *echo.Echo {
	authenticator := NewAuthenticator(s.appConfig)
	h := NewHandler(authenticator, s.notificationSender, s.healthChecker, s.sourceStatusProvider, s.buildInfo)

	e := NewHTTPServer(HTTPServerConfig{
		Debug:        s.appConfig.Debug,
		AllowOrigins: s.appConfig.NotifyAPI.CORS.AllowOrigins,
	})

	SetupRoutes(e, h)

	return e
}

// startHTTPServer 설정에 따라 HTTP 또는 HTTPS 서버를 시작합니다.
// 서버가 종료되면 done 채널을 닫아 대기 중인 고루틴에 신호를 보냅니다.
func (s *Service) startHTTPServer(e *echo.Echo, done chan struct{}) {
	defer close(done)

	port := s.appConfig.NotifyAPI.WS.ListenPort
	applog.WithComponentAndFields(componentService, applog.Fields{
		"port": port,
	}).Debug("API 서비스 > http 서버 시작")

	var err error
	if s.appConfig.NotifyAPI.WS.TLSServer {
		err = e.StartTLS(
			fmt.Sprintf(":%d", port),
			s.appConfig.NotifyAPI.WS.TLSCertFile,
			s.appConfig.NotifyAPI.WS.TLSKeyFile,
		)
	} else {
		err = e.Start(fmt.Sprintf(":%d", port))
	}

	s.handleServerError(err)
}

// handleServerError 서버 에러를 처리합니다.
// 정상 종료(http.ErrServerClosed)는 Info 레벨로 로깅하고,
// 그 외의 에러는 Error 레벨로 로깅하며 기본 알림 채널로 오류를 통지합니다.
func (s *Service) handleServerError(err error) {
	if err == nil {
		return
	}

	if errors.Is(err, http.ErrServerClosed) {
		applog.WithComponent(componentService).Info("API 서비스 > http 서버 중지됨")
		return
	}

	m := "API 서비스 > http 서버를 구성하는 중에 치명적인 오류가 발생하였습니다."
	applog.WithComponentAndFields(componentService, applog.Fields{
		"port": s.appConfig.NotifyAPI.WS.ListenPort,
	}).WithError(err).Error(m)

	_ = s.notificationSender.NotifyDefaultWithError(fmt.Sprintf("%s\r\n\r\n%s", m, err))
}

// waitForShutdown Shutdown 신호를 대기하고 Graceful Shutdown을 처리합니다.
func (s *Service) waitForShutdown(serviceStopCtx context.Context, e *echo.Echo, httpServerDone chan struct{}) {
	<-serviceStopCtx.Done()

	applog.WithComponent(componentService).Debug("API 서비스 중지중...")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := e.Shutdown(ctx); err != nil {
		applog.WithComponent(componentService).WithError(err).Error("서버 종료 중 오류 발생")
	}

	<-httpServerDone

	s.runningMu.Lock()
	s.running = false
	s.runningMu.Unlock()

	applog.WithComponent(componentService).Info("API 서비스 중지됨")
}
