package api

import (
	"net/http"

	applog "github.com/darkkaiser/catalog-notifier/pkg/log"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

// HTTPServerConfig 서버 생성 시 필요한 설정을 정의합니다.
type HTTPServerConfig struct {
	// Debug Echo의 디버그 모드 활성화 여부를 설정합니다.
	Debug bool
	// AllowOrigins CORS에서 허용할 Origin 목록을 설정합니다.
	// 프로덕션 환경에서는 특정 도메인만 허용하도록 설정해야 합니다.
	AllowOrigins []string
}

// NewHTTPServer 설정된 미들웨어를 포함한 Echo 인스턴스를 생성합니다.
//
// 미들웨어는 다음 순서로 적용됩니다:
//  1. PanicRecovery - 패닉 복구
//  2. RequestID - 요청 ID 생성
//  3. HTTPLogger - HTTP 요청/응답 로깅
//  4. CORS - Cross-Origin Resource Sharing
//  5. Secure - 보안 헤더 설정
//
// 라우트 설정은 포함되지 않으며, 반환된 Echo 인스턴스에 별도로 설정해야 합니다.
func NewHTTPServer(cfg HTTPServerConfig) *echo.Echo {
	e := echo.New()

	e.Debug = cfg.Debug
	e.HideBanner = true

	// echo에서 출력되는 로그를 Logrus Logger로 출력되도록 한다.
	e.Logger = Logger{Logger: applog.StandardLogger()}

	e.Use(PanicRecovery())
	e.Use(middleware.RequestID())
	e.Use(HTTPLogger())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: cfg.AllowOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPut, http.MethodPost, http.MethodDelete},
	}))
	e.Use(middleware.Secure())

	return e
}
