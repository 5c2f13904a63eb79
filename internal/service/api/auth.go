package api

import (
	"fmt"

	"github.com/darkkaiser/catalog-notifier/internal/config"
	applog "github.com/darkkaiser/catalog-notifier/pkg/log"
)

// Application 알림 API 사용이 허용된 클라이언트 애플리케이션 정보입니다.
type Application struct {
	ID                string
	Title             string
	Description       string
	DefaultNotifierID string
	AppKey            string
}

// Authenticator 애플리케이션 로딩 및 APP_KEY 인증을 담당합니다.
type Authenticator struct {
	applications map[string]*Application
}

// NewAuthenticator 설정에서 애플리케이션 목록을 로드하여 Authenticator를 생성합니다.
func NewAuthenticator(appConfig *config.AppConfig) *Authenticator {
	applications := make(map[string]*Application)
	for _, application := range appConfig.NotifyAPI.Applications {
		applications[application.ID] = &Application{
			ID:                application.ID,
			Title:             application.Title,
			Description:       application.Description,
			DefaultNotifierID: application.DefaultNotifierID,
			AppKey:            application.AppKey,
		}
	}

	return &Authenticator{
		applications: applications,
	}
}

// Authenticate 애플리케이션을 찾고 APP_KEY 인증을 수행합니다.
// 성공 시 Application 객체를 반환하고, 실패 시 적절한 HTTP 에러를 반환합니다.
func (a *Authenticator) Authenticate(applicationID, appKey string) (*Application, error) {
	app, ok := a.applications[applicationID]
	if !ok {
		return nil, NewUnauthorizedError(fmt.Sprintf("접근이 허용되지 않은 application_id(%s)입니다", applicationID))
	}

	if app.AppKey != appKey {
		applog.WithComponentAndFields(componentHandler, applog.Fields{
			"application_id":   applicationID,
			"received_app_key": applog.MaskSensitiveData(appKey),
		}).Warn("APP_KEY 불일치")

		return nil, NewUnauthorizedError(fmt.Sprintf("app_key가 유효하지 않습니다.(application_id:%s)", applicationID))
	}

	return app, nil
}
