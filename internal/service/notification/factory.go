package notification

import (
	"github.com/darkkaiser/catalog-notifier/internal/config"
	"github.com/darkkaiser/catalog-notifier/internal/service/contract"
	"github.com/darkkaiser/catalog-notifier/internal/service/notification/notifier"
	"github.com/darkkaiser/catalog-notifier/internal/service/notification/notifier/telegram"
	"github.com/darkkaiser/catalog-notifier/internal/service/notification/notifier/webhook"
)

// NotifierFactory 설정 정보를 바탕으로 Notifier 목록을 생성하는 인터페이스입니다.
// 테스트에서 실제 외부 API 연결 없이 목(Mock) Notifier를 주입할 때 교체합니다.
type NotifierFactory interface {
	CreateNotifiers(appConfig *config.AppConfig) ([]notifier.Notifier, error)
}

// defaultNotifierFactory 설정 파일에 정의된 웹훅/텔레그램 채널을 생성하는 기본 Factory입니다.
type defaultNotifierFactory struct{}

var _ NotifierFactory = (*defaultNotifierFactory)(nil)

// CreateNotifiers 설정 파일에 정의된 모든 알림 채널의 Notifier를 생성합니다.
func (f *defaultNotifierFactory) CreateNotifiers(appConfig *config.AppConfig) ([]notifier.Notifier, error) {
	var notifiers []notifier.Notifier

	for _, webhookCfg := range appConfig.Notifiers.Webhooks {
		notifiers = append(notifiers, webhook.New(contract.NotifierID(webhookCfg.ID), webhookCfg.URL))
	}

	for _, telegramCfg := range appConfig.Notifiers.Telegrams {
		n, err := telegram.New(contract.NotifierID(telegramCfg.ID), telegramCfg.BotToken, telegramCfg.ChatID)
		if err != nil {
			return nil, NewErrNotifierInitFailed(err)
		}
		notifiers = append(notifiers, n)
	}

	return notifiers, nil
}
