// Package notification 설정된 알림 채널(웹훅, 텔레그램)을 관리하고,
// 다른 서비스의 알림 발송 요청을 각 채널의 발송 큐로 전달하는 서비스입니다.
package notification

import (
	"context"
	"fmt"
	"sync"

	"github.com/darkkaiser/catalog-notifier/internal/config"
	"github.com/darkkaiser/catalog-notifier/internal/service"
	"github.com/darkkaiser/catalog-notifier/internal/service/contract"
	"github.com/darkkaiser/catalog-notifier/internal/service/notification/notifier"
	applog "github.com/darkkaiser/catalog-notifier/pkg/log"
)

const component = "notification.service"

// Service 알림 채널들의 생명주기를 관리하고 알림 발송 요청을 중계하는 서비스입니다.
type Service struct {
	appConfig *config.AppConfig

	notifierFactory NotifierFactory

	notifiers       map[contract.NotifierID]notifier.Notifier
	defaultNotifier notifier.Notifier

	// notifiersStopWG 모든 하위 Notifier의 발송 루프 종료를 대기하는 WaitGroup
	notifiersStopWG sync.WaitGroup

	running   bool
	runningMu sync.Mutex
}

var (
	_ service.Service                    = (*Service)(nil)
	_ contract.NotificationSender        = (*Service)(nil)
	_ contract.NotificationHealthChecker = (*Service)(nil)
)

// NewService Notification 서비스를 생성합니다.
func NewService(appConfig *config.AppConfig) *Service {
	return &Service{
		appConfig: appConfig,

		notifierFactory: &defaultNotifierFactory{},

		notifiers: make(map[contract.NotifierID]notifier.Notifier),
	}
}

// SetNotifierFactory Notifier 생성을 담당할 Factory를 교체합니다. (테스트용)
func (s *Service) SetNotifierFactory(factory NotifierFactory) {
	s.notifierFactory = factory
}

// Start 알림 서비스를 시작하여 등록된 Notifier들을 활성화합니다.
func (s *Service) Start(serviceStopCtx context.Context, serviceStopWG *sync.WaitGroup) error {
	s.runningMu.Lock()
	defer s.runningMu.Unlock()

	applog.WithComponent(component).Debug("Notification 서비스 시작중...")

	if s.running {
		defer serviceStopWG.Done()
		applog.WithComponent(component).Warn("Notification 서비스가 이미 시작됨!!!")
		return nil
	}

	// 1. Notifier들을 초기화 및 실행
	notifiers, err := s.notifierFactory.CreateNotifiers(s.appConfig)
	if err != nil {
		defer serviceStopWG.Done()
		return NewErrNotifierInitFailed(err)
	}

	defaultNotifierID := contract.NotifierID(s.appConfig.Notifiers.DefaultNotifierID)

	for _, h := range notifiers {
		s.notifiers[h.ID()] = h

		if h.ID() == defaultNotifierID {
			s.defaultNotifier = h
		}

		s.notifiersStopWG.Add(1)

		go func(handler notifier.Notifier) {
			defer s.notifiersStopWG.Done()
			handler.Run(serviceStopCtx)
		}(h)

		applog.WithComponentAndFields(component, applog.Fields{
			"notifier_id": h.ID(),
		}).Debug("Notifier가 Notification 서비스에 등록됨")
	}

	// 2. 기본 Notifier 존재 여부 확인
	if s.defaultNotifier == nil {
		defer serviceStopWG.Done()
		return NewErrDefaultNotifierNotFound(s.appConfig.Notifiers.DefaultNotifierID)
	}

	// 3. 서비스 종료 감시 루틴 실행
	go s.waitForShutdown(serviceStopCtx, serviceStopWG)

	s.running = true

	applog.WithComponent(component).Info("Notification 서비스 시작됨")

	return nil
}

// waitForShutdown 서비스의 종료 신호를 감지하고 리소스를 정리합니다.
func (s *Service) waitForShutdown(serviceStopCtx context.Context, serviceStopWG *sync.WaitGroup) {
	defer serviceStopWG.Done()

	<-serviceStopCtx.Done()

	applog.WithComponent(component).Debug("Notification 서비스 중지중...")

	// 새로운 알림 요청을 즉시 거부하도록 상태를 먼저 변경
	s.runningMu.Lock()
	s.running = false
	s.runningMu.Unlock()

	// 등록된 모든 Notifier의 발송 루프가 잔여 메시지를 처리하고 종료될 때까지 대기
	s.notifiersStopWG.Wait()

	s.runningMu.Lock()
	for _, h := range s.notifiers {
		h.Close()
	}
	s.notifiers = make(map[contract.NotifierID]notifier.Notifier)
	s.defaultNotifier = nil
	s.runningMu.Unlock()

	applog.WithComponent(component).Info("Notification 서비스 중지됨")
}

// Notify 지정된 Notifier를 통해 알림 메시지를 발송합니다.
func (s *Service) Notify(notifierID contract.NotifierID, message string) error {
	return s.send(notifierID, contract.NewNotification(message))
}

// NotifyWithTitle 지정된 Notifier를 통해 제목을 포함한 알림 메시지를 발송합니다.
func (s *Service) NotifyWithTitle(notifierID contract.NotifierID, title string, message string, errorOccurred bool) error {
	return s.send(notifierID, contract.Notification{
		NotifierID:    notifierID,
		Title:         title,
		Message:       message,
		ErrorOccurred: errorOccurred,
	})
}

// NotifyDefault 시스템에 설정된 기본 Notifier를 통해 알림 메시지를 발송합니다.
func (s *Service) NotifyDefault(message string) error {
	return s.send("", contract.NewNotification(message))
}

// NotifyDefaultWithError 기본 Notifier를 통해 "오류" 성격의 알림 메시지를 발송합니다.
func (s *Service) NotifyDefaultWithError(message string) error {
	return s.send("", contract.NewErrorNotification(message))
}

// Health 서비스가 정상적으로 실행 중인지 확인합니다.
func (s *Service) Health() error {
	s.runningMu.Lock()
	defer s.runningMu.Unlock()

	if !s.running {
		return ErrServiceNotRunning
	}
	return nil
}

// send 알림 요청을 대상 Notifier의 발송 큐에 등록합니다.
// notifierID가 빈 값이면 기본 Notifier를 사용합니다.
func (s *Service) send(notifierID contract.NotifierID, notification contract.Notification) error {
	s.runningMu.Lock()

	if !s.running {
		s.runningMu.Unlock()

		applog.WithComponentAndFields(component, applog.Fields{
			"notifier_id": notifierID,
		}).Warn("Notification 서비스가 실행 중이 아니어서 메시지를 전송할 수 없습니다")

		return ErrServiceNotRunning
	}

	h := s.defaultNotifier
	if notifierID != "" {
		h = s.notifiers[notifierID]
	}
	defaultNotifier := s.defaultNotifier

	// 큐 등록은 대기열이 가득 찬 경우 블로킹될 수 있으므로 락을 해제한 후 수행
	s.runningMu.Unlock()

	if h == nil {
		m := fmt.Sprintf("알 수 없는 Notifier('%s')입니다. 알림메시지 발송이 실패하였습니다.(Message:%s)", notifierID, notification.Message)

		applog.WithComponentAndFields(component, applog.Fields{
			"notifier_id": notifierID,
		}).Error(m)

		// 관리자가 설정 오류를 인지할 수 있도록 기본 채널로 오류를 통지
		_ = defaultNotifier.Send(context.Background(), contract.NewErrorNotification(m))

		return ErrNotifierNotFound
	}

	return h.Send(context.Background(), notification)
}
