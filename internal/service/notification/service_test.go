package notification

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/darkkaiser/catalog-notifier/internal/config"
	"github.com/darkkaiser/catalog-notifier/internal/service/contract"
	"github.com/darkkaiser/catalog-notifier/internal/service/notification/notifier"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// mockNotifier 발송 요청된 알림을 기록하는 Notifier 목(Mock)입니다.
type mockNotifier struct {
	*notifier.Base
}

func newMockNotifier(id contract.NotifierID) *mockNotifier {
	return &mockNotifier{
		Base: notifier.NewBase(id, false, 10, time.Second),
	}
}

func (n *mockNotifier) Run(serviceStopCtx context.Context) {
	<-serviceStopCtx.Done()
}

// mockFactory 미리 준비된 Notifier 목록을 반환하는 Factory입니다.
type mockFactory struct {
	notifiers []notifier.Notifier
	err       error
}

func (f *mockFactory) CreateNotifiers(_ *config.AppConfig) ([]notifier.Notifier, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.notifiers, nil
}

func testConfig() *config.AppConfig {
	return &config.AppConfig{
		Notifiers: config.NotifierConfig{
			DefaultNotifierID: "discord-main",
			Webhooks: []config.WebhookConfig{
				{ID: "discord-main", URL: "https://discord.example.com/api/webhooks/1/x"},
			},
		},
	}
}

// startTestService 목 Notifier들로 구성된 서비스를 시작하고 정리 함수를 등록합니다.
func startTestService(t *testing.T, notifiers ...notifier.Notifier) (*Service, func()) {
	t.Helper()

	s := NewService(testConfig())
	s.SetNotifierFactory(&mockFactory{notifiers: notifiers})

	serviceStopCtx, cancel := context.WithCancel(context.Background())
	var serviceStopWG sync.WaitGroup

	serviceStopWG.Add(1)
	require.NoError(t, s.Start(serviceStopCtx, &serviceStopWG))

	stopped := false
	stop := func() {
		if !stopped {
			stopped = true
			cancel()
			serviceStopWG.Wait()
		}
	}
	t.Cleanup(stop)

	return s, stop
}

func TestServiceStart(t *testing.T) {
	t.Run("기본 Notifier가 없으면 시작 실패", func(t *testing.T) {
		s := NewService(testConfig())
		s.SetNotifierFactory(&mockFactory{notifiers: []notifier.Notifier{newMockNotifier("other")}})

		serviceStopCtx, cancel := context.WithCancel(context.Background())
		defer cancel()

		var serviceStopWG sync.WaitGroup
		serviceStopWG.Add(1)

		err := s.Start(serviceStopCtx, &serviceStopWG)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "discord-main")

		cancel()
		serviceStopWG.Wait()
	})

	t.Run("Notifier 초기화 실패 시 시작 실패", func(t *testing.T) {
		s := NewService(testConfig())
		s.SetNotifierFactory(&mockFactory{err: assert.AnError})

		serviceStopCtx, cancel := context.WithCancel(context.Background())
		defer cancel()

		var serviceStopWG sync.WaitGroup
		serviceStopWG.Add(1)

		assert.Error(t, s.Start(serviceStopCtx, &serviceStopWG))

		serviceStopWG.Wait()
	})
}

func TestServiceNotify(t *testing.T) {
	defaultNotifier := newMockNotifier("discord-main")
	secondNotifier := newMockNotifier("discord-backup")

	s, stop := startTestService(t, defaultNotifier, secondNotifier)

	t.Run("지정된 Notifier로 발송", func(t *testing.T) {
		require.NoError(t, s.Notify("discord-backup", "백업 채널 알림"))

		req := <-secondNotifier.NotificationC()
		assert.Equal(t, "백업 채널 알림", req.Notification.Message)
	})

	t.Run("빈 NotifierID는 기본 Notifier로 발송", func(t *testing.T) {
		require.NoError(t, s.NotifyDefault("기본 채널 알림"))

		req := <-defaultNotifier.NotificationC()
		assert.Equal(t, "기본 채널 알림", req.Notification.Message)
	})

	t.Run("제목과 오류 플래그 전달", func(t *testing.T) {
		require.NoError(t, s.NotifyWithTitle("discord-main", "스토어 A", "수집 실패", true))

		req := <-defaultNotifier.NotificationC()
		assert.Equal(t, "스토어 A", req.Notification.Title)
		assert.True(t, req.Notification.ErrorOccurred)
	})

	t.Run("알 수 없는 Notifier는 기본 채널로 오류 통지", func(t *testing.T) {
		err := s.Notify("ghost", "유령 채널 알림")
		assert.ErrorIs(t, err, ErrNotifierNotFound)

		req := <-defaultNotifier.NotificationC()
		assert.True(t, req.Notification.ErrorOccurred)
		assert.Contains(t, req.Notification.Message, "ghost")
	})

	t.Run("서비스 상태 확인", func(t *testing.T) {
		assert.NoError(t, s.Health())
	})

	stop()

	t.Run("중지된 서비스는 발송 거부", func(t *testing.T) {
		assert.ErrorIs(t, s.NotifyDefault("중지 후 알림"), ErrServiceNotRunning)
		assert.ErrorIs(t, s.Health(), ErrServiceNotRunning)
	})
}
