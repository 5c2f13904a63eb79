package api

import (
	"context"
	"net/http"
	"net/url"
	"sync"
	"testing"

	"github.com/darkkaiser/catalog-notifier/internal/pkg/version"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServiceStart(t *testing.T) {
	t.Run("NotificationSender가 nil이면 시작 실패", func(t *testing.T) {
		s := NewService(testAPIConfig(), nil, nil, nil, version.Get())

		serviceStopCtx, cancel := context.WithCancel(context.Background())
		defer cancel()

		var serviceStopWG sync.WaitGroup
		serviceStopWG.Add(1)

		assert.Error(t, s.Start(serviceStopCtx, &serviceStopWG))
		serviceStopWG.Wait()
	})

	t.Run("시작과 중복 시작 그리고 중지", func(t *testing.T) {
		cfg := testAPIConfig()
		cfg.NotifyAPI.WS.ListenPort = 0 // 임의의 가용 포트 사용

		s := NewService(cfg, &fakeSender{}, &fakeHealthChecker{}, nil, version.Get())

		serviceStopCtx, cancel := context.WithCancel(context.Background())
		var serviceStopWG sync.WaitGroup

		serviceStopWG.Add(1)
		require.NoError(t, s.Start(serviceStopCtx, &serviceStopWG))

		// 중복 시작은 에러 없이 경고만 남기고 반환됨
		serviceStopWG.Add(1)
		require.NoError(t, s.Start(serviceStopCtx, &serviceStopWG))

		cancel()
		serviceStopWG.Wait()
	})
}

func TestMaskedRequestURI(t *testing.T) {
	t.Parallel()

	t.Run("app_key 마스킹", func(t *testing.T) {
		t.Parallel()

		u, err := url.Parse("/api/v1/notifications?app_key=super-secret-key&foo=bar")
		require.NoError(t, err)

		masked := maskedRequestURI(&http.Request{URL: u, RequestURI: u.RequestURI()})
		assert.NotContains(t, masked, "super-secret-key")
		assert.Contains(t, masked, "foo=bar")
	})

	t.Run("app_key가 없으면 원본 유지", func(t *testing.T) {
		t.Parallel()

		u, err := url.Parse("/health")
		require.NoError(t, err)

		masked := maskedRequestURI(&http.Request{URL: u, RequestURI: u.RequestURI()})
		assert.Equal(t, "/health", masked)
	})
}
