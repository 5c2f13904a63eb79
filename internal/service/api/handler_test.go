package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/darkkaiser/catalog-notifier/internal/config"
	"github.com/darkkaiser/catalog-notifier/internal/pkg/version"
	"github.com/darkkaiser/catalog-notifier/internal/service/contract"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeSender 발송 요청된 알림을 기록하는 NotificationSender 목(Mock)입니다.
type fakeSender struct {
	mu sync.Mutex

	notifierIDs []contract.NotifierID
	titles      []string
	messages    []string

	err error
}

var _ contract.NotificationSender = (*fakeSender)(nil)

func (s *fakeSender) Notify(notifierID contract.NotifierID, message string) error {
	return s.record(notifierID, "", message)
}

func (s *fakeSender) NotifyWithTitle(notifierID contract.NotifierID, title string, message string, _ bool) error {
	return s.record(notifierID, title, message)
}

func (s *fakeSender) NotifyDefault(message string) error {
	return s.record("", "", message)
}

func (s *fakeSender) NotifyDefaultWithError(message string) error {
	return s.record("", "", message)
}

func (s *fakeSender) record(notifierID contract.NotifierID, title, message string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.notifierIDs = append(s.notifierIDs, notifierID)
	s.titles = append(s.titles, title)
	s.messages = append(s.messages, message)
	return nil
}

// fakeHealthChecker 지정된 상태를 반환하는 NotificationHealthChecker 목입니다.
type fakeHealthChecker struct {
	err error
}

func (c *fakeHealthChecker) Health() error {
	return c.err
}

// fakeStatusProvider 미리 준비된 소스 상태 목록을 반환하는 목입니다.
type fakeStatusProvider struct {
	statuses []contract.SourceStatus
}

func (p *fakeStatusProvider) SourceStatuses() []contract.SourceStatus {
	return p.statuses
}

func testAPIConfig() *config.AppConfig {
	return &config.AppConfig{
		NotifyAPI: config.NotifyAPIConfig{
			WS: config.WSConfig{
				ListenPort: 2443,
			},
			CORS: config.CORSConfig{
				AllowOrigins: []string{"*"},
			},
			Applications: []config.ApplicationConfig{
				{
					ID:                "my-app",
					Title:             "My App",
					DefaultNotifierID: "discord-main",
					AppKey:            "secret-key",
				},
			},
		},
	}
}

// newTestServer 라우트와 미들웨어가 설정된 테스트용 Echo 인스턴스를 생성합니다.
func newTestServer(t *testing.T, sender *fakeSender, healthErr error, statuses []contract.SourceStatus) *echo.Echo {
	t.Helper()

	cfg := testAPIConfig()
	h := NewHandler(
		NewAuthenticator(cfg),
		sender,
		&fakeHealthChecker{err: healthErr},
		&fakeStatusProvider{statuses: statuses},
		version.Info{Version: "v1.2.3", Commit: "abc1234", GoVersion: "go1.24.0"},
	)

	e := NewHTTPServer(HTTPServerConfig{AllowOrigins: cfg.NotifyAPI.CORS.AllowOrigins})
	SetupRoutes(e, h)

	return e
}

func doRequest(e *echo.Echo, method, target, body string, header map[string]string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	for k, v := range header {
		req.Header.Set(k, v)
	}

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestHealthCheckHandler(t *testing.T) {
	t.Parallel()

	t.Run("정상 상태", func(t *testing.T) {
		t.Parallel()

		e := newTestServer(t, &fakeSender{}, nil, nil)
		rec := doRequest(e, http.MethodGet, "/health", "", nil)

		require.Equal(t, http.StatusOK, rec.Code)

		var resp HealthResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "healthy", resp.Status)
	})

	t.Run("알림 서비스 비정상 상태", func(t *testing.T) {
		t.Parallel()

		e := newTestServer(t, &fakeSender{}, assert.AnError, nil)
		rec := doRequest(e, http.MethodGet, "/health", "", nil)

		require.Equal(t, http.StatusServiceUnavailable, rec.Code)
		assert.Contains(t, rec.Body.String(), "unhealthy")
	})
}

func TestVersionHandler(t *testing.T) {
	t.Parallel()

	e := newTestServer(t, &fakeSender{}, nil, nil)
	rec := doRequest(e, http.MethodGet, "/version", "", nil)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp version.Info
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "v1.2.3", resp.Version)
	assert.Equal(t, "abc1234", resp.Commit)
}

func TestPublishNotificationHandler(t *testing.T) {
	t.Parallel()

	const target = "/api/v1/notifications"

	t.Run("헤더 인증으로 발송 성공", func(t *testing.T) {
		t.Parallel()

		sender := &fakeSender{}
		e := newTestServer(t, sender, nil, nil)

		rec := doRequest(e, http.MethodPost, target,
			`{"application_id":"my-app","message":"배포가 완료되었습니다"}`,
			map[string]string{"X-App-Key": "secret-key"})

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"result_code":0`)

		require.Len(t, sender.messages, 1)
		assert.Equal(t, "배포가 완료되었습니다", sender.messages[0])
		assert.Equal(t, "My App", sender.titles[0])
		assert.Equal(t, contract.NotifierID("discord-main"), sender.notifierIDs[0])
	})

	t.Run("쿼리 파라미터 인증 지원", func(t *testing.T) {
		t.Parallel()

		sender := &fakeSender{}
		e := newTestServer(t, sender, nil, nil)

		rec := doRequest(e, http.MethodPost, target+"?app_key=secret-key",
			`{"application_id":"my-app","message":"쿼리 인증 메시지"}`, nil)

		require.Equal(t, http.StatusOK, rec.Code)
		require.Len(t, sender.messages, 1)
	})

	t.Run("app_key 누락 거부", func(t *testing.T) {
		t.Parallel()

		e := newTestServer(t, &fakeSender{}, nil, nil)
		rec := doRequest(e, http.MethodPost, target,
			`{"application_id":"my-app","message":"메시지"}`, nil)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("등록되지 않은 애플리케이션 거부", func(t *testing.T) {
		t.Parallel()

		e := newTestServer(t, &fakeSender{}, nil, nil)
		rec := doRequest(e, http.MethodPost, target,
			`{"application_id":"ghost-app","message":"메시지"}`,
			map[string]string{"X-App-Key": "secret-key"})

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("잘못된 APP_KEY 거부", func(t *testing.T) {
		t.Parallel()

		sender := &fakeSender{}
		e := newTestServer(t, sender, nil, nil)

		rec := doRequest(e, http.MethodPost, target,
			`{"application_id":"my-app","message":"메시지"}`,
			map[string]string{"X-App-Key": "wrong-key"})

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Empty(t, sender.messages)
	})

	t.Run("필수 필드 누락 거부", func(t *testing.T) {
		t.Parallel()

		e := newTestServer(t, &fakeSender{}, nil, nil)
		rec := doRequest(e, http.MethodPost, target,
			`{"application_id":"my-app"}`,
			map[string]string{"X-App-Key": "secret-key"})

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("잘못된 JSON 형식 거부", func(t *testing.T) {
		t.Parallel()

		e := newTestServer(t, &fakeSender{}, nil, nil)
		rec := doRequest(e, http.MethodPost, target, `{invalid`,
			map[string]string{"X-App-Key": "secret-key"})

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("알림 큐 등록 실패 시 503 반환", func(t *testing.T) {
		t.Parallel()

		sender := &fakeSender{err: assert.AnError}
		e := newTestServer(t, sender, nil, nil)

		rec := doRequest(e, http.MethodPost, target,
			`{"application_id":"my-app","message":"메시지"}`,
			map[string]string{"X-App-Key": "secret-key"})

		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	})
}

func TestListSourcesHandler(t *testing.T) {
	t.Parallel()

	statuses := []contract.SourceStatus{
		{
			ID:             "store-a",
			Title:          "스토어 A",
			State:          contract.SourceStateBaselined,
			ProductCount:   42,
			FetchSucceeded: true,
			LastCycleAt:    time.Date(2026, 1, 2, 9, 0, 0, 0, time.UTC),
		},
		{
			ID:    "store-b",
			Title: "스토어 B",
			State: contract.SourceStateUnseen,
		},
	}

	e := newTestServer(t, &fakeSender{}, nil, statuses)
	rec := doRequest(e, http.MethodGet, "/api/v1/sources", "", nil)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp SourcesResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Sources, 2)
	assert.Equal(t, "store-a", resp.Sources[0].ID)
	assert.Equal(t, contract.SourceStateBaselined, resp.Sources[0].State)
	assert.Equal(t, 42, resp.Sources[0].ProductCount)
	assert.Equal(t, contract.SourceStateUnseen, resp.Sources[1].State)
}

func TestHTTPErrorHandler(t *testing.T) {
	t.Parallel()

	e := newTestServer(t, &fakeSender{}, nil, nil)
	rec := doRequest(e, http.MethodGet, "/no-such-page", "", nil)

	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "페이지를 찾을 수 없습니다")
}
