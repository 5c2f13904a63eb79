package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeConfigFile 테스트용 설정 파일을 임시 디렉토리에 생성합니다.
func writeConfigFile(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), DefaultFilename)
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

// validConfigJSON 모든 필수 항목이 채워진 유효한 설정 JSON입니다.
const validConfigJSON = `{
  "debug": true,
  "monitor": {
    "sources": [
      {
        "id": "example-store",
        "title": "Example Store",
        "url": "https://shop.example.com/products.json",
        "domain": "shop.example.com",
        "interval": "1m"
      }
    ]
  },
  "notifiers": {
    "default_notifier_id": "discord-main",
    "webhooks": [
      {"id": "discord-main", "url": "https://discord.com/api/webhooks/123/abc"}
    ]
  },
  "notify_api": {
    "ws": {"listen_port": 8443},
    "cors": {"allow_origins": ["*"]},
    "applications": [
      {"id": "external-app", "default_notifier_id": "discord-main", "app_key": "secret-key"}
    ]
  }
}`

// =============================================================================
// 설정 파일 로드
// =============================================================================

// TestLoadWithFile 유효한 설정 파일이 정상적으로 로드되는지 검증합니다.
func TestLoadWithFile(t *testing.T) {
	path := writeConfigFile(t, validConfigJSON)

	appConfig, err := LoadWithFile(path)
	require.NoError(t, err)

	assert.True(t, appConfig.Debug)
	require.Len(t, appConfig.Monitor.Sources, 1)

	source := appConfig.Monitor.Sources[0]
	assert.Equal(t, "example-store", source.ID)
	assert.Equal(t, SourceTypeJSON, source.SourceType(), "타입 미지정 시 json으로 처리되어야 함")

	interval, err := source.PollInterval(appConfig.Monitor.DefaultInterval)
	require.NoError(t, err)
	assert.Equal(t, time.Minute, interval)

	// 기본값 적용 확인
	assert.Equal(t, DefaultMaxRetries, appConfig.HTTPRetry.MaxRetries)
	assert.Equal(t, time.Second, appConfig.HTTPRetry.RetryDelayDuration())
	assert.Equal(t, 10*time.Second, appConfig.HTTPRetry.RequestTimeoutDuration())
}

// TestLoadWithFile_NotFound 존재하지 않는 설정 파일에 대한 에러 처리를 검증합니다.
func TestLoadWithFile_NotFound(t *testing.T) {
	_, err := LoadWithFile(filepath.Join(t.TempDir(), "no-such-file.json"))
	assert.Error(t, err)
}

// TestLoadWithFile_UnknownField 구조체에 없는 필드가 포함된 설정 파일을 거부하는지 검증합니다.
func TestLoadWithFile_UnknownField(t *testing.T) {
	path := writeConfigFile(t, `{"debug": false, "typo_field": 1}`)

	_, err := LoadWithFile(path)
	assert.Error(t, err)
}

// TestLoadWithFile_EnvOverride 환경 변수가 설정 파일 값을 덮어쓰는지 검증합니다.
func TestLoadWithFile_EnvOverride(t *testing.T) {
	t.Setenv("CATALOG_HTTP_RETRY__MAX_RETRIES", "7")

	path := writeConfigFile(t, validConfigJSON)

	appConfig, err := LoadWithFile(path)
	require.NoError(t, err)
	assert.Equal(t, 7, appConfig.HTTPRetry.MaxRetries)
}

// TestSourceConfig_PollInterval 소스별 주기와 기본 주기의 적용 순서를 검증합니다.
func TestSourceConfig_PollInterval(t *testing.T) {
	t.Parallel()

	t.Run("소스별 주기 우선", func(t *testing.T) {
		t.Parallel()

		s := SourceConfig{Interval: "30s"}
		interval, err := s.PollInterval("5m")
		require.NoError(t, err)
		assert.Equal(t, 30*time.Second, interval)
	})

	t.Run("미지정 시 기본 주기", func(t *testing.T) {
		t.Parallel()

		s := SourceConfig{}
		interval, err := s.PollInterval("5m")
		require.NoError(t, err)
		assert.Equal(t, 5*time.Minute, interval)
	})
}
