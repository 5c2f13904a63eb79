// Package config 애플리케이션 설정의 로드와 검증을 담당합니다.
//
// 설정은 다음 우선순위로 병합됩니다 (뒤로 갈수록 우선):
//  1. 코드에 정의된 기본값
//  2. JSON 설정 파일 (catalog-notifier.json)
//  3. 환경 변수 (CATALOG_ 접두사)
package config

import (
	"fmt"
	"os"
	"strings"

	apperrors "github.com/darkkaiser/catalog-notifier/internal/pkg/errors"
	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

const (
	// AppName 애플리케이션의 전역 고유 식별자입니다.
	AppName string = "catalog-notifier"

	// DefaultFilename 애플리케이션 초기화 시 참조하는 기본 설정 파일명입니다.
	// 실행 인자를 통해 명시적인 경로가 제공되지 않을 경우, 시스템은 이 파일을 탐색하여 구성을 로드합니다.
	DefaultFilename = AppName + ".json"

	// envPrefix 환경 변수 오버라이드에 사용하는 접두사입니다.
	envPrefix = "CATALOG_"
)

// HTTP 수집 정책 기본값
const (
	// DefaultMaxRetries HTTP 요청 실패 시 최대 재시도 횟수 기본값
	DefaultMaxRetries = 5

	// DefaultRetryDelay 재시도 사이의 대기 시간 기본값 (지수 백오프의 시작점)
	DefaultRetryDelay = "1s"

	// DefaultRequestTimeout HTTP 요청 제한 시간 기본값
	DefaultRequestTimeout = "10s"

	// DefaultPollInterval 소스 수집 주기 기본값
	DefaultPollInterval = "5m"

	// DefaultListenPort 알림 API 웹서버의 기본 포트
	DefaultListenPort = 8443
)

// defaultAppConfig 설정 파일에 명시되지 않았을 때 적용되는 기본값들을 반환합니다.
func defaultAppConfig() AppConfig {
	return AppConfig{
		HTTPRetry: HTTPRetryConfig{
			MaxRetries:     DefaultMaxRetries,
			RetryDelay:     DefaultRetryDelay,
			RequestTimeout: DefaultRequestTimeout,
		},
		Monitor: MonitorConfig{
			DefaultInterval: DefaultPollInterval,
		},
		NotifyAPI: NotifyAPIConfig{
			WS: WSConfig{
				ListenPort: DefaultListenPort,
			},
			CORS: CORSConfig{
				AllowOrigins: []string{"*"},
			},
		},
	}
}

// Load 기본 설정 파일을 읽어 애플리케이션 설정을 로드합니다.
func Load() (*AppConfig, error) {
	return LoadWithFile(DefaultFilename)
}

// LoadWithFile 지정된 경로의 설정 파일을 읽어 AppConfig 객체를 생성합니다.
func LoadWithFile(filename string) (*AppConfig, error) {
	k := koanf.New(".")

	// 1. 기본값 로드 (가장 낮은 우선순위)
	if err := k.Load(structs.Provider(defaultAppConfig(), "json"), nil); err != nil {
		return nil, apperrors.Wrap(err, apperrors.System, "애플리케이션 기본 설정 로드에 실패했습니다")
	}

	// 2. JSON 설정 파일 로드 (기본값 덮어쓰기)
	if err := k.Load(file.Provider(filename), json.Parser()); err != nil {
		if os.IsNotExist(err) {
			return nil, apperrors.Wrap(err, apperrors.System, fmt.Sprintf("설정 파일을 찾을 수 없습니다: '%s'", filename))
		}
		return nil, apperrors.Wrap(err, apperrors.InvalidInput, fmt.Sprintf("설정 파일 로드 중 오류가 발생했습니다: '%s'", filename))
	}

	// 3. 환경 변수 로드 (최우선 순위, JSON 설정 덮어쓰기)
	// 접두사: CATALOG_
	// 구분자: 이중 언더스코어(__)를 점(.)으로 변환 (계층 구조 표현)
	// 예: CATALOG_HTTP_RETRY__MAX_RETRIES -> http_retry.max_retries
	if err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		s = strings.TrimPrefix(s, envPrefix)
		s = strings.ToLower(s)
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, apperrors.Wrap(err, apperrors.System, "환경 변수 로드에 실패했습니다")
	}

	// 4. 구조체 언마샬링 (Strict Validation 적용)
	unmarshalConf := koanf.UnmarshalConf{
		Tag: "json",
		DecoderConfig: &mapstructure.DecoderConfig{
			ErrorUnused:      true, // 파일에 존재하지만 구조체에 없는 필드가 있을 경우 에러를 발생시킴
			WeaklyTypedInput: true,
		},
	}
	var appConfig AppConfig
	if err := k.UnmarshalWithConf("", &appConfig, unmarshalConf); err != nil {
		return nil, apperrors.Wrap(err, apperrors.System, "설정 데이터를 애플리케이션 구조체로 변환하는데 실패했습니다")
	}

	// 5. 유효성 검사 수행 (정합성 체크)
	if err := appConfig.validate(); err != nil {
		return nil, apperrors.Wrap(err, apperrors.InvalidInput, fmt.Sprintf("설정 파일('%s')의 유효성 검증에 실패했습니다", filename))
	}

	return &appConfig, nil
}
