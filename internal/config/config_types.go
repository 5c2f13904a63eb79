package config

import (
	"fmt"
	"slices"
	"strings"
	"time"

	apperrors "github.com/darkkaiser/catalog-notifier/internal/pkg/errors"
	"github.com/darkkaiser/catalog-notifier/pkg/cronx"
)

// 소스 타입 상수
const (
	// SourceTypeJSON 상품 카탈로그를 JSON 엔드포인트에서 수집하는 소스 타입 (기본값)
	SourceTypeJSON = "json"

	// SourceTypeHTML 상품 카탈로그를 HTML 페이지에서 수집하는 소스 타입
	SourceTypeHTML = "html"
)

// AppConfig 애플리케이션의 모든 설정을 관장하는 최상위 루트 구조체
type AppConfig struct {
	Debug     bool            `json:"debug"`
	HTTPRetry HTTPRetryConfig `json:"http_retry"`
	Monitor   MonitorConfig   `json:"monitor"`
	Notifiers NotifierConfig  `json:"notifiers"`
	NotifyAPI NotifyAPIConfig `json:"notify_api"`
}

// validate 설정 파일 로드 직후, 각 설정 항목의 정합성과 필수 값의 유효성을 검증합니다.
func (c *AppConfig) validate() error {
	if err := c.HTTPRetry.validate(); err != nil {
		return err
	}

	notifierIDs, err := c.Notifiers.validate()
	if err != nil {
		return err
	}

	if err := c.Monitor.validate(notifierIDs); err != nil {
		return err
	}

	if err := c.NotifyAPI.validate(notifierIDs); err != nil {
		return err
	}

	return nil
}

// VerifyRecommendations 서비스 운영의 안정성을 위해 권장되는 설정 준수 여부를 진단합니다.
// 강제적인 에러를 발생시키지는 않으나, 잠재적 위험 요소에 대한 경고 메시지를 반환합니다.
func (c *AppConfig) VerifyRecommendations() []string {
	var warnings []string

	warnings = append(warnings, c.NotifyAPI.VerifyRecommendations()...)

	// 과도하게 짧은 수집 주기는 대상 서버에 부담을 줄 수 있다.
	for _, s := range c.Monitor.Sources {
		if interval, err := s.PollInterval(c.Monitor.DefaultInterval); err == nil && interval < 30*time.Second {
			warnings = append(warnings, fmt.Sprintf("Source['%s']의 수집 주기(%s)가 30초 미만입니다. 대상 서버의 차단 정책에 주의하세요", s.ID, interval))
		}
	}

	return warnings
}

// HTTPRetryConfig HTTP 요청 실패 시 재시도 횟수와 대기 시간을 정의하는 설정 구조체
type HTTPRetryConfig struct {
	MaxRetries     int    `json:"max_retries" validate:"min=0,max=10"`
	RetryDelay     string `json:"retry_delay"`
	RequestTimeout string `json:"request_timeout"`
}

func (c *HTTPRetryConfig) validate() error {
	if err := checkStruct(validate, c, "HTTPRetry"); err != nil {
		return err
	}

	if _, err := time.ParseDuration(c.RetryDelay); err != nil {
		return apperrors.Wrap(err, apperrors.InvalidInput, fmt.Sprintf("HTTP 재시도 대기 시간(retry_delay) 설정이 올바르지 않습니다: '%s' (예: 1s, 500ms)", c.RetryDelay))
	}

	timeout, err := time.ParseDuration(c.RequestTimeout)
	if err != nil {
		return apperrors.Wrap(err, apperrors.InvalidInput, fmt.Sprintf("HTTP 요청 제한 시간(request_timeout) 설정이 올바르지 않습니다: '%s'", c.RequestTimeout))
	}
	if timeout < 10*time.Second {
		return apperrors.New(apperrors.InvalidInput, fmt.Sprintf("HTTP 요청 제한 시간(request_timeout)은 10초 이상이어야 합니다: '%s'", c.RequestTimeout))
	}

	return nil
}

// RetryDelayDuration 파싱된 재시도 대기 시간을 반환합니다. (validate 이후 호출 전제)
func (c *HTTPRetryConfig) RetryDelayDuration() time.Duration {
	d, _ := time.ParseDuration(c.RetryDelay)
	return d
}

// RequestTimeoutDuration 파싱된 요청 제한 시간을 반환합니다. (validate 이후 호출 전제)
func (c *HTTPRetryConfig) RequestTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.RequestTimeout)
	return d
}

// MonitorConfig 상품 카탈로그 감시 대상 소스들과 수집 주기를 정의하는 설정 구조체
type MonitorConfig struct {
	// DefaultInterval 소스별 주기가 지정되지 않았을 때 사용하는 기본 수집 주기
	DefaultInterval string `json:"default_interval"`

	Sources []SourceConfig `json:"sources" validate:"unique=ID"`
}

func (c *MonitorConfig) validate(notifierIDs []string) error {
	if _, err := time.ParseDuration(c.DefaultInterval); err != nil {
		return apperrors.Wrap(err, apperrors.InvalidInput, fmt.Sprintf("기본 수집 주기(default_interval) 설정이 올바르지 않습니다: '%s'", c.DefaultInterval))
	}

	if err := checkUniqueField(c.Sources, "ID", "Source"); err != nil {
		return err
	}

	for _, s := range c.Sources {
		if err := checkStruct(validate, s, fmt.Sprintf("Source['%s']", s.ID)); err != nil {
			return err
		}

		// Notifier 존재 여부 확인
		if s.DefaultNotifierID != "" && !slices.Contains(notifierIDs, s.DefaultNotifierID) {
			return apperrors.New(apperrors.NotFound, fmt.Sprintf("Source['%s']에서 참조하는 NotifierID('%s')가 정의되지 않았습니다", s.ID, s.DefaultNotifierID))
		}

		// Cron 표현식 검증 (Scheduler가 활성화된 경우)
		if s.Scheduler.Runnable {
			if err := cronx.Validate(s.Scheduler.TimeSpec); err != nil {
				return apperrors.Wrap(err, apperrors.InvalidInput, fmt.Sprintf("Source['%s']의 스케줄러(TimeSpec) 설정이 유효하지 않습니다", s.ID))
			}
		} else if s.Interval != "" {
			if interval, err := time.ParseDuration(s.Interval); err != nil {
				return apperrors.Wrap(err, apperrors.InvalidInput, fmt.Sprintf("Source['%s']의 수집 주기(interval) 설정이 올바르지 않습니다: '%s'", s.ID, s.Interval))
			} else if interval <= 0 {
				return apperrors.New(apperrors.InvalidInput, fmt.Sprintf("Source['%s']의 수집 주기(interval)는 0보다 커야 합니다: '%s'", s.ID, s.Interval))
			}
		}
	}

	return nil
}

// SourceConfig 주기적으로 감시할 상품 카탈로그 소스를 정의하는 구조체
type SourceConfig struct {
	ID    string `json:"id" validate:"required"`
	Title string `json:"title"`

	// URL 상품 카탈로그를 수집할 엔드포인트 (JSON 또는 HTML)
	URL string `json:"url" validate:"required,http_url"`

	// Domain 상품/장바구니 링크 생성에 사용되는 스토어 도메인 (예: shop.example.com)
	Domain string `json:"domain" validate:"required,store_hostname"`

	// Type 소스 타입 ("json" 또는 "html", 빈 값은 "json"으로 처리)
	Type string `json:"type" validate:"omitempty,oneof=json html"`

	// Interval 이 소스의 수집 주기 (빈 값이면 monitor.default_interval 사용)
	Interval string `json:"interval"`

	// Scheduler 수집 주기 대신 Cron 표현식으로 수집 시각을 지정하는 경우 사용
	Scheduler struct {
		Runnable bool   `json:"runnable"`
		TimeSpec string `json:"time_spec"`
	} `json:"scheduler"`

	// DefaultNotifierID 변경 알림을 발송할 Notifier (빈 값이면 전역 기본 Notifier 사용)
	DefaultNotifierID string `json:"default_notifier_id"`

	// Settings 소스 타입별 추가 설정 (HTML 소스의 셀렉터 등)
	Settings map[string]interface{} `json:"settings"`
}

// SourceType 정규화된 소스 타입을 반환합니다.
func (c *SourceConfig) SourceType() string {
	if c.Type == "" {
		return SourceTypeJSON
	}
	return c.Type
}

// PollInterval 이 소스에 적용될 수집 주기를 반환합니다.
// 소스별 주기가 없으면 기본 주기(defaultInterval)를 사용합니다.
func (c *SourceConfig) PollInterval(defaultInterval string) (time.Duration, error) {
	spec := c.Interval
	if spec == "" {
		spec = defaultInterval
	}
	return time.ParseDuration(spec)
}

// NotifierConfig 웹훅, 텔레그램 등 다양한 알림 채널을 정의하는 설정 구조체
type NotifierConfig struct {
	DefaultNotifierID string           `json:"default_notifier_id"`
	Webhooks          []WebhookConfig  `json:"webhooks" validate:"unique=ID"`
	Telegrams         []TelegramConfig `json:"telegrams" validate:"unique=ID"`
}

func (c *NotifierConfig) validate() ([]string, error) {
	if err := checkUniqueField(c.Webhooks, "ID", "Webhook Notifier"); err != nil {
		return nil, err
	}
	if err := checkUniqueField(c.Telegrams, "ID", "Telegram Notifier"); err != nil {
		return nil, err
	}

	var notifierIDs []string

	for _, webhook := range c.Webhooks {
		if err := checkStruct(validate, webhook, fmt.Sprintf("Webhook Notifier['%s']", webhook.ID)); err != nil {
			return nil, err
		}
		notifierIDs = append(notifierIDs, webhook.ID)
	}

	for _, telegram := range c.Telegrams {
		if err := checkStruct(validate, telegram, fmt.Sprintf("Telegram Notifier['%s']", telegram.ID)); err != nil {
			return nil, err
		}
		notifierIDs = append(notifierIDs, telegram.ID)
	}

	// 채널 간 ID 중복 검사 (웹훅과 텔레그램이 동일 ID를 사용하는 경우)
	idSet := make(map[string]struct{}, len(notifierIDs))
	for _, id := range notifierIDs {
		if _, exists := idSet[id]; exists {
			return nil, apperrors.New(apperrors.Conflict, fmt.Sprintf("알림 채널 간에 중복된 NotifierID('%s')가 존재합니다", id))
		}
		idSet[id] = struct{}{}
	}

	if len(notifierIDs) == 0 {
		return nil, apperrors.New(apperrors.InvalidInput, "알림 채널(notifiers)이 하나 이상 정의되어야 합니다")
	}

	// 기본 Notifier ID 검사
	if !slices.Contains(notifierIDs, c.DefaultNotifierID) {
		return nil, apperrors.New(apperrors.NotFound, fmt.Sprintf("기본 NotifierID('%s')가 정의된 Notifier 목록에 존재하지 않습니다", c.DefaultNotifierID))
	}

	return notifierIDs, nil
}

// WebhookConfig 웹훅 엔드포인트 정보를 담는 설정 구조체
type WebhookConfig struct {
	ID  string `json:"id" validate:"required"`
	URL string `json:"url" validate:"required,http_url"`
}

// TelegramConfig 텔레그램 봇 토큰 및 채팅 ID 정보를 담는 설정 구조체
type TelegramConfig struct {
	ID       string `json:"id" validate:"required"`
	BotToken string `json:"bot_token" validate:"required,telegram_bot_token"`
	ChatID   int64  `json:"chat_id" validate:"required"`
}

// NotifyAPIConfig 알림 발송을 위한 REST API 서버 및 웹서버 설정 구조체
type NotifyAPIConfig struct {
	WS           WSConfig            `json:"ws"`
	CORS         CORSConfig          `json:"cors"`
	Applications []ApplicationConfig `json:"applications" validate:"unique=ID"`
}

func (c *NotifyAPIConfig) validate(notifierIDs []string) error {
	if err := c.WS.validate(); err != nil {
		return err
	}

	if err := c.CORS.validate(); err != nil {
		return err
	}

	if err := checkUniqueField(c.Applications, "ID", "Application"); err != nil {
		return err
	}

	for _, app := range c.Applications {
		if app.DefaultNotifierID != "" && !slices.Contains(notifierIDs, app.DefaultNotifierID) {
			return apperrors.New(apperrors.NotFound, fmt.Sprintf("Application['%s']에서 참조하는 기본 NotifierID('%s')가 정의되지 않았습니다", app.ID, app.DefaultNotifierID))
		}

		if strings.TrimSpace(app.AppKey) == "" {
			return apperrors.New(apperrors.InvalidInput, fmt.Sprintf("Application['%s']의 API 키(APP_KEY)가 설정되지 않았습니다", app.ID))
		}
	}

	return nil
}

func (c *NotifyAPIConfig) VerifyRecommendations() []string {
	return c.WS.VerifyRecommendations()
}

// WSConfig 웹서버의 포트 및 TLS(HTTPS) 보안 설정을 정의하는 구조체
type WSConfig struct {
	TLSServer   bool   `json:"tls_server"`
	TLSCertFile string `json:"tls_cert_file" validate:"required_if=TLSServer true,omitempty,file"`
	TLSKeyFile  string `json:"tls_key_file" validate:"required_if=TLSServer true,omitempty,file"`
	ListenPort  int    `json:"listen_port" validate:"min=1,max=65535"`
}

func (c *WSConfig) validate() error {
	return checkStruct(validate, c, "NotifyAPI.WS")
}

func (c *WSConfig) VerifyRecommendations() []string {
	var warnings []string

	// 시스템 예약 포트(1024 미만) 사용 경고
	if c.ListenPort < 1024 {
		warnings = append(warnings, fmt.Sprintf("시스템 예약 포트(1-1023)를 사용하도록 설정되었습니다(port: %d). 이 경우 서버 구동 시 관리자 권한이 필요할 수 있습니다", c.ListenPort))
	}

	return warnings
}

// CORSConfig 웹 브라우저의 교차 출처 리소스 공유(CORS) 정책을 설정하는 구조체
type CORSConfig struct {
	AllowOrigins []string `json:"allow_origins" validate:"dive,cors_origin"`
}

func (c *CORSConfig) validate() error {
	if len(c.AllowOrigins) == 0 {
		return apperrors.New(apperrors.InvalidInput, "CORS 허용 도메인(allow_origins) 목록이 비어있습니다")
	}

	for _, origin := range c.AllowOrigins {
		if origin == "*" && len(c.AllowOrigins) > 1 {
			return apperrors.New(apperrors.InvalidInput, "와일드카드(*)는 다른 도메인과 함께 사용할 수 없습니다. 모든 도메인을 허용하려면 와일드카드만 설정하세요")
		}
	}

	return checkStruct(validate, c, "NotifyAPI.CORS")
}

// ApplicationConfig 알림 API를 사용할 수 있는 클라이언트 어플리케이션의 인증 정보를 정의하는 구조체
type ApplicationConfig struct {
	ID                string `json:"id"`
	Title             string `json:"title"`
	Description       string `json:"description"`
	DefaultNotifierID string `json:"default_notifier_id"`
	AppKey            string `json:"app_key"`
}
