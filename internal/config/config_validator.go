package config

import (
	"fmt"
	"reflect"
	"regexp"
	"strings"

	apperrors "github.com/darkkaiser/catalog-notifier/internal/pkg/errors"
	"github.com/darkkaiser/catalog-notifier/pkg/validation"
	"github.com/go-playground/validator/v10"
)

// validate 패키지 전역에서 공유하는 Validator 인스턴스
var validate = newValidator()

var (
	// 텔레그램 봇 토큰 검증을 위한 정규식 (예: 123456:ABC-DEF1234ghIkl-zyx57W2v1u123ew11)
	telegramBotTokenRegex = regexp.MustCompile(`^\d{3,20}:[a-zA-Z0-9_-]{30,50}$`)
)

// newValidator 새로운 Validator 인스턴스를 생성하고 커스텀 유효성 검사 함수를 등록합니다.
func newValidator() *validator.Validate {
	v := validator.New()

	// 검증 에러 메시지에 Go 구조체 필드명 대신 JSON 이름(예: default_notifier_id)을 보여주도록 설정한다.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	// 커스텀 유효성 검사 함수 등록
	register := func(tag string, fn validator.Func) {
		if err := v.RegisterValidation(tag, fn); err != nil {
			panic(fmt.Sprintf("초기화 치명적 오류: '%s' 커스텀 유효성 검사 함수 등록에 실패했습니다: %v", tag, err))
		}
	}

	register("cors_origin", validateCORSOrigin)
	register("telegram_bot_token", validateTelegramBotToken)
	register("http_url", validateHTTPURL)
	register("store_hostname", validateStoreHostname)

	return v
}

// validateCORSOrigin validator 라이브러리의 검증 인터페이스를 pkg/validation의 도메인 로직과 연결하는 어댑터입니다.
func validateCORSOrigin(fl validator.FieldLevel) bool {
	return validation.ValidateCORSOrigin(fl.Field().String()) == nil
}

// validateTelegramBotToken 입력된 문자열이 유효한 텔레그램 봇 토큰 형식인지 검증합니다.
func validateTelegramBotToken(fl validator.FieldLevel) bool {
	return telegramBotTokenRegex.MatchString(fl.Field().String())
}

// validateHTTPURL 입력된 문자열이 유효한 HTTP/HTTPS URL인지 검증합니다.
func validateHTTPURL(fl validator.FieldLevel) bool {
	return validation.ValidateURL(fl.Field().String()) == nil
}

// validateStoreHostname 입력된 문자열이 유효한 호스트명(스토어 도메인)인지 검증합니다.
func validateStoreHostname(fl validator.FieldLevel) bool {
	return validation.ValidateHostname(fl.Field().String()) == nil
}

// checkStruct 구조체 인스턴스의 유효성을 태그 규칙에 따라 검증하고,
// 발생한 오류를 사용자 친화적인 도메인 에러로 변환합니다.
func checkStruct(v *validator.Validate, s interface{}, contextName string) error {
	err := v.Struct(s)
	if err == nil {
		return nil
	}

	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return apperrors.Wrap(err, apperrors.InvalidInput, fmt.Sprintf("%s 유효성 검증에 실패했습니다", contextName))
	}

	// 첫 번째 에러만 상세히 보고
	firstErr := validationErrors[0]

	// 필드별(Field) 커스텀 에러 처리
	switch firstErr.StructField() {
	case "MaxRetries":
		return apperrors.New(apperrors.InvalidInput, fmt.Sprintf("HTTP 최대 재시도 횟수(max_retries)는 0에서 10 사이의 값이어야 합니다: '%v'", firstErr.Value()))
	case "ListenPort":
		return apperrors.New(apperrors.InvalidInput, "웹 서비스 포트(listen_port)는 1에서 65535 사이의 값이어야 합니다")
	case "TLSCertFile":
		switch firstErr.Tag() {
		case "required_if":
			return apperrors.New(apperrors.InvalidInput, "TLS 서버 활성화 시 TLS 인증서 파일 경로(tls_cert_file)는 필수입니다")
		case "file":
			return apperrors.New(apperrors.InvalidInput, fmt.Sprintf("지정된 TLS 인증서 파일(tls_cert_file)을 찾을 수 없습니다: '%v'", firstErr.Value()))
		default:
			return apperrors.New(apperrors.InvalidInput, "TLS 인증서 파일 경로(tls_cert_file) 설정이 올바르지 않습니다")
		}
	case "TLSKeyFile":
		switch firstErr.Tag() {
		case "required_if":
			return apperrors.New(apperrors.InvalidInput, "TLS 서버 활성화 시 TLS 키 파일 경로(tls_key_file)는 필수입니다")
		case "file":
			return apperrors.New(apperrors.InvalidInput, fmt.Sprintf("지정된 TLS 키 파일(tls_key_file)을 찾을 수 없습니다: '%v'", firstErr.Value()))
		default:
			return apperrors.New(apperrors.InvalidInput, "TLS 키 파일 경로(tls_key_file) 설정이 올바르지 않습니다")
		}
	}

	// 태그별(Tag) 커스텀 에러 처리 (범용)
	switch firstErr.Tag() {
	case "required":
		return apperrors.New(apperrors.InvalidInput, fmt.Sprintf("%s의 필수 항목(%s)이 설정되지 않았습니다", contextName, firstErr.Field()))

	case "unique":
		target := firstErr.Field()
		switch target {
		case "sources":
			target = "소스(Source)"
		case "webhooks", "telegrams":
			target = "알림 채널"
		case "applications":
			target = "애플리케이션(Application)"
		}

		// 전체 슬라이스 덤프 방지를 위해 메시지를 통일한다.
		return apperrors.New(apperrors.InvalidInput, fmt.Sprintf("%s 내에 중복된 %s ID가 존재합니다 (설정 값을 확인해주세요)", contextName, target))

	case "cors_origin":
		return apperrors.New(apperrors.InvalidInput, fmt.Sprintf("CORS Origin 형식이 올바르지 않습니다: '%v' (형식: Scheme://Host[:Port], 예: https://example.com)", firstErr.Value()))

	case "telegram_bot_token":
		return apperrors.New(apperrors.InvalidInput, "텔레그램 BotToken 형식이 올바르지 않습니다 (올바른 형식: 123456:ABC-DEF...)")

	case "http_url":
		return apperrors.New(apperrors.InvalidInput, fmt.Sprintf("%s의 URL(%s) 형식이 올바르지 않습니다: '%v' (http/https URL이어야 합니다)", contextName, firstErr.Field(), firstErr.Value()))

	case "store_hostname":
		return apperrors.New(apperrors.InvalidInput, fmt.Sprintf("%s의 도메인(%s) 형식이 올바르지 않습니다: '%v' (예: shop.example.com)", contextName, firstErr.Field(), firstErr.Value()))

	case "oneof":
		return apperrors.New(apperrors.InvalidInput, fmt.Sprintf("%s의 %s 값이 허용 범위를 벗어났습니다: '%v' (허용: %s)", contextName, firstErr.Field(), firstErr.Value(), firstErr.Param()))
	}

	return apperrors.New(apperrors.InvalidInput, fmt.Sprintf("%s의 설정이 올바르지 않습니다: %s (조건: %s)", contextName, firstErr.Field(), firstErr.Tag()))
}

// checkUniqueField 구조체 슬라이스에서 지정된 필드의 값이 중복되는지 검사합니다.
func checkUniqueField(slice interface{}, fieldName, kindName string) error {
	rv := reflect.ValueOf(slice)
	if rv.Kind() != reflect.Slice {
		return apperrors.New(apperrors.Internal, fmt.Sprintf("중복 검사 대상이 슬라이스가 아닙니다: %s", rv.Kind()))
	}

	seen := make(map[string]struct{}, rv.Len())
	for i := 0; i < rv.Len(); i++ {
		item := rv.Index(i)
		if item.Kind() == reflect.Ptr {
			item = item.Elem()
		}

		field := item.FieldByName(fieldName)
		if !field.IsValid() || field.Kind() != reflect.String {
			return apperrors.New(apperrors.Internal, fmt.Sprintf("중복 검사 필드(%s)를 찾을 수 없습니다", fieldName))
		}

		value := field.String()
		if _, exists := seen[value]; exists {
			return apperrors.New(apperrors.Conflict, fmt.Sprintf("중복된 %s ID('%s')가 존재합니다", kindName, value))
		}
		seen[value] = struct{}{}
	}

	return nil
}
