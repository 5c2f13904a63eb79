package validation

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// ValidateCORSOrigin 주어진 문자열이 유효한 CORS Origin 표준을 준수하는지 검증합니다.
//
// 'Scheme://Host[:Port]' 형식을 엄격하게 요구하며, 와일드카드('*')를 지원합니다.
//
// 제약 사항 (다음 요소 포함 시 유효하지 않음):
//   - 경로 (Path) 및 후행 슬래시 ('/')
//   - 쿼리 스트링 (Query String)
//   - URL 프래그먼트/해시 (Fragment)
func ValidateCORSOrigin(origin string) error {
	trimmedOrigin := strings.TrimSpace(origin)
	if trimmedOrigin == "*" {
		return nil
	}

	if trimmedOrigin == "" {
		return fmt.Errorf("CORS Origin은 비어있을 수 없습니다")
	}

	if strings.HasSuffix(trimmedOrigin, "/") {
		return fmt.Errorf("CORS Origin 포맷 오류: 경로 구분자('/')로 끝날 수 없습니다 (input=%q)", trimmedOrigin)
	}

	parsedURL, err := url.Parse(trimmedOrigin)
	if err != nil {
		return fmt.Errorf("CORS Origin 파싱 실패: 유효한 URL 형식이 아닙니다 (input=%q): %w", trimmedOrigin, err)
	}

	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return fmt.Errorf("CORS Origin 스키마 오류: 'http' 또는 'https'만 허용됩니다 (input=%q)", trimmedOrigin)
	}

	if parsedURL.Path != "" && parsedURL.Path != "/" {
		return fmt.Errorf("CORS Origin 포맷 오류: 경로(Path)를 포함할 수 없습니다 (input=%q)", trimmedOrigin)
	}

	if parsedURL.RawQuery != "" {
		return fmt.Errorf("CORS Origin 포맷 오류: 쿼리 파라미터를 포함할 수 없습니다 (input=%q)", trimmedOrigin)
	}

	if parsedURL.Fragment != "" {
		return fmt.Errorf("CORS Origin 포맷 오류: URL Fragment(#)를 포함할 수 없습니다 (input=%q)", trimmedOrigin)
	}

	if parsedURL.User != nil {
		return fmt.Errorf("CORS Origin 포맷 오류: 사용자 자격 증명(UserInfo)을 포함할 수 없습니다 (input=%q)", trimmedOrigin)
	}

	if portStr := parsedURL.Port(); portStr != "" {
		port, err := strconv.Atoi(portStr)
		if err != nil {
			return fmt.Errorf("CORS Origin 포트 오류: 포트 번호가 유효하지 않습니다 (input=%q, port=%s)", trimmedOrigin, portStr)
		}
		if err := ValidatePort(port); err != nil {
			return fmt.Errorf("CORS Origin 포트 오류: %w (input=%q)", err, trimmedOrigin)
		}
	}

	host := parsedURL.Hostname()
	if host == "" {
		return fmt.Errorf("CORS Origin 포맷 오류: 호스트(Host) 정보가 누락되었습니다 (input=%q)", trimmedOrigin)
	}
	if err := ValidateHostname(host); err != nil {
		return fmt.Errorf("CORS Origin 호스트 유효성 검증 실패: %w", err)
	}

	return nil
}
