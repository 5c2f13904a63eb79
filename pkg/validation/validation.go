// Package validation 설정값 검증을 위한 도메인 독립적인 유틸리티 함수들을 제공합니다.
package validation

import (
	"fmt"
	"net"
	"net/url"
	"strings"
)

// ValidatePort 포트 번호가 유효한 범위(1-65535) 내에 있는지 검증합니다.
func ValidatePort(port int) error {
	if port < 1 || port > 65535 {
		return fmt.Errorf("유효한 포트 범위(1-65535)가 아닙니다 (port=%d)", port)
	}
	return nil
}

// ValidateURL 주어진 문자열이 유효한 HTTP/HTTPS URL인지 검증합니다.
func ValidateURL(urlStr string) error {
	trimmed := strings.TrimSpace(urlStr)
	if trimmed == "" {
		return fmt.Errorf("URL은 비어있을 수 없습니다")
	}

	parsedURL, err := url.Parse(trimmed)
	if err != nil {
		return fmt.Errorf("URL 파싱 실패(url=%q): %w", trimmed, err)
	}

	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return fmt.Errorf("URL 스키마는 'http' 또는 'https'만 허용됩니다 (url=%q)", trimmed)
	}

	if parsedURL.Host == "" {
		return fmt.Errorf("URL에 호스트 정보가 누락되었습니다 (url=%q)", trimmed)
	}

	return nil
}

// ValidateHostname 호스트명이 RFC 1123 표준을 준수하는지, 또는 IP 주소/로컬호스트인지 검증합니다.
//
// 규칙:
//   - localhost 허용
//   - 유효한 IPv4 및 IPv6 주소 허용
//   - 도메인명은 RFC 1123 규칙을 따름 (최대 253자, 레이블당 63자, 영문/숫자/하이픈)
func ValidateHostname(host string) error {
	if host == "localhost" {
		return nil
	}

	if ip := net.ParseIP(host); ip != nil {
		return nil
	}

	if len(host) > 253 {
		return fmt.Errorf("호스트명 전체 길이는 253자를 초과할 수 없습니다 (len=%d)", len(host))
	}

	labels := strings.Split(host, ".")
	for _, label := range labels {
		if len(label) == 0 {
			return fmt.Errorf("호스트명에 빈 레이블(연속된 점 등)이 포함되어 있습니다 (host=%q)", host)
		}
		if len(label) > 63 {
			return fmt.Errorf("각 레이블은 63자를 초과할 수 없습니다 (label=%q)", label)
		}

		// 시작과 끝 문자는 하이픈이 아니어야 함
		if label[0] == '-' || label[len(label)-1] == '-' {
			return fmt.Errorf("레이블은 하이픈(-)으로 시작하거나 끝날 수 없습니다 (label=%q)", label)
		}

		for _, r := range label {
			isValidChar := (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '-'
			if !isValidChar {
				return fmt.Errorf("호스트명은 영문, 숫자, 하이픈(-)으로만 구성되어야 합니다 (invalid_char=%q, host=%q)", r, host)
			}
		}
	}

	// RFC 1123에 따라 TLD(마지막 레이블)는 숫자로만 구성될 수 없다.
	lastLabel := labels[len(labels)-1]
	isAllNumeric := true
	for _, r := range lastLabel {
		if r < '0' || r > '9' {
			isAllNumeric = false
			break
		}
	}
	if isAllNumeric {
		return fmt.Errorf("최상위 도메인(TLD)은 숫자로만 구성될 수 없습니다 (tld=%q)", lastLabel)
	}

	return nil
}
