package fetcher

import (
	"net/http"
	"net/url"
	"slices"
	"strings"
)

var (
	// sensitiveExactKeys 전체 문자열이 정확히 일치해야 마스킹되는 쿼리 파라미터 키워드 목록입니다.
	//
	// "key", "token"과 같은 일반적인 단어를 부분 일치로 검사하면 "monkey", "broken" 같은
	// 무해한 단어까지 마스킹되는 오탐이 발생할 수 있으므로 전체 일치만 처리합니다.
	sensitiveExactKeys = []string{
		"token", "auth", "key", "secret", "pass", "credential", "signature", "password", "passwd",
		"access_token", "api_key", "client_secret", "refresh_token",
		"access_key", "secret_key", "private_key", "app_key", "auth_key",
	}

	// sensitiveSuffixes 특정 접미사로 끝나야 마스킹되는 쿼리 파라미터 키워드 목록입니다.
	sensitiveSuffixes = []string{
		"_token", "_secret", "_cred", "_sig", "_password", "_passwd",
	}
)

// redactHeaders HTTP 응답 헤더에서 민감한 정보를 마스킹하여 안전한 복사본을 반환합니다.
// 원본 헤더는 변경하지 않습니다.
func redactHeaders(h http.Header) http.Header {
	if h == nil {
		return nil
	}

	masked := h.Clone()

	for _, key := range []string{"Authorization", "Proxy-Authorization", "Cookie", "Set-Cookie"} {
		if masked.Get(key) != "" {
			masked.Set(key, "***")
		}
	}

	return masked
}

// redactURL URL에서 민감한 정보(인증 정보, 민감 쿼리 파라미터 값)를 마스킹하여 안전한 문자열로 반환합니다.
//
// 웹훅 URL처럼 경로나 쿼리에 토큰이 포함되는 주소를 로그나 에러 메시지에
// 기록할 때 사용합니다. 원본 URL 객체는 변경되지 않습니다.
func redactURL(u *url.URL) string {
	if u == nil {
		return ""
	}

	ru := *u

	if u.User != nil {
		if _, has := u.User.Password(); has {
			ru.User = url.UserPassword(u.User.Username(), "xxxxx")
		} else if u.User.Username() != "" {
			// 비밀번호 없이 사용자명만 있는 경우, 사용자명을 토큰으로 간주하여 마스킹
			ru.User = url.User("xxxxx")
		}
	}

	if u.RawQuery != "" {
		query := ru.Query()
		for key := range query {
			if isSensitiveKey(key) {
				query.Set(key, "xxxxx")
			}
		}

		ru.RawQuery = query.Encode()
	}

	return ru.String()
}

// isSensitiveKey 주어진 키가 민감한 정보를 나타내는 키워드인지 확인합니다.
func isSensitiveKey(key string) bool {
	lowerKey := strings.ToLower(key)

	if slices.Contains(sensitiveExactKeys, lowerKey) {
		return true
	}

	for _, suffix := range sensitiveSuffixes {
		if strings.HasSuffix(lowerKey, suffix) {
			return true
		}
	}

	return false
}
