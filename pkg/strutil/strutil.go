// Package strutil 문자열 처리를 위한 유틸리티 함수들을 제공합니다.
package strutil

import (
	"strings"
)

// NormalizeSpaces 문자열의 앞뒤 공백을 제거하고 연속된 공백을 하나로 축약합니다.
// 예: "  hello   world  " -> "hello world"
func NormalizeSpaces(s string) string {
	return strings.Join(strings.Fields(strings.TrimSpace(s)), " ")
}

// ChunkString 문자열을 최대 size 글자(rune) 단위의 연속된 조각으로 분할합니다.
//
// 분할 규칙:
//   - 각 조각은 원본에서 연속된 부분 문자열이며, 순서대로 이어붙이면 원본과 정확히 일치합니다.
//   - 마지막 조각을 제외한 모든 조각의 길이는 정확히 size입니다. (조각 수 = ceil(len/size))
//   - 멀티바이트 문자(UTF-8)가 조각 경계에서 잘리지 않도록 rune 단위로 분할합니다.
//   - 빈 문자열은 빈 슬라이스를 반환합니다.
//   - size가 0 이하이면 원본 전체를 단일 조각으로 반환합니다.
func ChunkString(s string, size int) []string {
	if s == "" {
		return nil
	}
	if size <= 0 {
		return []string{s}
	}

	runes := []rune(s)
	chunks := make([]string, 0, (len(runes)+size-1)/size)

	for start := 0; start < len(runes); start += size {
		end := start + size
		if end > len(runes) {
			end = len(runes)
		}
		chunks = append(chunks, string(runes[start:end]))
	}

	return chunks
}
