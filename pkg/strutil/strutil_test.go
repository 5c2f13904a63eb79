package strutil

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// NormalizeSpaces
// =============================================================================

// TestNormalizeSpaces 공백 정규화 동작을 검증합니다.
func TestNormalizeSpaces(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "hello world", NormalizeSpaces("  hello   world  "))
	assert.Equal(t, "", NormalizeSpaces("   "))
	assert.Equal(t, "a b c", NormalizeSpaces("a\tb\nc"))
}

// =============================================================================
// ChunkString
// =============================================================================

// TestChunkString 조각 수, 각 조각 길이, 원본 복원 가능성을 검증합니다.
func TestChunkString(t *testing.T) {
	t.Parallel()

	t.Run("빈 문자열은 조각 없음", func(t *testing.T) {
		t.Parallel()
		assert.Empty(t, ChunkString("", 10))
	})

	t.Run("크기 이하의 문자열은 단일 조각", func(t *testing.T) {
		t.Parallel()

		chunks := ChunkString("hello", 10)
		require.Len(t, chunks, 1)
		assert.Equal(t, "hello", chunks[0])
	})

	t.Run("정확히 나누어 떨어지는 경우", func(t *testing.T) {
		t.Parallel()

		chunks := ChunkString(strings.Repeat("a", 40), 10)
		require.Len(t, chunks, 4)
		for _, c := range chunks {
			assert.Len(t, c, 10)
		}
	})

	t.Run("나머지가 있는 경우 마지막 조각만 짧음", func(t *testing.T) {
		t.Parallel()

		// 5000자 -> 2000 + 2000 + 1000
		chunks := ChunkString(strings.Repeat("x", 5000), 2000)
		require.Len(t, chunks, 3)
		assert.Len(t, chunks[0], 2000)
		assert.Len(t, chunks[1], 2000)
		assert.Len(t, chunks[2], 1000)
	})

	t.Run("이어붙이면 원본과 일치", func(t *testing.T) {
		t.Parallel()

		original := strings.Repeat("0123456789", 123) + "abc"
		chunks := ChunkString(original, 77)
		assert.Equal(t, original, strings.Join(chunks, ""))
	})

	t.Run("멀티바이트 문자는 경계에서 잘리지 않음", func(t *testing.T) {
		t.Parallel()

		original := strings.Repeat("한글메시지", 100) // 500 runes
		chunks := ChunkString(original, 33)
		assert.Equal(t, original, strings.Join(chunks, ""))
		for _, c := range chunks {
			assert.True(t, len([]rune(c)) <= 33)
			assert.True(t, strings.ToValidUTF8(c, "?") == c, "조각은 유효한 UTF-8이어야 함")
		}
	})

	t.Run("size 0 이하는 전체를 단일 조각으로", func(t *testing.T) {
		t.Parallel()

		chunks := ChunkString("abc", 0)
		require.Len(t, chunks, 1)
		assert.Equal(t, "abc", chunks[0])
	})
}
