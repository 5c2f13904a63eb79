package mark

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMark(t *testing.T) {
	t.Parallel()

	t.Run("String은 순수 이모지 값 반환", func(t *testing.T) {
		t.Parallel()

		assert.Equal(t, "🚨", Alert.String())
	})

	t.Run("WithSpace는 메시지 접두어 형태로 반환", func(t *testing.T) {
		t.Parallel()

		assert.Equal(t, "🚨 ", Alert.WithSpace())
		assert.Equal(t, "🚨 수집 실패", Alert.WithSpace()+"수집 실패")
	})

	t.Run("빈 마크는 공백 없이 빈 문자열 반환", func(t *testing.T) {
		t.Parallel()

		assert.Empty(t, Mark("").WithSpace())
	})
}
