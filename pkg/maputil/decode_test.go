package maputil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sampleSettings struct {
	Selector string        `json:"selector"`
	Limit    int           `json:"limit"`
	Wait     time.Duration `json:"wait"`
}

// TestDecode 맵 데이터가 구조체로 올바르게 변환되는지 검증합니다.
func TestDecode(t *testing.T) {
	t.Parallel()

	t.Run("기본 디코딩", func(t *testing.T) {
		t.Parallel()

		input := map[string]interface{}{
			"selector": "div.product",
			"limit":    10,
		}

		result, err := Decode[sampleSettings](input)
		require.NoError(t, err)
		assert.Equal(t, "div.product", result.Selector)
		assert.Equal(t, 10, result.Limit)
	})

	t.Run("약한 타입 변환", func(t *testing.T) {
		t.Parallel()

		input := map[string]interface{}{
			"limit": "42", // 문자열 -> int
		}

		result, err := Decode[sampleSettings](input)
		require.NoError(t, err)
		assert.Equal(t, 42, result.Limit)
	})

	t.Run("Duration 문자열 변환", func(t *testing.T) {
		t.Parallel()

		input := map[string]interface{}{
			"wait": "3s",
		}

		result, err := Decode[sampleSettings](input)
		require.NoError(t, err)
		assert.Equal(t, 3*time.Second, result.Wait)
	})

	t.Run("정의되지 않은 필드는 무시", func(t *testing.T) {
		t.Parallel()

		input := map[string]interface{}{
			"selector": "a",
			"unknown":  true,
		}

		result, err := Decode[sampleSettings](input)
		require.NoError(t, err)
		assert.Equal(t, "a", result.Selector)
	})

	t.Run("nil output 포인터 거부", func(t *testing.T) {
		t.Parallel()

		var out *sampleSettings
		err := DecodeTo[sampleSettings](map[string]interface{}{}, out)
		assert.Error(t, err)
	})
}
