package contract

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewNotification(t *testing.T) {
	t.Parallel()

	n := NewNotification("재고 변경 알림")

	assert.Equal(t, "재고 변경 알림", n.Message)
	assert.False(t, n.ErrorOccurred, "기본 알림은 오류 플래그가 설정되지 않아야 함")
	assert.Empty(t, n.NotifierID)
	assert.Empty(t, n.Title)
}

func TestNewErrorNotification(t *testing.T) {
	t.Parallel()

	n := NewErrorNotification("수집 실패")

	assert.Equal(t, "수집 실패", n.Message)
	assert.True(t, n.ErrorOccurred, "오류 알림은 ErrorOccurred가 true여야 함")
}

func TestNotificationValidate(t *testing.T) {
	t.Parallel()

	assert.NoError(t, NewNotification("ok").Validate())
	assert.ErrorIs(t, NewNotification("").Validate(), ErrMessageRequired)
	assert.ErrorIs(t, NewNotification("   \t\n").Validate(), ErrMessageRequired)
}
