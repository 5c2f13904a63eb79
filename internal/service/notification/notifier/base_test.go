package notifier

import (
	"context"
	"testing"
	"time"

	"github.com/darkkaiser/catalog-notifier/internal/service/contract"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBaseSend(t *testing.T) {
	t.Parallel()

	t.Run("정상 등록", func(t *testing.T) {
		t.Parallel()

		b := NewBase("test", false, 1, time.Second)

		require.NoError(t, b.Send(context.Background(), contract.NewNotification("알림")))

		req := <-b.NotificationC()
		assert.Equal(t, "알림", req.Notification.Message)
	})

	t.Run("빈 메시지 거부", func(t *testing.T) {
		t.Parallel()

		b := NewBase("test", false, 1, time.Second)

		err := b.Send(context.Background(), contract.NewNotification(""))
		assert.ErrorIs(t, err, contract.ErrMessageRequired)
	})

	t.Run("큐가 가득 차면 타임아웃 후 거부", func(t *testing.T) {
		t.Parallel()

		b := NewBase("test", false, 1, 10*time.Millisecond)

		require.NoError(t, b.Send(context.Background(), contract.NewNotification("첫 번째")))

		err := b.Send(context.Background(), contract.NewNotification("두 번째"))
		assert.ErrorIs(t, err, ErrQueueFull)
	})

	t.Run("종료 후 거부", func(t *testing.T) {
		t.Parallel()

		b := NewBase("test", false, 1, time.Second)
		b.Close()

		err := b.Send(context.Background(), contract.NewNotification("알림"))
		assert.ErrorIs(t, err, ErrClosed)
	})

	t.Run("취소된 컨텍스트 거부", func(t *testing.T) {
		t.Parallel()

		b := NewBase("test", false, 1, time.Second)

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		err := b.Send(ctx, contract.NewNotification("알림"))
		assert.ErrorIs(t, err, context.Canceled)
	})

	t.Run("대기 중 종료되면 즉시 반환", func(t *testing.T) {
		t.Parallel()

		b := NewBase("test", false, 1, 3*time.Second)
		require.NoError(t, b.Send(context.Background(), contract.NewNotification("첫 번째")))

		errC := make(chan error, 1)
		go func() {
			errC <- b.Send(context.Background(), contract.NewNotification("두 번째"))
		}()

		time.Sleep(20 * time.Millisecond)
		b.Close()

		select {
		case err := <-errC:
			assert.ErrorIs(t, err, ErrClosed)
		case <-time.After(time.Second):
			t.Fatal("종료 신호 이후에도 Send가 반환되지 않음")
		}
	})
}

func TestBaseClose(t *testing.T) {
	t.Parallel()

	b := NewBase("test", true, 1, time.Second)

	assert.True(t, b.SupportsHTML())
	assert.Equal(t, contract.NotifierID("test"), b.ID())
	assert.False(t, b.IsClosed())

	b.Close()
	b.Close() // 중복 호출에도 안전해야 함

	assert.True(t, b.IsClosed())

	select {
	case <-b.Done():
	default:
		t.Fatal("Close 이후 Done 채널이 닫혀있어야 함")
	}
}
