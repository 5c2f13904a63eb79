package webhook

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/darkkaiser/catalog-notifier/internal/service/contract"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

// recordingServer 수신한 웹훅 요청의 content를 순서대로 기록하는 테스트 서버를 생성합니다.
// failAt에 지정된 순번(1부터 시작)의 요청은 서버 에러로 응답합니다.
func recordingServer(t *testing.T, failAt int) (*httptest.Server, func() []string) {
	t.Helper()

	var mu sync.Mutex
	var contents []string
	var requestSeq int

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)

		var p payload
		require.NoError(t, json.Unmarshal(body, &p))

		mu.Lock()
		requestSeq++
		seq := requestSeq
		contents = append(contents, p.Content)
		mu.Unlock()

		if seq == failAt {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	t.Cleanup(server.Close)

	received := func() []string {
		mu.Lock()
		defer mu.Unlock()
		return append([]string(nil), contents...)
	}

	return server, received
}

// newTestNotifier 속도 제한이 테스트를 지연시키지 않도록 제한을 해제한 Notifier를 생성합니다.
func newTestNotifier(url string) *webhookNotifier {
	n := New("discord-main", url).(*webhookNotifier)
	n.limiter = rate.NewLimiter(rate.Inf, 0)
	return n
}

func TestSendNotification_LongMessageChunking(t *testing.T) {
	t.Parallel()

	server, received := recordingServer(t, 0)
	n := newTestNotifier(server.URL)

	// 5000자 메시지는 2000/2000/1000자의 요청 3건으로 분할 발송되어야 함
	message := strings.Repeat("가", 5000)
	n.sendNotification(context.Background(), contract.NewNotification(message))

	contents := received()
	require.Len(t, contents, 3)
	assert.Equal(t, 2000, len([]rune(contents[0])))
	assert.Equal(t, 2000, len([]rune(contents[1])))
	assert.Equal(t, 1000, len([]rune(contents[2])))

	// 조각을 순서대로 이어붙이면 원본 메시지가 복원되어야 함
	assert.Equal(t, message, strings.Join(contents, ""))
}

func TestSendNotification_PartialFailureContinues(t *testing.T) {
	t.Parallel()

	// 두 번째 요청만 실패하는 서버
	server, received := recordingServer(t, 2)
	n := newTestNotifier(server.URL)

	message := strings.Repeat("a", 4500)
	n.sendNotification(context.Background(), contract.NewNotification(message))

	// 실패한 요청 이후의 조각도 계속 발송되어야 함
	assert.Len(t, received(), 3)
}

func TestSendNotification_TitleAndErrorMark(t *testing.T) {
	t.Parallel()

	server, received := recordingServer(t, 0)
	n := newTestNotifier(server.URL)

	n.sendNotification(context.Background(), contract.Notification{
		Title:         "스토어 A",
		Message:       "수집이 실패하였습니다",
		ErrorOccurred: true,
	})

	contents := received()
	require.Len(t, contents, 1)
	assert.Contains(t, contents[0], "🚨")
	assert.Contains(t, contents[0], "[스토어 A]")
	assert.Contains(t, contents[0], "수집이 실패하였습니다")
}

func TestSplitMessage(t *testing.T) {
	t.Parallel()

	assert.Len(t, splitMessage("short"), 1)
	assert.Len(t, splitMessage(strings.Repeat("x", 2000)), 1)
	assert.Len(t, splitMessage(strings.Repeat("x", 2001)), 2)
}

func TestRunLifecycle(t *testing.T) {
	t.Parallel()

	server, received := recordingServer(t, 0)
	n := newTestNotifier(server.URL)

	serviceStopCtx, cancel := context.WithCancel(context.Background())

	runDone := make(chan struct{})
	go func() {
		defer close(runDone)
		n.Run(serviceStopCtx)
	}()

	require.NoError(t, n.Send(context.Background(), contract.NewNotification("첫 번째 알림")))
	require.NoError(t, n.Send(context.Background(), contract.NewNotification("두 번째 알림")))

	require.Eventually(t, func() bool {
		return len(received()) == 2
	}, 3*time.Second, 10*time.Millisecond)

	cancel()

	select {
	case <-runDone:
	case <-time.After(3 * time.Second):
		t.Fatal("발송 루프가 종료 신호 이후에도 반환되지 않음")
	}
}

func TestRunDrainsQueueOnShutdown(t *testing.T) {
	t.Parallel()

	server, received := recordingServer(t, 0)
	n := newTestNotifier(server.URL)

	// 발송 루프 시작 전에 큐에 적재된 메시지도 종료 시 Drain 과정에서 발송되어야 함
	require.NoError(t, n.Send(context.Background(), contract.NewNotification("종료 전 알림")))

	serviceStopCtx, cancel := context.WithCancel(context.Background())
	cancel()

	runDone := make(chan struct{})
	go func() {
		defer close(runDone)
		n.Run(serviceStopCtx)
	}()

	select {
	case <-runDone:
	case <-time.After(3 * time.Second):
		t.Fatal("발송 루프가 반환되지 않음")
	}

	assert.Len(t, received(), 1)
}

func TestSendAfterClose(t *testing.T) {
	t.Parallel()

	server, _ := recordingServer(t, 0)
	n := newTestNotifier(server.URL)

	n.Close()

	err := n.Send(context.Background(), contract.NewNotification("종료 후 알림"))
	assert.Error(t, err)
}

func TestSendRejectsEmptyMessage(t *testing.T) {
	t.Parallel()

	server, _ := recordingServer(t, 0)
	n := newTestNotifier(server.URL)

	err := n.Send(context.Background(), contract.NewNotification("   "))
	assert.ErrorIs(t, err, contract.ErrMessageRequired)
}
