// Package webhook 웹훅 엔드포인트로 알림 메시지를 발송하는 Notifier 구현체입니다.
package webhook

import (
	"context"
	"net/http"
	"time"

	"github.com/darkkaiser/catalog-notifier/internal/service/contract"
	"github.com/darkkaiser/catalog-notifier/internal/service/notification/notifier"
	applog "github.com/darkkaiser/catalog-notifier/pkg/log"
	"golang.org/x/time/rate"
)

const component = "notification.webhook"

const (
	// maxMessageLength 웹훅 요청 하나에 담을 수 있는 메시지의 최대 길이.
	// 이 길이를 초과하는 메시지는 순서를 유지한 채 여러 요청으로 분할 발송됩니다.
	maxMessageLength = 2000

	// defaultRequestTimeout 웹훅 요청의 제한 시간
	defaultRequestTimeout = 10 * time.Second

	// shutdownTimeout 종료 시 큐에 남은 메시지를 발송하기 위해 기다려줄 최대 시간
	shutdownTimeout = 30 * time.Second
)

// webhookNotifier 웹훅 엔드포인트로 메시지를 발송하는 Notifier입니다.
type webhookNotifier struct {
	*notifier.Base

	url string

	client *http.Client

	// limiter 웹훅 엔드포인트의 요청 제한 정책을 준수하기 위한 속도 제한기
	limiter *rate.Limiter
}

var _ notifier.Notifier = (*webhookNotifier)(nil)

// New 웹훅 Notifier를 생성합니다.
func New(id contract.NotifierID, url string) notifier.Notifier {
	return &webhookNotifier{
		Base: notifier.NewBase(id, false, notifier.DefaultQueueSize, notifier.DefaultEnqueueTimeout),

		url: url,

		client: &http.Client{
			Timeout: defaultRequestTimeout,
		},

		// 초당 2회, 순간 최대 5회까지 허용
		limiter: rate.NewLimiter(rate.Every(500*time.Millisecond), 5),
	}
}

// Run 큐에 등록된 알림을 순차적으로 발송하는 루프를 실행합니다.
// 종료 신호를 받으면 큐에 남은 알림을 최대한 발송한 후 반환합니다.
func (n *webhookNotifier) Run(serviceStopCtx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			applog.WithComponentAndFields(component, applog.Fields{
				"notifier_id": n.ID(),
				"panic":       r,
			}).Error("발송 고루틴에서 패닉이 발생하여 Notifier를 종료합니다")

			// 발송 고루틴이 죽은 상태로 방치하면 큐만 쌓이는 Silent Failure가 되므로
			// 명시적으로 종료 상태로 전환합니다.
			n.Close()
		}
	}()

	for {
		select {
		case req := <-n.NotificationC():
			n.sendNotification(req.Ctx, req.Notification)

		case <-serviceStopCtx.Done():

		case <-n.Done():
		}

		if serviceStopCtx.Err() != nil || n.IsClosed() {
			n.drainRemainingNotifications()
			return
		}
	}
}

// sendNotification 알림 메시지를 웹훅 요청 단위로 분할하여 순서대로 발송합니다.
//
// 개별 요청의 발송 실패는 로그로 기록만 하고 나머지 요청의 발송은 계속
// 진행합니다. 하나의 긴 메시지 일부만 전달되더라도 아무것도 전달되지 않는
// 것보다 낫기 때문입니다.
func (n *webhookNotifier) sendNotification(ctx context.Context, notification contract.Notification) {
	if ctx == nil || ctx.Err() != nil {
		ctx = context.Background()
	}

	chunks := splitMessage(buildMessage(notification))

	for i, chunk := range chunks {
		if err := n.limiter.Wait(ctx); err != nil {
			applog.WithComponentAndFields(component, applog.Fields{
				"notifier_id": n.ID(),
			}).WithError(err).Warn("웹훅 요청 속도 제한 대기가 중단되었습니다")
		}

		if err := n.post(ctx, chunk); err != nil {
			applog.WithComponentAndFields(component, applog.Fields{
				"notifier_id": n.ID(),
				"chunk":       i + 1,
				"chunk_total": len(chunks),
			}).WithError(err).Error("웹훅 메시지 발송이 실패하였습니다")

			continue
		}
	}
}

// drainRemainingNotifications 종료 직전에 큐에 남아있는 알림을 최대한 발송합니다.
func (n *webhookNotifier) drainRemainingNotifications() {
	drainCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	// 이미 Send에 진입한 고루틴들이 큐에 메시지를 넣을 기회를 보장
	n.WaitForPendingSends()

	for {
		if drainCtx.Err() != nil {
			applog.WithComponentAndFields(component, applog.Fields{
				"notifier_id":         n.ID(),
				"remaining_in_buffer": len(n.NotificationC()),
			}).Warn("종료 대기 시간이 초과되어 잔여 메시지를 폐기합니다")

			return
		}

		select {
		case req := <-n.NotificationC():
			n.sendNotification(drainCtx, req.Notification)

		default:
			return
		}
	}
}
