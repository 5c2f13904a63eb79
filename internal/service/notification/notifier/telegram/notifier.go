// Package telegram 텔레그램 봇을 통해 알림 메시지를 발송하는 Notifier 구현체입니다.
package telegram

import (
	"context"
	"fmt"
	"html/template"
	"time"

	"github.com/darkkaiser/catalog-notifier/internal/pkg/mark"
	"github.com/darkkaiser/catalog-notifier/internal/service/contract"
	"github.com/darkkaiser/catalog-notifier/internal/service/notification/notifier"
	applog "github.com/darkkaiser/catalog-notifier/pkg/log"
	"github.com/darkkaiser/catalog-notifier/pkg/strutil"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"golang.org/x/time/rate"
)

const component = "notification.telegram"

const (
	// messageMaxLength 텔레그램 메시지 하나에 담을 수 있는 최대 문자 길이.
	// 공식 제한은 4096자이지만 HTML 태그 오버헤드를 고려하여 안전 마진을 둡니다.
	messageMaxLength = 3900

	// shutdownTimeout 종료 시 큐에 남은 메시지를 발송하기 위해 기다려줄 최대 시간
	shutdownTimeout = 60 * time.Second
)

// client 텔레그램 봇 API와의 통신을 추상화한 인터페이스입니다.
type client interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// telegramNotifier 텔레그램 채팅방으로 메시지를 발송하는 Notifier입니다.
type telegramNotifier struct {
	*notifier.Base

	// chatID 메시지를 전송할 텔레그램 채팅방의 고유 식별자
	chatID int64

	client client

	// limiter 텔레그램 API 정책(채팅방당 초당 1회)을 준수하기 위한 속도 제한기
	limiter *rate.Limiter
}

var _ notifier.Notifier = (*telegramNotifier)(nil)

// New 텔레그램 Notifier를 생성합니다. 봇 토큰 인증에 실패하면 에러를 반환합니다.
func New(id contract.NotifierID, botToken string, chatID int64) (notifier.Notifier, error) {
	bot, err := tgbotapi.NewBotAPI(botToken)
	if err != nil {
		return nil, err
	}

	return newWithClient(id, bot, chatID), nil
}

func newWithClient(id contract.NotifierID, c client, chatID int64) *telegramNotifier {
	return &telegramNotifier{
		Base: notifier.NewBase(id, true, notifier.DefaultQueueSize, notifier.DefaultEnqueueTimeout),

		chatID: chatID,

		client: c,

		limiter: rate.NewLimiter(rate.Every(time.Second), 1),
	}
}

// Run 큐에 등록된 알림을 순차적으로 발송하는 루프를 실행합니다.
func (n *telegramNotifier) Run(serviceStopCtx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			applog.WithComponentAndFields(component, applog.Fields{
				"notifier_id": n.ID(),
				"chat_id":     n.chatID,
				"panic":       r,
			}).Error("발송 고루틴에서 패닉이 발생하여 Notifier를 종료합니다")

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

// sendNotification 알림 메시지를 텔레그램 메시지 단위로 분할하여 순서대로 발송합니다.
// 개별 메시지의 발송 실패는 로그로 기록만 하고 나머지 발송은 계속 진행합니다.
func (n *telegramNotifier) sendNotification(ctx context.Context, notification contract.Notification) {
	if ctx == nil || ctx.Err() != nil {
		ctx = context.Background()
	}

	chunks := splitMessage(buildMessage(notification))

	for i, chunk := range chunks {
		if err := n.limiter.Wait(ctx); err != nil {
			applog.WithComponentAndFields(component, applog.Fields{
				"notifier_id": n.ID(),
			}).WithError(err).Warn("텔레그램 API 속도 제한 대기가 중단되었습니다")
		}

		msg := tgbotapi.NewMessage(n.chatID, chunk)
		msg.ParseMode = tgbotapi.ModeHTML
		msg.DisableWebPagePreview = true

		if _, err := n.client.Send(msg); err != nil {
			applog.WithComponentAndFields(component, applog.Fields{
				"notifier_id": n.ID(),
				"chat_id":     n.chatID,
				"chunk":       i + 1,
				"chunk_total": len(chunks),
			}).WithError(err).Error("텔레그램 메시지 발송이 실패하였습니다")

			continue
		}
	}
}

// drainRemainingNotifications 종료 직전에 큐에 남아있는 알림을 최대한 발송합니다.
func (n *telegramNotifier) drainRemainingNotifications() {
	drainCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

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

// buildMessage 알림의 제목과 오류 여부를 반영한 HTML 형식의 발송용 메시지를 생성합니다.
// 본문은 평문으로 취급되므로 HTML 파싱 오류로 발송이 거부되지 않도록 전체를 이스케이프하고,
// 이 Notifier가 직접 추가하는 제목 강조 태그만 HTML로 전달합니다.
func buildMessage(notification contract.Notification) string {
	message := template.HTMLEscapeString(notification.Message)

	if notification.Title != "" {
		message = fmt.Sprintf("<b>[%s]</b>\n%s", template.HTMLEscapeString(notification.Title), message)
	}
	if notification.ErrorOccurred {
		message = mark.Alert.WithSpace() + message
	}

	return message
}

// splitMessage 메시지를 텔레그램 메시지 하나에 담을 수 있는 길이로 분할합니다.
func splitMessage(message string) []string {
	return strutil.ChunkString(message, messageMaxLength)
}
