package notifier

import (
	"context"
	"sync"
	"time"

	"github.com/darkkaiser/catalog-notifier/internal/service/contract"
	applog "github.com/darkkaiser/catalog-notifier/pkg/log"
)

// Request 내부 큐를 통해 발송 고루틴에게 전달되는 알림 발송 요청입니다.
//
// Go 관례상 context.Context를 구조체에 저장하는 것은 지양되지만,
// 채널을 통해 Context를 전달하기 위해 내부적으로만 사용하는 래퍼입니다.
type Request struct {
	Ctx          context.Context
	Notification contract.Notification
}

// Base 모든 Notifier 구현체가 임베딩하여 사용하는 공통 구조체입니다.
//
// 알림 요청을 큐에 넣고 관리하는 책임을 담당하며, 구체적인 구현체는
// 큐에서 꺼낸 요청을 외부 API로 발송하는 책임에만 집중합니다.
type Base struct {
	id contract.NotifierID

	supportsHTML bool

	// enqueueTimeout 큐가 가득 찼을 때 빈 공간을 기다려줄 최대 시간.
	// 이 시간이 지나면 시스템 보호를 위해 해당 요청은 드롭됩니다.
	enqueueTimeout time.Duration

	// notificationC 알림 발송 요청을 버퍼링하는 내부 큐.
	// 다중 생산자 환경에서의 패닉을 방지하기 위해 이 채널은 닫지 않습니다.
	notificationC chan *Request

	mu     sync.RWMutex
	closed bool

	// done 종료 신호를 모든 대기 고루틴에게 전파하는 채널
	done chan struct{}

	// pendingSendsWG 현재 큐 등록을 시도 중인 고루틴을 추적합니다.
	// 종료 시 발송 고루틴이 이 카운터가 0이 될 때까지 대기하여 메시지 유실을 방지합니다.
	pendingSendsWG sync.WaitGroup
}

// NewBase 새로운 Base 인스턴스를 생성합니다.
func NewBase(id contract.NotifierID, supportsHTML bool, queueSize int, enqueueTimeout time.Duration) *Base {
	if queueSize <= 0 {
		queueSize = DefaultQueueSize
	}
	if enqueueTimeout <= 0 {
		enqueueTimeout = DefaultEnqueueTimeout
	}

	return &Base{
		id: id,

		supportsHTML: supportsHTML,

		enqueueTimeout: enqueueTimeout,

		notificationC: make(chan *Request, queueSize),

		done: make(chan struct{}),
	}
}

// ID Notifier 인스턴스의 고유 식별자를 반환합니다.
func (b *Base) ID() contract.NotifierID {
	return b.id
}

// SupportsHTML 알림 채널이 HTML 스타일의 메시지 포맷팅을 지원하는지 여부를 반환합니다.
func (b *Base) SupportsHTML() bool {
	return b.supportsHTML
}

// Send 알림 발송 요청을 내부 큐에 등록합니다.
//
// 실제 발송을 수행하지 않고 요청을 큐에 넣는 역할만 하므로 빠르게 반환됩니다.
// 큐가 가득 찬 경우 enqueueTimeout만큼 대기하며, 그 사이에도 빈 공간이
// 생기지 않으면 요청을 드롭하고 ErrQueueFull을 반환합니다.
func (b *Base) Send(ctx context.Context, notification contract.Notification) error {
	if ctx == nil {
		ctx = context.Background()
	}

	if err := notification.Validate(); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	b.mu.RLock()
	if b.closed {
		b.mu.RUnlock()
		return ErrClosed
	}

	b.pendingSendsWG.Add(1)

	// 채널 전송은 블로킹될 수 있으므로 락을 잡은 채로 수행하지 않습니다.
	notificationC := b.notificationC
	done := b.done
	enqueueTimeout := b.enqueueTimeout
	b.mu.RUnlock()

	defer b.pendingSendsWG.Done()

	timer := time.NewTimer(enqueueTimeout)
	defer func() {
		if !timer.Stop() {
			select {
			case <-timer.C:
			default:
			}
		}
	}()

	select {
	case notificationC <- &Request{Ctx: ctx, Notification: notification}:
		return nil

	case <-done:
		return ErrClosed

	case <-ctx.Done():
		return ctx.Err()

	case <-timer.C:
		applog.WithComponentAndFields(component, applog.Fields{
			"notifier_id": b.id,
			"title":       notification.Title,
		}).Warn("알림 요청 거부: 발송 대기열 용량 초과")

		return ErrQueueFull
	}
}

// Close Notifier의 운영을 중단하고 새로운 알림 요청을 거부합니다.
//
// done 채널을 닫아 모든 대기 고루틴에게 종료를 전파합니다.
// 내부 큐(notificationC)는 다중 생산자 환경에서의 패닉을 방지하기 위해
// 닫지 않으며, 남은 메시지는 Drain 로직이 처리하거나 GC가 수거합니다.
func (b *Base) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.closed {
		b.closed = true
		close(b.done)
	}
}

// IsClosed Notifier가 종료되었는지 여부를 반환합니다.
func (b *Base) IsClosed() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.closed
}

// Done 종료 상태를 감지할 수 있는 읽기 전용 채널을 반환합니다.
func (b *Base) Done() <-chan struct{} {
	return b.done
}

// NotificationC 발송 고루틴이 알림 요청을 꺼내어 처리하기 위한 읽기 전용 채널을 반환합니다.
func (b *Base) NotificationC() <-chan *Request {
	return b.notificationC
}

// WaitForPendingSends 진행 중인 모든 Send 요청이 완료될 때까지 대기합니다.
//
// 종료 시 발송 고루틴이 Drain 전에 호출하여, 이미 Send에 진입한 고루틴이
// 큐에 메시지를 넣을 기회를 보장합니다. Send는 enqueueTimeout으로 대기
// 시간이 제한되어 있으므로 이 호출도 유한 시간 내에 반환됩니다.
func (b *Base) WaitForPendingSends() {
	b.pendingSendsWG.Wait()
}
