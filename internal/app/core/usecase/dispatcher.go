package usecase

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/timeless/bank-core/internal/app/core/domain"
)

var pkgLogger = log.With().Str("pkg", "usecase").Logger()

// 通知佇列長度與單筆送出的時間上限
const (
	notifyQueueSize   = 1000
	notifySendTimeout = 5 * time.Second
)

// notifyDispatcher 通知輸送帶
// 單一消費者 goroutine 依序送出，佇列滿了就丟棄 (通知本來就只盡力送達)
type notifyDispatcher struct {
	sink  NotificationSink
	queue chan domain.Notification
}

func newNotifyDispatcher(sink NotificationSink) *notifyDispatcher {
	return &notifyDispatcher{
		sink:  sink,
		queue: make(chan domain.Notification, notifyQueueSize),
	}
}

// Start 啟動消費迴圈 (非同步)
func (d *notifyDispatcher) Start(ctx context.Context) {
	go d.run(ctx)
}

func (d *notifyDispatcher) run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			// 收到關閉信號，把剩下的通知送完
			d.drain()
			return
		case n := <-d.queue:
			d.send(n)
		}
	}
}

func (d *notifyDispatcher) drain() {
	for {
		select {
		case n := <-d.queue:
			d.send(n)
		default:
			return
		}
	}
}

// send 實際送出一筆通知
// 失敗只記 Log：此時異動早已提交，絕不能因通知失敗回報操作失敗
func (d *notifyDispatcher) send(n domain.Notification) {
	ctx, cancel := context.WithTimeout(context.Background(), notifySendTimeout)
	defer cancel()

	if err := d.sink.Send(ctx, n); err != nil {
		pkgLogger.Warn().
			Err(err).
			Str("recipient", n.Recipient).
			Str("subject", n.Subject).
			Msg("failed to deliver notification")
	}
}

// enqueue 放入佇列，不阻塞呼叫端
func (d *notifyDispatcher) enqueue(n domain.Notification) {
	select {
	case d.queue <- n:
	default:
		pkgLogger.Warn().
			Str("recipient", n.Recipient).
			Str("subject", n.Subject).
			Msg("notification queue full, dropped")
	}
}
