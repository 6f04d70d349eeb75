package kafka

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/segmentio/kafka-go"

	"github.com/Gunvolt24/brokerdemo/internal/domain"
	"github.com/Gunvolt24/brokerdemo/internal/kafka/mocks"
	portmocks "github.com/Gunvolt24/brokerdemo/internal/ports/mocks"
)

type nopLogger struct{}

func (nopLogger) Debugf(context.Context, string, ...any) {}
func (nopLogger) Infof(context.Context, string, ...any)  {}
func (nopLogger) Warnf(context.Context, string, ...any)  {}
func (nopLogger) Errorf(context.Context, string, ...any) {}

var testReaderConfig = kafka.ReaderConfig{Topic: "demo-topic", GroupID: "g1", Brokers: []string{"b:9092"}}

// runAsync запускает Consumer.Run в отдельной горутине и возвращает канал с ошибкой.
func runAsync(ctx context.Context, c *Consumer) <-chan error {
	errCh := make(chan error, 1)
	go func() { errCh <- c.Run(ctx) }()
	return errCh
}

func newTestConsumer(r reader, h *portmocks.MockMessageHandler, batch int) *Consumer {
	return newConsumer(r, &ConsumerConfig{
		CommitBatchSize: batch,
		RetryDelay:      5 * time.Millisecond,
	}, h, nopLogger{})
}

func msgAt(offset int64, value string) kafka.Message {
	return kafka.Message{Topic: "demo-topic", Partition: 0, Offset: offset, Value: []byte(value)}
}

// blockUntilCancel — следующий fetch ждёт отмены контекста.
func blockUntilCancel(r *mocks.Mockreader) *gomock.Call {
	return r.EXPECT().FetchMessage(gomock.Any()).
		DoAndReturn(func(ctx context.Context) (kafka.Message, error) {
			<-ctx.Done()
			return kafka.Message{}, ctx.Err()
		})
}

func waitStopped(t *testing.T, cancel context.CancelFunc, errCh <-chan error) {
	t.Helper()
	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-errCh:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("want context.Canceled, got %v", err)
		}
	case <-time.After(200 * time.Millisecond):
		t.Fatal("timeout waiting for Run to stop")
	}
}

// Пачка из batch сообщений → один CommitMessages со всеми сообщениями
func TestRun_BatchCommit(t *testing.T) {
	ctrl := gomock.NewController(t)
	r := mocks.NewMockreader(ctrl)
	h := portmocks.NewMockMessageHandler(ctrl)

	r.EXPECT().Config().Return(testReaderConfig).AnyTimes()
	h.EXPECT().Handle(gomock.Any(), gomock.Any()).Return(nil).Times(3)

	gomock.InOrder(
		r.EXPECT().FetchMessage(gomock.Any()).Return(msgAt(1, "a"), nil),
		r.EXPECT().FetchMessage(gomock.Any()).Return(msgAt(2, "b"), nil),
		r.EXPECT().FetchMessage(gomock.Any()).Return(msgAt(3, "c"), nil),
		r.EXPECT().CommitMessages(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, msgs ...kafka.Message) error {
				if len(msgs) != 3 || msgs[0].Offset != 1 || msgs[2].Offset != 3 {
					t.Errorf("unexpected batch: %+v", msgs)
				}
				return nil
			}),
		blockUntilCancel(r),
	)

	c := newTestConsumer(r, h, 3)

	ctx, cancel := context.WithCancel(context.Background())
	waitStopped(t, cancel, runAsync(ctx, c))
}

// Неполная пачка при остановке НЕ коммитится
func TestRun_PartialBatch_NotCommittedOnCancel(t *testing.T) {
	ctrl := gomock.NewController(t)
	r := mocks.NewMockreader(ctrl)
	h := portmocks.NewMockMessageHandler(ctrl)

	r.EXPECT().Config().Return(testReaderConfig).AnyTimes()
	h.EXPECT().Handle(gomock.Any(), gomock.Any()).Return(nil).Times(2)

	gomock.InOrder(
		r.EXPECT().FetchMessage(gomock.Any()).Return(msgAt(1, "a"), nil),
		r.EXPECT().FetchMessage(gomock.Any()).Return(msgAt(2, "b"), nil),
		blockUntilCancel(r),
	)
	// CommitMessages не ожидается: лишний вызов уронит тест как "unexpected call".

	c := newTestConsumer(r, h, 10)

	ctx, cancel := context.WithCancel(context.Background())
	waitStopped(t, cancel, runAsync(ctx, c))
}

// Битое тело считается обработанным и коммитится вместе с пачкой
func TestRun_Malformed_CountedForCommit(t *testing.T) {
	ctrl := gomock.NewController(t)
	r := mocks.NewMockreader(ctrl)
	h := portmocks.NewMockMessageHandler(ctrl)

	r.EXPECT().Config().Return(testReaderConfig).AnyTimes()

	gomock.InOrder(
		r.EXPECT().FetchMessage(gomock.Any()).Return(msgAt(7, "bad"), nil),
		h.EXPECT().Handle(gomock.Any(), gomock.Any()).
			Return(fmt.Errorf("%w: invalid character", domain.ErrMalformedPayload)),
		r.EXPECT().CommitMessages(gomock.Any(), gomock.Any()).Return(nil),
		blockUntilCancel(r),
	)

	c := newTestConsumer(r, h, 1)

	ctx, cancel := context.WithCancel(context.Background())
	waitStopped(t, cancel, runAsync(ctx, c))
}

// Ошибка обработки → сообщение не попадает в пачку
func TestRun_ProcessFailure_NotCounted(t *testing.T) {
	ctrl := gomock.NewController(t)
	r := mocks.NewMockreader(ctrl)
	h := portmocks.NewMockMessageHandler(ctrl)

	r.EXPECT().Config().Return(testReaderConfig).AnyTimes()

	gomock.InOrder(
		r.EXPECT().FetchMessage(gomock.Any()).Return(msgAt(1, "x"), nil),
		h.EXPECT().Handle(gomock.Any(), gomock.Any()).Return(errors.New("downstream unavailable")),
		r.EXPECT().FetchMessage(gomock.Any()).Return(msgAt(2, "y"), nil),
		h.EXPECT().Handle(gomock.Any(), gomock.Any()).Return(nil),
		// batch=1: коммитится только второе сообщение
		r.EXPECT().CommitMessages(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, msgs ...kafka.Message) error {
				if len(msgs) != 1 || msgs[0].Offset != 2 {
					t.Errorf("unexpected batch: %+v", msgs)
				}
				return nil
			}),
		blockUntilCancel(r),
	)

	c := newTestConsumer(r, h, 1)

	ctx, cancel := context.WithCancel(context.Background())
	waitStopped(t, cancel, runAsync(ctx, c))
}

// Ошибка CommitMessages → пачка сохраняется и уходит со следующим коммитом
func TestRun_CommitError_RetriedWithNextBatch(t *testing.T) {
	ctrl := gomock.NewController(t)
	r := mocks.NewMockreader(ctrl)
	h := portmocks.NewMockMessageHandler(ctrl)

	r.EXPECT().Config().Return(testReaderConfig).AnyTimes()
	h.EXPECT().Handle(gomock.Any(), gomock.Any()).Return(nil).Times(4)

	gomock.InOrder(
		r.EXPECT().FetchMessage(gomock.Any()).Return(msgAt(1, "a"), nil),
		r.EXPECT().FetchMessage(gomock.Any()).Return(msgAt(2, "b"), nil),
		r.EXPECT().CommitMessages(gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("rebalance in progress")),
		// третье сообщение не запускает повторный коммит: ждём следующую полную пачку
		r.EXPECT().FetchMessage(gomock.Any()).Return(msgAt(3, "c"), nil),
		r.EXPECT().FetchMessage(gomock.Any()).Return(msgAt(4, "d"), nil),
		r.EXPECT().CommitMessages(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, msgs ...kafka.Message) error {
				if len(msgs) != 4 || msgs[0].Offset != 1 || msgs[3].Offset != 4 {
					t.Errorf("unexpected batch: %+v", msgs)
				}
				return nil
			}),
		blockUntilCancel(r),
	)

	c := newTestConsumer(r, h, 2)

	ctx, cancel := context.WithCancel(context.Background())
	waitStopped(t, cancel, runAsync(ctx, c))
}

// Ошибки FetchMessage ретраятся; по отмене контекста — корректный выход
func TestRun_FetchError_RetryThenStopOnCancel(t *testing.T) {
	ctrl := gomock.NewController(t)
	r := mocks.NewMockreader(ctrl)
	h := portmocks.NewMockMessageHandler(ctrl)

	r.EXPECT().Config().Return(testReaderConfig).AnyTimes()
	r.EXPECT().FetchMessage(gomock.Any()).
		Return(kafka.Message{}, errors.New("broker error")).MinTimes(2)

	c := newTestConsumer(r, h, 10)

	ctx, cancel := context.WithTimeout(context.Background(), 40*time.Millisecond)
	defer cancel()

	if err := c.Run(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("want DeadlineExceeded, got %v", err)
	}
}

// Доставка несёт идентификатор topic-partition-offset и заголовки записи
func TestHandleMessage_DeliveryFields(t *testing.T) {
	ctrl := gomock.NewController(t)
	r := mocks.NewMockreader(ctrl)
	h := portmocks.NewMockMessageHandler(ctrl)

	h.EXPECT().Handle(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, d domain.Delivery) error {
			if d.MessageID != "demo-topic-3-42" || d.Source != "demo-topic" {
				t.Errorf("unexpected delivery: %+v", d)
			}
			if d.Headers["traceparent"] != "tp" {
				t.Errorf("headers not propagated: %v", d.Headers)
			}
			return nil
		})

	c := newTestConsumer(r, h, 1)
	msg := kafka.Message{
		Topic: "demo-topic", Partition: 3, Offset: 42, Value: []byte("{}"),
		Headers: []kafka.Header{{Key: "traceparent", Value: []byte("tp")}},
	}
	if !c.handleMessage(context.Background(), &msg) {
		t.Fatal("want message counted for commit")
	}
}

// Проверка Close() прокидывает вызов в reader.Close() один раз
func TestClose_DelegatesToReader(t *testing.T) {
	ctrl := gomock.NewController(t)
	r := mocks.NewMockreader(ctrl)
	h := portmocks.NewMockMessageHandler(ctrl)

	r.EXPECT().Close().Return(nil).Times(1)

	c := newTestConsumer(r, h, 1)
	if err := c.Close(); err != nil {
		t.Fatalf("expected nil from Close, got %v", err)
	}
	if err := c.Close(); err != nil {
		t.Fatalf("second Close must be a no-op, got %v", err)
	}
}
