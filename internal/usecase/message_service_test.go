package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Gunvolt24/brokerdemo/internal/domain"
	"github.com/Gunvolt24/brokerdemo/internal/ports/mocks"
	"github.com/Gunvolt24/brokerdemo/internal/usecase"
	"github.com/golang/mock/gomock"
)

type noopLogger struct{}

func (noopLogger) Debugf(context.Context, string, ...any) {}
func (noopLogger) Infof(context.Context, string, ...any)  {}
func (noopLogger) Warnf(context.Context, string, ...any)  {}
func (noopLogger) Errorf(context.Context, string, ...any) {}

var fixedNow = time.Date(2024, 1, 1, 12, 0, 0, 0, time.FixedZone("MSK", 3*60*60))

func TestSend_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	pub := mocks.NewMockPublisher(ctrl)

	want := domain.Envelope{ID: "order-42", Timestamp: fixedNow.UTC()}
	pub.EXPECT().Publish(gomock.Any(), want).Return("a1b2-c3", nil)

	svc := usecase.NewMessageService(pub, noopLogger{}).WithClock(func() time.Time { return fixedNow })

	got, err := svc.Send(context.Background(), "order-42")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.MessageID != "a1b2-c3" || got.SentID != "order-42" {
		t.Fatalf("unexpected result: %+v", got)
	}
}

func TestSend_BlankID_NoPublish(t *testing.T) {
	for _, id := range []string{"", "   ", "\t\n"} {
		ctrl := gomock.NewController(t)
		pub := mocks.NewMockPublisher(ctrl)
		pub.EXPECT().Publish(gomock.Any(), gomock.Any()).Times(0)

		svc := usecase.NewMessageService(pub, noopLogger{})

		_, err := svc.Send(context.Background(), id)
		if !errors.Is(err, domain.ErrValidation) {
			t.Fatalf("id=%q: want ErrValidation, got %v", id, err)
		}
	}
}

func TestSend_PublishError_Propagated(t *testing.T) {
	ctrl := gomock.NewController(t)
	pub := mocks.NewMockPublisher(ctrl)

	brokerErr := errors.Join(domain.ErrBrokerUnavailable, errors.New("connection refused"))
	pub.EXPECT().Publish(gomock.Any(), gomock.Any()).Return("", brokerErr)

	svc := usecase.NewMessageService(pub, noopLogger{})

	res, err := svc.Send(context.Background(), "x")
	if !errors.Is(err, domain.ErrBrokerUnavailable) {
		t.Fatalf("want ErrBrokerUnavailable, got %v", err)
	}
	if res != (domain.SendResult{}) {
		t.Fatalf("want empty result on error, got %+v", res)
	}
}

func TestSend_ConfigurationError_Propagated(t *testing.T) {
	ctrl := gomock.NewController(t)
	pub := mocks.NewMockPublisher(ctrl)
	pub.EXPECT().Publish(gomock.Any(), gomock.Any()).Return("", domain.ErrConfiguration)

	svc := usecase.NewMessageService(pub, noopLogger{})

	if _, err := svc.Send(context.Background(), "x"); !errors.Is(err, domain.ErrConfiguration) {
		t.Fatalf("want ErrConfiguration, got %v", err)
	}
}
