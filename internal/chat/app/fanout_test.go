package app

import (
	"os"
	"testing"
	"time"

	"chat_backend_service/internal/chat/domain"
	"chat_backend_service/pkg/logger"
)

func TestMain(m *testing.M) {
	logger.SetNewNop()
	os.Exit(m.Run())
}

// fakeChannel buffered PushChannel for asserting deliveries
type fakeChannel struct {
	pushes chan domain.WSResponse
}

func newFakeChannel() *fakeChannel {
	return &fakeChannel{pushes: make(chan domain.WSResponse, 16)}
}

// Push record the response
func (f *fakeChannel) Push(resp domain.WSResponse) error {
	f.pushes <- resp
	return nil
}

func (f *fakeChannel) waitPush(t *testing.T) domain.WSResponse {
	t.Helper()
	select {
	case resp := <-f.pushes:
		return resp
	case <-time.After(time.Second):
		t.Fatal("expected a push, got none")
	}
	return domain.WSResponse{}
}

func (f *fakeChannel) assertNoPush(t *testing.T) {
	t.Helper()
	select {
	case resp := <-f.pushes:
		t.Fatalf("unexpected push: %+v", resp)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestNotifier_ExcludesSenderSession(t *testing.T) {
	registry := NewSessionRegistry()
	notifier := NewNotifier(registry)

	senderS1 := newFakeChannel()
	senderS2 := newFakeChannel()
	otherS3 := newFakeChannel()

	registry.Identify("u1", "phone", "s1", senderS1)
	registry.Identify("u1", "laptop", "s2", senderS2)
	registry.Identify("u2", "phone", "s3", otherS3)

	notifier.Notify("s1", []string{"u1", "u2"}, domain.EventNewMessage, map[string]interface{}{"room_id": "r1"})

	resp := senderS2.waitPush(t)
	if resp.Event != string(domain.EventNewMessage) {
		t.Fatalf("want event %s, got %s", domain.EventNewMessage, resp.Event)
	}
	otherS3.waitPush(t)
	senderS1.assertNoPush(t)
}

func TestNotifier_OfflineUserIsDropped(t *testing.T) {
	registry := NewSessionRegistry()
	notifier := NewNotifier(registry)

	online := newFakeChannel()
	registry.Identify("u1", "phone", "s1", online)

	// u2 has no session, the event is simply dropped for it
	notifier.Notify("other-session", []string{"u1", "u2"}, domain.EventMarkRead, nil)

	online.waitPush(t)
}

func TestNotifier_DuplicateUserIDsPushOnce(t *testing.T) {
	registry := NewSessionRegistry()
	notifier := NewNotifier(registry)

	ch := newFakeChannel()
	registry.Identify("u1", "phone", "s1", ch)

	notifier.Notify("other-session", []string{"u1", "u1"}, domain.EventMarkRead, nil)

	ch.waitPush(t)
	ch.assertNoPush(t)
}
