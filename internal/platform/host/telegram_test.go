package host

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/OneAIforWeb3/linkup/internal/common/errors"
)

type postedEvent struct {
	event   string
	payload interface{}
}

// fakeTransport records posted events and lets tests script the host's
// responses from inside the Post hook.
type fakeTransport struct {
	mu       sync.Mutex
	posts    []postedEvent
	handlers map[string][]func(json.RawMessage)
	onPost   func(event string, payload interface{})
}

func newFakeTransport() *fakeTransport {
	return &fakeTransport{handlers: make(map[string][]func(json.RawMessage))}
}

func (t *fakeTransport) Post(event string, payload interface{}) error {
	t.mu.Lock()
	t.posts = append(t.posts, postedEvent{event: event, payload: payload})
	hook := t.onPost
	t.mu.Unlock()
	if hook != nil {
		hook(event, payload)
	}
	return nil
}

func (t *fakeTransport) Subscribe(event string, fn func(json.RawMessage)) func() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.handlers[event] = append(t.handlers[event], fn)
	idx := len(t.handlers[event]) - 1
	return func() {
		t.mu.Lock()
		defer t.mu.Unlock()
		t.handlers[event][idx] = nil
	}
}

func (t *fakeTransport) fire(event, payload string) {
	t.mu.Lock()
	handlers := append([]func(json.RawMessage){}, t.handlers[event]...)
	t.mu.Unlock()
	for _, fn := range handlers {
		if fn != nil {
			fn(json.RawMessage(payload))
		}
	}
}

func (t *fakeTransport) posted(event string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, p := range t.posts {
		if p.event == event {
			return true
		}
	}
	return false
}

func (t *fakeTransport) lastPayload(event string) interface{} {
	t.mu.Lock()
	defer t.mu.Unlock()
	for i := len(t.posts) - 1; i >= 0; i-- {
		if t.posts[i].event == event {
			return t.posts[i].payload
		}
	}
	return nil
}

func TestTelegramBridgeIdentityMissingInitData(t *testing.T) {
	bridge := NewTelegramBridge(newFakeTransport(), "", "", "light")
	_, err := bridge.Identity()
	require.Error(t, err)

	// The adapter substitutes the development placeholder.
	adapter := NewAdapter(bridge)
	assert.Equal(t, DevIdentity(), adapter.Identity())
}

func TestTelegramBridgeScanQRResolves(t *testing.T) {
	transport := newFakeTransport()
	transport.onPost = func(event string, payload interface{}) {
		if event == evOpenScanQRPopup {
			transport.fire(evQRTextReceived, `{"data":"user_42"}`)
		}
	}
	bridge := NewTelegramBridge(transport, "", "", "light")

	data, err := bridge.ScanQR(context.Background(), "Scan a QR code")
	require.NoError(t, err)
	assert.Equal(t, "user_42", data)
	assert.True(t, transport.posted(evCloseScanQRPopup))
}

func TestTelegramBridgeScanQRCancelled(t *testing.T) {
	transport := newFakeTransport()
	transport.onPost = func(event string, payload interface{}) {
		if event == evOpenScanQRPopup {
			transport.fire(evScanQRPopupClosed, `{}`)
		}
	}
	bridge := NewTelegramBridge(transport, "", "", "light")

	_, err := bridge.ScanQR(context.Background(), "")
	require.Error(t, err)
	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.True(t, appErr.IsCancelled())
	// The host already closed the scanner; no close event to send.
	assert.False(t, transport.posted(evCloseScanQRPopup))
}

func TestTelegramBridgeScanQREmptyResultClosesScanner(t *testing.T) {
	transport := newFakeTransport()
	transport.onPost = func(event string, payload interface{}) {
		if event == evOpenScanQRPopup {
			transport.fire(evQRTextReceived, `{"data":""}`)
		}
	}
	bridge := NewTelegramBridge(transport, "", "", "light")

	_, err := bridge.ScanQR(context.Background(), "")
	require.Error(t, err)
	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.True(t, appErr.IsCancelled())
	// An empty delivery leaves the scanner open; it must still be closed.
	assert.True(t, transport.posted(evCloseScanQRPopup))
}

func TestTelegramBridgeScanQRContextCancel(t *testing.T) {
	transport := newFakeTransport()
	bridge := NewTelegramBridge(transport, "", "", "light")

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := bridge.ScanQR(ctx, "")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestTelegramBridgeShowPopupButtonID(t *testing.T) {
	transport := newFakeTransport()
	transport.onPost = func(event string, payload interface{}) {
		if event == evOpenPopup {
			transport.fire(evPopupClosed, `{"button_id":"cancel"}`)
		}
	}
	bridge := NewTelegramBridge(transport, "", "", "light")

	buttonID, err := bridge.ShowPopup(context.Background(), PopupParams{Message: "sure?"})
	require.NoError(t, err)
	assert.Equal(t, "cancel", buttonID)
}

func TestTelegramBridgeShowConfirm(t *testing.T) {
	transport := newFakeTransport()
	transport.onPost = func(event string, payload interface{}) {
		if event == evOpenPopup {
			transport.fire(evPopupClosed, `{"button_id":"ok"}`)
		}
	}
	bridge := NewTelegramBridge(transport, "", "", "light")

	confirmed, err := bridge.ShowConfirm(context.Background(), "connect?")
	require.NoError(t, err)
	assert.True(t, confirmed)
}

func TestTelegramBridgeMainButtonKeepsText(t *testing.T) {
	transport := newFakeTransport()
	bridge := NewTelegramBridge(transport, "", "", "light")

	require.NoError(t, bridge.SetMainButton("Save Profile", true))
	require.NoError(t, bridge.SetMainButtonProgress(true, false))

	payload, ok := transport.lastPayload(evSetupMainButton).(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "Save Profile", payload["text"])
	assert.Equal(t, true, payload["is_progress_visible"])
}

func TestTelegramBridgeButtonClicks(t *testing.T) {
	transport := newFakeTransport()
	bridge := NewTelegramBridge(transport, "", "", "light")

	clicks := 0
	unsubscribe, err := bridge.OnMainButtonClick(func() { clicks++ })
	require.NoError(t, err)

	transport.fire(evMainButtonPressed, `{}`)
	assert.Equal(t, 1, clicks)

	unsubscribe()
	transport.fire(evMainButtonPressed, `{}`)
	assert.Equal(t, 1, clicks)
}

// errTransport fails every Post; the adapter must degrade, not crash.
type errTransport struct{}

func (errTransport) Post(event string, payload interface{}) error {
	return errors.New("transport down")
}

func (errTransport) Subscribe(event string, fn func(json.RawMessage)) func() {
	return func() {}
}

func TestAdapterPopupSentinelOnFailure(t *testing.T) {
	adapter := NewAdapter(NewTelegramBridge(errTransport{}, "", "", "light"))

	buttonID := adapter.ShowPopup(context.Background(), PopupParams{Message: "hello"})
	assert.Equal(t, "error", buttonID)
	assert.False(t, adapter.ShowConfirm(context.Background(), "sure?"))
}
