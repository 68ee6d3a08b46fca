// Package host wraps the embedding platform's capability surface (identity,
// buttons, haptics, popups, QR scan) behind one interface with two
// implementations: a live bridge speaking the Mini App event protocol and a
// standalone fallback for running outside Telegram.
package host

import (
	"context"
	"encoding/json"
	"sync"
)

// Identity is the viewer's platform-supplied user record at launch.
// Immutable for the session; used only as a lookup key and display fallback.
type Identity struct {
	ID           int64  `json:"id"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name,omitempty"`
	Username     string `json:"username,omitempty"`
	LanguageCode string `json:"language_code,omitempty"`
	IsPremium    bool   `json:"is_premium,omitempty"`
}

// DevIdentity is the fixed placeholder used when no platform identity is
// available (standalone browser testing, missing or invalid init data).
func DevIdentity() Identity {
	return Identity{
		ID:           999999,
		FirstName:    "Dev",
		LastName:     "User",
		Username:     "dev_user",
		LanguageCode: "en",
		IsPremium:    true,
	}
}

type HapticStyle string

const (
	HapticLight  HapticStyle = "light"
	HapticMedium HapticStyle = "medium"
	HapticHeavy  HapticStyle = "heavy"
	HapticRigid  HapticStyle = "rigid"
	HapticSoft   HapticStyle = "soft"
)

type NotificationKind string

const (
	NotifyError   NotificationKind = "error"
	NotifySuccess NotificationKind = "success"
	NotifyWarning NotificationKind = "warning"
)

type PopupButton struct {
	ID   string `json:"id"`
	Type string `json:"type,omitempty"`
	Text string `json:"text"`
}

type PopupParams struct {
	Title   string        `json:"title,omitempty"`
	Message string        `json:"message"`
	Buttons []PopupButton `json:"buttons,omitempty"`
}

// Bridge is the raw capability surface of the embedding host. Every method
// may fail; the Adapter decides what failures mean for callers.
type Bridge interface {
	Identity() (Identity, error)

	Ready() error
	Expand() error
	Close() error
	ColorScheme() (string, error)

	SetMainButton(text string, visible bool) error
	SetMainButtonProgress(visible, keepActive bool) error
	OnMainButtonClick(fn func()) (unsubscribe func(), err error)
	SetBackButton(visible bool) error
	OnBackButtonClick(fn func()) (unsubscribe func(), err error)

	HapticImpact(style HapticStyle) error
	HapticNotification(kind NotificationKind) error
	HapticSelectionChanged() error

	ShowAlert(ctx context.Context, message string) error
	ShowConfirm(ctx context.Context, message string) (bool, error)
	ShowPopup(ctx context.Context, params PopupParams) (string, error)
	ScanQR(ctx context.Context, hint string) (string, error)
}

// Transport carries events between the app and the host runtime. Post sends
// a method event; Subscribe registers a handler for a host-emitted event and
// returns an unsubscribe function.
type Transport interface {
	Post(event string, payload interface{}) error
	Subscribe(event string, fn func(payload json.RawMessage)) (unsubscribe func())
}

// subscribeOnce registers a single-resolution handler for a host event and
// returns a wait function. The subscription must exist before the triggering
// method event is posted, or a response delivered in between is lost. The
// first delivery wins; later deliveries are dropped.
func subscribeOnce(t Transport, event string) (wait func(ctx context.Context) (json.RawMessage, error), unsubscribe func()) {
	ch := make(chan json.RawMessage, 1)
	var once sync.Once
	unsubscribe = t.Subscribe(event, func(payload json.RawMessage) {
		once.Do(func() {
			ch <- payload
		})
	})
	wait = func(ctx context.Context) (json.RawMessage, error) {
		select {
		case payload := <-ch:
			return payload, nil
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return wait, unsubscribe
}
