package host

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/rs/zerolog"
	initdata "github.com/telegram-mini-apps/init-data-golang"

	apperrors "github.com/OneAIforWeb3/linkup/internal/common/errors"
	"github.com/OneAIforWeb3/linkup/internal/common/logger"
)

// Mini App method and event names, as emitted by the Telegram web runtime.
const (
	evReady              = "web_app_ready"
	evExpand             = "web_app_expand"
	evClose              = "web_app_close"
	evSetupMainButton    = "web_app_setup_main_button"
	evSetupBackButton    = "web_app_setup_back_button"
	evTriggerHaptic      = "web_app_trigger_haptic_feedback"
	evOpenPopup          = "web_app_open_popup"
	evOpenScanQRPopup    = "web_app_open_scan_qr_popup"
	evCloseScanQRPopup   = "web_app_close_scan_qr_popup"
	evMainButtonPressed  = "main_button_pressed"
	evBackButtonPressed  = "back_button_pressed"
	evPopupClosed        = "popup_closed"
	evQRTextReceived     = "qr_text_received"
	evScanQRPopupClosed  = "scan_qr_popup_closed"
)

// TelegramBridge is the live Bridge implementation over a host Transport.
// Identity is resolved once at construction from the launch init data.
type TelegramBridge struct {
	transport Transport
	log       zerolog.Logger

	identity    Identity
	identityErr error
	colorScheme string

	mu         sync.Mutex
	buttonText string
}

// NewTelegramBridge parses the launch init data into an Identity. When
// botToken is set the init data signature is verified first; a webapp
// context normally cannot know the token, so verification is optional.
// Missing or unparseable init data leaves the bridge without an identity
// and the Adapter substitutes the development placeholder.
func NewTelegramBridge(transport Transport, rawInitData, botToken, colorScheme string) *TelegramBridge {
	b := &TelegramBridge{
		transport:   transport,
		log:         logger.Component("host.telegram"),
		colorScheme: colorScheme,
	}
	b.identity, b.identityErr = ParseInitDataIdentity(rawInitData, botToken)
	if b.identityErr != nil {
		b.log.Warn().Err(b.identityErr).Msg("No usable identity in init data")
	}
	return b
}

// ParseInitDataIdentity extracts the launching user from a raw init data
// string, verifying the signature when a bot token is available.
func ParseInitDataIdentity(rawInitData, botToken string) (Identity, error) {
	if rawInitData == "" {
		return Identity{}, apperrors.New(apperrors.ErrCodeCapabilityUnavailable, "init data not provided")
	}
	if botToken != "" {
		if err := initdata.Validate(rawInitData, botToken, time.Duration(0)); err != nil {
			return Identity{}, apperrors.Wrap(err, apperrors.ErrCodeCapabilityUnavailable, "init data validation failed")
		}
	}
	parsed, err := initdata.Parse(rawInitData)
	if err != nil {
		return Identity{}, apperrors.Wrap(err, apperrors.ErrCodeCapabilityUnavailable, "init data parse failed")
	}
	if parsed.User.ID == 0 {
		return Identity{}, apperrors.New(apperrors.ErrCodeCapabilityUnavailable, "init data has no user")
	}
	return Identity{
		ID:           parsed.User.ID,
		FirstName:    parsed.User.FirstName,
		LastName:     parsed.User.LastName,
		Username:     parsed.User.Username,
		LanguageCode: parsed.User.LanguageCode,
		IsPremium:    parsed.User.IsPremium,
	}, nil
}

func (b *TelegramBridge) Identity() (Identity, error) {
	return b.identity, b.identityErr
}

func (b *TelegramBridge) Ready() error {
	return b.transport.Post(evReady, nil)
}

func (b *TelegramBridge) Expand() error {
	return b.transport.Post(evExpand, nil)
}

func (b *TelegramBridge) Close() error {
	return b.transport.Post(evClose, nil)
}

func (b *TelegramBridge) ColorScheme() (string, error) {
	if b.colorScheme == "" {
		return "light", nil
	}
	return b.colorScheme, nil
}

func (b *TelegramBridge) SetMainButton(text string, visible bool) error {
	b.mu.Lock()
	if text != "" {
		b.buttonText = text
	}
	payload := map[string]interface{}{
		"is_visible": visible,
		"is_active":  true,
		"text":       b.buttonText,
	}
	b.mu.Unlock()
	return b.transport.Post(evSetupMainButton, payload)
}

func (b *TelegramBridge) SetMainButtonProgress(visible, keepActive bool) error {
	b.mu.Lock()
	payload := map[string]interface{}{
		"is_visible":          true,
		"is_active":           !visible || keepActive,
		"is_progress_visible": visible,
		"text":                b.buttonText,
	}
	b.mu.Unlock()
	return b.transport.Post(evSetupMainButton, payload)
}

func (b *TelegramBridge) OnMainButtonClick(fn func()) (func(), error) {
	unsubscribe := b.transport.Subscribe(evMainButtonPressed, func(json.RawMessage) {
		fn()
	})
	return unsubscribe, nil
}

func (b *TelegramBridge) SetBackButton(visible bool) error {
	return b.transport.Post(evSetupBackButton, map[string]interface{}{"is_visible": visible})
}

func (b *TelegramBridge) OnBackButtonClick(fn func()) (func(), error) {
	unsubscribe := b.transport.Subscribe(evBackButtonPressed, func(json.RawMessage) {
		fn()
	})
	return unsubscribe, nil
}

func (b *TelegramBridge) HapticImpact(style HapticStyle) error {
	return b.transport.Post(evTriggerHaptic, map[string]interface{}{
		"type":         "impact",
		"impact_style": string(style),
	})
}

func (b *TelegramBridge) HapticNotification(kind NotificationKind) error {
	return b.transport.Post(evTriggerHaptic, map[string]interface{}{
		"type":              "notification",
		"notification_type": string(kind),
	})
}

func (b *TelegramBridge) HapticSelectionChanged() error {
	return b.transport.Post(evTriggerHaptic, map[string]interface{}{
		"type": "selection_change",
	})
}

func (b *TelegramBridge) ShowAlert(ctx context.Context, message string) error {
	_, err := b.ShowPopup(ctx, PopupParams{
		Message: message,
		Buttons: []PopupButton{{ID: "ok", Type: "ok", Text: "OK"}},
	})
	return err
}

func (b *TelegramBridge) ShowConfirm(ctx context.Context, message string) (bool, error) {
	buttonID, err := b.ShowPopup(ctx, PopupParams{
		Message: message,
		Buttons: []PopupButton{
			{ID: "ok", Type: "ok", Text: "OK"},
			{ID: "cancel", Type: "cancel", Text: "Cancel"},
		},
	})
	if err != nil {
		return false, err
	}
	return buttonID == "ok", nil
}

func (b *TelegramBridge) ShowPopup(ctx context.Context, params PopupParams) (string, error) {
	// Subscribe before posting: the host may answer before Post returns.
	wait, unsubscribe := subscribeOnce(b.transport, evPopupClosed)
	defer unsubscribe()

	if err := b.transport.Post(evOpenPopup, params); err != nil {
		return "", apperrors.NewCapabilityError("popup", err)
	}

	payload, err := wait(ctx)
	if err != nil {
		return "", err
	}

	var closed struct {
		ButtonID string `json:"button_id"`
	}
	if err := json.Unmarshal(payload, &closed); err != nil {
		return "", apperrors.NewCapabilityError("popup", err)
	}
	return closed.ButtonID, nil
}

func (b *TelegramBridge) ScanQR(ctx context.Context, hint string) (string, error) {
	type scanResult struct {
		data      string
		cancelled bool
	}
	ch := make(chan scanResult, 1)
	var once sync.Once

	unsubText := b.transport.Subscribe(evQRTextReceived, func(payload json.RawMessage) {
		var ev struct {
			Data string `json:"data"`
		}
		_ = json.Unmarshal(payload, &ev)
		once.Do(func() {
			ch <- scanResult{data: ev.Data}
		})
	})
	defer unsubText()

	unsubClosed := b.transport.Subscribe(evScanQRPopupClosed, func(json.RawMessage) {
		once.Do(func() {
			ch <- scanResult{cancelled: true}
		})
	})
	defer unsubClosed()

	if err := b.transport.Post(evOpenScanQRPopup, map[string]interface{}{"text": hint}); err != nil {
		return "", apperrors.NewCapabilityError("scan_qr", err)
	}

	select {
	case result := <-ch:
		if result.cancelled {
			return "", apperrors.NewScanCancelledError()
		}
		// The host keeps the scanner open until told otherwise, including
		// after delivering an empty result.
		_ = b.transport.Post(evCloseScanQRPopup, nil)
		if result.data == "" {
			return "", apperrors.NewScanCancelledError()
		}
		return result.data, nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}
