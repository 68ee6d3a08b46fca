package host

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/OneAIforWeb3/linkup/internal/common/logger"
)

// Adapter presents one stable capability surface over a Bridge. Every bridge
// call is guarded individually, so one failing capability never disables
// the others: bridge errors are logged and swallowed, and only the contracts
// that promise a failure mode (QR scan cancellation) surface errors.
type Adapter struct {
	bridge Bridge
	log    zerolog.Logger
	ready  chan struct{}

	MainButton *MainButton
	BackButton *BackButton
	Haptic     *Haptic
}

func NewAdapter(bridge Bridge) *Adapter {
	a := &Adapter{
		bridge: bridge,
		log:    logger.Component("host.adapter"),
		ready:  make(chan struct{}),
	}
	a.MainButton = &MainButton{a: a}
	a.BackButton = &BackButton{a: a}
	a.Haptic = &Haptic{a: a}
	return a
}

// guard logs a failed capability call and swallows the error.
func (a *Adapter) guard(capability string, err error) {
	if err != nil {
		a.log.Warn().Err(err).Str("capability", capability).Msg("Host capability call failed")
	}
}

// safely runs one capability call, converting a panicking bridge into a
// logged failure. UI flow must not crash on a broken capability.
func (a *Adapter) safely(capability string, fn func() error) {
	defer func() {
		if r := recover(); r != nil {
			a.guard(capability, fmt.Errorf("panic: %v", r))
		}
	}()
	a.guard(capability, fn())
}

// Identity returns the platform identity, or the development placeholder
// when the bridge has none. Never fails.
func (a *Adapter) Identity() Identity {
	identity, err := a.bridge.Identity()
	if err != nil {
		a.guard("identity", err)
		return DevIdentity()
	}
	return identity
}

// Startup signals the host that the app is ready and expands the viewport,
// then unblocks WaitReady callers.
func (a *Adapter) Startup() {
	a.safely("ready", a.bridge.Ready)
	a.safely("expand", a.bridge.Expand)
	select {
	case <-a.ready:
	default:
		close(a.ready)
	}
}

// WaitReady blocks until Startup has run. There is no timeout: if the host
// never becomes ready the caller stays suspended until its context ends.
func (a *Adapter) WaitReady(ctx context.Context) error {
	select {
	case <-a.ready:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (a *Adapter) Ready() {
	a.safely("ready", a.bridge.Ready)
}

func (a *Adapter) Expand() {
	a.safely("expand", a.bridge.Expand)
}

func (a *Adapter) CloseApp() {
	a.safely("close", a.bridge.Close)
}

func (a *Adapter) IsDarkMode() bool {
	scheme, err := a.bridge.ColorScheme()
	if err != nil {
		a.guard("color_scheme", err)
		return false
	}
	return scheme == "dark"
}

// ShowAlert displays a message and returns once it is dismissed. A failed
// popup capability degrades to an immediate return.
func (a *Adapter) ShowAlert(ctx context.Context, message string) {
	a.safely("alert", func() error {
		return a.bridge.ShowAlert(ctx, message)
	})
}

// ShowConfirm asks a yes/no question; a failed capability reads as "no".
func (a *Adapter) ShowConfirm(ctx context.Context, message string) bool {
	confirmed := false
	a.safely("confirm", func() error {
		var err error
		confirmed, err = a.bridge.ShowConfirm(ctx, message)
		return err
	})
	return confirmed
}

// ShowPopup resolves the chosen button id, or the "error" sentinel when the
// popup capability fails. It never rejects.
func (a *Adapter) ShowPopup(ctx context.Context, params PopupParams) string {
	buttonID := "error"
	a.safely("popup", func() error {
		id, err := a.bridge.ShowPopup(ctx, params)
		if err != nil {
			return err
		}
		buttonID = id
		return nil
	})
	return buttonID
}

// ScanQR opens the scanner and returns the decoded text. Cancellation (and
// any other scanner failure) is the one capability error callers must
// handle explicitly.
func (a *Adapter) ScanQR(ctx context.Context) (string, error) {
	return a.bridge.ScanQR(ctx, "Scan a QR code")
}

// MainButton controls the host's primary action button.
type MainButton struct {
	a *Adapter
}

func (m *MainButton) Show(text string) {
	m.a.safely("main_button.show", func() error {
		return m.a.bridge.SetMainButton(text, true)
	})
}

func (m *MainButton) Hide() {
	m.a.safely("main_button.hide", func() error {
		return m.a.bridge.SetMainButton("", false)
	})
}

// OnClick registers a click handler and returns its unsubscribe function.
func (m *MainButton) OnClick(fn func()) func() {
	var unsubscribe func()
	m.a.safely("main_button.on_click", func() error {
		var err error
		unsubscribe, err = m.a.bridge.OnMainButtonClick(fn)
		return err
	})
	if unsubscribe == nil {
		unsubscribe = func() {}
	}
	return unsubscribe
}

func (m *MainButton) ShowProgress(keepActive bool) {
	m.a.safely("main_button.show_progress", func() error {
		return m.a.bridge.SetMainButtonProgress(true, keepActive)
	})
}

func (m *MainButton) HideProgress() {
	m.a.safely("main_button.hide_progress", func() error {
		return m.a.bridge.SetMainButtonProgress(false, false)
	})
}

// BackButton controls the host's back navigation button.
type BackButton struct {
	a *Adapter
}

func (b *BackButton) Show() {
	b.a.safely("back_button.show", func() error {
		return b.a.bridge.SetBackButton(true)
	})
}

func (b *BackButton) Hide() {
	b.a.safely("back_button.hide", func() error {
		return b.a.bridge.SetBackButton(false)
	})
}

func (b *BackButton) OnClick(fn func()) func() {
	var unsubscribe func()
	b.a.safely("back_button.on_click", func() error {
		var err error
		unsubscribe, err = b.a.bridge.OnBackButtonClick(fn)
		return err
	})
	if unsubscribe == nil {
		unsubscribe = func() {}
	}
	return unsubscribe
}

// Haptic exposes the host's haptic feedback capability.
type Haptic struct {
	a *Adapter
}

func (h *Haptic) Impact(style HapticStyle) {
	h.a.safely("haptic.impact", func() error {
		return h.a.bridge.HapticImpact(style)
	})
}

func (h *Haptic) Notify(kind NotificationKind) {
	h.a.safely("haptic.notify", func() error {
		return h.a.bridge.HapticNotification(kind)
	})
}

func (h *Haptic) SelectionChanged() {
	h.a.safely("haptic.selection_changed", func() error {
		return h.a.bridge.HapticSelectionChanged()
	})
}
