package host

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"

	apperrors "github.com/OneAIforWeb3/linkup/internal/common/errors"
	"github.com/OneAIforWeb3/linkup/internal/common/logger"
)

// StandaloneBridge is the development fallback used when the app runs
// outside Telegram. Dialogs and the QR scanner degrade to terminal prompts;
// buttons, haptics and lifecycle calls are logged no-ops.
type StandaloneBridge struct {
	in       *bufio.Reader
	out      io.Writer
	log      zerolog.Logger
	identity *Identity
}

func NewStandaloneBridge() *StandaloneBridge {
	return NewStandaloneBridgeIO(os.Stdin, os.Stdout)
}

// NewStandaloneBridgeIO allows injecting the prompt streams, used in tests.
func NewStandaloneBridgeIO(in io.Reader, out io.Writer) *StandaloneBridge {
	return &StandaloneBridge{
		in:  bufio.NewReader(in),
		out: out,
		log: logger.Component("host.standalone"),
	}
}

// WithIdentity overrides the development placeholder, used when real init
// data is supplied through the environment.
func (b *StandaloneBridge) WithIdentity(identity Identity) *StandaloneBridge {
	b.identity = &identity
	return b
}

func (b *StandaloneBridge) Identity() (Identity, error) {
	if b.identity != nil {
		return *b.identity, nil
	}
	return DevIdentity(), nil
}

func (b *StandaloneBridge) Ready() error {
	b.log.Debug().Msg("ready (no-op)")
	return nil
}

func (b *StandaloneBridge) Expand() error {
	b.log.Debug().Msg("expand (no-op)")
	return nil
}

func (b *StandaloneBridge) Close() error {
	b.log.Debug().Msg("close (no-op)")
	return nil
}

func (b *StandaloneBridge) ColorScheme() (string, error) {
	return "light", nil
}

func (b *StandaloneBridge) SetMainButton(text string, visible bool) error {
	b.log.Debug().Str("text", text).Bool("visible", visible).Msg("main button (no-op)")
	return nil
}

func (b *StandaloneBridge) SetMainButtonProgress(visible, keepActive bool) error {
	b.log.Debug().Bool("visible", visible).Msg("main button progress (no-op)")
	return nil
}

func (b *StandaloneBridge) OnMainButtonClick(fn func()) (func(), error) {
	return func() {}, nil
}

func (b *StandaloneBridge) SetBackButton(visible bool) error {
	b.log.Debug().Bool("visible", visible).Msg("back button (no-op)")
	return nil
}

func (b *StandaloneBridge) OnBackButtonClick(fn func()) (func(), error) {
	return func() {}, nil
}

func (b *StandaloneBridge) HapticImpact(style HapticStyle) error {
	return nil
}

func (b *StandaloneBridge) HapticNotification(kind NotificationKind) error {
	return nil
}

func (b *StandaloneBridge) HapticSelectionChanged() error {
	return nil
}

func (b *StandaloneBridge) ShowAlert(ctx context.Context, message string) error {
	fmt.Fprintf(b.out, "[alert] %s (press enter)\n", message)
	_, err := b.readLine(ctx)
	return err
}

func (b *StandaloneBridge) ShowConfirm(ctx context.Context, message string) (bool, error) {
	fmt.Fprintf(b.out, "[confirm] %s [y/N]: ", message)
	line, err := b.readLine(ctx)
	if err != nil {
		return false, err
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes", nil
}

func (b *StandaloneBridge) ShowPopup(ctx context.Context, params PopupParams) (string, error) {
	if params.Title != "" {
		fmt.Fprintf(b.out, "[popup] %s\n", params.Title)
	}
	fmt.Fprintf(b.out, "%s\n", params.Message)
	for _, button := range params.Buttons {
		fmt.Fprintf(b.out, "  - %s (%s)\n", button.Text, button.ID)
	}
	fmt.Fprintf(b.out, "button id: ")
	line, err := b.readLine(ctx)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// ScanQR prompts for manually typed QR data as a development stand-in for
// the camera popup. Empty input counts as a cancelled scan.
func (b *StandaloneBridge) ScanQR(ctx context.Context, hint string) (string, error) {
	if hint == "" {
		hint = "Scan a QR code"
	}
	fmt.Fprintf(b.out, "[scan] %s, enter QR data: ", hint)
	line, err := b.readLine(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", apperrors.NewScanCancelledError()
	}
	line = strings.TrimSpace(line)
	if line == "" {
		return "", apperrors.NewScanCancelledError()
	}
	return line, nil
}

// readLine reads one prompt answer, giving up when the context ends. A read
// abandoned by cancellation keeps blocking on the input stream; fine for a
// terminal session, where the next prompt picks up the typed line.
func (b *StandaloneBridge) readLine(ctx context.Context) (string, error) {
	type answer struct {
		line string
		err  error
	}
	ch := make(chan answer, 1)
	go func() {
		line, err := b.in.ReadString('\n')
		ch <- answer{line: line, err: err}
	}()

	select {
	case a := <-ch:
		if a.err != nil && a.line == "" {
			return "", a.err
		}
		return a.line, nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}
