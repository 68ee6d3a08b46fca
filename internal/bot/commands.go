package bot

import (
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	apperrors "github.com/OneAIforWeb3/linkup/internal/common/errors"
	connectsservice "github.com/OneAIforWeb3/linkup/internal/features/connects/service"
	"github.com/OneAIforWeb3/linkup/internal/platform/linkupapi"
)

func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message) {
	args := strings.TrimSpace(msg.CommandArguments())

	switch msg.Command() {
	case "start":
		b.cmdStart(ctx, msg, args)
	case "help":
		b.cmdHelp(msg.Chat.ID)
	case "profile":
		b.cmdProfile(ctx, msg, args)
	case "qr":
		b.cmdQR(ctx, msg)
	case "scan":
		b.cmdScan(ctx, msg, args)
	case "connect":
		b.cmdScan(ctx, msg, args)
	case "myconnections":
		b.cmdMyConnections(ctx, msg)
	default:
		b.send(msg.Chat.ID, "Unknown command. /help for the command list")
	}
}

// cmdStart greets the user, or runs the connect flow when launched through
// a QR deep link (t.me/<bot>?start=user_<id>).
func (b *Bot) cmdStart(ctx context.Context, msg *tgbotapi.Message, payload string) {
	if strings.HasPrefix(payload, "user_") {
		b.connectWith(ctx, msg, payload)
		return
	}

	b.send(msg.Chat.ID,
		"Welcome to LinkUp!\n\n"+
			"/profile Name | Role | Project | Bio - set up your profile\n"+
			"/qr - show your QR code\n"+
			"/scan [qr data] - connect with someone\n"+
			"/myconnections - view your connections")
}

func (b *Bot) cmdHelp(chatID int64) {
	b.send(chatID,
		"/profile Name | Role | Project | Bio - set up or update your profile\n"+
			"/qr - show your QR code\n"+
			"/scan [qr data] - scan someone's QR code\n"+
			"/connect [user id] - connect with someone by id\n"+
			"/myconnections - view your connections")
}

// cmdProfile creates or updates the profile from a "Name | Role | Project |
// Bio" line, the same shape the original guided setup accepted.
func (b *Bot) cmdProfile(ctx context.Context, msg *tgbotapi.Message, args string) {
	if args == "" {
		b.send(msg.Chat.ID, "Usage: /profile Name | Role | Project | Bio")
		return
	}

	parts := strings.Split(args, "|")
	if len(parts) != 4 {
		b.send(msg.Chat.ID, "Please use format: Name | Role | Project | Bio")
		return
	}
	name := strings.TrimSpace(parts[0])
	role := strings.TrimSpace(parts[1])
	project := strings.TrimSpace(parts[2])
	bio := strings.TrimSpace(parts[3])

	tgID := msg.From.ID
	var saved *linkupapi.Profile
	if existing := b.profiles.Fetch(ctx, tgID); existing != nil {
		saved = b.profiles.Update(ctx, existing.UserID, linkupapi.UpdateUserPayload{
			Username:    msg.From.UserName,
			DisplayName: name,
			ProjectName: project,
			Role:        role,
			Description: bio,
		})
	} else {
		saved = b.profiles.Create(ctx, linkupapi.CreateUserPayload{
			TgID:        tgID,
			Username:    msg.From.UserName,
			DisplayName: name,
			ProjectName: project,
			Role:        role,
			Description: bio,
		})
	}

	if saved == nil {
		b.send(msg.Chat.ID, "Could not save your profile, please try again later.")
		return
	}
	b.send(msg.Chat.ID, fmt.Sprintf("Profile saved!\n%s | %s | %s\n%s\n\nGet your QR code: /qr",
		saved.DisplayName, saved.Role, saved.ProjectName, saved.Description))
}

// cmdQR sends the user's QR code image with a scannable deep link caption.
func (b *Bot) cmdQR(ctx context.Context, msg *tgbotapi.Message) {
	tgID := msg.From.ID
	profile := b.profiles.Fetch(ctx, tgID)
	if profile == nil {
		b.send(msg.Chat.ID, "Set up your profile first: /profile")
		return
	}

	qrData := fmt.Sprintf("https://t.me/%s?start=user_%d", b.api.Self.UserName, tgID)
	caption := fmt.Sprintf("Your QR code\n\n%s | %s | %s\n\nQR data: %s\n\nShare it with other attendees to connect!",
		profile.DisplayName, profile.Role, profile.ProjectName, qrData)

	photo := tgbotapi.NewPhoto(msg.Chat.ID, tgbotapi.FileURL(b.profiles.QRImageURL(tgID)))
	photo.Caption = caption
	if _, err := b.api.Send(photo); err != nil {
		b.log.Warn().Err(err).Msg("QR photo send failed, falling back to text")
		b.send(msg.Chat.ID, caption)
	}
}

func (b *Bot) cmdScan(ctx context.Context, msg *tgbotapi.Message, args string) {
	if args == "" {
		b.send(msg.Chat.ID,
			"Usage: /scan [QR data]\n\n"+
				"Examples:\n"+
				"/scan https://t.me/linkup_bot?start=user_5094393032\n"+
				"/scan user_5094393032\n"+
				"/scan 5094393032")
		return
	}
	b.connectWith(ctx, msg, args)
}

func (b *Bot) connectWith(ctx context.Context, msg *tgbotapi.Message, qrText string) {
	self := b.profiles.Fetch(ctx, msg.From.ID)
	if self == nil {
		b.send(msg.Chat.ID, "Set up your profile first: /profile")
		return
	}

	connection, err := b.connects.Connect(ctx, self, qrText, connectsservice.ConnectOptions{})
	if err != nil {
		appErr, _ := apperrors.AsAppError(err)
		switch {
		case appErr != nil && appErr.Code == apperrors.ErrCodeConflict:
			b.send(msg.Chat.ID, "You cannot connect with yourself!")
		case appErr != nil && appErr.IsNotFound():
			b.send(msg.Chat.ID, "The user you're trying to connect with hasn't set up their profile yet.")
		case appErr != nil && appErr.Code == apperrors.ErrCodeValidation:
			b.send(msg.Chat.ID, "That doesn't look like a LinkUp QR code.")
		default:
			b.send(msg.Chat.ID, "Could not create the connection, please try again later.")
		}
		return
	}

	other := connection.OtherUser
	b.send(msg.Chat.ID, fmt.Sprintf(
		"Instant connection created!\n\n"+
			"You're now connected with %s\nRole: %s\nProject: %s\n%s\n\n"+
			"Group link: %s\nView all connections: /myconnections",
		other.DisplayName, other.Role, other.ProjectName, other.Description, connection.GroupLink))
}

func (b *Bot) cmdMyConnections(ctx context.Context, msg *tgbotapi.Message) {
	self := b.profiles.Fetch(ctx, msg.From.ID)
	if self == nil {
		b.send(msg.Chat.ID, "Set up your profile first: /profile")
		return
	}

	connections := b.connects.List(ctx, self.UserID)
	if len(connections) == 0 {
		b.send(msg.Chat.ID, "No connections yet. Share your QR code: /qr")
		return
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Your connections (%d):\n\n", len(connections))
	for i, connection := range connections {
		other := connection.OtherUser
		fmt.Fprintf(&sb, "%d. %s | %s | %s\n", i+1, other.DisplayName, other.Role, other.ProjectName)
		if connection.EventName != "" {
			fmt.Fprintf(&sb, "   met at %s\n", connection.EventName)
		}
	}
	b.send(msg.Chat.ID, sb.String())
}
