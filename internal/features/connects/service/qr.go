package service

import (
	"net/url"
	"strconv"
	"strings"

	apperrors "github.com/OneAIforWeb3/linkup/internal/common/errors"
)

// ParseQRTarget extracts the target Telegram ID from a scanned QR payload.
// Accepted encodings, all produced by some generation of the QR generator:
//
//	user_<id>
//	https://t.me/<bot>?start=user_<id>
//	eventcrm://user/<id>
//	<id>
func ParseQRTarget(text string) (int64, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return 0, apperrors.NewValidationError("qr", "empty payload")
	}

	if strings.HasPrefix(text, "user_") {
		return parseTargetID(strings.TrimPrefix(text, "user_"))
	}

	if strings.HasPrefix(text, "https://t.me/") || strings.HasPrefix(text, "http://t.me/") {
		parsed, err := url.Parse(text)
		if err != nil {
			return 0, apperrors.NewValidationError("qr", "malformed deep link")
		}
		payload := parsed.Query().Get("start")
		if payload == "" {
			payload = parsed.Query().Get("startapp")
		}
		if !strings.HasPrefix(payload, "user_") {
			return 0, apperrors.NewValidationError("qr", "deep link has no user payload")
		}
		return parseTargetID(strings.TrimPrefix(payload, "user_"))
	}

	if strings.HasPrefix(text, "eventcrm://user/") {
		return parseTargetID(strings.TrimPrefix(text, "eventcrm://user/"))
	}

	return parseTargetID(text)
}

func parseTargetID(raw string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperrors.NewValidationError("qr", "not a user id")
	}
	return id, nil
}
