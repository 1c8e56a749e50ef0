package validators

import (
	"fmt"
	"strings"
	"unicode/utf8"

	pkgerrors "github.com/angelmondragon/gridstock/pkg/errors"
)

// RequiredText trims input and rejects it when it is empty or longer than
// maxRunes characters. Input is never shortened.
func RequiredText(field, input string, maxRunes int) (string, error) {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return "", textError(field, "is required")
	}
	if !utf8.ValidString(trimmed) {
		return "", textError(field, "must be valid UTF-8")
	}
	if maxRunes > 0 && utf8.RuneCountInString(trimmed) > maxRunes {
		return "", textError(field, fmt.Sprintf("at most %d characters", maxRunes))
	}
	return trimmed, nil
}

func textError(field, msg string) error {
	return pkgerrors.New(pkgerrors.CodeValidation, "validation failed").
		WithDetails(map[string]string{field: msg})
}
