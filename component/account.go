package component

import (
	"fmt"
	"strings"
	"unicode/utf8"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"opencsg.com/auth-exerciser/common/config"
)

const (
	maxUsernameLen = 20
	suffixAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"
	suffixLen      = 5
	hexDigits      = "0123456789ABCDEF"
)

// account is the identity a run registers or logs in with.
type account struct {
	Email       string
	Username    string
	Password    string
	NewUsername string
	NewEmail    string
}

// newAccount takes the configured account and, with unique suffixes enabled, makes the usernames and
// emails unused ones by appending the same random suffix to each of them.
func newAccount(config *config.Config) (account, error) {
	acct := account{
		Email:       config.Account.Email,
		Username:    config.Account.Username,
		Password:    config.Account.Password,
		NewUsername: config.Account.NewUsername,
		NewEmail:    config.Account.NewEmail,
	}
	if !config.Account.UniqueSuffix {
		return acct, nil
	}
	suffix, err := gonanoid.Generate(suffixAlphabet, suffixLen)
	if err != nil {
		return acct, fmt.Errorf("failed to generate account suffix: %w", err)
	}
	acct.Email = suffixEmail(acct.Email, suffix)
	acct.Username = suffixUsername(acct.Username, suffix)
	if acct.NewUsername != "" {
		acct.NewUsername = suffixUsername(acct.NewUsername, suffix)
	}
	if acct.NewEmail != "" {
		acct.NewEmail = suffixEmail(acct.NewEmail, suffix)
	}
	return acct, nil
}

// suffixUsername appends suffix and cuts the base so the result stays within the backend's length limit.
// The cut never splits a multi-byte character.
func suffixUsername(username, suffix string) string {
	maxBase := maxUsernameLen - len(suffix) - 1
	if len(username) > maxBase {
		for maxBase > 0 && !utf8.RuneStart(username[maxBase]) {
			maxBase--
		}
		username = username[:maxBase]
	}
	return username + "_" + suffix
}

// suffixEmail uses plus addressing, so mail still lands in the configured mailbox.
func suffixEmail(email, suffix string) string {
	at := strings.LastIndex(email, "@")
	if at < 0 {
		return email + "+" + suffix
	}
	return email[:at] + "+" + suffix + email[at:]
}

func newRunID() (string, error) {
	id, err := gonanoid.New()
	if err != nil {
		return "", fmt.Errorf("failed to generate run id: %w", err)
	}
	return id, nil
}

// wrongCode derives a code that never equals code: every hex digit is shifted by one, anything else
// becomes 0. Codes are compared case-insensitively by the backend, so the result is upper case.
func wrongCode(code string) string {
	if code == "" {
		return "000000"
	}
	var b strings.Builder
	for _, r := range strings.ToUpper(code) {
		i := strings.IndexRune(hexDigits, r)
		if i < 0 {
			b.WriteByte('0')
			continue
		}
		b.WriteByte(hexDigits[(i+1)%len(hexDigits)])
	}
	return b.String()
}
