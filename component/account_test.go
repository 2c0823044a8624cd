package component

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/require"
)

func TestWrongCode(t *testing.T) {
	cases := map[string]string{
		"A1B2C3": "B2C3D4",
		"a1b2c3": "B2C3D4",
		"FFFFFF": "000000",
		"09AF":   "1AB0",
		"ZZ12":   "0023",
		"":       "000000",
	}
	for code, want := range cases {
		got := wrongCode(code)
		require.Equal(t, want, got, code)
		require.False(t, strings.EqualFold(code, got), code)
	}
}

func TestSuffixUsername(t *testing.T) {
	require.Equal(t, "tester001_abcde", suffixUsername("tester001", "abcde"))
	long := suffixUsername("a_really_long_username", "abcde")
	require.Len(t, long, maxUsernameLen)
	require.Equal(t, "a_really_long__abcde", long)

	// a 3-byte character straddles the cut and is dropped whole
	multi := suffixUsername("testerüuser中文名字", "abcde")
	require.True(t, utf8.ValidString(multi), multi)
	require.LessOrEqual(t, len(multi), maxUsernameLen)
	require.Equal(t, "testerüuser_abcde", multi)
}

func TestSuffixEmail(t *testing.T) {
	require.Equal(t, "tester+abcde@example.com", suffixEmail("tester@example.com", "abcde"))
	require.Equal(t, "tester+abcde", suffixEmail("tester", "abcde"))
}

func TestNewAccount(t *testing.T) {
	cfg := testConfig(t, "http://auth.example.com")

	acct, err := newAccount(cfg)
	require.NoError(t, err)
	require.Equal(t, "tester001", acct.Username)
	require.Equal(t, "tester@example.com", acct.Email)

	cfg.Account.UniqueSuffix = true
	cfg.Account.NewEmail = "new@example.com"
	a1, err := newAccount(cfg)
	require.NoError(t, err)
	a2, err := newAccount(cfg)
	require.NoError(t, err)
	require.NotEqual(t, a1.Username, a2.Username)
	suffix := strings.TrimPrefix(a1.Username, "tester001_")
	require.Len(t, suffix, suffixLen)
	require.Equal(t, "tester003_"+suffix, a1.NewUsername)
	require.Equal(t, "new+"+suffix+"@example.com", a1.NewEmail)
	require.Equal(t, "tester001", a1.Password)
}
