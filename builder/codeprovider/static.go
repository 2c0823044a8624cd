package codeprovider

import (
	"context"

	"opencsg.com/auth-exerciser/common/errorx"
)

type staticProvider struct {
	code string
}

// NewStaticProvider always answers with code, for backends with a fixed test code and for tests.
func NewStaticProvider(code string) Provider {
	return staticProvider{code: code}
}

func (p staticProvider) ObtainCode(ctx context.Context, email string) (string, error) {
	if p.code == "" {
		return "", errorx.ErrEmptyCode
	}
	return p.code, nil
}
