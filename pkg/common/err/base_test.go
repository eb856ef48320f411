package err

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestError_Format(t *testing.T) {
	tests := []struct {
		name string
		err  *Error
		want string
	}{
		{
			name: "full",
			err:  New("gitexec", "GIT_FAILED", "run", "exit status 128", errors.New("boom")),
			want: "[gitexec][GIT_FAILED]: run: exit status 128: boom",
		},
		{
			name: "no code",
			err:  New("store", "", "wait", "", nil),
			want: "[store]: wait",
		},
		{
			name: "only wrapped",
			err:  &Error{Err: errors.New("inner")},
			want: "inner",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}
}

func TestError_IsMatchesCode(t *testing.T) {
	base := New("repository", "NOT_A_REPOSITORY", "open", "not a repo", nil)
	wrapped := fmt.Errorf("loading: %w", base)

	assert.True(t, errors.Is(wrapped, &Error{Code: "NOT_A_REPOSITORY"}))
	assert.False(t, errors.Is(wrapped, &Error{Code: "PATH_NOT_FOUND"}))
	assert.True(t, IsCode(wrapped, "NOT_A_REPOSITORY"))
	assert.Equal(t, "repository", GetPackage(wrapped))
	assert.Equal(t, "open", GetOp(wrapped))
	assert.Equal(t, "NOT_A_REPOSITORY", GetCode(wrapped))
	assert.Empty(t, GetCode(errors.New("plain")))
}

func TestWrap_Nil(t *testing.T) {
	assert.Nil(t, Wrap(nil, "pkg", "op"))
	assert.Nil(t, WrapWithCode(nil, "pkg", CodeInternal, "op"))
}

func TestError_Context(t *testing.T) {
	e := New("store", CodeInternal, "record", "", nil).WithContext("pending", 3)
	assert.Equal(t, 3, e.GetContext("pending"))
	assert.Nil(t, e.GetContext("missing"))
}
