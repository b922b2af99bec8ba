package errorx

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWrapKeepsCause(t *testing.T) {
	root := errors.New("duplicate entry")
	err := Wrap(root, CodeConflict, "昵称已存在")

	assert.ErrorIs(t, err, root)
	assert.Equal(t, "昵称已存在: duplicate entry", err.Error())
	assert.Equal(t, CodeConflict, GetCode(fmt.Errorf("join: %w", err)))
	assert.True(t, IsConflict(err))
}

func TestGetCodeDefaultsToServerBusy(t *testing.T) {
	assert.Equal(t, CodeServerBusy, GetCode(errors.New("boom")))
}

func TestIsNotFound(t *testing.T) {
	assert.True(t, IsNotFound(New(CodeNotFound, "房间不存在")))
	assert.True(t, IsNotFound(errors.New("record not found")))
	assert.False(t, IsNotFound(New(CodeBadRequest, "你不在房间内")))
	assert.False(t, IsNotFound(nil))
}

func TestHTTPStatus(t *testing.T) {
	cases := map[int]int{
		CodeSuccess:      http.StatusOK,
		CodeInvalidParam: http.StatusBadRequest,
		CodeConflict:     http.StatusBadRequest,
		CodeBadRequest:   http.StatusBadRequest,
		CodeUnauthorized: http.StatusUnauthorized,
		CodeForbidden:    http.StatusForbidden,
		CodeNotFound:     http.StatusNotFound,
		CodeDBError:      http.StatusInternalServerError,
		CodeServerBusy:   http.StatusInternalServerError,
	}
	for code, want := range cases {
		assert.Equal(t, want, HTTPStatus(code), "code %d", code)
	}
}
