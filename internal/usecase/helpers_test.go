package usecase

import (
	"testing"

	"app/internal/domain/model"
	"app/internal/permission"

	"github.com/stretchr/testify/assert"
)

func clientActor(id int64) permission.Actor {
	return permission.Actor{ID: id, Role: model.RoleClient, Authenticated: true}
}

func adminActor(id int64) permission.Actor {
	return permission.Actor{ID: id, Role: model.RoleAdmin, Authenticated: true}
}

// usecase.Errorのstatus/codeをまとめて検証する
func assertUsecaseError(t *testing.T, err error, status int, code string) {
	t.Helper()
	assert.Error(t, err)
	ue, ok := AsError(err)
	if assert.True(t, ok, "expected *usecase.Error, got %v", err) {
		assert.Equal(t, status, ue.Status)
		assert.Equal(t, code, ue.Code)
	}
}
