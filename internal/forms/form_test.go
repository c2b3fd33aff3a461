package forms

import (
	"errors"
	"testing"

	"github.com/mdotsev/yatube/internal/models"
	"github.com/mdotsev/yatube/validators"
	"github.com/stretchr/testify/assert"
)

func TestAddValidationErrors(t *testing.T) {
	f := New(map[string]string{"text": ""})
	f.AddValidationErrors(validators.NewValidator().Validate(&models.PostRequest{Group: "abc"}))

	assert.False(t, f.Valid())
	assert.Equal(t, "This field is required.", f.Error("text"))
	assert.Equal(t, "Select a valid choice.", f.Error("group"))
	assert.Empty(t, f.Error("image"))
}

func TestFirstErrorWins(t *testing.T) {
	f := New(nil)
	assert.True(t, f.Valid())

	f.AddError("username", "first")
	f.AddError("username", "second")
	assert.Equal(t, "first", f.Error("username"))
	assert.Empty(t, f.Get("username"))
}

func TestNonFieldErrors(t *testing.T) {
	f := New(nil)
	f.AddValidationErrors(nil)
	assert.True(t, f.Valid())

	f.AddValidationErrors(errors.New("bad credentials"))
	assert.False(t, f.Valid())
	assert.Equal(t, []string{"bad credentials"}, f.NonFieldErrors)
}
