package validators

import (
	"errors"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/mdotsev/yatube/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateSignup(t *testing.T) {
	v := NewValidator()

	valid := models.SignupRequest{Username: "leo.tolstoy+1@x", Password1: "war-and-peace", Password2: "war-and-peace"}
	assert.NoError(t, v.Validate(&valid))

	invalid := models.SignupRequest{Username: "leo tolstoy", Email: "not-an-email", Password1: "short", Password2: "other"}
	err := v.Validate(&invalid)
	require.Error(t, err)

	var verrs validator.ValidationErrors
	require.True(t, errors.As(err, &verrs))
	fields := map[string]string{}
	for _, fe := range verrs {
		fields[fe.Field()] = fe.Tag()
	}
	assert.Equal(t, map[string]string{
		"username":  "username",
		"email":     "email",
		"password1": "min",
		"password2": "eqfield",
	}, fields)
}

func TestValidateGroupSlug(t *testing.T) {
	v := NewValidator()
	assert.NoError(t, v.Validate(&models.CreateGroupRequest{Title: "Cats", Slug: "cats_and-dogs"}))
	assert.Error(t, v.Validate(&models.CreateGroupRequest{Title: "Cats", Slug: "cats and dogs"}))
	assert.Error(t, v.Validate(&models.CreateGroupRequest{Slug: "cats"}))
}
