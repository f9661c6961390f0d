package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHTTPStatus(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{Validation("ID invalide"), http.StatusBadRequest},
		{NotFound("Produit introuvable"), http.StatusNotFound},
		{Conflict("Nom déjà utilisé"), http.StatusConflict},
		{Internal(errors.New("boom"), "Erreur base"), http.StatusInternalServerError},
		{errors.New("non typée"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, HTTPStatus(tc.err), tc.err.Error())
	}
}

func TestKindSurvivesWrapping(t *testing.T) {
	err := fmt.Errorf("commande %s: %w", "abc", NotFound("Commande introuvable"))

	assert.True(t, Is(err, KindNotFound))
	assert.Equal(t, "Commande introuvable", Message(err))
}

func TestInternalHidesCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := Internal(cause, "Erreur lecture commandes")

	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "connection refused")
	assert.Equal(t, "Erreur interne du serveur", Message(err))
}
