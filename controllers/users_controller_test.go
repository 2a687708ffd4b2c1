package controllers

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddressPosition(t *testing.T) {
	idx, oerr := addressPosition("0", 2)
	require.Nil(t, oerr)
	assert.Equal(t, 0, idx)

	idx, oerr = addressPosition("1", 2)
	require.Nil(t, oerr)
	assert.Equal(t, 1, idx)

	_, oerr = addressPosition("2", 2)
	require.NotNil(t, oerr)
	assert.Equal(t, http.StatusNotFound, oerr.Status)

	_, oerr = addressPosition("-1", 2)
	require.NotNil(t, oerr)
	assert.Equal(t, http.StatusBadRequest, oerr.Status)

	_, oerr = addressPosition("abc", 2)
	require.NotNil(t, oerr)
	assert.Equal(t, http.StatusBadRequest, oerr.Status)

	_, oerr = addressPosition("0", 0)
	require.NotNil(t, oerr)
	assert.Equal(t, http.StatusNotFound, oerr.Status)
}
