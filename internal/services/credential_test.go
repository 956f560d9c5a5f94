package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsLocal(t *testing.T) {
	tests := map[string]bool{
		"http://127.0.0.1:10002/devstoreaccount1":      true,
		"https://localhost:10000/devstoreaccount1":     true,
		"https://azurite:10001/devstoreaccount1":       true,
		"https://myaccount.table.core.windows.net":     false,
		"https://myaccount.blob.core.windows.net/path": false,
		"::not a url": false,
	}

	for in, want := range tests {
		assert.Equal(t, want, isLocal(in), in)
	}
}

func TestGetAzuriteCredentials(t *testing.T) {
	t.Setenv("AZURITE_ACCOUNT_NAME", "")
	t.Setenv("AZURITE_ACCOUNT_KEY", "")
	name, key := getAzuriteCredentials()
	assert.Equal(t, azuriteAccountName, name)
	assert.Equal(t, azuriteAccountKey, key)

	t.Setenv("AZURITE_ACCOUNT_NAME", "acct")
	t.Setenv("AZURITE_ACCOUNT_KEY", "a2V5")
	name, key = getAzuriteCredentials()
	assert.Equal(t, "acct", name)
	assert.Equal(t, "a2V5", key)
}
