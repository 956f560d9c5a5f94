package services

import (
	"log/slog"
	"net/url"
	"os"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
)

const (
	// Standard Azurite account name and key
	azuriteAccountName = "devstoreaccount1"
	azuriteAccountKey  = "Eby8vdM02xNOcqFlqUwJPLlmEtlCDXJ1OUzFT50uSRZ6IFsuFq2UVErCz4I6tq/K1SZFPTOtr/KBHBeksoGMGw=="
)

// isLocal reports whether a storage endpoint points at a local emulator:
// plain http, or a loopback host.
func isLocal(serviceURL string) bool {
	u, err := url.Parse(serviceURL)
	if err != nil {
		return false
	}
	if u.Scheme == "http" {
		return true
	}
	switch u.Hostname() {
	case "localhost", "127.0.0.1", "::1", "azurite":
		return true
	}
	return false
}

// getAzuriteCredentials returns the emulator account, overridable with
// AZURITE_ACCOUNT_NAME and AZURITE_ACCOUNT_KEY.
func getAzuriteCredentials() (string, string) {
	return envOr("AZURITE_ACCOUNT_NAME", azuriteAccountName), envOr("AZURITE_ACCOUNT_KEY", azuriteAccountKey)
}

// newDefaultAzureCredential creates a new DefaultAzureCredential. When
// AZURE_CLIENT_ID is set it selects that user-assigned managed identity.
func newDefaultAzureCredential() (azcore.TokenCredential, error) {
	opts := &azidentity.DefaultAzureCredentialOptions{}
	if id := os.Getenv("AZURE_CLIENT_ID"); id != "" {
		slog.Info("using default Azure credentials", "client_id", id)
	} else {
		slog.Info("using default Azure credentials")
	}
	return azidentity.NewDefaultAzureCredential(opts)
}
