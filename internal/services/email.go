package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"

	"github.com/rocjay1/finance-importer/internal/models"
)

// EmailService sends import notifications via the Azure Communication Services REST API.
type EmailService struct {
	endpoint   string
	sender     string
	cred       azcore.TokenCredential
	httpClient *http.Client
}

// NewEmailService creates a new EmailService instance.
// If cred is nil, it defaults to using DefaultAzureCredential.
func NewEmailService(cred azcore.TokenCredential) (*EmailService, error) {
	endpoint := strings.TrimSuffix(os.Getenv("COMMUNICATION_SERVICES_ENDPOINT"), "/")
	if endpoint == "" {
		return nil, fmt.Errorf("COMMUNICATION_SERVICES_ENDPOINT environment variable is required")
	}

	sender := os.Getenv("SENDER_EMAIL")
	if sender == "" {
		return nil, fmt.Errorf("SENDER_EMAIL environment variable is required")
	}

	if cred == nil {
		var err error
		cred, err = newDefaultAzureCredential()
		if err != nil {
			return nil, fmt.Errorf("failed to create default azure credential: %w", err)
		}
	}

	return &EmailService{
		endpoint:   endpoint,
		sender:     sender,
		cred:       cred,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}, nil
}

// ErrNoRecipients is returned when every recipient address is blank.
var ErrNoRecipients = errors.New("no email recipients")

const (
	emailScope      = "https://communication.azure.com//.default"
	emailAPIVersion = "2023-03-31"
)

type emailAddress struct {
	Address string `json:"address"`
}

type emailRecipients struct {
	To []emailAddress `json:"to"`
}

type emailRequest struct {
	SenderAddress string          `json:"senderAddress"`
	Content       EmailMessage    `json:"content"`
	Recipients    emailRecipients `json:"recipients"`
}

// Send delivers a rendered message. Blank and repeated addresses are dropped.
func (s *EmailService) Send(ctx context.Context, to []string, msg EmailMessage) error {
	recipients := normalizeRecipients(to)
	if len(recipients) == 0 {
		return ErrNoRecipients
	}

	token, err := s.cred.GetToken(ctx, policy.TokenRequestOptions{Scopes: []string{emailScope}})
	if err != nil {
		return fmt.Errorf("failed to get access token: %w", err)
	}

	jsonBody, err := json.Marshal(emailRequest{
		SenderAddress: s.sender,
		Content:       msg,
		Recipients:    emailRecipients{To: recipients},
	})
	if err != nil {
		return fmt.Errorf("failed to marshal email request: %w", err)
	}

	url := fmt.Sprintf("%s/emails:send?api-version=%s", s.endpoint, emailAPIVersion)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonBody))
	if err != nil {
		return fmt.Errorf("failed to create http request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token.Token)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send email request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusAccepted {
		bodyBytes, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("email request failed with status %d: %s", resp.StatusCode, string(bodyBytes))
	}

	slog.Info("email accepted", "subject", msg.Subject, "recipients", len(recipients),
		"operation", resp.Header.Get("Operation-Location"))
	return nil
}

// SendImportSummary emails the outcome of a queued import.
func (s *EmailService) SendImportSummary(ctx context.Context, recipients []string, fileName string, summary models.ImportSummary) error {
	return s.Send(ctx, recipients, ImportSummaryEmail(fileName, summary))
}

// SendImportFailure emails the reasons an upload could not be imported.
func (s *EmailService) SendImportFailure(ctx context.Context, recipients []string, fileName string, reasons []string) error {
	return s.Send(ctx, recipients, ImportFailureEmail(fileName, reasons))
}

func normalizeRecipients(to []string) []emailAddress {
	seen := make(map[string]bool, len(to))
	out := make([]emailAddress, 0, len(to))
	for _, addr := range to {
		addr = strings.TrimSpace(addr)
		key := strings.ToLower(addr)
		if addr == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, emailAddress{Address: addr})
	}
	return out
}
