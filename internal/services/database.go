package services

import (
	"cmp"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/data/aztables"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/rocjay1/finance-importer/internal/models"
)

// ErrNotFound is returned when an entity does not exist.
var ErrNotFound = errors.New("not found")

// DatabaseService handles interactions with Azure Table Storage.
type DatabaseService struct {
	serviceClient     *aztables.ServiceClient
	transactionsTable string
	holdingsTable     string
	rulesTable        string
	now               func() time.Time
}

// NewDatabaseService creates a new DatabaseService instance.
func NewDatabaseService() (*DatabaseService, error) {
	tableURL := os.Getenv("TABLE_SERVICE_URL")
	if tableURL == "" {
		return nil, fmt.Errorf("TABLE_SERVICE_URL environment variable is required")
	}

	transactionsTable := envOr("TRANSACTIONS_TABLE", "transactions")
	holdingsTable := envOr("HOLDINGS_TABLE", "holdings")
	rulesTable := envOr("RULES_TABLE", "rules")

	var client *aztables.ServiceClient

	// Check if running locally with Azurite (http endpoint)
	if isLocal(tableURL) {
		slog.Info("using Azurite credentials for database service")
		name, key := getAzuriteCredentials()
		cred, err := aztables.NewSharedKeyCredential(name, key)
		if err != nil {
			return nil, fmt.Errorf("failed to create shared key credential: %w", err)
		}
		client, err = aztables.NewServiceClientWithSharedKey(tableURL, cred, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create table service client with shared key: %w", err)
		}
	} else {
		slog.Info("using default Azure credentials for database service")
		cred, err := newDefaultAzureCredential()
		if err != nil {
			return nil, fmt.Errorf("failed to create default azure credential: %w", err)
		}
		client, err = aztables.NewServiceClient(tableURL, cred, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create table service client: %w", err)
		}
	}

	svc := &DatabaseService{
		serviceClient:     client,
		transactionsTable: transactionsTable,
		holdingsTable:     holdingsTable,
		rulesTable:        rulesTable,
		now:               time.Now,
	}

	if err := svc.CreateTables(context.Background()); err != nil {
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	slog.Info("database service initialized successfully",
		"table_url", tableURL,
		"transactions_table", transactionsTable,
		"holdings_table", holdingsTable,
		"rules_table", rulesTable,
	)
	return svc, nil
}

// CreateTables ensures all required tables exist in Azure Table Storage.
func (s *DatabaseService) CreateTables(ctx context.Context) error {
	tables := []string{
		s.transactionsTable,
		s.holdingsTable,
		s.rulesTable,
	}

	for _, tableName := range tables {
		_, err := s.serviceClient.CreateTable(ctx, tableName, nil)
		if err != nil {
			if hasErrorCode(err, "TableAlreadyExists") {
				continue
			}
			return fmt.Errorf("failed to create table %s: %w", tableName, err)
		}
	}
	return nil
}

func (s *DatabaseService) getClient(tableName string) *aztables.Client {
	return s.serviceClient.NewClient(tableName)
}

// listPartition returns every entity in a partition, decoded to maps.
func (s *DatabaseService) listPartition(ctx context.Context, tableName, partitionKey string) ([]map[string]any, error) {
	filter := "PartitionKey eq " + odataString(partitionKey)
	return s.list(ctx, tableName, &filter)
}

func (s *DatabaseService) list(ctx context.Context, tableName string, filter *string) ([]map[string]any, error) {
	client := s.getClient(tableName)
	pager := client.NewListEntitiesPager(&aztables.ListEntitiesOptions{
		Filter: filter,
	})

	var out []map[string]any
	for pager.More() {
		resp, err := pager.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list entities in %s: %w", tableName, err)
		}
		for _, entity := range resp.Entities {
			var parsed map[string]any
			if err := json.Unmarshal(entity, &parsed); err != nil {
				continue
			}
			out = append(out, parsed)
		}
	}
	return out, nil
}

// --- transactions ---

// TransactionPartition returns the partition key for a user's transactions in the month of date.
func TransactionPartition(userID string, date time.Time) string {
	if date.IsZero() {
		return userID + "_unknown"
	}
	return fmt.Sprintf("%s_%s", userID, date.Format("2006-01"))
}

// AddTransaction stores a single transaction and returns its ID.
func (s *DatabaseService) AddTransaction(ctx context.Context, userID string, tx models.Transaction) (string, error) {
	if tx.ID == "" {
		tx.ID = uuid.NewString()
	}

	entity := transactionEntity(TransactionPartition(userID, tx.Date), tx, s.now())
	entityJSON, err := json.Marshal(entity)
	if err != nil {
		return "", fmt.Errorf("failed to marshal transaction: %w", err)
	}

	if _, err := s.getClient(s.transactionsTable).AddEntity(ctx, entityJSON, nil); err != nil {
		return "", fmt.Errorf("failed to add transaction: %w", err)
	}
	return tx.ID, nil
}

// ListTransactions returns a user's transactions for a month (YYYY-MM), newest first.
func (s *DatabaseService) ListTransactions(ctx context.Context, userID, month string) ([]models.Transaction, error) {
	entities, err := s.listPartition(ctx, s.transactionsTable, fmt.Sprintf("%s_%s", userID, month))
	if err != nil {
		return nil, err
	}

	txs := make([]models.Transaction, 0, len(entities))
	for _, e := range entities {
		txs = append(txs, parseTransaction(e))
	}
	slices.SortStableFunc(txs, func(a, b models.Transaction) int {
		return b.Date.Compare(a.Date)
	})
	return txs, nil
}

func transactionEntity(partitionKey string, tx models.Transaction, importedAt time.Time) map[string]any {
	return map[string]any{
		"PartitionKey": partitionKey,
		"RowKey":       tx.ID,
		"Type":         string(tx.Type),
		"Amount":       tx.Amount.String(),
		"Source":       tx.Source,
		"Category":     string(tx.Category),
		"Date":         tx.Date.Format(time.RFC3339),
		"Description":  tx.Description,
		"ImportedAt":   importedAt.Format(time.RFC3339),
	}
}

func parseTransaction(e map[string]any) models.Transaction {
	return models.Transaction{
		ID:          getString(e, "RowKey"),
		Type:        models.TransactionType(getString(e, "Type")),
		Amount:      getDecimal(e, "Amount"),
		Source:      getString(e, "Source"),
		Category:    models.Category(getString(e, "Category")),
		Date:        getTime(e, "Date"),
		Description: getString(e, "Description"),
	}
}

// --- rules ---

// ListRules returns a user's rules in evaluation order.
func (s *DatabaseService) ListRules(ctx context.Context, userID string) ([]models.Rule, error) {
	entities, err := s.listPartition(ctx, s.rulesTable, userID)
	if err != nil {
		return nil, err
	}

	ruleList := make([]models.Rule, 0, len(entities))
	for _, e := range entities {
		ruleList = append(ruleList, parseRule(e))
	}
	SortRules(ruleList)
	return ruleList, nil
}

// SortRules orders rules by position, then ID.
func SortRules(ruleList []models.Rule) {
	slices.SortStableFunc(ruleList, func(a, b models.Rule) int {
		return cmp.Or(cmp.Compare(a.Position, b.Position), cmp.Compare(a.ID, b.ID))
	})
}

// SaveRule upserts a rule. New rules get an ID and are appended after the
// user's existing rules unless a position is given.
func (s *DatabaseService) SaveRule(ctx context.Context, userID string, rule models.Rule) (models.Rule, error) {
	if rule.ID == "" {
		rule.ID = uuid.NewString()
		if rule.Position == 0 {
			existing, err := s.ListRules(ctx, userID)
			if err != nil {
				return models.Rule{}, err
			}
			rule.Position = nextPosition(existing)
		}
	}

	entityJSON, err := json.Marshal(ruleEntity(userID, rule))
	if err != nil {
		return models.Rule{}, fmt.Errorf("failed to marshal rule: %w", err)
	}

	_, err = s.getClient(s.rulesTable).UpsertEntity(ctx, entityJSON, &aztables.UpsertEntityOptions{
		UpdateMode: aztables.UpdateModeReplace,
	})
	if err != nil {
		return models.Rule{}, fmt.Errorf("failed to save rule: %w", err)
	}
	return rule, nil
}

// DeleteRule removes a rule by ID.
func (s *DatabaseService) DeleteRule(ctx context.Context, userID, id string) error {
	_, err := s.getClient(s.rulesTable).DeleteEntity(ctx, userID, id, nil)
	if err != nil {
		if hasErrorCode(err, "ResourceNotFound") {
			return ErrNotFound
		}
		return fmt.Errorf("failed to delete rule: %w", err)
	}
	return nil
}

func nextPosition(existing []models.Rule) int {
	next := 1
	for _, r := range existing {
		if r.Position >= next {
			next = r.Position + 1
		}
	}
	return next
}

func ruleEntity(userID string, r models.Rule) map[string]any {
	return map[string]any{
		"PartitionKey": userID,
		"RowKey":       r.ID,
		"Pattern":      r.Pattern,
		"MatchType":    string(r.MatchType),
		"Type":         string(r.Type),
		"Category":     string(r.Category),
		"Position":     r.Position,
	}
}

func parseRule(e map[string]any) models.Rule {
	return models.Rule{
		ID:        getString(e, "RowKey"),
		Pattern:   getString(e, "Pattern"),
		MatchType: models.MatchType(getString(e, "MatchType")),
		Type:      models.TransactionType(getString(e, "Type")),
		Category:  models.Category(getString(e, "Category")),
		Position:  getInt(e, "Position"),
	}
}

// --- holdings ---

// ListHoldings returns a user's holdings.
func (s *DatabaseService) ListHoldings(ctx context.Context, userID string) ([]models.Holding, error) {
	entities, err := s.listPartition(ctx, s.holdingsTable, userID)
	if err != nil {
		return nil, err
	}
	return parseHoldings(entities), nil
}

// ListAllHoldings returns every user's holdings. Used by the quote refresh.
func (s *DatabaseService) ListAllHoldings(ctx context.Context) ([]models.Holding, error) {
	entities, err := s.list(ctx, s.holdingsTable, nil)
	if err != nil {
		return nil, err
	}
	return parseHoldings(entities), nil
}

// AddHolding stores a new holding and returns its ID.
func (s *DatabaseService) AddHolding(ctx context.Context, userID string, h models.Holding) (string, error) {
	if h.ID == "" {
		h.ID = uuid.NewString()
	}
	h.UserID = userID
	h.UpdatedAt = s.now().UTC()

	entityJSON, err := json.Marshal(holdingEntity(h))
	if err != nil {
		return "", fmt.Errorf("failed to marshal holding: %w", err)
	}

	if _, err := s.getClient(s.holdingsTable).AddEntity(ctx, entityJSON, nil); err != nil {
		return "", fmt.Errorf("failed to add holding: %w", err)
	}
	return h.ID, nil
}

// MergeHolding folds incoming into an existing holding. The update is
// conditional on the entity's ETag.
func (s *DatabaseService) MergeHolding(ctx context.Context, userID, existingID string, incoming models.Holding) error {
	client := s.getClient(s.holdingsTable)

	resp, err := client.GetEntity(ctx, userID, existingID, nil)
	if err != nil {
		if hasErrorCode(err, "ResourceNotFound") {
			return ErrNotFound
		}
		return fmt.Errorf("failed to get holding %s: %w", existingID, err)
	}

	var parsed map[string]any
	if err := json.Unmarshal(resp.Value, &parsed); err != nil {
		return fmt.Errorf("failed to decode holding %s: %w", existingID, err)
	}

	merged := MergeHoldings(parseHolding(parsed), incoming)
	merged.UpdatedAt = s.now().UTC()

	entityJSON, err := json.Marshal(holdingEntity(merged))
	if err != nil {
		return fmt.Errorf("failed to marshal holding: %w", err)
	}

	etag := resp.ETag
	_, err = client.UpdateEntity(ctx, entityJSON, &aztables.UpdateEntityOptions{
		IfMatch:    &etag,
		UpdateMode: aztables.UpdateModeReplace,
	})
	if err != nil {
		return fmt.Errorf("failed to update holding %s: %w", existingID, err)
	}
	return nil
}

// MergeHoldings sums quantities and takes the quantity-weighted average price.
// The existing holding keeps its ID, symbol and owner; a non-zero incoming
// current price replaces the stored one.
func MergeHoldings(existing, incoming models.Holding) models.Holding {
	merged := existing
	total := existing.Quantity.Add(incoming.Quantity)
	merged.Quantity = total

	if total.IsPositive() {
		merged.AvgPrice = existing.Invested().Add(incoming.Invested()).DivRound(total, 4)
	}
	if !incoming.CurrentPrice.IsZero() {
		merged.CurrentPrice = incoming.CurrentPrice
	}
	return merged
}

// UpdateHoldingPrice sets the current price of a holding.
func (s *DatabaseService) UpdateHoldingPrice(ctx context.Context, userID, id string, price decimal.Decimal) error {
	entity := map[string]any{
		"PartitionKey": userID,
		"RowKey":       id,
		"CurrentPrice": price.String(),
		"UpdatedAt":    s.now().UTC().Format(time.RFC3339),
	}
	entityJSON, err := json.Marshal(entity)
	if err != nil {
		return fmt.Errorf("failed to marshal price update: %w", err)
	}

	_, err = s.getClient(s.holdingsTable).UpdateEntity(ctx, entityJSON, &aztables.UpdateEntityOptions{
		UpdateMode: aztables.UpdateModeMerge,
	})
	if err != nil {
		if hasErrorCode(err, "ResourceNotFound") {
			return ErrNotFound
		}
		return fmt.Errorf("failed to update price for holding %s: %w", id, err)
	}
	return nil
}

func holdingEntity(h models.Holding) map[string]any {
	return map[string]any{
		"PartitionKey": h.UserID,
		"RowKey":       h.ID,
		"Symbol":       h.Symbol,
		"Quantity":     h.Quantity.String(),
		"AvgPrice":     h.AvgPrice.String(),
		"CurrentPrice": h.CurrentPrice.String(),
		"UpdatedAt":    h.UpdatedAt.Format(time.RFC3339),
	}
}

func parseHoldings(entities []map[string]any) []models.Holding {
	out := make([]models.Holding, 0, len(entities))
	for _, e := range entities {
		out = append(out, parseHolding(e))
	}
	return out
}

func parseHolding(e map[string]any) models.Holding {
	return models.Holding{
		ID:           getString(e, "RowKey"),
		UserID:       getString(e, "PartitionKey"),
		Symbol:       getString(e, "Symbol"),
		Quantity:     getDecimal(e, "Quantity"),
		AvgPrice:     getDecimal(e, "AvgPrice"),
		CurrentPrice: getDecimal(e, "CurrentPrice"),
		UpdatedAt:    getTime(e, "UpdatedAt"),
	}
}

// --- entity helpers ---

func getString(e map[string]any, key string) string {
	if v, ok := e[key].(string); ok {
		return v
	}
	return ""
}

// getDecimal accepts both string and numeric columns.
func getDecimal(e map[string]any, key string) decimal.Decimal {
	switch v := e[key].(type) {
	case string:
		d, err := decimal.NewFromString(v)
		if err != nil {
			return decimal.Zero
		}
		return d
	case float64:
		return decimal.NewFromFloat(v)
	}
	return decimal.Zero
}

func getInt(e map[string]any, key string) int {
	switch v := e[key].(type) {
	case float64:
		return int(v)
	case string:
		var i int
		fmt.Sscanf(v, "%d", &i)
		return i
	}
	return 0
}

func getTime(e map[string]any, key string) time.Time {
	t, err := time.Parse(time.RFC3339, getString(e, key))
	if err != nil {
		return time.Time{}
	}
	return t
}

// odataString quotes a value for use in a table filter.
func odataString(v string) string {
	return "'" + strings.ReplaceAll(v, "'", "''") + "'"
}

func hasErrorCode(err error, code string) bool {
	var azErr *azcore.ResponseError
	return errors.As(err, &azErr) && azErr.ErrorCode == code
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
