//go:build integration

package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rmvieira/fundledger-backend/internal/adapter/httpapi"
	"github.com/rmvieira/fundledger-backend/internal/adapter/oracle"
	"github.com/rmvieira/fundledger-backend/internal/adapter/repository/postgres"
	"github.com/rmvieira/fundledger-backend/internal/usecase/history"
	"github.com/rmvieira/fundledger-backend/internal/usecase/ledger"
)

var (
	db     *postgres.DB
	api    http.Handler
	prices map[string]float64
)

// TestMain connects to a real Postgres instance, runs migrations, and wires
// the full stack in-process with a stub quote endpoint standing in for the
// market data provider.
func TestMain(m *testing.M) {
	ctx := context.Background()

	var err error
	db, err = postgres.NewDB(getDBConnectionString())
	if err != nil {
		panic(fmt.Sprintf("Failed to connect to database: %v", err))
	}
	defer db.Close()

	if err := db.Migrate(ctx); err != nil {
		panic(fmt.Sprintf("Failed to run migrations: %v", err))
	}
	if err := truncateAll(ctx); err != nil {
		panic(fmt.Sprintf("Failed to reset tables: %v", err))
	}

	prices = map[string]float64{}
	quoteServer := httptest.NewServer(http.HandlerFunc(serveQuote))
	defer quoteServer.Close()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	fundRepo := postgres.NewFundRepository(db)
	positionRepo := postgres.NewPositionRepository(db)
	valuationRepo := postgres.NewValuationRepository(db)
	operationRepo := postgres.NewOperationRepository(db)
	txManager := postgres.NewTxManager(db)
	quotes := oracle.NewYahooClient(quoteServer.URL, 5*time.Second)

	ledgerService := ledger.NewLedgerService(fundRepo, positionRepo, valuationRepo, operationRepo, quotes, txManager)
	historyService := history.NewHistoryService(fundRepo, valuationRepo, operationRepo)

	srv := httpapi.NewServer(
		httpapi.Config{Port: 0},
		httpapi.NewFundHandler(ledgerService, logger),
		httpapi.NewHistoryHandler(historyService, logger),
		logger,
	)
	api = srv.Handler()

	os.Exit(m.Run())
}

func getDBConnectionString() string {
	if s := os.Getenv("FUNDLEDGER_DB_DSN"); s != "" {
		return s
	}
	return "host=localhost port=5432 user=postgres password=postgres dbname=fundledger_test sslmode=disable"
}

func truncateAll(ctx context.Context) error {
	_, err := db.ExecContext(ctx, "TRUNCATE funds, positions, valuations, operations CASCADE")
	return err
}

// serveQuote mimics the chart endpoint shape the oracle client expects.
func serveQuote(w http.ResponseWriter, r *http.Request) {
	parts := strings.Split(r.URL.Path, "/")
	ticker := parts[len(parts)-1]

	price, ok := prices[ticker]
	if !ok {
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, `{"chart":{"result":null,"error":{"code":"Not Found","description":"no data"}}}`)
		return
	}
	fmt.Fprintf(w, `{"chart":{"result":[{"meta":{"regularMarketPrice":%v}}],"error":null}}`, price)
}

func doRequest(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	rec := httptest.NewRecorder()
	api.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestE2E_FundLifecycle(t *testing.T) {
	prices["VTI"] = 50

	created := doRequest(t, http.MethodPost, "/api/funds", map[string]any{
		"name": "e2e-growth", "initial_cash": "100000",
	})
	require.Equal(t, http.StatusCreated, created.Code, created.Body.String())

	buy := doRequest(t, http.MethodPost, "/api/funds/e2e-growth/buy", map[string]any{
		"ticker": "VTI", "shares": "10",
	})
	require.Equal(t, http.StatusOK, buy.Code, buy.Body.String())
	fund := decode(t, buy)["fund"].(map[string]any)
	assert.Equal(t, "99500", fund["cash"])

	prices["VTI"] = 70
	buyAgain := doRequest(t, http.MethodPost, "/api/funds/e2e-growth/buy", map[string]any{
		"ticker": "VTI", "shares": "10",
	})
	require.Equal(t, http.StatusOK, buyAgain.Code)
	position := decode(t, buyAgain)["position"].(map[string]any)
	assert.Equal(t, "20", position["shares_held"])
	assert.Equal(t, "60", position["avg_purchase_price"])

	comp := doRequest(t, http.MethodGet, "/api/funds/e2e-growth/composition", nil)
	require.Equal(t, http.StatusOK, comp.Code)
	body := decode(t, comp)
	assert.Equal(t, "98800", body["cash"])
	assert.Equal(t, "100200", body["total_value"])

	ops := doRequest(t, http.MethodGet, "/api/funds/e2e-growth/operations", nil)
	require.Equal(t, http.StatusOK, ops.Code)
	assert.Equal(t, float64(3), decode(t, ops)["total"])
}

func TestE2E_DuplicateFundRejected(t *testing.T) {
	first := doRequest(t, http.MethodPost, "/api/funds", map[string]any{
		"name": "e2e-dup", "initial_cash": "1000",
	})
	require.Equal(t, http.StatusCreated, first.Code)

	second := doRequest(t, http.MethodPost, "/api/funds", map[string]any{
		"name": "e2e-dup", "initial_cash": "1000",
	})
	assert.Equal(t, http.StatusConflict, second.Code)
}

func TestE2E_FailedBuyLeavesStateUntouched(t *testing.T) {
	prices["SPY"] = 400

	created := doRequest(t, http.MethodPost, "/api/funds", map[string]any{
		"name": "e2e-atomic", "initial_cash": "100",
	})
	require.Equal(t, http.StatusCreated, created.Code)

	buy := doRequest(t, http.MethodPost, "/api/funds/e2e-atomic/buy", map[string]any{
		"ticker": "SPY", "shares": "1",
	})
	require.Equal(t, http.StatusUnprocessableEntity, buy.Code)

	comp := doRequest(t, http.MethodGet, "/api/funds/e2e-atomic/composition", nil)
	require.Equal(t, http.StatusOK, comp.Code)
	body := decode(t, comp)
	assert.Equal(t, "100", body["cash"])
	assert.Empty(t, body["positions"])

	// Only the CREATE operation should be on record.
	ops := doRequest(t, http.MethodGet, "/api/funds/e2e-atomic/operations", nil)
	assert.Equal(t, float64(1), decode(t, ops)["total"])
}

func TestE2E_ValuationHistoryGrows(t *testing.T) {
	prices["QQQ"] = 300

	created := doRequest(t, http.MethodPost, "/api/funds", map[string]any{
		"name": "e2e-history", "initial_cash": "10000",
	})
	require.Equal(t, http.StatusCreated, created.Code)

	doRequest(t, http.MethodPost, "/api/funds/e2e-history/buy", map[string]any{
		"ticker": "QQQ", "shares": "10",
	})

	v1 := doRequest(t, http.MethodPost, "/api/funds/e2e-history/valuations", nil)
	require.Equal(t, http.StatusCreated, v1.Code)

	prices["QQQ"] = 310
	v2 := doRequest(t, http.MethodPost, "/api/funds/e2e-history/valuations", nil)
	require.Equal(t, http.StatusCreated, v2.Code)
	assert.Equal(t, "10100", decode(t, v2)["total_value"])

	latest := doRequest(t, http.MethodGet, "/api/funds/e2e-history/valuations/latest", nil)
	require.Equal(t, http.StatusOK, latest.Code)
	assert.Equal(t, "10100", decode(t, latest)["total_value"])
}
