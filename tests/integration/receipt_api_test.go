package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	receiptapp "github.com/obra/backend/internal/application/receipt"
	"github.com/obra/backend/internal/domain/receipt"
	"github.com/obra/backend/internal/infrastructure/cache"
	"github.com/obra/backend/internal/infrastructure/event"
	"github.com/obra/backend/internal/infrastructure/persistence"
	"github.com/obra/backend/internal/infrastructure/printing"
	"github.com/obra/backend/internal/interfaces/http/handler"
	"github.com/obra/backend/internal/interfaces/http/middleware"
	"github.com/obra/backend/internal/interfaces/http/router"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// stubPDFRenderer stands in for headless Chrome
type stubPDFRenderer struct{}

func (stubPDFRenderer) Render(_ context.Context, req *printing.RenderRequest) (*printing.RenderResult, error) {
	return &printing.RenderResult{PDFData: []byte("%PDF-1.7 " + req.Title), PageCount: 1}, nil
}

func (stubPDFRenderer) Close() error { return nil }

type apiEnvelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code string `json:"code"`
	} `json:"error"`
}

type apiClient struct {
	t      *testing.T
	engine *gin.Engine
}

func (c apiClient) do(method, path string, body any) (*httptest.ResponseRecorder, apiEnvelope) {
	c.t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(c.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, "/api/v1"+path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	c.engine.ServeHTTP(w, req)

	var env apiEnvelope
	if strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") {
		require.NoError(c.t, json.Unmarshal(w.Body.Bytes(), &env))
	}
	return w, env
}

func decodeData[T any](t *testing.T, env apiEnvelope) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(env.Data, &v))
	return v
}

func setupReceiptAPI(t *testing.T) (apiClient, string) {
	t.Helper()

	testDB := NewTestDB(t)
	redisClient, redisCfg := NewTestRedis(t)
	log := zap.NewNop()

	documents, err := cache.NewDocumentCacheFactory(redisCfg, time.Minute, cache.WithLogger(log)).CreateCache()
	require.NoError(t, err)
	t.Cleanup(func() { _ = documents.Close() })

	bus := event.NewInMemoryEventBus(log)
	bus.Subscribe(cache.NewInvalidationHandler(documents, log))
	bus.Subscribe(event.NewRedisStreamPublisher(redisClient, event.NewReceiptEventSerializer(), log))
	require.NoError(t, bus.Start(context.Background()))

	renderer, err := printing.NewReceiptRenderer()
	require.NoError(t, err)

	storageDir := t.TempDir()
	storage, err := printing.NewFileSystemStorage(&printing.FileSystemStorageConfig{
		BasePath: storageDir,
		BaseURL:  "/files",
		Logger:   log,
	})
	require.NoError(t, err)

	service := receiptapp.NewReceiptService(
		persistence.NewGormReceiptRepository(testDB.DB),
		receipt.NewFactory(receipt.NewRandomNumberGenerator(), time.Now),
		receipt.NewSigner(receipt.NewSHA256Hasher(), time.Now),
		renderer,
		receiptapp.WithDocumentCache(documents),
		receiptapp.WithEventPublisher(bus),
		receiptapp.WithPDFExport(stubPDFRenderer{}, storage),
		receiptapp.WithLogger(log),
	)

	engine := gin.New()
	engine.Use(middleware.RequestID(), middleware.Recovery())
	router.NewRouter(engine).Register(handler.ReceiptRoutes(handler.NewReceiptHandler(service))).Setup()

	return apiClient{t: t, engine: engine}, storageDir
}

func TestReceiptAPI_Lifecycle(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping E2E integration test in short mode")
	}
	gin.SetMode(gin.TestMode)

	client, storageDir := setupReceiptAPI(t)

	// Issue
	w, env := client.do(http.MethodPost, "/receipts", map[string]any{
		"clienteNome":      "Ana Souza",
		"clienteCpfCnpj":   "123.456.789-00",
		"prestadorNome":    "João Pereira",
		"prestadorCpfCnpj": "98765432100",
		"projetoId":        "obra-17",
		"valor":            "1500.50",
		"formaPagamento":   "PIX",
		"descricaoServico": "Projeto arquitetônico residencial",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decodeData[receiptapp.ReceiptResponse](t, env)
	assert.True(t, receipt.IsValidNumber(created.Numero))
	assert.Equal(t, "rascunho", created.Status)
	assert.Equal(t, "/api/v1/receipts/"+created.ID.String(), w.Header().Get("Location"))
	id := created.ID.String()

	// Lookup by number
	w, env = client.do(http.MethodGet, "/receipts/number/"+created.Numero, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, created.ID, decodeData[receiptapp.ReceiptResponse](t, env).ID)

	// Draft document is cached and carries no signature
	w, _ = client.do(http.MethodGet, "/receipts/"+id+"/document", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), created.Numero)
	assert.Contains(t, w.Body.String(), "R$")

	// Verifying a draft is an invalid state
	w, env = client.do(http.MethodGet, "/receipts/"+id+"/verify", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "INVALID_STATE", env.Error.Code)

	// Sign
	w, env = client.do(http.MethodPost, "/receipts/"+id+"/sign", map[string]any{
		"nome":       "João Pereira",
		"cpfCnpj":    "98765432100",
		"assinatura": "data:image/png;base64,iVBORw0KGgo=",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	signed := decodeData[receiptapp.ReceiptResponse](t, env)
	require.NotNil(t, signed.Assinatura)
	assert.Equal(t, "assinado", signed.Status)
	assert.Equal(t, 2, signed.Versao)
	assert.True(t, receipt.IsWellFormedHash(signed.Assinatura.HashDocumento))

	// Signing twice is rejected
	w, env = client.do(http.MethodPost, "/receipts/"+id+"/sign", map[string]any{
		"nome": "João Pereira", "cpfCnpj": "98765432100", "assinatura": "data:image/png;base64,AAAA",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, receipt.CodeAlreadySigned, env.Error.Code)

	// The signed document replaces the cached draft
	w, _ = client.do(http.MethodGet, "/receipts/"+id+"/document", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), signed.Assinatura.HashDocumento)

	// Verify
	w, env = client.do(http.MethodGet, "/receipts/"+id+"/verify", nil)
	require.Equal(t, http.StatusOK, w.Code)
	verified := decodeData[receiptapp.VerifyResponse](t, env)
	assert.True(t, verified.Integro)
	assert.Equal(t, signed.Assinatura.HashDocumento, verified.HashDocumento)

	// PDF export lands in storage
	w, env = client.do(http.MethodPost, "/receipts/"+id+"/pdf", nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	exported := decodeData[receiptapp.ExportResponse](t, env)
	assert.Equal(t, 1, exported.PageCount)
	data, err := os.ReadFile(filepath.Join(storageDir, filepath.FromSlash(exported.Key)))
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF")))

	// Cancel keeps the signature
	w, env = client.do(http.MethodPost, "/receipts/"+id+"/cancel", map[string]any{"motivo": "valor incorreto"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	cancelled := decodeData[receiptapp.ReceiptResponse](t, env)
	assert.Equal(t, "cancelado", cancelled.Status)
	assert.Equal(t, "valor incorreto", cancelled.MotivoCancelamento)
	require.NotNil(t, cancelled.Assinatura)
	assert.Equal(t, signed.Assinatura.HashDocumento, cancelled.Assinatura.HashDocumento)

	w, env = client.do(http.MethodPost, "/receipts/"+id+"/cancel", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, receipt.CodeAlreadyCancelled, env.Error.Code)

	// List by status
	w, env = client.do(http.MethodGet, "/receipts?status=cancelado", nil)
	require.Equal(t, http.StatusOK, w.Code)
	listed := decodeData[[]receiptapp.ReceiptResponse](t, env)
	require.Len(t, listed, 1)
	assert.Equal(t, created.ID, listed[0].ID)
}

func TestReceiptAPI_Validation(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping E2E integration test in short mode")
	}
	gin.SetMode(gin.TestMode)

	client, _ := setupReceiptAPI(t)

	tests := []struct {
		name   string
		method string
		path   string
		body   any
		status int
		code   string
	}{
		{
			name:   "missing required fields",
			method: http.MethodPost,
			path:   "/receipts",
			body:   map[string]any{"valor": "10.00"},
			status: http.StatusBadRequest,
			code:   receipt.CodeInvalidReceiptParams,
		},
		{
			name:   "negative amount",
			method: http.MethodPost,
			path:   "/receipts",
			body: map[string]any{
				"clienteNome": "Ana", "clienteCpfCnpj": "12345678900",
				"prestadorNome": "João", "prestadorCpfCnpj": "98765432100",
				"valor": "-10.00", "descricaoServico": "Serviço",
			},
			status: http.StatusBadRequest,
			code:   receipt.CodeInvalidReceiptParams,
		},
		{
			name:   "unknown receipt",
			method: http.MethodGet,
			path:   "/receipts/7f1c2f0e-3c56-4b8e-9a43-1f0d1b2c3d4e",
			status: http.StatusNotFound,
			code:   "NOT_FOUND",
		},
		{
			name:   "malformed id",
			method: http.MethodGet,
			path:   "/receipts/not-a-uuid",
			status: http.StatusBadRequest,
			code:   "INVALID_ID",
		},
		{
			name:   "invalid status filter",
			method: http.MethodGet,
			path:   "/receipts?status=pago",
			status: http.StatusBadRequest,
			code:   "BAD_REQUEST",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, env := client.do(tt.method, tt.path, tt.body)
			assert.Equal(t, tt.status, w.Code, w.Body.String())
			require.NotNil(t, env.Error)
			assert.Equal(t, tt.code, env.Error.Code)
		})
	}
}
