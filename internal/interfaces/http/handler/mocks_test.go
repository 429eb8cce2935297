package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	catalogapp "github.com/pressureflow/backend/internal/application/catalog"
	"github.com/pressureflow/backend/internal/application/dashboard"
	estimateapp "github.com/pressureflow/backend/internal/application/estimate"
	"github.com/pressureflow/backend/internal/application/identity"
	inventoryapp "github.com/pressureflow/backend/internal/application/inventory"
	partnerapp "github.com/pressureflow/backend/internal/application/partner"
	"github.com/pressureflow/backend/internal/infrastructure/auth"
	"github.com/pressureflow/backend/internal/infrastructure/printing"
	"github.com/pressureflow/backend/internal/interfaces/http/dto"
	"github.com/pressureflow/backend/internal/interfaces/http/middleware"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
	middleware.SetupValidator()
}

// newTestRouter returns an engine with request ids and, when role is not
// empty, an authenticated user with that role.
func newTestRouter(userID uuid.UUID, role string) *gin.Engine {
	r := gin.New()
	r.Use(middleware.RequestID())
	if role != "" {
		r.Use(func(c *gin.Context) {
			claims := &auth.Claims{
				RegisteredClaims: jwt.RegisteredClaims{
					ID:        "jti-test",
					ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
				},
				UserID: userID.String(),
				Role:   role,
			}
			c.Set(middleware.JWTClaimsKey, claims)
			c.Set(middleware.JWTUserIDKey, claims.UserID)
			c.Set(middleware.JWTRoleKey, claims.Role)
			c.Next()
		})
	}
	return r
}

func doRequest(r http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(b)
	default:
		data, _ := json.Marshal(b)
		reader = bytes.NewBuffer(data)
	}
	req := httptest.NewRequest(method, path, reader)
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// decodeResponse parses the envelope and unmarshals data into out when given
func decodeResponse(t *testing.T, w *httptest.ResponseRecorder, out any) dto.Response {
	t.Helper()
	var raw struct {
		dto.Response
		Data json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &raw), w.Body.String())
	if out != nil && len(raw.Data) > 0 {
		require.NoError(t, json.Unmarshal(raw.Data, out))
	}
	return raw.Response
}

// =============================================================================
// Service mocks
// =============================================================================

type mockAuthService struct{ mock.Mock }

func (m *mockAuthService) Register(ctx context.Context, req identity.RegisterRequest) (*identity.RegisterResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.RegisterResult), args.Error(1)
}

func (m *mockAuthService) Login(ctx context.Context, req identity.LoginRequest) (*identity.LoginResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.LoginResult), args.Error(1)
}

func (m *mockAuthService) Logout(ctx context.Context, input identity.LogoutInput) error {
	return m.Called(ctx, input).Error(0)
}

func (m *mockAuthService) GetCurrentUser(ctx context.Context, userID uuid.UUID) (*identity.UserInfo, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.UserInfo), args.Error(1)
}

func (m *mockAuthService) ListUsers(ctx context.Context) ([]identity.UserInfo, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]identity.UserInfo), args.Error(1)
}

type mockCustomerService struct{ mock.Mock }

func (m *mockCustomerService) Create(ctx context.Context, req partnerapp.CreateCustomerRequest) (*partnerapp.CustomerResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*partnerapp.CustomerResponse), args.Error(1)
}

func (m *mockCustomerService) GetByID(ctx context.Context, id uuid.UUID) (*partnerapp.CustomerDetailResponse, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*partnerapp.CustomerDetailResponse), args.Error(1)
}

func (m *mockCustomerService) List(ctx context.Context, filter partnerapp.CustomerListFilter) ([]partnerapp.CustomerResponse, int64, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]partnerapp.CustomerResponse), args.Get(1).(int64), args.Error(2)
}

func (m *mockCustomerService) Update(ctx context.Context, id uuid.UUID, req partnerapp.UpdateCustomerRequest) (*partnerapp.CustomerResponse, error) {
	args := m.Called(ctx, id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*partnerapp.CustomerResponse), args.Error(1)
}

func (m *mockCustomerService) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

type mockCatalogService struct{ mock.Mock }

func (m *mockCatalogService) ListServices(ctx context.Context, includeInactive bool) ([]catalogapp.ServiceResponse, error) {
	args := m.Called(ctx, includeInactive)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]catalogapp.ServiceResponse), args.Error(1)
}

func (m *mockCatalogService) GetService(ctx context.Context, id uuid.UUID) (*catalogapp.ServiceResponse, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalogapp.ServiceResponse), args.Error(1)
}

func (m *mockCatalogService) CreateService(ctx context.Context, req catalogapp.CreateServiceRequest) (*catalogapp.ServiceResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalogapp.ServiceResponse), args.Error(1)
}

func (m *mockCatalogService) UpdateService(ctx context.Context, id uuid.UUID, req catalogapp.UpdateServiceRequest) (*catalogapp.ServiceResponse, error) {
	args := m.Called(ctx, id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalogapp.ServiceResponse), args.Error(1)
}

func (m *mockCatalogService) DeleteService(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockCatalogService) ListUpsells(ctx context.Context, includeInactive bool) ([]catalogapp.UpsellResponse, error) {
	args := m.Called(ctx, includeInactive)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]catalogapp.UpsellResponse), args.Error(1)
}

func (m *mockCatalogService) CreateUpsell(ctx context.Context, req catalogapp.CreateUpsellRequest) (*catalogapp.UpsellResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalogapp.UpsellResponse), args.Error(1)
}

func (m *mockCatalogService) UpdateUpsell(ctx context.Context, id uuid.UUID, req catalogapp.UpdateUpsellRequest) (*catalogapp.UpsellResponse, error) {
	args := m.Called(ctx, id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalogapp.UpsellResponse), args.Error(1)
}

func (m *mockCatalogService) DeleteUpsell(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

type mockEstimateService struct{ mock.Mock }

func (m *mockEstimateService) Create(ctx context.Context, userID uuid.UUID, req estimateapp.CreateEstimateRequest) (*estimateapp.EstimateResponse, error) {
	args := m.Called(ctx, userID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*estimateapp.EstimateResponse), args.Error(1)
}

func (m *mockEstimateService) GetByID(ctx context.Context, id uuid.UUID) (*estimateapp.EstimateDetailResponse, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*estimateapp.EstimateDetailResponse), args.Error(1)
}

func (m *mockEstimateService) List(ctx context.Context, filter estimateapp.EstimateListFilter) ([]estimateapp.EstimateListResponse, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]estimateapp.EstimateListResponse), args.Error(1)
}

func (m *mockEstimateService) Update(ctx context.Context, id uuid.UUID, req estimateapp.UpdateEstimateRequest) (*estimateapp.EstimateResponse, error) {
	args := m.Called(ctx, id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*estimateapp.EstimateResponse), args.Error(1)
}

func (m *mockEstimateService) Sign(ctx context.Context, id uuid.UUID, req estimateapp.SignRequest) (*estimateapp.EstimateResponse, error) {
	args := m.Called(ctx, id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*estimateapp.EstimateResponse), args.Error(1)
}

func (m *mockEstimateService) Complete(ctx context.Context, id uuid.UUID) (*estimateapp.CompletionResponse, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*estimateapp.CompletionResponse), args.Error(1)
}

func (m *mockEstimateService) RenderDocument(ctx context.Context, id uuid.UUID) (*printing.RenderResult, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*printing.RenderResult), args.Error(1)
}

func (m *mockEstimateService) UploadPhoto(ctx context.Context, estimateID uuid.UUID, req estimateapp.UploadPhotoRequest) (*estimateapp.PhotoResponse, error) {
	args := m.Called(ctx, estimateID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*estimateapp.PhotoResponse), args.Error(1)
}

func (m *mockEstimateService) GetPhoto(ctx context.Context, id uuid.UUID) (*estimateapp.PhotoResponse, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*estimateapp.PhotoResponse), args.Error(1)
}

func (m *mockEstimateService) DeletePhoto(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

type mockInventoryService struct{ mock.Mock }

func (m *mockInventoryService) List(ctx context.Context) ([]inventoryapp.ItemResponse, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]inventoryapp.ItemResponse), args.Error(1)
}

func (m *mockInventoryService) GetByID(ctx context.Context, id uuid.UUID) (*inventoryapp.ItemResponse, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*inventoryapp.ItemResponse), args.Error(1)
}

func (m *mockInventoryService) Create(ctx context.Context, req inventoryapp.CreateItemRequest) (*inventoryapp.ItemResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*inventoryapp.ItemResponse), args.Error(1)
}

func (m *mockInventoryService) Update(ctx context.Context, id uuid.UUID, req inventoryapp.UpdateItemRequest) (*inventoryapp.ItemResponse, error) {
	args := m.Called(ctx, id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*inventoryapp.ItemResponse), args.Error(1)
}

func (m *mockInventoryService) Adjust(ctx context.Context, id uuid.UUID, req inventoryapp.AdjustRequest) (*inventoryapp.AdjustResponse, error) {
	args := m.Called(ctx, id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*inventoryapp.AdjustResponse), args.Error(1)
}

func (m *mockInventoryService) Logs(ctx context.Context, id uuid.UUID, limit int) ([]inventoryapp.LogEntryResponse, error) {
	args := m.Called(ctx, id, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]inventoryapp.LogEntryResponse), args.Error(1)
}

func (m *mockInventoryService) LowStock(ctx context.Context) ([]inventoryapp.ItemResponse, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]inventoryapp.ItemResponse), args.Error(1)
}

func (m *mockInventoryService) Export(ctx context.Context, w io.Writer) error {
	args := m.Called(ctx, w)
	if fn, ok := args.Get(0).(func(io.Writer) error); ok {
		return fn(w)
	}
	return args.Error(0)
}

type mockSettingsService struct{ mock.Mock }

func (m *mockSettingsService) GetAll(ctx context.Context) (map[string]string, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]string), args.Error(1)
}

func (m *mockSettingsService) Update(ctx context.Context, values map[string]string) (map[string]string, error) {
	args := m.Called(ctx, values)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]string), args.Error(1)
}

type mockDashboardService struct{ mock.Mock }

func (m *mockDashboardService) Summary(ctx context.Context, isAdmin bool) (*dashboard.Summary, error) {
	args := m.Called(ctx, isAdmin)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dashboard.Summary), args.Error(1)
}

type stubPinger struct{ err error }

func (p stubPinger) Ping() error { return p.err }
