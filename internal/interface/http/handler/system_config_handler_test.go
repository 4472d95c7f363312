package handler

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/ucardlabs/ucard-admin/internal/domain/entity"
	"github.com/ucardlabs/ucard-admin/internal/http/middleware"
	"github.com/ucardlabs/ucard-admin/internal/pkg/apperror"
	"github.com/ucardlabs/ucard-admin/internal/usecase/sysconfig"
)

type mockConfigService struct {
	mock.Mock
}

func (m *mockConfigService) List(ctx context.Context, systemType string) (*sysconfig.ListOutput, error) {
	args := m.Called(ctx, systemType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*sysconfig.ListOutput), args.Error(1)
}

func (m *mockConfigService) Create(ctx context.Context, in sysconfig.CreateInput) (*entity.SystemConfig, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.SystemConfig), args.Error(1)
}

func (m *mockConfigService) Update(ctx context.Context, in sysconfig.UpdateInput) (*entity.SystemConfig, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.SystemConfig), args.Error(1)
}

func (m *mockConfigService) Delete(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func withAdmin(name string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.ContextAdminKey, name)
		c.Next()
	}
}

func TestSystemConfigHandler_List(t *testing.T) {
	gin.SetMode(gin.TestMode)
	svc := new(mockConfigService)
	r := gin.New()
	r.GET("/api/system-config", NewSystemConfigHandler(svc).List)

	svc.On("List", mock.Anything, "card").Return(&sysconfig.ListOutput{
		Items: []*entity.SystemConfig{{ID: 1, SystemType: "card", ConfigKey: "approval", ConfigValue: "1", Status: 1}},
	}, nil)

	w, env := serve(t, r, http.MethodGet, "/api/system-config?systemType=card", "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"list":[{"id":1,"systemType":"card","configKey":"approval","configValue":"1","status":1,
		"createdAt":null,"updatedAt":null,"updater":"","remark":null}],"systemTypes":[]}`, string(env.Data))
}

func TestSystemConfigHandler_CreateUsesTokenUser(t *testing.T) {
	gin.SetMode(gin.TestMode)
	svc := new(mockConfigService)
	r := gin.New()
	r.POST("/api/system-config", withAdmin("alice"), NewSystemConfigHandler(svc).Create)

	svc.On("Create", mock.Anything, mock.MatchedBy(func(in sysconfig.CreateInput) bool {
		return in.ConfigKey == "approval" && in.ConfigValue == "0" && in.Updater == "alice"
	})).Return(&entity.SystemConfig{ID: 5, ConfigKey: "approval", ConfigValue: "0"}, nil)

	w, env := serve(t, r, http.MethodPost, "/api/system-config",
		`{"systemType":"card","configKey":"approval","configValue":"0","updater":"mallory"}`)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.True(t, env.Success)
	svc.AssertExpectations(t)
}

func TestSystemConfigHandler_UpdateStringID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	svc := new(mockConfigService)
	r := gin.New()
	r.PUT("/api/system-config", NewSystemConfigHandler(svc).Update)

	svc.On("Update", mock.Anything, mock.MatchedBy(func(in sysconfig.UpdateInput) bool {
		return in.ID == 3 && in.ConfigValue != nil && *in.ConfigValue == "1" && in.Status == nil
	})).Return(&entity.SystemConfig{ID: 3, ConfigKey: "approval", ConfigValue: "1"}, nil)

	w, _ := serve(t, r, http.MethodPut, "/api/system-config", `{"id":"3","configValue":"1"}`)

	assert.Equal(t, http.StatusOK, w.Code)
	svc.AssertExpectations(t)
}

func TestSystemConfigHandler_UpdateMissingID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	svc := new(mockConfigService)
	r := gin.New()
	r.PUT("/api/system-config", NewSystemConfigHandler(svc).Update)

	w, env := serve(t, r, http.MethodPut, "/api/system-config", `{"configValue":"1"}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "VALIDATION_ERROR", env.Error.Code)
	svc.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestSystemConfigHandler_DeleteNotFound(t *testing.T) {
	gin.SetMode(gin.TestMode)
	svc := new(mockConfigService)
	r := gin.New()
	r.DELETE("/api/system-config", NewSystemConfigHandler(svc).Delete)

	svc.On("Delete", mock.Anything, int64(9)).Return(apperror.ErrConfigNotFound)

	w, env := serve(t, r, http.MethodDelete, "/api/system-config?id=9", "")

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "NOT_FOUND", env.Error.Code)
}

type fakeDB struct {
	err   error
	stats sql.DBStats
}

func (f *fakeDB) PingContext(ctx context.Context) error { return f.err }
func (f *fakeDB) Stats() sql.DBStats                    { return f.stats }

func TestHealthHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	s := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: s.Addr()})
	defer rdb.Close()

	r := gin.New()
	r.GET("/health", NewHealthHandler(&fakeDB{}, rdb).Health)
	r.GET("/health-down", NewHealthHandler(&fakeDB{err: errors.New("refused")}, nil).Health)

	w := serveRaw(r, "/health")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"redis":"healthy"`)

	w = serveRaw(r, "/health-down")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.NotContains(t, w.Body.String(), "redis")
}

func serveRaw(r *gin.Engine, path string) *httptest.ResponseRecorder {
	req, _ := http.NewRequest(http.MethodGet, path, nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}
