package http

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dashboard-api/internal/auth"
	"dashboard-api/internal/http/middleware"
	"dashboard-api/internal/model"
	"dashboard-api/internal/repository"
	"dashboard-api/internal/service"
)

const testSecret = "test-secret"

type stubSource struct {
	records map[model.Report][]model.MetricRecord
}

func (s *stubSource) LatestSnapshot(_ context.Context, report model.Report) ([]model.MetricRecord, error) {
	records, ok := s.records[report]
	if !ok {
		return nil, fmt.Errorf("%w: %s", repository.ErrUnknownReport, report)
	}
	return records, nil
}

func (s *stubSource) MonthlySeries(_ context.Context, _ model.Report, _ string, _ int) ([]model.SeriesPoint, error) {
	return nil, nil
}

func (s *stubSource) CountryTrend(_ context.Context, _ int) ([]model.CountryTrendSeries, error) {
	return nil, nil
}

func (s *stubSource) LatestRevenue(_ context.Context) (*model.RevenueSnapshot, error) {
	return &model.RevenueSnapshot{
		SnapshotDate:             "2026-08-01",
		TotalActiveSubscriptions: 120,
	}, nil
}

func (s *stubSource) RevenueSeries(_ context.Context, _ string, _ int) ([]model.SeriesPoint, error) {
	return []model.SeriesPoint{{Month: "Aug 2026", Count: 120}}, nil
}

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()

	count := int64(10)
	source := &stubSource{records: map[model.Report][]model.MetricRecord{
		model.ReportGeography: {{
			SnapshotDate: time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC),
			MetricType:   "active_contracts_by_country",
			EntityID:     "PH",
			Label:        "Philippines",
			Count:        &count,
		}},
	}}

	svc := service.NewReportService(source, zerolog.Nop(), 6, 24, 10)
	handler := NewHandler(svc, zerolog.Nop())
	parser := auth.NewParser(testSecret)
	return NewRouter(handler, middleware.Auth(parser), "test")
}

func token(t *testing.T, role string) string {
	t.Helper()
	claims := auth.Claims{
		UserID: uuid.New(),
		Email:  "user@example.com",
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return signed
}

func do(t *testing.T, router *gin.Engine, path, bearer string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestHealthIsPublic(t *testing.T) {
	w := do(t, newTestRouter(t), "/health", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"ok"`)
}

func TestReportsRequireToken(t *testing.T) {
	w := do(t, newTestRouter(t), "/reports/geography/countries", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestGeographyCountries(t *testing.T) {
	router := newTestRouter(t)

	w := do(t, router, "/reports/geography/countries", token(t, "VIEWER"))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"data"`)
	assert.Contains(t, w.Body.String(), `"Philippines"`)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestRevenueRoutes(t *testing.T) {
	router := newTestRouter(t)

	w := do(t, router, "/reports/revenue", token(t, "VIEWER"))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"total_active_subscriptions":120`)

	w = do(t, router, "/reports/revenue/trend", token(t, "VIEWER"))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"Aug 2026"`)

	w = do(t, router, "/reports/revenue/subscription-trend", token(t, "VIEWER"))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestIndustriesRejectsUnknownOrder(t *testing.T) {
	w := do(t, newTestRouter(t), "/reports/customers/industries?by=revenue", token(t, "VIEWER"))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), `"error"`)
}

func TestExportForbiddenForViewer(t *testing.T) {
	w := do(t, newTestRouter(t), "/reports/geography/export", token(t, "VIEWER"))
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestExportForAdmin(t *testing.T) {
	w := do(t, newTestRouter(t), "/reports/geography/export", token(t, "ADMIN"))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), "geography_snapshot_2026-08-01.xlsx")
	assert.NotEmpty(t, w.Body.Bytes())
}

func TestUnknownReportIs404(t *testing.T) {
	w := do(t, newTestRouter(t), "/reports/bogus/export", token(t, "ADMIN"))
	assert.Equal(t, http.StatusNotFound, w.Code)
}
