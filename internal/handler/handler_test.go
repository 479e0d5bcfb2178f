package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"content-pipeline/internal/llm"
	"content-pipeline/internal/middleware"
	"content-pipeline/internal/mocks"
	"content-pipeline/internal/models"
	"content-pipeline/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testUserID int64 = 1

func setupRouter(t *testing.T) (*gin.Engine, *mocks.MockPipelineService, *mocks.MockSettingsService) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	pipeline := mocks.NewMockPipelineService(t)
	settings := mocks.NewMockSettingsService(t)
	router := gin.New()
	NewHandler(pipeline, settings, zap.NewNop()).RegisterRoutes(router, middleware.UserAuth("", testUserID, zap.NewNop()))
	return router, pipeline, settings
}

func doRequest(router *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		data, _ := json.Marshal(b)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) models.ErrorResponse {
	t.Helper()
	var resp models.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestCreateTask(t *testing.T) {
	router, pipeline, _ := setupRouter(t)
	task := &models.Task{ID: uuid.New(), UserID: testUserID, Topic: "EV market trends", Requirements: "cover pricing", Status: models.TaskStatusProcessing, CreatedAt: time.Now()}

	pipeline.On("CreateTask", mock.Anything, service.CreateTaskInput{
		UserID:       testUserID,
		Topic:        "EV market trends",
		SourceURL:    "https://example.com/report",
		Requirements: "cover pricing",
		Provider:     "gemini",
	}).Return(task, nil).Once()

	w := doRequest(router, http.MethodPost, "/api/tasks", map[string]string{
		"topic":        "EV market trends",
		"sourceUrl":    "https://example.com/report",
		"requirements": "cover pricing",
		"provider":     "gemini",
	})

	assert.Equal(t, http.StatusAccepted, w.Code)
	var got map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, task.ID.String(), got["id"])
	assert.Equal(t, "processing", got["status"])
	assert.Equal(t, "cover pricing", got["requirements"])
}

func TestCreateTask_Errors(t *testing.T) {
	tests := []struct {
		name     string
		svcErr   error
		wantCode int
		wantErr  string
	}{
		{"validation", models.NewValidationError("topic", "is required"), http.StatusBadRequest, models.ErrCodeValidation},
		{"unknown provider", &llm.UnknownProviderError{Name: "mistral"}, http.StatusBadRequest, models.ErrCodeUnknownProvider},
		{"internal", errors.New("db down"), http.StatusInternalServerError, models.ErrCodeInternal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router, pipeline, _ := setupRouter(t)
			pipeline.On("CreateTask", mock.Anything, mock.Anything).Return(nil, tt.svcErr).Once()

			w := doRequest(router, http.MethodPost, "/api/tasks", map[string]string{"topic": "t"})
			assert.Equal(t, tt.wantCode, w.Code)
			assert.Equal(t, tt.wantErr, decodeError(t, w).Code)
		})
	}
}

func TestCreateTask_MalformedJSON(t *testing.T) {
	router, _, _ := setupRouter(t)

	w := doRequest(router, http.MethodPost, "/api/tasks", "{not json")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, models.ErrCodeBadRequest, decodeError(t, w).Code)
}

func TestListTasks_EmptyIsArray(t *testing.T) {
	router, pipeline, _ := setupRouter(t)
	pipeline.On("ListTasks", mock.Anything, testUserID).Return(nil, nil).Once()

	w := doRequest(router, http.MethodGet, "/api/tasks", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, "[]", w.Body.String())
}

func TestGetTask(t *testing.T) {
	router, pipeline, _ := setupRouter(t)
	id := uuid.New()
	pipeline.On("GetTask", mock.Anything, id).Return(nil, models.ErrTaskNotFound).Once()

	w := doRequest(router, http.MethodGet, "/api/tasks/"+id.String(), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, models.ErrCodeNotFound, decodeError(t, w).Code)

	w = doRequest(router, http.MethodGet, "/api/tasks/42", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUpdateTaskStatus(t *testing.T) {
	router, pipeline, _ := setupRouter(t)
	id := uuid.New()
	pipeline.On("UpdateTaskStatus", mock.Anything, id, models.TaskStatusCompleted).
		Return(&models.Task{ID: id, Status: models.TaskStatusCompleted}, nil).Once()

	w := doRequest(router, http.MethodPatch, "/api/tasks/"+id.String()+"/status", map[string]string{"status": "completed"})
	assert.Equal(t, http.StatusOK, w.Code)

	w = doRequest(router, http.MethodPatch, "/api/tasks/"+id.String()+"/status", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestMarkDistributed(t *testing.T) {
	router, pipeline, _ := setupRouter(t)
	id := uuid.New()
	pipeline.On("MarkDistributed", mock.Anything, id).Return(&models.Task{ID: id, Status: models.TaskStatusCompleted}, nil).Once()

	w := doRequest(router, http.MethodPost, "/api/tasks/"+id.String()+"/distribute", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestListContent(t *testing.T) {
	router, pipeline, _ := setupRouter(t)
	taskID := uuid.New()
	title := "T"
	pipeline.On("ListContent", mock.Anything, taskID).Return([]*models.Content{
		{ID: uuid.New(), TaskID: taskID, Type: models.ContentTypeMasterDocument, Title: &title, Body: "<p>C</p>"},
	}, nil).Once()

	w := doRequest(router, http.MethodGet, "/api/tasks/"+taskID.String()+"/content", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var got []map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	require.Len(t, got, 1)
	assert.Equal(t, "master_document", got[0]["type"])
	assert.Equal(t, "<p>C</p>", got[0]["content"])
	assert.Equal(t, false, got[0]["isApproved"])
}

func TestApproveContent(t *testing.T) {
	id := uuid.New()
	tests := []struct {
		name     string
		svcErr   error
		wantCode int
	}{
		{"approved", nil, http.StatusOK},
		{"already approved", models.ErrContentAlreadyApproved, http.StatusConflict},
		{"not found", models.ErrContentNotFound, http.StatusNotFound},
		{"empty body", models.NewValidationError("content", "must not be empty"), http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router, pipeline, _ := setupRouter(t)
			var content *models.Content
			if tt.svcErr == nil {
				content = &models.Content{ID: id, IsApproved: true, Body: "<p>C-edited</p>"}
			}
			pipeline.On("ApproveContent", mock.Anything, id, "<p>C-edited</p>").Return(content, tt.svcErr).Once()

			w := doRequest(router, http.MethodPatch, "/api/content/"+id.String()+"/approve", map[string]string{"content": "<p>C-edited</p>"})
			assert.Equal(t, tt.wantCode, w.Code)
		})
	}
}

func TestUpdateContent_PartialPatch(t *testing.T) {
	router, pipeline, _ := setupRouter(t)
	id := uuid.New()
	pipeline.On("UpdateContent", mock.Anything, id, mock.MatchedBy(func(p models.ContentPatch) bool {
		return p.Title == nil && p.Body != nil && *p.Body == "draft"
	})).Return(&models.Content{ID: id, Body: "draft"}, nil).Once()

	w := doRequest(router, http.MethodPatch, "/api/content/"+id.String(), map[string]string{"content": "draft"})
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestSettingsEndpoints(t *testing.T) {
	router, _, settings := setupRouter(t)
	updated := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	settings.On("ListKeys", mock.Anything).Return([]models.ProviderKeyStatus{
		{Provider: "anthropic", HasKey: false},
		{Provider: "openai", HasKey: true, LastUpdated: &updated},
	}, nil).Once()
	settings.On("SaveKey", mock.Anything, "openai", "sk-secret").Return(nil).Once()
	settings.On("SaveKey", mock.Anything, "mistral", "x").Return(models.NewValidationError("provider", `unknown provider "mistral"`)).Once()
	settings.On("DeleteKey", mock.Anything, "openai").Return(nil).Once()
	settings.On("ListProviders").Return([]models.ProviderInfo{{Name: "openai", Model: "gpt-4o", Default: true}}).Once()

	w := doRequest(router, http.MethodGet, "/api/settings/api-keys", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[{"provider":"anthropic","hasKey":false},{"provider":"openai","hasKey":true,"lastUpdated":"2024-05-01T12:00:00Z"}]`, w.Body.String())

	w = doRequest(router, http.MethodPost, "/api/settings/api-keys", map[string]string{"provider": "openai", "apiKey": "sk-secret"})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), "sk-secret")

	w = doRequest(router, http.MethodPost, "/api/settings/api-keys", map[string]string{"provider": "mistral", "apiKey": "x"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doRequest(router, http.MethodPost, "/api/settings/api-keys", map[string]string{"provider": "openai"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doRequest(router, http.MethodDelete, "/api/settings/api-keys/openai", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doRequest(router, http.MethodGet, "/api/settings/providers", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[{"name":"openai","model":"gpt-4o","default":true}]`, w.Body.String())
}

func TestRoutesRequireTokenWhenSecretConfigured(t *testing.T) {
	gin.SetMode(gin.TestMode)
	pipeline := mocks.NewMockPipelineService(t)
	router := gin.New()
	NewHandler(pipeline, mocks.NewMockSettingsService(t), zap.NewNop()).
		RegisterRoutes(router, middleware.UserAuth("jwt-secret", testUserID, zap.NewNop()))

	w := doRequest(router, http.MethodGet, "/api/tasks", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	token, err := middleware.IssueToken(7, "jwt-secret", time.Hour)
	require.NoError(t, err)
	pipeline.On("ListTasks", mock.Anything, int64(7)).Return([]*models.Task{}, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/api/tasks", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}
