package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"image/color"
	"image/jpeg"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/bosocmputer/ocr_gemini_plugin/internal/ai"
	"github.com/bosocmputer/ocr_gemini_plugin/internal/common"
	"github.com/bosocmputer/ocr_gemini_plugin/internal/settings"
	"github.com/disintegration/imaging"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProvider struct {
	result  *ai.OCRResult
	err     error
	request ai.OCRRequest
	calls   int
}

func (f *fakeProvider) Recognize(_ context.Context, req ai.OCRRequest, _ *common.RequestContext) (*ai.OCRResult, error) {
	f.calls++
	f.request = req
	return f.result, f.err
}

func (f *fakeProvider) GetProviderName() string { return "fake" }

type memStore struct {
	saved   *settings.Settings
	saveErr error
}

func (m *memStore) Load(_ context.Context) (*settings.Settings, error) { return m.saved, nil }

func (m *memStore) Save(_ context.Context, s *settings.Settings) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	c := s.Clone()
	m.saved = &c
	return nil
}

func newTestRouter(t *testing.T, provider ai.OCRProvider, store *memStore, images ImageOptions) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	manager, err := settings.NewManager(context.Background(), store)
	require.NoError(t, err)

	router := gin.New()
	NewHandler(provider, manager, images).RegisterRoutes(router)
	return router
}

func seededStore() *memStore {
	return &memStore{saved: &settings.Settings{
		URL:         settings.DefaultURL,
		APIKey:      "secret-key-1234",
		Model:       "gemini-2.5-flash",
		Temperature: 0.3,
		Prompts: []settings.Prompt{
			{Name: "plain", Items: []settings.PromptItem{{Role: "user", Content: "OCR $target"}}, IsEnabled: true},
			{Name: "receipt", Items: []settings.PromptItem{{Role: "user", Content: "Receipt $target"}}},
		},
	}}
}

func multipartBody(t *testing.T, fields map[string]string, image []byte) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	if image != nil {
		part, err := w.CreateFormFile("image", "scan.jpg")
		require.NoError(t, err)
		_, err = part.Write(image)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return body, w.FormDataContentType()
}

func doRequest(router *gin.Engine, method, path string, body *bytes.Buffer, contentType string) *httptest.ResponseRecorder {
	if body == nil {
		body = &bytes.Buffer{}
	}
	req := httptest.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestHealth(t *testing.T) {
	router := newTestRouter(t, &fakeProvider{}, seededStore(), ImageOptions{})

	rec := doRequest(router, http.MethodGet, "/health", nil, "")

	assert.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "fake", body["provider"])
}

func TestRecognize_Success(t *testing.T) {
	provider := &fakeProvider{result: &ai.OCRResult{OCRContents: []ai.OCRContent{
		{Text: "Hello", BoxPoints: []ai.BoxPoint{}},
		{Text: "World", BoxPoints: []ai.BoxPoint{}},
	}}}
	router := newTestRouter(t, provider, seededStore(), ImageOptions{})

	body, ct := multipartBody(t, map[string]string{"language": "Thai"}, []byte("raw-bytes"))
	rec := doRequest(router, http.MethodPost, "/api/v1/ocr", body, ct)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	out := decodeBody(t, rec)
	assert.Equal(t, "success", out["status"])
	assert.Equal(t, "Hello\nWorld", out["text"])
	assert.NotEmpty(t, out["request_id"])
	assert.Len(t, out["contents"], 2)

	assert.Equal(t, 1, provider.calls)
	assert.Equal(t, ai.LangThai, provider.request.Language)
	assert.Equal(t, []byte("raw-bytes"), provider.request.ImageData)
}

func TestRecognize_MissingImage(t *testing.T) {
	provider := &fakeProvider{}
	router := newTestRouter(t, provider, seededStore(), ImageOptions{})

	body, ct := multipartBody(t, map[string]string{"language": "Thai"}, nil)
	rec := doRequest(router, http.MethodPost, "/api/v1/ocr", body, ct)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Zero(t, provider.calls)
}

func TestRecognize_UnknownLanguage(t *testing.T) {
	provider := &fakeProvider{}
	router := newTestRouter(t, provider, seededStore(), ImageOptions{})

	body, ct := multipartBody(t, map[string]string{"language": "Klingon"}, []byte("x"))
	rec := doRequest(router, http.MethodPost, "/api/v1/ocr", body, ct)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decodeBody(t, rec)["details"], "Klingon")
	assert.Zero(t, provider.calls)
}

func TestRecognize_ProviderErrorsAreMapped(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		status   int
		category string
	}{
		{"configuration", ai.ErrPromptNotConfigured, http.StatusBadRequest, "configuration"},
		{"no data", &ai.NoDataError{Raw: "{}"}, http.StatusBadGateway, "no_data"},
		{"deadline", context.DeadlineExceeded, http.StatusGatewayTimeout, "timeout"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newTestRouter(t, &fakeProvider{err: tt.err}, seededStore(), ImageOptions{})

			body, ct := multipartBody(t, nil, []byte("x"))
			rec := doRequest(router, http.MethodPost, "/api/v1/ocr", body, ct)

			assert.Equal(t, tt.status, rec.Code)
			out := decodeBody(t, rec)
			assert.Equal(t, tt.category, out["category"])
			assert.NotEmpty(t, out["request_id"])
		})
	}
}

func TestRecognize_PreprocessingNormalizesToPNG(t *testing.T) {
	img := imaging.New(300, 100, color.White)
	var jpg bytes.Buffer
	require.NoError(t, jpeg.Encode(&jpg, img, nil))

	provider := &fakeProvider{result: &ai.OCRResult{OCRContents: []ai.OCRContent{}}}
	router := newTestRouter(t, provider, seededStore(), ImageOptions{Preprocess: true, MaxDimension: 150})

	body, ct := multipartBody(t, nil, jpg.Bytes())
	rec := doRequest(router, http.MethodPost, "/api/v1/ocr", body, ct)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, bytes.HasPrefix(provider.request.ImageData, []byte("\x89PNG")))
}

func TestRecognize_PreprocessingFallsBackToOriginal(t *testing.T) {
	provider := &fakeProvider{result: &ai.OCRResult{OCRContents: []ai.OCRContent{}}}
	router := newTestRouter(t, provider, seededStore(), ImageOptions{Preprocess: true, MaxDimension: 150})

	body, ct := multipartBody(t, nil, []byte("not an image"))
	rec := doRequest(router, http.MethodPost, "/api/v1/ocr", body, ct)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []byte("not an image"), provider.request.ImageData)
}

func TestLanguages(t *testing.T) {
	router := newTestRouter(t, &fakeProvider{}, seededStore(), ImageOptions{})

	rec := doRequest(router, http.MethodGet, "/api/v1/languages", nil, "")

	require.Equal(t, http.StatusOK, rec.Code)
	langs := decodeBody(t, rec)["languages"].([]interface{})
	assert.Len(t, langs, len(ai.SupportedLanguages()))
	first := langs[0].(map[string]interface{})
	assert.Equal(t, ai.AutoDetectPhrase, first["display_name"])
}

func TestGetSettings_MasksAPIKey(t *testing.T) {
	router := newTestRouter(t, &fakeProvider{}, seededStore(), ImageOptions{})

	rec := doRequest(router, http.MethodGet, "/api/v1/settings", nil, "")

	require.Equal(t, http.StatusOK, rec.Code)
	out := decodeBody(t, rec)
	assert.Equal(t, "***********1234", out["apiKey"])
	assert.NotContains(t, rec.Body.String(), "secret-key")
	assert.Equal(t, "gemini-2.5-flash", out["model"])
}

func TestUpdateSettings_KeepsKeyWhenMaskedValueIsSentBack(t *testing.T) {
	store := seededStore()
	router := newTestRouter(t, &fakeProvider{}, store, ImageOptions{})

	payload := `{"url":"https://proxy.example.com","apiKey":"***********1234","model":"gemini-2.5-pro","temperature":5,
		"prompts":[{"name":"only","items":[{"role":"user","content":"x $target"}],"isEnabled":true}]}`
	rec := doRequest(router, http.MethodPut, "/api/v1/settings", bytes.NewBufferString(payload), "application/json")

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.NotNil(t, store.saved)
	assert.Equal(t, "secret-key-1234", store.saved.APIKey)
	assert.Equal(t, "https://proxy.example.com", store.saved.URL)
	assert.Equal(t, settings.MaxTemperature, store.saved.Temperature)
	assert.Len(t, store.saved.Prompts, 1)
}

func TestUpdateSettings_SaveFailure(t *testing.T) {
	store := seededStore()
	router := newTestRouter(t, &fakeProvider{}, store, ImageOptions{})
	store.saveErr = errors.New("disk full")

	rec := doRequest(router, http.MethodPut, "/api/v1/settings", bytes.NewBufferString(`{"apiKey":"new"}`), "application/json")

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "disk full")
}

func TestUpdateSettings_InvalidJSON(t *testing.T) {
	router := newTestRouter(t, &fakeProvider{}, seededStore(), ImageOptions{})

	rec := doRequest(router, http.MethodPut, "/api/v1/settings", bytes.NewBufferString(`{`), "application/json")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSelectPrompt(t *testing.T) {
	store := seededStore()
	router := newTestRouter(t, &fakeProvider{}, store, ImageOptions{})

	rec := doRequest(router, http.MethodPost, "/api/v1/prompts/1/select", nil, "")

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.False(t, store.saved.Prompts[0].IsEnabled)
	assert.True(t, store.saved.Prompts[1].IsEnabled)

	rec = doRequest(router, http.MethodGet, "/api/v1/prompts", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "receipt", decodeBody(t, rec)["active"])
	assert.True(t, strings.Contains(rec.Body.String(), `"name":"receipt","items":[{"role":"user","content":"Receipt $target"}],"isEnabled":true`))
}

func TestListPrompts_NoneActive(t *testing.T) {
	store := &memStore{saved: &settings.Settings{Prompts: []settings.Prompt{{Name: "idle"}}}}
	router := newTestRouter(t, &fakeProvider{}, store, ImageOptions{})

	rec := doRequest(router, http.MethodGet, "/api/v1/prompts", nil, "")

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Nil(t, body["active"])
	assert.Len(t, body["prompts"], 1)
}

func TestSelectPrompt_BadIndex(t *testing.T) {
	router := newTestRouter(t, &fakeProvider{}, seededStore(), ImageOptions{})

	assert.Equal(t, http.StatusBadRequest, doRequest(router, http.MethodPost, "/api/v1/prompts/abc/select", nil, "").Code)
	assert.Equal(t, http.StatusNotFound, doRequest(router, http.MethodPost, "/api/v1/prompts/7/select", nil, "").Code)
	assert.Equal(t, http.StatusNotFound, doRequest(router, http.MethodPost, "/api/v1/prompts/-1/select", nil, "").Code)
}

func TestMaskAPIKey(t *testing.T) {
	assert.Equal(t, "", maskAPIKey(""))
	assert.Equal(t, "***", maskAPIKey("abc"))
	assert.Equal(t, "****5678", maskAPIKey("12345678"))
}
