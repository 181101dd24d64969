package routes

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"image"
	"image/png"
	"mime/multipart"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/artontop/artontop/config"
	"github.com/artontop/artontop/models"
	"github.com/artontop/artontop/utils"
)

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func setupTestRouter(t *testing.T, opts ...func(*config.AppConfig)) (*gin.Engine, *gorm.DB) {
	t.Helper()
	dir := t.TempDir()
	base := config.AppConfig{
		SessionSecret:      "router-test-secret",
		GinMode:            "test",
		GinPath:            filepath.Join(dir, "gin.log"),
		SQLitePath:         filepath.Join(dir, "app.db"),
		UploadDir:          filepath.Join(dir, "uploads"),
		LogLevel:           "silent",
		RateLimitPerMinute: 1000,
	}
	for _, opt := range opts {
		opt(&base)
	}
	cfg := config.Use(base)
	utils.SetRedis(nil)

	db, err := config.OpenDatabase(cfg)
	require.NoError(t, err)
	require.NoError(t, config.Migrate(db))
	return SetupRouter(db), db
}

func do(r http.Handler, method, path string, body []byte, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func jsonHeaders(token string) map[string]string {
	h := map[string]string{"Content-Type": "application/json", "Accept": "application/json"}
	if token != "" {
		h["Authorization"] = "Bearer " + token
	}
	return h
}

// registerAndLogin creates an account through the API and returns its session token and id.
func registerAndLogin(t *testing.T, r http.Handler, name string) (string, uint) {
	t.Helper()
	creds, _ := json.Marshal(map[string]string{"name": name, "email": name + "@example.com", "password": "secret1"})
	w := do(r, http.MethodPost, "/register", creds, jsonHeaders(""))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = do(r, http.MethodPost, "/login", creds, jsonHeaders(""))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	var data struct {
		Token string      `json:"token"`
		User  models.User `json:"user"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	require.NotEmpty(t, data.Token)
	return data.Token, data.User.ID
}

func TestHealth(t *testing.T) {
	r, _ := setupTestRouter(t)
	w := do(r, http.MethodGet, "/health", nil, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestHomeRedirectsAnonymous(t *testing.T) {
	r, _ := setupTestRouter(t)
	w := do(r, http.MethodGet, "/home", nil, nil)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/auth", w.Header().Get("Location"))
}

func TestJSONRoutesRejectAnonymous(t *testing.T) {
	r, _ := setupTestRouter(t)
	for _, path := range []string{"/toggle_pub_like/1", "/save_remix", "/add_pub_comment"} {
		w := do(r, http.MethodPost, path, nil, jsonHeaders(""))
		assert.Equal(t, http.StatusUnauthorized, w.Code, path)
	}
	w := do(r, http.MethodGet, "/get_post/1", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRegisterDuplicateAndBadLogin(t *testing.T) {
	r, _ := setupTestRouter(t)
	form := url.Values{"name": {"ann"}, "email": {"ann@example.com"}, "password": {"secret1"}}.Encode()
	formHeaders := map[string]string{"Content-Type": "application/x-www-form-urlencoded"}

	w := do(r, http.MethodPost, "/register", []byte(form), formHeaders)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/login", w.Header().Get("Location"))

	w = do(r, http.MethodPost, "/register", []byte(form), formHeaders)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "Email exists!", w.Body.String())

	bad := url.Values{"email": {"ann@example.com"}, "password": {"wrong-pass"}}.Encode()
	w = do(r, http.MethodPost, "/login", []byte(bad), formHeaders)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = do(r, http.MethodPost, "/login", []byte(form), formHeaders)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/home", w.Header().Get("Location"))
	assert.Contains(t, w.Header().Get("Set-Cookie"), "artontop_session=")
}

func TestLogoutRevokesSession(t *testing.T) {
	r, _ := setupTestRouter(t)
	token, _ := registerAndLogin(t, r, "ann")

	w := do(r, http.MethodGet, "/home", nil, jsonHeaders(token))
	assert.Equal(t, http.StatusOK, w.Code)

	w = do(r, http.MethodGet, "/logout", nil, jsonHeaders(token))
	assert.Equal(t, http.StatusFound, w.Code)

	w = do(r, http.MethodGet, "/home", nil, jsonHeaders(token))
	assert.Equal(t, http.StatusFound, w.Code)
}

func TestSessionCookieAuthenticates(t *testing.T) {
	r, _ := setupTestRouter(t)
	token, _ := registerAndLogin(t, r, "ann")
	w := do(r, http.MethodGet, "/home?search=&page=1", nil, map[string]string{"Cookie": "artontop_session=" + token})
	require.Equal(t, http.StatusOK, w.Code)

	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	assert.Contains(t, string(env.Data), `"mode":"grid"`)
}

func TestEngagementFlow(t *testing.T) {
	r, db := setupTestRouter(t)
	annToken, annID := registerAndLogin(t, r, "ann")
	bobToken, _ := registerAndLogin(t, r, "bob")

	pub := models.Publication{Image: "p.png", PubType: "Drawing", AuthorID: annID, Hashtags: "#cat"}
	require.NoError(t, db.Create(&pub).Error)

	likePath := fmt.Sprintf("/toggle_pub_like/%d", pub.ID)
	w := do(r, http.MethodPost, likePath, nil, jsonHeaders(bobToken))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"liked"`)
	w = do(r, http.MethodPost, likePath, nil, jsonHeaders(bobToken))
	assert.Contains(t, w.Body.String(), `"status":"unliked"`)

	w = do(r, http.MethodPost, "/toggle_pub_like/9999", nil, jsonHeaders(bobToken))
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(r, http.MethodPost, "/add_pub_comment", []byte(`{"pub_id": 0, "text": "hi"}`), jsonHeaders(bobToken))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "missing data")

	body := fmt.Sprintf(`{"pub_id": %d, "text": "lovely"}`, pub.ID)
	w = do(r, http.MethodPost, "/add_pub_comment", []byte(body), jsonHeaders(bobToken))
	require.Equal(t, http.StatusOK, w.Code)

	w = do(r, http.MethodGet, fmt.Sprintf("/get_pub_comments/%d", pub.ID), nil, jsonHeaders(annToken))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "lovely")

	w = do(r, http.MethodGet, fmt.Sprintf("/delete/%d", pub.ID), nil, jsonHeaders(bobToken))
	assert.Equal(t, http.StatusForbidden, w.Code)

	edit := url.Values{"description": {"mine"}}.Encode()
	w = do(r, http.MethodPost, fmt.Sprintf("/edit/%d", pub.ID), []byte(edit), map[string]string{
		"Content-Type":  "application/x-www-form-urlencoded",
		"Authorization": "Bearer " + bobToken,
	})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = do(r, http.MethodGet, fmt.Sprintf("/delete/%d", pub.ID), nil, map[string]string{"Authorization": "Bearer " + annToken})
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/home", w.Header().Get("Location"))

	w = do(r, http.MethodGet, fmt.Sprintf("/get_post/%d", pub.ID), nil, jsonHeaders(annToken))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func multipartPublish(t *testing.T, token, filename string, content []byte, fields map[string]string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	fw, err := mw.CreateFormFile("image", filename)
	require.NoError(t, err)
	_, err = fw.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/publish", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	return req
}

func TestPublishUpload(t *testing.T) {
	r, _ := setupTestRouter(t)
	token, id := registerAndLogin(t, r, "ann")

	var img bytes.Buffer
	require.NoError(t, png.Encode(&img, image.NewRGBA(image.Rect(0, 0, 2, 2))))

	req := multipartPublish(t, token, "my cat.png", img.Bytes(), map[string]string{
		"title": "Cat", "hashtags": "#cat #sketch", "pub_type": "Drawing",
	})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	var pub models.Publication
	require.NoError(t, json.Unmarshal(env.Data, &pub))
	assert.Equal(t, id, pub.AuthorID)
	assert.True(t, strings.HasSuffix(pub.Image, "_my_cat.png"), pub.Image)
	_, err := os.Stat(filepath.Join(config.Get().UploadDir, pub.Image))
	assert.NoError(t, err)

	w = do(r, http.MethodGet, "/home?search=%23sketch", nil, jsonHeaders(token))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"mode":"grid"`)
	assert.Contains(t, w.Body.String(), pub.Image)

	req = multipartPublish(t, token, "notes.txt", []byte("just some text"), nil)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	req = multipartPublish(t, token, "cat.png", img.Bytes(), map[string]string{"pub_type": "Sculpture"})
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	entries, err := os.ReadDir(config.Get().UploadDir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "rejected publication leaves no file behind")
}

func TestSaveRemixBadPayload(t *testing.T) {
	r, db := setupTestRouter(t)
	token, id := registerAndLogin(t, r, "ann")
	pub := models.Publication{Image: "p.png", PubType: "Drawing", AuthorID: id}
	require.NoError(t, db.Create(&pub).Error)

	body := fmt.Sprintf(`{"image": "data:image/png;base64,aGVsbG8=", "original_id": %d}`, pub.ID)
	w := do(r, http.MethodPost, "/save_remix", []byte(body), jsonHeaders(token))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(r, http.MethodPost, "/save_remix", []byte(`{"image": ""}`), jsonHeaders(token))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSaveRemixBodyLimit(t *testing.T) {
	r, db := setupTestRouter(t, func(c *config.AppConfig) { c.MaxUploadMB = 1 })
	token, id := registerAndLogin(t, r, "ann")
	pub := models.Publication{Image: "p.png", PubType: "Drawing", AuthorID: id}
	require.NoError(t, db.Create(&pub).Error)

	payload := strings.Repeat("A", 2<<20)
	body := fmt.Sprintf(`{"image": "data:image/png;base64,%s", "original_id": %d}`, payload, pub.ID)
	w := do(r, http.MethodPost, "/save_remix", []byte(body), jsonHeaders(token))
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code, w.Body.String())

	var count int64
	require.NoError(t, db.Model(&models.Remix{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestSubscriptionAndProfile(t *testing.T) {
	r, _ := setupTestRouter(t)
	_, annID := registerAndLogin(t, r, "ann")
	bobToken, bobID := registerAndLogin(t, r, "bob")

	w := do(r, http.MethodPost, fmt.Sprintf("/toggle_subscription/%d", annID), nil, jsonHeaders(bobToken))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"subscribed":true`)

	w = do(r, http.MethodPost, fmt.Sprintf("/toggle_subscription/%d", bobID), nil, jsonHeaders(bobToken))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(r, http.MethodGet, fmt.Sprintf("/profile/%d", annID), nil, jsonHeaders(bobToken))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"is_subscribed":true`)
	assert.NotContains(t, strings.ToLower(w.Body.String()), "password")
}

func TestStatsCountsPageViews(t *testing.T) {
	r, _ := setupTestRouter(t)
	token, _ := registerAndLogin(t, r, "ann")
	do(r, http.MethodGet, "/home", nil, jsonHeaders(token))

	w := do(r, http.MethodGet, "/stats", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	var stats map[string]int64
	require.NoError(t, json.Unmarshal(env.Data, &stats))
	assert.EqualValues(t, 1, stats["user_count"])
	assert.GreaterOrEqual(t, stats["daily_view_count"], int64(1))
}
