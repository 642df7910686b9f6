package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"drivebox/file-api/model"

	"github.com/gin-gonic/gin"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fileJSON struct {
	ID       uint   `json:"id"`
	Name     string `json:"name"`
	Size     int64  `json:"size"`
	FolderID *uint  `json:"folder_id"`
}

type folderJSON struct {
	ID    uint       `json:"id"`
	Name  string     `json:"name"`
	Files []fileJSON `json:"files"`
}

func newTestAPI(t *testing.T) *API {
	t.Helper()

	gin.SetMode(gin.TestMode)

	viper.Set("jwt.secret", "test-secret")
	viper.Set("host.ssl.enabled", false)
	viper.Set("db.type", "sqlite")
	viper.Set("db.path", filepath.Join(t.TempDir(), "test.db"))
	viper.Set("storage.type", "local")
	viper.Set("storage.path", t.TempDir())
	viper.Set("storage.max_usage", int64(1024<<20))
	viper.Set("upload.max_size", int64(5<<20))
	viper.Set("upload.allowed_extensions", []string{
		"jpeg", "jpg", "png", "gif", "pdf", "txt", "doc", "docx",
	})

	a, err := NewRouter()
	require.NoError(t, err)
	return a
}

func do(a *API, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	a.Router.ServeHTTP(w, req)
	return w
}

func jsonReq(method, url string, body any, cookies ...*http.Cookie) *http.Request {
	b, _ := json.Marshal(body)
	req := httptest.NewRequest(method, url, bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	return req
}

func multipartReq(t *testing.T, url, filename, content string, cookies ...*http.Cookie) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	fw, err := w.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = io.WriteString(fw, content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, url, &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	for _, c := range cookies {
		req.AddCookie(c)
	}
	return req
}

// signup registers and logs a user in, returning the auth cookie.
func signup(t *testing.T, a *API, username string) *http.Cookie {
	t.Helper()

	w := do(a, jsonReq(http.MethodPost, "/api/users", gin.H{
		"username": username,
		"email":    username + "@example.com",
		"password": username + "-password",
	}))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = do(a, jsonReq(http.MethodPost, "/api/users/login", gin.H{
		"username": username,
		"password": username + "-password",
	}))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	for _, c := range w.Result().Cookies() {
		if c.Name == "auth_token" {
			return c
		}
	}

	t.Fatal("login response carried no auth_token cookie")
	return nil
}

func TestRegisterDuplicateConflicts(t *testing.T) {
	a := newTestAPI(t)

	body := gin.H{"username": "alice", "email": "alice@example.com", "password": "alicepassword"}

	w := do(a, jsonReq(http.MethodPost, "/api/users", body))
	require.Equal(t, http.StatusOK, w.Code)

	w = do(a, jsonReq(http.MethodPost, "/api/users", body))
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestLoginFailuresShareOneMessage(t *testing.T) {
	a := newTestAPI(t)

	w := do(a, jsonReq(http.MethodPost, "/api/users", gin.H{
		"username": "alice", "email": "alice@example.com", "password": "alicepassword",
	}))
	require.Equal(t, http.StatusOK, w.Code)

	unknown := do(a, jsonReq(http.MethodPost, "/api/users/login", gin.H{
		"username": "nobody", "password": "whatever123",
	}))
	wrong := do(a, jsonReq(http.MethodPost, "/api/users/login", gin.H{
		"username": "alice", "password": "wrongpassword",
	}))

	assert.Equal(t, http.StatusUnauthorized, unknown.Code)
	assert.Equal(t, http.StatusUnauthorized, wrong.Code)

	var unknownBody, wrongBody map[string]any
	require.NoError(t, json.Unmarshal(unknown.Body.Bytes(), &unknownBody))
	require.NoError(t, json.Unmarshal(wrong.Body.Bytes(), &wrongBody))
	assert.Equal(t, unknownBody["error"], wrongBody["error"])
}

func TestEndpointsRejectUnauthenticated(t *testing.T) {
	a := newTestAPI(t)

	for _, req := range []*http.Request{
		httptest.NewRequest(http.MethodGet, "/api/files", nil),
		httptest.NewRequest(http.MethodGet, "/api/folders", nil),
		httptest.NewRequest(http.MethodGet, "/api/users", nil),
		httptest.NewRequest(http.MethodDelete, "/api/files/1", nil),
		httptest.NewRequest(http.MethodHead, "/api/validate", nil),
		multipartReq(t, "/api/files", "report.pdf", "%PDF-1.4 body"),
	} {
		w := do(a, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code, "%s %s", req.Method, req.URL)
	}
}

func TestUploadRejectsTypeAndSize(t *testing.T) {
	a := newTestAPI(t)
	cookie := signup(t, a, "alice")

	w := do(a, multipartReq(t, "/api/files", "virus.exe", "MZ payload", cookie))
	assert.Equal(t, http.StatusUnsupportedMediaType, w.Code)

	w = do(a, multipartReq(t, "/api/files", "huge.txt", strings.Repeat("a", 6<<20), cookie))
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)

	w = do(a, multipartReq(t, "/api/files", "fine.txt", strings.Repeat("a", 4<<20), cookie))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestFilesAreInvisibleAcrossUsers(t *testing.T) {
	a := newTestAPI(t)
	aliceCookie := signup(t, a, "alice")
	bobCookie := signup(t, a, "bob")

	w := do(a, multipartReq(t, "/api/files", "report.pdf", "%PDF-1.4 alice only", aliceCookie))
	require.Equal(t, http.StatusOK, w.Code)

	var uploaded fileJSON
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &uploaded))

	var bobFiles []fileJSON
	w = do(a, httptest.NewRequest(http.MethodGet, "/api/files", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	req := httptest.NewRequest(http.MethodGet, "/api/files", nil)
	req.AddCookie(bobCookie)
	w = do(a, req)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &bobFiles))
	assert.Empty(t, bobFiles)

	// Bob can't download, move or delete alice's file either, and the
	// responses don't admit it exists
	url := fmt.Sprintf("/api/files/%d/download", uploaded.ID)
	req = httptest.NewRequest(http.MethodGet, url, nil)
	req.AddCookie(bobCookie)
	assert.Equal(t, http.StatusNotFound, do(a, req).Code)

	req = httptest.NewRequest(http.MethodDelete, fmt.Sprintf("/api/files/%d", uploaded.ID), nil)
	req.AddCookie(bobCookie)
	assert.Equal(t, http.StatusNotFound, do(a, req).Code)

	w = do(a, jsonReq(http.MethodPatch, fmt.Sprintf("/api/files/%d", uploaded.ID), gin.H{"folder_id": nil}, bobCookie))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDownloadReturnsOriginalContent(t *testing.T) {
	a := newTestAPI(t)
	cookie := signup(t, a, "alice")
	content := "%PDF-1.4\nquarterly numbers\n%%EOF\n"

	w := do(a, multipartReq(t, "/api/files", "report.pdf", content, cookie))
	require.Equal(t, http.StatusOK, w.Code)

	var uploaded fileJSON
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &uploaded))
	assert.Equal(t, "report.pdf", uploaded.Name)
	assert.EqualValues(t, len(content), uploaded.Size)

	req := httptest.NewRequest(http.MethodGet, fmt.Sprintf("/api/files/%d/download", uploaded.ID), nil)
	req.AddCookie(cookie)
	w = do(a, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, content, w.Body.String())
	assert.Contains(t, w.Header().Get("Content-Disposition"), `"report.pdf"`)
}

// The alice walkthrough end to end over HTTP.
func TestUploadMoveDeleteFlow(t *testing.T) {
	a := newTestAPI(t)
	cookie := signup(t, a, "alice")

	w := do(a, multipartReq(t, "/api/files", "report.pdf", "%PDF-1.4 report body", cookie))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var uploaded fileJSON
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &uploaded))
	assert.Nil(t, uploaded.FolderID)

	w = do(a, jsonReq(http.MethodPost, "/api/folders", gin.H{"name": "Work"}, cookie))
	require.Equal(t, http.StatusOK, w.Code)

	var folder folderJSON
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &folder))
	assert.Equal(t, "Work", folder.Name)

	w = do(a, jsonReq(http.MethodPatch, fmt.Sprintf("/api/files/%d", uploaded.ID), gin.H{"folder_id": folder.ID}, cookie))
	require.Equal(t, http.StatusOK, w.Code)

	var moved fileJSON
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &moved))
	require.NotNil(t, moved.FolderID)
	assert.Equal(t, folder.ID, *moved.FolderID)

	req := httptest.NewRequest(http.MethodGet, "/api/folders", nil)
	req.AddCookie(cookie)
	w = do(a, req)
	require.Equal(t, http.StatusOK, w.Code)

	var folders []folderJSON
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &folders))
	require.Len(t, folders, 1)
	require.Len(t, folders[0].Files, 1)
	assert.Equal(t, uploaded.ID, folders[0].Files[0].ID)

	req = httptest.NewRequest(http.MethodDelete, fmt.Sprintf("/api/files/%d", uploaded.ID), nil)
	req.AddCookie(cookie)
	require.Equal(t, http.StatusOK, do(a, req).Code)

	req = httptest.NewRequest(http.MethodGet, "/api/files", nil)
	req.AddCookie(cookie)
	w = do(a, req)
	require.Equal(t, http.StatusOK, w.Code)

	var files []fileJSON
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &files))
	assert.Empty(t, files)

	req = httptest.NewRequest(http.MethodGet, "/api/folders", nil)
	req.AddCookie(cookie)
	w = do(a, req)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &folders))
	require.Len(t, folders, 1)
	assert.Empty(t, folders[0].Files, "Work must survive its file's deletion, empty")

	req = httptest.NewRequest(http.MethodGet, fmt.Sprintf("/api/files/%d/download", uploaded.ID), nil)
	req.AddCookie(cookie)
	assert.Equal(t, http.StatusNotFound, do(a, req).Code)
}

func TestUploadCompensatesFailedRecord(t *testing.T) {
	a := newTestAPI(t)
	cookie := signup(t, a, "alice")
	dir := viper.GetString("storage.path")

	// Break only the files table so auth still works but the record
	// write can't, the placed content must not survive the failure
	require.NoError(t, a.DB.Migrator().DropTable(&model.File{}))

	w := do(a, multipartReq(t, "/api/files", "report.pdf", "%PDF-1.4 doomed upload", cookie))
	assert.Equal(t, http.StatusInternalServerError, w.Code)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries, "a failed upload must leave no content behind")
}

func TestMoveIntoForeignFolderIsNotFound(t *testing.T) {
	a := newTestAPI(t)
	aliceCookie := signup(t, a, "alice")
	bobCookie := signup(t, a, "bob")

	w := do(a, jsonReq(http.MethodPost, "/api/folders", gin.H{"name": "Bobs"}, bobCookie))
	require.Equal(t, http.StatusOK, w.Code)

	var foreign folderJSON
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &foreign))

	w = do(a, multipartReq(t, "/api/files", "report.pdf", "%PDF-1.4 body", aliceCookie))
	require.Equal(t, http.StatusOK, w.Code)

	var uploaded fileJSON
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &uploaded))

	w = do(a, jsonReq(http.MethodPatch, fmt.Sprintf("/api/files/%d", uploaded.ID), gin.H{"folder_id": foreign.ID}, aliceCookie))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestLogoutClearsCookie(t *testing.T) {
	a := newTestAPI(t)
	cookie := signup(t, a, "alice")

	req := httptest.NewRequest(http.MethodPost, "/api/users/logout", nil)
	req.AddCookie(cookie)
	w := do(a, req)
	require.Equal(t, http.StatusOK, w.Code)

	for _, c := range w.Result().Cookies() {
		if c.Name == "auth_token" {
			assert.Empty(t, c.Value)
			assert.Negative(t, c.MaxAge)
		}
	}
}

func TestUserFetchReturnsPrincipalAndStats(t *testing.T) {
	a := newTestAPI(t)
	cookie := signup(t, a, "alice")

	req := httptest.NewRequest(http.MethodGet, "/api/users", nil)
	req.AddCookie(cookie)
	w := do(a, req)
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		User struct {
			Username string `json:"username"`
			Email    string `json:"email"`
		} `json:"user"`
		Stats struct {
			UsedStorage   int64 `json:"used_storage"`
			UploadedFiles int64 `json:"uploaded_files"`
		} `json:"stats"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "alice", body.User.Username)
	assert.EqualValues(t, 0, body.Stats.UsedStorage)

	assert.NotContains(t, w.Body.String(), "password")
}
