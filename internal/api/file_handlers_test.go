package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"wymiana-plikow/internal/auth"
	"wymiana-plikow/internal/database"
	"wymiana-plikow/internal/models"
	"wymiana-plikow/internal/storage"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"
)

var errStorageDown = errors.New("simulated storage failure")

// recordingStorage wraps the real storage and counts calls, so tests can
// assert what the handler touched. With failDelete set the wrapped call is
// skipped and an error returned instead.
type recordingStorage struct {
	inner      storage.BlobStorage
	saveCalls  int
	failDelete bool
}

func (r *recordingStorage) Save(ctx context.Context, key string, data io.Reader) error {
	r.saveCalls++
	return r.inner.Save(ctx, key, data)
}

func (r *recordingStorage) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	return r.inner.Get(ctx, key)
}

func (r *recordingStorage) Delete(ctx context.Context, key string) error {
	if r.failDelete {
		return errStorageDown
	}
	return r.inner.Delete(ctx, key)
}

func newUploadRequest(t *testing.T, title, description, filename, content string, claims *auth.AppClaims) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	require.NoError(t, writer.WriteField("title", title))
	require.NoError(t, writer.WriteField("description", description))
	part, err := writer.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest("POST", "/api/v1/files", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req.WithContext(withClaims(req.Context(), claims))
}

func uploadTestFile(t *testing.T, title, content string) *models.File {
	t.Helper()

	req := newUploadRequest(t, title, "opis testowy", "dane.txt", content, testAdminClaims)
	rec := httptest.NewRecorder()
	http.HandlerFunc(testServer.UploadFileHandler).ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code)

	var file models.File
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &file))
	require.NotEmpty(t, file.ID)
	return &file
}

func paramRequest(method, target, fileID string, body io.Reader, claims *auth.AppClaims) *http.Request {
	req := httptest.NewRequest(method, target, body)
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("fileId", fileID)
	ctx := context.WithValue(withClaims(req.Context(), claims), chi.RouteCtxKey, rctx)
	return req.WithContext(ctx)
}

func TestAPI_UploadAndDownload(t *testing.T) {
	content := "zawartość pliku do pobrania"
	file := uploadTestFile(t, "Raport kwartalny", content)

	require.Equal(t, "Raport kwartalny", file.Title)
	require.Equal(t, "dane.txt", file.FileName)
	require.Equal(t, int64(0), file.DownloadCount)

	req := paramRequest("GET", "/api/v1/files/"+file.ID+"/download", file.ID, nil, testUserClaims)
	rec := httptest.NewRecorder()
	http.HandlerFunc(testServer.DownloadFileHandler).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, content, rec.Body.String())
	require.Contains(t, rec.Header().Get("Content-Disposition"), `filename="dane.txt"`)

	// Licznik pobrań rośnie dopiero po udanym otwarciu bloba
	updated, err := testServer.store.GetFileByID(context.Background(), file.ID)
	require.NoError(t, err)
	require.Equal(t, int64(1), updated.DownloadCount)
}

func TestAPI_Upload_ValidationBeforeStorage(t *testing.T) {
	recording := &recordingStorage{inner: testServer.storage}
	srv := NewServer(testServer.config, testServer.store, recording, testMailer, nil)

	req := newUploadRequest(t, "   ", "opis", "dane.txt", "treść", testAdminClaims)
	rec := httptest.NewRecorder()
	http.HandlerFunc(srv.UploadFileHandler).ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	// Odrzucona walidacja nie może zostawić bloba na dysku
	require.Equal(t, 0, recording.saveCalls)
}

func TestAPI_Download_NotFound(t *testing.T) {
	req := paramRequest("GET", "/api/v1/files/nie-ma-takiego/download", "nie-ma-takiego", nil, testUserClaims)
	rec := httptest.NewRecorder()
	http.HandlerFunc(testServer.DownloadFileHandler).ServeHTTP(rec, req)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAPI_Download_RecordWithoutBlob(t *testing.T) {
	// Rekord wstawiony z pominięciem uploadu, blob nigdy nie powstał
	size := int64(10)
	mime := "text/plain"
	file, err := testServer.store.CreateFile(context.Background(), database.CreateFileParams{
		ID:          "rekord-bez-bloba-0001",
		Title:       "Widmo",
		Description: "rekord bez bloba",
		StorageKey:  "rekord-bez-bloba-0001",
		FileName:    "widmo.txt",
		SizeBytes:   &size,
		MimeType:    &mime,
		UploadedBy:  &testAdminClaims.UserID,
	})
	require.NoError(t, err)

	req := paramRequest("GET", "/api/v1/files/"+file.ID+"/download", file.ID, nil, testUserClaims)
	rec := httptest.NewRecorder()
	http.HandlerFunc(testServer.DownloadFileHandler).ServeHTTP(rec, req)

	// Niespójność to 500, nie zwykłe 404
	require.Equal(t, http.StatusInternalServerError, rec.Code)

	updated, err := testServer.store.GetFileByID(context.Background(), file.ID)
	require.NoError(t, err)
	require.Equal(t, int64(0), updated.DownloadCount)
}

func TestAPI_AdminMiddleware_BlocksRegularUser(t *testing.T) {
	called := false
	handler := testServer.AdminMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	req := httptest.NewRequest("POST", "/api/v1/files", nil)
	req = req.WithContext(withClaims(req.Context(), testUserClaims))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusForbidden, rec.Code)
	require.False(t, called)

	req = httptest.NewRequest("POST", "/api/v1/files", nil)
	req = req.WithContext(withClaims(req.Context(), testAdminClaims))
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.True(t, called)
}

func TestAPI_DeleteFile(t *testing.T) {
	file := uploadTestFile(t, "Do skasowania", "krótka treść")

	req := paramRequest("DELETE", "/api/v1/files/"+file.ID, file.ID, nil, testAdminClaims)
	rec := httptest.NewRecorder()
	http.HandlerFunc(testServer.DeleteFileHandler).ServeHTTP(rec, req)

	require.Equal(t, http.StatusNoContent, rec.Code)

	gone, err := testServer.store.GetFileByID(context.Background(), file.ID)
	require.NoError(t, err)
	require.Nil(t, gone)
}

func TestAPI_DeleteFile_BlobDeleteFails(t *testing.T) {
	file := uploadTestFile(t, "Uparty blob", "treść która zostanie")

	recording := &recordingStorage{inner: testServer.storage, failDelete: true}
	srv := NewServer(testServer.config, testServer.store, recording, testMailer, nil)

	req := paramRequest("DELETE", "/api/v1/files/"+file.ID, file.ID, nil, testAdminClaims)
	rec := httptest.NewRecorder()
	http.HandlerFunc(srv.DeleteFileHandler).ServeHTTP(rec, req)

	// Rekord znika mimo nieusuniętego bloba
	require.Equal(t, http.StatusNoContent, rec.Code)

	gone, err := testServer.store.GetFileByID(context.Background(), file.ID)
	require.NoError(t, err)
	require.Nil(t, gone)
}

func TestAPI_Delete_NotFound(t *testing.T) {
	req := paramRequest("DELETE", "/api/v1/files/nie-istnieje", "nie-istnieje", nil, testAdminClaims)
	rec := httptest.NewRecorder()
	http.HandlerFunc(testServer.DeleteFileHandler).ServeHTTP(rec, req)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAPI_SearchFiles(t *testing.T) {
	uploadTestFile(t, "Protokół spotkania ZXQV", "treść protokołu")

	req := httptest.NewRequest("GET", "/api/v1/files/search?query=zxqv", nil)
	req = req.WithContext(withClaims(req.Context(), testUserClaims))
	rec := httptest.NewRecorder()
	http.HandlerFunc(testServer.SearchFilesHandler).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var files []models.File
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &files))
	require.Len(t, files, 1)
	require.Equal(t, "Protokół spotkania ZXQV", files[0].Title)
}

func TestAPI_SearchFiles_NoMatches(t *testing.T) {
	req := httptest.NewRequest("GET", "/api/v1/files/search?query=FrazaKtorejNigdzieNieMa", nil)
	req = req.WithContext(withClaims(req.Context(), testUserClaims))
	rec := httptest.NewRecorder()
	http.HandlerFunc(testServer.SearchFilesHandler).ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, "No files found", resp["error"])
}

func TestAPI_ListFiles(t *testing.T) {
	file := uploadTestFile(t, "Wpis na dashboardzie", "treść")

	req := httptest.NewRequest("GET", "/api/v1/files", nil)
	req = req.WithContext(withClaims(req.Context(), testUserClaims))
	rec := httptest.NewRecorder()
	http.HandlerFunc(testServer.ListFilesHandler).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var files []models.File
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &files))

	var seen bool
	for _, f := range files {
		if f.ID == file.ID {
			seen = true
			break
		}
	}
	require.True(t, seen)
}

func TestAPI_ListFiles_EmptyResultIsOK(t *testing.T) {
	// Listing z filtrem bez trafień to 200 z pustą listą, inaczej niż search
	req := httptest.NewRequest("GET", "/api/v1/files?query=FrazaKtorejNigdzieNieMa", nil)
	req = req.WithContext(withClaims(req.Context(), testUserClaims))
	rec := httptest.NewRecorder()
	http.HandlerFunc(testServer.ListFilesHandler).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "[]", strings.TrimSpace(rec.Body.String()))
}

func TestAPI_ShareFile(t *testing.T) {
	testMailer.reset()
	content := "treść do udostępnienia"
	file := uploadTestFile(t, "Cennik", content)

	payload, _ := json.Marshal(ShareRequest{Email: "odbiorca@example.com", Attach: true})
	req := paramRequest("POST", "/api/v1/files/"+file.ID+"/share", file.ID, bytes.NewReader(payload), testUserClaims)
	rec := httptest.NewRecorder()
	http.HandlerFunc(testServer.ShareFileHandler).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp ShareResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, file.ID, resp.FileID)
	require.Equal(t, int64(1), resp.EmailsSent)

	mail := testMailer.lastSent()
	require.NotNil(t, mail)
	require.Equal(t, "odbiorca@example.com", mail.To)
	require.Equal(t, fmt.Sprintf("File: %s", file.Title), mail.Subject)
	require.Contains(t, mail.Body, fmt.Sprintf("/api/v1/files/%s/download", file.ID))
	require.Len(t, mail.Attachments, 1)
	require.Equal(t, "dane.txt", mail.Attachments[0].Filename)
	require.Equal(t, []byte(content), mail.Attachments[0].Data)

	updated, err := testServer.store.GetFileByID(context.Background(), file.ID)
	require.NoError(t, err)
	require.Equal(t, int64(1), updated.EmailsSent)
}

func TestAPI_ShareFile_MailFailureKeepsCounter(t *testing.T) {
	testMailer.reset()
	file := uploadTestFile(t, "Niewysłany", "treść")

	testMailer.failAll = true
	defer testMailer.reset()

	payload, _ := json.Marshal(ShareRequest{Email: "odbiorca@example.com"})
	req := paramRequest("POST", "/api/v1/files/"+file.ID+"/share", file.ID, bytes.NewReader(payload), testUserClaims)
	rec := httptest.NewRecorder()
	http.HandlerFunc(testServer.ShareFileHandler).ServeHTTP(rec, req)

	require.Equal(t, http.StatusInternalServerError, rec.Code)

	updated, err := testServer.store.GetFileByID(context.Background(), file.ID)
	require.NoError(t, err)
	require.Equal(t, int64(0), updated.EmailsSent)
}

func TestAPI_ShareFile_MissingRecipient(t *testing.T) {
	file := uploadTestFile(t, "Bez odbiorcy", "treść")

	payload, _ := json.Marshal(ShareRequest{Email: "   "})
	req := paramRequest("POST", "/api/v1/files/"+file.ID+"/share", file.ID, bytes.NewReader(payload), testUserClaims)
	rec := httptest.NewRecorder()
	http.HandlerFunc(testServer.ShareFileHandler).ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAPI_ShareFile_NotFound(t *testing.T) {
	payload, _ := json.Marshal(ShareRequest{Email: "odbiorca@example.com"})
	req := paramRequest("POST", "/api/v1/files/nie-istnieje/share", "nie-istnieje", bytes.NewReader(payload), testUserClaims)
	rec := httptest.NewRecorder()
	http.HandlerFunc(testServer.ShareFileHandler).ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
}
