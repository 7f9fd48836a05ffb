package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"
	"strings"
	"wymiana-plikow/internal/database"
	"wymiana-plikow/internal/models"

	"github.com/go-chi/chi/v5"
	"github.com/jaevor/go-nanoid"
)

func parsePagination(r *http.Request) (limit int, offset int) {
	limit = 100
	offset = 0
	if l, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && l > 0 && l <= 1000 {
		limit = l
	}
	if o, err := strconv.Atoi(r.URL.Query().Get("offset")); err == nil && o >= 0 {
		offset = o
	}
	return limit, offset
}

func (s *Server) generateUniqueID(ctx context.Context) (string, error) {
	maxRetries := 10

	generateID, err := nanoid.Standard(21)
	if err != nil {
		return "", fmt.Errorf("failed to initialize nanoid generator: %w", err)
	}

	for i := 0; i < maxRetries; i++ {
		id := generateID()
		exists, err := s.store.FileExists(ctx, id)
		if err != nil {
			return "", fmt.Errorf("failed to check for file existence: %w", err)
		}
		if !exists {
			return id, nil
		}
	}

	return "", fmt.Errorf("failed to generate a unique ID after %d attempts", maxRetries)
}

// @Summary      List the file catalog
// @Description  Returns the uploaded-file catalog, optionally narrowed by a case-insensitive title substring. An empty result is a valid empty list.
// @Tags         files
// @Produce      json
// @Security     BearerAuth
// @Param        query   query     string  false  "Title substring filter"
// @Param        limit   query     int     false  "Number of items to return" default(100)
// @Param        offset  query     int     false  "Offset for pagination" default(0)
// @Success      200     {array}   models.File
// @Failure      401     {string}  string "Unauthorized"
// @Failure      500     {string}  string "Internal Server Error"
// @Router       /files [get]
func (s *Server) ListFilesHandler(w http.ResponseWriter, r *http.Request) {
	limit, offset := parsePagination(r)
	query := r.URL.Query().Get("query")

	var files []models.File
	var err error
	if query == "" {
		files, err = s.store.ListFiles(r.Context(), limit, offset)
	} else {
		files, err = s.store.SearchFilesByTitle(r.Context(), query, limit, offset)
	}
	if err != nil {
		log.Printf("ERROR: Failed to list files: %v", err)
		http.Error(w, "Failed to list files", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(files)
}

// @Summary      Search files by title
// @Description  Case-insensitive substring search over file titles. An empty query returns the full catalog; zero matches yields 404, not an error page.
// @Tags         files
// @Produce      json
// @Security     BearerAuth
// @Param        query   query     string  false  "Title substring"
// @Param        limit   query     int     false  "Number of items to return" default(100)
// @Param        offset  query     int     false  "Offset for pagination" default(0)
// @Success      200     {array}   models.File
// @Failure      401     {string}  string "Unauthorized"
// @Failure      404     {object}  map[string]string "No files found"
// @Failure      500     {string}  string "Internal Server Error"
// @Router       /files/search [get]
func (s *Server) SearchFilesHandler(w http.ResponseWriter, r *http.Request) {
	limit, offset := parsePagination(r)
	query := r.URL.Query().Get("query")

	files, err := s.store.SearchFilesByTitle(r.Context(), query, limit, offset)
	if err != nil {
		log.Printf("ERROR: File search failed: %v", err)
		http.Error(w, "Server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if len(files) == 0 {
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(map[string]string{"error": "No files found"})
		return
	}

	json.NewEncoder(w).Encode(files)
}

// @Summary      Upload a file
// @Description  Stores the blob first and creates the catalog record only after the blob write succeeded, so no record can ever point at missing bytes.
// @Tags         files
// @Accept       multipart/form-data
// @Produce      json
// @Security     BearerAuth
// @Param        file         formData  file    true  "File content"
// @Param        title        formData  string  true  "Title"
// @Param        description  formData  string  true  "Description"
// @Success      201          {object}  models.File
// @Failure      400          {string}  string "Missing file, title or description"
// @Failure      401          {string}  string "Unauthorized"
// @Failure      403          {string}  string "Admin privileges required"
// @Failure      500          {string}  string "Internal Server Error"
// @Router       /files [post]
func (s *Server) UploadFileHandler(w http.ResponseWriter, r *http.Request) {
	claims := GetUserFromContext(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, 1<<30)

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		http.Error(w, "Error parsing multipart form", http.StatusBadRequest)
		return
	}

	title := strings.TrimSpace(r.FormValue("title"))
	description := strings.TrimSpace(r.FormValue("description"))

	// Walidacja przed jakimkolwiek zapisem do storage.
	if title == "" || description == "" {
		http.Error(w, "Title and description are required", http.StatusBadRequest)
		return
	}

	file, handler, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "Error retrieving the file", http.StatusBadRequest)
		return
	}
	defer file.Close()

	fileID, err := s.generateUniqueID(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	if err := s.storage.Save(r.Context(), fileID, file); err != nil {
		log.Printf("ERROR: Failed to save blob %s: %v", fileID, err)
		http.Error(w, "Failed to save file", http.StatusInternalServerError)
		return
	}

	sizeBytes := handler.Size
	mimeType := handler.Header.Get("Content-Type")

	params := database.CreateFileParams{
		ID:          fileID,
		Title:       title,
		Description: description,
		StorageKey:  fileID,
		FileName:    handler.Filename,
		SizeBytes:   &sizeBytes,
		MimeType:    &mimeType,
		UploadedBy:  &claims.UserID,
	}

	created, err := s.store.CreateFile(r.Context(), params)
	if err != nil {
		// Blob jest już na dysku; sprzątamy, żeby nie zostawić sieroty.
		if delErr := s.storage.Delete(r.Context(), fileID); delErr != nil {
			log.Printf("WARN: Orphaned blob %s left after failed record create: %v", fileID, delErr)
		}
		log.Printf("ERROR: Failed to create file record %s: %v", fileID, err)
		http.Error(w, "Failed to create file record", http.StatusInternalServerError)
		return
	}

	s.publishFileEvent(r.Context(), claims.UserID, "file_uploaded", created)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(created)
}

// @Summary      Download a file
// @Description  Streams the blob behind a catalog record. The download counter is bumped only after the blob was successfully opened.
// @Tags         files
// @Produce      application/octet-stream
// @Security     BearerAuth
// @Param        fileId  path      string  true  "File ID"
// @Success      200     {file}    binary
// @Failure      401     {string}  string "Unauthorized"
// @Failure      404     {string}  string "File not found"
// @Failure      500     {string}  string "File not found on storage"
// @Router       /files/{fileId}/download [get]
func (s *Server) DownloadFileHandler(w http.ResponseWriter, r *http.Request) {
	fileID := chi.URLParam(r, "fileId")
	if fileID == "" {
		http.Error(w, "File ID is required", http.StatusBadRequest)
		return
	}

	file, err := s.store.GetFileByID(r.Context(), fileID)
	if err != nil {
		http.Error(w, "Failed to retrieve file metadata", http.StatusInternalServerError)
		return
	}
	if file == nil {
		http.Error(w, "File not found", http.StatusNotFound)
		return
	}

	fileStream, err := s.storage.Get(r.Context(), file.StorageKey)
	if err != nil {
		// Rekord bez bloba to niespójność, nie zwykłe 404.
		log.Printf("ERROR: Record %s points at missing blob %s: %v", file.ID, file.StorageKey, err)
		http.Error(w, "File not found on storage", http.StatusInternalServerError)
		return
	}
	defer fileStream.Close()

	if err := s.store.IncrementDownloadCount(r.Context(), file.ID); err != nil {
		log.Printf("WARN: Failed to bump download counter for %s: %v", file.ID, err)
	}

	w.Header().Set("Content-Disposition", "attachment; filename=\""+file.FileName+"\"")
	if file.MimeType != nil && *file.MimeType != "" {
		w.Header().Set("Content-Type", *file.MimeType)
	} else {
		w.Header().Set("Content-Type", "application/octet-stream")
	}

	if file.SizeBytes != nil {
		w.Header().Set("Content-Length", fmt.Sprintf("%d", *file.SizeBytes))
	}

	io.Copy(w, fileStream)
}

// @Summary      Delete a file
// @Description  Removes the blob and the catalog record. A failed blob delete is logged as an inconsistency but does not keep the record alive: a record that can never be downloaded is worse than an orphaned blob.
// @Tags         files
// @Produce      json
// @Security     BearerAuth
// @Param        fileId  path      string  true  "File ID"
// @Success      204     {string}  string "No Content"
// @Failure      401     {string}  string "Unauthorized"
// @Failure      403     {string}  string "Admin privileges required"
// @Failure      404     {string}  string "File not found"
// @Failure      500     {string}  string "Internal Server Error"
// @Router       /files/{fileId} [delete]
func (s *Server) DeleteFileHandler(w http.ResponseWriter, r *http.Request) {
	claims := GetUserFromContext(r.Context())
	fileID := chi.URLParam(r, "fileId")

	if fileID == "" {
		http.Error(w, "File ID is required", http.StatusBadRequest)
		return
	}

	file, err := s.store.GetFileByID(r.Context(), fileID)
	if err != nil {
		http.Error(w, "Failed to retrieve file metadata", http.StatusInternalServerError)
		return
	}
	if file == nil {
		http.Error(w, "File not found", http.StatusNotFound)
		return
	}

	blobDeleted := true
	if err := s.storage.Delete(r.Context(), file.StorageKey); err != nil {
		blobDeleted = false
		log.Printf("NIESPOJNOSC: blob %s for record %s could not be deleted, record will be removed anyway: %v",
			file.StorageKey, file.ID, err)
	}

	deleted, err := s.store.DeleteFile(r.Context(), file.ID)
	if err != nil {
		if blobDeleted {
			log.Printf("NIESPOJNOSC: blob %s deleted but record %s remains: %v", file.StorageKey, file.ID, err)
		}
		http.Error(w, "Failed to delete file", http.StatusInternalServerError)
		return
	}
	if !deleted {
		http.Error(w, "File not found", http.StatusNotFound)
		return
	}

	s.publishFileEvent(r.Context(), claims.UserID, "file_deleted", file)

	w.WriteHeader(http.StatusNoContent)
}

// publishFileEvent journals a catalog change and pushes it to every
// connected websocket client. Both are best-effort.
func (s *Server) publishFileEvent(ctx context.Context, userID int64, eventType string, payload interface{}) {
	if err := s.store.LogEvent(ctx, userID, eventType, payload); err != nil {
		log.Printf("WARN: Failed to journal %s event: %v", eventType, err)
	}

	if s.wsHub == nil {
		return
	}
	eventMsg := map[string]interface{}{"event_type": eventType, "payload": payload}
	eventBytes, err := json.Marshal(eventMsg)
	if err != nil {
		return
	}
	s.wsHub.BroadcastAll(eventBytes)
}
