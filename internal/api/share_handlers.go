package api

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"wymiana-plikow/internal/mailer"

	"github.com/go-chi/chi/v5"
)

type ShareRequest struct {
	Email  string `json:"email" example:"friend@example.com"`
	Attach bool   `json:"attach" example:"false"`
}

type ShareResponse struct {
	FileID     string `json:"file_id" example:"_vx2a-43VqRT5wz_s9u4x"`
	Email      string `json:"email" example:"friend@example.com"`
	EmailsSent int64  `json:"emails_sent" example:"3"`
}

// @Summary      Share a file via email
// @Description  Mails a download link for the file, optionally attaching the blob itself. The share counter is bumped only after the mail was accepted for delivery.
// @Tags         files
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        fileId        path      string        true  "File ID"
// @Param        shareRequest  body      ShareRequest  true  "Recipient"
// @Success      200           {object}  ShareResponse
// @Failure      400           {string}  string "Missing recipient email"
// @Failure      401           {string}  string "Unauthorized"
// @Failure      404           {string}  string "File not found"
// @Failure      500           {string}  string "Error sharing file"
// @Router       /files/{fileId}/share [post]
func (s *Server) ShareFileHandler(w http.ResponseWriter, r *http.Request) {
	claims := GetUserFromContext(r.Context())
	fileID := chi.URLParam(r, "fileId")

	var req ShareRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	req.Email = strings.TrimSpace(req.Email)
	if req.Email == "" {
		http.Error(w, "Recipient email is required", http.StatusBadRequest)
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

	downloadLink := fmt.Sprintf("%s/api/v1/files/%s/download", s.config.AppHost, file.ID)
	body := fmt.Sprintf("You can download the file from the following link: %s", downloadLink)

	var attachments []mailer.Attachment
	if req.Attach {
		blob, err := s.storage.Get(r.Context(), file.StorageKey)
		if err != nil {
			log.Printf("ERROR: Failed to open blob %s for share attachment: %v", file.StorageKey, err)
			http.Error(w, "Error sharing file", http.StatusInternalServerError)
			return
		}
		data, err := io.ReadAll(blob)
		blob.Close()
		if err != nil {
			log.Printf("ERROR: Failed to read blob %s for share attachment: %v", file.StorageKey, err)
			http.Error(w, "Error sharing file", http.StatusInternalServerError)
			return
		}
		attachments = append(attachments, mailer.Attachment{Filename: file.FileName, Data: data})
	}

	subject := fmt.Sprintf("File: %s", file.Title)
	if err := s.mailer.Send(r.Context(), req.Email, subject, body, attachments...); err != nil {
		// Licznik zostaje nietknięty, gdy wysyłka nie doszła do skutku.
		log.Printf("ERROR: Failed to send share email for file %s to %s: %v", file.ID, req.Email, err)
		http.Error(w, "Error sharing file", http.StatusInternalServerError)
		return
	}

	if err := s.store.IncrementEmailsSent(r.Context(), file.ID); err != nil {
		log.Printf("WARN: Failed to bump share counter for %s: %v", file.ID, err)
	}

	s.publishFileEvent(r.Context(), claims.UserID, "file_shared", map[string]interface{}{
		"file_id": file.ID,
		"title":   file.Title,
	})

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(ShareResponse{
		FileID:     file.ID,
		Email:      req.Email,
		EmailsSent: file.EmailsSent + 1,
	})
}
