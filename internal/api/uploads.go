package api

import (
	"fmt"
	"net/http"
)

// maxUploadBytes bounds multipart uploads.
const maxUploadBytes = 32 << 20

func (h *Handler) handleUploadFile(w http.ResponseWriter, r *http.Request) {
	caseName := r.PathValue("case_name")

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	file, header, err := r.FormFile("file")
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "Missing file in upload")
		return
	}
	defer file.Close()

	size, err := h.lib.SaveUpload(caseName, header.Filename, file)
	if err != nil {
		h.respondFailure(w, err, "Error uploading file")
		return
	}

	h.logger.Info("Uploaded file", "case", caseName, "filename", header.Filename, "size", size)
	h.respondJSON(w, http.StatusOK, map[string]any{
		"success":   true,
		"message":   fmt.Sprintf("File %s uploaded successfully", header.Filename),
		"filename":  header.Filename,
		"case_name": caseName,
		"file_size": size,
	})
}

func (h *Handler) handleUploadURL(w http.ResponseWriter, r *http.Request) {
	caseName := r.PathValue("case_name")

	var req struct {
		URL string `json:"url"`
	}
	if err := decodeBody(r, &req); err != nil || req.URL == "" {
		h.respondError(w, http.StatusBadRequest, "URL is required")
		return
	}

	result, err := h.scraper.Fetch(r.Context(), req.URL)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "Error fetching URL: "+err.Error())
		return
	}

	filename, size, err := h.lib.SaveScraped(caseName, result.Title, req.URL, result.Content)
	if err != nil {
		h.respondFailure(w, err, "Error scraping URL content")
		return
	}

	h.logger.Info("Scraped URL", "case", caseName, "url", req.URL, "filename", filename)
	h.respondJSON(w, http.StatusOK, map[string]any{
		"success":        true,
		"message":        fmt.Sprintf("Webpage content scraped and saved as %s", filename),
		"filename":       filename,
		"case_name":      caseName,
		"url":            req.URL,
		"title":          result.Title,
		"content_type":   result.ContentType,
		"file_size":      size,
		"content_length": len(result.Content),
	})
}

func (h *Handler) handleUploadText(w http.ResponseWriter, r *http.Request) {
	caseName := r.PathValue("case_name")

	var req struct {
		Filename string `json:"filename"`
		Content  string `json:"content"`
	}
	if err := decodeBody(r, &req); err != nil || req.Filename == "" {
		h.respondError(w, http.StatusBadRequest, "Filename and content are required")
		return
	}

	filename, size, err := h.lib.SaveText(caseName, req.Filename, req.Content)
	if err != nil {
		h.respondFailure(w, err, "Error creating text file")
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]any{
		"success":   true,
		"message":   fmt.Sprintf("Text file %s created successfully", filename),
		"filename":  filename,
		"case_name": caseName,
		"file_size": size,
	})
}

func (h *Handler) handleUploadNote(w http.ResponseWriter, r *http.Request) {
	caseName := r.PathValue("case_name")

	var req struct {
		Content string `json:"content"`
	}
	if err := decodeBody(r, &req); err != nil || req.Content == "" {
		h.respondError(w, http.StatusBadRequest, "Content is required")
		return
	}

	filename, timestamp, size, err := h.lib.SaveNote(caseName, req.Content)
	if err != nil {
		h.respondFailure(w, err, "Error inserting note")
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]any{
		"success":   true,
		"message":   fmt.Sprintf("Note %s inserted successfully", filename),
		"filename":  filename,
		"case_name": caseName,
		"timestamp": timestamp,
		"file_size": size,
	})
}
