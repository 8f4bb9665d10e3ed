package handler

import (
	"errors"
	"fmt"
	"mime"
	"mime/multipart"
	"net/http"

	"tush00nka/chathub/internal/pkg/apperror"
	"tush00nka/chathub/internal/pkg/httputils"
	"tush00nka/chathub/internal/service"

	"github.com/gorilla/mux"
)

type MessageHandler struct {
	messageService service.MessageService
	maxUploadSize  int64
}

func NewMessageHandler(messageService service.MessageService, maxUploadSize int64) *MessageHandler {
	return &MessageHandler{messageService: messageService, maxUploadSize: maxUploadSize}
}

func (h *MessageHandler) RegisterRoutes(router *mux.Router) {
	messages := router.PathPrefix("/messages").Subrouter()
	messages.HandleFunc("/{chatId:[0-9]+}", h.getAllMessages).Methods("GET", "OPTIONS")
	messages.HandleFunc("/{chatId:[0-9]+}", h.sendMessage).Methods("POST", "OPTIONS")
	messages.HandleFunc("/{chatId:[0-9]+}/{messageId:[0-9]+}", h.deleteMessage).Methods("DELETE", "OPTIONS")
}

type sendMessageRequest struct {
	Content string `json:"content" validate:"max=10000"`
}

// @Summary Get messages
// @Description Get messages of a chat, oldest first
// @Tags messages
// @Produce json
// @Security Bearer
// @Param chatId path int true "Chat ID"
// @Success 200 {object} response.DataResponse{data=[]model.MessageView}
// @Failure 403 {object} response.ErrorResponse
// @Failure 404 {object} response.ErrorResponse
// @Router /messages/{chatId} [get]
func (h *MessageHandler) getAllMessages(w http.ResponseWriter, r *http.Request) {
	userID, chatID, err := chatRequest(r)
	if err != nil {
		httputils.ResponseError(w, err)
		return
	}

	messages, err := h.messageService.GetAllMessages(r.Context(), userID, chatID)
	if err != nil {
		httputils.ResponseError(w, err)
		return
	}

	httputils.ResponseData(w, http.StatusOK, messages, "Messages fetched successfully")
}

// @Summary Send message
// @Description Send a message with optional attachments (multipart field "attachments", up to 5 files)
// @Tags messages
// @Accept multipart/form-data
// @Produce json
// @Security Bearer
// @Param chatId path int true "Chat ID"
// @Param content formData string false "Message text"
// @Param attachments formData file false "Attachments"
// @Success 201 {object} response.DataResponse{data=model.MessageView}
// @Failure 400 {object} response.ErrorResponse
// @Failure 403 {object} response.ErrorResponse
// @Failure 404 {object} response.ErrorResponse
// @Router /messages/{chatId} [post]
func (h *MessageHandler) sendMessage(w http.ResponseWriter, r *http.Request) {
	userID, chatID, err := chatRequest(r)
	if err != nil {
		httputils.ResponseError(w, err)
		return
	}

	var (
		request sendMessageRequest
		uploads []service.Upload
	)
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "multipart/form-data" {
		r.Body = http.MaxBytesReader(w, r.Body, int64(service.MaxAttachments)*h.maxUploadSize+1<<20)
		if err := r.ParseMultipartForm(h.maxUploadSize); err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				httputils.ResponseError(w, apperror.Validation("Request body is too large"))
				return
			}
			httputils.ResponseError(w, apperror.Validation("Invalid multipart form"))
			return
		}
		// Временные файлы формы удаляются при любом исходе
		defer r.MultipartForm.RemoveAll()

		request.Content = r.FormValue("content")
		if err := validateStruct(&request); err != nil {
			httputils.ResponseError(w, err)
			return
		}

		files := r.MultipartForm.File["attachments"]
		if len(files) > service.MaxAttachments {
			httputils.ResponseError(w, apperror.Validation(fmt.Sprintf("A message can carry at most %d attachments", service.MaxAttachments)))
			return
		}
		uploads, err = h.openUploads(files)
		if err != nil {
			httputils.ResponseError(w, err)
			return
		}
		defer closeUploads(uploads)
	} else if err := decodeJSON(r, &request); err != nil {
		httputils.ResponseError(w, err)
		return
	}

	message, err := h.messageService.SendMessage(r.Context(), userID, chatID, request.Content, uploads)
	if err != nil {
		httputils.ResponseError(w, err)
		return
	}

	httputils.ResponseData(w, http.StatusCreated, message, "Message saved successfully")
}

func (h *MessageHandler) openUploads(files []*multipart.FileHeader) ([]service.Upload, error) {
	uploads := make([]service.Upload, 0, len(files))
	for _, fh := range files {
		if fh.Size > h.maxUploadSize {
			closeUploads(uploads)
			return nil, apperror.Validation(fmt.Sprintf("File %s exceeds the upload limit of %d bytes", fh.Filename, h.maxUploadSize))
		}
		f, err := fh.Open()
		if err != nil {
			closeUploads(uploads)
			return nil, apperror.Internal("failed to open upload", err)
		}
		contentType := fh.Header.Get("Content-Type")
		if contentType == "" {
			contentType = "application/octet-stream"
		}
		uploads = append(uploads, service.Upload{
			Filename:    fh.Filename,
			ContentType: contentType,
			Size:        fh.Size,
			Body:        f,
		})
	}
	return uploads, nil
}

func closeUploads(uploads []service.Upload) {
	for _, u := range uploads {
		if f, ok := u.Body.(multipart.File); ok {
			_ = f.Close()
		}
	}
}

// @Summary Delete message
// @Tags messages
// @Produce json
// @Security Bearer
// @Param chatId path int true "Chat ID"
// @Param messageId path int true "Message ID"
// @Success 200 {object} response.DataResponse{data=model.MessageView}
// @Failure 403 {object} response.ErrorResponse
// @Failure 404 {object} response.ErrorResponse
// @Router /messages/{chatId}/{messageId} [delete]
func (h *MessageHandler) deleteMessage(w http.ResponseWriter, r *http.Request) {
	userID, chatID, err := chatRequest(r)
	if err != nil {
		httputils.ResponseError(w, err)
		return
	}
	messageID, err := pathID(r, "messageId")
	if err != nil {
		httputils.ResponseError(w, err)
		return
	}

	message, err := h.messageService.DeleteMessage(r.Context(), userID, chatID, messageID)
	if err != nil {
		httputils.ResponseError(w, err)
		return
	}

	httputils.ResponseData(w, http.StatusOK, message, "Message deleted successfully")
}
