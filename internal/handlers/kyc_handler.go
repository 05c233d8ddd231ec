package handlers

import (
	"errors"

	"swapcash/internal/apperrors"
	"swapcash/internal/middleware"
	"swapcash/internal/models"
	"swapcash/internal/services"
	"swapcash/internal/utils"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type KYCHandler struct {
	kycService services.KYCService
}

func NewKYCHandler(kycService services.KYCService) *KYCHandler {
	return &KYCHandler{
		kycService: kycService,
	}
}

var allowedDocumentTypes = map[string]models.KYCDocumentType{
	"id_card":  models.KYCDocumentTypeIDCard,
	"passport": models.KYCDocumentTypePassport,
	"selfie":   models.KYCDocumentTypeSelfie,
}

// Upload accepts a multipart verification document.
func (h *KYCHandler) Upload(c *gin.Context) {
	telegramID, ok := middleware.TelegramID(c)
	if !ok {
		utils.UnauthorizedResponse(c)
		return
	}

	docType, ok := allowedDocumentTypes[c.PostForm("type")]
	if !ok {
		utils.BadRequestResponse(c, "Document type must be one of: id_card, passport, selfie")
		return
	}

	fileHeader, err := c.FormFile("document")
	if err != nil {
		utils.BadRequestResponse(c, "Document file is required")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		utils.InternalServerErrorResponse(c)
		return
	}
	defer file.Close()

	doc, err := h.kycService.Upload(c.Request.Context(), &services.UploadDocumentRequest{
		TelegramID:  telegramID,
		Type:        docType,
		FileName:    fileHeader.Filename,
		ContentType: fileHeader.Header.Get("Content-Type"),
		Size:        fileHeader.Size,
		Reader:      file,
	})
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			utils.NotFoundResponse(c, "User")
			return
		}
		utils.BadRequestResponse(c, err.Error())
		return
	}

	utils.CreatedResponse(c, "Document uploaded successfully", doc)
}

// MyDocuments lists the authenticated user's submitted documents.
func (h *KYCHandler) MyDocuments(c *gin.Context) {
	telegramID, ok := middleware.TelegramID(c)
	if !ok {
		utils.UnauthorizedResponse(c)
		return
	}

	docs, err := h.kycService.GetForUser(c.Request.Context(), telegramID)
	if err != nil {
		utils.InternalServerErrorResponse(c)
		return
	}

	utils.SuccessResponse(c, "Documents retrieved successfully", docs)
}

// ListPending is the operator review queue.
func (h *KYCHandler) ListPending(c *gin.Context) {
	params := utils.GetPaginationParams(c)

	docs, total, err := h.kycService.ListPending(c.Request.Context(), params)
	if err != nil {
		utils.InternalServerErrorResponse(c)
		return
	}

	utils.SuccessResponseWithMeta(c, "Pending documents retrieved successfully", docs,
		&utils.Meta{Pagination: utils.CreatePaginationMeta(params, total)})
}

// DocumentURL returns a short-lived link to view a document.
func (h *KYCHandler) DocumentURL(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid document ID")
		return
	}

	url, err := h.kycService.DocumentURL(c.Request.Context(), id)
	if err != nil {
		utils.InternalServerErrorResponse(c)
		return
	}

	utils.SuccessResponse(c, "Document URL generated successfully", gin.H{"url": url})
}

type reviewRequest struct {
	Approve bool   `json:"approve"`
	Note    string `json:"note"`
}

// Review records an admin decision on a document.
func (h *KYCHandler) Review(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid document ID")
		return
	}

	var request reviewRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.BadRequestResponse(c, "Invalid request: "+err.Error())
		return
	}

	doc, err := h.kycService.Review(c.Request.Context(), id, request.Approve,
		middleware.AdminEmail(c), request.Note)
	if err != nil {
		utils.InternalServerErrorResponse(c)
		return
	}

	utils.SuccessResponse(c, "Document reviewed successfully", doc)
}
