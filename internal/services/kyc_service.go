package services

import (
	"context"
	"fmt"
	"io"
	"path"

	"swapcash/internal/config"
	"swapcash/internal/models"
	"swapcash/internal/repositories/interfaces"
	"swapcash/internal/utils"
	"swapcash/pkg/logger"
	"swapcash/pkg/storage"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type KYCService interface {
	// Upload stores a verification document and flips the user's KYC
	// status to pending.
	Upload(ctx context.Context, request *UploadDocumentRequest) (*models.KYCDocument, error)

	// Review records an admin decision on a document and mirrors the
	// outcome onto the user.
	Review(ctx context.Context, id primitive.ObjectID, approve bool, reviewedBy, note string) (*models.KYCDocument, error)

	GetForUser(ctx context.Context, telegramID int64) ([]*models.KYCDocument, error)
	ListPending(ctx context.Context, params *utils.PaginationParams) ([]*models.KYCDocument, int64, error)

	// DocumentURL returns a short-lived presigned link for review.
	DocumentURL(ctx context.Context, id primitive.ObjectID) (string, error)
}

type UploadDocumentRequest struct {
	TelegramID  int64
	Type        models.KYCDocumentType
	FileName    string
	ContentType string
	Size        int64
	Reader      io.Reader
}

type kycService struct {
	kycRepo  interfaces.KYCRepository
	userRepo interfaces.UserRepository
	storage  storage.StorageProvider
	notifier Notifier
	cfg      *config.StorageConfig
	logger   *logger.Logger
}

func NewKYCService(
	kycRepo interfaces.KYCRepository,
	userRepo interfaces.UserRepository,
	provider storage.StorageProvider,
	notifier Notifier,
	cfg *config.StorageConfig,
	log *logger.Logger,
) KYCService {
	return &kycService{
		kycRepo:  kycRepo,
		userRepo: userRepo,
		storage:  provider,
		notifier: notifier,
		cfg:      cfg,
		logger:   log,
	}
}

func (s *kycService) Upload(ctx context.Context, request *UploadDocumentRequest) (*models.KYCDocument, error) {
	if request.Size > s.cfg.MaxDocumentSize {
		return nil, fmt.Errorf("document exceeds maximum size of %d bytes", s.cfg.MaxDocumentSize)
	}

	user, err := s.userRepo.GetByTelegramID(ctx, request.TelegramID)
	if err != nil {
		return nil, err
	}

	key := fmt.Sprintf("%s/%d/%s%s",
		s.cfg.KYCPrefix, request.TelegramID, uuid.New().String(), path.Ext(request.FileName))

	if _, err := s.storage.Upload(ctx, &storage.UploadRequest{
		Key:         key,
		Reader:      request.Reader,
		ContentType: request.ContentType,
		Size:        request.Size,
		Metadata: map[string]string{
			"telegram_id":   fmt.Sprintf("%d", request.TelegramID),
			"document_type": string(request.Type),
		},
	}); err != nil {
		return nil, fmt.Errorf("failed to upload document: %w", err)
	}

	doc := &models.KYCDocument{
		TelegramID:  request.TelegramID,
		Type:        request.Type,
		ObjectKey:   key,
		ContentType: request.ContentType,
		Size:        request.Size,
		Status:      models.KYCStatusPending,
	}

	if err := s.kycRepo.Create(ctx, doc); err != nil {
		// Metadata is authoritative; an orphaned object is cleaned up
		// rather than left dangling.
		if delErr := s.storage.Delete(ctx, key); delErr != nil {
			s.logger.WithError(delErr).WithField("object_key", key).
				Error("Failed to remove orphaned document after metadata write failure")
		}
		return nil, err
	}

	if user.KYCStatus != models.KYCStatusApproved {
		if err := s.userRepo.Update(ctx, user.ID, map[string]interface{}{
			"kyc_status": models.KYCStatusPending,
		}); err != nil {
			s.logger.WithError(err).WithTelegramID(request.TelegramID).
				Error("Failed to mark user KYC pending")
		}
	}

	go s.notifier.NotifyAdmins(fmt.Sprintf(
		"New KYC document (%s) from user %d awaiting review", request.Type, request.TelegramID))

	return doc, nil
}

func (s *kycService) Review(ctx context.Context, id primitive.ObjectID, approve bool, reviewedBy, note string) (*models.KYCDocument, error) {
	doc, err := s.kycRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	status := models.KYCStatusRejected
	if approve {
		status = models.KYCStatusApproved
	}

	if err := s.kycRepo.UpdateStatus(ctx, id, status, reviewedBy, note); err != nil {
		return nil, err
	}
	doc.Status = status
	doc.ReviewedBy = reviewedBy
	doc.ReviewNote = note

	user, err := s.userRepo.GetByTelegramID(ctx, doc.TelegramID)
	if err != nil {
		return nil, err
	}
	if err := s.userRepo.Update(ctx, user.ID, map[string]interface{}{
		"kyc_status": status,
	}); err != nil {
		return nil, err
	}

	s.logger.LogAdminAction(reviewedBy, "kyc_"+string(status), map[string]interface{}{
		"document_id": id.Hex(),
		"telegram_id": doc.TelegramID,
	})

	go func() {
		msg := "Your identity verification was approved."
		if status == models.KYCStatusRejected {
			msg = "Your identity verification was rejected."
			if note != "" {
				msg += " Reason: " + note
			}
		}
		s.notifier.NotifyUser(doc.TelegramID, msg)
	}()

	return doc, nil
}

func (s *kycService) GetForUser(ctx context.Context, telegramID int64) ([]*models.KYCDocument, error) {
	return s.kycRepo.GetByTelegramID(ctx, telegramID)
}

func (s *kycService) ListPending(ctx context.Context, params *utils.PaginationParams) ([]*models.KYCDocument, int64, error) {
	return s.kycRepo.ListByStatus(ctx, models.KYCStatusPending, params)
}

func (s *kycService) DocumentURL(ctx context.Context, id primitive.ObjectID) (string, error) {
	doc, err := s.kycRepo.GetByID(ctx, id)
	if err != nil {
		return "", err
	}
	return s.storage.GetURL(ctx, doc.ObjectKey, s.cfg.PresignedExpiry)
}
