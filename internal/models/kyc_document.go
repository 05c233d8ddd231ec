package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type KYCDocumentType string

const (
	KYCDocumentTypeIDCard   KYCDocumentType = "id_card"
	KYCDocumentTypePassport KYCDocumentType = "passport"
	KYCDocumentTypeSelfie   KYCDocumentType = "selfie"
)

type KYCDocument struct {
	ID          primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	TelegramID  int64              `json:"telegram_id" bson:"telegram_id" validate:"required"`
	Type        KYCDocumentType    `json:"type" bson:"type" validate:"required"`
	ObjectKey   string             `json:"object_key" bson:"object_key"`
	ContentType string             `json:"content_type" bson:"content_type"`
	Size        int64              `json:"size" bson:"size"`
	Status      KYCStatus          `json:"status" bson:"status" default:"pending"`
	ReviewedBy  string             `json:"reviewed_by" bson:"reviewed_by"`
	ReviewNote  string             `json:"review_note" bson:"review_note"`
	CreatedAt   time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt   time.Time          `json:"updated_at" bson:"updated_at"`
}
