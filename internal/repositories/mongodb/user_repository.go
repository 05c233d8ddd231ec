package mongodb

import (
	"context"
	"fmt"
	"time"

	"swapcash/internal/apperrors"
	"swapcash/internal/models"
	"swapcash/internal/repositories/interfaces"
	"swapcash/internal/services"
	"swapcash/internal/utils"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type userRepository struct {
	collection *mongo.Collection
	cache      services.CacheService
}

func NewUserRepository(db *mongo.Database, cache services.CacheService) interfaces.UserRepository {
	return &userRepository{
		collection: db.Collection("users"),
		cache:      cache,
	}
}

// Basic CRUD operations
func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	user.ID = primitive.NewObjectID()
	user.CreatedAt = time.Now()
	user.UpdatedAt = time.Now()

	_, err := r.collection.InsertOne(ctx, user)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}

	r.cacheUser(ctx, user)

	return nil
}

func (r *userRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	var user models.User
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&user)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return &user, nil
}

func (r *userRepository) GetByTelegramID(ctx context.Context, telegramID int64) (*models.User, error) {
	// Try cache first
	if user := r.getUserFromCache(ctx, telegramID); user != nil {
		return user, nil
	}

	var user models.User
	err := r.collection.FindOne(ctx, bson.M{"telegram_id": telegramID}).Decode(&user)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user by telegram id: %w", err)
	}

	r.cacheUser(ctx, &user)

	return &user, nil
}

func (r *userRepository) GetByReferralCode(ctx context.Context, code string) (*models.User, error) {
	var user models.User
	err := r.collection.FindOne(ctx, bson.M{"referral_code": code}).Decode(&user)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user by referral code: %w", err)
	}

	return &user, nil
}

func (r *userRepository) Update(ctx context.Context, id primitive.ObjectID, updates map[string]interface{}) error {
	updates["updated_at"] = time.Now()

	_, err := r.collection.UpdateOne(
		ctx,
		bson.M{"_id": id},
		bson.M{"$set": updates},
	)
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}

	r.invalidateUserCache(ctx, id)

	return nil
}

// Atomic referral primitives

// MarkActive conditions the write on is_active still being false, so two
// racing qualifying events produce exactly one winner.
func (r *userRepository) MarkActive(ctx context.Context, id primitive.ObjectID) (bool, error) {
	result, err := r.collection.UpdateOne(
		ctx,
		bson.M{"_id": id, "is_active": false},
		bson.M{"$set": bson.M{"is_active": true, "updated_at": time.Now()}},
	)
	if err != nil {
		return false, fmt.Errorf("failed to mark user active: %w", err)
	}

	r.invalidateUserCache(ctx, id)

	return result.ModifiedCount == 1, nil
}

func (r *userRepository) IncrementReferralCount(ctx context.Context, id primitive.ObjectID, delta int64) error {
	_, err := r.collection.UpdateOne(
		ctx,
		bson.M{"_id": id},
		bson.M{
			"$inc": bson.M{"referral_count": delta},
			"$set": bson.M{"updated_at": time.Now()},
		},
	)
	if err != nil {
		return fmt.Errorf("failed to increment referral count: %w", err)
	}

	r.invalidateUserCache(ctx, id)

	return nil
}

func (r *userRepository) CreditEarnings(ctx context.Context, telegramID int64, amount float64) error {
	result, err := r.collection.UpdateOne(
		ctx,
		bson.M{"telegram_id": telegramID},
		bson.M{
			"$inc": bson.M{"referral_earnings": amount},
			"$set": bson.M{"updated_at": time.Now()},
		},
	)
	if err != nil {
		return fmt.Errorf("failed to credit earnings: %w", err)
	}
	if result.MatchedCount == 0 {
		return apperrors.ErrUserNotFound
	}

	r.invalidateUserCacheByTelegramID(ctx, telegramID)

	return nil
}

// DebitEarnings conditions the decrement on the balance covering the amount,
// so the balance can never go negative and an attempted overdraw is rejected
// rather than clamped.
func (r *userRepository) DebitEarnings(ctx context.Context, telegramID int64, amount float64) error {
	result, err := r.collection.UpdateOne(
		ctx,
		bson.M{
			"telegram_id":       telegramID,
			"referral_earnings": bson.M{"$gte": amount},
		},
		bson.M{
			"$inc": bson.M{"referral_earnings": -amount},
			"$set": bson.M{"updated_at": time.Now()},
		},
	)
	if err != nil {
		return fmt.Errorf("failed to debit earnings: %w", err)
	}
	if result.MatchedCount == 0 {
		// Either the user does not exist or the balance cannot cover the
		// debit; distinguish them for the caller.
		count, countErr := r.collection.CountDocuments(ctx, bson.M{"telegram_id": telegramID})
		if countErr != nil {
			return fmt.Errorf("failed to debit earnings: %w", countErr)
		}
		if count == 0 {
			return apperrors.ErrUserNotFound
		}
		return apperrors.ErrInsufficientEarnings
	}

	r.invalidateUserCacheByTelegramID(ctx, telegramID)

	return nil
}

// Listing
func (r *userRepository) List(ctx context.Context, params *utils.PaginationParams) ([]*models.User, int64, error) {
	filter := bson.M{}

	total, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count users: %w", err)
	}

	cursor, err := r.collection.Find(ctx, filter, params.GetSortOptions())
	if err != nil {
		return nil, 0, fmt.Errorf("failed to find users: %w", err)
	}
	defer cursor.Close(ctx)

	var users []*models.User
	for cursor.Next(ctx) {
		var user models.User
		if err := cursor.Decode(&user); err != nil {
			return nil, 0, fmt.Errorf("failed to decode user: %w", err)
		}
		users = append(users, &user)
	}

	return users, total, nil
}

func (r *userRepository) ListReferredBy(ctx context.Context, code string, params *utils.PaginationParams) ([]*models.User, int64, error) {
	filter := bson.M{"referred_by": code}

	total, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count referred users: %w", err)
	}

	cursor, err := r.collection.Find(ctx, filter, params.GetSortOptions())
	if err != nil {
		return nil, 0, fmt.Errorf("failed to find referred users: %w", err)
	}
	defer cursor.Close(ctx)

	var users []*models.User
	for cursor.Next(ctx) {
		var user models.User
		if err := cursor.Decode(&user); err != nil {
			return nil, 0, fmt.Errorf("failed to decode user: %w", err)
		}
		users = append(users, &user)
	}

	return users, total, nil
}

// Cache operations
func (r *userRepository) cacheUser(ctx context.Context, user *models.User) {
	if r.cache != nil {
		cacheKey := fmt.Sprintf("user:tg:%d", user.TelegramID)
		r.cache.Set(ctx, cacheKey, user, 15*time.Minute)
	}
}

func (r *userRepository) getUserFromCache(ctx context.Context, telegramID int64) *models.User {
	if r.cache == nil {
		return nil
	}

	cacheKey := fmt.Sprintf("user:tg:%d", telegramID)
	var user models.User
	if err := r.cache.Get(ctx, cacheKey, &user); err != nil {
		return nil
	}

	return &user
}

func (r *userRepository) invalidateUserCache(ctx context.Context, id primitive.ObjectID) {
	if r.cache == nil {
		return
	}

	// The cache is keyed by telegram id; resolve it before invalidating.
	var user models.User
	if err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&user); err == nil {
		r.cache.Delete(ctx, fmt.Sprintf("user:tg:%d", user.TelegramID))
	}
}

func (r *userRepository) invalidateUserCacheByTelegramID(ctx context.Context, telegramID int64) {
	if r.cache != nil {
		r.cache.Delete(ctx, fmt.Sprintf("user:tg:%d", telegramID))
	}
}
