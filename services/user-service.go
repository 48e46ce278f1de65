package services

import (
	"context"
	"fmt"
	"html"
	"time"

	"github.com/LeylaVieira/merntasks-backend/logging"
	"github.com/LeylaVieira/merntasks-backend/models"
	"github.com/LeylaVieira/merntasks-backend/utils"

	"github.com/google/uuid"
	"github.com/sony/gobreaker"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type UserService struct {
	UsersCollection *mongo.Collection
	EmailBreaker    *gobreaker.CircuitBreaker
}

func NewUserService(usersCollection *mongo.Collection, emailBreaker *gobreaker.CircuitBreaker) *UserService {
	return &UserService{
		UsersCollection: usersCollection,
		EmailBreaker:    emailBreaker,
	}
}

type RegisterInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// insertUserError maps a unique-index violation on the email field to
// ErrEmailTaken, so concurrent registrations that slip past the lookup
// still surface as a duplicate rather than a storage failure.
func insertUserError(err error) error {
	if mongo.IsDuplicateKeyError(err) {
		return ErrEmailTaken
	}
	return fmt.Errorf("failed to save user: %w", err)
}

// sendEmail routes outbound mail through the circuit breaker so a dead
// SMTP relay fails fast instead of tying up request handlers.
func (s *UserService) sendEmail(to, subject, body string) error {
	_, err := s.EmailBreaker.Execute(func() (interface{}, error) {
		return nil, utils.SendEmail(to, subject, body)
	})
	return err
}

// RegisterUser stores an unconfirmed account and emails a confirmation
// token.
func (s *UserService) RegisterUser(ctx context.Context, input RegisterInput) error {
	var existing models.User
	if err := s.UsersCollection.FindOne(ctx, bson.M{"email": input.Email}).Decode(&existing); err == nil {
		return ErrEmailTaken
	} else if err != mongo.ErrNoDocuments {
		return fmt.Errorf("failed to check email: %w", err)
	}

	if err := utils.ValidatePassword(input.Password); err != nil {
		return ErrWeakPassword
	}

	hashed, err := utils.HashPassword(input.Password)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	user := models.User{
		ID:        primitive.NewObjectID(),
		Name:      html.EscapeString(input.Name),
		Email:     html.EscapeString(input.Email),
		Password:  hashed,
		Token:     uuid.New().String(),
		Confirmed: false,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if _, err := s.UsersCollection.InsertOne(ctx, user); err != nil {
		return insertUserError(err)
	}

	subject, body := utils.RegistrationEmail(user.Name, user.Token)
	if err := s.sendEmail(user.Email, subject, body); err != nil {
		// The account exists; the user can request another email later.
		logging.Logger.Errorf("Event ID: CONFIRMATION_EMAIL_FAILED, Description: Failed to send confirmation email to %s: %v", user.Email, err)
	}
	return nil
}

// ConfirmUser activates the account matching an emailed token.
func (s *UserService) ConfirmUser(ctx context.Context, token string) error {
	if token == "" {
		return ErrInvalidToken
	}
	update := bson.M{"$set": bson.M{
		"confirmed": true,
		"token":     "",
		"updatedAt": time.Now().UTC(),
	}}
	result, err := s.UsersCollection.UpdateOne(ctx, bson.M{"token": token}, update)
	if err != nil {
		return fmt.Errorf("failed to confirm user: %w", err)
	}
	if result.MatchedCount == 0 {
		return ErrInvalidToken
	}
	return nil
}

type LoginResult struct {
	ID    primitive.ObjectID `json:"id"`
	Name  string             `json:"name"`
	Email string             `json:"email"`
	Token string             `json:"token"`
}

// Authenticate verifies the credentials of a confirmed account and
// issues a session token.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (*LoginResult, error) {
	var user models.User
	if err := s.UsersCollection.FindOne(ctx, bson.M{"email": email}).Decode(&user); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to fetch user: %w", err)
	}

	if !user.Confirmed {
		return nil, ErrNotConfirmed
	}
	if !utils.CheckPassword(user.Password, password) {
		return nil, ErrWrongPassword
	}

	token, err := utils.GenerateToken(user.ID.Hex(), user.Email, user.Name)
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}

	return &LoginResult{
		ID:    user.ID,
		Name:  user.Name,
		Email: user.Email,
		Token: token,
	}, nil
}

// ForgotPassword stores a reset token and emails it to the account.
func (s *UserService) ForgotPassword(ctx context.Context, email string) error {
	var user models.User
	if err := s.UsersCollection.FindOne(ctx, bson.M{"email": email}).Decode(&user); err != nil {
		if err == mongo.ErrNoDocuments {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to fetch user: %w", err)
	}

	token := uuid.New().String()
	update := bson.M{"$set": bson.M{"token": token, "updatedAt": time.Now().UTC()}}
	if _, err := s.UsersCollection.UpdateOne(ctx, bson.M{"_id": user.ID}, update); err != nil {
		return fmt.Errorf("failed to save reset token: %w", err)
	}

	subject, body := utils.PasswordResetEmail(user.Name, token)
	if err := s.sendEmail(user.Email, subject, body); err != nil {
		logging.Logger.Errorf("Event ID: RESET_EMAIL_FAILED, Description: Failed to send reset email to %s: %v", user.Email, err)
		return fmt.Errorf("failed to send reset email: %w", err)
	}
	return nil
}

// CheckResetToken verifies an emailed reset token is still valid.
func (s *UserService) CheckResetToken(ctx context.Context, token string) error {
	if token == "" {
		return ErrInvalidToken
	}
	err := s.UsersCollection.FindOne(ctx, bson.M{"token": token}).Err()
	if err == mongo.ErrNoDocuments {
		return ErrInvalidToken
	}
	if err != nil {
		return fmt.Errorf("failed to check token: %w", err)
	}
	return nil
}

// ResetPassword sets a new password for the account holding the token.
func (s *UserService) ResetPassword(ctx context.Context, token, password string) error {
	if token == "" {
		return ErrInvalidToken
	}
	if err := utils.ValidatePassword(password); err != nil {
		return ErrWeakPassword
	}

	hashed, err := utils.HashPassword(password)
	if err != nil {
		return err
	}

	update := bson.M{"$set": bson.M{
		"password":  hashed,
		"token":     "",
		"updatedAt": time.Now().UTC(),
	}}
	result, err := s.UsersCollection.UpdateOne(ctx, bson.M{"token": token}, update)
	if err != nil {
		return fmt.Errorf("failed to reset password: %w", err)
	}
	if result.MatchedCount == 0 {
		return ErrInvalidToken
	}
	return nil
}
