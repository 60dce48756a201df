package services

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"time"
	"unicode"

	"golang.org/x/crypto/bcrypt"

	"imobilBack/internal/auth"
	"imobilBack/internal/models"
	"imobilBack/internal/repositories"
	"imobilBack/utils"
)

const (
	accessTokenTTL  = 60 * time.Minute
	refreshTokenTTL = 30 * 24 * time.Hour
	resetTokenTTL   = time.Hour
)

var (
	phoneRegexp = regexp.MustCompile(`^\+?[\d\s()-]{7,15}$`)
	emailRegexp = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
)

const (
	msgPasswordPolicy = "Parola trebuie să conțină cel puțin 8 caractere, o literă mare, o literă mică, un număr și un caracter special."
	msgPhoneInvalid   = "Numărul de telefon nu este valid. Ex: +37369123456"
	msgEmailInvalid   = "Adresa de email nu este validă."
	msgEmailTaken     = "Acest email este deja folosit de un alt utilizator."
	msgPhoneTaken     = "Acest număr de telefon este deja folosit de un alt utilizator."
	msgUsernameTaken  = "Acest nume de utilizator este deja folosit."
	msgEmailUnknown   = "Acest email nu este asociat niciunui utilizator."
)

// MailSender delivers outbound notification mail.
type MailSender interface {
	Send(subject, body string, to []string) error
}

type UserService struct {
	UserRepo      *repositories.UserRepository
	ReferenceRepo *repositories.ReferenceRepository
	Tokens        *utils.Manager
	Mail          MailSender
	ResetURL      string
}

// CreateUser registers an account. Who may assign which role is decided
// up front; a payload without a role becomes a plain agent account.
func (s *UserService) CreateUser(ctx context.Context, actor auth.Actor, in models.UserInput) (models.User, error) {
	if !auth.CanCreateUser(actor, in.UserTypeID) {
		return models.User{}, models.ErrForbidden
	}

	user := models.User{IsActive: true, UserTypeID: auth.RoleAgent}

	required := []struct {
		field string
		value *string
	}{
		{"first_name", in.FirstName},
		{"last_name", in.LastName},
		{"username", in.Username},
		{"email", in.Email},
		{"phone", in.Phone},
		{"password", in.Password},
	}
	for _, f := range required {
		if f.value == nil || *f.value == "" {
			return models.User{}, &models.ValidationError{Field: f.field, Message: models.MsgFieldRequired}
		}
	}

	user.FirstName = *in.FirstName
	user.LastName = *in.LastName
	user.Username = *in.Username
	user.Email = *in.Email
	user.Phone = *in.Phone

	if err := validatePassword(*in.Password); err != nil {
		return models.User{}, err
	}
	if !phoneRegexp.MatchString(user.Phone) {
		return models.User{}, &models.ValidationError{Field: "phone", Message: msgPhoneInvalid}
	}

	if in.UserTypeID != nil {
		if _, err := s.ReferenceRepo.Resolve(ctx, models.RefUserType, *in.UserTypeID); err != nil {
			return models.User{}, err
		}
		user.UserTypeID = *in.UserTypeID
	}

	if err := s.checkUnique(ctx, user.Email, user.Phone, user.Username, 0); err != nil {
		return models.User{}, err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(*in.Password), bcrypt.DefaultCost)
	if err != nil {
		return models.User{}, err
	}
	user.Password = string(hashed)

	return s.UserRepo.CreateUser(ctx, user)
}

// UpdateUser merges a partial payload onto an existing account after the
// role matrix allowed the actor to touch that target with that role.
func (s *UserService) UpdateUser(ctx context.Context, actor auth.Actor, id int, in models.UserInput) (models.User, error) {
	target, err := s.UserRepo.GetUserByID(ctx, id)
	if err != nil {
		return models.User{}, err
	}
	if !auth.CanUpdateUser(actor, target.ID, target.UserTypeID, in.UserTypeID) {
		return models.User{}, models.ErrForbidden
	}

	if in.Phone != nil && !phoneRegexp.MatchString(*in.Phone) {
		return models.User{}, &models.ValidationError{Field: "phone", Message: msgPhoneInvalid}
	}
	if in.UserTypeID != nil {
		if _, err := s.ReferenceRepo.Resolve(ctx, models.RefUserType, *in.UserTypeID); err != nil {
			return models.User{}, err
		}
	}

	email, phone, username := target.Email, target.Phone, target.Username
	if in.Email != nil {
		email = *in.Email
	}
	if in.Phone != nil {
		phone = *in.Phone
	}
	if in.Username != nil {
		username = *in.Username
	}
	if err := s.checkUnique(ctx, email, phone, username, id); err != nil {
		return models.User{}, err
	}

	var hashedPassword *string
	if in.Password != nil {
		if err := validatePassword(*in.Password); err != nil {
			return models.User{}, err
		}
		hashed, err := bcrypt.GenerateFromPassword([]byte(*in.Password), bcrypt.DefaultCost)
		if err != nil {
			return models.User{}, err
		}
		h := string(hashed)
		hashedPassword = &h
	}

	return s.UserRepo.UpdateUser(ctx, id, in, hashedPassword)
}

func (s *UserService) GetUserByID(ctx context.Context, id int) (models.User, error) {
	return s.UserRepo.GetUserByID(ctx, id)
}

// GetUsers lists accounts, optionally narrowed by a name search of one
// or two terms. Three or more terms match nobody.
func (s *UserService) GetUsers(ctx context.Context, search string) ([]models.User, error) {
	terms := strings.Fields(strings.ToLower(search))
	return s.UserRepo.GetUsers(ctx, terms)
}

// SignIn checks credentials by username or email and issues an access
// and a refresh token. The refresh token is persisted server-side.
// Deactivated accounts are rejected like bad credentials.
func (s *UserService) SignIn(ctx context.Context, in models.SignInRequest) (models.User, models.Tokens, error) {
	var (
		user models.User
		err  error
	)
	switch {
	case in.Username != "":
		user, err = s.UserRepo.GetUserByUsername(ctx, in.Username)
	case in.Email != "":
		user, err = s.UserRepo.GetUserByEmail(ctx, in.Email)
	default:
		return models.User{}, models.Tokens{}, &models.ValidationError{Field: "username", Message: models.MsgFieldRequired}
	}
	if err != nil {
		if errors.Is(err, models.ErrUserNotFound) {
			return models.User{}, models.Tokens{}, models.ErrInvalidCredentials
		}
		return models.User{}, models.Tokens{}, err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(in.Password)) != nil {
		return models.User{}, models.Tokens{}, models.ErrInvalidCredentials
	}
	if !user.IsActive {
		return models.User{}, models.Tokens{}, models.ErrInvalidCredentials
	}

	tokens, err := s.issueTokens(ctx, user)
	if err != nil {
		return models.User{}, models.Tokens{}, err
	}
	return user, tokens, nil
}

// RefreshTokens rotates the session named by a refresh token.
func (s *UserService) RefreshTokens(ctx context.Context, refreshToken string) (models.Tokens, error) {
	session, err := s.UserRepo.GetSessionByToken(ctx, refreshToken)
	if err != nil {
		return models.Tokens{}, err
	}
	if session.UserID == 0 || session.ExpiresAt.Before(time.Now()) {
		return models.Tokens{}, models.ErrInvalidCredentials
	}

	user, err := s.UserRepo.GetUserByID(ctx, session.UserID)
	if err != nil {
		return models.Tokens{}, err
	}
	if !user.IsActive {
		return models.Tokens{}, models.ErrInvalidCredentials
	}
	return s.issueTokens(ctx, user)
}

func (s *UserService) issueTokens(ctx context.Context, user models.User) (models.Tokens, error) {
	var (
		tokens models.Tokens
		err    error
	)
	tokens.AccessToken, err = s.Tokens.NewAccessToken(user.ID, user.UserTypeID, accessTokenTTL)
	if err != nil {
		return models.Tokens{}, err
	}
	tokens.RefreshToken, err = s.Tokens.NewRefreshToken()
	if err != nil {
		return models.Tokens{}, err
	}

	err = s.UserRepo.SaveSession(ctx, models.Session{
		UserID:       user.ID,
		Role:         user.UserTypeID,
		RefreshToken: tokens.RefreshToken,
		ExpiresAt:    time.Now().Add(refreshTokenTTL),
	})
	if err != nil {
		return models.Tokens{}, err
	}
	return tokens, nil
}

// RequestPasswordReset mails a reset link to the account's address.
func (s *UserService) RequestPasswordReset(ctx context.Context, email string) error {
	if email == "" {
		return &models.ValidationError{Field: "email", Message: models.MsgFieldRequired}
	}
	user, err := s.UserRepo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, models.ErrUserNotFound) {
			return &models.ValidationError{Field: "email", Message: msgEmailUnknown}
		}
		return err
	}

	token, err := s.Tokens.NewResetToken(user.ID, resetTokenTTL)
	if err != nil {
		return err
	}
	body := "Apasă pe linkul următor pentru a-ți reseta parola: " + s.ResetURL + token
	return s.Mail.Send("Resetare parolă", body, []string{user.Email})
}

// ResetPassword sets a new password for the account named by a valid
// reset token.
func (s *UserService) ResetPassword(ctx context.Context, token, password string) error {
	userID, err := s.Tokens.ParseResetToken(token)
	if err != nil {
		return models.ErrInvalidCredentials
	}
	if err := validatePassword(password); err != nil {
		return err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	return s.UserRepo.UpdatePassword(ctx, userID, string(hashed))
}

func (s *UserService) checkUnique(ctx context.Context, email, phone, username string, excludeID int) error {
	if taken, err := s.UserRepo.EmailTaken(ctx, email, excludeID); err != nil {
		return err
	} else if taken {
		return &models.ValidationError{Field: "email", Message: msgEmailTaken}
	}
	if taken, err := s.UserRepo.PhoneTaken(ctx, phone, excludeID); err != nil {
		return err
	} else if taken {
		return &models.ValidationError{Field: "phone", Message: msgPhoneTaken}
	}
	if taken, err := s.UserRepo.UsernameTaken(ctx, username, excludeID); err != nil {
		return err
	} else if taken {
		return &models.ValidationError{Field: "username", Message: msgUsernameTaken}
	}
	return nil
}

// validatePassword enforces length plus one upper, one lower, one digit
// and one special character.
func validatePassword(password string) error {
	var upper, lower, digit, special bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		case strings.ContainsRune("!@#$%^&*()-_=+[]{};:,.<>?", r):
			special = true
		}
	}
	if len(password) < 8 || !upper || !lower || !digit || !special {
		return &models.ValidationError{Field: "password", Message: msgPasswordPolicy}
	}
	return nil
}
