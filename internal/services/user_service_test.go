package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"golang.org/x/crypto/bcrypt"

	"imobilBack/internal/auth"
	"imobilBack/internal/models"
	"imobilBack/internal/repositories"
	"imobilBack/utils"
)

func TestValidatePassword(t *testing.T) {
	cases := []struct {
		name     string
		password string
		valid    bool
	}{
		{"accepts all classes", "Parola9!", true},
		{"too short", "Pa9!", false},
		{"no upper", "parola99!", false},
		{"no lower", "PAROLA99!", false},
		{"no digit", "Parolaaa!", false},
		{"no special", "Parola999", false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := validatePassword(tc.password)
			if tc.valid && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !tc.valid {
				var verr *models.ValidationError
				if !errors.As(err, &verr) || verr.Field != "password" {
					t.Fatalf("expected password validation error got %v", err)
				}
			}
		})
	}
}

func TestPhoneRegexp(t *testing.T) {
	valid := []string{"+37369123456", "069123456", "+373 69 123 456"}
	for _, p := range valid {
		if !phoneRegexp.MatchString(p) {
			t.Fatalf("expected %q to be valid", p)
		}
	}
	invalid := []string{"abc", "12", "+3736912345678901234"}
	for _, p := range invalid {
		if phoneRegexp.MatchString(p) {
			t.Fatalf("expected %q to be invalid", p)
		}
	}
}

func newUserService(t *testing.T) (*UserService, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })

	tokens, err := utils.NewManager("test-signing-key")
	if err != nil {
		t.Fatal(err)
	}
	svc := &UserService{
		UserRepo:      &repositories.UserRepository{DB: db},
		ReferenceRepo: &repositories.ReferenceRepository{DB: db},
		Tokens:        tokens,
	}
	return svc, mock
}

func accountRow(t *testing.T, id int, password string, active bool) *sqlmock.Rows {
	t.Helper()
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatal(err)
	}
	return sqlmock.NewRows([]string{
		"id", "first_name", "last_name", "username", "email", "phone", "password",
		"is_active", "date_joined", "modified_at", "user_type_id", "name",
	}).AddRow(id, "Ion", "Rusu", "ion", "ion@test.md", "+37369000000", string(hashed),
		active, time.Now(), nil, auth.RoleAgent, "agent")
}

func TestSignInRejectsDeactivatedAccount(t *testing.T) {
	svc, mock := newUserService(t)

	mock.ExpectQuery("SELECT (.+) FROM users u").
		WithArgs("ion").
		WillReturnRows(accountRow(t, 7, "Parola9!", false))

	_, _, err := svc.SignIn(context.Background(), models.SignInRequest{Username: "ion", Password: "Parola9!"})
	if !errors.Is(err, models.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestSignInIssuesTokensForActiveAccount(t *testing.T) {
	svc, mock := newUserService(t)

	mock.ExpectQuery("SELECT (.+) FROM users u").
		WithArgs("ion").
		WillReturnRows(accountRow(t, 7, "Parola9!", true))
	mock.ExpectExec("REPLACE INTO sessions").
		WithArgs(7, auth.RoleAgent, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	user, tokens, err := svc.SignIn(context.Background(), models.SignInRequest{Username: "ion", Password: "Parola9!"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if user.ID != 7 {
		t.Fatalf("expected user 7 got %d", user.ID)
	}
	if tokens.AccessToken == "" || tokens.RefreshToken == "" {
		t.Fatal("expected both tokens to be issued")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestUpdateUserDeactivatesAccount(t *testing.T) {
	svc, mock := newUserService(t)
	admin := auth.Actor{UserID: 1, Role: auth.RoleAdmin, Authenticated: true}

	mock.ExpectQuery("SELECT (.+) FROM users u").
		WithArgs(7).
		WillReturnRows(accountRow(t, 7, "Parola9!", true))
	mock.ExpectQuery("SELECT id, name FROM user_types").
		WithArgs(auth.RoleAgent).
		WillReturnRows(refRow(auth.RoleAgent, "agent"))
	for i := 0; i < 3; i++ {
		mock.ExpectQuery("SELECT EXISTS").
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
	}
	mock.ExpectExec("UPDATE users SET user_type_id = \\?, is_active = \\?, modified_at = \\? WHERE id = \\?").
		WithArgs(auth.RoleAgent, false, sqlmock.AnyArg(), 7).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("SELECT (.+) FROM users u").
		WithArgs(7).
		WillReturnRows(accountRow(t, 7, "Parola9!", false))

	user, err := svc.UpdateUser(context.Background(), admin, 7, models.UserInput{
		UserTypeID: intPtr(auth.RoleAgent),
		IsActive:   boolPtr(false),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if user.IsActive {
		t.Fatal("expected the account to be deactivated")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}
