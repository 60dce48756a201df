package repositories

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-sql-driver/mysql"

	"imobilBack/internal/models"
)

type UserRepository struct {
	DB *sql.DB
}

const userColumns = `u.id, u.first_name, u.last_name, u.username, u.email, u.phone, u.password,
       u.is_active, u.date_joined, u.modified_at, u.user_type_id, ut.name`

func scanUser(row *sql.Row) (models.User, error) {
	var (
		u          models.User
		userType   models.Reference
		modifiedAt sql.NullTime
	)
	err := row.Scan(&u.ID, &u.FirstName, &u.LastName, &u.Username, &u.Email, &u.Phone, &u.Password,
		&u.IsActive, &u.DateJoined, &modifiedAt, &userType.ID, &userType.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, models.ErrUserNotFound
	}
	if err != nil {
		return models.User{}, err
	}
	u.UserTypeID = userType.ID
	u.UserType = &userType
	if modifiedAt.Valid {
		u.ModifiedAt = &modifiedAt.Time
	}
	return u, nil
}

func (r *UserRepository) CreateUser(ctx context.Context, user models.User) (models.User, error) {
	res, err := r.DB.ExecContext(ctx, `INSERT INTO users (first_name, last_name, username, email, phone, password, user_type_id, is_active, date_joined) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		user.FirstName, user.LastName, user.Username, user.Email, user.Phone,
		user.Password, user.UserTypeID, user.IsActive, time.Now(),
	)
	if err != nil {
		var mysqlErr *mysql.MySQLError
		if errors.As(err, &mysqlErr) && mysqlErr.Number == 1062 {
			return models.User{}, models.ErrDuplicateEmail
		}
		return models.User{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return models.User{}, err
	}
	return r.GetUserByID(ctx, int(id))
}

func (r *UserRepository) GetUserByID(ctx context.Context, id int) (models.User, error) {
	row := r.DB.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users u JOIN user_types ut ON u.user_type_id = ut.id WHERE u.id = ?`, id)
	return scanUser(row)
}

func (r *UserRepository) GetUserByEmail(ctx context.Context, email string) (models.User, error) {
	row := r.DB.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users u JOIN user_types ut ON u.user_type_id = ut.id WHERE u.email = ?`, email)
	return scanUser(row)
}

func (r *UserRepository) GetUserByUsername(ctx context.Context, username string) (models.User, error) {
	row := r.DB.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users u JOIN user_types ut ON u.user_type_id = ut.id WHERE u.username = ?`, username)
	return scanUser(row)
}

// GetUsers lists users ordered by last name. One search term matches
// either name; two terms match first/last in either order.
func (r *UserRepository) GetUsers(ctx context.Context, terms []string) ([]models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users u JOIN user_types ut ON u.user_type_id = ut.id`
	var params []interface{}

	switch len(terms) {
	case 0:
	case 1:
		query += ` WHERE u.first_name LIKE ? OR u.last_name LIKE ?`
		like := "%" + terms[0] + "%"
		params = append(params, like, like)
	case 2:
		query += ` WHERE (u.first_name LIKE ? AND u.last_name LIKE ?) OR (u.first_name LIKE ? AND u.last_name LIKE ?)`
		first, last := "%"+terms[0]+"%", "%"+terms[1]+"%"
		params = append(params, first, last, last, first)
	default:
		return []models.User{}, nil
	}
	query += ` ORDER BY u.last_name`

	rows, err := r.DB.QueryContext(ctx, query, params...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		var (
			u          models.User
			userType   models.Reference
			modifiedAt sql.NullTime
		)
		if err := rows.Scan(&u.ID, &u.FirstName, &u.LastName, &u.Username, &u.Email, &u.Phone, &u.Password,
			&u.IsActive, &u.DateJoined, &modifiedAt, &userType.ID, &userType.Name); err != nil {
			return nil, err
		}
		u.UserTypeID = userType.ID
		u.UserType = &userType
		if modifiedAt.Valid {
			u.ModifiedAt = &modifiedAt.Time
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (r *UserRepository) UpdateUser(ctx context.Context, id int, in models.UserInput, hashedPassword *string) (models.User, error) {
	var (
		sets   []string
		params []interface{}
	)
	set := func(col string, v interface{}) {
		sets = append(sets, col)
		params = append(params, v)
	}
	if in.FirstName != nil {
		set("first_name = ?", *in.FirstName)
	}
	if in.LastName != nil {
		set("last_name = ?", *in.LastName)
	}
	if in.Username != nil {
		set("username = ?", *in.Username)
	}
	if in.Email != nil {
		set("email = ?", *in.Email)
	}
	if in.Phone != nil {
		set("phone = ?", *in.Phone)
	}
	if in.UserTypeID != nil {
		set("user_type_id = ?", *in.UserTypeID)
	}
	if in.IsActive != nil {
		set("is_active = ?", *in.IsActive)
	}
	if hashedPassword != nil {
		set("password = ?", *hashedPassword)
	}
	if len(sets) == 0 {
		return r.GetUserByID(ctx, id)
	}
	set("modified_at = ?", time.Now())
	params = append(params, id)

	query := `UPDATE users SET `
	for i, s := range sets {
		if i > 0 {
			query += ", "
		}
		query += s
	}
	query += ` WHERE id = ?`

	res, err := r.DB.ExecContext(ctx, query, params...)
	if err != nil {
		return models.User{}, err
	}
	if _, err := res.RowsAffected(); err != nil {
		return models.User{}, err
	}
	return r.GetUserByID(ctx, id)
}

func (r *UserRepository) UpdatePassword(ctx context.Context, id int, hashed string) error {
	res, err := r.DB.ExecContext(ctx, `UPDATE users SET password = ?, modified_at = ? WHERE id = ?`, hashed, time.Now(), id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return models.ErrUserNotFound
	}
	return nil
}

// EmailTaken reports whether another user already holds the email.
func (r *UserRepository) EmailTaken(ctx context.Context, email string, excludeID int) (bool, error) {
	var exists bool
	err := r.DB.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM users WHERE email = ? AND id <> ?)`, email, excludeID).Scan(&exists)
	return exists, err
}

func (r *UserRepository) PhoneTaken(ctx context.Context, phone string, excludeID int) (bool, error) {
	var exists bool
	err := r.DB.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM users WHERE phone = ? AND id <> ?)`, phone, excludeID).Scan(&exists)
	return exists, err
}

func (r *UserRepository) UsernameTaken(ctx context.Context, username string, excludeID int) (bool, error) {
	var exists bool
	err := r.DB.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM users WHERE username = ? AND id <> ?)`, username, excludeID).Scan(&exists)
	return exists, err
}

// SaveSession stores a refresh-token session, replacing any previous one
// for the same user.
func (r *UserRepository) SaveSession(ctx context.Context, s models.Session) error {
	_, err := r.DB.ExecContext(ctx, `REPLACE INTO sessions (user_id, role, refresh_token, expires_at) VALUES (?, ?, ?, ?)`,
		s.UserID, s.Role, s.RefreshToken, s.ExpiresAt)
	return err
}

func (r *UserRepository) GetSessionByToken(ctx context.Context, token string) (models.Session, error) {
	var s models.Session
	err := r.DB.QueryRowContext(ctx, `SELECT user_id, role, refresh_token, expires_at FROM sessions WHERE refresh_token = ?`, token).
		Scan(&s.UserID, &s.Role, &s.RefreshToken, &s.ExpiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Session{}, nil
	}
	return s, err
}
