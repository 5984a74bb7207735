package database

import (
	"database/sql"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"golang.org/x/crypto/bcrypt"

	"fieldtrack-backend/internal/models"
)

// CreateUser inserts a new account with a bcrypt-hashed password
func CreateUser(db *sqlx.DB, name, email, password, role string) (*models.User, error) {
	if role != "worker" && role != "manager" {
		return nil, fmt.Errorf("invalid role: %s", role)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := models.User{
		ID:        uuid.New().String(),
		Email:     email,
		Password:  string(hashed),
		Name:      name,
		Role:      role,
		CreatedAt: time.Now().Unix(),
		UpdatedAt: time.Now().Unix(),
	}

	query := `
		INSERT INTO users (id, email, password, name, role, created_at, updated_at)
		VALUES (:id, :email, :password, :name, :role, :created_at, :updated_at)`

	if _, err := db.NamedExec(query, user); err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return nil, ErrDuplicateEmail
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	log.Printf("✅ Created user: %s (%s)", email, role)
	return &user, nil
}

// GetUserByEmail fetches a user account by email address
func GetUserByEmail(db *sqlx.DB, email string) (*models.User, error) {
	var user models.User
	err := db.Get(&user, `SELECT * FROM users WHERE email = $1`, email)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &user, nil
}

// GetUsersByRole lists accounts with the given role, or all accounts when
// role is empty
func GetUsersByRole(db *sqlx.DB, role string) ([]models.UserResponse, error) {
	var users []models.User
	var err error

	if role == "" {
		err = db.Select(&users, `SELECT * FROM users ORDER BY name ASC`)
	} else {
		err = db.Select(&users, `SELECT * FROM users WHERE role = $1 ORDER BY name ASC`, role)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	responses := make([]models.UserResponse, 0, len(users))
	for i := range users {
		responses = append(responses, users[i].ToUserResponse())
	}
	return responses, nil
}
