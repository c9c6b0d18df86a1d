package authRepository

const (
	queryCreateUser = `
INSERT INTO users (id, name, email, password, is_admin, created_at, updated_at)
VALUES (:id, :name, :email, :password, :is_admin, :created_at, :updated_at)`

	queryGetById = `
SELECT id, name, email, password, is_admin, created_at, updated_at
FROM users
    WHERE id = :id`

	queryGetByEmail = `
SELECT id, name, email, password, is_admin, created_at, updated_at
FROM users
    WHERE email = :email`
)
