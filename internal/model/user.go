package model

import "time"

// Role names stored in the users table and carried in JWT claims.
// Customers book reservations; owners manage restaurant listings and
// the reservations made against them.
const (
	RoleCustomer = "CUSTOMER"
	RoleOwner    = "OWNER"
)

// User represents an application user record as stored in the `users`
// table. The Name and Email fields double as the snapshot source for a
// reservation's customer_name and contact_info columns at booking time.
//
// Fields:
//
//	ID           – primary key identifier of the user.
//	Name         – display name shown to restaurant owners.
//	Email        – unique email address, also used as contact info.
//	PasswordHash – bcrypt hashed password.
//	Role         – CUSTOMER or OWNER.
//	IsActive     – whether the account is active.
//	CreatedAt    – timestamp of creation.
//	UpdatedAt    – timestamp of last update.
type User struct {
	ID           uint64    // users.id
	Name         string    // users.name
	Email        string    // users.email
	PasswordHash string    // users.password_hash
	Role         string    // users.role
	IsActive     bool      // users.is_active
	CreatedAt    time.Time // users.created_at
	UpdatedAt    time.Time // users.updated_at
}

// RefreshToken models an entry in the `refresh_tokens` table. Each
// refresh token belongs to a user and contains metadata for expiry and
// revocation. The plain token is not stored; only its SHA-256 hash.
//
// Fields:
//
//	ID        – primary key identifier.
//	UserID    – owner of the token.
//	TokenHash – SHA-256 hex digest of the token value.
//	ExpiresAt – expiration timestamp of the token.
//	RevokedAt – when the token was revoked (null if still active).
//	CreatedAt – timestamp of creation.
type RefreshToken struct {
	ID        uint64     // refresh_tokens.id
	UserID    uint64     // refresh_tokens.user_id
	TokenHash string     // refresh_tokens.token_hash
	ExpiresAt time.Time  // refresh_tokens.expires_at
	RevokedAt *time.Time // refresh_tokens.revoked_at (nullable)
	CreatedAt time.Time  // refresh_tokens.created_at
}
