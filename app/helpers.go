package app

import (
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

// UuidToString converts a pgtype.UUID to its string representation.
func UuidToString(u pgtype.UUID) string {
	return uuid.UUID(u.Bytes).String()
}

// NewUuid returns a new UUIDv7 wrapped as a pgtype.UUID.
func NewUuid() pgtype.UUID {
	return pgtype.UUID{Bytes: uuid.Must(uuid.NewV7()), Valid: true}
}
