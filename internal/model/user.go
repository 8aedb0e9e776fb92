package model

import "time"

// User is the slice of the users table the booking core needs. Account
// creation, credentials and sessions are owned by the upstream identity
// service; the core only ever asks "does this user exist and is it
// active" before attaching a hold or reservation to it.
//
// Fields:
//  ID          – primary key identifier.
//  Email       – unique email address.
//  DisplayName – name shown in reservation listings.
//  IsActive    – whether the account is active.
//  CreatedAt   – creation timestamp.
type User struct {
	ID          uint64    // users.id
	Email       string    // users.email
	DisplayName string    // users.display_name
	IsActive    bool      // users.is_active
	CreatedAt   time.Time // users.created_at
}
