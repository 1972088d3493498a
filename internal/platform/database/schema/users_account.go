// Copyright (c) 2026 GalleManga. All rights reserved.

// Package schema names the tables and columns of the GalleManga database.
//
// Stores build their SQL from these definitions so a column rename is a
// compile-time change instead of a string hunt.
package schema

// UsersAccountTable represents the 'users.account' table
type UsersAccountTable struct {
	Table         string
	ID            string
	Username      string
	Email         string
	PasswordHash  string
	Role          string
	GalleCoins    string
	SessionToken  string
	ActiveSession string
	CreatedAt     string
	UpdatedAt     string
}

// UsersAccount is the schema definition for users.account
var UsersAccount = UsersAccountTable{
	Table:         "users.account",
	ID:            "id",
	Username:      "username",
	Email:         "email",
	PasswordHash:  "passwordhash",
	Role:          "role",
	GalleCoins:    "gallecoins",
	SessionToken:  "sessiontoken",
	ActiveSession: "activesession",
	CreatedAt:     "createdat",
	UpdatedAt:     "updatedat",
}

func (t UsersAccountTable) Columns() []string {
	return []string{
		t.ID, t.Username, t.Email, t.PasswordHash, t.Role, t.GalleCoins,
		t.CreatedAt, t.UpdatedAt,
	}
}
