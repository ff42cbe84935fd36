package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type User struct {
	ID           primitive.ObjectID `bson:"_id,omitempty"  json:"_id"`
	Name         string             `bson:"name"           json:"name"`
	Email        string             `bson:"email"          json:"email"`
	PasswordHash string             `bson:"password"       json:"-"`
	Role         string             `bson:"role"           json:"role"`
	CreatedAt    time.Time          `bson:"createdAt"      json:"createdAt"`
}

func (u *User) IsAdmin() bool {
	return u.Role == "admin"
}

// Customer is the slice of a user shown next to orders in admin views.
type Customer struct {
	ID    primitive.ObjectID `json:"_id"`
	Name  string             `json:"name"`
	Email string             `json:"email"`
}

func (u *User) Customer() *Customer {
	return &Customer{ID: u.ID, Name: u.Name, Email: u.Email}
}
