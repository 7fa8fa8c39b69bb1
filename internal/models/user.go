package models

import "time"

// User & auth related models
type User struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	Email     string `gorm:"unique;not null;index" json:"email"`
	Password  string `gorm:"not null" json:"-"` // hashé (bcrypt)
	Nom       string `gorm:"index" json:"nom"`
	Prenom    string `gorm:"index" json:"prenom"`
	Role      string `gorm:"not null;default:'user'" json:"role"` // admin, user
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
