package users

import "time"

type User struct {
	ID          string    `json:"id"`
	Email       string    `json:"email"`
	Name        string    `json:"name"`
	Role        string    `json:"role"`
	Department  string    `json:"departament"`
	Function    string    `json:"functia"`
	ManagerID   string    `json:"managerId,omitempty"`
	ManagerName string    `json:"superior,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

type CreateInput struct {
	Email      string `json:"email" validate:"required,email,max=254"`
	Name       string `json:"name" validate:"required,max=200"`
	Password   string `json:"password" validate:"required,min=8,max=128"`
	Role       string `json:"role" validate:"required,oneof=admin manager user"`
	Department string `json:"departament" validate:"max=200"`
	Function   string `json:"functia" validate:"max=200"`
	ManagerID  string `json:"managerId" validate:"omitempty,uuid"`
}

type UpdateInput struct {
	Email      string `json:"email" validate:"required,email,max=254"`
	Name       string `json:"name" validate:"required,max=200"`
	Role       string `json:"role" validate:"required,oneof=admin manager user"`
	Department string `json:"departament" validate:"max=200"`
	Function   string `json:"functia" validate:"max=200"`
}

type RoleCount struct {
	Role  string `json:"role"`
	Count int    `json:"count"`
}
