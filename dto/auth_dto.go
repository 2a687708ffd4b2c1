package dto

type LoginDTO struct {
	MobileNumber string `json:"mobilenumber" binding:"required"`
	Password     string `json:"password" binding:"required"`
}

type RegisterDTO struct {
	Name         string `json:"name" binding:"required"`
	MobileNumber string `json:"mobilenumber" binding:"required"`
	Password     string `json:"password" binding:"required,min=6"`
}

type ChangeMyPasswordDTO struct {
	CurrentPassword string `json:"currentPassword" binding:"required"`
	NewPassword     string `json:"newPassword" binding:"required,min=8"`
}
