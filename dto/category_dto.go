package dto

type CreateCategoryDTO struct {
	Name string `json:"name" binding:"required"`
}

// UpdateCategoryDTO — all fields are optional pointers
type UpdateCategoryDTO struct {
	Name     *string `json:"name"`
	IsActive *bool   `json:"isActive"`
}
