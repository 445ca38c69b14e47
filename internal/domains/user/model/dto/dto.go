package dto

import (
	"time"

	"parkspot/internal/domains/user/model"
	"parkspot/shared"
	"parkspot/shared/constant"
	gDto "parkspot/shared/dto"
)

// UpdateUserRequest is the admin edit of an account.
type UpdateUserRequest struct {
	FullName   *string `db:"full_name"   json:"full_name"   validate:"omitempty,min=2,max=100"`
	Role       *string `db:"role"        json:"role"        validate:"omitempty,oneof=RENTER OWNER ADMIN"`
	Active     *bool   `db:"active"      json:"active"`
	IsVerified *bool   `db:"is_verified" json:"is_verified"`
}

// LocksOutSelf reports whether applying the edit to the caller's own account would drop admin rights.
func (r UpdateUserRequest) LocksOutSelf() bool {
	demoted := r.Role != nil && *r.Role != constant.RoleAdmin
	deactivated := r.Active != nil && !*r.Active

	return demoted || deactivated
}

type UpdateProfileRequest struct {
	FullName *string `db:"full_name" json:"full_name" validate:"required,min=2,max=100"`
}

type UserResponse struct {
	ID         string     `json:"id"`
	Email      string     `json:"email"`
	FullName   *string    `json:"full_name"`
	Role       string     `json:"role"`
	IsVerified bool       `json:"is_verified"`
	LastLogin  *time.Time `json:"last_login"`
	Active     bool       `json:"active"`
	gDto.Metadata
}

func (r *UserResponse) FromModel(user model.User) {
	r.ID = user.ID
	r.Email = user.Email
	r.FullName = user.FullName
	r.Role = user.Role
	r.IsVerified = user.IsVerified
	r.LastLogin = user.LastLogin
	r.Active = user.Active
	r.Metadata.FromModel(user.Metadata)
}

type GetUsersResponse struct {
	Users     []UserResponse `json:"users"`
	Total     int            `json:"total"`
	Count     int            `json:"count"`
	TotalPage int            `json:"total_page"`
}

func (r *GetUsersResponse) FromModels(users []model.User, total, limit int) {
	r.Users = make([]UserResponse, len(users))
	for i, user := range users {
		r.Users[i].FromModel(user)
	}

	r.Total = total
	r.Count = len(users)
	r.TotalPage = shared.CalculateTotalPage(total, limit)
}
