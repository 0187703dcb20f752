// Package invitedto chứa các cấu trúc dữ liệu đầu vào cho luồng lời mời.
package invitedto

// InviteCreateInput dữ liệu phát hành lời mời
type InviteCreateInput struct {
	Email       string   `json:"email" validate:"required,email"`
	BranchID    string   `json:"branchId" validate:"required"`
	Roles       []string `json:"roles" validate:"required,min=1,dive,required,role_name"`
	TargetType  string   `json:"targetType,omitempty" validate:"omitempty,oneof=admin staff student guardian"` // Mặc định staff
	TargetID    string   `json:"targetId,omitempty"`
	StudentName string   `json:"studentName,omitempty" validate:"max=200,no_xss"`
	BatchName   string   `json:"batchName,omitempty" validate:"max=200,no_xss"`
	Message     string   `json:"message,omitempty" validate:"max=500,no_xss"` // Lời nhắn chèn vào email
}

// InviteAcceptInput dữ liệu nhận lời mời. InviteToken = "-1" là tự cấp quyền thủ công.
type InviteAcceptInput struct {
	InviteToken   string   `json:"inviteToken" validate:"required,min=2,max=255"`
	ConfirmedName string   `json:"confirmedName,omitempty" validate:"max=120,no_xss"`
	BranchID      string   `json:"branchId,omitempty"`                                                           // Chỉ dùng cho luồng thủ công
	Roles         []string `json:"roles,omitempty" validate:"omitempty,dive,role_name"`                          // Chỉ dùng cho luồng thủ công
	TargetType    string   `json:"targetType,omitempty" validate:"omitempty,oneof=admin staff student guardian"` // Chỉ dùng cho luồng thủ công
}
