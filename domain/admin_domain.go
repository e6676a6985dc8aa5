package domain

import "errors"

var (
	MessageSuccessGetDashboard = "dashboard statistics retrieved successfully"
	MessageSuccessGetUsers     = "users retrieved successfully"
	MessageSuccessUpdateStatus = "user status updated successfully"
	MessageSuccessDeleteUser   = "user deleted successfully"

	MessageFailedGetDashboard = "failed to retrieve dashboard statistics"
	MessageFailedGetUsers     = "failed to retrieve users"
	MessageFailedUpdateStatus = "failed to update user status"
	MessageFailedDeleteUser   = "failed to delete user"

	ErrCannotDeleteSelf       = errors.New("admins cannot delete their own account")
	ErrCannotChangeOwnStatus  = errors.New("admins cannot change their own status")
	ErrCannotModifyOtherAdmin = errors.New("admin accounts cannot be modified from the dashboard")
)

type (
	UpdateUserStatusRequest struct {
		Status string `json:"status" validate:"required,oneof=active blocked pending"`
	}

	UserFilter struct {
		Role   string
		Status string
		Search string
	}

	DashboardStats struct {
		TotalUsers       int64            `json:"total_users"`
		UsersByRole      map[string]int64 `json:"users_by_role"`
		PendingUsers     int64            `json:"pending_users"`
		TotalListings    int64            `json:"total_listings"`
		TotalWaste       float64          `json:"total_waste"`
		TotalOrders      int64            `json:"total_orders"`
		OrdersByStatus   map[string]int64 `json:"orders_by_status"`
		Revenue          float64          `json:"revenue"`
		PendingQueries   int64            `json:"pending_queries"`
		ActiveTransports int64            `json:"active_transports"`
	}

	// UserDeletionReport counts what a cascading user delete removed.
	UserDeletionReport struct {
		UserID         string `json:"user_id"`
		Role           string `json:"role"`
		Listings       int64  `json:"listings"`
		Orders         int64  `json:"orders"`
		Payments       int64  `json:"payments"`
		Queries        int64  `json:"queries"`
		Conversations  int64  `json:"conversations"`
		Messages       int64  `json:"messages"`
		Transports     int64  `json:"transports"`
		PredictionLogs int64  `json:"prediction_logs"`
	}
)
