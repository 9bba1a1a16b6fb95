// internal/i18n/keys.go
package i18n

// Translation keys constants
const (
	// Common
	KeySuccess       = "success"
	KeyError         = "error"
	KeyInternalError = "error.internal"
	KeyRateLimited   = "error.rate_limited"

	// Authentication
	KeyAuthRequired           = "auth.required"
	KeyAuthInvalidToken       = "auth.invalid_token"
	KeyAuthTokenExpired       = "auth.token_expired"
	KeyAuthInvalidCredentials = "auth.invalid_credentials"
	KeyAuthUserExists         = "auth.user_exists"
	KeyAuthLoginSuccess       = "auth.login_success"
	KeyAuthRegisterSuccess    = "auth.register_success"
	KeyAuthForbidden          = "auth.forbidden"
	KeyAuthSellerRequired     = "auth.seller_required"

	// Users
	KeyUserNotFound = "user.not_found"

	// Items
	KeyItemCreated      = "item.created"
	KeyItemNotFound     = "item.not_found"
	KeyItemDeleted      = "item.deleted"
	KeyTradeItemCreated = "trade_item.created"
	KeyTradeItemDeleted = "trade_item.deleted"

	// Orders
	KeyOrderCreated              = "order.created"
	KeyOrderNotFound             = "order.not_found"
	KeyOrderUpdated              = "order.updated"
	KeyOrderAwaitingConfirmation = "order.awaiting_confirmation"
	KeyOrderInvalidTransition    = "order.invalid_transition"
	KeyOrderConflict             = "order.conflict"

	// Trades
	KeyTradeCreated  = "trade.created"
	KeyTradeNotFound = "trade.not_found"
	KeyTradeUpdated  = "trade.updated"
	KeyTradeDeleted  = "trade.deleted"

	// Dashboard
	KeyDashboardInvalidRange = "dashboard.invalid_range"

	// Validation
	KeyValidationRequired = "validation.required"
	KeyValidationInvalid  = "validation.invalid"
	KeyValidationID       = "validation.invalid_id"

	// File Upload
	KeyFileUploadFailed = "file.upload_failed"
	KeyFileInvalidType  = "file.invalid_type"
	KeyFileTooLarge     = "file.too_large"
)
