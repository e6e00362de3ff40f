// internal/i18n/keys.go
package i18n

// Translation keys grouped by feature area.
const (
	// Auth
	KeyAuthRequired           = "auth.required"
	KeyAuthInvalidCredentials = "auth.invalid_credentials"
	KeyAuthEmailExists        = "auth.email_exists"
	KeyAuthAccountSuspended   = "auth.account_suspended"
	KeyAuthTokenExpired       = "auth.token_expired"
	KeyAuthRegistered         = "auth.registered"
	KeyAuthLoggedIn           = "auth.logged_in"

	// Projects
	KeyProjectCreated = "project.created"
	KeyProjectUpdated = "project.updated"
	KeyProjectDeleted = "project.deleted"

	// Purchases
	KeyPurchaseCompleted       = "purchase.completed"
	KeyPurchaseAlreadyOwned    = "purchase.already_owned"
	KeyPurchaseDetailsRequired = "purchase.details_required"
	KeyPurchasePaymentFailed   = "purchase.payment_failed"
	KeyPurchaseDownloadLimit   = "purchase.download_limit_reached"

	// Wishlist and cart
	KeyWishlistAdded   = "wishlist.added"
	KeyWishlistRemoved = "wishlist.removed"
	KeyCartAdded       = "cart.added"
	KeyCartRemoved     = "cart.removed"
	KeyCartCleared     = "cart.cleared"

	// Reviews
	KeyReviewCreated = "review.created"
	KeyReviewExists  = "review.exists"

	// Contact
	KeyContactReceived = "contact.received"
	KeyContactUpdated  = "contact.updated"

	// Files. The per-resource not_found messages live only in the locale
	// files; NotFoundResponse derives their keys from the resource name.
	KeyFileUploadFailed  = "file.upload_failed"
	KeyFileDownloadReady = "file.download_ready"

	// Admin
	KeyAdminAccessDenied = "admin.access_denied"
	KeyAdminUserUpdated  = "admin.user_updated"

	// Validation
	KeyValidationInvalid  = "validation.invalid"
	KeyValidationRequired = "validation.required"

	// General
	KeyInternalError = "general.internal_error"
	KeyRateLimited   = "general.rate_limited"
)
