package wire

// ErrorDomain is set on every errdetails.ErrorInfo the server attaches.
const ErrorDomain = "storekeeper"

// Error reasons carried in errdetails.ErrorInfo.
const (
	ReasonUserNotFound            = "USER_NOT_FOUND"
	ReasonWrongPassword           = "WRONG_PASSWORD"
	ReasonAccountLocked           = "ACCOUNT_LOCKED"
	ReasonVerificationRequired    = "VERIFICATION_REQUIRED"
	ReasonVerificationNotRequired = "VERIFICATION_NOT_REQUIRED"
	ReasonInvalidCode             = "INVALID_CODE"
	ReasonProductNotFound         = "PRODUCT_NOT_FOUND"
	ReasonInvalidQuantity         = "INVALID_QUANTITY"
	ReasonInsufficientStock       = "INSUFFICIENT_STOCK"
	ReasonSelfDelete              = "SELF_DELETE"
	ReasonValidation              = "VALIDATION"
	ReasonAlreadyExists           = "ALREADY_EXISTS"
	ReasonNotFound                = "NOT_FOUND"
	ReasonUnauthenticated         = "UNAUTHENTICATED"
	ReasonForbidden               = "FORBIDDEN"
	ReasonStoreUnavailable        = "STORE_UNAVAILABLE"
)

// MetaRemainingSeconds is the ErrorInfo metadata key of ACCOUNT_LOCKED.
const MetaRemainingSeconds = "remaining_seconds"
