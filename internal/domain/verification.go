package domain

// UserVerification stores pending email-verification OTP codes.
// PK: user_id, SK: type ("otp").
// ExpiresAt is a Unix timestamp used as DynamoDB TTL.
type UserVerification struct {
	UserID    string `json:"user_id" dynamodbav:"user_id"`
	Type      string `json:"type" dynamodbav:"type"`
	Code      string `json:"code" dynamodbav:"code"`
	ExpiresAt int64  `json:"expires_at" dynamodbav:"expires_at"` // TTL (Unix seconds)
}

// VerificationTypeOTP is the sort-key value for registration OTP codes.
const VerificationTypeOTP = "otp"
