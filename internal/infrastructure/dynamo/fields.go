package dynamo

// DynamoDB attribute names used in update expressions across the repos.
// Using constants prevents silent runtime bugs caused by key typos.
const (
	fieldEmailVerified = "email_verified"
	fieldRefreshToken  = "refresh_token"
	fieldAttemptCount  = "attempt_count"
	fieldLockedUntil   = "locked_until"
	fieldUpdatedAt     = "updated_at"
)
