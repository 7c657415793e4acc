package notifications

const (
	TypeFeedbackReceived = "feedback_received"
	TypePasswordReset    = "password_reset"
)

const (
	subjectFeedbackReceived = "Ați primit un nou feedback"
	subjectPasswordReset    = "Resetare parolă Kudos"
)
