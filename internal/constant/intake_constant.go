package constant

const (
	TurnRoleUser      = "user"
	TurnRoleAssistant = "assistant"

	UIActionShowSanctionDownload = "SHOW_SANCTION_DOWNLOAD"
)

// Reply templates. The phrasing renderer may rewrite these for tone, but the
// state machine never depends on the rewritten text.
const (
	ReplyAskName = "To get started, please enter your full name (for example: Rahul Sharma)."

	ReplyNameAccepted = "Thanks %s. I'll start your loan application.\n\n" +
		"Please share your PAN number for identity verification."

	ReplyInvalidPAN = "Please enter a valid PAN number (example: ABCDE1234F)."

	ReplyPANRejected = "PAN verification failed. Please double-check the PAN number."

	ReplyPANRetry = "We could not verify your PAN right now. Please try again in a moment."

	ReplyPANVerified = "Your PAN has been successfully verified.\n\n" +
		"I'll now gather a few financial details to evaluate your loan eligibility.\n" +
		"What is your monthly income?"

	ReplyInvalidIncome = "Please enter your monthly income as a number (for example: 50000)."

	ReplyAskEMI = "Got it.\n\n" +
		"Do you currently have any existing EMIs? " +
		"If yes, enter the amount. Otherwise, type 'none'."

	ReplyInvalidEMI = "Please enter a valid EMI amount or type 'none'."

	ReplyAskAmount = "Thanks.\n\nHow much loan amount are you looking for?"

	ReplyInvalidAmount = "Please enter the loan amount as a number (for example: 100000)."

	ReplyAskTenure = "Noted.\n\n" +
		"What loan tenure do you prefer? " +
		"(For example: 12, 24, or 36 months)"

	ReplyInvalidTenure = "Please enter the tenure in months (numbers only)."

	ReplyAssessmentPrefix = "Thanks. I'm now running a quick eligibility and credit assessment " +
		"based on the details you shared.\n\n"

	ReplyIneligible = "At the moment, your application does not meet our criteria.\n\n" +
		"Reason: %s.\n\n" +
		"You may improve eligibility by choosing a longer tenure " +
		"or reducing the loan amount."

	ReplyApproved = "Good news! Your loan has been approved.\n\n" +
		"Approved Amount: %s\n" +
		"Tenure: %d months\n" +
		"Interest Rate: %.0f%% per annum\n\n" +
		"Based on your profile, your EMI comfortably fits within " +
		"our internal affordability checks.\n\n" +
		"You can download your sanction letter below."

	ReplyAlreadyCompleted = "Your loan process is already complete.\n\n" +
		"You can download your sanction letter below."

	ReplyRejectedTerminal = "We're unable to proceed further with this application at the moment.\n\n" +
		"If you'd like, you can restart the journey with updated details."
)
