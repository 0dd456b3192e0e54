package entity

import "time"

// Stage is the closed set of conversation states. A session only ever moves
// forward through AdvanceOrder or sideways into StageRejected.
type Stage string

const (
	StageAskName   Stage = "ASK_NAME"
	StageAskPAN    Stage = "ASK_PAN"
	StageAskIncome Stage = "ASK_INCOME"
	StageAskEMI    Stage = "ASK_EMI"
	StageAskAmount Stage = "ASK_AMOUNT"
	StageAskTenure Stage = "ASK_TENURE"
	StageCompleted Stage = "COMPLETED"
	StageRejected  Stage = "REJECTED"
)

// Terminal reports whether no further profile mutation or collaborator
// invocation may happen from this stage.
func (s Stage) Terminal() bool {
	return s == StageCompleted || s == StageRejected
}

// ApplicantProfile is filled monotonically, one field per completed stage.
// Pointer fields distinguish "not collected yet" from a legitimate zero.
type ApplicantProfile struct {
	Name            string
	PAN             string
	MonthlyIncome   *int64
	ExistingEMI     *int64
	RequestedAmount *int64
}

type Turn struct {
	Role      string
	Content   string
	CreatedAt time.Time
}

// LoanSession is the in-memory conversation state. It is owned exclusively
// by the session repository; the intake service borrows it for one turn.
type LoanSession struct {
	ID        string
	Stage     Stage
	Applicant ApplicantProfile
	Turns     []Turn
	LetterURL string
	CreatedAt time.Time
}

func NewLoanSession(id string) *LoanSession {
	return &LoanSession{
		ID:        id,
		Stage:     StageAskName,
		CreatedAt: time.Now(),
	}
}

func (s *LoanSession) AppendTurn(role, content string) {
	s.Turns = append(s.Turns, Turn{Role: role, Content: content, CreatedAt: time.Now()})
}

// RecentTurns returns up to n of the latest turns, oldest first. Used only as
// collaborator context, never by decision logic.
func (s *LoanSession) RecentTurns(n int) []Turn {
	if len(s.Turns) <= n {
		return s.Turns
	}
	return s.Turns[len(s.Turns)-n:]
}
