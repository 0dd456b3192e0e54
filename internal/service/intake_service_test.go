package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"loan-intake-be/internal/config"
	"loan-intake-be/internal/constant"
	"loan-intake-be/internal/dto"
	"loan-intake-be/internal/entity"
	"loan-intake-be/internal/repository/memory"
	"loan-intake-be/pkg/phrasing"
	"loan-intake-be/pkg/sanction"
	"loan-intake-be/pkg/verification"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testLoanConfig = config.LoanConfig{
	MinMonthlyIncome: 25000,
	MaxFOIR:          0.45,
	LowRiskFOIR:      0.30,
	InterestRate:     12.0,
}

type fakeVerifier struct {
	result verification.Result
	err    error
	calls  int
}

func (f *fakeVerifier) Verify(_ context.Context, _ string) (verification.Result, error) {
	f.calls++
	return f.result, f.err
}

type fakeIssuer struct {
	letter sanction.Letter
	err    error
	calls  int
}

func (f *fakeIssuer) Issue(_ context.Context, _ sanction.Request) (sanction.Letter, error) {
	f.calls++
	return f.letter, f.err
}

type fakePublisher struct {
	mu       sync.Mutex
	messages []*dto.ApplicationDecidedMessage
}

func (f *fakePublisher) PublishDecision(_ context.Context, msg *dto.ApplicationDecidedMessage) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.messages = append(f.messages, msg)
	return nil
}

type nopLogger struct{}

func (nopLogger) Debug(string, string, map[string]interface{}) {}
func (nopLogger) Info(string, string, map[string]interface{})  {}
func (nopLogger) Warn(string, string, map[string]interface{})  {}
func (nopLogger) Error(string, string, map[string]interface{}) {}
func (nopLogger) Sync() error                                  { return nil }

type intakeFixture struct {
	service   IIntakeService
	sessions  *memory.SessionRepository
	verifier  *fakeVerifier
	issuer    *fakeIssuer
	publisher *fakePublisher
}

func newIntakeFixture() *intakeFixture {
	sessions := memory.NewSessionRepository()
	verifier := &fakeVerifier{result: verification.Result{Verified: true, Reason: "PAN format verified successfully"}}
	issuer := &fakeIssuer{letter: sanction.Letter{
		URL:      "/generated_letters/sanction_Rahul_Sharma.html",
		Password: "rahul",
	}}
	publisher := &fakePublisher{}

	svc := NewIntakeService(
		sessions,
		verifier,
		issuer,
		phrasing.NewTemplateRenderer(),
		publisher,
		nopLogger{},
		testLoanConfig,
	)

	return &intakeFixture{
		service:   svc,
		sessions:  sessions,
		verifier:  verifier,
		issuer:    issuer,
		publisher: publisher,
	}
}

func (f *intakeFixture) send(t *testing.T, sessionID, message string) *dto.ChatResponse {
	t.Helper()
	res, err := f.service.Chat(context.Background(), &dto.ChatRequest{SessionId: sessionID, Message: message})
	require.NoError(t, err)
	return res
}

func TestChatHappyPath(t *testing.T) {
	f := newIntakeFixture()
	id := "sess-happy"

	res := f.send(t, id, "Rahul Sharma")
	assert.Equal(t, string(entity.StageAskPAN), res.Stage)
	assert.Contains(t, res.Reply, "Rahul Sharma")

	res = f.send(t, id, "abcde 1234 f")
	assert.Equal(t, string(entity.StageAskIncome), res.Stage)
	assert.Equal(t, 1, f.verifier.calls)

	res = f.send(t, id, "50000")
	assert.Equal(t, string(entity.StageAskEMI), res.Stage)

	res = f.send(t, id, "none")
	assert.Equal(t, string(entity.StageAskAmount), res.Stage)

	res = f.send(t, id, "300000")
	assert.Equal(t, string(entity.StageAskTenure), res.Stage)

	res = f.send(t, id, "24")
	assert.Equal(t, string(entity.StageCompleted), res.Stage)
	assert.Equal(t, constant.UIActionShowSanctionDownload, res.UIAction)
	assert.Equal(t, "/generated_letters/sanction_Rahul_Sharma.html", res.Data["letter_url"])
	assert.Equal(t, "rahul", res.Data["letter_password"])
	assert.Contains(t, res.Reply, "INR 300,000")
	assert.Contains(t, res.Reply, "24 months")
	assert.Equal(t, 1, f.issuer.calls)

	// Profile is fully committed in stage order
	session, found := f.sessions.Get(id)
	require.True(t, found)
	assert.Equal(t, "Rahul Sharma", session.Applicant.Name)
	assert.Equal(t, "ABCDE1234F", session.Applicant.PAN)
	require.NotNil(t, session.Applicant.MonthlyIncome)
	assert.EqualValues(t, 50000, *session.Applicant.MonthlyIncome)
	require.NotNil(t, session.Applicant.ExistingEMI)
	assert.EqualValues(t, 0, *session.Applicant.ExistingEMI)
	require.NotNil(t, session.Applicant.RequestedAmount)
	assert.EqualValues(t, 300000, *session.Applicant.RequestedAmount)

	// Approval published to the audit trail
	require.Len(t, f.publisher.messages, 1)
	decided := f.publisher.messages[0]
	assert.True(t, decided.Approved)
	assert.EqualValues(t, 300000, decided.ApprovedAmount)
	assert.Equal(t, "LOW", decided.RiskBand)
	assert.InDelta(t, 0.25, decided.FOIR, 0.0001)
}

func TestChatInvalidInputReprompts(t *testing.T) {
	tests := []struct {
		name      string
		setup     []string // valid inputs to reach the stage under test
		stage     entity.Stage
		invalid   []string
		wantReply string
	}{
		{
			name:      "name stage rejects greetings and single words",
			stage:     entity.StageAskName,
			invalid:   []string{"hi", "Hello", "Rahul", "R2D2 unit"},
			wantReply: constant.ReplyAskName,
		},
		{
			name:      "pan stage rejects malformed pans",
			setup:     []string{"Rahul Sharma"},
			stage:     entity.StageAskPAN,
			invalid:   []string{"ABC123", "ABCDE12345", "1234512345"},
			wantReply: constant.ReplyInvalidPAN,
		},
		{
			name:      "income stage rejects non-numbers",
			setup:     []string{"Rahul Sharma", "ABCDE1234F"},
			stage:     entity.StageAskIncome,
			invalid:   []string{"fifty thousand", "-100", "50,000"},
			wantReply: constant.ReplyInvalidIncome,
		},
		{
			name:      "emi stage rejects junk answers",
			setup:     []string{"Rahul Sharma", "ABCDE1234F", "50000"},
			stage:     entity.StageAskEMI,
			invalid:   []string{"nah", "-1", "a bit"},
			wantReply: constant.ReplyInvalidEMI,
		},
		{
			name:      "amount stage rejects non-numbers",
			setup:     []string{"Rahul Sharma", "ABCDE1234F", "50000", "none"},
			stage:     entity.StageAskAmount,
			invalid:   []string{"three lakh", "-300000"},
			wantReply: constant.ReplyInvalidAmount,
		},
		{
			name:      "tenure stage rejects zero and words",
			setup:     []string{"Rahul Sharma", "ABCDE1234F", "50000", "none", "300000"},
			stage:     entity.StageAskTenure,
			invalid:   []string{"0", "-12", "two years"},
			wantReply: constant.ReplyInvalidTenure,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newIntakeFixture()
			id := "sess-" + tt.name

			for _, msg := range tt.setup {
				f.send(t, id, msg)
			}

			before, _ := f.sessions.Get(id)
			var profileBefore entity.ApplicantProfile
			if before != nil {
				profileBefore = before.Applicant
			}

			// Re-prompting is idempotent: repeat each invalid input twice
			for _, msg := range append(tt.invalid, tt.invalid...) {
				res := f.send(t, id, msg)
				assert.Equal(t, string(tt.stage), res.Stage, "input %q moved the stage", msg)
				assert.Equal(t, tt.wantReply, res.Reply, "input %q changed the reply", msg)
			}

			after, found := f.sessions.Get(id)
			require.True(t, found)
			assert.Equal(t, tt.stage, after.Stage)
			assert.Equal(t, profileBefore, after.Applicant)
		})
	}
}

func TestChatPANVerificationRejection(t *testing.T) {
	f := newIntakeFixture()
	f.verifier.result = verification.Result{Verified: false, Reason: "Invalid PAN length"}
	id := "sess-rejected-pan"

	f.send(t, id, "Rahul Sharma")
	res := f.send(t, id, "ABCDE1234F")
	assert.Equal(t, string(entity.StageRejected), res.Stage)
	assert.Equal(t, constant.ReplyPANRejected, res.Reply)
	assert.Equal(t, 1, f.verifier.calls)

	require.Len(t, f.publisher.messages, 1)
	assert.False(t, f.publisher.messages[0].Approved)
	assert.Equal(t, "Invalid PAN length", f.publisher.messages[0].Reason)

	// Terminal re-entry never re-invokes verification
	res = f.send(t, id, "ABCDE1234F")
	assert.Equal(t, string(entity.StageRejected), res.Stage)
	assert.Equal(t, constant.ReplyRejectedTerminal, res.Reply)
	assert.Equal(t, 1, f.verifier.calls)
	assert.Len(t, f.publisher.messages, 1)
}

func TestChatPANVerifierOutage(t *testing.T) {
	f := newIntakeFixture()
	f.verifier.err = errors.New("registry timeout")
	id := "sess-verifier-down"

	f.send(t, id, "Rahul Sharma")
	res := f.send(t, id, "ABCDE1234F")
	assert.Equal(t, string(entity.StageAskPAN), res.Stage)
	assert.Equal(t, constant.ReplyPANRetry, res.Reply)

	// Recovery: the verifier comes back and the same input advances
	f.verifier.err = nil
	res = f.send(t, id, "ABCDE1234F")
	assert.Equal(t, string(entity.StageAskIncome), res.Stage)
}

func TestChatIneligibleOutcome(t *testing.T) {
	f := newIntakeFixture()
	id := "sess-ineligible"

	for _, msg := range []string{"Rahul Sharma", "ABCDE1234F", "25000", "5000", "500000"} {
		f.send(t, id, msg)
	}

	res := f.send(t, id, "12")
	assert.Equal(t, string(entity.StageRejected), res.Stage)
	assert.Contains(t, res.Reply, "FOIR too high based on existing obligations")
	assert.Equal(t, 0, f.issuer.calls)

	require.Len(t, f.publisher.messages, 1)
	decided := f.publisher.messages[0]
	assert.False(t, decided.Approved)
	assert.InDelta(t, 1.87, decided.FOIR, 0.0001)
}

func TestChatLowIncomeRejection(t *testing.T) {
	f := newIntakeFixture()
	id := "sess-low-income"

	for _, msg := range []string{"Rahul Sharma", "ABCDE1234F", "24999", "none", "50000"} {
		f.send(t, id, msg)
	}

	res := f.send(t, id, "24")
	assert.Equal(t, string(entity.StageRejected), res.Stage)
	assert.Contains(t, res.Reply, "Monthly income below minimum eligibility threshold")
}

func TestChatIssuanceFailureIsRetryable(t *testing.T) {
	f := newIntakeFixture()
	f.issuer.err = errors.New("disk full")
	id := "sess-issuance-down"

	for _, msg := range []string{"Rahul Sharma", "ABCDE1234F", "50000", "none", "300000"} {
		f.send(t, id, msg)
	}

	_, err := f.service.Chat(context.Background(), &dto.ChatRequest{SessionId: id, Message: "24"})
	require.Error(t, err)
	var collabErr *CollaboratorError
	require.ErrorAs(t, err, &collabErr)
	assert.Equal(t, "issuance", collabErr.Op)

	// Stage untouched, no approval event, safe to retry
	session, _ := f.sessions.Get(id)
	assert.Equal(t, entity.StageAskTenure, session.Stage)
	assert.Empty(t, f.publisher.messages)

	f.issuer.err = nil
	res := f.send(t, id, "24")
	assert.Equal(t, string(entity.StageCompleted), res.Stage)
	assert.Len(t, f.publisher.messages, 1)
}

func TestChatTurnLogStaysSymmetric(t *testing.T) {
	f := newIntakeFixture()
	f.issuer.err = errors.New("disk full")
	id := "sess-turn-log"

	for _, msg := range []string{"Rahul Sharma", "ABCDE1234F", "50000", "none", "300000"} {
		f.send(t, id, msg)
	}

	session, _ := f.sessions.Get(id)
	turnsBefore := len(session.Turns)

	// A failed turn records nothing, so the retry does not duplicate the
	// user message in the phrasing context
	_, err := f.service.Chat(context.Background(), &dto.ChatRequest{SessionId: id, Message: "24"})
	require.Error(t, err)
	assert.Len(t, session.Turns, turnsBefore)

	f.issuer.err = nil
	f.send(t, id, "24")
	require.Len(t, session.Turns, turnsBefore+2)

	// Every recorded turn is a user/assistant pair
	for i, turn := range session.Turns {
		want := constant.TurnRoleUser
		if i%2 == 1 {
			want = constant.TurnRoleAssistant
		}
		assert.Equal(t, want, turn.Role, "turn %d", i)
	}
}

func TestChatCompletedTerminalReentry(t *testing.T) {
	f := newIntakeFixture()
	id := "sess-completed"

	for _, msg := range []string{"Rahul Sharma", "ABCDE1234F", "50000", "none", "300000", "24"} {
		f.send(t, id, msg)
	}
	require.Equal(t, 1, f.issuer.calls)

	for i := 0; i < 3; i++ {
		res := f.send(t, id, "anything at all")
		assert.Equal(t, string(entity.StageCompleted), res.Stage)
		assert.Equal(t, constant.ReplyAlreadyCompleted, res.Reply)
		assert.Equal(t, constant.UIActionShowSanctionDownload, res.UIAction)
		assert.Equal(t, "/generated_letters/sanction_Rahul_Sharma.html", res.Data["letter_url"])
	}

	// No further collaborator invocations or decisions from a terminal stage
	assert.Equal(t, 1, f.issuer.calls)
	assert.Equal(t, 1, f.verifier.calls)
	assert.Len(t, f.publisher.messages, 1)
}

func TestChatDistinctSessionsAreIndependent(t *testing.T) {
	f := newIntakeFixture()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			id := fmt.Sprintf("sess-parallel-%d", n)
			for _, msg := range []string{"Rahul Sharma", "ABCDE1234F", "50000", "none", "300000", "24"} {
				if _, err := f.service.Chat(context.Background(), &dto.ChatRequest{SessionId: id, Message: msg}); err != nil {
					t.Errorf("session %s: %v", id, err)
					return
				}
			}
		}(i)
	}
	wg.Wait()

	for i := 0; i < 8; i++ {
		session, found := f.sessions.Get(fmt.Sprintf("sess-parallel-%d", i))
		require.True(t, found)
		assert.Equal(t, entity.StageCompleted, session.Stage)
	}
}
