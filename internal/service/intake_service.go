package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"loan-intake-be/internal/config"
	"loan-intake-be/internal/constant"
	"loan-intake-be/internal/dto"
	"loan-intake-be/internal/entity"
	"loan-intake-be/internal/pkg/logger"
	"loan-intake-be/internal/repository/memory"
	"loan-intake-be/pkg/eligibility"
	"loan-intake-be/pkg/phrasing"
	"loan-intake-be/pkg/sanction"
	"loan-intake-be/pkg/validation"
	"loan-intake-be/pkg/verification"
)

// IIntakeService defines the loan-intake conversation service interface
type IIntakeService interface {
	Chat(ctx context.Context, request *dto.ChatRequest) (*dto.ChatResponse, error)
}

// intakeService drives the per-stage conversation state machine. Collaborators
// are injected so the flow stays testable with fakes.
type intakeService struct {
	sessionRepo *memory.SessionRepository
	verifier    verification.Verifier
	issuer      sanction.Issuer
	renderer    phrasing.Renderer
	publisher   IDecisionPublisher
	sysLogger   logger.ILogger

	policy       eligibility.Policy
	interestRate float64

	// One in-flight turn per session id; distinct ids do not contend.
	sessionLocks sync.Map
}

func NewIntakeService(
	sessionRepo *memory.SessionRepository,
	verifier verification.Verifier,
	issuer sanction.Issuer,
	renderer phrasing.Renderer,
	publisher IDecisionPublisher,
	sysLogger logger.ILogger,
	loanCfg config.LoanConfig,
) IIntakeService {
	return &intakeService{
		sessionRepo: sessionRepo,
		verifier:    verifier,
		issuer:      issuer,
		renderer:    renderer,
		publisher:   publisher,
		sysLogger:   sysLogger,
		policy: eligibility.Policy{
			MinMonthlyIncome: loanCfg.MinMonthlyIncome,
			MaxFOIR:          loanCfg.MaxFOIR,
			LowRiskFOIR:      loanCfg.LowRiskFOIR,
		},
		interestRate: loanCfg.InterestRate,
	}
}

// turnOutcome is what a stage handler produces for one processed turn.
type turnOutcome struct {
	reply    string
	uiAction string
	data     map[string]interface{}
}

// Chat processes one conversation turn. Invalid input re-prompts without
// mutating the session; stage and profile only advance after the stage's
// rule (and collaborator, where one applies) has succeeded.
func (s *intakeService) Chat(ctx context.Context, request *dto.ChatRequest) (*dto.ChatResponse, error) {
	lock := s.lockSession(request.SessionId)
	lock.Lock()
	defer lock.Unlock()

	session := s.sessionRepo.GetOrCreate(request.SessionId)
	text := strings.TrimSpace(request.Message)

	// Context for the phrasing layer, captured before this turn is appended.
	phrasingTurns := toPhrasingTurns(session.RecentTurns(12))

	var outcome turnOutcome
	var err error

	switch session.Stage {
	case entity.StageAskName:
		outcome = s.handleAskName(session, text)
	case entity.StageAskPAN:
		outcome, err = s.handleAskPAN(ctx, session, text)
	case entity.StageAskIncome:
		outcome = s.handleAskIncome(session, text)
	case entity.StageAskEMI:
		outcome = s.handleAskEMI(session, text)
	case entity.StageAskAmount:
		outcome = s.handleAskAmount(session, text)
	case entity.StageAskTenure:
		outcome, err = s.handleAskTenure(ctx, session, text)
	case entity.StageCompleted:
		outcome = turnOutcome{
			reply:    constant.ReplyAlreadyCompleted,
			uiAction: constant.UIActionShowSanctionDownload,
			data:     map[string]interface{}{"letter_url": session.LetterURL},
		}
	case entity.StageRejected:
		outcome = turnOutcome{reply: constant.ReplyRejectedTerminal}
	default:
		err = fmt.Errorf("%w: unknown stage %q", ErrInternalInconsistency, session.Stage)
	}

	if err != nil {
		s.sysLogger.Error("intake", "Turn failed", map[string]interface{}{
			"session_id": request.SessionId,
			"stage":      string(session.Stage),
			"error":      err.Error(),
		})
		return nil, err
	}

	reply := s.renderer.Render(ctx, string(session.Stage), phrasingTurns, text, outcome.reply)

	// The turn log only records completed turns, keeping it symmetric: a
	// failed turn leaves no dangling user entry behind for the retry.
	session.AppendTurn(constant.TurnRoleUser, text)
	session.AppendTurn(constant.TurnRoleAssistant, reply)
	s.sessionRepo.Save(session)

	return &dto.ChatResponse{
		Reply:    reply,
		Stage:    string(session.Stage),
		UIAction: outcome.uiAction,
		Data:     outcome.data,
	}, nil
}

func (s *intakeService) handleAskName(session *entity.LoanSession, text string) turnOutcome {
	if !validation.ValidFullName(text) {
		return turnOutcome{reply: constant.ReplyAskName}
	}

	name := validation.NormalizeName(text)
	session.Applicant.Name = name
	session.Stage = entity.StageAskPAN
	return turnOutcome{reply: fmt.Sprintf(constant.ReplyNameAccepted, name)}
}

func (s *intakeService) handleAskPAN(ctx context.Context, session *entity.LoanSession, text string) (turnOutcome, error) {
	pan := validation.NormalizePAN(text)
	if !validation.ValidPAN(pan) {
		return turnOutcome{reply: constant.ReplyInvalidPAN}, nil
	}

	result, err := s.verifier.Verify(ctx, pan)
	if err != nil {
		// Transport trouble is recoverable: same stage, customer retries.
		s.sysLogger.Warn("intake", "PAN verification call failed", map[string]interface{}{
			"session_id": session.ID,
			"error":      err.Error(),
		})
		return turnOutcome{reply: constant.ReplyPANRetry}, nil
	}

	if !result.Verified {
		session.Stage = entity.StageRejected
		s.publishDecision(ctx, session, false, result.Reason, nil)
		return turnOutcome{reply: constant.ReplyPANRejected}, nil
	}

	session.Applicant.PAN = pan
	session.Stage = entity.StageAskIncome
	return turnOutcome{reply: constant.ReplyPANVerified}, nil
}

func (s *intakeService) handleAskIncome(session *entity.LoanSession, text string) turnOutcome {
	income, ok := validation.ParseAmount(text)
	if !ok {
		return turnOutcome{reply: constant.ReplyInvalidIncome}
	}

	session.Applicant.MonthlyIncome = &income
	session.Stage = entity.StageAskEMI
	return turnOutcome{reply: constant.ReplyAskEMI}
}

func (s *intakeService) handleAskEMI(session *entity.LoanSession, text string) turnOutcome {
	emi, ok := validation.ParseEMI(text)
	if !ok {
		return turnOutcome{reply: constant.ReplyInvalidEMI}
	}

	session.Applicant.ExistingEMI = &emi
	session.Stage = entity.StageAskAmount
	return turnOutcome{reply: constant.ReplyAskAmount}
}

func (s *intakeService) handleAskAmount(session *entity.LoanSession, text string) turnOutcome {
	amount, ok := validation.ParseAmount(text)
	if !ok {
		return turnOutcome{reply: constant.ReplyInvalidAmount}
	}

	session.Applicant.RequestedAmount = &amount
	session.Stage = entity.StageAskTenure
	return turnOutcome{reply: constant.ReplyAskTenure}
}

func (s *intakeService) handleAskTenure(ctx context.Context, session *entity.LoanSession, text string) (turnOutcome, error) {
	tenure, ok := validation.ParseTenure(text)
	if !ok {
		return turnOutcome{reply: constant.ReplyInvalidTenure}, nil
	}

	applicant := session.Applicant
	if applicant.Name == "" || applicant.PAN == "" ||
		applicant.MonthlyIncome == nil || applicant.ExistingEMI == nil || applicant.RequestedAmount == nil {
		return turnOutcome{}, fmt.Errorf("%w: missing profile field at tenure stage (session %s)",
			ErrInternalInconsistency, session.ID)
	}

	result := s.policy.Evaluate(eligibility.Input{
		MonthlyIncome:   *applicant.MonthlyIncome,
		ExistingEMI:     *applicant.ExistingEMI,
		RequestedAmount: *applicant.RequestedAmount,
		TenureMonths:    tenure,
	})

	if !result.Eligible {
		session.Stage = entity.StageRejected
		s.publishDecision(ctx, session, false, result.Reason, &result)
		return turnOutcome{
			reply: constant.ReplyAssessmentPrefix + fmt.Sprintf(constant.ReplyIneligible, result.Reason),
		}, nil
	}

	letter, err := s.issuer.Issue(ctx, sanction.Request{
		CustomerName:   applicant.Name,
		ApprovedAmount: result.ApprovedAmount,
		InterestRate:   s.interestRate,
		TenureMonths:   tenure,
	})
	if err != nil {
		// No COMPLETED without a letter; stage stays at tenure for a retry.
		return turnOutcome{}, &CollaboratorError{Op: "issuance", Err: err}
	}

	session.LetterURL = letter.URL
	session.Stage = entity.StageCompleted
	s.publishDecision(ctx, session, true, result.Reason, &result)

	return turnOutcome{
		reply: constant.ReplyAssessmentPrefix + fmt.Sprintf(constant.ReplyApproved,
			formatAmount(result.ApprovedAmount), tenure, s.interestRate),
		uiAction: constant.UIActionShowSanctionDownload,
		data: map[string]interface{}{
			"letter_url":      letter.URL,
			"letter_password": letter.Password,
		},
	}, nil
}

func (s *intakeService) publishDecision(ctx context.Context, session *entity.LoanSession, approved bool, reason string, result *eligibility.Result) {
	msg := &dto.ApplicationDecidedMessage{
		SessionId: session.ID,
		Approved:  approved,
		Reason:    reason,
		DecidedAt: time.Now(),
	}
	if result != nil {
		msg.ApprovedAmount = result.ApprovedAmount
		msg.RiskBand = result.RiskBand
		msg.FOIR = result.FOIR
	}

	if err := s.publisher.PublishDecision(ctx, msg); err != nil {
		// The audit trail must not block the customer turn.
		s.sysLogger.Warn("intake", "Failed to publish decision event", map[string]interface{}{
			"session_id": session.ID,
			"error":      err.Error(),
		})
	}
}

func (s *intakeService) lockSession(sessionID string) *sync.Mutex {
	v, _ := s.sessionLocks.LoadOrStore(sessionID, &sync.Mutex{})
	return v.(*sync.Mutex)
}

func toPhrasingTurns(turns []entity.Turn) []phrasing.Turn {
	out := make([]phrasing.Turn, len(turns))
	for i, t := range turns {
		out[i] = phrasing.Turn{Role: t.Role, Content: t.Content}
	}
	return out
}

// formatAmount renders an amount with thousands separators, e.g. "INR 300,000".
func formatAmount(amount int64) string {
	raw := strconv.FormatInt(amount, 10)
	if len(raw) <= 3 {
		return "INR " + raw
	}

	var b strings.Builder
	lead := len(raw) % 3
	if lead > 0 {
		b.WriteString(raw[:lead])
	}
	for i := lead; i < len(raw); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(raw[i : i+3])
	}
	return "INR " + b.String()
}
