package service

import (
	"context"
	"time"

	"childminder/internal/login/models"
	id "childminder/pkg/domain"
	dErrors "childminder/pkg/domain-errors"
	"childminder/pkg/platform/audit"
	"childminder/pkg/requestcontext"
)

var questionPrompts = map[models.QuestionKind]string{
	models.QuestionMobile:      "What is your mobile number?",
	models.QuestionDateOfBirth: "What is your date of birth?",
	models.QuestionPostcode:    "What is your home postcode?",
}

var dateLayouts = []string{"02/01/2006", "2/1/2006", "2006-01-02", "02 01 2006", "02-01-2006"}

// questionFor picks the strongest fact the application already holds.
func questionFor(facts models.SecurityFacts) models.QuestionKind {
	switch {
	case facts.Postcode != "":
		return models.QuestionPostcode
	case facts.DateOfBirth != nil:
		return models.QuestionDateOfBirth
	default:
		return models.QuestionMobile
	}
}

// SecurityQuestion returns the question for an applicant who has used up
// their SMS resends.
func (s *Service) SecurityQuestion(ctx context.Context, pendingToken string) (*models.Question, error) {
	now := requestcontext.Now(ctx)
	userID, err := s.tokens.ValidatePending(pendingToken, now)
	if err != nil {
		return nil, err
	}
	if err := s.checkLock(ctx, userID, now); err != nil {
		return nil, err
	}
	user, err := s.findUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := s.requireResendsExhausted(user, now); err != nil {
		return nil, err
	}
	facts, err := s.apps.SecurityFacts(ctx, userID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load security question")
	}
	kind := questionFor(facts)
	return &models.Question{Kind: kind, Prompt: questionPrompts[kind]}, nil
}

// AnswerSecurityQuestion signs the applicant in when the answer matches.
// Wrong answers count towards the same lockout as wrong SMS codes.
func (s *Service) AnswerSecurityQuestion(ctx context.Context, pendingToken string, req *models.AnswerRequest) (*models.SessionResult, error) {
	now := requestcontext.Now(ctx)
	userID, err := s.tokens.ValidatePending(pendingToken, now)
	if err != nil {
		return nil, err
	}
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if err := s.checkLock(ctx, userID, now); err != nil {
		return nil, err
	}
	user, err := s.findUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := s.requireResendsExhausted(user, now); err != nil {
		return nil, err
	}
	facts, err := s.apps.SecurityFacts(ctx, userID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load security question")
	}

	if !answerMatches(questionFor(facts), req.Answer, user, facts) {
		s.logFailure(ctx, "wrong_security_answer", "user_id", userID.String())
		return nil, s.recordFailure(ctx, userID, now, audit.EventSecurityQuestionFailed, "security_question")
	}
	return s.completeSignIn(ctx, user, now)
}

// requireResendsExhausted keeps the question closed while the applicant can
// still ask for another SMS code.
func (s *Service) requireResendsExhausted(user *models.User, now time.Time) error {
	user.RollResendWindow(now, s.cfg.ResendWindow)
	if user.SMSResendAttempts < s.cfg.MaxSMSResends {
		return dErrors.New(dErrors.CodeForbidden, "use the security code sent to your mobile")
	}
	return nil
}

func answerMatches(kind models.QuestionKind, answer string, user *models.User, facts models.SecurityFacts) bool {
	switch kind {
	case models.QuestionPostcode:
		pc, err := id.ParsePostcode(answer)
		return err == nil && pc == facts.Postcode
	case models.QuestionDateOfBirth:
		for _, layout := range dateLayouts {
			if d, err := time.Parse(layout, answer); err == nil {
				y1, m1, d1 := d.Date()
				y2, m2, d2 := facts.DateOfBirth.Date()
				return y1 == y2 && m1 == m2 && d1 == d2
			}
		}
		return false
	default:
		return user.Mobile != "" && models.NormalizePhone(answer) == user.Mobile
	}
}
