package report

import (
	"context"
	"fmt"
	"strings"

	"github.com/mrz1836/postmark"
	"github.com/sirupsen/logrus"
)

// IssueReport is a user-submitted problem description tied to an optional
// certificate request.
type IssueReport struct {
	RequestID string `json:"requestId"`
	Domain    string `json:"domain"`
	Email     string `json:"email"`
	Message   string `json:"message"`
}

// Sender delivers issue reports to the operations team.
type Sender interface {
	Send(ctx context.Context, rep IssueReport) error
}

// Config for the Postmark-backed sender.
type Config struct {
	ServerToken  string
	AccountToken string
	FromEmail    string
	SupportEmail string
}

// NewSender returns a Postmark-backed sender when tokens are configured,
// otherwise a sender that only logs the report.
func NewSender(cfg Config, logger *logrus.Logger) Sender {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	log := logger.WithField("component", "report")

	if cfg.ServerToken == "" || cfg.FromEmail == "" || cfg.SupportEmail == "" {
		log.Info("Postmark not configured, issue reports will only be logged")
		return &logSender{log: log}
	}
	return &postmarkSender{
		client: postmark.NewClient(cfg.ServerToken, cfg.AccountToken),
		cfg:    cfg,
		log:    log,
	}
}

func subjectFor(rep IssueReport) string {
	if rep.Domain != "" {
		return "Certificate issue report: " + rep.Domain
	}
	return "Certificate issue report"
}

func bodyFor(rep IssueReport) string {
	var b strings.Builder
	if rep.RequestID != "" {
		fmt.Fprintf(&b, "Request ID: %s\n", rep.RequestID)
	}
	if rep.Domain != "" {
		fmt.Fprintf(&b, "Domain: %s\n", rep.Domain)
	}
	fmt.Fprintf(&b, "Reporter: %s\n\n", rep.Email)
	b.WriteString(rep.Message)
	b.WriteString("\n")
	return b.String()
}

type postmarkSender struct {
	client *postmark.Client
	cfg    Config
	log    *logrus.Entry
}

func (s *postmarkSender) Send(ctx context.Context, rep IssueReport) error {
	resp, err := s.client.SendEmail(ctx, postmark.Email{
		From:     s.cfg.FromEmail,
		To:       s.cfg.SupportEmail,
		ReplyTo:  rep.Email,
		Subject:  subjectFor(rep),
		TextBody: bodyFor(rep),
		Tag:      "issue-report",
	})
	if err != nil {
		return fmt.Errorf("failed to send issue report: %w", err)
	}
	if resp.ErrorCode > 0 {
		return fmt.Errorf("postmark error: %d - %s", resp.ErrorCode, resp.Message)
	}

	s.log.WithFields(logrus.Fields{
		"requestId": rep.RequestID,
		"messageId": resp.MessageID,
	}).Info("Issue report delivered")
	return nil
}

type logSender struct {
	log *logrus.Entry
}

func (s *logSender) Send(ctx context.Context, rep IssueReport) error {
	s.log.WithFields(logrus.Fields{
		"requestId": rep.RequestID,
		"domain":    rep.Domain,
		"reporter":  rep.Email,
	}).Infof("Issue report: %s", rep.Message)
	return nil
}
