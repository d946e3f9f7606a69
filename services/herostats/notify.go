package herostats

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"github.com/jordan-wright/email"
	"go.opentelemetry.io/otel/codes"
)

func (s Service) summaryBody(ctx context.Context, summary RunSummary) (string, error) {
	b := strings.Builder{}
	fmt.Fprintf(&b, "Run %s finished in %s.\n\n", summary.RunID, summary.Duration)
	fmt.Fprintf(&b, "Written: %d of %d artifacts\n", summary.Written, summary.Total)
	fmt.Fprintf(&b, "Failed: %d\n", summary.Failed)

	failures, err := s.qry.ListFailedOutcomes(ctx, summary.RunID)
	if err != nil {
		return "", err
	}
	if len(failures) > 0 {
		fmt.Fprintf(&b, "\nFailed tuples:\n")
		for _, f := range failures {
			fmt.Fprintf(&b, "- %s (%s after %d attempts): %s\n", f.Tuple, f.State, f.Attempts, f.Error)
		}
	}
	return b.String(), nil
}

// Notify emails the run summary to the configured recipients, listing
// every failed tuple with enough detail to re-run it manually. No-op
// when no recipients are configured.
func (s Service) Notify(ctx context.Context, summary RunSummary) error {
	if len(s.opts.NotifyTo) == 0 {
		return nil
	}

	ctx, span := tracer.Start(ctx, "Notify")
	defer span.End()

	body, err := s.summaryBody(ctx, summary)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to collect run outcomes")
		return err
	}

	mail := email.NewEmail()
	mail.From = fmt.Sprintf("owstats <%s>", s.opts.Smtp.EmailAddress)
	mail.To = s.opts.NotifyTo
	mail.Subject = fmt.Sprintf(
		"hero stats run %s: %d written, %d failed",
		summary.RunID, summary.Written, summary.Failed,
	)
	mail.Text = []byte(body)

	addr := fmt.Sprintf("%s:%d", s.opts.Smtp.Server, s.opts.Smtp.Port)
	err = mail.Send(
		addr,
		smtp.PlainAuth("", s.opts.Smtp.EmailAddress, s.opts.Smtp.Password, s.opts.Smtp.Server),
	)
	if err != nil && strings.Contains(err.Error(), "server doesn't support AUTH") {
		err = mail.Send(addr, nil)
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to send email")
		return err
	}

	return nil
}
