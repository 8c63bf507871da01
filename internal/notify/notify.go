package notify

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"
	"yahoomovie/internal/catalog"
	"yahoomovie/internal/components/assert"
	"yahoomovie/internal/components/telemetry"
	"yahoomovie/lib/textutil"

	"github.com/jordan-wright/email"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const (
	report_mailer_send = "mailer.send"
)

var tracer = otel.Tracer("yahoomovie.internal.notify")

type SmtpConfig struct {
	Server       string `json:"server"`
	Port         int    `json:"port"`
	EmailAddress string `json:"email_address"`
	Password     string `json:"password"`
}

func (c SmtpConfig) Enabled() bool {
	return c.Server != "" && c.EmailAddress != ""
}

// Mailer sends a digest of newly discovered movies.
type Mailer struct {
	smtp SmtpConfig
	to   []string
	tel  telemetry.API
}

func NewMailer(config SmtpConfig, to []string, tel telemetry.API) Mailer {
	assert.NotEmptyStr(config.Server)
	assert.NotEmptyStr(config.EmailAddress)
	assert.NotNil(tel)

	return Mailer{
		smtp: config,
		to:   to,
		tel:  telemetry.NewScopedAPI("notify", tel),
	}
}

// Digest renders the plain text body listing `movies`.
func Digest(movies []catalog.Movie) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d new movies are showing:\n", len(movies))
	for _, m := range movies {
		b.WriteString("\n")
		fmt.Fprintf(&b, "%s", m.ChineseName)
		if m.EnglishName != "" {
			fmt.Fprintf(&b, " (%s)", m.EnglishName)
		}
		b.WriteString("\n")
		if m.ReleaseDate != "" {
			fmt.Fprintf(&b, "上映日期：%s\n", m.ReleaseDate)
		}
		if m.Director != "" {
			fmt.Fprintf(&b, "導演：%s\n", m.Director)
		}
		if m.Synopsis != "" {
			fmt.Fprintf(&b, "%s\n", textutil.Preview(m.Synopsis, 100))
		}
	}
	return b.String()
}

// SendDigest mails the digest of `movies` to every recipient, nothing is
// sent when there are no movies or no recipients.
func (m Mailer) SendDigest(ctx context.Context, movies []catalog.Movie) error {
	_, span := tracer.Start(ctx, "Mailer.SendDigest")
	defer span.End()

	if len(movies) == 0 || len(m.to) == 0 {
		return nil
	}
	span.SetAttributes(attribute.Int("movies", len(movies)))

	mail := email.NewEmail()
	mail.From = fmt.Sprintf("Yahoo Movie Watch <%s>", m.smtp.EmailAddress)
	mail.To = m.to
	mail.Subject = fmt.Sprintf("%d new movies in theaters", len(movies))
	mail.Text = []byte(Digest(movies))

	addr := fmt.Sprintf("%s:%d", m.smtp.Server, m.smtp.Port)
	err := mail.Send(addr, smtp.PlainAuth("", m.smtp.EmailAddress, m.smtp.Password, m.smtp.Server))
	if err != nil && strings.Contains(err.Error(), "server doesn't support AUTH") {
		err = mail.Send(addr, nil)
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to send email")
		m.tel.ReportBroken(report_mailer_send, err, addr)
		return err
	}
	m.tel.ReportCount(report_mailer_send, int64(len(movies)))
	return nil
}
