package mail

import (
	"bytes"
	"html/template"

	"github.com/shopspring/decimal"
)

// Email template families for the peer ledger. The lender-to-borrower
// variant carries a registration call-to-action when the borrower has no
// account; the borrower-to-lender variant never does.

const (
	subjectLoanCleared      = "Confirmation: Loan Successfully Cleared"
	subjectLoanReminder     = "Reminder: Loan Repayment Due"
	subjectRepaymentDone    = "Confirmation: Loan Repayment Completed"
	subjectRepaymentPending = "Acknowledgment: Loan Repayment in Progress"
)

var messageTmpl = template.Must(template.New("message").Parse(`
<div style="background-color: #f9f9f9; padding: 20px;">
  <div style="max-width: 600px; background-color: #ffffff; border-radius: 8px; padding: 20px; margin: auto;">
    <h2 style="font-size: 24px; color: #333333; margin-bottom: 20px;">{{.Header}}</h2>
    <p style="font-size: 16px; color: #555555;">{{.Body}}</p>
    {{if .Description}}<p style="font-size: 16px; color: #555555;"><strong>Details:</strong> {{.Description}}</p>{{end}}
    {{if .RegistrationLink}}
    <div style="margin-top: 20px; padding: 15px; background-color: #fffbcc; border-left: 5px solid #ffcc00;">
      <p style="color: #555555; font-size: 16px;">
        We noticed that you are not yet registered on our platform. To manage your loans and repayments easily, please register using the link below:
      </p>
      <p style="text-align: center; margin-top: 10px;">
        <a href="{{.RegistrationLink}}" style="background-color: #007bff; color: #ffffff; padding: 10px 15px; border-radius: 5px; text-decoration: none; font-weight: bold;">
          Complete Registration
        </a>
      </p>
    </div>
    {{end}}
    <p style="margin-top: 20px; font-size: 16px; color: #666666;">{{.Footer}}</p>
    <hr style="margin: 20px 0; border: none; border-top: 1px solid #dddddd;" />
    <p style="font-size: 14px; color: #999999;">Best regards,</p>
    <p style="font-size: 16px; font-weight: bold; color: #333333;">{{.Sender}}</p>
  </div>
</div>
`))

type messageData struct {
	Header           string
	Body             string
	Description      string
	RegistrationLink string
	Footer           string
	Sender           string
}

func render(data messageData) string {
	var buf bytes.Buffer
	// Static template over escaped fields; an execute failure would be a
	// programming error, so fall back to the bare body text.
	if err := messageTmpl.Execute(&buf, data); err != nil {
		return data.Body
	}
	return buf.String()
}

// LenderToBorrower builds the email a lender's action sends to the borrower.
// Used on create when the borrower is unregistered and on update when the
// loan clears or the borrower remains unregistered. registrationLink is only
// rendered when registered is false.
func LenderToBorrower(borrower, lender string, amount decimal.Decimal, description string, cleared, registered bool, registrationLink string) (subject, html string) {
	data := messageData{
		Description: description,
		Footer:      "Please review your records and confirm accordingly.",
		Sender:      lender,
	}

	if cleared {
		subject = subjectLoanCleared
		data.Header = "Great News, " + borrower + "!"
		data.Body = "I am pleased to inform you that your loan repayment of ₹" + amount.String() +
			" has been successfully received and marked as fully cleared. Thank you for settling your dues!"
	} else {
		subject = subjectLoanReminder
		data.Header = "Reminder for Loan Repayment, " + borrower
		data.Body = "This is a gentle reminder that you have an outstanding loan repayment of ₹" + amount.String() +
			" that is yet to be cleared. Kindly ensure the payment at the earliest."
	}

	if !registered {
		data.RegistrationLink = registrationLink
	}

	return subject, render(data)
}

// BorrowerToLender builds the email a borrower's action sends to the lender.
// It never carries a registration block.
func BorrowerToLender(lender, borrower string, amount decimal.Decimal, description string, cleared bool) (subject, html string) {
	data := messageData{
		Description: description,
		Footer:      "Please update your records accordingly.",
		Sender:      borrower,
	}

	if cleared {
		subject = subjectRepaymentDone
		data.Header = "Good News, " + lender + "!"
		data.Body = "I am pleased to inform you that I have successfully repaid the loan amount of ₹" + amount.String() +
			" in full. The payment has been completed, and the loan is now cleared."
	} else {
		subject = subjectRepaymentPending
		data.Header = "Update on Loan Repayment, " + lender
		data.Body = "I acknowledge the pending loan repayment of ₹" + amount.String() +
			" and would like to assure you that I am actively working towards settling the remaining amount soon."
	}

	return subject, render(data)
}
