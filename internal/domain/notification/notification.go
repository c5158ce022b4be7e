package notification

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"
)

const (
	SubjectLoanCreated       = "Loan Created Successfully!"
	SubjectRepaymentReceived = "Loan Repayment Received!"
	SubjectLoanPaidOff       = "Congratulations! Loan Paid Off!"
)

// Publisher delivers a message to whatever channel notifies the borrower.
type Publisher interface {
	Publish(ctx context.Context, subject, message string) error
}

type Message struct {
	Subject string
	Body    string
}

// Send publishes best-effort: failures are logged and never returned.
// A nil publisher disables notifications.
func Send(ctx context.Context, p Publisher, m Message) {
	if p == nil {
		return
	}
	if err := p.Publish(ctx, m.Subject, m.Body); err != nil {
		log.Printf("notification %q not published: %v", m.Subject, err)
	}
}

type LoanFacts struct {
	Title        string
	Amount       float64
	InterestRate float64
	TermMonths   int
	StartDate    time.Time
	Status       string
}

func LoanCreated(l LoanFacts) Message {
	var b strings.Builder
	b.WriteString("Your loan has been created successfully.\n\n")
	fmt.Fprintf(&b, "Loan Title: %s\n", l.Title)
	fmt.Fprintf(&b, "Amount: $%.2f\n", l.Amount)
	fmt.Fprintf(&b, "Interest Rate: %g%%\n", l.InterestRate)
	fmt.Fprintf(&b, "Term: %d months\n", l.TermMonths)
	fmt.Fprintf(&b, "Start Date: %s\n", l.StartDate.Format("2006-01-02"))
	fmt.Fprintf(&b, "Status: %s\n", l.Status)
	return Message{Subject: SubjectLoanCreated, Body: b.String()}
}

func RepaymentReceived(title string, amount, totalPaid, outstanding float64) Message {
	var b strings.Builder
	b.WriteString("Payment received.\n\n")
	fmt.Fprintf(&b, "Loan Title: %s\n", title)
	fmt.Fprintf(&b, "Repayment Amount: $%.2f\n", amount)
	fmt.Fprintf(&b, "Total Paid So Far: $%.2f\n", totalPaid)
	fmt.Fprintf(&b, "Outstanding Balance: $%.2f\n", outstanding)
	return Message{Subject: SubjectRepaymentReceived, Body: b.String()}
}

func LoanPaidOff(title string) Message {
	return Message{
		Subject: SubjectLoanPaidOff,
		Body:    fmt.Sprintf("Your loan '%s' has been fully paid off.\n", title),
	}
}
