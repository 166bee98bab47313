package billing

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/zombor/billed/internal/bill"
	"github.com/zombor/billed/internal/scanning"
	"github.com/zombor/billed/internal/session"
	"github.com/zombor/billed/internal/store"
)

// Drafts keeps the pending bill of each employee between receipt
// selection and form submission
type Drafts interface {
	SaveDraft(email string, draft bill.Draft) error
	Draft(email string) (bill.Draft, bool, error)
	ClearDraft(email string) error
}

// Form holds the raw values typed on the new bill form
type Form struct {
	Type       string `json:"type"`
	Name       string `json:"name"`
	Date       string `json:"date"`
	Amount     string `json:"amount"`
	VAT        string `json:"vat"`
	Pct        string `json:"pct"`
	Commentary string `json:"commentary"`
}

// Submission is the employee new bill pipeline: validate the receipt,
// upload it, then create the bill
type Submission struct {
	store    store.Store
	identity session.Provider
	drafts   Drafts
	nav      Navigator
	notifier Notifier
	scanner  scanning.Scanner
	validate func(fileName string) bool
}

// NewSubmission creates a Submission using the standard receipt validator
func NewSubmission(s store.Store, identity session.Provider, drafts Drafts, nav Navigator, notifier Notifier) *Submission {
	return NewSubmissionWithDeps(s, identity, drafts, nav, notifier, nil, bill.ValidateAttachment)
}

// NewSubmissionWithDeps creates a Submission with a custom validator and an
// optional scanner used to pre-fill the form
func NewSubmissionWithDeps(s store.Store, identity session.Provider, drafts Drafts, nav Navigator, notifier Notifier, scanner scanning.Scanner, validate func(string) bool) *Submission {
	return &Submission{
		store:    s,
		identity: identity,
		drafts:   drafts,
		nav:      nav,
		notifier: notifier,
		scanner:  scanner,
		validate: validate,
	}
}

// SelectFile handles a receipt chosen by the employee. Any earlier draft is
// dropped first, so only this file can be submitted. A refused file
// notifies the user and returns accepted == false with no error. An
// accepted file is uploaded and recorded on the draft. Upload errors are
// returned unwrapped.
func (s *Submission) SelectFile(ctx context.Context, fileName string, data []byte) (draft bill.Draft, accepted bool, err error) {
	who, err := s.identity.Identity()
	if err != nil {
		return bill.Draft{}, false, err
	}

	if err := s.drafts.ClearDraft(who.Email); err != nil {
		return bill.Draft{}, false, fmt.Errorf("clearing draft: %w", err)
	}

	if !s.validate(fileName) {
		s.notifier.Notify(bill.InvalidAttachmentMessage)
		return bill.Draft{}, false, nil
	}

	if s.store == nil {
		return bill.Draft{}, true, ErrNoRepository
	}

	cleanName := bill.SanitizeFileName(fileName)
	contentType := bill.AttachmentContentType(fileName)
	attachment, err := s.store.Upload(ctx, store.Upload{
		FileName:    cleanName,
		ContentType: contentType,
		Email:       who.Email,
		Data:        data,
	})
	if err != nil {
		return bill.Draft{}, true, err
	}

	draft = bill.Draft{
		FileURL:  attachment.FileURL,
		FileName: attachment.FileName,
		Key:      attachment.Key,
	}
	if draft.FileName == "" {
		draft.FileName = cleanName
	}
	draft.Suggestion = s.suggest(ctx, fileName, data, contentType)

	if err := s.drafts.SaveDraft(who.Email, draft); err != nil {
		return bill.Draft{}, true, fmt.Errorf("saving draft: %w", err)
	}

	slog.Info("Receipt uploaded", "email", who.Email, "file", draft.FileName)
	return draft, true, nil
}

// suggest reads the receipt when a scanner is configured. Failures only
// lose the suggestion.
func (s *Submission) suggest(ctx context.Context, fileName string, data []byte, contentType string) *bill.Suggestion {
	if s.scanner == nil {
		return nil
	}
	reading, err := s.scanner.ScanReceipt(ctx, data, contentType)
	if err != nil {
		slog.Warn("Failed to scan receipt", "file", fileName, "error", err)
		return nil
	}
	return &bill.Suggestion{
		Name:   reading.Name,
		Date:   reading.Date,
		Amount: bill.AmountFromFloat(reading.Amount),
	}
}

// Submit creates the bill from the form and the uploaded receipt, then
// navigates to the bill list. Without an uploaded receipt nothing is
// created. Errors from the store are returned unwrapped.
func (s *Submission) Submit(ctx context.Context, form Form) (bill.Bill, error) {
	who, err := s.identity.Identity()
	if err != nil {
		return bill.Bill{}, err
	}

	draft, ok, err := s.drafts.Draft(who.Email)
	if err != nil {
		return bill.Bill{}, fmt.Errorf("loading draft: %w", err)
	}
	if !ok || !draft.HasAttachment() {
		return bill.Bill{}, ErrMissingAttachment
	}

	if s.store == nil {
		return bill.Bill{}, ErrNoRepository
	}

	created, err := s.store.Create(ctx, BuildPayload(who.Email, form, draft))
	if err != nil {
		return bill.Bill{}, err
	}

	if err := s.drafts.ClearDraft(who.Email); err != nil {
		slog.Warn("Failed to clear draft", "email", who.Email, "error", err)
	}

	slog.Info("Bill created", "id", created.ID, "email", who.Email, "amount", created.Amount.String())
	s.nav.Navigate(RouteBills)
	return created, nil
}

// BuildPayload assembles a new pending bill. Values read from the receipt
// fill only the fields the form left empty.
func BuildPayload(email string, form Form, draft bill.Draft) bill.Bill {
	b := bill.Bill{
		Email:      email,
		Type:       form.Type,
		Name:       strings.TrimSpace(form.Name),
		Amount:     bill.NewAmount(int64(bill.ParseAmount(form.Amount))),
		Date:       strings.TrimSpace(form.Date),
		VAT:        strings.TrimSpace(form.VAT),
		Pct:        bill.ParsePct(form.Pct),
		Commentary: form.Commentary,
		FileURL:    draft.FileURL,
		FileName:   draft.FileName,
		Status:     bill.StatusPending,
	}

	if sg := draft.Suggestion; sg != nil {
		if b.Name == "" {
			b.Name = sg.Name
		}
		if b.Date == "" {
			b.Date = sg.Date
		}
		if bill.SanitizeAmount(form.Amount) == "" && sg.Amount.IsPositive() {
			b.Amount = sg.Amount
		}
	}

	return b
}
