package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/oso-hr/timetracking-api/internal/repository"
)

var (
	ErrMissingColumns     = errors.New(`spreadsheet must contain "Mailadresse" and "Name" columns`)
	ErrNoUsableRecipients = errors.New("no valid recipients found, check email addresses and names")
	ErrBatchNotFound      = errors.New("upload batch not found")
	ErrConfirmMismatch    = errors.New("confirmation count does not match the pending recipients")
	ErrSendInProgress     = errors.New("a send is already running for this batch")
)

type RecipientStatus string

const (
	RecipientPending     RecipientStatus = "pending"
	RecipientSuccess     RecipientStatus = "success"
	RecipientAlreadySent RecipientStatus = "alreadySent"
	RecipientFailed      RecipientStatus = "failed"
)

// Recipient is one row of an uploaded applicant list.
type Recipient struct {
	ID         int             `json:"id"`
	Email      string          `json:"email"`
	Name       string          `json:"name"`
	Language   string          `json:"language"`
	Salutation string          `json:"salutation"`
	Status     RecipientStatus `json:"status"`
	Error      string          `json:"error,omitempty"`
}

// Batch is a parsed upload held server-side between upload and send.
type Batch struct {
	ID         string      `json:"id"`
	FileName   string      `json:"file_name"`
	Recipients []Recipient `json:"recipients"`
	CreatedAt  time.Time   `json:"created_at"`
	sending    bool
}

// snapshot copies a batch so callers can read it while a send run mutates
// the stored rows.
func (b *Batch) snapshot() *Batch {
	out := *b
	out.Recipients = append([]Recipient(nil), b.Recipients...)
	return &out
}

// Summary aggregates recipient states after an upload or a send run.
type Summary struct {
	Total       int `json:"total"`
	Pending     int `json:"pending"`
	Success     int `json:"success"`
	AlreadySent int `json:"already_sent"`
	Failed      int `json:"failed"`
}

// Template is the editable rejection email with its placeholder tokens.
type Template struct {
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// DefaultTemplate is the stock German rejection text.
func DefaultTemplate() Template {
	return Template{
		Subject: "Ihre Bewerbung bei OSO",
		Body: `{anrede} {name},

vielen Dank für Ihr Interesse an einer Position bei OSO und die Zeit, die Sie in Ihre Bewerbung investiert haben.

Nach sorgfältiger Prüfung aller Bewerbungen müssen wir Ihnen leider mitteilen, dass wir uns für andere Kandidaten entschieden haben, deren Profile besser zu den aktuellen Anforderungen passen.

Wir wünschen Ihnen für Ihren weiteren beruflichen Weg alles Gute und viel Erfolg.

Mit freundlichen Grüßen,
OSO HR Team`,
	}
}

var (
	emailPattern      = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	salutationPattern = regexp.MustCompile(`(?i)\{anrede\}`)
	namePattern       = regexp.MustCompile(`(?i)\{name\}`)
	languagePattern   = regexp.MustCompile(`(?i)\{sprache\}`)
)

// Personalize substitutes the case-insensitive placeholder tokens into a
// subject or body.
func Personalize(template string, r Recipient) string {
	out := salutationPattern.ReplaceAllString(template, r.Salutation)
	out = namePattern.ReplaceAllString(out, r.Name)
	return languagePattern.ReplaceAllString(out, r.Language)
}

// RejectionService runs the bulk rejection-email workflow: spreadsheet
// ingest, dedup against the persisted send history, and the throttled
// sequential dispatch loop.
type RejectionService struct {
	sentRepo repository.SentEmailRepository
	mailer   Mailer
	queue    dispatchQueue

	mu      sync.Mutex
	batches map[string]*Batch
}

// NewRejectionService creates a new RejectionService.
func NewRejectionService(sentRepo repository.SentEmailRepository, mailer Mailer, delay time.Duration) *RejectionService {
	return &RejectionService{
		sentRepo: sentRepo,
		mailer:   mailer,
		queue:    dispatchQueue{delay: delay},
		batches:  make(map[string]*Batch),
	}
}

// Ingest parses an uploaded spreadsheet into a recipient batch. Rows with a
// malformed address or a blank name are marked failed; addresses already in
// the send history are marked alreadySent. An upload with nothing pending and
// nothing already sent is rejected outright.
func (s *RejectionService) Ingest(filename string, data []byte) (*Batch, Summary, error) {
	rows, err := readSheetRows(filename, data)
	if err != nil {
		return nil, Summary{}, err
	}
	if len(rows) < 2 {
		return nil, Summary{}, fmt.Errorf("the spreadsheet has no data rows")
	}

	cols := findColumns(rows[0])
	if cols.email < 0 || cols.name < 0 {
		return nil, Summary{}, ErrMissingColumns
	}

	history, err := s.historySet()
	if err != nil {
		return nil, Summary{}, err
	}

	recipients := make([]Recipient, 0, len(rows)-1)
	for i, row := range rows[1:] {
		email := cellValue(row, cols.email)
		name := cellValue(row, cols.name)
		if email == "" && name == "" {
			continue // skip fully blank rows
		}

		r := Recipient{
			ID:         i + 1,
			Email:      email,
			Name:       name,
			Language:   defaultIfEmpty(cellValue(row, cols.language), "DE"),
			Salutation: defaultIfEmpty(cellValue(row, cols.salutation), "Sie"),
		}

		switch {
		case history[strings.ToLower(email)]:
			r.Status = RecipientAlreadySent
			r.Error = "Bereits gesendet"
		case !emailPattern.MatchString(email):
			r.Status = RecipientFailed
			r.Error = "Ungültige E-Mail"
		case name == "":
			r.Status = RecipientFailed
			r.Error = "Name fehlt"
		default:
			r.Status = RecipientPending
		}

		recipients = append(recipients, r)
	}

	summary := summarize(recipients)
	if summary.Pending == 0 && summary.AlreadySent == 0 {
		return nil, Summary{}, ErrNoUsableRecipients
	}

	batch := &Batch{
		ID:         uuid.NewString(),
		FileName:   filename,
		Recipients: recipients,
		CreatedAt:  time.Now(),
	}

	s.mu.Lock()
	s.batches[batch.ID] = batch
	s.mu.Unlock()

	return batch.snapshot(), summary, nil
}

// GetBatch returns a copy of a previously uploaded batch.
func (s *RejectionService) GetBatch(id string) (*Batch, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	batch, ok := s.batches[id]
	if !ok {
		return nil, ErrBatchNotFound
	}
	return batch.snapshot(), nil
}

// Send runs the dispatch loop over a batch. confirmCount must match the
// batch's current pending count before anything is dispatched. Rows
// not pending pass through unchanged; per-recipient failures are recorded on
// the row and never halt the loop. Newly successful addresses are merged into
// the send history afterwards.
//
// The loop works on copies of the pending rows; the stored batch is only
// touched under the mutex, so concurrent reads see either the pre-send or
// the post-send state of a row, never a half-written one.
func (s *RejectionService) Send(ctx context.Context, batchID string, confirmCount int, tmpl Template) (*Batch, Summary, error) {
	type dispatch struct {
		index int
		row   Recipient
	}

	s.mu.Lock()
	batch, ok := s.batches[batchID]
	if !ok {
		s.mu.Unlock()
		return nil, Summary{}, ErrBatchNotFound
	}
	if batch.sending {
		s.mu.Unlock()
		return nil, Summary{}, ErrSendInProgress
	}

	pending := summarize(batch.Recipients).Pending
	if confirmCount != pending {
		s.mu.Unlock()
		return nil, Summary{}, ErrConfirmMismatch
	}
	batch.sending = true

	work := make([]dispatch, 0, pending)
	for i, r := range batch.Recipients {
		if r.Status == RecipientPending {
			work = append(work, dispatch{index: i, row: r})
		}
	}
	s.mu.Unlock()

	var newlySent []string

	jobs := make([]func(context.Context), len(work))
	for i := range work {
		w := &work[i]
		jobs[i] = func(ctx context.Context) {
			msg := Message{
				To:       w.row.Email,
				Subject:  Personalize(tmpl.Subject, w.row),
				Body:     Personalize(tmpl.Body, w.row),
				Language: w.row.Language,
			}

			if err := s.mailer.Send(ctx, msg); err != nil {
				log.Printf("rejection email to %s failed: %v", w.row.Email, err)
				w.row.Status = RecipientFailed
				w.row.Error = "E-Mail-Versand fehlgeschlagen"
				return
			}

			w.row.Status = RecipientSuccess
			w.row.Error = ""
			newlySent = append(newlySent, strings.ToLower(w.row.Email))
		}
	}

	s.queue.run(ctx, jobs)

	s.mu.Lock()
	for _, w := range work {
		batch.Recipients[w.index] = w.row
	}
	batch.sending = false
	result := batch.snapshot()
	s.mu.Unlock()

	if len(newlySent) > 0 {
		if err := s.sentRepo.Merge(newlySent); err != nil {
			return nil, Summary{}, fmt.Errorf("failed to record send history: %w", err)
		}
	}

	return result, summarize(result.Recipients), nil
}

// Results renders a batch as the results spreadsheet.
func (s *RejectionService) Results(batchID string) ([]byte, error) {
	batch, err := s.GetBatch(batchID)
	if err != nil {
		return nil, err
	}

	f, err := writeResultsWorkbook(batch.Recipients)
	if err != nil {
		return nil, err
	}
	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// SampleTemplate renders the blank upload template spreadsheet.
func (s *RejectionService) SampleTemplate() ([]byte, error) {
	f, err := writeSampleWorkbook()
	if err != nil {
		return nil, err
	}
	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// History returns every recorded recipient address.
func (s *RejectionService) History() ([]string, error) {
	return s.sentRepo.ListAddresses()
}

// ClearHistory wipes the send history.
func (s *RejectionService) ClearHistory() error {
	return s.sentRepo.Clear()
}

func (s *RejectionService) historySet() (map[string]bool, error) {
	addresses, err := s.sentRepo.ListAddresses()
	if err != nil {
		return nil, fmt.Errorf("failed to load send history: %w", err)
	}

	set := make(map[string]bool, len(addresses))
	for _, a := range addresses {
		set[strings.ToLower(a)] = true
	}
	return set, nil
}

func summarize(recipients []Recipient) Summary {
	summary := Summary{Total: len(recipients)}
	for _, r := range recipients {
		switch r.Status {
		case RecipientPending:
			summary.Pending++
		case RecipientSuccess:
			summary.Success++
		case RecipientAlreadySent:
			summary.AlreadySent++
		case RecipientFailed:
			summary.Failed++
		}
	}
	return summary
}

type columnIndexes struct {
	email      int
	name       int
	language   int
	salutation int
}

// findColumns matches the header row case-insensitively. "Mailadresse" and
// "E-Mail" are both accepted for the address column.
func findColumns(header []string) columnIndexes {
	cols := columnIndexes{email: -1, name: -1, language: -1, salutation: -1}
	for i, h := range header {
		switch normalizeHeader(h) {
		case "mailadresse", "e-mail", "email":
			if cols.email < 0 {
				cols.email = i
			}
		case "name":
			if cols.name < 0 {
				cols.name = i
			}
		case "sprache", "language":
			if cols.language < 0 {
				cols.language = i
			}
		case "anrede", "salutation":
			if cols.salutation < 0 {
				cols.salutation = i
			}
		}
	}
	return cols
}

func defaultIfEmpty(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}

// dispatchQueue is the single-worker rate-limited task queue behind the send
// loop: jobs run strictly one at a time with a fixed pause after every
// attempt, to respect the email provider's rate limits.
type dispatchQueue struct {
	delay time.Duration
}

func (q dispatchQueue) run(ctx context.Context, jobs []func(context.Context)) {
	for _, job := range jobs {
		job(ctx)

		select {
		case <-ctx.Done():
			return
		case <-time.After(q.delay):
		}
	}
}
