package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/oso-hr/timetracking-api/internal/models"
	"github.com/oso-hr/timetracking-api/internal/repository"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type fakeMailer struct {
	sent    []Message
	failFor map[string]bool
}

func (m *fakeMailer) Send(_ context.Context, msg Message) error {
	if m.failFor[msg.To] {
		return errors.New("smtp unavailable")
	}
	m.sent = append(m.sent, msg)
	return nil
}

func setupRejectionTest(t *testing.T) (*RejectionService, *fakeMailer, repository.SentEmailRepository) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.SentEmail{}))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	sentRepo := repository.NewSentEmailRepository(db)
	mailer := &fakeMailer{failFor: map[string]bool{}}
	svc := NewRejectionService(sentRepo, mailer, time.Millisecond)
	return svc, mailer, sentRepo
}

func applicantSheet(t *testing.T, rows [][]interface{}) []byte {
	t.Helper()

	f, err := writeSampleWorkbook()
	require.NoError(t, err)
	defer f.Close()

	// overwrite the example rows with the test's own data
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Vorlage", cell, &row))
	}
	for i := len(rows); i < 3; i++ {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		require.NoError(t, err)
		empty := []interface{}{"", "", "", ""}
		require.NoError(t, f.SetSheetRow("Vorlage", cell, &empty))
	}

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf.Bytes()
}

func TestIngest_ClassifiesRows(t *testing.T) {
	svc, _, sentRepo := setupRejectionTest(t)
	require.NoError(t, sentRepo.Merge([]string{"old@example.com"}))

	data := applicantSheet(t, [][]interface{}{
		{"new@example.com", "DE", "Sie", "Neu Bewerber"},
		{"old@example.com", "DE", "Sie", "Alt Bewerber"},
		{"not-an-email", "DE", "Sie", "Kaputt"},
	})

	batch, summary, err := svc.Ingest("bewerber.xlsx", data)
	require.NoError(t, err)
	require.Equal(t, 3, summary.Total)
	require.Equal(t, 1, summary.Pending)
	require.Equal(t, 1, summary.AlreadySent)
	require.Equal(t, 1, summary.Failed)

	require.Equal(t, RecipientPending, batch.Recipients[0].Status)
	require.Equal(t, RecipientAlreadySent, batch.Recipients[1].Status)
	require.Equal(t, "Bereits gesendet", batch.Recipients[1].Error)
	require.Equal(t, RecipientFailed, batch.Recipients[2].Status)
	require.Equal(t, "Ungültige E-Mail", batch.Recipients[2].Error)
}

func TestIngest_BlankNameFails(t *testing.T) {
	svc, _, _ := setupRejectionTest(t)

	data := applicantSheet(t, [][]interface{}{
		{"someone@example.com", "DE", "Sie", ""},
		{"valid@example.com", "DE", "Sie", "Valid"},
	})

	batch, _, err := svc.Ingest("bewerber.xlsx", data)
	require.NoError(t, err)
	require.Equal(t, RecipientFailed, batch.Recipients[0].Status)
	require.Equal(t, "Name fehlt", batch.Recipients[0].Error)
}

func TestIngest_NothingUsableRejected(t *testing.T) {
	svc, _, _ := setupRejectionTest(t)

	data := applicantSheet(t, [][]interface{}{
		{"broken", "DE", "Sie", "Kaputt"},
	})

	_, _, err := svc.Ingest("bewerber.xlsx", data)
	require.ErrorIs(t, err, ErrNoUsableRecipients)
}

func TestIngest_AllAlreadySentUploadAccepted(t *testing.T) {
	svc, _, sentRepo := setupRejectionTest(t)
	require.NoError(t, sentRepo.Merge([]string{"a@example.com", "b@example.com"}))

	data := applicantSheet(t, [][]interface{}{
		{"a@example.com", "DE", "Sie", "A"},
		{"b@example.com", "DE", "Sie", "B"},
	})

	_, summary, err := svc.Ingest("bewerber.xlsx", data)
	require.NoError(t, err)
	require.Equal(t, 0, summary.Pending)
	require.Equal(t, 2, summary.AlreadySent)
}

func TestSend_DispatchesPendingOnly(t *testing.T) {
	svc, mailer, sentRepo := setupRejectionTest(t)
	require.NoError(t, sentRepo.Merge([]string{"old@example.com"}))

	data := applicantSheet(t, [][]interface{}{
		{"new@example.com", "DE", "Du", "Max"},
		{"old@example.com", "DE", "Sie", "Alt"},
	})

	batch, _, err := svc.Ingest("bewerber.xlsx", data)
	require.NoError(t, err)

	result, summary, err := svc.Send(context.Background(), batch.ID, 1, DefaultTemplate())
	require.NoError(t, err)
	require.Equal(t, 1, summary.Success)
	require.Equal(t, 1, summary.AlreadySent)
	require.Equal(t, 0, summary.Pending)

	require.Len(t, mailer.sent, 1)
	require.Equal(t, "new@example.com", mailer.sent[0].To)
	require.Contains(t, mailer.sent[0].Body, "Du Max,")
	require.Equal(t, RecipientSuccess, result.Recipients[0].Status)
}

func TestSend_ConfirmCountGate(t *testing.T) {
	svc, mailer, _ := setupRejectionTest(t)

	data := applicantSheet(t, [][]interface{}{
		{"one@example.com", "DE", "Sie", "Eins"},
		{"two@example.com", "DE", "Sie", "Zwei"},
	})

	batch, _, err := svc.Ingest("bewerber.xlsx", data)
	require.NoError(t, err)

	_, _, err = svc.Send(context.Background(), batch.ID, 1, DefaultTemplate())
	require.ErrorIs(t, err, ErrConfirmMismatch)
	require.Empty(t, mailer.sent)
}

func TestSend_AllAlreadySentBlocksDispatch(t *testing.T) {
	svc, mailer, sentRepo := setupRejectionTest(t)
	require.NoError(t, sentRepo.Merge([]string{"a@example.com"}))

	data := applicantSheet(t, [][]interface{}{
		{"a@example.com", "DE", "Sie", "A"},
	})

	batch, summary, err := svc.Ingest("bewerber.xlsx", data)
	require.NoError(t, err)
	require.Equal(t, 0, summary.Pending)

	// confirming any nonzero count cannot match zero pending
	_, _, err = svc.Send(context.Background(), batch.ID, 1, DefaultTemplate())
	require.ErrorIs(t, err, ErrConfirmMismatch)

	// confirming zero runs the loop over nothing
	_, after, err := svc.Send(context.Background(), batch.ID, 0, DefaultTemplate())
	require.NoError(t, err)
	require.Equal(t, 0, after.Success)
	require.Empty(t, mailer.sent)
}

func TestSend_FailureIsolatedPerRecipient(t *testing.T) {
	svc, mailer, sentRepo := setupRejectionTest(t)
	mailer.failFor["broken@example.com"] = true

	data := applicantSheet(t, [][]interface{}{
		{"broken@example.com", "DE", "Sie", "Kaputt"},
		{"fine@example.com", "DE", "Sie", "Gut"},
	})

	batch, _, err := svc.Ingest("bewerber.xlsx", data)
	require.NoError(t, err)

	result, summary, err := svc.Send(context.Background(), batch.ID, 2, DefaultTemplate())
	require.NoError(t, err)
	require.Equal(t, 1, summary.Success)
	require.Equal(t, 1, summary.Failed)

	require.Equal(t, RecipientFailed, result.Recipients[0].Status)
	require.Equal(t, "E-Mail-Versand fehlgeschlagen", result.Recipients[0].Error)
	require.Equal(t, RecipientSuccess, result.Recipients[1].Status)

	// only the success lands in the history
	addresses, err := sentRepo.ListAddresses()
	require.NoError(t, err)
	require.Equal(t, []string{"fine@example.com"}, addresses)
}

func TestGetBatch_ReturnsIsolatedCopy(t *testing.T) {
	svc, _, _ := setupRejectionTest(t)

	data := applicantSheet(t, [][]interface{}{
		{"a@example.com", "DE", "Sie", "A"},
	})
	batch, _, err := svc.Ingest("bewerber.xlsx", data)
	require.NoError(t, err)

	// mutating a returned batch must not leak into the stored one
	batch.Recipients[0].Status = RecipientFailed

	again, err := svc.GetBatch(batch.ID)
	require.NoError(t, err)
	require.Equal(t, RecipientPending, again.Recipients[0].Status)
}

func TestGetBatch_ConsistentDuringSend(t *testing.T) {
	svc, _, _ := setupRejectionTest(t)

	data := applicantSheet(t, [][]interface{}{
		{"a@example.com", "DE", "Sie", "A"},
		{"b@example.com", "DE", "Sie", "B"},
		{"c@example.com", "DE", "Sie", "C"},
	})
	batch, _, err := svc.Ingest("bewerber.xlsx", data)
	require.NoError(t, err)

	sendErr := make(chan error, 1)
	go func() {
		_, _, err := svc.Send(context.Background(), batch.ID, 3, DefaultTemplate())
		sendErr <- err
	}()

	// read the batch while the dispatch loop runs; every observed row must
	// hold a complete pre-send or post-send state
	deadline := time.After(5 * time.Second)
	for {
		got, err := svc.GetBatch(batch.ID)
		require.NoError(t, err)
		for _, r := range got.Recipients {
			require.Contains(t, []RecipientStatus{RecipientPending, RecipientSuccess}, r.Status)
		}

		select {
		case err := <-sendErr:
			require.NoError(t, err)
			final, err := svc.GetBatch(batch.ID)
			require.NoError(t, err)
			require.Equal(t, 3, summarize(final.Recipients).Success)
			return
		case <-deadline:
			t.Fatal("send did not finish")
		default:
		}
	}
}

func TestSend_RerunMarksAlreadySent(t *testing.T) {
	svc, mailer, _ := setupRejectionTest(t)

	data := applicantSheet(t, [][]interface{}{
		{"once@example.com", "DE", "Sie", "Einmal"},
	})

	batch, _, err := svc.Ingest("bewerber.xlsx", data)
	require.NoError(t, err)
	_, _, err = svc.Send(context.Background(), batch.ID, 1, DefaultTemplate())
	require.NoError(t, err)
	require.Len(t, mailer.sent, 1)

	// a fresh upload of the same list never re-dispatches
	batch2, summary, err := svc.Ingest("bewerber.xlsx", data)
	require.NoError(t, err)
	require.Equal(t, 0, summary.Pending)
	require.Equal(t, 1, summary.AlreadySent)

	_, after, err := svc.Send(context.Background(), batch2.ID, 0, DefaultTemplate())
	require.NoError(t, err)
	require.Equal(t, 0, after.Success)
	require.Len(t, mailer.sent, 1)
}

func TestPersonalize(t *testing.T) {
	r := Recipient{Name: "Max", Salutation: "Du", Language: "DE"}
	require.Equal(t, "Du Max, DE", Personalize("{anrede} {name}, {sprache}", r))
	require.Equal(t, "Du Max", Personalize("{Anrede} {NAME}", r))
}

func TestClearHistory(t *testing.T) {
	svc, _, sentRepo := setupRejectionTest(t)
	require.NoError(t, sentRepo.Merge([]string{"a@example.com"}))

	require.NoError(t, svc.ClearHistory())

	addresses, err := svc.History()
	require.NoError(t, err)
	require.Empty(t, addresses)
}
