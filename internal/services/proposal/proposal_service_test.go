package proposal

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/jobup-app/backend/internal/apperr"
	"github.com/jobup-app/backend/internal/models"
	"github.com/jobup-app/backend/internal/services/chat"
)

func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := gdb.AutoMigrate(&models.Conversation{}, &models.ChatMessage{}, &models.Proposal{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return gdb
}

func testService(t *testing.T) (*Service, *gorm.DB) {
	gdb := testDB(t)
	return NewService(gdb, chat.NewService(gdb)), gdb
}

func testParties() (client, worker models.Party) {
	client = models.Party{ID: uuid.New(), Name: "Alice", Role: models.RoleClient}
	worker = models.Party{ID: uuid.New(), Name: "Bob", Role: models.RoleWorker}
	return
}

func testTerms() Terms {
	return Terms{Title: "Fix the sink", Price: 150_000, DurationMinutes: 90}
}

func TestCreateOpensPending(t *testing.T) {
	svc, gdb := testService(t)
	client, worker := testParties()

	p, err := svc.Create("", client, worker, testTerms())
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if p.Status != models.ProposalPending {
		t.Fatalf("status = %q, want pending", p.Status)
	}
	if p.ClientID != client.ID || p.WorkerID != worker.ID {
		t.Fatalf("canonical ids not derived: client %s worker %s", p.ClientID, p.WorkerID)
	}
	if want := models.ChatIDFor(client.ID, worker.ID); p.ChatID != want {
		t.Fatalf("chat id = %q, want %q", p.ChatID, want)
	}

	// the offer must show up in the conversation
	var msg models.ChatMessage
	if err := gdb.First(&msg, "chat_id = ? AND type = ?", p.ChatID, models.MessageProposal).Error; err != nil {
		t.Fatalf("proposal chat message not written: %v", err)
	}
	if msg.ProposalID == nil || *msg.ProposalID != p.ID {
		t.Fatalf("chat message not linked to proposal")
	}
	if !strings.Contains(msg.Content, "Fix the sink") {
		t.Fatalf("chat message content = %q", msg.Content)
	}
}

func TestCreateWorkerToClient(t *testing.T) {
	svc, _ := testService(t)
	client, worker := testParties()

	// worker opens the offer, roles still resolve canonically
	p, err := svc.Create("", worker, client, testTerms())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if p.ClientID != client.ID || p.WorkerID != worker.ID {
		t.Fatalf("canonical ids wrong for worker-sent proposal")
	}
}

func TestCreateRejectsBadPairing(t *testing.T) {
	svc, _ := testService(t)
	a := models.Party{ID: uuid.New(), Name: "A", Role: models.RoleClient}
	b := models.Party{ID: uuid.New(), Name: "B", Role: models.RoleClient}

	_, err := svc.Create("", a, b, testTerms())
	var verr *apperr.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("got %v, want ValidationError", err)
	}
}

func TestTransitionWritesResponseMessage(t *testing.T) {
	svc, gdb := testService(t)
	client, worker := testParties()

	p, err := svc.Create("", client, worker, testTerms())
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	got, err := svc.Transition(p.ID, models.ProposalAccepted, worker)
	if err != nil {
		t.Fatalf("accept: %v", err)
	}
	if got.Status != models.ProposalAccepted {
		t.Fatalf("status = %q, want accepted", got.Status)
	}

	var msg models.ChatMessage
	if err := gdb.First(&msg, "chat_id = ? AND type = ?", p.ChatID, models.MessageProposalResponse).Error; err != nil {
		t.Fatalf("response chat message not written: %v", err)
	}
	if msg.SenderID != worker.ID || msg.ReceiverID != client.ID {
		t.Fatalf("response message parties wrong")
	}
	if msg.Content != "Accepted the proposal" {
		t.Fatalf("content = %q", msg.Content)
	}
}

func TestTerminalStatesRejectTransitions(t *testing.T) {
	for _, terminal := range []models.ProposalStatus{models.ProposalAccepted, models.ProposalDeclined} {
		t.Run(string(terminal), func(t *testing.T) {
			svc, _ := testService(t)
			client, worker := testParties()

			p, err := svc.Create("", client, worker, testTerms())
			if err != nil {
				t.Fatalf("create: %v", err)
			}
			if _, err := svc.Transition(p.ID, terminal, worker); err != nil {
				t.Fatalf("to %s: %v", terminal, err)
			}

			_, err = svc.Transition(p.ID, models.ProposalNegotiating, client)
			var terr *apperr.InvalidTransitionError
			if !errors.As(err, &terr) {
				t.Fatalf("got %v, want InvalidTransitionError", err)
			}
			if terr.From != string(terminal) || terr.To != string(models.ProposalNegotiating) {
				t.Fatalf("transition error names %s -> %s", terr.From, terr.To)
			}
		})
	}
}

func TestNegotiatingMayLoop(t *testing.T) {
	svc, _ := testService(t)
	client, worker := testParties()

	p, err := svc.Create("", client, worker, testTerms())
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	// each counter-offer is a new negotiating round
	if _, err := svc.Transition(p.ID, models.ProposalNegotiating, worker); err != nil {
		t.Fatalf("first negotiate: %v", err)
	}
	if _, err := svc.Transition(p.ID, models.ProposalNegotiating, client); err != nil {
		t.Fatalf("second negotiate: %v", err)
	}
	got, err := svc.Transition(p.ID, models.ProposalAccepted, worker)
	if err != nil {
		t.Fatalf("accept after negotiation: %v", err)
	}
	if got.Status != models.ProposalAccepted {
		t.Fatalf("status = %q, want accepted", got.Status)
	}
}

func TestTransitionUnknownStatus(t *testing.T) {
	svc, _ := testService(t)
	client, worker := testParties()

	p, err := svc.Create("", client, worker, testTerms())
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	_, err = svc.Transition(p.ID, models.ProposalStatus("approved"), worker)
	var verr *apperr.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("got %v, want ValidationError", err)
	}
}

func TestTransitionMissingProposal(t *testing.T) {
	svc, _ := testService(t)
	client, _ := testParties()

	_, err := svc.Transition(uuid.New(), models.ProposalAccepted, client)
	var nfErr *apperr.NotFoundError
	if !errors.As(err, &nfErr) {
		t.Fatalf("got %v, want NotFoundError", err)
	}
}
