package userservice

import (
	"context"
	"errors"
	"testing"

	"github.com/crumblab/cookiejar/internal/apperr"
	"github.com/crumblab/cookiejar/internal/store"
	"github.com/crumblab/cookiejar/internal/testutil"
)

type capturedEvent struct {
	kind    string
	userID  int64
	cookies int64
}

func testService(t *testing.T) (*Service, *[]capturedEvent) {
	t.Helper()
	db := testutil.TestDB(t)
	events := &[]capturedEvent{}
	svc := NewService(db, store.NewInlineCounters(db), func(kind string, userID, cookies int64) {
		*events = append(*events, capturedEvent{kind: kind, userID: userID, cookies: cookies})
	})
	return svc, events
}

func TestCreateUserValidation(t *testing.T) {
	svc, _ := testService(t)
	ctx := context.Background()

	_, err := svc.CreateUser(ctx, CreateUserInput{UserID: 0, Name: "nobody"})
	if !errors.Is(err, apperr.ErrValidation) {
		t.Fatalf("err = %v, want ErrValidation", err)
	}

	_, err = svc.CreateUser(ctx, CreateUserInput{UserID: -3})
	if !errors.Is(err, apperr.ErrValidation) {
		t.Fatalf("negative id err = %v, want ErrValidation", err)
	}
}

func TestCreateAndGetUser(t *testing.T) {
	svc, _ := testService(t)
	ctx := context.Background()

	created, err := svc.CreateUser(ctx, CreateUserInput{UserID: 42, Name: "chip", DisplayName: "Chip"})
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	if created.Cookies != 0 {
		t.Errorf("cookies = %d, want 0", created.Cookies)
	}

	u, err := svc.GetUser(ctx, 42)
	if err != nil {
		t.Fatalf("GetUser: %v", err)
	}
	if u.Name != "chip" || u.Cookies != 0 {
		t.Errorf("unexpected user: %+v", u)
	}
}

func TestMutationEventsPublished(t *testing.T) {
	svc, events := testService(t)
	ctx := context.Background()

	if _, err := svc.CreateUser(ctx, CreateUserInput{UserID: 1}); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.SetCookies(ctx, 1, 10); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.AddCookies(ctx, 1, -4); err != nil {
		t.Fatal(err)
	}

	got := *events
	if len(got) != 2 {
		t.Fatalf("events = %d, want 2", len(got))
	}
	if got[0].kind != "replaced" || got[0].cookies != 10 {
		t.Errorf("first event = %+v", got[0])
	}
	if got[1].kind != "incremented" || got[1].cookies != 6 {
		t.Errorf("second event = %+v", got[1])
	}
}

func TestNoEventOnFailedMutation(t *testing.T) {
	svc, events := testService(t)

	if _, err := svc.SetCookies(context.Background(), 404, 1); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
	if len(*events) != 0 {
		t.Errorf("events published on failed mutation: %v", *events)
	}
}

func TestLinkedUserViewReadsZeroBeforeFirstWrite(t *testing.T) {
	db := testutil.TestDB(t)
	counters, err := store.NewLinkedCounters(db)
	if err != nil {
		t.Fatal(err)
	}
	svc := NewService(db, counters, nil)
	ctx := context.Background()

	if _, err := svc.CreateUser(ctx, CreateUserInput{UserID: 1, Name: "fresh"}); err != nil {
		t.Fatal(err)
	}

	// The user view reports 0 while the raw counter read still surfaces
	// the not-yet-created record as NotFound.
	u, err := svc.GetUser(ctx, 1)
	if err != nil {
		t.Fatalf("GetUser: %v", err)
	}
	if u.Cookies != 0 {
		t.Errorf("cookies = %d, want 0", u.Cookies)
	}
	if _, err := svc.GetCookies(ctx, 1); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("GetCookies err = %v, want ErrNotFound", err)
	}
}
