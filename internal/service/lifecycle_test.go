package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/google/uuid"

	"helphop/internal/domain"
	"helphop/internal/service"
	mock_service "helphop/internal/service/mocks"
	"helphop/pkg/e"
)

func mustUUID(t *testing.T) uuid.UUID {
	t.Helper()
	return uuid.New()
}

func mustTime(t *testing.T) time.Time {
	t.Helper()
	return time.Date(2025, 12, 23, 12, 0, 0, 0, time.UTC)
}

func TestLifecycle_AssignRescuer_OK(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := mock_service.NewMockIncidentRepository(ctrl)

	id := mustUUID(t)
	want := &domain.Incident{
		ID:        id,
		UserID:    "user-1",
		Status:    domain.IncidentBroadcasted,
		RescuerID: "rescuer-7",
		CreatedAt: mustTime(t),
	}

	repo.EXPECT().
		Transition(gomock.Any(), id, domain.IncidentBroadcasted, "rescuer-7").
		Return(want, nil).
		Times(1)

	svc := service.NewLifecycleService(repo, newTestLogger())

	got, err := svc.AssignRescuer(context.Background(), id, "rescuer-7")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if got.Status != domain.IncidentBroadcasted || got.RescuerID != "rescuer-7" {
		t.Fatalf("unexpected incident: %+v", got)
	}
}

func TestLifecycle_AssignRescuer_EmptyRescuerID(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := mock_service.NewMockIncidentRepository(ctrl)

	svc := service.NewLifecycleService(repo, newTestLogger())

	_, err := svc.AssignRescuer(context.Background(), mustUUID(t), "")
	if !errors.Is(err, e.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput got %v", err)
	}
}

func TestLifecycle_Transitions_TargetStatus(t *testing.T) {
	t.Parallel()

	type tc struct {
		name string
		call func(svc service.LifecycleService, ctx context.Context, id uuid.UUID) (*domain.Incident, error)
		want domain.IncidentStatus
	}

	cases := []tc{
		{"accept", func(s service.LifecycleService, ctx context.Context, id uuid.UUID) (*domain.Incident, error) {
			return s.Accept(ctx, id)
		}, domain.IncidentAccepted},
		{"reject", func(s service.LifecycleService, ctx context.Context, id uuid.UUID) (*domain.Incident, error) {
			return s.Reject(ctx, id)
		}, domain.IncidentRejected},
		{"resolve", func(s service.LifecycleService, ctx context.Context, id uuid.UUID) (*domain.Incident, error) {
			return s.Resolve(ctx, id)
		}, domain.IncidentResolved},
	}

	for _, c := range cases {
		c := c
		t.Run(c.name, func(t *testing.T) {
			t.Parallel()

			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := mock_service.NewMockIncidentRepository(ctrl)
			id := mustUUID(t)

			repo.EXPECT().
				Transition(gomock.Any(), id, c.want, "").
				Return(&domain.Incident{ID: id, Status: c.want}, nil).
				Times(1)

			svc := service.NewLifecycleService(repo, newTestLogger())

			got, err := c.call(svc, context.Background(), id)
			if err != nil {
				t.Fatalf("unexpected err: %v", err)
			}
			if got.Status != c.want {
				t.Fatalf("expected status=%q got=%q", c.want, got.Status)
			}
		})
	}
}

func TestLifecycle_Resolve_NotFound(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := mock_service.NewMockIncidentRepository(ctrl)
	id := mustUUID(t)

	repo.EXPECT().
		Transition(gomock.Any(), id, domain.IncidentResolved, "").
		Return(nil, e.ErrNotFound).
		Times(1)

	svc := service.NewLifecycleService(repo, newTestLogger())

	_, err := svc.Resolve(context.Background(), id)
	if !errors.Is(err, e.ErrNotFound) {
		t.Fatalf("expected ErrNotFound got %v", err)
	}
}

func TestLifecycle_Resolve_AlreadyResolved_Terminal(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := mock_service.NewMockIncidentRepository(ctrl)
	id := mustUUID(t)

	repo.EXPECT().
		Transition(gomock.Any(), id, domain.IncidentResolved, "").
		Return(nil, e.ErrTerminalState).
		Times(1)

	svc := service.NewLifecycleService(repo, newTestLogger())

	_, err := svc.Resolve(context.Background(), id)
	if !errors.Is(err, e.ErrTerminalState) {
		t.Fatalf("expected ErrTerminalState got %v", err)
	}
}

func TestLifecycle_ListPending_OK(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := mock_service.NewMockIncidentRepository(ctrl)

	want := []*domain.Incident{
		{ID: mustUUID(t), Status: domain.IncidentPending, CreatedAt: mustTime(t)},
		{ID: mustUUID(t), Status: domain.IncidentPending, CreatedAt: mustTime(t)},
	}

	repo.EXPECT().
		ListPending(gomock.Any()).
		Return(want, nil).
		Times(1)

	svc := service.NewLifecycleService(repo, newTestLogger())

	got, err := svc.ListPending(context.Background())
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(got) != len(want) {
		t.Fatalf("expected %d incidents got %d", len(want), len(got))
	}
	for _, inc := range got {
		if inc.Status != domain.IncidentPending {
			t.Fatalf("non-pending incident in pending list: %+v", inc)
		}
	}
}

func TestLifecycle_List_Delegates(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := mock_service.NewMockIncidentRepository(ctrl)

	repo.EXPECT().
		List(gomock.Any(), 2, 10).
		Return([]*domain.Incident{}, int64(0), nil).
		Times(1)

	svc := service.NewLifecycleService(repo, newTestLogger())

	_, total, err := svc.List(context.Background(), 2, 10)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if total != 0 {
		t.Fatalf("expected total=0 got=%d", total)
	}
}

func TestLifecycle_ListByUser_EmptyID(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := mock_service.NewMockIncidentRepository(ctrl)

	svc := service.NewLifecycleService(repo, newTestLogger())

	_, err := svc.ListByUser(context.Background(), "")
	if !errors.Is(err, e.ErrMissingUserID) {
		t.Fatalf("expected ErrMissingUserID got %v", err)
	}
}

func TestLifecycle_ListByUser_OK(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := mock_service.NewMockIncidentRepository(ctrl)

	want := []*domain.Incident{
		{ID: mustUUID(t), UserID: "user-1", Status: domain.IncidentResolved},
	}

	repo.EXPECT().
		ListByUser(gomock.Any(), "user-1").
		Return(want, nil).
		Times(1)

	svc := service.NewLifecycleService(repo, newTestLogger())

	got, err := svc.ListByUser(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(got) != 1 || got[0].UserID != "user-1" {
		t.Fatalf("unexpected incidents: %+v", got)
	}
}
