package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"kharcha/internal/core"
)

type fakeStore struct {
	records map[int64]core.ExpenseRecord
	nextID  int64
}

func newFakeStore() *fakeStore {
	return &fakeStore{records: make(map[int64]core.ExpenseRecord)}
}

func (s *fakeStore) CreateRecord(_ context.Context, rec core.ExpenseRecord) (int64, error) {
	s.nextID++
	rec.ID = s.nextID
	s.records[rec.ID] = rec
	return rec.ID, nil
}

func (s *fakeStore) UpdateRecord(_ context.Context, rec core.ExpenseRecord) error {
	if _, ok := s.records[rec.ID]; !ok {
		return errors.New("not found")
	}
	s.records[rec.ID] = rec
	return nil
}

func (s *fakeStore) GetRecord(_ context.Context, id int64) (core.ExpenseRecord, error) {
	rec, ok := s.records[id]
	if !ok {
		return core.ExpenseRecord{}, errors.New("not found")
	}
	return rec, nil
}

type fakePublisher struct {
	published []int64
	err       error
}

func (p *fakePublisher) PublishRecordSync(_ context.Context, id int64) error {
	if p.err != nil {
		return p.err
	}
	p.published = append(p.published, id)
	return nil
}

func validRecord(owner string) core.ExpenseRecord {
	return core.ExpenseRecord{
		Owner:         owner,
		Date:          time.Date(2025, time.July, 1, 0, 0, 0, 0, time.UTC),
		VehicleNumber: "BA-1-1234",
		VehicleType:   core.Petrol,
		Fuel:          core.Money{Paisa: 25000},
	}
}

func TestCreateRecordComputesTotalAndPublishes(t *testing.T) {
	store := newFakeStore()
	pub := &fakePublisher{}
	svc := NewRecordService(store, pub)

	rec := validRecord("ram")
	rec.Maintenance = core.Money{Paisa: 10000}
	rec.Reason = "brake pads"
	rec.Total = core.Money{Paisa: 999} // stale value must be overwritten

	id, err := svc.CreateRecord(context.Background(), rec)
	if err != nil {
		t.Fatalf("CreateRecord: %v", err)
	}
	saved := store.records[id]
	if saved.Total.Paisa != 35000 {
		t.Errorf("total = %d, want 35000", saved.Total.Paisa)
	}
	if len(pub.published) != 1 || pub.published[0] != id {
		t.Errorf("published = %v, want [%d]", pub.published, id)
	}
}

func TestCreateRecordRejectsInvalid(t *testing.T) {
	svc := NewRecordService(newFakeStore(), &fakePublisher{})

	rec := validRecord("ram")
	rec.Fuel = core.Money{}

	_, err := svc.CreateRecord(context.Background(), rec)
	var violation *core.InvariantViolation
	if !errors.As(err, &violation) {
		t.Fatalf("err = %v, want InvariantViolation", err)
	}
}

func TestCreateRecordSurvivesPublishFailure(t *testing.T) {
	store := newFakeStore()
	svc := NewRecordService(store, &fakePublisher{err: errors.New("broker down")})

	id, err := svc.CreateRecord(context.Background(), validRecord("ram"))
	if err != nil {
		t.Fatalf("CreateRecord: %v", err)
	}
	if _, ok := store.records[id]; !ok {
		t.Error("record not saved")
	}
}

func TestUpdateRecordOwnership(t *testing.T) {
	store := newFakeStore()
	svc := NewRecordService(store, &fakePublisher{})

	id, err := svc.CreateRecord(context.Background(), validRecord("ram"))
	if err != nil {
		t.Fatalf("CreateRecord: %v", err)
	}

	update := validRecord("ram")
	update.ID = id
	update.Fuel = core.Money{Paisa: 30000}

	t.Run("stranger denied", func(t *testing.T) {
		err := svc.UpdateRecord(context.Background(), update, Requester{Username: "sita"})
		if !errors.Is(err, ErrForbidden) {
			t.Errorf("err = %v, want ErrForbidden", err)
		}
	})

	t.Run("owner allowed", func(t *testing.T) {
		if err := svc.UpdateRecord(context.Background(), update, Requester{Username: "ram"}); err != nil {
			t.Fatalf("UpdateRecord: %v", err)
		}
		if store.records[id].Total.Paisa != 30000 {
			t.Errorf("total = %d, want 30000", store.records[id].Total.Paisa)
		}
	})

	t.Run("admin allowed and owner preserved", func(t *testing.T) {
		u := update
		u.Owner = "admin" // must not take effect
		if err := svc.UpdateRecord(context.Background(), u, Requester{Username: "boss", Admin: true}); err != nil {
			t.Fatalf("UpdateRecord: %v", err)
		}
		if store.records[id].Owner != "ram" {
			t.Errorf("owner = %q, want ram", store.records[id].Owner)
		}
	})
}
