package authzinfra_test

import (
	"context"
	"testing"

	"github.com/mutuo-app/mutuo/pkg/authz/authzinfra"
)

type snapshotPayload struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func TestInMemorySnapshotStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	store := authzinfra.NewInMemorySnapshotStore()

	if err := store.Save(ctx, "k", snapshotPayload{Name: "a", Count: 3}); err != nil {
		t.Fatalf("Save: %v", err)
	}

	var got snapshotPayload
	found, err := store.Load(ctx, "k", &got)
	if err != nil || !found {
		t.Fatalf("Load = (%v, %v), want (true, nil)", found, err)
	}
	if got.Name != "a" || got.Count != 3 {
		t.Fatalf("got %+v", got)
	}
}

func TestInMemorySnapshotStore_AbsentKey(t *testing.T) {
	store := authzinfra.NewInMemorySnapshotStore()

	var got snapshotPayload
	found, err := store.Load(context.Background(), "missing", &got)
	if err != nil || found {
		t.Fatalf("Load = (%v, %v), want (false, nil)", found, err)
	}
}

func TestInMemorySnapshotStore_CorruptPayloadReadsAsAbsent(t *testing.T) {
	ctx := context.Background()
	store := authzinfra.NewInMemorySnapshotStore()

	// A stored string cannot decode into the struct shape.
	if err := store.Save(ctx, "k", "not-an-object"); err != nil {
		t.Fatalf("Save: %v", err)
	}

	var got snapshotPayload
	found, err := store.Load(ctx, "k", &got)
	if err != nil {
		t.Fatalf("corruption must not surface as an error: %v", err)
	}
	if found {
		t.Fatal("corrupt payload must read as absent")
	}
}

func TestInMemorySnapshotStore_DeleteRemovesKey(t *testing.T) {
	ctx := context.Background()
	store := authzinfra.NewInMemorySnapshotStore()

	if err := store.Save(ctx, "k", snapshotPayload{Name: "a"}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := store.Delete(ctx, "k"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	var got snapshotPayload
	if found, _ := store.Load(ctx, "k", &got); found {
		t.Fatal("deleted key still present")
	}
}
