package repo

import (
	"context"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type row struct {
	ID   int
	Name string
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	conn, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	if err := conn.AutoMigrate(&row{}); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	return conn
}

func TestBaseDBBindsContext(t *testing.T) {
	db := newTestDB(t)
	base := NewBase(db)

	ctx := context.WithValue(context.Background(), struct{}{}, "value")
	if got := base.DB(ctx); got.Statement == nil || got.Statement.Context != ctx {
		t.Fatalf("expected context to flow through")
	}
	if base.DB(nil) != db {
		t.Fatalf("expected nil context to return raw connection")
	}
}

func TestFirstWhere(t *testing.T) {
	db := newTestDB(t)
	base := NewBase(db)
	ctx := context.Background()

	if err := db.Create(&row{ID: 1, Name: "linen"}).Error; err != nil {
		t.Fatalf("seed: %v", err)
	}

	var got row
	found, err := base.FirstWhere(ctx, &got, base.DB(ctx).Where("name = ?", "linen"))
	if err != nil || !found {
		t.Fatalf("expected row, found=%v err=%v", found, err)
	}
	if got.ID != 1 {
		t.Fatalf("unexpected row %+v", got)
	}

	var missing row
	found, err = base.FirstWhere(ctx, &missing, base.DB(ctx).Where("name = ?", "wool"))
	if err != nil || found {
		t.Fatalf("expected absent row without error, found=%v err=%v", found, err)
	}

	var broken row
	if _, err := base.FirstWhere(ctx, &broken, base.DB(ctx).Table("nope")); err == nil {
		t.Fatalf("expected query error to surface")
	}
}
