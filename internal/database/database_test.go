package database

import (
	"context"
	"regexp"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestSchemaDeclaresConstraintNames(t *testing.T) {
	for _, name := range []string{
		"members_email_key",
		"members_phone_number_key",
		"members_username_key",
		"inventory_items_quantity_check",
		"testimonials_rating_check",
		"bookings_status_check",
	} {
		if !strings.Contains(Schema(), name) {
			t.Errorf("schema is missing constraint %s", name)
		}
	}
}

func TestApplySchema(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE IF NOT EXISTS admin_users")).
		WillReturnResult(sqlmock.NewResult(0, 0))

	if err := ApplySchema(context.Background(), db); err != nil {
		t.Fatalf("ApplySchema: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}
