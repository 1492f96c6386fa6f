package page_test

import (
	"testing"

	"github.com/lyracrm/lyra/business/sdk/page"
)

func Test_Parse(t *testing.T) {
	tests := []struct {
		name     string
		page     string
		rows     string
		expPage  int
		expRows  int
		fails    bool
	}{
		{name: "defaults", page: "", rows: "", expPage: 1, expRows: 10},
		{name: "specified", page: "3", rows: "25", expPage: 3, expRows: 25},
		{name: "zeropage", page: "0", rows: "10", fails: true},
		{name: "negativerows", page: "1", rows: "-5", fails: true},
		{name: "toomanyrows", page: "1", rows: "500", fails: true},
		{name: "notanumber", page: "x", rows: "10", fails: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pg, err := page.Parse(tt.page, tt.rows)

			if tt.fails {
				if err == nil {
					t.Fatal("expected parse to fail")
				}
				return
			}

			if err != nil {
				t.Fatalf("parse: %s", err)
			}

			if pg.Number() != tt.expPage {
				t.Errorf("number: got %d, exp %d", pg.Number(), tt.expPage)
			}

			if pg.RowsPerPage() != tt.expRows {
				t.Errorf("rows: got %d, exp %d", pg.RowsPerPage(), tt.expRows)
			}
		})
	}
}
