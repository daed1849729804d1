package render

import (
	"math"
	"testing"
)

func TestNewRankedTable(t *testing.T) {
	ds := mustDataset(t, sampleCSV)
	table := NewRankedTable(mustView(t, ds, 2019))

	if len(table.Rows) != 3 {
		t.Fatalf("len(Rows) = %d, want 3", len(table.Rows))
	}

	want := []struct {
		code  string
		share float64
	}{
		{"CA", 1.0},
		{"TX", 28995881.0 / 39512223.0},
		{"WY", 0.0146},
	}
	for i, w := range want {
		row := table.Rows[i]
		if row.Rank != i+1 || row.StateCode != w.code {
			t.Errorf("row %d = %+v, want rank %d %s", i, row, i+1, w.code)
		}
		if math.Abs(row.Share-w.share) > 0.0001 {
			t.Errorf("%s share = %f, want %f", w.code, row.Share, w.share)
		}
		if row.Share < 0 || row.Share > 1 {
			t.Errorf("%s share %f outside [0, 1]", w.code, row.Share)
		}
	}

	if table.Total != 39512223+28995881+578759 {
		t.Errorf("Total = %d", table.Total)
	}
}

func TestRankedTable_Top(t *testing.T) {
	ds := mustDataset(t, sampleCSV)
	table := NewRankedTable(mustView(t, ds, 2019))

	if got := table.Top(2); len(got) != 2 || got[1].StateCode != "TX" {
		t.Errorf("Top(2) = %+v", got)
	}
	if got := table.Top(0); len(got) != 3 {
		t.Errorf("Top(0) len = %d, want all rows", len(got))
	}
	if got := table.Top(10); len(got) != 3 {
		t.Errorf("Top(10) len = %d, want 3", len(got))
	}
}
