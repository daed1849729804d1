package store

import (
	"strings"
	"testing"

	"github.com/JonMunkholm/popdash/internal/core"
)

func TestSQL_QuotesTableName(t *testing.T) {
	tests := []struct {
		table string
		want  string
	}{
		{"us_population", `"us_population"`},
		{`odd"name`, `"odd""name"`},
		{"census.us_population", `"census"."us_population"`},
	}

	for _, tt := range tests {
		t.Run(tt.table, func(t *testing.T) {
			for name, sql := range map[string]string{
				"create":   createTableSQL(tt.table),
				"truncate": truncateSQL(tt.table),
				"select":   selectSQL(tt.table),
			} {
				if !strings.Contains(sql, tt.want) {
					t.Errorf("%s SQL %q does not contain %s", name, sql, tt.want)
				}
			}
		})
	}
}

func TestTableIdent(t *testing.T) {
	got := tableIdent("census.us_population")
	if len(got) != 2 || got[0] != "census" || got[1] != "us_population" {
		t.Errorf("tableIdent() = %v, want [census us_population]", got)
	}
	if got := tableIdent("us_population"); len(got) != 1 {
		t.Errorf("tableIdent(unqualified) = %v, want one part", got)
	}
}

func TestSelectSQL_KeepsLoadOrder(t *testing.T) {
	sql := selectSQL("us_population")
	if !strings.HasSuffix(sql, "ORDER BY id") {
		t.Errorf("select = %q, want ORDER BY id", sql)
	}
	for _, col := range Columns {
		if !strings.Contains(sql, col) {
			t.Errorf("select missing column %s", col)
		}
	}
}

func TestCopyRows(t *testing.T) {
	records := []core.PopulationRecord{
		{Year: 2019, StateName: "California", StateCode: "CA", Population: 39512223},
		{Year: 2019, StateName: "Wyoming", StateCode: "WY", Population: 578759},
	}

	rows := copyRows(records)
	if len(rows) != 2 {
		t.Fatalf("len = %d, want 2", len(rows))
	}
	if len(rows[0]) != len(Columns) {
		t.Fatalf("row width = %d, want %d", len(rows[0]), len(Columns))
	}
	if rows[1][0] != int32(2019) || rows[1][2] != "WY" || rows[1][3] != int64(578759) {
		t.Errorf("row = %v", rows[1])
	}
}
