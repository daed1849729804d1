package render

import (
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/JonMunkholm/popdash/internal/core"
)

const sampleCSV = `states,states_code,year,population
California,CA,2018,39461588
Texas,TX,2018,28628666
Wyoming,WY,2018,577601
California,CA,2019,39512223
Texas,TX,2019,28995881
Wyoming,WY,2019,578759
`

func mustDataset(t *testing.T, data string) *core.Dataset {
	t.Helper()
	ds, err := core.ReadCSV(strings.NewReader(data), "test.csv", core.LoadOptions{
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	if err != nil {
		t.Fatalf("ReadCSV() error = %v", err)
	}
	return ds
}

func mustView(t *testing.T, ds *core.Dataset, year int) *core.YearView {
	t.Helper()
	view, err := core.SelectYear(ds, year)
	if err != nil {
		t.Fatalf("SelectYear(%d) error = %v", year, err)
	}
	return view
}
